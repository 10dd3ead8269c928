package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	calendarHandler "github.com/vaxtrack/reminder-api/internal/handler/calendar"
	reminderHandler "github.com/vaxtrack/reminder-api/internal/handler/reminder"
	scheduleHandler "github.com/vaxtrack/reminder-api/internal/handler/schedule"

	"github.com/vaxtrack/reminder-api/internal/config"
	"github.com/vaxtrack/reminder-api/internal/repository/postgres"
	"github.com/vaxtrack/reminder-api/internal/router"
	calendarService "github.com/vaxtrack/reminder-api/internal/service/calendar"
	notificationService "github.com/vaxtrack/reminder-api/internal/service/notification"
	reminderService "github.com/vaxtrack/reminder-api/internal/service/reminder"
	scheduleService "github.com/vaxtrack/reminder-api/internal/service/schedule"
	statsService "github.com/vaxtrack/reminder-api/internal/service/stats"
	"github.com/vaxtrack/reminder-api/internal/transport"
	"github.com/vaxtrack/reminder-api/pkg/logger"
	"github.com/vaxtrack/reminder-api/pkg/messaging/redis"
	"github.com/vaxtrack/reminder-api/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	broker, err := redis.NewRedisBroker(redis.Config{URL: cfg.Redis.URL}, &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	apiMetrics := metrics.NewMetrics("vaxtrack", "api")

	reminderRepo := postgres.NewReminderRepository(db, apiMetrics)
	scheduleRepo := postgres.NewScheduleRepository(db, apiMetrics)
	dispatchRepo := postgres.NewDispatchRepository(db, apiMetrics)

	reminderSvc := reminderService.NewService(reminderRepo, appLogger)
	scheduleSvc := scheduleService.NewService(scheduleRepo, reminderRepo, appLogger)
	calendarSvc := calendarService.NewService(reminderRepo)
	statsSvc := statsService.NewService(reminderRepo)

	dispatchTransport := transport.NewBrokerTransport(broker)
	notificationSvc := notificationService.NewService(
		reminderRepo,
		dispatchRepo,
		dispatchTransport,
		apiMetrics,
		appLogger,
	)

	handlers := router.Handlers{
		Reminder: reminderHandler.NewHandler(reminderSvc, notificationSvc),
		Schedule: scheduleHandler.NewHandler(scheduleSvc),
		Calendar: calendarHandler.NewHandler(calendarSvc, statsSvc),
	}

	routerCfg := router.DefaultConfig(cfg.Identity.Secret)
	if cfg.Server.TimeoutSeconds > 0 {
		routerCfg.Timeout.Duration = time.Duration(cfg.Server.TimeoutSeconds) * time.Second
	}

	engine := router.Setup(routerCfg, db, handlers)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: engine,
	}

	go func() {
		appLogger.Info("Starting API server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	appLogger.Info("Server exited properly")
}
