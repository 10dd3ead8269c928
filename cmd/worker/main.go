package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/kelseyhightower/envconfig"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/vaxtrack/reminder-api/internal/email"
	"github.com/vaxtrack/reminder-api/internal/repository/postgres"
	notificationService "github.com/vaxtrack/reminder-api/internal/service/notification"
	"github.com/vaxtrack/reminder-api/internal/transport"
	"github.com/vaxtrack/reminder-api/pkg/logger"
	"github.com/vaxtrack/reminder-api/pkg/messaging/redis"
	"github.com/vaxtrack/reminder-api/pkg/metrics"
	"github.com/vaxtrack/reminder-api/pkg/worker"
)

type workerConfig struct {
	DatabaseURL  string        `envconfig:"DATABASE_URL" required:"true"`
	RedisURL     string        `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`
	BatchSize    int           `envconfig:"DISPATCH_BATCH_SIZE" default:"500"`
	PollInterval time.Duration `envconfig:"DISPATCH_POLL_INTERVAL" default:"1m"`
	GraceWindow  time.Duration `envconfig:"DISPATCH_GRACE_WINDOW" default:"1h"`
	AlertEmail   string        `envconfig:"ALERT_EMAIL"`
	SMTPHost     string        `envconfig:"SMTP_HOST"`
	SMTPPort     int           `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername string        `envconfig:"SMTP_USERNAME"`
	SMTPPassword string        `envconfig:"SMTP_PASSWORD"`
	SMTPFrom     string        `envconfig:"SMTP_FROM"`
	HealthPort   int           `envconfig:"HEALTH_PORT" default:"8081"`
}

func setupHealthCheck(port int, appLogger *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	go func() {
		if err := http.ListenAndServe(fmt.Sprintf(":%d", port), mux); err != nil {
			appLogger.ZL.Error().Err(err).Msg("Health check server failed")
			os.Exit(1)
		}
	}()
}

func main() {
	var cfg workerConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	appLogger := logger.NewLogger(nil)

	db, err := sqlx.Connect("postgres", cfg.DatabaseURL)
	if err != nil {
		appLogger.ZL.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	broker, err := redis.NewRedisBroker(redis.Config{URL: cfg.RedisURL}, &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Redis broker")
	}
	defer broker.Close()

	dispatcherMetrics := metrics.NewMetrics("vaxtrack", "dispatcher")

	reminderRepo := postgres.NewReminderRepository(db, dispatcherMetrics)
	dispatchRepo := postgres.NewDispatchRepository(db, dispatcherMetrics)

	notificationSvc := notificationService.NewService(
		reminderRepo,
		dispatchRepo,
		transport.NewBrokerTransport(broker),
		dispatcherMetrics,
		appLogger,
	)

	var emailSvc email.Service
	if cfg.SMTPHost != "" {
		emailSvc = email.NewSMTPService(email.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
	}

	processor := worker.NewDispatchProcessor(
		notificationSvc,
		emailSvc,
		worker.DispatchProcessorConfig{
			BatchSize:    cfg.BatchSize,
			PollInterval: cfg.PollInterval,
			GraceWindow:  cfg.GraceWindow,
			AlertEmail:   cfg.AlertEmail,
		},
		appLogger,
		metrics.NewMetrics("vaxtrack", "dispatch_processor"),
	)

	setupHealthCheck(cfg.HealthPort, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		appLogger.Info("Shutting down worker")
		cancel()
	}()

	processor.Start(ctx)
}
