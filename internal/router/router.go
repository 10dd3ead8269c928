package router

import (
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/vaxtrack/reminder-api/internal/handler"
	calendarhandler "github.com/vaxtrack/reminder-api/internal/handler/calendar"
	reminderhandler "github.com/vaxtrack/reminder-api/internal/handler/reminder"
	schedulehandler "github.com/vaxtrack/reminder-api/internal/handler/schedule"
	"github.com/vaxtrack/reminder-api/internal/middleware"
)

type Config struct {
	IdentitySecret string
	RateLimit      middleware.RateLimiterConfig
	Timeout        middleware.TimeoutConfig
	CORS           middleware.CORSConfig
}

func DefaultConfig(identitySecret string) Config {
	return Config{
		IdentitySecret: identitySecret,
		RateLimit:      middleware.RateLimiterConfig{},
		Timeout:        middleware.DefaultTimeoutConfig(),
		CORS:           middleware.DefaultCORSConfig(),
	}
}

type Handlers struct {
	Reminder *reminderhandler.Handler
	Schedule *schedulehandler.Handler
	Calendar *calendarhandler.Handler
}

// Setup wires the middleware chain and registers all routes.
func Setup(cfg Config, db *sqlx.DB, handlers Handlers) *gin.Engine {
	handler.RegisterValidators()

	r := gin.New()

	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.Timeout(cfg.Timeout))
	r.Use(middleware.CORS(cfg.CORS))

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit)
	r.Use(rateLimiter.RateLimit())

	healthHandler := handler.NewHandler(db)
	r.GET("/health", healthHandler.LivenessCheck)
	r.GET("/ready", healthHandler.ReadinessCheck)
	r.GET("/metrics", healthHandler.MetricsHandler)

	identity := middleware.NewIdentityMiddleware(cfg.IdentitySecret)

	v1 := r.Group("/api/v1")
	v1.Use(identity.Identify())
	{
		handlers.Reminder.RegisterRoutes(v1)
		handlers.Schedule.RegisterRoutes(v1)

		readOnly := v1.Group("")
		readOnly.Use(middleware.Cache(middleware.DefaultCacheConfig()))
		handlers.Calendar.RegisterRoutes(readOnly)
	}

	return r
}
