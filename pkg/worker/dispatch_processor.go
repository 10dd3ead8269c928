package worker

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vaxtrack/reminder-api/internal/email"
	"github.com/vaxtrack/reminder-api/internal/service/notification"
	"github.com/vaxtrack/reminder-api/pkg/logger"
	"github.com/vaxtrack/reminder-api/pkg/metrics"
)

type DispatchProcessorConfig struct {
	BatchSize    int
	PollInterval time.Duration
	GraceWindow  time.Duration
	AlertEmail   string
}

// DispatchProcessor polls for reminders whose notification instants have come
// due and fires them through the notification service.
type DispatchProcessor struct {
	notifSvc *notification.Service
	emailSvc email.Service
	config   DispatchProcessorConfig
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewDispatchProcessor(
	notifSvc *notification.Service,
	emailSvc email.Service,
	config DispatchProcessorConfig,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *DispatchProcessor {
	if config.BatchSize <= 0 {
		panic("BatchSize must be greater than 0")
	}
	if config.PollInterval <= 0 {
		panic("PollInterval must be greater than 0")
	}
	if config.GraceWindow <= 0 {
		panic("GraceWindow must be greater than 0")
	}

	return &DispatchProcessor{
		notifSvc: notifSvc,
		emailSvc: emailSvc,
		config:   config,
		logger:   logger,
		metrics:  metrics,
	}
}

func (p *DispatchProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.logger.Info("Starting dispatch processor")

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Shutting down dispatch processor")
			return
		case <-ticker.C:
			if err := p.processBatch(ctx); err != nil {
				p.logger.Error(err, "Failed to process dispatch batch")
			}
		}
	}
}

func (p *DispatchProcessor) processBatch(ctx context.Context) error {
	timer := prometheus.NewTimer(p.metrics.DispatchLatency)
	defer timer.ObserveDuration()

	fired, failures, err := p.notifSvc.DispatchDue(ctx, p.config.BatchSize, p.config.GraceWindow)
	if err != nil {
		return err
	}

	if fired > 0 || len(failures) > 0 {
		p.logger.Info("Dispatch batch processed",
			"fired", fired,
			"failed", len(failures))
	}

	if len(failures) > 0 && p.emailSvc != nil && p.config.AlertEmail != "" {
		if alertErr := p.emailSvc.SendDispatchAlert(ctx, p.config.AlertEmail, failures); alertErr != nil {
			p.logger.Error(alertErr, "Failed to send dispatch failure alert")
		}
	}

	return nil
}
