package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/vaxtrack/reminder-api/internal/model"
	"github.com/vaxtrack/reminder-api/internal/repository"
	"github.com/vaxtrack/reminder-api/internal/transport"
	"github.com/vaxtrack/reminder-api/pkg/errors"
	"github.com/vaxtrack/reminder-api/pkg/logger"
	"github.com/vaxtrack/reminder-api/pkg/metrics"
)

const (
	maxRetries   = 3
	retryBackoff = 2 * time.Second
)

// Service computes notification dispatch instants and hands due ones to the
// transport. Dispatches are never stored: they are recomputed from the
// reminder's settings on every pass, with the fired-marker set on the
// reminder as the only persistent dispatch state.
type Service struct {
	reminderRepo repository.ReminderRepository
	dispatchRepo repository.DispatchRepository
	transport    transport.Transport
	metrics      *metrics.Metrics
	logger       *logger.Logger
}

func NewService(
	reminderRepo repository.ReminderRepository,
	dispatchRepo repository.DispatchRepository,
	transport transport.Transport,
	metrics *metrics.Metrics,
	logger *logger.Logger,
) *Service {
	return &Service{
		reminderRepo: reminderRepo,
		dispatchRepo: dispatchRepo,
		transport:    transport,
		metrics:      metrics,
		logger:       logger,
	}
}

// ComputeDispatches returns the future dispatch instants for the reminder:
// one per enabled channel and advance-notice offset, excluding instants
// already past and (channel, offset) pairs already marked fired. A terminal
// reminder has no dispatches, which is what cancels pending notifications
// the moment it completes or is cancelled.
func ComputeDispatches(r *model.Reminder, now time.Time) []model.Dispatch {
	return compute(r, func(fireAt time.Time) bool {
		return !fireAt.Before(now)
	})
}

// DueDispatches returns unfired instants whose fire time has arrived within
// the grace window. Instants older than the window are dropped, not fired
// late.
func DueDispatches(r *model.Reminder, now time.Time, grace time.Duration) []model.Dispatch {
	return compute(r, func(fireAt time.Time) bool {
		return !fireAt.After(now) && now.Sub(fireAt) <= grace
	})
}

func compute(r *model.Reminder, include func(time.Time) bool) []model.Dispatch {
	if r.Status != model.ReminderStatusPending {
		return nil
	}

	scheduledAt := r.ScheduledAt()
	var dispatches []model.Dispatch
	for _, channel := range r.NotificationSettings.Channels {
		for _, offset := range r.NotificationSettings.OffsetDays {
			if r.FiredMarkers.Has(model.MarkerKey(channel, offset)) {
				continue
			}
			fireAt := scheduledAt.AddDate(0, 0, -offset)
			if !include(fireAt) {
				continue
			}
			dispatches = append(dispatches, model.Dispatch{
				ReminderID: r.ID,
				UserID:     r.UserID,
				Channel:    channel,
				OffsetDays: offset,
				FireAt:     fireAt,
				Message:    message(r, offset),
			})
		}
	}
	return dispatches
}

func message(r *model.Reminder, offsetDays int) string {
	due := r.ScheduledDate.Format("Jan 2, 2006")
	switch offsetDays {
	case 0:
		return fmt.Sprintf("%s is due today at %s", r.Name, r.ScheduledTime)
	case 1:
		return fmt.Sprintf("%s is due tomorrow (%s)", r.Name, due)
	}
	return fmt.Sprintf("%s is due in %d days (%s)", r.Name, offsetDays, due)
}

// PendingDispatches returns the computed future dispatches for one reminder,
// for the read API.
func (s *Service) PendingDispatches(ctx context.Context, r *model.Reminder) []model.Dispatch {
	return ComputeDispatches(r, time.Now())
}

// History returns the recorded fired/failed dispatch log for a reminder.
func (s *Service) History(ctx context.Context, r *model.Reminder) ([]*model.DispatchLogEntry, error) {
	return s.dispatchRepo.ListForReminder(ctx, r.ID)
}

// DispatchDue runs one scheduling pass: every due dispatch across active
// reminders is handed to the transport, and the fired marker is recorded
// atomically with the log row. One reminder's failure never blocks the rest.
func (s *Service) DispatchDue(ctx context.Context, batchSize int, grace time.Duration) (fired int, failures []*model.DispatchLogEntry, err error) {
	reminders, err := s.reminderRepo.ListActive(ctx, batchSize)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to load active reminders: %w", err)
	}

	now := time.Now()
	for _, r := range reminders {
		for _, d := range DueDispatches(r, now, grace) {
			s.metrics.DispatchesComputed.Inc()
			sent, entry := s.fire(ctx, d)
			if entry != nil {
				failures = append(failures, entry)
			} else if sent {
				fired++
			}
		}
	}
	return fired, failures, nil
}

// fire claims the (channel, offset) idempotency marker and only then hands
// the dispatch to the transport, with bounded retry on transient failures.
// The marker is persisted before the send: a marker-write failure suppresses
// the send, and a send failure after the claim is recorded but never
// re-fired. Delivery stays at-most-once per instant either way. A permanent
// failure short-circuits the retry loop; remaining offsets for the reminder
// are unaffected.
func (s *Service) fire(ctx context.Context, d model.Dispatch) (bool, *model.DispatchLogEntry) {
	entry := &model.DispatchLogEntry{
		ReminderID: d.ReminderID,
		UserID:     d.UserID,
		Channel:    d.Channel,
		OffsetDays: d.OffsetDays,
		FireAt:     d.FireAt,
		Status:     model.DispatchStatusFired,
	}
	claimed, err := s.dispatchRepo.MarkFired(ctx, d.ReminderID, d.Key(), entry)
	if err != nil {
		s.logger.Error(err, "failed to record fired marker",
			"reminder_id", d.ReminderID.String(),
			"marker", d.Key())
		return false, s.recordFailure(ctx, d, err)
	}
	if !claimed {
		// Another pass already fired this instant.
		return false, nil
	}

	var sendErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			s.metrics.TransportRetries.WithLabelValues(d.Channel).Inc()
			select {
			case <-ctx.Done():
				sendErr = ctx.Err()
			case <-time.After(retryBackoff * time.Duration(attempt)):
			}
			if sendErr != nil {
				break
			}
		}

		start := time.Now()
		sendErr = s.transport.Send(ctx, d)
		s.metrics.TransportLatency.WithLabelValues(d.Channel).Observe(time.Since(start).Seconds())

		if sendErr == nil {
			break
		}
		if errors.Is(sendErr, errors.ErrTransportPermanent) {
			break
		}
	}

	if sendErr != nil {
		return false, s.recordFailure(ctx, d, sendErr)
	}

	s.metrics.DispatchesFired.WithLabelValues(d.Channel).Inc()
	return true, nil
}

func (s *Service) recordFailure(ctx context.Context, d model.Dispatch, cause error) *model.DispatchLogEntry {
	kind := "transient"
	if errors.Is(cause, errors.ErrTransportPermanent) {
		kind = "permanent"
	}
	s.metrics.DispatchesFailed.WithLabelValues(d.Channel, kind).Inc()
	s.logger.Error(cause, "dispatch failed",
		"reminder_id", d.ReminderID.String(),
		"channel", d.Channel,
		"offset_days", d.OffsetDays)

	errMsg := cause.Error()
	entry := &model.DispatchLogEntry{
		ReminderID: d.ReminderID,
		UserID:     d.UserID,
		Channel:    d.Channel,
		OffsetDays: d.OffsetDays,
		FireAt:     d.FireAt,
		Status:     model.DispatchStatusFailed,
		LastError:  &errMsg,
	}
	if logErr := s.dispatchRepo.LogFailure(ctx, entry); logErr != nil {
		s.logger.Error(logErr, "failed to record dispatch failure", "reminder_id", d.ReminderID.String())
	}
	return entry
}
