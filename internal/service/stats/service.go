package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vaxtrack/reminder-api/internal/model"
	"github.com/vaxtrack/reminder-api/internal/repository"
	"github.com/vaxtrack/reminder-api/internal/service/reminder"
)

// UpcomingWindowDays bounds the upcoming count.
const UpcomingWindowDays = 30

type Service struct {
	repo repository.ReminderRepository
}

func NewService(repo repository.ReminderRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetStats(ctx context.Context, userID uuid.UUID) (*model.ReminderStats, error) {
	reminders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load reminders for stats: %w", err)
	}
	return Compute(reminders, time.Now()), nil
}

// Compute counts over a snapshot of reminders. Completed-this-period counts by
// completedAt, not scheduledDate: a late completion belongs to the month it
// actually happened in.
func Compute(reminders []*model.Reminder, now time.Time) *model.ReminderStats {
	stats := &model.ReminderStats{Total: len(reminders)}

	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	windowEnd := startOfToday.AddDate(0, 0, UpcomingWindowDays)

	for _, r := range reminders {
		switch reminder.Resolve(r, now) {
		case model.EffectiveStatusOverdue:
			stats.Overdue++
		case model.EffectiveStatusPending, model.EffectiveStatusDueToday:
			day := r.ScheduledDate
			if !day.Before(startOfToday) && !day.After(windowEnd) {
				stats.Upcoming++
			}
		}

		if r.Status == model.ReminderStatusCompleted && r.CompletedAt != nil {
			if r.CompletedAt.Year() == now.Year() && r.CompletedAt.Month() == now.Month() {
				stats.CompletedThisPeriod++
			}
		}
	}
	return stats
}
