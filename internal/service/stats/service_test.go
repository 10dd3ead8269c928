package stats

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/vaxtrack/reminder-api/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func pendingOn(scheduled time.Time) *model.Reminder {
	return &model.Reminder{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		Name:          "reminder",
		ScheduledDate: scheduled,
		ScheduledTime: "09:00",
		Priority:      model.PriorityMedium,
		Status:        model.ReminderStatusPending,
	}
}

func completedAt(scheduled, completed time.Time) *model.Reminder {
	r := pendingOn(scheduled)
	r.Status = model.ReminderStatusCompleted
	r.CompletedAt = &completed
	return r
}

func TestComputeCountsUpcomingWithinWindow(t *testing.T) {
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

	stats := Compute([]*model.Reminder{
		pendingOn(day(2024, time.June, 15)),  // due today
		pendingOn(day(2024, time.June, 20)),  // within 30 days
		pendingOn(day(2024, time.July, 15)),  // edge of window
		pendingOn(day(2024, time.August, 1)), // beyond window
	}, now)

	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 3, stats.Upcoming)
	assert.Equal(t, 0, stats.Overdue)
}

func TestComputeCountsOverdue(t *testing.T) {
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

	stats := Compute([]*model.Reminder{
		pendingOn(day(2024, time.June, 1)),
		pendingOn(day(2023, time.December, 31)),
		pendingOn(day(2024, time.June, 20)),
	}, now)

	assert.Equal(t, 2, stats.Overdue)
	assert.Equal(t, 1, stats.Upcoming)
}

func TestComputeCompletedThisPeriodUsesCompletionTime(t *testing.T) {
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

	stats := Compute([]*model.Reminder{
		// Scheduled in May, completed late in June: counts for June.
		completedAt(day(2024, time.May, 20), day(2024, time.June, 3)),
		// Completed back in May: does not count.
		completedAt(day(2024, time.May, 1), day(2024, time.May, 2)),
		// Completed in June of another year: does not count.
		completedAt(day(2023, time.June, 10), day(2023, time.June, 11)),
	}, now)

	assert.Equal(t, 1, stats.CompletedThisPeriod)
	assert.Equal(t, 0, stats.Overdue, "completed reminders are never overdue")
}

func TestComputeEmptySnapshot(t *testing.T) {
	stats := Compute(nil, time.Now())
	assert.Equal(t, &model.ReminderStats{}, stats)
}

func TestComputeCancelledCountsNowhere(t *testing.T) {
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

	cancelled := pendingOn(day(2024, time.June, 1))
	cancelled.Status = model.ReminderStatusCancelled

	stats := Compute([]*model.Reminder{cancelled}, now)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 0, stats.Upcoming)
	assert.Equal(t, 0, stats.Overdue)
	assert.Equal(t, 0, stats.CompletedThisPeriod)
}
