package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vaxtrack/reminder-api/internal/model"
)

func TestEffectiveStatusTerminalIsSticky(t *testing.T) {
	pastDate := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, model.EffectiveStatusCompleted,
		EffectiveStatus(model.ReminderStatusCompleted, pastDate, "09:00", now))
	assert.Equal(t, model.EffectiveStatusCancelled,
		EffectiveStatus(model.ReminderStatusCancelled, pastDate, "09:00", now))
}

func TestEffectiveStatusOverdue(t *testing.T) {
	scheduled := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, model.EffectiveStatusOverdue,
		EffectiveStatus(model.ReminderStatusPending, scheduled, "09:00", now))
}

func TestEffectiveStatusDueToday(t *testing.T) {
	scheduled := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)

	// Same calendar day is due today regardless of whether the time of day
	// has already passed.
	morning := time.Date(2024, time.March, 15, 6, 0, 0, 0, time.UTC)
	evening := time.Date(2024, time.March, 15, 23, 0, 0, 0, time.UTC)

	assert.Equal(t, model.EffectiveStatusDueToday,
		EffectiveStatus(model.ReminderStatusPending, scheduled, "09:00", morning))
	assert.Equal(t, model.EffectiveStatusDueToday,
		EffectiveStatus(model.ReminderStatusPending, scheduled, "09:00", evening))
}

func TestEffectiveStatusPendingForFutureDate(t *testing.T) {
	scheduled := time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, model.EffectiveStatusPending,
		EffectiveStatus(model.ReminderStatusPending, scheduled, "09:00", now))
}

func TestEffectiveStatusIsDeterministic(t *testing.T) {
	scheduled := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

	first := EffectiveStatus(model.ReminderStatusPending, scheduled, "09:00", now)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, EffectiveStatus(model.ReminderStatusPending, scheduled, "09:00", now))
	}
}

func TestResolveUsesReminderFields(t *testing.T) {
	r := &model.Reminder{
		Status:        model.ReminderStatusPending,
		ScheduledDate: time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC),
		ScheduledTime: "09:00",
	}
	now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, model.EffectiveStatusOverdue, Resolve(r, now))
}
