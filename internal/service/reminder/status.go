package reminder

import (
	"time"

	"github.com/vaxtrack/reminder-api/internal/model"
)

// EffectiveStatus resolves the status observed at now. Terminal stored
// statuses are sticky and returned unchanged; everything else is recomputed
// from the scheduled instant, so identical inputs always yield identical
// output and nothing derived is ever persisted.
func EffectiveStatus(stored model.ReminderStatus, scheduledDate time.Time, scheduledTime string, now time.Time) model.EffectiveStatus {
	switch stored {
	case model.ReminderStatusCompleted:
		return model.EffectiveStatusCompleted
	case model.ReminderStatusCancelled:
		return model.EffectiveStatusCancelled
	}

	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	scheduled := combine(scheduledDate, scheduledTime)

	if scheduled.Before(startOfToday) {
		return model.EffectiveStatusOverdue
	}
	if sameDay(scheduledDate, now) {
		return model.EffectiveStatusDueToday
	}
	return model.EffectiveStatusPending
}

// Resolve computes the effective status for a reminder.
func Resolve(r *model.Reminder, now time.Time) model.EffectiveStatus {
	return EffectiveStatus(r.Status, r.ScheduledDate, r.ScheduledTime, now)
}

func combine(date time.Time, timeOfDay string) time.Time {
	y, m, d := date.Date()
	tod, err := time.Parse("15:04", timeOfDay)
	if err != nil {
		return time.Date(y, m, d, 0, 0, 0, 0, date.Location())
	}
	return time.Date(y, m, d, tod.Hour(), tod.Minute(), 0, 0, date.Location())
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
