package calendar

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaxtrack/reminder-api/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testReminder(name string, scheduled time.Time, timeOfDay string, priority model.Priority) *model.Reminder {
	return &model.Reminder{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		Name:          name,
		ScheduledDate: scheduled,
		ScheduledTime: timeOfDay,
		Priority:      priority,
		Status:        model.ReminderStatusPending,
	}
}

func TestBuildViewWeekModeUsesWindowAsGiven(t *testing.T) {
	now := day(2024, time.June, 1)
	start, end := day(2024, time.June, 10), day(2024, time.June, 16)

	view := BuildView(nil, start, end, model.CalendarModeWeek, now)

	assert.Equal(t, start, view.WindowStart)
	assert.Equal(t, end, view.WindowEnd)
	assert.Len(t, view.Days, 7)
}

func TestBuildViewMonthModeExpandsToWholeWeeks(t *testing.T) {
	now := day(2024, time.June, 1)
	// June 2024: the 1st is a Saturday, the 30th a Sunday.
	view := BuildView(nil, day(2024, time.June, 1), day(2024, time.June, 30), model.CalendarModeMonth, now)

	assert.Equal(t, day(2024, time.May, 27), view.WindowStart, "back to Monday")
	assert.Equal(t, day(2024, time.June, 30), view.WindowEnd, "already a Sunday")
	assert.Equal(t, time.Monday, view.WindowStart.Weekday())
	assert.Equal(t, time.Sunday, view.WindowEnd.Weekday())
	assert.Len(t, view.Days, 35)
}

func TestBuildViewBucketsEachReminderOnce(t *testing.T) {
	now := day(2024, time.June, 1)
	reminders := []*model.Reminder{
		testReminder("Flu shot", day(2024, time.June, 10), "09:00", model.PriorityHigh),
		testReminder("Dentist", day(2024, time.June, 10), "14:00", model.PriorityLow),
		testReminder("MMR dose", day(2024, time.June, 12), "10:00", model.PriorityCritical),
	}

	view := BuildView(reminders, day(2024, time.June, 10), day(2024, time.June, 16), model.CalendarModeWeek, now)

	total := 0
	for _, bucket := range view.Days {
		total += len(bucket.Events)
		for _, ev := range bucket.Events {
			assert.Equal(t, bucket.Date.Format("2006-01-02"), dayOf(reminders, ev.ReminderID).Format("2006-01-02"))
		}
	}
	assert.Equal(t, 3, total)
	assert.Len(t, view.Days[0].Events, 2)
	assert.Len(t, view.Days[2].Events, 1)
}

func dayOf(reminders []*model.Reminder, id uuid.UUID) time.Time {
	for _, r := range reminders {
		if r.ID == id {
			return r.ScheduledDate
		}
	}
	return time.Time{}
}

func TestBuildViewExcludesRemindersOutsideWindow(t *testing.T) {
	now := day(2024, time.June, 1)
	reminders := []*model.Reminder{
		testReminder("Inside", day(2024, time.June, 12), "09:00", model.PriorityHigh),
		testReminder("Before", day(2024, time.June, 9), "09:00", model.PriorityHigh),
		testReminder("After", day(2024, time.June, 17), "09:00", model.PriorityHigh),
	}

	view := BuildView(reminders, day(2024, time.June, 10), day(2024, time.June, 16), model.CalendarModeWeek, now)

	total := 0
	for _, bucket := range view.Days {
		total += len(bucket.Events)
	}
	assert.Equal(t, 1, total)
}

func TestBuildViewOrdersEventsWithinDay(t *testing.T) {
	now := day(2024, time.June, 11)
	target := day(2024, time.June, 11)

	critical := testReminder("Critical", target, "10:00", model.PriorityCritical)
	low := testReminder("Low early", target, "08:00", model.PriorityLow)
	lowLater := testReminder("Low later", target, "12:00", model.PriorityLow)
	lowLatest := testReminder("Low latest", target, "23:00", model.PriorityLow)

	view := BuildView([]*model.Reminder{lowLater, low, lowLatest, critical},
		target, target, model.CalendarModeWeek, now)

	require.Len(t, view.Days, 1)
	events := view.Days[0].Events
	require.Len(t, events, 4)

	assert.Equal(t, "Critical", events[0].Name, "highest priority first within equal status")
	assert.Equal(t, "Low early", events[1].Name, "time of day breaks priority ties")
	assert.Equal(t, "Low later", events[2].Name)
	assert.Equal(t, "Low latest", events[3].Name)
}

func TestBuildViewTerminalSortsAfterActionable(t *testing.T) {
	now := day(2024, time.June, 11)
	target := day(2024, time.June, 11)

	dueToday := testReminder("Due today", target, "09:00", model.PriorityLow)
	completed := testReminder("Already done", target, "08:00", model.PriorityCritical)
	completed.Status = model.ReminderStatusCompleted

	view := BuildView([]*model.Reminder{completed, dueToday}, target, target, model.CalendarModeWeek, now)

	require.Len(t, view.Days, 1)
	events := view.Days[0].Events
	require.Len(t, events, 2)
	assert.Equal(t, "Due today", events[0].Name, "actionable outranks completed regardless of priority")
	assert.Equal(t, model.EffectiveStatusCompleted, events[1].Status)
}
