package model

import (
	"time"

	"github.com/google/uuid"
)

type CalendarMode string

const (
	CalendarModeMonth CalendarMode = "month"
	CalendarModeWeek  CalendarMode = "week"
)

// CalendarEvent is an ephemeral projection of a Reminder for a requested
// date window; it is regenerated on every read and never persisted.
type CalendarEvent struct {
	ReminderID         uuid.UUID       `json:"reminder_id"`
	Name               string          `json:"name"`
	ScheduledTime      string          `json:"scheduled_time"`
	Priority           Priority        `json:"priority"`
	Status             EffectiveStatus `json:"status"`
	GovernmentMandated bool            `json:"government_mandated"`
}

type DayBucket struct {
	Date   time.Time       `json:"date"`
	Events []CalendarEvent `json:"events"`
}

type CalendarView struct {
	WindowStart time.Time    `json:"window_start"`
	WindowEnd   time.Time    `json:"window_end"`
	Mode        CalendarMode `json:"mode"`
	Days        []DayBucket  `json:"days"`
}
