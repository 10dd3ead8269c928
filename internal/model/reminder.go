package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ReminderStatus string

const (
	ReminderStatusPending   ReminderStatus = "pending"
	ReminderStatusCompleted ReminderStatus = "completed"
	ReminderStatusMissed    ReminderStatus = "missed"
	ReminderStatusCancelled ReminderStatus = "cancelled"
)

// EffectiveStatus is the status as observed right now. It is derived from the
// stored status and the scheduled instant on every read and never persisted.
type EffectiveStatus string

const (
	EffectiveStatusCompleted EffectiveStatus = "completed"
	EffectiveStatusCancelled EffectiveStatus = "cancelled"
	EffectiveStatusOverdue   EffectiveStatus = "overdue"
	EffectiveStatusDueToday  EffectiveStatus = "due_today"
	EffectiveStatusPending   EffectiveStatus = "pending"
)

type ReminderCategory string

const (
	CategoryCustom     ReminderCategory = "custom"
	CategoryGovernment ReminderCategory = "government"
)

type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Rank orders priorities for tie-breaking, higher is more urgent.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

type RecurrenceUnit string

const (
	RecurrenceNone    RecurrenceUnit = "none"
	RecurrenceDaily   RecurrenceUnit = "day"
	RecurrenceWeekly  RecurrenceUnit = "week"
	RecurrenceMonthly RecurrenceUnit = "month"
	RecurrenceYearly  RecurrenceUnit = "year"
)

// Recurrence is either none or unit x interval. Stored as a JSONB column.
type Recurrence struct {
	Unit     RecurrenceUnit `json:"unit" binding:"omitempty,recurrence_unit"`
	Interval int            `json:"interval" binding:"omitempty,min=1"`
}

func (r Recurrence) IsNone() bool {
	return r.Unit == "" || r.Unit == RecurrenceNone
}

func (r Recurrence) Value() (driver.Value, error) {
	return json.Marshal(r)
}

func (r *Recurrence) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*r = Recurrence{Unit: RecurrenceNone}
		return nil
	case []byte:
		return json.Unmarshal(v, r)
	case string:
		return json.Unmarshal([]byte(v), r)
	}
	return fmt.Errorf("unsupported type for recurrence: %T", src)
}

// NotificationSettings holds the enabled channels and the advance notice
// offsets in days before the scheduled date. Stored as a JSONB column.
type NotificationSettings struct {
	Channels   []string `json:"channels"`
	OffsetDays []int    `json:"offset_days"`
}

// Value stores nil slices as empty jsonb arrays, never null, so array
// operators on the column stay valid for rows created without settings.
func (s NotificationSettings) Value() (driver.Value, error) {
	if s.Channels == nil {
		s.Channels = []string{}
	}
	if s.OffsetDays == nil {
		s.OffsetDays = []int{}
	}
	return json.Marshal(s)
}

func (s *NotificationSettings) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*s = NotificationSettings{}
		return nil
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	}
	return fmt.Errorf("unsupported type for notification settings: %T", src)
}

// FiredMarkers is the set of (channel, offset) pairs that have already been
// dispatched for a reminder. It is the idempotency record that guarantees
// at-most-one fire per configured offset. Stored as a JSONB column.
type FiredMarkers []string

func MarkerKey(channel string, offsetDays int) string {
	return fmt.Sprintf("%s:%d", channel, offsetDays)
}

func (m FiredMarkers) Has(key string) bool {
	for _, k := range m {
		if k == key {
			return true
		}
	}
	return false
}

func (m *FiredMarkers) Add(key string) {
	if !m.Has(key) {
		*m = append(*m, key)
	}
}

func (m FiredMarkers) Value() (driver.Value, error) {
	if m == nil {
		m = FiredMarkers{}
	}
	return json.Marshal(m)
}

func (m *FiredMarkers) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	}
	return fmt.Errorf("unsupported type for fired markers: %T", src)
}

// Reminder is a single scheduled health obligation owned by one user.
// ScheduledDate holds the calendar date (midnight), ScheduledTime the
// time-of-day as "15:04"; together they identify when the obligation falls due.
type Reminder struct {
	ID                   uuid.UUID            `db:"id" json:"id"`
	UserID               uuid.UUID            `db:"user_id" json:"user_id"`
	Name                 string               `db:"name" json:"name"`
	Description          string               `db:"description" json:"description,omitempty"`
	Category             ReminderCategory     `db:"category" json:"category"`
	ScheduledDate        time.Time            `db:"scheduled_date" json:"scheduled_date"`
	ScheduledTime        string               `db:"scheduled_time" json:"scheduled_time"`
	Priority             Priority             `db:"priority" json:"priority"`
	Status               ReminderStatus       `db:"status" json:"status"`
	Recurrence           Recurrence           `db:"recurrence" json:"recurrence"`
	NotificationSettings NotificationSettings `db:"notification_settings" json:"notification_settings"`
	GovernmentMandated   bool                 `db:"government_mandated" json:"government_mandated"`
	LinkedScheduleID     *uuid.UUID           `db:"linked_schedule_id" json:"linked_schedule_id,omitempty"`
	FiredMarkers         FiredMarkers         `db:"fired_markers" json:"-"`
	Version              int64                `db:"version" json:"version"`
	CreatedAt            time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time            `db:"updated_at" json:"updated_at"`
	CompletedAt          *time.Time           `db:"completed_at" json:"completed_at,omitempty"`
}

// ScheduledAt combines the scheduled date and time-of-day into the single
// instant used for ordering and status comparison.
func (r *Reminder) ScheduledAt() time.Time {
	y, m, d := r.ScheduledDate.Date()
	tod, err := time.Parse("15:04", r.ScheduledTime)
	if err != nil {
		return time.Date(y, m, d, 0, 0, 0, 0, r.ScheduledDate.Location())
	}
	return time.Date(y, m, d, tod.Hour(), tod.Minute(), 0, 0, r.ScheduledDate.Location())
}

func (r *Reminder) IsTerminal() bool {
	return r.Status == ReminderStatusCompleted || r.Status == ReminderStatusCancelled
}

type CreateReminderRequest struct {
	Name                 string                `json:"name" binding:"required,max=200"`
	Description          string                `json:"description" binding:"max=2000"`
	ScheduledDate        string                `json:"scheduled_date" binding:"required,datetime=2006-01-02"`
	ScheduledTime        string                `json:"scheduled_time" binding:"required,datetime=15:04"`
	Priority             Priority              `json:"priority" binding:"required,priority"`
	Recurrence           *Recurrence           `json:"recurrence" binding:"omitempty"`
	NotificationSettings *NotificationSettings `json:"notification_settings" binding:"omitempty"`
}

type UpdateReminderRequest struct {
	Name                 *string               `json:"name" binding:"omitempty,max=200"`
	Description          *string               `json:"description" binding:"omitempty,max=2000"`
	ScheduledDate        *string               `json:"scheduled_date" binding:"omitempty,datetime=2006-01-02"`
	ScheduledTime        *string               `json:"scheduled_time" binding:"omitempty,datetime=15:04"`
	Priority             *Priority             `json:"priority" binding:"omitempty,priority"`
	Status               *ReminderStatus       `json:"status" binding:"omitempty,oneof=pending completed missed cancelled"`
	Recurrence           *Recurrence           `json:"recurrence" binding:"omitempty"`
	NotificationSettings *NotificationSettings `json:"notification_settings" binding:"omitempty"`
}

// ReminderView is a Reminder projected for a read response, carrying the
// effective status computed against the request time.
type ReminderView struct {
	*Reminder
	EffectiveStatus EffectiveStatus `json:"effective_status"`
}
