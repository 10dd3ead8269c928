package model

import (
	"time"

	"github.com/google/uuid"
)

type DispatchStatus string

const (
	DispatchStatusFired   DispatchStatus = "fired"
	DispatchStatusFailed  DispatchStatus = "failed"
	DispatchStatusSkipped DispatchStatus = "skipped"
)

// Dispatch is one computed (channel, fire time) instant for a reminder's
// notification. Dispatches are derived from the reminder's notification
// settings on every scheduling pass, not stored as domain entities.
type Dispatch struct {
	ReminderID uuid.UUID `json:"reminder_id"`
	UserID     uuid.UUID `json:"user_id"`
	Channel    string    `json:"channel"`
	OffsetDays int       `json:"offset_days"`
	FireAt     time.Time `json:"fire_at"`
	Message    string    `json:"message"`
}

// Key identifies the dispatch for idempotency marking.
func (d Dispatch) Key() string {
	return MarkerKey(d.Channel, d.OffsetDays)
}

// DispatchLogEntry records the outcome of a fired or failed dispatch so a
// missed notification is observable without ever failing the engine.
type DispatchLogEntry struct {
	ID         uuid.UUID      `db:"id" json:"id"`
	ReminderID uuid.UUID      `db:"reminder_id" json:"reminder_id"`
	UserID     uuid.UUID      `db:"user_id" json:"user_id"`
	Channel    string         `db:"channel" json:"channel"`
	OffsetDays int            `db:"offset_days" json:"offset_days"`
	FireAt     time.Time      `db:"fire_at" json:"fire_at"`
	Status     DispatchStatus `db:"status" json:"status"`
	LastError  *string        `db:"last_error" json:"last_error,omitempty"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
}
