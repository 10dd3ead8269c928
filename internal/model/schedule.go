package model

import (
	"time"

	"github.com/google/uuid"
)

// GovernmentVaccineSchedule is read-mostly reference data refreshed wholesale
// from an external feed; it is never mutated per-user.
type GovernmentVaccineSchedule struct {
	ID                   uuid.UUID `db:"id" json:"id"`
	VaccineName          string    `db:"vaccine_name" json:"vaccine_name"`
	AgeGroup             string    `db:"age_group" json:"age_group"`
	Doses                int       `db:"doses" json:"doses"`
	IntervalBetweenDoses int       `db:"interval_between_doses" json:"interval_between_doses"`
	BoosterRequired      bool      `db:"booster_required" json:"booster_required"`
	BoosterIntervalDays  int       `db:"booster_interval_days" json:"booster_interval_days"`
	Priority             Priority  `db:"priority" json:"priority"`
	Source               string    `db:"source" json:"source"`
	Description          string    `db:"description" json:"description,omitempty"`
	CreatedAt            time.Time `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time `db:"updated_at" json:"updated_at"`
}

type SyncSchedulesRequest struct {
	ScheduleIDs   []string `json:"schedule_ids" binding:"required,min=1,dive,uuid"`
	ReferenceDate string   `json:"reference_date" binding:"required,datetime=2006-01-02"`
}

type SyncFailure struct {
	ScheduleID uuid.UUID `json:"schedule_id"`
	Reason     string    `json:"reason"`
}

// SyncResult carries partial-failure semantics: the reminders that were
// created plus the schedule ids that could not be expanded.
type SyncResult struct {
	Created []*Reminder   `json:"created"`
	Failed  []SyncFailure `json:"failed,omitempty"`
}
