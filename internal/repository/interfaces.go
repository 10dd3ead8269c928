package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vaxtrack/reminder-api/internal/model"
)

// All repository interfaces in one file
type (
	// ReminderRepository is the single owner of reminder records. Update must
	// enforce per-id write serialization through the version column.
	ReminderRepository interface {
		Create(ctx context.Context, reminder *model.Reminder) error
		Get(ctx context.Context, id uuid.UUID) (*model.Reminder, error)
		Update(ctx context.Context, reminder *model.Reminder) error
		Delete(ctx context.Context, id uuid.UUID) error
		ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Reminder, error)
		ListByUserAndRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]*model.Reminder, error)
		ListActive(ctx context.Context, limit int) ([]*model.Reminder, error)
	}

	ScheduleRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.GovernmentVaccineSchedule, error)
		List(ctx context.Context) ([]*model.GovernmentVaccineSchedule, error)
		ReplaceAll(ctx context.Context, schedules []*model.GovernmentVaccineSchedule) error
	}

	// DispatchRepository records fired and failed dispatch instants.
	// MarkFired appends the idempotency marker and inserts the log row in one
	// transaction, returning whether this caller claimed the marker. A false
	// claim means another pass already holds it and the send must not happen.
	DispatchRepository interface {
		MarkFired(ctx context.Context, reminderID uuid.UUID, markerKey string, entry *model.DispatchLogEntry) (bool, error)
		LogFailure(ctx context.Context, entry *model.DispatchLogEntry) error
		ListForReminder(ctx context.Context, reminderID uuid.UUID) ([]*model.DispatchLogEntry, error)
	}
)
