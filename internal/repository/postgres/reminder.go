package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/vaxtrack/reminder-api/internal/model"
	apperrors "github.com/vaxtrack/reminder-api/pkg/errors"
	"github.com/vaxtrack/reminder-api/pkg/metrics"
)

const reminderColumns = `
	id, user_id, name, description, category,
	scheduled_date, scheduled_time, priority, status,
	recurrence, notification_settings, government_mandated,
	linked_schedule_id, fired_markers, version,
	created_at, updated_at, completed_at
`

type reminderRepository struct {
	db      *sqlx.DB
	metrics *metrics.Metrics
}

func NewReminderRepository(db *sqlx.DB, m *metrics.Metrics) *reminderRepository {
	return &reminderRepository{db: db, metrics: m}
}

func (r *reminderRepository) Create(ctx context.Context, reminder *model.Reminder) (err error) {
	defer func(start time.Time) { track(r.metrics, "reminder.create", start, err) }(time.Now())

	query := `
		INSERT INTO reminders (` + reminderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`
	_, err = r.db.ExecContext(ctx, query,
		reminder.ID,
		reminder.UserID,
		reminder.Name,
		reminder.Description,
		reminder.Category,
		reminder.ScheduledDate,
		reminder.ScheduledTime,
		reminder.Priority,
		reminder.Status,
		reminder.Recurrence,
		reminder.NotificationSettings,
		reminder.GovernmentMandated,
		reminder.LinkedScheduleID,
		reminder.FiredMarkers,
		reminder.Version,
		reminder.CreatedAt,
		reminder.UpdatedAt,
		reminder.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create reminder: %w", err)
	}
	return nil
}

func (r *reminderRepository) Get(ctx context.Context, id uuid.UUID) (_ *model.Reminder, err error) {
	defer func(start time.Time) { track(r.metrics, "reminder.get", start, err) }(time.Now())

	query := `SELECT ` + reminderColumns + ` FROM reminders WHERE id = $1`

	var reminder model.Reminder
	err = r.db.GetContext(ctx, &reminder, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("reminder", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reminder: %w", err)
	}
	return &reminder, nil
}

// Update writes the reminder only if the stored version still matches the one
// the caller read, bumping it by one. A concurrent writer loses with a
// conflict instead of silently overwriting.
func (r *reminderRepository) Update(ctx context.Context, reminder *model.Reminder) (err error) {
	defer func(start time.Time) { track(r.metrics, "reminder.update", start, err) }(time.Now())

	query := `
		UPDATE reminders
		SET name = $1, description = $2, category = $3,
			scheduled_date = $4, scheduled_time = $5, priority = $6, status = $7,
			recurrence = $8, notification_settings = $9,
			fired_markers = $10, completed_at = $11,
			version = version + 1, updated_at = $12
		WHERE id = $13 AND version = $14
	`
	reminder.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		reminder.Name,
		reminder.Description,
		reminder.Category,
		reminder.ScheduledDate,
		reminder.ScheduledTime,
		reminder.Priority,
		reminder.Status,
		reminder.Recurrence,
		reminder.NotificationSettings,
		reminder.FiredMarkers,
		reminder.CompletedAt,
		reminder.UpdatedAt,
		reminder.ID,
		reminder.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update reminder: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		if _, getErr := r.Get(ctx, reminder.ID); apperrors.IsNotFound(getErr) {
			return getErr
		}
		return apperrors.Conflict("reminder was modified concurrently", nil)
	}

	reminder.Version++
	return nil
}

func (r *reminderRepository) Delete(ctx context.Context, id uuid.UUID) (err error) {
	defer func(start time.Time) { track(r.metrics, "reminder.delete", start, err) }(time.Now())

	result, err := r.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("reminder", nil)
	}
	return nil
}

func (r *reminderRepository) ListByUser(ctx context.Context, userID uuid.UUID) (_ []*model.Reminder, err error) {
	defer func(start time.Time) { track(r.metrics, "reminder.list_by_user", start, err) }(time.Now())

	query := `
		SELECT ` + reminderColumns + `
		FROM reminders
		WHERE user_id = $1
		ORDER BY scheduled_date ASC, scheduled_time ASC
	`
	var reminders []*model.Reminder
	if err = r.db.SelectContext(ctx, &reminders, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	return reminders, nil
}

func (r *reminderRepository) ListByUserAndRange(ctx context.Context, userID uuid.UUID, start, end time.Time) (_ []*model.Reminder, err error) {
	defer func(begin time.Time) { track(r.metrics, "reminder.list_by_range", begin, err) }(time.Now())

	query := `
		SELECT ` + reminderColumns + `
		FROM reminders
		WHERE user_id = $1
		AND scheduled_date >= $2
		AND scheduled_date <= $3
		ORDER BY scheduled_date ASC, scheduled_time ASC
	`
	var reminders []*model.Reminder
	if err = r.db.SelectContext(ctx, &reminders, query, userID, start, end); err != nil {
		return nil, fmt.Errorf("failed to list reminders in range: %w", err)
	}
	return reminders, nil
}

// ListActive returns non-terminal reminders with notification channels
// configured, the candidate set for dispatch computation. The jsonb_typeof
// guard keeps rows whose channels were stored as a null scalar from failing
// the whole query.
func (r *reminderRepository) ListActive(ctx context.Context, limit int) (_ []*model.Reminder, err error) {
	defer func(start time.Time) { track(r.metrics, "reminder.list_active", start, err) }(time.Now())

	query := `
		SELECT ` + reminderColumns + `
		FROM reminders
		WHERE status = 'pending'
		AND jsonb_typeof(notification_settings->'channels') = 'array'
		AND jsonb_array_length(notification_settings->'channels') > 0
		ORDER BY scheduled_date ASC
		LIMIT $1
	`
	var reminders []*model.Reminder
	if err = r.db.SelectContext(ctx, &reminders, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list active reminders: %w", err)
	}
	return reminders, nil
}
