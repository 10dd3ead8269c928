package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/vaxtrack/reminder-api/internal/model"
	"github.com/vaxtrack/reminder-api/pkg/metrics"
)

type dispatchRepository struct {
	db      *sqlx.DB
	metrics *metrics.Metrics
}

func NewDispatchRepository(db *sqlx.DB, m *metrics.Metrics) *dispatchRepository {
	return &dispatchRepository{db: db, metrics: m}
}

const dispatchLogColumns = `
	id, reminder_id, user_id, channel, offset_days, fire_at, status, last_error, created_at
`

// MarkFired appends the (channel, offset) marker to the reminder and writes
// the log row in the same transaction. The jsonb update is conditioned on the
// marker being absent, so a concurrent or retried fire claims nothing.
func (r *dispatchRepository) MarkFired(ctx context.Context, reminderID uuid.UUID, markerKey string, entry *model.DispatchLogEntry) (_ bool, err error) {
	defer func(start time.Time) { track(r.metrics, "dispatch.mark_fired", start, err) }(time.Now())

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE reminders
		SET fired_markers = fired_markers || to_jsonb($1::text),
			updated_at = $2
		WHERE id = $3
		AND NOT fired_markers @> to_jsonb($1::text)
	`, markerKey, time.Now(), reminderID)
	if err != nil {
		return false, fmt.Errorf("failed to record fired marker: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return false, nil
	}

	if err = insertLog(ctx, tx, entry); err != nil {
		return false, err
	}

	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit fired marker: %w", err)
	}
	return true, nil
}

func (r *dispatchRepository) LogFailure(ctx context.Context, entry *model.DispatchLogEntry) (err error) {
	defer func(start time.Time) { track(r.metrics, "dispatch.log_failure", start, err) }(time.Now())

	err = insertLog(ctx, r.db, entry)
	return err
}

func (r *dispatchRepository) ListForReminder(ctx context.Context, reminderID uuid.UUID) (_ []*model.DispatchLogEntry, err error) {
	defer func(start time.Time) { track(r.metrics, "dispatch.list", start, err) }(time.Now())

	query := `
		SELECT ` + dispatchLogColumns + `
		FROM dispatch_log
		WHERE reminder_id = $1
		ORDER BY created_at DESC
	`
	var entries []*model.DispatchLogEntry
	if err = r.db.SelectContext(ctx, &entries, query, reminderID); err != nil {
		return nil, fmt.Errorf("failed to list dispatch log: %w", err)
	}
	return entries, nil
}

func insertLog(ctx context.Context, e sqlx.ExecerContext, entry *model.DispatchLogEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = time.Now()

	_, err := e.ExecContext(ctx, `
		INSERT INTO dispatch_log (`+dispatchLogColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		entry.ID, entry.ReminderID, entry.UserID, entry.Channel, entry.OffsetDays,
		entry.FireAt, entry.Status, entry.LastError, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert dispatch log entry: %w", err)
	}
	return nil
}
