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

const scheduleColumns = `
	id, vaccine_name, age_group, doses, interval_between_doses,
	booster_required, booster_interval_days, priority, source, description,
	created_at, updated_at
`

type scheduleRepository struct {
	db      *sqlx.DB
	metrics *metrics.Metrics
}

func NewScheduleRepository(db *sqlx.DB, m *metrics.Metrics) *scheduleRepository {
	return &scheduleRepository{db: db, metrics: m}
}

func (r *scheduleRepository) Get(ctx context.Context, id uuid.UUID) (_ *model.GovernmentVaccineSchedule, err error) {
	defer func(start time.Time) { track(r.metrics, "schedule.get", start, err) }(time.Now())

	query := `SELECT ` + scheduleColumns + ` FROM government_vaccine_schedules WHERE id = $1`

	var schedule model.GovernmentVaccineSchedule
	err = r.db.GetContext(ctx, &schedule, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("schedule", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}
	return &schedule, nil
}

func (r *scheduleRepository) List(ctx context.Context) (_ []*model.GovernmentVaccineSchedule, err error) {
	defer func(start time.Time) { track(r.metrics, "schedule.list", start, err) }(time.Now())

	query := `SELECT ` + scheduleColumns + ` FROM government_vaccine_schedules ORDER BY vaccine_name ASC`

	var schedules []*model.GovernmentVaccineSchedule
	if err = r.db.SelectContext(ctx, &schedules, query); err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	return schedules, nil
}

// ReplaceAll swaps the reference table wholesale, the way the upstream feed
// delivers it. Runs in one transaction so readers never see a partial feed.
func (r *scheduleRepository) ReplaceAll(ctx context.Context, schedules []*model.GovernmentVaccineSchedule) (err error) {
	defer func(start time.Time) { track(r.metrics, "schedule.replace_all", start, err) }(time.Now())

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, `DELETE FROM government_vaccine_schedules`); err != nil {
		return fmt.Errorf("failed to clear schedules: %w", err)
	}

	insert := `
		INSERT INTO government_vaccine_schedules (` + scheduleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	now := time.Now()
	for _, s := range schedules {
		if s.ID == uuid.Nil {
			s.ID = uuid.New()
		}
		s.CreatedAt = now
		s.UpdatedAt = now
		if _, err = tx.ExecContext(ctx, insert,
			s.ID, s.VaccineName, s.AgeGroup, s.Doses, s.IntervalBetweenDoses,
			s.BoosterRequired, s.BoosterIntervalDays, s.Priority, s.Source, s.Description,
			s.CreatedAt, s.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert schedule %s: %w", s.VaccineName, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schedule refresh: %w", err)
	}
	return nil
}
