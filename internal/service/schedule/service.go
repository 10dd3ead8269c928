package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/vaxtrack/reminder-api/internal/model"
	"github.com/vaxtrack/reminder-api/internal/repository"
	"github.com/vaxtrack/reminder-api/pkg/errors"
	"github.com/vaxtrack/reminder-api/pkg/logger"
)

const (
	// Boosters on a one-year cadence recur indefinitely; any other interval
	// produces a one-time booster.
	annualBoosterDays = 365

	cacheKeySchedules = "schedules:all"
	cacheTTL          = 15 * time.Minute
)

// Service expands government vaccine schedules into concrete reminders.
// The schedule table is read-mostly reference data, so reads go through a
// small in-memory cache that is dropped on feed refresh.
type Service struct {
	repo         repository.ScheduleRepository
	reminderRepo repository.ReminderRepository
	cache        *gocache.Cache
	logger       *logger.Logger
}

func NewService(repo repository.ScheduleRepository, reminderRepo repository.ReminderRepository, logger *logger.Logger) *Service {
	return &Service{
		repo:         repo,
		reminderRepo: reminderRepo,
		cache:        gocache.New(cacheTTL, 2*cacheTTL),
		logger:       logger,
	}
}

func (s *Service) ListSchedules(ctx context.Context) ([]*model.GovernmentVaccineSchedule, error) {
	if cached, ok := s.cache.Get(cacheKeySchedules); ok {
		return cached.([]*model.GovernmentVaccineSchedule), nil
	}

	schedules, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}

	s.cache.Set(cacheKeySchedules, schedules, gocache.DefaultExpiration)
	return schedules, nil
}

// RefreshFeed replaces the schedule reference data wholesale from the
// external government feed.
func (s *Service) RefreshFeed(ctx context.Context, schedules []*model.GovernmentVaccineSchedule) error {
	for _, sc := range schedules {
		if err := validateSchedule(sc); err != nil {
			return fmt.Errorf("rejecting feed: %w", err)
		}
	}

	if err := s.repo.ReplaceAll(ctx, schedules); err != nil {
		return fmt.Errorf("failed to refresh schedule feed: %w", err)
	}

	s.cache.Delete(cacheKeySchedules)
	s.logger.Info("refreshed government schedule feed", "count", len(schedules))
	return nil
}

// Expand converts one schedule entry into concrete reminders for the user:
// always a primary dose at the reference date, plus a booster at
// referenceDate + boosterIntervalDays when the schedule requires one.
func Expand(schedule *model.GovernmentVaccineSchedule, userID uuid.UUID, referenceDate time.Time) ([]*model.Reminder, error) {
	if err := validateSchedule(schedule); err != nil {
		return nil, err
	}

	now := time.Now()
	primary := &model.Reminder{
		ID:                 uuid.New(),
		UserID:             userID,
		Name:               schedule.VaccineName,
		Description:        schedule.Description,
		Category:           model.CategoryGovernment,
		ScheduledDate:      referenceDate,
		ScheduledTime:      "09:00",
		Priority:           schedule.Priority,
		Status:             model.ReminderStatusPending,
		Recurrence:         model.Recurrence{Unit: model.RecurrenceNone},
		GovernmentMandated: true,
		LinkedScheduleID:   &schedule.ID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	reminders := []*model.Reminder{primary}

	if schedule.BoosterRequired {
		booster := &model.Reminder{
			ID:                 uuid.New(),
			UserID:             userID,
			Name:               fmt.Sprintf("%s (booster)", schedule.VaccineName),
			Description:        schedule.Description,
			Category:           model.CategoryGovernment,
			ScheduledDate:      referenceDate.AddDate(0, 0, schedule.BoosterIntervalDays),
			ScheduledTime:      "09:00",
			Priority:           schedule.Priority,
			Status:             model.ReminderStatusPending,
			Recurrence:         model.Recurrence{Unit: model.RecurrenceNone},
			GovernmentMandated: true,
			LinkedScheduleID:   &schedule.ID,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if schedule.BoosterIntervalDays == annualBoosterDays {
			booster.Recurrence = model.Recurrence{Unit: model.RecurrenceYearly, Interval: 1}
		}
		reminders = append(reminders, booster)
	}

	return reminders, nil
}

// Sync expands the selected schedules for the user. Expansion is additive:
// repeated sync creates new reminders rather than reconciling with existing
// ones (an upsert keyed on (user, linked schedule) is the follow-up if that
// ever changes). A malformed entry fails alone without aborting the batch.
func (s *Service) Sync(ctx context.Context, userID uuid.UUID, scheduleIDs []uuid.UUID, referenceDate time.Time) (*model.SyncResult, error) {
	result := &model.SyncResult{}

	for _, scheduleID := range scheduleIDs {
		schedule, err := s.repo.Get(ctx, scheduleID)
		if err != nil {
			result.Failed = append(result.Failed, model.SyncFailure{ScheduleID: scheduleID, Reason: err.Error()})
			continue
		}

		reminders, err := Expand(schedule, userID, referenceDate)
		if err != nil {
			result.Failed = append(result.Failed, model.SyncFailure{ScheduleID: scheduleID, Reason: err.Error()})
			continue
		}

		for _, r := range reminders {
			if err := s.reminderRepo.Create(ctx, r); err != nil {
				result.Failed = append(result.Failed, model.SyncFailure{ScheduleID: scheduleID, Reason: err.Error()})
				continue
			}
			result.Created = append(result.Created, r)
		}
	}

	s.logger.Info("synced government schedules",
		"user_id", userID.String(),
		"created", len(result.Created),
		"failed", len(result.Failed))
	return result, nil
}

func validateSchedule(schedule *model.GovernmentVaccineSchedule) error {
	if schedule.VaccineName == "" {
		return errors.InvalidSchedule("vaccine name is required", nil)
	}
	if schedule.Doses < 1 {
		return errors.InvalidSchedule(fmt.Sprintf("schedule must have at least one dose, got %d", schedule.Doses), nil)
	}
	if schedule.BoosterRequired && schedule.BoosterIntervalDays < 0 {
		return errors.InvalidSchedule(fmt.Sprintf("booster interval must be non-negative, got %d", schedule.BoosterIntervalDays), nil)
	}
	return nil
}
