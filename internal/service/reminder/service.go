package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vaxtrack/reminder-api/internal/model"
	"github.com/vaxtrack/reminder-api/internal/repository"
	"github.com/vaxtrack/reminder-api/internal/service/recurrence"
	"github.com/vaxtrack/reminder-api/pkg/errors"
	"github.com/vaxtrack/reminder-api/pkg/logger"
)

const (
	MaxOffsetDays       = 365
	DefaultUpcomingDays = 30
)

type Service struct {
	repo   repository.ReminderRepository
	logger *logger.Logger
}

func NewService(repo repository.ReminderRepository, logger *logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) CreateReminder(ctx context.Context, userID uuid.UUID, req *model.CreateReminderRequest) (*model.Reminder, error) {
	scheduledDate, err := time.Parse("2006-01-02", req.ScheduledDate)
	if err != nil {
		return nil, errors.Validation("invalid scheduled date", err)
	}

	reminder := &model.Reminder{
		ID:            uuid.New(),
		UserID:        userID,
		Name:          req.Name,
		Description:   req.Description,
		Category:      model.CategoryCustom,
		ScheduledDate: scheduledDate,
		ScheduledTime: req.ScheduledTime,
		Priority:      req.Priority,
		Status:        model.ReminderStatusPending,
		Recurrence:    model.Recurrence{Unit: model.RecurrenceNone},
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if req.Recurrence != nil {
		reminder.Recurrence = *req.Recurrence
	}
	if req.NotificationSettings != nil {
		reminder.NotificationSettings = *req.NotificationSettings
	}

	if err := s.validateReminder(reminder); err != nil {
		return nil, fmt.Errorf("invalid reminder: %w", err)
	}

	if err := s.repo.Create(ctx, reminder); err != nil {
		return nil, fmt.Errorf("failed to create reminder: %w", err)
	}
	return reminder, nil
}

func (s *Service) GetReminder(ctx context.Context, id uuid.UUID) (*model.Reminder, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListReminders(ctx context.Context, userID uuid.UUID) ([]*model.ReminderView, error) {
	reminders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	return views(reminders, time.Now()), nil
}

// UpdateReminder applies the patch under the per-id optimistic version check.
// An edit that moves the scheduled instant or reconfigures notifications
// resets the fired markers: the old dispatch instants no longer exist, so
// dispatches are recomputed from the new values on the next scheduling pass.
// Patching the status to completed behaves exactly like CompleteReminder: a
// recurring reminder spawns its next instance.
func (s *Service) UpdateReminder(ctx context.Context, id uuid.UUID, req *model.UpdateReminderRequest) (*model.Reminder, error) {
	reminder, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	resetMarkers := false
	completing := false

	if req.Name != nil {
		reminder.Name = *req.Name
	}
	if req.Description != nil {
		reminder.Description = *req.Description
	}
	if req.ScheduledDate != nil {
		scheduledDate, err := time.Parse("2006-01-02", *req.ScheduledDate)
		if err != nil {
			return nil, errors.Validation("invalid scheduled date", err)
		}
		if !scheduledDate.Equal(reminder.ScheduledDate) {
			reminder.ScheduledDate = scheduledDate
			resetMarkers = true
		}
	}
	if req.ScheduledTime != nil && *req.ScheduledTime != reminder.ScheduledTime {
		reminder.ScheduledTime = *req.ScheduledTime
		resetMarkers = true
	}
	if req.Priority != nil {
		reminder.Priority = *req.Priority
	}
	if req.Status != nil && *req.Status != reminder.Status {
		reminder.Status = *req.Status
		if *req.Status == model.ReminderStatusCompleted {
			now := time.Now()
			reminder.CompletedAt = &now
			completing = true
		} else {
			reminder.CompletedAt = nil
		}
	}
	if req.Recurrence != nil {
		reminder.Recurrence = *req.Recurrence
	}
	if req.NotificationSettings != nil {
		reminder.NotificationSettings = *req.NotificationSettings
		resetMarkers = true
	}

	if err := s.validateReminder(reminder); err != nil {
		return nil, fmt.Errorf("invalid reminder: %w", err)
	}

	if resetMarkers {
		reminder.FiredMarkers = nil
	}

	if err := s.repo.Update(ctx, reminder); err != nil {
		return nil, fmt.Errorf("failed to update reminder: %w", err)
	}

	if completing && !reminder.Recurrence.IsNone() {
		if err := s.advanceRecurring(ctx, reminder); err != nil {
			s.logger.Error(err, "failed to advance recurring reminder", "reminder_id", reminder.ID.String())
		}
	}
	return reminder, nil
}

// CompleteReminder marks the reminder completed. A recurring reminder is a
// template with one live instance at a time: completion spawns the next
// instance at the rule's next occurrence with fresh dispatch state.
func (s *Service) CompleteReminder(ctx context.Context, id uuid.UUID) (*model.Reminder, error) {
	reminder, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if reminder.IsTerminal() {
		return nil, errors.Validation(fmt.Sprintf("reminder is already %s", reminder.Status), nil)
	}

	now := time.Now()
	reminder.Status = model.ReminderStatusCompleted
	reminder.CompletedAt = &now

	if err := s.repo.Update(ctx, reminder); err != nil {
		return nil, fmt.Errorf("failed to complete reminder: %w", err)
	}

	if !reminder.Recurrence.IsNone() {
		if err := s.advanceRecurring(ctx, reminder); err != nil {
			s.logger.Error(err, "failed to advance recurring reminder", "reminder_id", reminder.ID.String())
		}
	}

	return reminder, nil
}

func (s *Service) advanceRecurring(ctx context.Context, completed *model.Reminder) error {
	nextDate, err := recurrence.Next(completed.ScheduledDate, completed.Recurrence)
	if err != nil {
		return fmt.Errorf("failed to compute next occurrence: %w", err)
	}

	next := &model.Reminder{
		ID:                   uuid.New(),
		UserID:               completed.UserID,
		Name:                 completed.Name,
		Description:          completed.Description,
		Category:             completed.Category,
		ScheduledDate:        nextDate,
		ScheduledTime:        completed.ScheduledTime,
		Priority:             completed.Priority,
		Status:               model.ReminderStatusPending,
		Recurrence:           completed.Recurrence,
		NotificationSettings: completed.NotificationSettings,
		GovernmentMandated:   completed.GovernmentMandated,
		LinkedScheduleID:     completed.LinkedScheduleID,
		CreatedAt:            time.Now(),
		UpdatedAt:            time.Now(),
	}

	if err := s.repo.Create(ctx, next); err != nil {
		return fmt.Errorf("failed to create next occurrence: %w", err)
	}

	s.logger.Info("advanced recurring reminder",
		"reminder_id", completed.ID.String(),
		"next_id", next.ID.String(),
		"next_date", nextDate.Format("2006-01-02"))
	return nil
}

func (s *Service) DeleteReminder(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}
	return nil
}

// GetUpcoming returns reminders falling due within the next days, pending or
// due today as of now.
func (s *Service) GetUpcoming(ctx context.Context, userID uuid.UUID, days int) ([]*model.ReminderView, error) {
	if days <= 0 {
		days = DefaultUpcomingDays
	}
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, days)

	reminders, err := s.repo.ListByUserAndRange(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming reminders: %w", err)
	}

	var upcoming []*model.ReminderView
	for _, r := range reminders {
		status := Resolve(r, now)
		if status == model.EffectiveStatusPending || status == model.EffectiveStatusDueToday {
			upcoming = append(upcoming, &model.ReminderView{Reminder: r, EffectiveStatus: status})
		}
	}
	return upcoming, nil
}

func (s *Service) GetOverdue(ctx context.Context, userID uuid.UUID) ([]*model.ReminderView, error) {
	reminders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}

	now := time.Now()
	var overdue []*model.ReminderView
	for _, r := range reminders {
		if Resolve(r, now) == model.EffectiveStatusOverdue {
			overdue = append(overdue, &model.ReminderView{Reminder: r, EffectiveStatus: model.EffectiveStatusOverdue})
		}
	}
	return overdue, nil
}

func (s *Service) validateReminder(r *model.Reminder) error {
	if r.Name == "" {
		return errors.Validation("name is required", nil)
	}
	if r.UserID == uuid.Nil {
		return errors.Validation("user ID is required", nil)
	}
	if r.ScheduledDate.IsZero() {
		return errors.Validation("scheduled date is required", nil)
	}
	if _, err := time.Parse("15:04", r.ScheduledTime); err != nil {
		return errors.Validation("scheduled time must be HH:MM", err)
	}
	if r.Priority.Rank() == 0 {
		return errors.Validation(fmt.Sprintf("unknown priority %q", r.Priority), nil)
	}
	if !r.Recurrence.IsNone() && r.Recurrence.Interval < 1 {
		return errors.Validation("recurrence interval must be positive", nil)
	}
	for _, offset := range r.NotificationSettings.OffsetDays {
		if offset < 0 {
			return errors.Validation(fmt.Sprintf("advance notice offset must be non-negative, got %d", offset), nil)
		}
		if offset > MaxOffsetDays {
			return errors.Validation(fmt.Sprintf("advance notice offset cannot exceed %d days", MaxOffsetDays), nil)
		}
	}
	return nil
}

func views(reminders []*model.Reminder, now time.Time) []*model.ReminderView {
	out := make([]*model.ReminderView, 0, len(reminders))
	for _, r := range reminders {
		out = append(out, &model.ReminderView{Reminder: r, EffectiveStatus: Resolve(r, now)})
	}
	return out
}
