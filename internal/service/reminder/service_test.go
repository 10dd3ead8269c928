package reminder

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaxtrack/reminder-api/internal/model"
	"github.com/vaxtrack/reminder-api/pkg/errors"
	"github.com/vaxtrack/reminder-api/pkg/logger"
)

type fakeReminderRepo struct {
	reminders map[uuid.UUID]*model.Reminder
	updateErr error
}

func newFakeReminderRepo() *fakeReminderRepo {
	return &fakeReminderRepo{reminders: make(map[uuid.UUID]*model.Reminder)}
}

func (f *fakeReminderRepo) Create(ctx context.Context, r *model.Reminder) error {
	cp := *r
	f.reminders[r.ID] = &cp
	return nil
}

func (f *fakeReminderRepo) Get(ctx context.Context, id uuid.UUID) (*model.Reminder, error) {
	r, ok := f.reminders[id]
	if !ok {
		return nil, errors.NotFound("reminder", nil)
	}
	cp := *r
	return &cp, nil
}

func (f *fakeReminderRepo) Update(ctx context.Context, r *model.Reminder) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.reminders[r.ID]; !ok {
		return errors.NotFound("reminder", nil)
	}
	r.Version++
	cp := *r
	f.reminders[r.ID] = &cp
	return nil
}

func (f *fakeReminderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.reminders[id]; !ok {
		return errors.NotFound("reminder", nil)
	}
	delete(f.reminders, id)
	return nil
}

func (f *fakeReminderRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Reminder, error) {
	var out []*model.Reminder
	for _, r := range f.reminders {
		if r.UserID == userID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeReminderRepo) ListByUserAndRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]*model.Reminder, error) {
	var out []*model.Reminder
	for _, r := range f.reminders {
		if r.UserID == userID && !r.ScheduledDate.Before(start) && !r.ScheduledDate.After(end) {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeReminderRepo) ListActive(ctx context.Context, limit int) ([]*model.Reminder, error) {
	var out []*model.Reminder
	for _, r := range f.reminders {
		if r.Status == model.ReminderStatusPending && len(r.NotificationSettings.Channels) > 0 {
			cp := *r
			out = append(out, &cp)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func newTestService(repo *fakeReminderRepo) *Service {
	return NewService(repo, logger.NewLogger(nil))
}

func strPtr(s string) *string { return &s }

func TestCreateReminderDefaults(t *testing.T) {
	repo := newFakeReminderRepo()
	svc := newTestService(repo)
	userID := uuid.New()

	created, err := svc.CreateReminder(context.Background(), userID, &model.CreateReminderRequest{
		Name:          "Flu shot",
		ScheduledDate: "2024-10-01",
		ScheduledTime: "09:00",
		Priority:      model.PriorityHigh,
	})
	require.NoError(t, err)

	assert.Equal(t, userID, created.UserID)
	assert.Equal(t, model.CategoryCustom, created.Category)
	assert.Equal(t, model.ReminderStatusPending, created.Status)
	assert.True(t, created.Recurrence.IsNone())
	assert.Empty(t, created.FiredMarkers)
	assert.Contains(t, repo.reminders, created.ID)
}

func TestCreateReminderRejectsBadInput(t *testing.T) {
	svc := newTestService(newFakeReminderRepo())
	userID := uuid.New()

	_, err := svc.CreateReminder(context.Background(), userID, &model.CreateReminderRequest{
		Name:          "Flu shot",
		ScheduledDate: "2024-10-01",
		ScheduledTime: "9am",
		Priority:      model.PriorityHigh,
	})
	assert.True(t, errors.IsValidation(err))

	_, err = svc.CreateReminder(context.Background(), userID, &model.CreateReminderRequest{
		Name:          "Flu shot",
		ScheduledDate: "2024-10-01",
		ScheduledTime: "09:00",
		Priority:      "urgent",
	})
	assert.True(t, errors.IsValidation(err))

	offsets := &model.NotificationSettings{Channels: []string{"push"}, OffsetDays: []int{400}}
	_, err = svc.CreateReminder(context.Background(), userID, &model.CreateReminderRequest{
		Name:                 "Flu shot",
		ScheduledDate:        "2024-10-01",
		ScheduledTime:        "09:00",
		Priority:             model.PriorityHigh,
		NotificationSettings: offsets,
	})
	assert.True(t, errors.IsValidation(err), "offset beyond a year is rejected")
}

func TestUpdateReminderResetsMarkersOnReschedule(t *testing.T) {
	repo := newFakeReminderRepo()
	svc := newTestService(repo)

	r := &model.Reminder{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		Name:          "Tetanus booster",
		ScheduledDate: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		ScheduledTime: "09:00",
		Priority:      model.PriorityMedium,
		Status:        model.ReminderStatusPending,
		NotificationSettings: model.NotificationSettings{
			Channels:   []string{"push"},
			OffsetDays: []int{7, 1},
		},
		FiredMarkers: model.FiredMarkers{"push:7"},
	}
	require.NoError(t, repo.Create(context.Background(), r))

	updated, err := svc.UpdateReminder(context.Background(), r.ID, &model.UpdateReminderRequest{
		ScheduledDate: strPtr("2024-07-01"),
	})
	require.NoError(t, err)
	assert.Empty(t, updated.FiredMarkers, "moving the date invalidates fired instants")
}

func TestUpdateReminderKeepsMarkersOnRename(t *testing.T) {
	repo := newFakeReminderRepo()
	svc := newTestService(repo)

	r := &model.Reminder{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		Name:          "Tetanus booster",
		ScheduledDate: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		ScheduledTime: "09:00",
		Priority:      model.PriorityMedium,
		Status:        model.ReminderStatusPending,
		FiredMarkers:  model.FiredMarkers{"push:7"},
	}
	require.NoError(t, repo.Create(context.Background(), r))

	updated, err := svc.UpdateReminder(context.Background(), r.ID, &model.UpdateReminderRequest{
		Name: strPtr("Tdap booster"),
	})
	require.NoError(t, err)
	assert.Equal(t, model.FiredMarkers{"push:7"}, updated.FiredMarkers)
}

func TestUpdateReminderSurfacesVersionConflict(t *testing.T) {
	repo := newFakeReminderRepo()
	svc := newTestService(repo)

	r := &model.Reminder{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		Name:          "MMR dose 2",
		ScheduledDate: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		ScheduledTime: "09:00",
		Priority:      model.PriorityHigh,
		Status:        model.ReminderStatusPending,
	}
	require.NoError(t, repo.Create(context.Background(), r))
	repo.updateErr = errors.Conflict("reminder was modified concurrently", nil)

	_, err := svc.UpdateReminder(context.Background(), r.ID, &model.UpdateReminderRequest{
		Name: strPtr("MMR second dose"),
	})
	assert.True(t, errors.Is(err, errors.ErrConflict))
}

func TestCompleteReminderNonRecurring(t *testing.T) {
	repo := newFakeReminderRepo()
	svc := newTestService(repo)

	r := &model.Reminder{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		Name:          "Flu shot",
		ScheduledDate: time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC),
		ScheduledTime: "09:00",
		Priority:      model.PriorityHigh,
		Status:        model.ReminderStatusPending,
	}
	require.NoError(t, repo.Create(context.Background(), r))

	completed, err := svc.CompleteReminder(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReminderStatusCompleted, completed.Status)
	require.NotNil(t, completed.CompletedAt)
	assert.Len(t, repo.reminders, 1, "non-recurring completion spawns nothing")
}

func TestCompleteReminderAdvancesRecurring(t *testing.T) {
	repo := newFakeReminderRepo()
	svc := newTestService(repo)

	r := &model.Reminder{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		Name:          "Vitamin D",
		ScheduledDate: time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC),
		ScheduledTime: "08:00",
		Priority:      model.PriorityLow,
		Status:        model.ReminderStatusPending,
		Recurrence:    model.Recurrence{Unit: model.RecurrenceMonthly, Interval: 1},
		NotificationSettings: model.NotificationSettings{
			Channels:   []string{"push"},
			OffsetDays: []int{1},
		},
		FiredMarkers: model.FiredMarkers{"push:1"},
	}
	require.NoError(t, repo.Create(context.Background(), r))

	_, err := svc.CompleteReminder(context.Background(), r.ID)
	require.NoError(t, err)
	require.Len(t, repo.reminders, 2)

	var next *model.Reminder
	for id, stored := range repo.reminders {
		if id != r.ID {
			next = stored
		}
	}
	require.NotNil(t, next)
	assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), next.ScheduledDate)
	assert.Equal(t, model.ReminderStatusPending, next.Status)
	assert.Equal(t, r.Recurrence, next.Recurrence)
	assert.Equal(t, r.NotificationSettings, next.NotificationSettings)
	assert.Empty(t, next.FiredMarkers, "next instance starts with fresh dispatch state")
}

func TestUpdateReminderCompletionAdvancesRecurring(t *testing.T) {
	repo := newFakeReminderRepo()
	svc := newTestService(repo)

	r := &model.Reminder{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		Name:          "Vitamin D",
		ScheduledDate: time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC),
		ScheduledTime: "08:00",
		Priority:      model.PriorityLow,
		Status:        model.ReminderStatusPending,
		Recurrence:    model.Recurrence{Unit: model.RecurrenceMonthly, Interval: 1},
	}
	require.NoError(t, repo.Create(context.Background(), r))

	completed := model.ReminderStatusCompleted
	updated, err := svc.UpdateReminder(context.Background(), r.ID, &model.UpdateReminderRequest{
		Status: &completed,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.CompletedAt)
	require.Len(t, repo.reminders, 2, "completing through the patch spawns the next instance too")

	var next *model.Reminder
	for id, stored := range repo.reminders {
		if id != r.ID {
			next = stored
		}
	}
	require.NotNil(t, next)
	assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), next.ScheduledDate)
	assert.Equal(t, model.ReminderStatusPending, next.Status)
}

func TestCompleteReminderRejectsTerminal(t *testing.T) {
	repo := newFakeReminderRepo()
	svc := newTestService(repo)

	r := &model.Reminder{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		Name:          "Flu shot",
		ScheduledDate: time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC),
		ScheduledTime: "09:00",
		Priority:      model.PriorityHigh,
		Status:        model.ReminderStatusCancelled,
	}
	require.NoError(t, repo.Create(context.Background(), r))

	_, err := svc.CompleteReminder(context.Background(), r.ID)
	assert.True(t, errors.IsValidation(err))
}

func TestGetUpcomingFiltersByStatus(t *testing.T) {
	repo := newFakeReminderRepo()
	svc := newTestService(repo)
	userID := uuid.New()

	tomorrow := time.Now().AddDate(0, 0, 1)
	require.NoError(t, repo.Create(context.Background(), &model.Reminder{
		ID:            uuid.New(),
		UserID:        userID,
		Name:          "HPV dose 1",
		ScheduledDate: time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 0, 0, 0, 0, time.UTC),
		ScheduledTime: "10:00",
		Priority:      model.PriorityHigh,
		Status:        model.ReminderStatusPending,
	}))
	require.NoError(t, repo.Create(context.Background(), &model.Reminder{
		ID:            uuid.New(),
		UserID:        userID,
		Name:          "Cancelled checkup",
		ScheduledDate: time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 0, 0, 0, 0, time.UTC),
		ScheduledTime: "10:00",
		Priority:      model.PriorityLow,
		Status:        model.ReminderStatusCancelled,
	}))

	upcoming, err := svc.GetUpcoming(context.Background(), userID, 7)
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, "HPV dose 1", upcoming[0].Name)
}

func TestGetOverdue(t *testing.T) {
	repo := newFakeReminderRepo()
	svc := newTestService(repo)
	userID := uuid.New()

	require.NoError(t, repo.Create(context.Background(), &model.Reminder{
		ID:            uuid.New(),
		UserID:        userID,
		Name:          "Missed polio dose",
		ScheduledDate: time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
		ScheduledTime: "09:00",
		Priority:      model.PriorityCritical,
		Status:        model.ReminderStatusPending,
	}))
	require.NoError(t, repo.Create(context.Background(), &model.Reminder{
		ID:            uuid.New(),
		UserID:        userID,
		Name:          "Done long ago",
		ScheduledDate: time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
		ScheduledTime: "09:00",
		Priority:      model.PriorityLow,
		Status:        model.ReminderStatusCompleted,
	}))

	overdue, err := svc.GetOverdue(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, "Missed polio dose", overdue[0].Name)
	assert.Equal(t, model.EffectiveStatusOverdue, overdue[0].EffectiveStatus)
}
