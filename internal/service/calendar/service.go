package calendar

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/vaxtrack/reminder-api/internal/model"
	"github.com/vaxtrack/reminder-api/internal/repository"
	"github.com/vaxtrack/reminder-api/internal/service/reminder"
	"github.com/vaxtrack/reminder-api/pkg/errors"
)

type Service struct {
	repo repository.ReminderRepository
}

func NewService(repo repository.ReminderRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetCalendarView(ctx context.Context, userID uuid.UUID, start, end time.Time, mode model.CalendarMode) (*model.CalendarView, error) {
	if end.Before(start) {
		return nil, errors.Validation("window end must not precede window start", nil)
	}
	if mode != model.CalendarModeMonth && mode != model.CalendarModeWeek {
		return nil, errors.Validation(fmt.Sprintf("unknown calendar mode %q", mode), nil)
	}

	// Fetch with the widened window so month grids get their edge days.
	fetchStart, fetchEnd := start, end
	if mode == model.CalendarModeMonth {
		fetchStart, fetchEnd = expandToWholeWeeks(start, end)
	}

	reminders, err := s.repo.ListByUserAndRange(ctx, userID, fetchStart, fetchEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to load reminders for calendar: %w", err)
	}

	return BuildView(reminders, start, end, mode, time.Now()), nil
}

// BuildView buckets reminders per day over the window. It is a pure read-side
// projection: idempotent, no side effects, recomputed on every call. Month
// mode widens the window to whole Monday-based weeks so the grid always has
// complete rows.
func BuildView(reminders []*model.Reminder, windowStart, windowEnd time.Time, mode model.CalendarMode, now time.Time) *model.CalendarView {
	start := truncateToDay(windowStart)
	end := truncateToDay(windowEnd)
	if mode == model.CalendarModeMonth {
		start, end = expandToWholeWeeks(start, end)
	}

	buckets := make(map[string][]model.CalendarEvent)
	for _, r := range reminders {
		day := truncateToDay(r.ScheduledDate)
		if day.Before(start) || day.After(end) {
			continue
		}
		key := day.Format("2006-01-02")
		buckets[key] = append(buckets[key], model.CalendarEvent{
			ReminderID:         r.ID,
			Name:               r.Name,
			ScheduledTime:      r.ScheduledTime,
			Priority:           r.Priority,
			Status:             reminder.Resolve(r, now),
			GovernmentMandated: r.GovernmentMandated,
		})
	}

	view := &model.CalendarView{
		WindowStart: start,
		WindowEnd:   end,
		Mode:        mode,
		Days:        make([]model.DayBucket, 0, int(end.Sub(start).Hours()/24)+1),
	}
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		events := buckets[day.Format("2006-01-02")]
		sortEvents(events)
		view.Days = append(view.Days, model.DayBucket{Date: day, Events: events})
	}
	return view
}

// sortEvents orders a day bucket: actionable statuses (overdue, due today)
// before pending, then priority descending, then time-of-day ascending.
func sortEvents(events []model.CalendarEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		ri, rj := statusRank(events[i].Status), statusRank(events[j].Status)
		if ri != rj {
			return ri < rj
		}
		if events[i].Priority.Rank() != events[j].Priority.Rank() {
			return events[i].Priority.Rank() > events[j].Priority.Rank()
		}
		return events[i].ScheduledTime < events[j].ScheduledTime
	})
}

func statusRank(s model.EffectiveStatus) int {
	switch s {
	case model.EffectiveStatusOverdue, model.EffectiveStatusDueToday:
		return 0
	case model.EffectiveStatusPending:
		return 1
	}
	return 2
}

// expandToWholeWeeks widens [start, end] to the Monday on or before start and
// the Sunday on or after end.
func expandToWholeWeeks(start, end time.Time) (time.Time, time.Time) {
	start = truncateToDay(start)
	end = truncateToDay(end)

	for start.Weekday() != time.Monday {
		start = start.AddDate(0, 0, -1)
	}
	for end.Weekday() != time.Sunday {
		end = end.AddDate(0, 0, 1)
	}
	return start, end
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
