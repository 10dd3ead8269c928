package recurrence

import (
	"fmt"
	"time"

	"github.com/vaxtrack/reminder-api/internal/model"
	"github.com/vaxtrack/reminder-api/pkg/errors"
)

// Next computes the occurrence following anchor under the given rule. It is a
// pure function: day and week units are exact day addition, month and year
// units add calendar months and clamp an overflowing day-of-month to the last
// valid day of the resulting month (Jan 31 + 1 month = Feb 28/29).
func Next(anchor time.Time, rule model.Recurrence) (time.Time, error) {
	if rule.IsNone() {
		return time.Time{}, errors.NoRecurrence()
	}
	if rule.Interval < 1 {
		return time.Time{}, errors.Validation(fmt.Sprintf("recurrence interval must be positive, got %d", rule.Interval), nil)
	}

	switch rule.Unit {
	case model.RecurrenceDaily:
		return anchor.AddDate(0, 0, rule.Interval), nil
	case model.RecurrenceWeekly:
		return anchor.AddDate(0, 0, 7*rule.Interval), nil
	case model.RecurrenceMonthly:
		return addMonths(anchor, rule.Interval), nil
	case model.RecurrenceYearly:
		return addMonths(anchor, 12*rule.Interval), nil
	}
	return time.Time{}, errors.Validation(fmt.Sprintf("unknown recurrence unit %q", rule.Unit), nil)
}

// addMonths avoids time.AddDate's day normalization (Jan 31 + 1 month would
// roll over to Mar 2/3) by clamping to the target month's last day instead.
func addMonths(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	firstOfTarget := time.Date(year, month, 1, 0, 0, 0, 0, t.Location()).AddDate(0, months, 0)
	if last := lastDayOfMonth(firstOfTarget.Year(), firstOfTarget.Month()); day > last {
		day = last
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func lastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
