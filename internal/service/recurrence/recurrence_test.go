package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaxtrack/reminder-api/internal/model"
	"github.com/vaxtrack/reminder-api/pkg/errors"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextDayAndWeek(t *testing.T) {
	next, err := Next(date(2024, time.March, 10), model.Recurrence{Unit: model.RecurrenceDaily, Interval: 3})
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.March, 13), next)

	next, err = Next(date(2024, time.March, 10), model.Recurrence{Unit: model.RecurrenceWeekly, Interval: 2})
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.March, 24), next)
}

func TestNextMonthClampsOverflowingDay(t *testing.T) {
	next, err := Next(date(2024, time.January, 31), model.Recurrence{Unit: model.RecurrenceMonthly, Interval: 1})
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.February, 29), next, "2024 is a leap year")

	next, err = Next(date(2023, time.January, 31), model.Recurrence{Unit: model.RecurrenceMonthly, Interval: 1})
	require.NoError(t, err)
	assert.Equal(t, date(2023, time.February, 28), next)

	next, err = Next(date(2024, time.May, 31), model.Recurrence{Unit: model.RecurrenceMonthly, Interval: 1})
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.June, 30), next)
}

func TestNextMonthKeepsDayWhenValid(t *testing.T) {
	next, err := Next(date(2024, time.January, 15), model.Recurrence{Unit: model.RecurrenceMonthly, Interval: 6})
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.July, 15), next)
}

func TestNextYearLeapDay(t *testing.T) {
	next, err := Next(date(2024, time.February, 29), model.Recurrence{Unit: model.RecurrenceYearly, Interval: 1})
	require.NoError(t, err)
	assert.Equal(t, date(2025, time.February, 28), next)

	next, err = Next(date(2024, time.February, 29), model.Recurrence{Unit: model.RecurrenceYearly, Interval: 4})
	require.NoError(t, err)
	assert.Equal(t, date(2028, time.February, 29), next)
}

func TestNextPreservesTimeOfDay(t *testing.T) {
	anchor := time.Date(2024, time.January, 31, 9, 30, 0, 0, time.UTC)
	next, err := Next(anchor, model.Recurrence{Unit: model.RecurrenceMonthly, Interval: 1})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.February, 29, 9, 30, 0, 0, time.UTC), next)
}

func TestNextIsMonotonic(t *testing.T) {
	cur := date(2023, time.October, 31)
	rule := model.Recurrence{Unit: model.RecurrenceMonthly, Interval: 1}
	for i := 0; i < 24; i++ {
		next, err := Next(cur, rule)
		require.NoError(t, err)
		assert.True(t, next.After(cur), "occurrence %d did not advance", i)
		cur = next
	}
}

func TestNextRejectsNoneAndBadInterval(t *testing.T) {
	_, err := Next(date(2024, time.March, 10), model.Recurrence{Unit: model.RecurrenceNone})
	assert.True(t, errors.Is(err, errors.ErrNoRecurrence))

	_, err = Next(date(2024, time.March, 10), model.Recurrence{})
	assert.True(t, errors.Is(err, errors.ErrNoRecurrence), "empty unit behaves as none")

	_, err = Next(date(2024, time.March, 10), model.Recurrence{Unit: model.RecurrenceDaily, Interval: 0})
	assert.True(t, errors.Is(err, errors.ErrValidation))

	_, err = Next(date(2024, time.March, 10), model.Recurrence{Unit: "fortnight", Interval: 1})
	assert.True(t, errors.Is(err, errors.ErrValidation))
}
