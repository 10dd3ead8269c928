package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFiredMarkers(t *testing.T) {
	var m FiredMarkers

	key := MarkerKey("push", 7)
	assert.Equal(t, "push:7", key)
	assert.False(t, m.Has(key))

	m.Add(key)
	assert.True(t, m.Has(key))

	m.Add(key)
	assert.Len(t, m, 1, "adding an existing marker is a no-op")

	m.Add(MarkerKey("email", 7))
	assert.Len(t, m, 2)
	assert.False(t, m.Has(MarkerKey("push", 1)), "same channel, different offset is a distinct marker")
}

func TestNotificationSettingsValueNeverStoresNull(t *testing.T) {
	v, err := NotificationSettings{}.Value()
	assert.NoError(t, err)
	assert.JSONEq(t, `{"channels":[],"offset_days":[]}`, string(v.([]byte)),
		"zero-value settings store empty arrays, not null")

	v, err = NotificationSettings{Channels: []string{"push"}, OffsetDays: []int{7}}.Value()
	assert.NoError(t, err)
	assert.JSONEq(t, `{"channels":["push"],"offset_days":[7]}`, string(v.([]byte)))
}

func TestScheduledAtCombinesDateAndTime(t *testing.T) {
	r := &Reminder{
		ScheduledDate: time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC),
		ScheduledTime: "14:30",
	}
	assert.Equal(t, time.Date(2024, time.June, 30, 14, 30, 0, 0, time.UTC), r.ScheduledAt())

	r.ScheduledTime = "bogus"
	assert.Equal(t, time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC), r.ScheduledAt(),
		"unparseable time of day falls back to midnight")
}

func TestPriorityRank(t *testing.T) {
	assert.Greater(t, PriorityCritical.Rank(), PriorityHigh.Rank())
	assert.Greater(t, PriorityHigh.Rank(), PriorityMedium.Rank())
	assert.Greater(t, PriorityMedium.Rank(), PriorityLow.Rank())
	assert.Equal(t, 0, Priority("urgent").Rank())
}

func TestRecurrenceIsNone(t *testing.T) {
	assert.True(t, Recurrence{}.IsNone())
	assert.True(t, Recurrence{Unit: RecurrenceNone}.IsNone())
	assert.False(t, Recurrence{Unit: RecurrenceMonthly, Interval: 1}.IsNone())
}
