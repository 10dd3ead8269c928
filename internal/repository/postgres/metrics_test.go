package postgres

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/vaxtrack/reminder-api/pkg/metrics"
)

func TestTrackRecordsOperationOutcome(t *testing.T) {
	m := metrics.NewMetrics("vaxtrack_test", "postgres")

	track(m, "reminder.create", time.Now(), nil)
	track(m, "reminder.create", time.Now(), nil)
	track(m, "reminder.create", time.Now(), fmt.Errorf("connection reset"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.DatabaseOperations.WithLabelValues("reminder.create", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DatabaseOperations.WithLabelValues("reminder.create", "error")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.DatabaseOperations.WithLabelValues("reminder.get", "success")))
}

func TestTrackWithoutMetricsIsNoOp(t *testing.T) {
	assert.NotPanics(t, func() {
		track(nil, "reminder.create", time.Now(), nil)
	})
}
