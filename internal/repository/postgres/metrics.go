package postgres

import (
	"time"

	"github.com/vaxtrack/reminder-api/pkg/metrics"
)

// track records the outcome and latency of one database operation. A nil
// metrics set disables instrumentation, which the tests rely on.
func track(m *metrics.Metrics, op string, start time.Time, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.DatabaseOperations.WithLabelValues(op, status).Inc()
	m.DatabaseLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
