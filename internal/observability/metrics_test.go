package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/webhook", "POST", 200, 10*time.Millisecond)
	m.RecordRequest("/webhook", "POST", 200, 30*time.Millisecond)
	m.RecordError("/webhook", "POST", "CONTENT_REJECTED")

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.Requests["/webhook|POST|200"])
	assert.Equal(t, int64(20), snap.AvgLatencyMilli["/webhook|POST|200"])
	assert.Equal(t, int64(1), snap.Errors["/webhook|POST|CONTENT_REJECTED"])
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, time.Millisecond)
	m.RecordError("/", "GET", "X")
	assert.Empty(t, m.Snapshot().Requests)
}
