package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/tickets/generate", "POST", 200, time.Millisecond)
	m.RecordRequest("/tickets/generate", "POST", 200, time.Millisecond)
	m.RecordError("/tickets/generate", "POST", "INVALID_COUNT")
	m.RecordBatch(3, 9, 2*time.Second)
	m.RecordGenerationFailure("GENERATION_FAILED")

	s := m.Snapshot()
	assert.Equal(t, int64(2), s.Requests["/tickets/generate|POST|200"])
	assert.Equal(t, int64(1), s.Errors["/tickets/generate|POST|INVALID_COUNT"])
	assert.Equal(t, int64(1), s.Batches)
	assert.Equal(t, int64(3), s.Tickets)
	assert.Equal(t, int64(9), s.Messages)
	assert.Equal(t, int64(1), s.GenerationFailures["GENERATION_FAILED"])
	assert.InDelta(t, 2.0, s.GenerationSeconds, 1e-9)
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, 0)
	m.RecordBatch(1, 1, 0)
	assert.Equal(t, Snapshot{}, m.Snapshot())
}
