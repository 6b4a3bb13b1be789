package clearinghouse

import (
	"sync"
	"time"
)

// Metrics tracks connector request outcomes, overall and per operation.
// Snapshot gives a consistent read for a health page.
type Metrics struct {
	mu           sync.Mutex
	total        int64
	failed       int64
	rejected     int64
	latencyTotal int64 // microseconds
	byOp         map[string]OpCounters
}

// OpCounters is the per-operation slice of the connector counters.
type OpCounters struct {
	Total    int64 `json:"total"`
	Failed   int64 `json:"failed"`
	Rejected int64 `json:"rejected"`
}

// MetricsSnapshot is a point-in-time view of the connector counters.
type MetricsSnapshot struct {
	TotalRequests  int64                 `json:"total_requests"`
	FailedRequests int64                 `json:"failed_requests"`
	Rejections     int64                 `json:"rejections"`
	SuccessRate    float64               `json:"success_rate"`
	AvgLatencyMS   float64               `json:"avg_latency_ms"`
	ByOperation    map[string]OpCounters `json:"by_operation"`
}

func (m *Metrics) record(op string, elapsed time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.byOp == nil {
		m.byOp = make(map[string]OpCounters)
	}
	c := m.byOp[op]

	m.total++
	c.Total++
	m.latencyTotal += elapsed.Microseconds()

	switch err.(type) {
	case nil:
	case *RejectionError:
		m.rejected++
		c.Rejected++
	default:
		m.failed++
		c.Failed++
	}
	m.byOp[op] = c
}

// Snapshot returns the current counters. Rejections count as completed
// round trips for the success-rate calculation; only transport failures
// lower it.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := MetricsSnapshot{
		TotalRequests:  m.total,
		FailedRequests: m.failed,
		Rejections:     m.rejected,
		ByOperation:    make(map[string]OpCounters, len(m.byOp)),
	}
	for op, c := range m.byOp {
		s.ByOperation[op] = c
	}
	if m.total > 0 {
		s.SuccessRate = float64(m.total-m.failed) / float64(m.total)
		s.AvgLatencyMS = float64(m.latencyTotal) / float64(m.total) / 1000.0
	}
	return s
}
