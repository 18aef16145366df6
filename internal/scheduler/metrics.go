package scheduler

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics counts what a watch session did.
type Metrics struct {
	checks        atomic.Int64
	raised        atomic.Int64
	sinkFailures  atomic.Int64
	fetchFailures atomic.Int64

	mu          sync.RWMutex
	sinkLatency time.Duration
	lastRaised  time.Time
	lastCheck   time.Time
	lastError   string
	lastErrorAt time.Time

	errorsByCategory map[string]int64
}

// NewMetrics creates an empty metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{
		errorsByCategory: make(map[string]int64),
	}
}

// MetricsSnapshot is a point-in-time view of Metrics.
type MetricsSnapshot struct {
	ChecksTotal        int64            `json:"checks_total"`
	RaisedTotal        int64            `json:"raised_total"`
	SinkFailuresTotal  int64            `json:"sink_failures_total"`
	FetchFailuresTotal int64            `json:"fetch_failures_total"`
	SinkLatencyMs      int64            `json:"sink_latency_ms"`
	LastRaisedAt       *time.Time       `json:"last_raised_at,omitempty"`
	LastCheckAt        *time.Time       `json:"last_check_at,omitempty"`
	LastError          string           `json:"last_error,omitempty"`
	LastErrorAt        *time.Time       `json:"last_error_at,omitempty"`
	ErrorsByCategory   map[string]int64 `json:"errors_by_category,omitempty"`
}

// Snapshot returns a copy of the current counts.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := MetricsSnapshot{
		ChecksTotal:        m.checks.Load(),
		RaisedTotal:        m.raised.Load(),
		SinkFailuresTotal:  m.sinkFailures.Load(),
		FetchFailuresTotal: m.fetchFailures.Load(),
		SinkLatencyMs:      m.sinkLatency.Milliseconds(),
		LastError:          m.lastError,
		ErrorsByCategory:   make(map[string]int64, len(m.errorsByCategory)),
	}
	if !m.lastRaised.IsZero() {
		t := m.lastRaised
		snap.LastRaisedAt = &t
	}
	if !m.lastCheck.IsZero() {
		t := m.lastCheck
		snap.LastCheckAt = &t
	}
	if !m.lastErrorAt.IsZero() {
		t := m.lastErrorAt
		snap.LastErrorAt = &t
	}
	for k, v := range m.errorsByCategory {
		snap.ErrorsByCategory[k] = v
	}
	return snap
}

// JSON returns the snapshot as indented JSON.
func (m *Metrics) JSON() ([]byte, error) {
	return json.MarshalIndent(m.Snapshot(), "", "  ")
}

// RecordCheck records one evaluation of the known events.
func (m *Metrics) RecordCheck(at time.Time) {
	if m == nil {
		return
	}
	m.checks.Add(1)

	m.mu.Lock()
	m.lastCheck = at
	m.mu.Unlock()
}

// RecordRaised records a notification handed to the sink.
func (m *Metrics) RecordRaised(at time.Time, latency time.Duration) {
	if m == nil {
		return
	}
	m.raised.Add(1)

	m.mu.Lock()
	m.sinkLatency = latency
	m.lastRaised = at
	m.mu.Unlock()
}

// RecordSinkFailure records a sink that returned an error.
func (m *Metrics) RecordSinkFailure(at time.Time, err error) {
	if m == nil {
		return
	}
	m.sinkFailures.Add(1)
	m.recordError(at, "sink", err)
}

// RecordFetchFailure records a detail fetch that failed; the event stays
// armed.
func (m *Metrics) RecordFetchFailure(at time.Time, err error) {
	if m == nil {
		return
	}
	m.fetchFailures.Add(1)
	m.recordError(at, "fetch", err)
}

func (m *Metrics) recordError(at time.Time, category string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastError = err.Error()
	m.lastErrorAt = at
	m.errorsByCategory[category]++
}

// Raised returns how many notifications were raised.
func (m *Metrics) Raised() int64 {
	return m.raised.Load()
}

// Checks returns how many checks ran.
func (m *Metrics) Checks() int64 {
	return m.checks.Load()
}
