package runtime

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics collects counters for analysis calls and session transitions.
type Metrics interface {
	// RecordAPICall records one generateContent round trip.
	RecordAPICall(duration time.Duration, success bool)
	// RecordTransition records a session entering the named state.
	RecordTransition(state string)
	// RecordStaleResolution records an analysis result discarded because the
	// session had already moved on.
	RecordStaleResolution()
	// GetSnapshot returns the current metrics snapshot.
	GetSnapshot() MetricsSnapshot
	// Reset clears all metrics.
	Reset()
}

// MetricsSnapshot contains a point-in-time view of collected metrics.
type MetricsSnapshot struct {
	APICalls         APICallMetrics
	Transitions      map[string]int64
	StaleResolutions int64
	LastAPICallTime  time.Time
}

// APICallMetrics tracks generation API call statistics.
type APICallMetrics struct {
	Total     int64
	Success   int64
	Failed    int64
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration
}

// Average returns the mean call duration, or zero before the first call.
func (a APICallMetrics) Average() time.Duration {
	if a.Total == 0 {
		return 0
	}
	return a.TotalTime / time.Duration(a.Total)
}

// NoOpMetrics is a metrics collector that discards all metrics.
type NoOpMetrics struct{}

func (n *NoOpMetrics) RecordAPICall(_ time.Duration, _ bool) {}
func (n *NoOpMetrics) RecordTransition(_ string)             {}
func (n *NoOpMetrics) RecordStaleResolution()                {}
func (n *NoOpMetrics) GetSnapshot() MetricsSnapshot          { return MetricsSnapshot{} }
func (n *NoOpMetrics) Reset()                                {}

// InMemoryMetrics is a thread-safe in-memory metrics collector.
type InMemoryMetrics struct {
	mu              sync.RWMutex
	apiCalls        APICallMetrics
	transitions     map[string]int64
	lastAPICallTime time.Time

	staleResolutions atomic.Int64
	apiMinTime       atomic.Int64 // nanoseconds
	apiMaxTime       atomic.Int64 // nanoseconds
}

// NewInMemoryMetrics creates a new in-memory metrics collector.
func NewInMemoryMetrics() *InMemoryMetrics {
	m := &InMemoryMetrics{
		transitions: make(map[string]int64),
	}
	// First measurement must always win the min comparison.
	m.apiMinTime.Store(int64(time.Hour))
	return m
}

func (m *InMemoryMetrics) RecordAPICall(duration time.Duration, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.apiCalls.Total++
	if success {
		m.apiCalls.Success++
	} else {
		m.apiCalls.Failed++
	}
	m.apiCalls.TotalTime += duration
	m.lastAPICallTime = time.Now()

	durNanos := int64(duration)
	for {
		oldMin := m.apiMinTime.Load()
		if durNanos >= oldMin || m.apiMinTime.CompareAndSwap(oldMin, durNanos) {
			break
		}
	}
	for {
		oldMax := m.apiMaxTime.Load()
		if durNanos <= oldMax || m.apiMaxTime.CompareAndSwap(oldMax, durNanos) {
			break
		}
	}
}

func (m *InMemoryMetrics) RecordTransition(state string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitions[state]++
}

func (m *InMemoryMetrics) RecordStaleResolution() {
	m.staleResolutions.Add(1)
}

func (m *InMemoryMetrics) GetSnapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot := MetricsSnapshot{
		APICalls:         m.apiCalls,
		Transitions:      make(map[string]int64, len(m.transitions)),
		StaleResolutions: m.staleResolutions.Load(),
		LastAPICallTime:  m.lastAPICallTime,
	}
	for k, v := range m.transitions {
		snapshot.Transitions[k] = v
	}

	if snapshot.APICalls.Total > 0 {
		snapshot.APICalls.MinTime = time.Duration(m.apiMinTime.Load())
		snapshot.APICalls.MaxTime = time.Duration(m.apiMaxTime.Load())
	}
	return snapshot
}

func (m *InMemoryMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.apiCalls = APICallMetrics{}
	m.transitions = make(map[string]int64)
	m.lastAPICallTime = time.Time{}
	m.staleResolutions.Store(0)
	m.apiMinTime.Store(int64(time.Hour))
	m.apiMaxTime.Store(0)
}
