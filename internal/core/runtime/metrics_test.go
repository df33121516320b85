package runtime

import (
	"sync"
	"testing"
	"time"
)

func TestInMemoryMetricsTracksAPICalls(t *testing.T) {
	t.Parallel()

	m := NewInMemoryMetrics()
	m.RecordAPICall(300*time.Millisecond, true)
	m.RecordAPICall(100*time.Millisecond, false)
	m.RecordAPICall(200*time.Millisecond, true)

	snap := m.GetSnapshot()
	if snap.APICalls.Total != 3 || snap.APICalls.Success != 2 || snap.APICalls.Failed != 1 {
		t.Fatalf("unexpected counts: %+v", snap.APICalls)
	}
	if snap.APICalls.MinTime != 100*time.Millisecond {
		t.Fatalf("expected min 100ms, got %v", snap.APICalls.MinTime)
	}
	if snap.APICalls.MaxTime != 300*time.Millisecond {
		t.Fatalf("expected max 300ms, got %v", snap.APICalls.MaxTime)
	}
	if snap.APICalls.Average() != 200*time.Millisecond {
		t.Fatalf("expected average 200ms, got %v", snap.APICalls.Average())
	}
	if snap.LastAPICallTime.IsZero() {
		t.Fatalf("expected last call time to be recorded")
	}
}

func TestInMemoryMetricsTransitionsAndReset(t *testing.T) {
	t.Parallel()

	m := NewInMemoryMetrics()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.RecordTransition("analyzing")
			m.RecordStaleResolution()
		}()
	}
	wg.Wait()
	m.RecordTransition("revealed")

	snap := m.GetSnapshot()
	if snap.Transitions["analyzing"] != 10 || snap.Transitions["revealed"] != 1 {
		t.Fatalf("unexpected transitions: %v", snap.Transitions)
	}
	if snap.StaleResolutions != 10 {
		t.Fatalf("expected 10 stale resolutions, got %d", snap.StaleResolutions)
	}

	// Snapshots must not alias internal state.
	snap.Transitions["revealed"] = 99
	if m.GetSnapshot().Transitions["revealed"] != 1 {
		t.Fatalf("snapshot mutation leaked into collector")
	}

	m.Reset()
	snap = m.GetSnapshot()
	if snap.APICalls.Total != 0 || len(snap.Transitions) != 0 || snap.StaleResolutions != 0 {
		t.Fatalf("expected empty metrics after reset, got %+v", snap)
	}
	if snap.APICalls.MinTime != 0 || snap.APICalls.MaxTime != 0 {
		t.Fatalf("expected zero min/max before any call")
	}
}
