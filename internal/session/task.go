package session

import (
	"context"
	"sync"

	"github.com/asynkron/vibecheck/internal/core/aura"
)

// Outcome is how a Task resolved.
type Outcome struct {
	// Applied is false when the machine had moved on and the resolution was
	// discarded.
	Applied bool
	State   State
	Result  *aura.Result
	Err     *Error
}

// Task is the future for one analysis. It resolves exactly once.
type Task struct {
	seq     uint64
	traceID string
	image   ImageInfo

	once    sync.Once
	done    chan struct{}
	outcome Outcome
}

func newTask(seq uint64, traceID string, image ImageInfo) *Task {
	return &Task{seq: seq, traceID: traceID, image: image, done: make(chan struct{})}
}

// TraceID correlates the task with log lines.
func (t *Task) TraceID() string { return t.traceID }

// Image describes the upload the task is analyzing.
func (t *Task) Image() ImageInfo { return t.image }

// Done is closed once the task has resolved.
func (t *Task) Done() <-chan struct{} { return t.done }

// Outcome returns the resolution, if any.
func (t *Task) Outcome() (Outcome, bool) {
	select {
	case <-t.done:
		return t.outcome, true
	default:
		return Outcome{}, false
	}
}

// Wait blocks until the task resolves or ctx ends.
func (t *Task) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-t.done:
		return t.outcome, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

func (t *Task) resolve(outcome Outcome) {
	t.once.Do(func() {
		t.outcome = outcome
		close(t.done)
	})
}
