// Package session owns the single source of truth for what the application
// is doing: waiting for an image, analyzing it, showing the reading, or
// showing a failure.
package session

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/asynkron/vibecheck/internal/core/aura"
	"github.com/asynkron/vibecheck/internal/core/runtime"
)

// State is the active variant of the session.
type State int

const (
	StateIdle State = iota
	StateAnalyzing
	StateRevealed
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAnalyzing:
		return "analyzing"
	case StateRevealed:
		return "revealed"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// DefaultMaxImageBytes matches the inline-data ceiling of the generation API.
const DefaultMaxImageBytes int64 = 20 << 20

// Analyzer is the remote reading service. runtime.AuraClient satisfies it.
type Analyzer interface {
	Analyze(ctx context.Context, imageBase64, mimeType string) (aura.Result, error)
}

// Options tunes a Machine. Zero values select defaults.
type Options struct {
	MaxImageBytes int64
	Logger        runtime.Logger
	Metrics       runtime.Metrics
}

// Snapshot is a copy of the machine's state for rendering.
type Snapshot struct {
	State   State
	Image   *ImageInfo
	Result  *aura.Result
	Message string
	Err     *Error
}

// Machine coordinates file intake, the analysis lifecycle and the
// presentation states. Only one image may be in flight; further uploads are
// rejected with ErrBusy until the current task resolves or Reset is called.
type Machine struct {
	analyzer Analyzer
	maxBytes int64
	logger   runtime.Logger
	metrics  runtime.Metrics

	mu     sync.Mutex
	state  State
	image  *Image
	result *aura.Result
	err    *Error

	// seq numbers tasks; pending is the seq allowed to commit, zero if none.
	seq     uint64
	pending uint64
}

// NewMachine returns a machine in the Idle state.
func NewMachine(analyzer Analyzer, opts Options) *Machine {
	if opts.MaxImageBytes <= 0 {
		opts.MaxImageBytes = DefaultMaxImageBytes
	}
	if opts.Logger == nil {
		opts.Logger = &runtime.NoOpLogger{}
	}
	if opts.Metrics == nil {
		opts.Metrics = &runtime.NoOpMetrics{}
	}
	return &Machine{
		analyzer: analyzer,
		maxBytes: opts.MaxImageBytes,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		state:    StateIdle,
	}
}

// Select handles a file-selected event. For an image it switches to
// Analyzing before returning and starts the task in the background. A
// non-image moves straight to Error and the returned *Error describes why;
// the analyzer is never called in that case.
func (m *Machine) Select(ctx context.Context, up Upload) (*Task, error) {
	m.mu.Lock()
	switch m.state {
	case StateAnalyzing:
		m.mu.Unlock()
		m.logger.Warn(ctx, "Ignoring upload while another image is analyzing", runtime.Field("name", up.Name))
		return nil, ErrBusy
	case StateRevealed, StateError:
		m.mu.Unlock()
		return nil, ErrNotIdle
	}

	if !IsImage(up.ContentType) {
		failure := invalidInput(up.ContentType)
		m.enterErrorLocked(failure)
		m.mu.Unlock()
		m.logger.Warn(ctx, "Rejected non-image upload",
			runtime.Field("name", up.Name),
			runtime.Field("content_type", up.ContentType),
		)
		return nil, failure
	}

	m.seq++
	m.image.release()
	m.image = newImage(up)
	m.result = nil
	m.err = nil
	m.pending = m.seq
	m.setStateLocked(StateAnalyzing)
	task := newTask(m.seq, runtime.NewTraceID(), m.image.info)
	m.mu.Unlock()

	go m.run(runtime.WithTraceID(ctx, task.traceID), task, up)
	return task, nil
}

// Reset returns to Idle from any state, releasing the image handle. A task
// still in flight becomes stale and its resolution is discarded.
func (m *Machine) Reset() {
	m.mu.Lock()
	previous := m.state
	inFlight := m.pending != 0
	m.image.release()
	m.image = nil
	m.result = nil
	m.err = nil
	m.pending = 0
	if previous != StateIdle {
		m.setStateLocked(StateIdle)
	}
	m.mu.Unlock()

	if previous != StateIdle {
		m.logger.Debug(context.Background(), "Session reset",
			runtime.Field("from", previous),
			runtime.Field("abandoned_task", inFlight),
		)
	}
}

// State reports the active state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Snapshot copies the current state for rendering.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{State: m.state}
	if m.image != nil {
		info := m.image.info
		snap.Image = &info
	}
	if m.result != nil {
		result := *m.result
		snap.Result = &result
	}
	if m.err != nil {
		failure := *m.err
		snap.Err = &failure
		snap.Message = failure.Message
	}
	return snap
}

func (m *Machine) run(ctx context.Context, task *Task, up Upload) {
	m.logger.Info(ctx, "Analyzing image",
		runtime.Field("name", up.Name),
		runtime.Field("content_type", up.ContentType),
	)

	data, err := m.read(up)
	if err != nil {
		task.resolve(m.commit(ctx, task.seq, nil, readFailure(err)))
		return
	}

	payload, ok := m.attach(task.seq, data)
	if !ok {
		// Reset while reading; skip the network call.
		task.resolve(m.commit(ctx, task.seq, nil, nil))
		return
	}

	result, err := m.analyzer.Analyze(ctx, payload, strings.TrimSpace(up.ContentType))
	if err != nil {
		task.resolve(m.commit(ctx, task.seq, nil, analysisFailure(err)))
		return
	}
	task.resolve(m.commit(ctx, task.seq, &result, nil))
}

func (m *Machine) read(up Upload) ([]byte, error) {
	if up.Open == nil {
		return nil, errors.New("upload has no reader")
	}
	rc, err := up.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", up.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, m.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", up.Name, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%s is empty", up.Name)
	}
	if int64(len(data)) > m.maxBytes {
		return nil, fmt.Errorf("%s exceeds the %s limit", up.Name, humanize.IBytes(uint64(m.maxBytes)))
	}
	return data, nil
}

// attach stores the bytes on the handle if the task is still current and
// returns their base64 encoding. Encoding happens under the lock because
// Reset zeroes the bytes.
func (m *Machine) attach(seq uint64, data []byte) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.currentLocked(seq) {
		return "", false
	}
	m.image.attach(data)
	return base64.StdEncoding.EncodeToString(data), true
}

// commit is the single resolution point for a task. It applies the outcome
// only while the machine is still Analyzing that task.
func (m *Machine) commit(ctx context.Context, seq uint64, result *aura.Result, failure *Error) Outcome {
	m.mu.Lock()
	if !m.currentLocked(seq) {
		state := m.state
		m.mu.Unlock()
		m.metrics.RecordStaleResolution()
		m.logger.Debug(ctx, "Discarded stale analysis resolution",
			runtime.Field("task", seq),
			runtime.Field("state", state),
		)
		return Outcome{Applied: false, State: state}
	}

	m.pending = 0
	if failure == nil && result == nil {
		failure = analysisFailure(errors.New("analysis produced no result"))
	}
	if failure != nil {
		m.enterErrorLocked(failure)
		m.mu.Unlock()
		m.logger.Error(ctx, "Analysis ended in error", failure.Cause, runtime.Field("kind", failure.Kind))
		return Outcome{Applied: true, State: StateError, Err: failure}
	}

	stored := *result
	m.result = &stored
	m.setStateLocked(StateRevealed)
	m.mu.Unlock()

	revealed := stored
	return Outcome{Applied: true, State: StateRevealed, Result: &revealed}
}

func (m *Machine) currentLocked(seq uint64) bool {
	return m.state == StateAnalyzing && m.pending == seq
}

func (m *Machine) enterErrorLocked(failure *Error) {
	m.image.release()
	m.image = nil
	m.result = nil
	m.err = failure
	m.setStateLocked(StateError)
}

func (m *Machine) setStateLocked(next State) {
	m.state = next
	m.metrics.RecordTransition(next.String())
}
