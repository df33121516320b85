package runtime

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStdLoggerWritesFieldsAndTraceID(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewStdLogger(LogLevelInfo, &buf)
	logger.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	ctx := WithTraceID(context.Background(), "trace-123")
	logger.WithFields(Field("model", "gemini")).Error(ctx, "Generation request failed", errors.New("boom"), Field("duration_ms", 12))

	line := buf.String()
	assert.Contains(t, line, "[2026-01-02T03:04:05Z]")
	assert.Contains(t, line, "[ERROR]")
	assert.Contains(t, line, `[error="boom"]`)
	assert.Contains(t, line, "fields=[model=gemini duration_ms=12 trace_id=trace-123]")
}

func TestStdLoggerRespectsMinimumLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewStdLogger(LogLevelWarn, &buf)
	logger.Debug(context.Background(), "hidden")
	logger.Info(context.Background(), "hidden too")
	logger.Warn(context.Background(), "visible")

	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
	assert.Contains(t, buf.String(), "visible")
}

func TestWithFieldsDoesNotShareBackingArray(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	base := NewStdLogger(LogLevelDebug, &buf).WithFields(Field("a", 1))
	base.WithFields(Field("b", 2))
	base.Info(context.Background(), "only a")

	assert.Contains(t, buf.String(), "fields=[a=1]")
}

func TestNewLoggerWithoutWriterDiscards(t *testing.T) {
	t.Parallel()

	_, ok := NewLogger(LogLevelInfo, nil).(*NoOpLogger)
	assert.True(t, ok)
}

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	level, err := ParseLogLevel(" debug ")
	require.NoError(t, err)
	assert.Equal(t, LogLevelDebug, level)

	level, err = ParseLogLevel("warning")
	require.NoError(t, err)
	assert.Equal(t, LogLevelWarn, level)

	level, err = ParseLogLevel("")
	require.NoError(t, err)
	assert.Equal(t, LogLevelInfo, level)

	_, err = ParseLogLevel("chatty")
	assert.Error(t, err)
}

func TestNewTraceIDIsUnique(t *testing.T) {
	t.Parallel()

	assert.NotEqual(t, NewTraceID(), NewTraceID())
	assert.Equal(t, "", TraceID(context.Background()))
}
