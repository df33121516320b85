package runtime

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// LogLevel represents the severity of a log entry.
type LogLevel string

const (
	LogLevelDebug LogLevel = "DEBUG"
	LogLevelInfo  LogLevel = "INFO"
	LogLevelWarn  LogLevel = "WARN"
	LogLevelError LogLevel = "ERROR"
)

var levelRank = map[LogLevel]int{
	LogLevelDebug: 0,
	LogLevelInfo:  1,
	LogLevelWarn:  2,
	LogLevelError: 3,
}

// ParseLogLevel maps a case-insensitive level name to a LogLevel.
func ParseLogLevel(value string) (LogLevel, error) {
	level := LogLevel(strings.ToUpper(strings.TrimSpace(value)))
	if level == "" {
		return LogLevelInfo, nil
	}
	if level == "WARNING" {
		return LogLevelWarn, nil
	}
	if _, ok := levelRank[level]; !ok {
		return LogLevelInfo, fmt.Errorf("unknown log level %q (valid: debug, info, warn, error)", value)
	}
	return level, nil
}

// LogField represents a key-value pair in structured logging.
type LogField struct {
	Key   string
	Value any
}

// Field creates a LogField from a key-value pair.
func Field(key string, value any) LogField {
	return LogField{Key: key, Value: value}
}

// Logger provides structured logging capabilities with context support.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...LogField)
	Info(ctx context.Context, msg string, fields ...LogField)
	Warn(ctx context.Context, msg string, fields ...LogField)
	Error(ctx context.Context, msg string, err error, fields ...LogField)
	WithFields(fields ...LogField) Logger
}

// NoOpLogger is a logger that discards all log entries.
type NoOpLogger struct{}

func (n *NoOpLogger) Debug(_ context.Context, _ string, _ ...LogField)          {}
func (n *NoOpLogger) Info(_ context.Context, _ string, _ ...LogField)           {}
func (n *NoOpLogger) Warn(_ context.Context, _ string, _ ...LogField)           {}
func (n *NoOpLogger) Error(_ context.Context, _ string, _ error, _ ...LogField) {}
func (n *NoOpLogger) WithFields(_ ...LogField) Logger                           { return n }

// StdLogger writes one line per entry. The TUI owns the terminal, so the
// writer is normally the file returned by tea.LogToFile.
type StdLogger struct {
	fields   []LogField
	minLevel LogLevel
	logger   *log.Logger
	mu       *sync.Mutex
	now      func() time.Time
}

// NewLogger returns a StdLogger for writer, or a NoOpLogger when writer is nil.
func NewLogger(minLevel LogLevel, writer io.Writer) Logger {
	if writer == nil {
		return &NoOpLogger{}
	}
	return NewStdLogger(minLevel, writer)
}

// NewStdLogger creates a new logger with the specified minimum log level and writer.
func NewStdLogger(minLevel LogLevel, writer io.Writer) *StdLogger {
	if writer == nil {
		writer = io.Discard
	}
	if _, ok := levelRank[minLevel]; !ok {
		minLevel = LogLevelInfo
	}
	return &StdLogger{
		minLevel: minLevel,
		logger:   log.New(writer, "", 0),
		mu:       &sync.Mutex{},
		now:      time.Now,
	}
}

func (s *StdLogger) log(ctx context.Context, level LogLevel, msg string, err error, fields ...LogField) {
	if levelRank[level] < levelRank[s.minLevel] {
		return
	}

	all := make([]LogField, 0, len(s.fields)+len(fields)+1)
	all = append(all, s.fields...)
	all = append(all, fields...)
	if traceID := TraceID(ctx); traceID != "" {
		all = append(all, Field("trace_id", traceID))
	}

	parts := []string{
		fmt.Sprintf("[%s]", s.now().Format(time.RFC3339)),
		fmt.Sprintf("[%s]", level),
	}
	if err != nil {
		parts = append(parts, fmt.Sprintf("[error=%q]", err.Error()))
	}
	parts = append(parts, msg)

	if len(all) > 0 {
		fieldParts := make([]string, 0, len(all))
		for _, f := range all {
			fieldParts = append(fieldParts, fmt.Sprintf("%s=%v", f.Key, f.Value))
		}
		parts = append(parts, fmt.Sprintf("fields=[%s]", strings.Join(fieldParts, " ")))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger.Println(strings.Join(parts, " "))
}

func (s *StdLogger) Debug(ctx context.Context, msg string, fields ...LogField) {
	s.log(ctx, LogLevelDebug, msg, nil, fields...)
}

func (s *StdLogger) Info(ctx context.Context, msg string, fields ...LogField) {
	s.log(ctx, LogLevelInfo, msg, nil, fields...)
}

func (s *StdLogger) Warn(ctx context.Context, msg string, fields ...LogField) {
	s.log(ctx, LogLevelWarn, msg, nil, fields...)
}

func (s *StdLogger) Error(ctx context.Context, msg string, err error, fields ...LogField) {
	s.log(ctx, LogLevelError, msg, err, fields...)
}

func (s *StdLogger) WithFields(fields ...LogField) Logger {
	merged := make([]LogField, 0, len(s.fields)+len(fields))
	merged = append(merged, s.fields...)
	merged = append(merged, fields...)
	return &StdLogger{
		fields:   merged,
		minLevel: s.minLevel,
		logger:   s.logger,
		mu:       s.mu,
		now:      s.now,
	}
}

type traceIDKey struct{}

// WithTraceID adds a trace ID to the context for request correlation.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

// TraceID extracts the trace ID from context, if present.
func TraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(traceIDKey{}).(string); ok {
		return id
	}
	return ""
}

// NewTraceID returns a random identifier for one analysis.
func NewTraceID() string {
	return uuid.NewString()
}
