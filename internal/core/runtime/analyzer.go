package runtime

import (
	"context"
	"errors"
	"time"

	"github.com/asynkron/vibecheck/internal/core/aura"
)

// ErrAnalysisFailed is the only failure callers of Analyze should branch on.
var ErrAnalysisFailed = errors.New("vibe analysis failed")

// AnalysisError carries the underlying cause for diagnostics while
// presenting a uniform message.
type AnalysisError struct {
	Cause error
}

func (e *AnalysisError) Error() string { return ErrAnalysisFailed.Error() }

func (e *AnalysisError) Unwrap() error { return e.Cause }

func (e *AnalysisError) Is(target error) bool { return target == ErrAnalysisFailed }

// AuraClient turns one image into one aura.Result.
type AuraClient struct {
	generator   Generator
	model       string
	backend     Backend
	temperature float64
	logger      Logger
	metrics     Metrics
}

// NewAuraClient wires the configured backend. The API key is not checked
// here; a missing key surfaces from Analyze.
func NewAuraClient(opts ClientOptions, logger Logger, metrics Metrics) (*AuraClient, error) {
	opts.setDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = &NoOpLogger{}
	}
	if metrics == nil {
		metrics = &NoOpMetrics{}
	}

	generator := opts.Generator
	if generator == nil {
		switch opts.Backend {
		case BackendSDK:
			generator = NewGenaiGenerator(opts, logger)
		default:
			generator = NewGeminiClient(opts, logger)
		}
	}

	return &AuraClient{
		generator:   generator,
		model:       opts.Model,
		backend:     opts.Backend,
		temperature: *opts.Temperature,
		logger:      logger,
		metrics:     metrics,
	}, nil
}

// Model reports the configured model identifier.
func (c *AuraClient) Model() string { return c.model }

// Analyze performs exactly one generation request for an already
// base64-encoded image. Every failure is returned as *AnalysisError.
func (c *AuraClient) Analyze(ctx context.Context, imageBase64, mimeType string) (aura.Result, error) {
	start := time.Now()
	logger := c.logger.WithFields(
		Field("model", c.model),
		Field("backend", c.backend),
		Field("mime_type", mimeType),
	)

	text, err := c.generator.Generate(ctx, GenerateRequest{
		ImageBase64:    imageBase64,
		MIMEType:       mimeType,
		Instruction:    aura.Instruction,
		Temperature:    c.temperature,
		ResponseSchema: aura.ResponseSchema(),
	})
	if err != nil {
		return aura.Result{}, c.fail(ctx, logger, start, "Generation request failed", err)
	}

	result, err := aura.Decode(text)
	if err != nil {
		return aura.Result{}, c.fail(ctx, logger, start, "Generation reply broke the result contract", err)
	}

	duration := time.Since(start)
	c.metrics.RecordAPICall(duration, true)
	logger.Info(ctx, "Vibe analysis completed",
		Field("aura_name", result.AuraName),
		Field("duration_ms", duration.Milliseconds()),
	)
	return result, nil
}

func (c *AuraClient) fail(ctx context.Context, logger Logger, start time.Time, msg string, cause error) error {
	duration := time.Since(start)
	c.metrics.RecordAPICall(duration, false)
	logger.Error(ctx, msg, cause, Field("duration_ms", duration.Milliseconds()))
	return &AnalysisError{Cause: cause}
}
