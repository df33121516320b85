package runtime

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// errMissingAPIKey is reported at call time; construction never checks the
// credential.
var errMissingAPIKey = errors.New("gemini: API key is not configured (set GEMINI_API_KEY)")

// Generator performs exactly one generation request and returns the raw
// text payload.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// GeminiClient calls the generateContent REST endpoint directly.
type GeminiClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	logger     Logger
}

// NewGeminiClient builds the REST generator from normalized options.
func NewGeminiClient(opts ClientOptions, logger Logger) *GeminiClient {
	opts.setDefaults()
	if logger == nil {
		logger = &NoOpLogger{}
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	return &GeminiClient{
		apiKey:     opts.APIKey,
		model:      opts.Model,
		baseURL:    opts.BaseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Generate sends one generateContent request. No retries are attempted.
func (c *GeminiClient) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	if c.apiKey == "" {
		return "", errMissingAPIKey
	}

	body, err := buildGenerateContentBody(req)
	if err != nil {
		return "", fmt.Errorf("gemini: encode request: %w", err)
	}

	endpoint := generateContentURL(c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("gemini: build request: %w", err)
	}
	httpReq.Header.Set("x-goog-api-key", c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	c.logger.Debug(ctx, "Sending generateContent request",
		Field("model", c.model),
		Field("mime_type", req.MIMEType),
		Field("payload_bytes", len(body)),
	)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("gemini: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		return "", fmt.Errorf("gemini: status %s: %s", resp.Status, string(msg))
	}

	var decoded generateContentResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("gemini: decode response: %w", err)
	}
	if decoded.PromptFeedback != nil && decoded.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("gemini: prompt blocked: %s", decoded.PromptFeedback.BlockReason)
	}
	return decoded.responseText(), nil
}
