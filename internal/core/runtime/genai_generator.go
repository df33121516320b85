package runtime

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/asynkron/vibecheck/internal/core/aura"
)

// GenaiGenerator sends the request through the generative-ai-go client.
// A client is opened per call and closed before returning.
type GenaiGenerator struct {
	apiKey string
	model  string
	logger Logger
}

// NewGenaiGenerator builds the SDK-backed generator.
func NewGenaiGenerator(opts ClientOptions, logger Logger) *GenaiGenerator {
	opts.setDefaults()
	if logger == nil {
		logger = &NoOpLogger{}
	}
	return &GenaiGenerator{apiKey: opts.APIKey, model: opts.Model, logger: logger}
}

func (g *GenaiGenerator) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	if g.apiKey == "" {
		return "", errMissingAPIKey
	}

	data, err := base64.StdEncoding.DecodeString(req.ImageBase64)
	if err != nil {
		return "", fmt.Errorf("genai: decode image payload: %w", err)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return "", fmt.Errorf("genai: create client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(g.model)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = genaiResponseSchema()
	model.SetTemperature(float32(req.Temperature))

	g.logger.Debug(ctx, "Sending genai GenerateContent request",
		Field("model", g.model),
		Field("mime_type", req.MIMEType),
		Field("image_bytes", len(data)),
	)

	resp, err := model.GenerateContent(ctx,
		genai.Blob{MIMEType: req.MIMEType, Data: data},
		genai.Text(req.Instruction),
	)
	if err != nil {
		return "", fmt.Errorf("genai: generate content: %w", err)
	}
	return genaiResponseText(resp), nil
}

// genaiResponseSchema mirrors aura.ResponseSchema with the SDK's types.
func genaiResponseSchema() *genai.Schema {
	properties := make(map[string]*genai.Schema, len(aura.Fields))
	for _, f := range aura.Fields {
		properties[f.Name] = &genai.Schema{Type: genai.TypeString, Description: f.Description}
	}
	return &genai.Schema{
		Type:       genai.TypeObject,
		Properties: properties,
		Required:   aura.FieldNames(),
	}
}

func genaiResponseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var builder strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if text, ok := p.(genai.Text); ok {
			builder.WriteString(string(text))
		}
	}
	return builder.String()
}
