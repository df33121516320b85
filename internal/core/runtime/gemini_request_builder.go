package runtime

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// generateContentRequest and related types are minimal mirrors of the
// generateContent REST payloads; only the fields the analysis uses are
// declared.
type generateContentRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseMIMEType string         `json:"responseMimeType"`
	ResponseSchema   map[string]any `json:"responseSchema,omitempty"`
	Temperature      float64        `json:"temperature"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

// buildGenerateContentBody encodes the image part first, then the
// instruction, as a single user turn.
func buildGenerateContentBody(req GenerateRequest) ([]byte, error) {
	payload := generateContentRequest{
		Contents: []content{{
			Role: "user",
			Parts: []part{
				{InlineData: &inlineData{MIMEType: req.MIMEType, Data: req.ImageBase64}},
				{Text: req.Instruction},
			},
		}},
		GenerationConfig: generationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   req.ResponseSchema,
			Temperature:      req.Temperature,
		},
	}
	return json.Marshal(payload)
}

func generateContentURL(baseURL, model string) string {
	root := strings.TrimRight(baseURL, "/")
	model = strings.TrimPrefix(strings.TrimSpace(model), "models/")
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent", root, url.PathEscape(model))
}

// responseText joins the text parts of the first candidate.
func (r generateContentResponse) responseText() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var builder strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		builder.WriteString(p.Text)
	}
	return builder.String()
}
