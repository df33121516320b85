package runtime

import (
	"fmt"
	"strings"
)

// Backend selects how the generation request is transported.
type Backend string

const (
	// BackendREST talks to the generateContent endpoint over plain HTTP.
	BackendREST Backend = "rest"
	// BackendSDK uses the generative-ai-go client library.
	BackendSDK Backend = "sdk"
)

// ParseBackend maps a case-insensitive name to a Backend.
func ParseBackend(value string) (Backend, error) {
	switch Backend(strings.ToLower(strings.TrimSpace(value))) {
	case "", BackendREST, "http":
		return BackendREST, nil
	case BackendSDK, "genai":
		return BackendSDK, nil
	default:
		return "", fmt.Errorf("invalid backend: %s (valid: rest, sdk)", value)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler for go-arg.
func (b *Backend) UnmarshalText(text []byte) error {
	parsed, err := ParseBackend(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

func (b Backend) String() string {
	return string(b)
}

// GenerateRequest is the single multimodal prompt sent per analysis.
type GenerateRequest struct {
	// ImageBase64 holds the standard base64 encoding of the image bytes.
	ImageBase64 string
	MIMEType    string
	Instruction string
	Temperature float64
	// ResponseSchema is forwarded verbatim as the structured-output schema.
	ResponseSchema map[string]any
}
