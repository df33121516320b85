package runtime

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/asynkron/vibecheck/internal/core/aura"
)

const (
	DefaultModel   = "gemini-2.5-flash"
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	// DefaultTimeout bounds one REST round trip. Analyze itself enforces
	// nothing beyond the caller's context.
	DefaultTimeout = 120 * time.Second
)

// ClientOptions configures the vibe analysis client.
type ClientOptions struct {
	// APIKey may be empty; the first Analyze call then fails instead of the
	// constructor.
	APIKey  string
	Model   string
	BaseURL string
	Backend Backend
	// Temperature is sent as-is, including 0; nil means
	// aura.DefaultTemperature.
	Temperature *float64
	Timeout     time.Duration

	// HTTPClient replaces the REST transport, mainly for tests.
	HTTPClient *http.Client
	// Generator replaces the backend entirely.
	Generator Generator
}

func (o *ClientOptions) setDefaults() {
	o.APIKey = strings.TrimSpace(o.APIKey)
	if strings.TrimSpace(o.Model) == "" {
		o.Model = DefaultModel
	}
	if strings.TrimSpace(o.BaseURL) == "" {
		o.BaseURL = DefaultBaseURL
	}
	o.BaseURL = strings.TrimRight(strings.TrimSpace(o.BaseURL), "/")
	if backend, err := ParseBackend(string(o.Backend)); err == nil {
		o.Backend = backend
	}
	if o.Temperature == nil {
		t := aura.DefaultTemperature
		o.Temperature = &t
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
}

func (o *ClientOptions) validate() error {
	if _, err := ParseBackend(string(o.Backend)); err != nil {
		return err
	}
	if o.Temperature != nil && (*o.Temperature < 0 || *o.Temperature > 2) {
		return fmt.Errorf("temperature %.2f out of range [0, 2]", *o.Temperature)
	}
	return nil
}

// Temp returns a pointer to t for ClientOptions.Temperature.
func Temp(t float64) *float64 { return &t }
