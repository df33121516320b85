// Package config handles application configuration and command-line argument parsing.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/dustin/go-humanize"

	"github.com/asynkron/vibecheck/internal/core/runtime"
)

const programName = "vibecheck"

var (
	// ErrHelp is returned after --help output has been written.
	ErrHelp = arg.ErrHelp
	// ErrVersion is returned after --version output has been written.
	ErrVersion = arg.ErrVersion
	// ErrUsage marks invalid flags or values; callers exit with status 2.
	ErrUsage = errors.New("invalid usage")
)

// APIKeyEnv lists the variables consulted for the credential, in order.
var APIKeyEnv = []string{"GEMINI_API_KEY", "API_KEY"}

// ByteSize is a size flag accepting plain byte counts or "20MiB" style values.
type ByteSize int64

// UnmarshalText implements encoding.TextUnmarshaler for go-arg
func (b *ByteSize) UnmarshalText(text []byte) error {
	n, err := humanize.ParseBytes(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid size %q: %w", string(text), err)
	}
	if n == 0 {
		return fmt.Errorf("size must be positive")
	}
	*b = ByteSize(n)
	return nil
}

// String returns the IEC representation, e.g. "20 MiB".
func (b ByteSize) String() string {
	return humanize.IBytes(uint64(b))
}

// Config holds the application configuration
type Config struct {
	Image         string          `arg:"positional" help:"image to analyze as soon as the UI starts"`
	Model         string          `arg:"--model,env:VIBE_MODEL" default:"gemini-2.5-flash" help:"Gemini model identifier"`
	Backend       runtime.Backend `arg:"--backend,env:VIBE_BACKEND" default:"rest" help:"generation backend: rest|sdk"`
	BaseURL       string          `arg:"--base-url,env:VIBE_BASE_URL" help:"override the generation API base URL (rest backend only)"`
	Temperature   float64         `arg:"--temperature,env:VIBE_TEMPERATURE" default:"1.2" help:"sampling temperature (0-2)"`
	Timeout       time.Duration   `arg:"--timeout,env:VIBE_TIMEOUT" default:"120s" help:"HTTP timeout for one analysis"`
	MaxImageBytes ByteSize        `arg:"--max-image-bytes,env:VIBE_MAX_IMAGE_BYTES" default:"20MiB" help:"largest image accepted"`
	LogFile       string          `arg:"--log-file,env:VIBE_LOG_FILE" help:"append logs to this file (the UI owns the terminal)"`
	LogLevel      string          `arg:"--log-level,env:VIBE_LOG_LEVEL" default:"info" help:"debug|info|warn|error"`

	// APIKey is read from APIKeyEnv rather than a flag so it never shows up
	// in shell history or process listings.
	APIKey string `arg:"-"`
}

// Description returns the program description for go-arg
func (Config) Description() string {
	return "Pick an image, get its vibe: palette, aura name, reading, emoji and playlist."
}

// Version returns the version string for go-arg
func (Config) Version() string {
	return programName + " 1.0.0"
}

// Level returns the parsed log level.
func (cfg *Config) Level() runtime.LogLevel {
	level, err := runtime.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return runtime.LogLevelInfo
	}
	return level
}

// ClientOptions maps the configuration onto the analysis client options.
func (cfg *Config) ClientOptions() runtime.ClientOptions {
	return runtime.ClientOptions{
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		BaseURL:     cfg.BaseURL,
		Backend:     cfg.Backend,
		Temperature: runtime.Temp(cfg.Temperature),
		Timeout:     cfg.Timeout,
	}
}

// Parse parses args (without the program name) and the environment. Help
// and version text go to stdout and yield ErrHelp or ErrVersion; usage
// problems are written to stderr and wrapped in ErrUsage.
func Parse(args []string, stdout, stderr io.Writer) (*Config, error) {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	cfg := &Config{}
	parser, err := arg.NewParser(arg.Config{Program: programName, Out: stdout}, cfg)
	if err != nil {
		return nil, fmt.Errorf("build argument parser: %w", err)
	}

	err = parser.Parse(args)
	switch {
	case errors.Is(err, arg.ErrHelp):
		parser.WriteHelp(stdout)
		return nil, ErrHelp
	case errors.Is(err, arg.ErrVersion):
		fmt.Fprintln(stdout, cfg.Version())
		return nil, ErrVersion
	case err != nil:
		parser.WriteUsage(stderr)
		fmt.Fprintf(stderr, "error: %v\n", err)
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}

	if err := PostProcessConfig(cfg, os.Getenv); err != nil {
		parser.WriteUsage(stderr)
		fmt.Fprintf(stderr, "error: %v\n", err)
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return cfg, nil
}

// PostProcessConfig fills the credential and validates values go-arg cannot.
func PostProcessConfig(cfg *Config, getenv func(string) string) error {
	cfg.APIKey = lookupAPIKey(getenv)
	cfg.Model = strings.TrimSpace(cfg.Model)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Image = strings.TrimSpace(cfg.Image)

	if cfg.Model == "" {
		return fmt.Errorf("model must not be empty")
	}
	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2, got %v", cfg.Temperature)
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", cfg.Timeout)
	}
	if _, err := runtime.ParseLogLevel(cfg.LogLevel); err != nil {
		return err
	}
	return nil
}

func lookupAPIKey(getenv func(string) string) string {
	if getenv == nil {
		return ""
	}
	for _, name := range APIKeyEnv {
		if v := strings.TrimSpace(getenv(name)); v != "" {
			return v
		}
	}
	return ""
}
