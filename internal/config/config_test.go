//nolint:varnamelen // Test files use idiomatic short variable names (t, tt, etc.)
package config_test

import (
	"bytes"
	"errors"
	"testing"
	"time"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/asynkron/vibecheck/internal/config"
	"github.com/asynkron/vibecheck/internal/core/runtime"
)

func clearKeys(t *testing.T) {
	t.Helper()
	for _, name := range config.APIKeyEnv {
		t.Setenv(name, "")
	}
}

func TestParseDefaults(t *testing.T) {
	g := NewWithT(t)
	clearKeys(t)

	cfg, err := config.Parse(nil, nil, nil)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(cfg.Model).To(Equal(runtime.DefaultModel))
	g.Expect(cfg.Backend).To(Equal(runtime.BackendREST))
	g.Expect(cfg.Temperature).To(Equal(1.2))
	g.Expect(cfg.Timeout).To(Equal(120 * time.Second))
	g.Expect(int64(cfg.MaxImageBytes)).To(Equal(int64(20 << 20)))
	g.Expect(cfg.Level()).To(Equal(runtime.LogLevelInfo))
	g.Expect(cfg.Image).To(BeEmpty())
	g.Expect(cfg.APIKey).To(BeEmpty())
}

func TestParseFlagsAndPositional(t *testing.T) {
	g := NewWithT(t)
	clearKeys(t)

	cfg, err := config.Parse([]string{
		"--model", "gemini-2.0-pro",
		"--backend", "SDK",
		"--temperature", "0.7",
		"--timeout", "5s",
		"--max-image-bytes", "4MiB",
		"--log-level", "debug",
		"--log-file", "/tmp/vibe.log",
		"  sunset.jpg ",
	}, nil, nil)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(cfg.Model).To(Equal("gemini-2.0-pro"))
	g.Expect(cfg.Backend).To(Equal(runtime.BackendSDK))
	g.Expect(cfg.Temperature).To(Equal(0.7))
	g.Expect(cfg.Timeout).To(Equal(5 * time.Second))
	g.Expect(int64(cfg.MaxImageBytes)).To(Equal(int64(4 << 20)))
	g.Expect(cfg.Level()).To(Equal(runtime.LogLevelDebug))
	g.Expect(cfg.LogFile).To(Equal("/tmp/vibe.log"))
	g.Expect(cfg.Image).To(Equal("sunset.jpg"))
}

func TestEnvironmentFallbacks(t *testing.T) {
	g := NewWithT(t)
	clearKeys(t)
	t.Setenv("VIBE_MODEL", "gemini-env")
	t.Setenv("VIBE_BACKEND", "genai")

	cfg, err := config.Parse(nil, nil, nil)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(cfg.Model).To(Equal("gemini-env"))
	g.Expect(cfg.Backend).To(Equal(runtime.BackendSDK))

	// Flags win over the environment.
	cfg, err = config.Parse([]string{"--model", "gemini-flag"}, nil, nil)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(cfg.Model).To(Equal("gemini-flag"))
}

func TestAPIKeyPrecedence(t *testing.T) {
	g := NewWithT(t)
	clearKeys(t)

	t.Setenv("API_KEY", "fallback")
	cfg, err := config.Parse(nil, nil, nil)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(cfg.APIKey).To(Equal("fallback"))

	t.Setenv("GEMINI_API_KEY", "  primary  ")
	cfg, err = config.Parse(nil, nil, nil)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(cfg.APIKey).To(Equal("primary"))
	g.Expect(cfg.ClientOptions().APIKey).To(Equal("primary"))
}

func TestHelpAndVersion(t *testing.T) {
	g := NewWithT(t)
	clearKeys(t)

	var out bytes.Buffer
	_, err := config.Parse([]string{"--help"}, &out, nil)
	g.Expect(err).To(MatchError(config.ErrHelp))
	g.Expect(out.String()).To(ContainSubstring("--backend"))
	g.Expect(out.String()).To(ContainSubstring("VIBE_MODEL"))

	out.Reset()
	_, err = config.Parse([]string{"--version"}, &out, nil)
	g.Expect(err).To(MatchError(config.ErrVersion))
	g.Expect(out.String()).To(ContainSubstring("vibecheck"))
}

func TestUsageErrors(t *testing.T) {
	clearKeys(t)

	tests := map[string][]string{
		"unknown flag":      {"--nope"},
		"bad backend":       {"--backend", "carrier-pigeon"},
		"bad temperature":   {"--temperature", "2.5"},
		"negative timeout":  {"--timeout", "-1s"},
		"bad size":          {"--max-image-bytes", "lots"},
		"zero size":         {"--max-image-bytes", "0"},
		"bad log level":     {"--log-level", "chatty"},
		"blank model":       {"--model", "  "},
		"two positionals":   {"a.png", "b.png"},
		"temperature words": {"--temperature", "warm"},
	}

	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			g := NewWithT(t)

			var stderr bytes.Buffer
			cfg, err := config.Parse(args, nil, &stderr)
			g.Expect(cfg).To(BeNil())
			g.Expect(errors.Is(err, config.ErrUsage)).To(BeTrue(), "%v", err)
			g.Expect(stderr.String()).To(ContainSubstring("Usage"))
		})
	}
}

func TestByteSize(t *testing.T) {
	g := NewWithT(t)

	var size config.ByteSize
	g.Expect(size.UnmarshalText([]byte("1048576"))).To(Succeed())
	g.Expect(size.String()).To(Equal("1.0 MiB"))
	g.Expect(size.UnmarshalText([]byte("20 MiB"))).To(Succeed())
	g.Expect(int64(size)).To(Equal(int64(20 << 20)))
}

func TestPostProcessConfigWithoutEnvironment(t *testing.T) {
	g := NewWithT(t)

	cfg := &config.Config{Model: "m", Temperature: 1, Timeout: time.Second, LogLevel: "warning"}
	g.Expect(config.PostProcessConfig(cfg, nil)).To(Succeed())
	g.Expect(cfg.APIKey).To(BeEmpty())
	g.Expect(cfg.Level()).To(Equal(runtime.LogLevelWarn))
}

func TestExplicitZeroTemperatureReachesClientOptions(t *testing.T) {
	g := NewWithT(t)
	clearKeys(t)

	cfg, err := config.Parse([]string{"--temperature", "0"}, nil, nil)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(cfg.Temperature).To(BeZero())

	opts := cfg.ClientOptions()
	g.Expect(opts.Temperature).NotTo(BeNil())
	g.Expect(*opts.Temperature).To(BeZero())
}
