package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/asynkron/vibecheck/internal/config"
	"github.com/asynkron/vibecheck/internal/core/runtime"
	"github.com/asynkron/vibecheck/internal/session"
	"github.com/asynkron/vibecheck/internal/tui"
)

// runUI is swapped in tests so Run can be exercised without a terminal.
var runUI = tui.Run

// Run executes vibecheck using the provided CLI arguments.
// It returns a POSIX-style exit code indicating whether execution succeeded.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	if err := godotenv.Load(); err != nil {
		// A missing .env file is fine, but other errors should be surfaced to help with debugging.
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			fmt.Fprintf(stderr, "failed to load .env: %v\n", err)
			return 1
		}
	}

	cfg, err := config.Parse(args, stdout, stderr)
	switch {
	case errors.Is(err, config.ErrHelp), errors.Is(err, config.ErrVersion):
		return 0
	case err != nil:
		return 2
	}

	logger, closeLog, err := openLogger(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "failed to open log file: %v\n", err)
		return 1
	}
	defer closeLog()

	if cfg.APIKey == "" {
		// Not fatal: every analysis will fail and say so in the UI.
		logger.Warn(ctx, "No API key found; set GEMINI_API_KEY", runtime.Field("checked", config.APIKeyEnv))
	}

	metrics := runtime.NewInMemoryMetrics()
	client, err := runtime.NewAuraClient(cfg.ClientOptions(), logger, metrics)
	if err != nil {
		fmt.Fprintf(stderr, "failed to create analysis client: %v\n", err)
		return 1
	}

	machine := session.NewMachine(client, session.Options{
		MaxImageBytes: int64(cfg.MaxImageBytes),
		Logger:        logger,
		Metrics:       metrics,
	})

	logger.Info(ctx, "Starting vibecheck",
		runtime.Field("model", client.Model()),
		runtime.Field("backend", cfg.Backend),
		runtime.Field("max_image", cfg.MaxImageBytes.String()),
	)

	code := runUI(ctx, tui.Options{
		Machine:      machine,
		Metrics:      metrics,
		Model:        client.Model(),
		InitialImage: cfg.Image,
	})

	snap := metrics.GetSnapshot()
	logger.Info(ctx, "Exiting vibecheck",
		runtime.Field("exit_code", code),
		runtime.Field("readings", snap.APICalls.Total),
		runtime.Field("failed", snap.APICalls.Failed),
		runtime.Field("stale", snap.StaleResolutions),
	)
	return code
}

// openLogger logs to cfg.LogFile via tea.LogToFile; the UI owns the
// terminal, so without a file nothing is logged.
func openLogger(cfg *config.Config) (runtime.Logger, func(), error) {
	if cfg.LogFile == "" {
		return &runtime.NoOpLogger{}, func() {}, nil
	}
	f, err := tea.LogToFile(cfg.LogFile, "")
	if err != nil {
		return nil, nil, err
	}
	return runtime.NewLogger(cfg.Level(), f), func() { _ = f.Close() }, nil
}
