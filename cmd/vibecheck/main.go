package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/asynkron/vibecheck/internal/cli"
)

// main runs the vibecheck terminal UI.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
