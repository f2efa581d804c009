package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	app "github.com/okian/starchart/internal/app"
	"github.com/okian/starchart/internal/config"
	"github.com/okian/starchart/internal/domain/fault"
	"github.com/okian/starchart/pkg/logger"
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Stderr)
	stop()
	os.Exit(code)
}

// run builds one star chart and returns the process exit code. Fatal
// failures print a single diagnostic line to stderr.
func run(ctx context.Context, stderr io.Writer) int {
	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// The logger isn't configured yet; report on stderr directly.
		_, _ = io.WriteString(stderr, diagnostic(fault.Config("config", err))+"\n")
		return 1
	}

	if err := logger.Init(logger.WithWriter(stderr), logger.WithJSON(cfg.LogJSON)); err != nil {
		_, _ = io.WriteString(stderr, "failed to initialize logging: "+err.Error()+"\n")
		return 1
	}
	defer func() { _ = logger.Sync() }()

	lg := logger.Get()
	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		lg.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc := app.New(app.WithConfig(cfg), app.WithLogger(lg))
	if _, err := svc.Run(ctx); err != nil {
		_, _ = io.WriteString(stderr, diagnostic(err)+"\n")
		return 1
	}
	return 0
}

// diagnostic renders err as "<kind>: <datum>: <cause>", dropping the stage
// prefixes added on the way up.
func diagnostic(err error) string {
	var fe *fault.Error
	if errors.As(err, &fe) {
		return fe.Error()
	}
	return fault.KindOf(err) + ": " + err.Error()
}
