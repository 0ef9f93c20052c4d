package logger

import (
	"context"
	"log/slog"
	"os"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// SentryConfig holds Sentry integration configuration.
type SentryConfig struct {
	DSN         string
	Environment string
	// MinLevel determines which log levels are sent to Sentry.
	MinLevel slog.Level
}

// NewWithSentry creates a logger writing JSON to stdout and to Sentry.
// Without a DSN only stdout is used.
func NewWithSentry(cfg SentryConfig, extractors ...ContextExtractor) *slog.Logger {
	return newWithSentry(newHandler(os.Stdout, "json", slog.LevelInfo), cfg, extractors...)
}

func newWithSentry(local slog.Handler, cfg SentryConfig, extractors ...ContextExtractor) *slog.Logger {
	if cfg.DSN == "" {
		return slog.New(NewLogHandlerDecorator(local, extractors...))
	}

	if cfg.Environment == "" {
		cfg.Environment = "production"
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		EnableLogs:  true,
	}); err != nil {
		slog.New(local).Error("failed to initialize Sentry", slog.String("error", err.Error()))
		return slog.New(NewLogHandlerDecorator(local, extractors...))
	}

	eventLevel := []slog.Level{slog.LevelError}
	logLevel := []slog.Level{slog.LevelWarn, slog.LevelError}
	if cfg.MinLevel >= slog.LevelError {
		logLevel = []slog.Level{slog.LevelError}
	}

	sentryHandler := sentryslog.Option{
		EventLevel: eventLevel,
		LogLevel:   logLevel,
	}.NewSentryHandler(context.Background())

	return slog.New(NewLogHandlerDecorator(newMultiHandler(local, sentryHandler), extractors...))
}
