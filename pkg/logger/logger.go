package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config describes how the application logger is built.
// It is usually read from the "logging" config file.
type Config struct {
	Level       string `mapstructure:"level"`
	Format      string `mapstructure:"format"`
	SentryDSN   string `mapstructure:"sentry_dsn"`
	Environment string `mapstructure:"environment"`
	// SentryLevel is the lowest level forwarded to Sentry ("warn" or "error").
	SentryLevel string `mapstructure:"sentry_level"`
}

// New creates a JSON logger writing to stdout at info level.
func New(extractors ...ContextExtractor) *slog.Logger {
	return slog.New(NewLogHandlerDecorator(newHandler(os.Stdout, "json", slog.LevelInfo), extractors...))
}

// NewFromConfig builds a logger from cfg. Output goes to w (stdout when nil).
// When a Sentry DSN is configured the records are fanned out to Sentry as well.
func NewFromConfig(cfg Config, w io.Writer, extractors ...ContextExtractor) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	handler := newHandler(w, cfg.Format, ParseLevel(cfg.Level))
	if cfg.SentryDSN != "" {
		return newWithSentry(handler, SentryConfig{
			DSN:         cfg.SentryDSN,
			Environment: cfg.Environment,
			MinLevel:    ParseLevel(cfg.SentryLevel),
		}, extractors...)
	}
	return slog.New(NewLogHandlerDecorator(handler, extractors...))
}

// ParseLevel maps a level name to slog.Level. Unknown names mean info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newHandler(w io.Writer, format string, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, "text") {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

// NewNope creates a logger that discards everything.
// Components use it when no logger is configured.
func NewNope() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
