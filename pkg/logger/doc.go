// Package logger builds the application's log/slog loggers.
//
// Loggers are JSON (or text) handlers wrapped in a decorator that injects
// request-scoped attributes, either pulled by ContextExtractor functions or
// stored on the context with WithAttrs:
//
//	log := logger.NewFromConfig(logger.Config{Level: "debug"}, nil, middlewares.RequestIDExtractor())
//	ctx = logger.WithAttrs(ctx, slog.String("route", "users.show"))
//	log.InfoContext(ctx, "request handled")
//
// When Config.SentryDSN is set, records are also sent to Sentry: errors become
// issues, warnings are kept as breadcrumbs-style logs. Components that accept
// a logger default to NewNope.
package logger
