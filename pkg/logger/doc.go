// Package logger provides structured logging with context extraction and
// optional Sentry reporting.
//
// Loggers are plain *slog.Logger values. The handler is wrapped in a
// LogHandlerDecorator that adds context-scoped attributes on every call; by
// default the build id and the route being built:
//
//	log := logger.New(logger.WithFormat(logger.FormatText), logger.WithLevel(slog.LevelDebug))
//
//	ctx = logger.WithBuildID(ctx, buildID)
//	ctx = logger.WithRoute(ctx, "/blog/hello")
//	log.InfoContext(ctx, "route rendered")
//	// level=INFO msg="route rendered" build_id=... route=/blog/hello
//
// # Sentry
//
// With a DSN configured, warnings and errors are also sent to Sentry. Without one,
// or if initialization fails, logging continues to the local output only:
//
//	log := logger.New(logger.WithSentry(logger.SentryConfig{DSN: os.Getenv("SENTRY_DSN")}))
//	defer logger.Flush(2 * time.Second)
package logger
