// Package logger builds context-aware slog loggers.
//
// New creates a *slog.Logger from functional options (format, level,
// output, static attributes) and wraps the handler with
// LogHandlerDecorator, which runs registered ContextExtractor callbacks on
// every record. This is how request-scoped values such as the active
// tenant or the request ID end up in every log line without being passed
// explicitly:
//
//	log := logger.New(
//	    logger.WithEnvironment("production", "testsite"),
//	    logger.WithContextExtractors(tenant.LoggerExtractor()),
//	)
//
// Attribute helpers in attr.go keep key names consistent across packages.
package logger
