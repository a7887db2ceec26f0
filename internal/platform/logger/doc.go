// Package logger configures log/slog JSON logging and carries request-scoped
// loggers through context.Context.
package logger
