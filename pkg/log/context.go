package log

import (
	"context"

	"github.com/rs/zerolog"
)

// loggerKey is the context key request-scoped loggers travel under.
type loggerKey struct{}

// WithLogger returns a child context carrying logger. Middleware attaches a
// request-scoped logger this way; services pick it back up with Ctx.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// Ctx returns the logger carried by ctx, or the global logger when the
// context has none.
func Ctx(ctx context.Context) zerolog.Logger {
	logger, ok := ctx.Value(loggerKey{}).(zerolog.Logger)
	if !ok {
		return L()
	}
	return logger
}
