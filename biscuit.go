// Package biscuit implements the cookie processing model of RFC 6265:
// parsing Set-Cookie header values, storing the results in a jar with
// public-suffix, host-only and default-path policy, and emitting the
// Cookie header for outgoing requests.
//
// The Jar keeps its cookies in a pluggable Store. The in-memory store
// from NewMemoryStore is the default; the store/bolt and store/leveldb
// packages persist jars on disk.
package biscuit

import (
	"context"
	"log/slog"
)

var loggerKey byte

// Logger gets the slog.Logger from the context.
func Logger(ctx context.Context) *slog.Logger {
	if logger := ctx.Value(&loggerKey); logger != nil {
		return logger.(*slog.Logger)
	}
	return slog.Default()
}

// WithLogger sets the slog.Logger to the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, &loggerKey, logger)
}
