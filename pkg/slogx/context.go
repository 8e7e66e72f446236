package slogx

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

func FromContext(ctx context.Context) *slog.Logger {
	l, ok := ctx.Value(ctxKey{}).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return l
}

// WithFlow returns a context whose logger is tagged with the active
// authentication flow (e.g. "signup", "forgot-password").
func WithFlow(ctx context.Context, flow string) context.Context {
	l := FromContext(ctx)
	return WithContext(ctx, l.With("flow", flow))
}
