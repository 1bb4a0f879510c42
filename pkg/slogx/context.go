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

// WithPrincipal tags the request logger with the authenticated principal so
// every later line carries who was acting.
func WithPrincipal(ctx context.Context, principalID, role string) context.Context {
	l := FromContext(ctx)
	return WithContext(ctx, l.With("principal_id", principalID, "role", role))
}
