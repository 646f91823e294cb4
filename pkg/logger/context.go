package logger

import (
	"context"
	"log/slog"
)

type ctxKey int

const (
	buildIDKey ctxKey = iota
	routeKey
)

// WithBuildID stores the build id logged with every record.
func WithBuildID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, buildIDKey, id)
}

// WithRoute stores the route path logged with every record.
func WithRoute(ctx context.Context, route string) context.Context {
	return context.WithValue(ctx, routeKey, route)
}

// BuildID extracts the build id as "build_id".
func BuildID() ContextExtractor {
	return stringExtractor(buildIDKey, "build_id")
}

// Route extracts the route path as "route".
func Route() ContextExtractor {
	return stringExtractor(routeKey, "route")
}

func stringExtractor(key ctxKey, name string) ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if v, ok := ctx.Value(key).(string); ok && v != "" {
			return slog.String(name, v), true
		}
		return slog.Attr{}, false
	}
}
