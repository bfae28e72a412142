package attr

import (
	"context"
	"log/slog"
	"time"
)

type correlationIDKey struct{}

// String returns a string slog attribute.
func String(key, value string) slog.Attr {
	return slog.String(key, value)
}

// Int returns an int slog attribute.
func Int(key string, value int) slog.Attr {
	return slog.Int(key, value)
}

// Int64 returns an int64 slog attribute.
func Int64(key string, value int64) slog.Attr {
	return slog.Int64(key, value)
}

// Float64 returns a float64 slog attribute.
func Float64(key string, value float64) slog.Attr {
	return slog.Float64(key, value)
}

// Bool returns a bool slog attribute.
func Bool(key string, value bool) slog.Attr {
	return slog.Bool(key, value)
}

// Time returns a time slog attribute.
func Time(key string, value time.Time) slog.Attr {
	return slog.Time(key, value)
}

// Duration returns a duration slog attribute.
func Duration(key string, value time.Duration) slog.Attr {
	return slog.Duration(key, value)
}

// Any returns a generic slog attribute.
func Any(key string, value any) slog.Attr {
	return slog.Any(key, value)
}

// Error returns the conventional "error" attribute.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// WithCorrelationID stores a correlation ID on the context so log calls made
// further down the operation can attach it.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, id)
}

// CorrelationIDFromContext returns the correlation ID stored on the context,
// or the empty string.
func CorrelationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey{}).(string); ok {
		return id
	}
	return ""
}

// ExtractCorrelationID returns the "correlation_id" attribute from the
// context, empty when none was set.
func ExtractCorrelationID(ctx context.Context) slog.Attr {
	return slog.String("correlation_id", CorrelationIDFromContext(ctx))
}
