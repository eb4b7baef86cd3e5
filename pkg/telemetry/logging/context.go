package logging

import "context"

// Context keys for the two fields this domain actually carries through a
// request: a correlation id and the upstream provider a log line concerns.
type contextKey string

const (
	// RequestIDKey is the context key for a per-check correlation id that
	// InfoContext and ErrorContext attach to log lines. The HTTP server's
	// X-Request-ID is stored under middleware.RequestIDKey, not this key.
	RequestIDKey contextKey = "request_id"

	// ProviderKey is the context key for the upstream provider name a log
	// line concerns (e.g. "rxnorm_interactions").
	ProviderKey contextKey = "provider"
)

// WithRequestID adds a request id to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request id from the context.
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(RequestIDKey).(string); ok {
		return v
	}
	return ""
}

// WithProvider adds a provider name to the context.
func WithProvider(ctx context.Context, provider string) context.Context {
	return context.WithValue(ctx, ProviderKey, provider)
}

// GetProvider retrieves the provider name from the context.
func GetProvider(ctx context.Context) string {
	if v, ok := ctx.Value(ProviderKey).(string); ok {
		return v
	}
	return ""
}

func extractContextFields(ctx context.Context) []any {
	var fields []any
	if v := GetRequestID(ctx); v != "" {
		fields = append(fields, "request_id", v)
	}
	if v := GetProvider(ctx); v != "" {
		fields = append(fields, "provider", v)
	}
	return fields
}
