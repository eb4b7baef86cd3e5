// Package middleware provides HTTP middleware for cross-cutting concerns.
//
// This package implements request ID propagation and structured request
// logging. Panic recovery lives next to the handler it protects (see
// pkg/server) rather than here, since its error body is specific to that
// handler's response shape.
//
// # Middleware Chain
//
// Middleware functions are chained innermost to outermost:
//
//	handler = RequestID(Logging(handler))
//
// # Request ID
//
// RequestIDMiddleware reuses a client-supplied X-Request-ID, or generates
// one as 32 hex characters from 16 random bytes:
//
//	X-Request-ID: 9f86d081884c7d659a2feaa0c55ad015
//
// The request ID is added to context for handler access, included in
// response headers, and logged with all request/response logs.
//
// # Logging
//
// LoggingMiddleware uses structured logging (log/slog) to record request
// details:
//
//	{
//	  "time": "2026-07-30T10:30:00Z",
//	  "level": "INFO",
//	  "msg": "request completed",
//	  "method": "POST",
//	  "path": "/v1/check",
//	  "status": 200,
//	  "latency_ms": 45,
//	  "request_id": "550e8400-e29b-41d4-a716-446655440000"
//	}
//
// # Context Values
//
// Middleware stores values in context for handler access:
//
//	type contextKey string
//
//	const (
//	    RequestIDKey contextKey = "request_id"
//	    StartTimeKey contextKey = "start_time"
//	)
//
// Handlers retrieve the request ID through GetRequestID rather than reading
// the context key directly.
package middleware
