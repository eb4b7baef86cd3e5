// Package logging provides structured logging with credential redaction.
//
// # Overview
//
// The logging package wraps Go's standard log/slog package to provide:
//   - Structured logging with JSON, text, and console formats
//   - Automatic redaction of credential-shaped values (API keys, DSNs, bearer tokens)
//   - Context-aware logging with request ids and the upstream provider name
//   - Synchronous writes to the configured writer
//   - Configurable log levels (debug, info, warn, error)
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:             "info",
//	    Format:            "json",
//	    RedactCredentials: true,
//	})
//
//	logger.Info("check completed",
//	    "request_id", "req-123",
//	    "api_key", "sk-abc123",  // redacted automatically
//	    "duration_ms", 1234,
//	)
package logging
