// Package server provides the HTTP entry point for the interaction-check
// pipeline: one JSON endpoint composing the orchestrator, plus liveness,
// readiness, and metrics scrape endpoints.
//
// # Basic Usage
//
//	cfg := config.GetConfig()
//	srv := server.NewServer(&cfg.Server, orch, db, collector)
//	if err := srv.Start(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
// # Routes
//
//   - POST /v1/check - run an interaction check and return the report
//   - GET /health - liveness probe (always returns 200)
//   - GET /ready - readiness probe (503 if the cache database is
//     unreachable)
//   - GET /metrics - Prometheus scrape endpoint (mounted only when a
//     collector is supplied)
//
// # Middleware Chain
//
// Requests pass through the following middleware (innermost to outermost):
//  1. Logging: logs request/response details
//  2. RequestID: generates a unique request ID for tracing
//  3. Recovery: recovers from panics and returns a 500 error
//
// # Graceful Shutdown
//
// Shutdown stops accepting new connections and waits up to
// cfg.ShutdownTimeout for in-flight requests to finish before forcing
// closure.
package server
