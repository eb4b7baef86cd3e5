// Package server provides the minimal HTTP entry point for the
// interaction-check pipeline: a single POST /v1/check handler composing
// the orchestrator, plus liveness/readiness and Prometheus scrape
// endpoints. Grounded on the teacher's pkg/server/server.go for overall
// shape (route setup, middleware chain, graceful shutdown with a timeout,
// signal handling) and pkg/proxy/middleware for request-id/logging —
// narrowed from a multi-route LLM proxy with TLS/CORS/websocket support to
// one internal JSON endpoint, since this service has no external traffic
// shaping to do.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"sync"

	"vitacheck/engine/pkg/apperrors"
	"vitacheck/engine/pkg/cache"
	"vitacheck/engine/pkg/config"
	"vitacheck/engine/pkg/orchestrator"
	"vitacheck/engine/pkg/proxy/middleware"
	"vitacheck/engine/pkg/telemetry/health"
	"vitacheck/engine/pkg/telemetry/metrics"
)

// Server wraps an Orchestrator behind an HTTP handler.
type Server struct {
	cfg          *config.ServerConfig
	orchestrator *orchestrator.Orchestrator
	metrics      *metrics.Collector
	health       *health.Checker
	httpServer   *http.Server
	shutdownOnce sync.Once
}

// NewServer creates a Server. metrics may be nil to disable the /metrics
// route entirely. db is registered as the sole readiness check: the
// pipeline can't serve a request without its cache database reachable.
func NewServer(cfg *config.ServerConfig, orch *orchestrator.Orchestrator, db *cache.DB, m *metrics.Collector) *Server {
	checker := health.New(0)
	checker.RegisterCheck("cache", db.Ping)
	return &Server{cfg: cfg, orchestrator: orch, metrics: m, health: checker}
}

// Start begins listening and blocks until the context is cancelled or the
// server fails. Callers should run it in a goroutine and use Shutdown to
// stop it.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.cfg.ListenAddress,
		Handler:      s.handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting http server", "address", s.cfg.ListenAddress)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully stops the server, waiting up to cfg.ShutdownTimeout
// for in-flight requests to finish.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.httpServer == nil {
			return
		}
		shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}
	})
	return shutdownErr
}

// Handler returns the configured HTTP handler, for use in tests with
// httptest.NewServer instead of Start/Shutdown.
func (s *Server) Handler() http.Handler {
	return s.handler()
}

func (s *Server) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/check", s.handleCheck)
	mux.HandleFunc("GET /health", s.health.LivenessHandler())
	mux.HandleFunc("GET /ready", s.health.ReadinessHandler())
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.RequestIDMiddleware(handler)
	handler = s.recoveryMiddleware(handler)
	return handler
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req orchestrator.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.Wrap(apperrors.InvalidInput, "malformed request body", err))
		return
	}

	resp, err := s.orchestrator.Run(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// errorResponse is the JSON shape written for a failed request.
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// writeError maps an apperrors.Kind to an HTTP status per §7: InvalidInput
// is the caller's fault (400); everything else this handler ever sees
// (Internal, from a surfaced cache-store failure) is ours (500).
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	kind := string(apperrors.Internal)
	if ae, ok := err.(*apperrors.AppError); ok {
		kind = string(ae.Kind)
		if ae.Kind == apperrors.InvalidInput {
			status = http.StatusBadRequest
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: err.Error(), Kind: kind})
}

// recoveryMiddleware recovers from panics in the check handler, logging the
// stack trace and returning a 500 rather than crashing the process.
// Adapted from the teacher's RecoveryMiddleware, swapping its OpenAI-shaped
// error body for errorResponse.
func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				requestID := middleware.GetRequestID(r.Context())
				slog.ErrorContext(r.Context(), "panic in handler",
					"error", rec,
					"request_id", requestID,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				writeError(w, apperrors.New(apperrors.Internal, "an internal error occurred"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
