package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"vitacheck/engine/pkg/apperrors"
)

func TestDoTimeoutIsTypedTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
	}))
	defer srv.Close()

	c := New()
	_, err := c.Do(context.Background(), Request{Method: "GET", URL: srv.URL, Timeout: 5 * time.Millisecond})
	if !apperrors.Is(err, apperrors.Timeout) {
		t.Fatalf("expected Timeout kind, got %v", err)
	}
}

func TestDoWithRetryLinearBackoff(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt64(&calls, 1)
		if n < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New()
	resp, err := c.DoWithRetry(context.Background(), Request{Method: "GET", URL: srv.URL, Timeout: time.Second},
		RetryPolicy{MaxRetries: 2, BackoffBase: time.Millisecond})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if atomic.LoadInt64(&calls) != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}
