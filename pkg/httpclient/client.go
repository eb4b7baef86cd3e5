// Package httpclient wraps a timed single-shot fetch and a retry wrapper
// with linear backoff (C3). Timeouts surface as apperrors.Timeout rather
// than a generic transport error; retries are only applied by providers that
// opt in.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"vitacheck/engine/pkg/apperrors"
)

// Client performs a single HTTP call under a hard timeout.
type Client struct {
	http *http.Client
}

// New creates a Client with connection pooling, mirroring the teacher's
// base HTTP provider transport settings.
func New() *Client {
	return &Client{
		http: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        64,
				MaxIdleConnsPerHost: 8,
				IdleConnTimeout:     90 * time.Second,
				ForceAttemptHTTP2:   true,
			},
		},
	}
}

// Request describes a single call.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
	Timeout time.Duration
}

// Response is the decoded result of a successful call.
type Response struct {
	StatusCode int
	Body       []byte
}

// Do performs a single-shot, time-bounded HTTP call. A timeout elapses into
// *apperrors.AppError{Kind: apperrors.Timeout}, not a transport error.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, req.Timeout)
	defer cancel()

	var bodyReader io.Reader
	if req.Body != nil {
		bodyReader = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bodyReader)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "failed to build request", err)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if req.Body != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, apperrors.Wrap(apperrors.Timeout, fmt.Sprintf("request to %s timed out", req.URL), ctx.Err())
		}
		return nil, apperrors.Wrap(apperrors.TransportError, fmt.Sprintf("request to %s failed", req.URL), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.TransportError, "failed to read response body", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Response{StatusCode: resp.StatusCode, Body: body},
			apperrors.New(apperrors.TransportError, fmt.Sprintf("%s returned status %d", req.URL, resp.StatusCode))
	}

	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}

// RetryPolicy configures the linear-backoff retry wrapper. Only providers
// configured as retryable use this (§4.3: label_warnings with MaxRetries=2,
// BackoffBase=500ms).
type RetryPolicy struct {
	MaxRetries  int
	BackoffBase time.Duration
}

// DoWithRetry attempts up to MaxRetries+1 calls with linear backoff
// (BackoffBase * attempt). A timeout is not retried further once the
// deadline carried in ctx has already elapsed.
func (c *Client) DoWithRetry(ctx context.Context, req Request, policy RetryPolicy) (*Response, error) {
	var lastErr error
	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := policy.BackoffBase * time.Duration(attempt)
			select {
			case <-ctx.Done():
				return nil, apperrors.Wrap(apperrors.Timeout, "retry aborted by context", ctx.Err())
			case <-time.After(backoff):
			}
		}

		resp, err := c.Do(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if apperrors.Is(err, apperrors.Timeout) && ctx.Err() != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

// DecodeJSON unmarshals a successful response body into v.
func DecodeJSON(resp *Response, v any) error {
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return apperrors.Wrap(apperrors.ParseError, "failed to decode response", err)
	}
	return nil
}
