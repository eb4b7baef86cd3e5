// Package providers implements the six upstream authority adapters (C4).
// Each adapter returns (data|nil, error|nil, cached, elapsed): a nil data
// and nil error together mean "looked, found nothing", distinct from an
// error. Adapters never retry on their own — only the configured retryable
// call (label_warnings) goes through httpclient.DoWithRetry.
package providers

import (
	"time"

	"vitacheck/engine/pkg/classpolicy"
	"vitacheck/engine/pkg/httpclient"
)

// Timeouts holds the per-provider timeout budget (§6).
type Timeouts struct {
	RxNormLookup        time.Duration
	RxNormInteractions   time.Duration
	Supplement           time.Duration
	LabelWarnings        time.Duration
	AdverseEvents        time.Duration
	Exposure             time.Duration
	LiteratureAI         time.Duration
}

// DefaultTimeouts matches the per-provider timeouts in §6.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		RxNormLookup:       6 * time.Second,
		RxNormInteractions: 10 * time.Second,
		Supplement:         10 * time.Second,
		LabelWarnings:      8 * time.Second,
		AdverseEvents:      10 * time.Second,
		Exposure:           4 * time.Second,
		LiteratureAI:       30 * time.Second,
	}
}

// Credentials holds the optional upstream API keys (§6 Environment inputs).
// An unset credential deterministically disables its provider with
// apperrors.MissingCredential; it never fails the request.
type Credentials struct {
	SupplementAPIKey   string
	LiteratureAIAPIKey string
}

// Endpoints holds the upstream base URLs, overridable for testing.
type Endpoints struct {
	RxNormBase        string
	SupplementBase    string
	LabelBase         string
	AdverseEventsBase string
	LiteratureAIBase  string
	ExposureBase      string
}

// DefaultEndpoints returns production-shaped base URLs.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		RxNormBase:        "https://rxnav.nlm.nih.gov/REST",
		SupplementBase:    "https://api.supplementdata.example/v1",
		LabelBase:         "https://api.fda.gov/drug/label.json",
		AdverseEventsBase: "https://api.fda.gov/drug/event.json",
		LiteratureAIBase:  "https://literature-ai.internal.example/v1",
		ExposureBase:      "https://api.supplementdata.example/v1/exposure",
	}
}

// LabelRetryPolicy is the only retryable provider call (§4.3).
var LabelRetryPolicy = httpclient.RetryPolicy{MaxRetries: 2, BackoffBase: 500 * time.Millisecond}

// Adapters bundles the configured HTTP client, credentials, endpoints, and
// the class policy consulted by the label adapter.
type Adapters struct {
	HTTP        *httpclient.Client
	Timeouts    Timeouts
	Endpoints   Endpoints
	Credentials Credentials
	ClassPolicy *classpolicy.Policy
}

// New creates an Adapters set with production defaults.
func New(http *httpclient.Client, creds Credentials, classPolicy *classpolicy.Policy) *Adapters {
	return &Adapters{
		HTTP:        http,
		Timeouts:    DefaultTimeouts(),
		Endpoints:   DefaultEndpoints(),
		Credentials: creds,
		ClassPolicy: classPolicy,
	}
}

// Status is the per-provider debug trace entry (§4.10 Observability
// contract). OK semantics differ by provider family: for interaction
// providers, data==nil && error==nil is still OK=true (normalized
// no-interaction); for lookup providers the same shape is OK=false.
type Status struct {
	Provider  string        `json:"provider"`
	Attempted bool          `json:"attempted"`
	OK        bool          `json:"ok"`
	ElapsedMs int64         `json:"elapsedMs"`
	Cached    bool          `json:"cached"`
	Error     string        `json:"error,omitempty"`
}

func elapsedMs(start time.Time) int64 { return time.Since(start).Milliseconds() }
