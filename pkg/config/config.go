// Package config defines the root Config structure for vitacheck: the
// server, database, upstream credentials/timeouts, class-policy source,
// cache sweeper schedule, and telemetry settings. Grounded on the teacher's
// pkg/config/config.go (YAML-tagged struct-of-structs, doc comments naming
// each field's Default), narrowed to this service's single-pipeline scope —
// no proxy routing, no per-model provider map, no mTLS.
package config

import "time"

// Config is the root configuration structure for vitacheck.
type Config struct {
	// Server contains the HTTP listener configuration for pkg/server (A9).
	Server ServerConfig `yaml:"server"`

	// Database contains the cache and usage-log store connection settings.
	Database DatabaseConfig `yaml:"database"`

	// Providers contains per-upstream timeouts, base URLs, and credentials.
	Providers ProvidersConfig `yaml:"providers"`

	// ClassPolicy contains the drug-class block-list source (A5).
	ClassPolicy ClassPolicyConfig `yaml:"class_policy"`

	// Cache contains the calc version and the sweeper's cron schedule (A7).
	Cache CacheConfig `yaml:"cache"`

	// Telemetry contains logging and metrics configuration (A2, A3).
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Debug is loaded from the YAML file and VITACHECK_DEBUG. Nothing in
	// the request path reads it: per-provider tracing is enabled per
	// request by Options.Debug only.
	// Default: false
	Debug bool `yaml:"debug"`
}

// ServerConfig contains configuration for the HTTP server exposing
// POST /v1/check.
type ServerConfig struct {
	// ListenAddress is the address and port for the server to listen on.
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 10s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. Set comfortably above the slowest single-item fan-out
	// (literature_ai's 30s timeout) so legitimate triple-item requests
	// aren't cut off mid-response.
	// Default: 45s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum time to wait for the next request when
	// keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for in-flight
	// requests to finish during graceful shutdown.
	// Default: 15s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig contains the SQLite connection settings for the cache
// store (pkg/cache, modernc driver) and the usage log (pkg/usagelog,
// mattn driver), each opened from its own DSN.
type DatabaseConfig struct {
	// DSN is the filesystem path (or SQLite DSN) for the cache database.
	// Required; no default. Set via VITACHECK_DB_DSN.
	DSN string `yaml:"dsn"`

	// UsageLogDSN is the filesystem path for the usage log database. When
	// empty, no usage log is opened and no usage rows are recorded; no
	// path is derived from DSN. Set via VITACHECK_USAGE_LOG_DSN.
	UsageLogDSN string `yaml:"usage_log_dsn"`
}

// ProvidersConfig contains per-upstream timeouts, endpoints, and the
// optional credentials that gate the supplement and literature-AI
// providers (§6 Environment inputs).
type ProvidersConfig struct {
	// RxNormLookupTimeout bounds the rxcui resolution call.
	// Default: 6s
	RxNormLookupTimeout time.Duration `yaml:"rxnorm_lookup_timeout"`

	// RxNormInteractionsTimeout bounds the pairwise interaction call.
	// Default: 10s
	RxNormInteractionsTimeout time.Duration `yaml:"rxnorm_interactions_timeout"`

	// SupplementTimeout bounds the supplement-data call.
	// Default: 10s
	SupplementTimeout time.Duration `yaml:"supplement_timeout"`

	// LabelWarningsTimeout bounds the label-warnings call (the only
	// retryable provider; actual wall time may reach roughly 3x this under
	// the configured retry policy).
	// Default: 8s
	LabelWarningsTimeout time.Duration `yaml:"label_warnings_timeout"`

	// AdverseEventsTimeout bounds the adverse-event-report call.
	// Default: 10s
	AdverseEventsTimeout time.Duration `yaml:"adverse_events_timeout"`

	// ExposureTimeout bounds the co-ingestion-exposure call.
	// Default: 4s
	ExposureTimeout time.Duration `yaml:"exposure_timeout"`

	// LiteratureAITimeout bounds the literature-AI call (optional, gated
	// by LiteratureAIAPIKey).
	// Default: 30s
	LiteratureAITimeout time.Duration `yaml:"literature_ai_timeout"`

	// RxNormBase, SupplementBase, LabelBase, AdverseEventsBase,
	// LiteratureAIBase, and ExposureBase override the production upstream
	// base URLs, primarily for pointing at a test double.
	RxNormBase        string `yaml:"rxnorm_base"`
	SupplementBase    string `yaml:"supplement_base"`
	LabelBase         string `yaml:"label_base"`
	AdverseEventsBase string `yaml:"adverse_events_base"`
	LiteratureAIBase  string `yaml:"literature_ai_base"`
	ExposureBase      string `yaml:"exposure_base"`

	// SupplementAPIKey gates the supplement provider. Unset disables it
	// deterministically (apperrors.MissingCredential), never failing the
	// request. Set via VITACHECK_SUPPLEMENT_API_KEY.
	SupplementAPIKey string `yaml:"-"`

	// LiteratureAIAPIKey gates the literature-AI provider. Same
	// unset-disables semantics as SupplementAPIKey. Set via
	// VITACHECK_LITERATURE_AI_API_KEY.
	LiteratureAIAPIKey string `yaml:"-"`
}

// ClassPolicyConfig selects where the drug-class block-list consulted by
// the label-warning standardizer's rejection rule is loaded from.
type ClassPolicyConfig struct {
	// Source is "builtin", "file", or "git".
	// Default: "builtin"
	Source string `yaml:"source"`

	// FilePath is the local YAML document path, used when Source is "file".
	// A git source reads its document from GitPath instead.
	FilePath string `yaml:"file_path"`

	// Watch is accepted in the YAML file, but nothing in this module reads
	// it: no classpolicy.Watcher is started from configuration.
	// Default: false
	Watch bool `yaml:"watch"`

	// GitRepository, GitBranch, GitPath, GitLocalPath, and GitToken
	// configure a git-backed policy source, used when Source is "git".
	GitRepository string        `yaml:"git_repository"`
	GitBranch     string        `yaml:"git_branch"`
	GitPath       string        `yaml:"git_path"`
	GitLocalPath  string        `yaml:"git_local_path"`
	GitToken      string        `yaml:"-"`
	GitTimeout    time.Duration `yaml:"git_timeout"`
}

// CacheConfig contains the cache calc version and sweeper schedule.
type CacheConfig struct {
	// CalcVersion is the merge/consensus/confidence algorithm version
	// stamped on pair cache entries and checked on read (§4.5).
	// Default: "v1"
	CalcVersion string `yaml:"calc_version"`

	// SweepSchedule is a standard cron expression for the sweep that
	// deletes pair-cache entries stamped with a calc version other than
	// CalcVersion. Empty disables sweeping.
	// Default: "0 3 * * *"
	SweepSchedule string `yaml:"sweep_schedule"`
}

// TelemetryConfig contains logging and metrics configuration.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures pkg/telemetry/logging.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is one of "json", "text", "console".
	// Default: "json"
	Format string `yaml:"format"`

	// RedactCredentials enables regex-based redaction of API-key,
	// bearer-token, and DSN-credential shapes in log output.
	// Default: true
	RedactCredentials bool `yaml:"redact_credentials"`

	// AsyncBufferSize is the log writer's channel buffer size.
	// Default: 1000
	AsyncBufferSize int `yaml:"async_buffer_size"`
}

// MetricsConfig configures pkg/telemetry/metrics.
type MetricsConfig struct {
	// Enabled controls whether the /metrics endpoint is mounted.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is loaded and defaulted, but pkg/server always mounts the
	// Prometheus handler at /metrics; this field does not change the route.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace and Subsystem prefix every metric name.
	// Default: "vitacheck", "engine"
	Namespace string `yaml:"namespace"`
	Subsystem string `yaml:"subsystem"`
}
