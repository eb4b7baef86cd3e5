package config

import "time"

// Default values for configuration fields.
const (
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 45 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 15 * time.Second

	DefaultRxNormLookupTimeout       = 6 * time.Second
	DefaultRxNormInteractionsTimeout = 10 * time.Second
	DefaultSupplementTimeout         = 10 * time.Second
	DefaultLabelWarningsTimeout      = 8 * time.Second
	DefaultAdverseEventsTimeout      = 10 * time.Second
	DefaultExposureTimeout           = 4 * time.Second
	DefaultLiteratureAITimeout       = 30 * time.Second

	DefaultClassPolicySource = "builtin"
	DefaultClassPolicyWatch  = false
	DefaultGitBranch         = "main"
	DefaultGitTimeout        = 30 * time.Second

	DefaultCalcVersion   = "v1"
	DefaultSweepSchedule = "0 3 * * *"

	DefaultLoggingLevel             = "info"
	DefaultLoggingFormat            = "json"
	DefaultLoggingRedactCredentials = true
	DefaultLoggingAsyncBufferSize   = 1000

	DefaultMetricsEnabled   = true
	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "vitacheck"
	DefaultMetricsSubsystem = "engine"
)

// ApplyDefaults fills unset fields with the values above. Called after YAML
// unmarshal and before environment overrides (see load.go).
func ApplyDefaults(cfg *Config) {
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	if cfg.Providers.RxNormLookupTimeout == 0 {
		cfg.Providers.RxNormLookupTimeout = DefaultRxNormLookupTimeout
	}
	if cfg.Providers.RxNormInteractionsTimeout == 0 {
		cfg.Providers.RxNormInteractionsTimeout = DefaultRxNormInteractionsTimeout
	}
	if cfg.Providers.SupplementTimeout == 0 {
		cfg.Providers.SupplementTimeout = DefaultSupplementTimeout
	}
	if cfg.Providers.LabelWarningsTimeout == 0 {
		cfg.Providers.LabelWarningsTimeout = DefaultLabelWarningsTimeout
	}
	if cfg.Providers.AdverseEventsTimeout == 0 {
		cfg.Providers.AdverseEventsTimeout = DefaultAdverseEventsTimeout
	}
	if cfg.Providers.ExposureTimeout == 0 {
		cfg.Providers.ExposureTimeout = DefaultExposureTimeout
	}
	if cfg.Providers.LiteratureAITimeout == 0 {
		cfg.Providers.LiteratureAITimeout = DefaultLiteratureAITimeout
	}

	if cfg.ClassPolicy.Source == "" {
		cfg.ClassPolicy.Source = DefaultClassPolicySource
	}
	if cfg.ClassPolicy.GitBranch == "" {
		cfg.ClassPolicy.GitBranch = DefaultGitBranch
	}
	if cfg.ClassPolicy.GitTimeout == 0 {
		cfg.ClassPolicy.GitTimeout = DefaultGitTimeout
	}

	if cfg.Cache.CalcVersion == "" {
		cfg.Cache.CalcVersion = DefaultCalcVersion
	}
	if cfg.Cache.SweepSchedule == "" {
		cfg.Cache.SweepSchedule = DefaultSweepSchedule
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Logging.AsyncBufferSize == 0 {
		cfg.Telemetry.Logging.AsyncBufferSize = DefaultLoggingAsyncBufferSize
	}
	// RedactCredentials and Metrics.Enabled default true; like the teacher's
	// CORS.Enabled default, a bare "if !x" can't tell "unset" from
	// "explicitly disabled", so an explicit redaction opt-out requires a
	// Level other than "info" alongside redact_credentials: false, and a
	// metrics opt-out requires Path to be set alongside enabled: false.
	if !cfg.Telemetry.Logging.RedactCredentials && cfg.Telemetry.Logging.Level == DefaultLoggingLevel {
		cfg.Telemetry.Logging.RedactCredentials = DefaultLoggingRedactCredentials
	}
	if !cfg.Telemetry.Metrics.Enabled && cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
}
