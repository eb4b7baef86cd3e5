package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at path, applies
// defaults, and validates the result. It does not apply environment
// overrides; use LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies VITACHECK_* environment variable overrides, which always take
// precedence over file-based configuration. Credentials (the two optional
// API keys) are env-only — they have no YAML field — matching §6's
// Environment-inputs contract.
//
// Loading order: YAML → defaults → env overrides → validate.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return &cfg, nil
}

// applyEnvOverrides applies VITACHECK_* environment variable overrides.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("VITACHECK_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("VITACHECK_DB_DSN"); val != "" {
		cfg.Database.DSN = val
	}
	if val := os.Getenv("VITACHECK_USAGE_LOG_DSN"); val != "" {
		cfg.Database.UsageLogDSN = val
	}
	if val := os.Getenv("VITACHECK_SUPPLEMENT_API_KEY"); val != "" {
		cfg.Providers.SupplementAPIKey = val
	}
	if val := os.Getenv("VITACHECK_LITERATURE_AI_API_KEY"); val != "" {
		cfg.Providers.LiteratureAIAPIKey = val
	}
	if val := os.Getenv("VITACHECK_DEBUG"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Debug = b
		}
	}
	if val := os.Getenv("VITACHECK_CLASS_POLICY_GIT_TOKEN"); val != "" {
		cfg.ClassPolicy.GitToken = val
	}
	if val := os.Getenv("VITACHECK_LOG_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("VITACHECK_LOG_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("VITACHECK_CACHE_SWEEP_SCHEDULE"); val != "" {
		cfg.Cache.SweepSchedule = val
	}

	applyDurationEnv("VITACHECK_RXNORM_LOOKUP_TIMEOUT", &cfg.Providers.RxNormLookupTimeout)
	applyDurationEnv("VITACHECK_RXNORM_INTERACTIONS_TIMEOUT", &cfg.Providers.RxNormInteractionsTimeout)
	applyDurationEnv("VITACHECK_SUPPLEMENT_TIMEOUT", &cfg.Providers.SupplementTimeout)
	applyDurationEnv("VITACHECK_LABEL_WARNINGS_TIMEOUT", &cfg.Providers.LabelWarningsTimeout)
	applyDurationEnv("VITACHECK_ADVERSE_EVENTS_TIMEOUT", &cfg.Providers.AdverseEventsTimeout)
	applyDurationEnv("VITACHECK_EXPOSURE_TIMEOUT", &cfg.Providers.ExposureTimeout)
	applyDurationEnv("VITACHECK_LITERATURE_AI_TIMEOUT", &cfg.Providers.LiteratureAITimeout)
}

func applyDurationEnv(name string, field *time.Duration) {
	val := os.Getenv(name)
	if val == "" {
		return
	}
	if d, err := time.ParseDuration(val); err == nil {
		*field = d
	}
}
