package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	Errors []FieldError
}

func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates cfg and returns a ValidationError if any rule fails,
// or nil if the configuration is valid. All violations are collected and
// returned together rather than failing on the first.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateDatabase(&cfg.Database)...)
	errs = append(errs, validateProviders(&cfg.Providers)...)
	errs = append(errs, validateClassPolicy(&cfg.ClassPolicy)...)
	errs = append(errs, validateCache(&cfg.Cache)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateServer(s *ServerConfig) []FieldError {
	var errs []FieldError
	if s.ListenAddress == "" {
		errs = append(errs, FieldError{"server.listen_address", "must not be empty"})
	}
	if s.ReadTimeout < 0 {
		errs = append(errs, FieldError{"server.read_timeout", "must not be negative"})
	}
	if s.WriteTimeout < 0 {
		errs = append(errs, FieldError{"server.write_timeout", "must not be negative"})
	}
	return errs
}

func validateDatabase(d *DatabaseConfig) []FieldError {
	if d.DSN == "" {
		return []FieldError{{"database.dsn", "required (set via VITACHECK_DB_DSN)"}}
	}
	return nil
}

func validateProviders(p *ProvidersConfig) []FieldError {
	var errs []FieldError
	timeouts := map[string]struct {
		field string
		value int64
	}{
		"rxnorm_lookup_timeout":        {"providers.rxnorm_lookup_timeout", int64(p.RxNormLookupTimeout)},
		"rxnorm_interactions_timeout":  {"providers.rxnorm_interactions_timeout", int64(p.RxNormInteractionsTimeout)},
		"supplement_timeout":           {"providers.supplement_timeout", int64(p.SupplementTimeout)},
		"label_warnings_timeout":       {"providers.label_warnings_timeout", int64(p.LabelWarningsTimeout)},
		"adverse_events_timeout":       {"providers.adverse_events_timeout", int64(p.AdverseEventsTimeout)},
		"exposure_timeout":             {"providers.exposure_timeout", int64(p.ExposureTimeout)},
		"literature_ai_timeout":        {"providers.literature_ai_timeout", int64(p.LiteratureAITimeout)},
	}
	for _, t := range timeouts {
		if t.value <= 0 {
			errs = append(errs, FieldError{t.field, "must be a positive duration"})
		}
	}
	return errs
}

func validateClassPolicy(c *ClassPolicyConfig) []FieldError {
	var errs []FieldError
	switch c.Source {
	case "builtin", "file", "git":
	default:
		errs = append(errs, FieldError{"class_policy.source", fmt.Sprintf("must be one of builtin, file, git, got %q", c.Source)})
	}
	if c.Source == "file" && c.FilePath == "" {
		errs = append(errs, FieldError{"class_policy.file_path", "required when source is file"})
	}
	if c.Source == "git" {
		if c.GitRepository == "" {
			errs = append(errs, FieldError{"class_policy.git_repository", "required when source is git"})
		}
		if c.GitLocalPath == "" {
			errs = append(errs, FieldError{"class_policy.git_local_path", "required when source is git"})
		}
	}
	return errs
}

func validateCache(c *CacheConfig) []FieldError {
	var errs []FieldError
	if c.CalcVersion == "" {
		errs = append(errs, FieldError{"cache.calc_version", "must not be empty"})
	}
	if c.SweepSchedule != "" {
		if _, err := cron.ParseStandard(c.SweepSchedule); err != nil {
			errs = append(errs, FieldError{"cache.sweep_schedule", fmt.Sprintf("invalid cron expression: %v", err)})
		}
	}
	return errs
}

func validateTelemetry(t *TelemetryConfig) []FieldError {
	var errs []FieldError
	switch t.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{"telemetry.logging.level", fmt.Sprintf("must be one of debug, info, warn, error, got %q", t.Logging.Level)})
	}
	switch t.Logging.Format {
	case "json", "text", "console":
	default:
		errs = append(errs, FieldError{"telemetry.logging.format", fmt.Sprintf("must be one of json, text, console, got %q", t.Logging.Format)})
	}
	return errs
}
