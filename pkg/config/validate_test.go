package config

import "testing"

func validConfig() *Config {
	var cfg Config
	cfg.Database.DSN = "/tmp/vitacheck.db"
	ApplyDefaults(&cfg)
	return &cfg
}

func TestValidateAcceptsDefaultedConfig(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateRejectsMissingDSN(t *testing.T) {
	cfg := validConfig()
	cfg.Database.DSN = ""

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected an error for missing database.dsn")
	}
	ve, ok := err.(ValidationError)
	if !ok {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(ve.Errors) != 1 || ve.Errors[0].Field != "database.dsn" {
		t.Errorf("expected exactly one database.dsn error, got %+v", ve.Errors)
	}
}

func TestValidateRejectsUnknownClassPolicySource(t *testing.T) {
	cfg := validConfig()
	cfg.ClassPolicy.Source = "s3"

	if err := Validate(cfg); err == nil {
		t.Fatal("expected an error for unknown class_policy.source")
	}
}

func TestValidateRequiresGitFieldsWhenSourceIsGit(t *testing.T) {
	cfg := validConfig()
	cfg.ClassPolicy.Source = "git"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected an error for missing git fields")
	}
	ve := err.(ValidationError)
	if len(ve.Errors) != 2 {
		t.Errorf("expected 2 errors (git_repository, git_local_path), got %+v", ve.Errors)
	}
}

func TestValidateRejectsInvalidCronSchedule(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.SweepSchedule = "not a cron expression"

	if err := Validate(cfg); err == nil {
		t.Fatal("expected an error for an invalid cron expression")
	}
}

func TestValidateRejectsUnknownLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Telemetry.Logging.Level = "verbose"

	if err := Validate(cfg); err == nil {
		t.Fatal("expected an error for an unknown log level")
	}
}

func TestValidationErrorFormatsMultipleErrors(t *testing.T) {
	ve := ValidationError{Errors: []FieldError{
		{Field: "a.b", Message: "bad"},
		{Field: "c.d", Message: "also bad"},
	}}
	msg := ve.Error()
	if msg == "" {
		t.Fatal("expected a non-empty message")
	}
}
