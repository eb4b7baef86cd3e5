// Package config loads, defaults, validates, and exposes vitacheck's
// configuration.
//
// # Configuration Loading
//
//	cfg, err := config.LoadConfig("config.yaml")
//	cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// # Environment Variable Overrides
//
// VITACHECK_DB_DSN, VITACHECK_SUPPLEMENT_API_KEY,
// VITACHECK_LITERATURE_AI_API_KEY, and VITACHECK_DEBUG are the four
// environment inputs named in §6; the remaining VITACHECK_* variables in
// load.go override individual timeouts and telemetry fields. Environment
// variables always take precedence over the YAML file.
//
// # Precedence
//
//  1. Defaults (defaults.go)
//  2. YAML file
//  3. Environment overrides
//  4. Validation (fails fast if invalid)
//
// # Singleton
//
//	if err := config.Initialize("config.yaml"); err != nil {
//		log.Fatal(err)
//	}
//	cfg := config.GetConfig()
//
// Prefer passing an explicit *Config in tests rather than the singleton.
package config
