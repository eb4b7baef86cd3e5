package main

import (
	"context"
	"fmt"

	"vitacheck/engine/pkg/cache"
	"vitacheck/engine/pkg/classpolicy"
	"vitacheck/engine/pkg/cli"
	"vitacheck/engine/pkg/config"
	"vitacheck/engine/pkg/httpclient"
	"vitacheck/engine/pkg/orchestrator"
	"vitacheck/engine/pkg/providers"
	"vitacheck/engine/pkg/telemetry/logging"
	"vitacheck/engine/pkg/telemetry/metrics"
	"vitacheck/engine/pkg/usagelog"
)

// loadConfig loads and validates the config file named by the --config
// flag, applying environment overrides, and initializes the process-wide
// singleton so subcommands can share it via config.GetConfig.
func loadConfig() (*config.Config, error) {
	if err := config.Initialize(cfgFile); err != nil {
		return nil, cli.NewConfigError(cfgFile, err.Error())
	}
	return config.GetConfig(), nil
}

// newLogger builds a telemetry logger from cfg.Telemetry.Logging.
func newLogger(cfg *config.Config) (*logging.Logger, error) {
	return logging.New(logging.Config{
		Level:             cfg.Telemetry.Logging.Level,
		Format:            cfg.Telemetry.Logging.Format,
		RedactCredentials: cfg.Telemetry.Logging.RedactCredentials,
		BufferSize:        cfg.Telemetry.Logging.AsyncBufferSize,
	})
}

// loadClassPolicy resolves cfg.ClassPolicy.Source into a Policy: the
// built-in NSAID block-list, a local YAML file, or a git-distributed one.
// The returned GitSource is non-nil only for the git source; buildOrchestrator
// discards it, so neither run nor serve polls it for updates.
func loadClassPolicy(ctx context.Context, cfg *config.Config) (*classpolicy.Policy, *classpolicy.GitSource, error) {
	switch cfg.ClassPolicy.Source {
	case "", "builtin":
		return classpolicy.New(classpolicy.DefaultDoc()), nil, nil

	case "file":
		doc, err := classpolicy.LoadFile(cfg.ClassPolicy.FilePath)
		if err != nil {
			return nil, nil, err
		}
		return classpolicy.New(doc), nil, nil

	case "git":
		src, err := classpolicy.NewGitSource(ctx, classpolicy.GitSourceConfig{
			Repository: cfg.ClassPolicy.GitRepository,
			Branch:     cfg.ClassPolicy.GitBranch,
			FilePath:   cfg.ClassPolicy.GitPath,
			LocalPath:  cfg.ClassPolicy.GitLocalPath,
			Token:      cfg.ClassPolicy.GitToken,
			Timeout:    cfg.ClassPolicy.GitTimeout,
		})
		if err != nil {
			return nil, nil, err
		}
		doc, err := src.Load()
		if err != nil {
			return nil, nil, err
		}
		return classpolicy.New(doc), src, nil

	default:
		return nil, nil, fmt.Errorf("unknown class policy source: %q", cfg.ClassPolicy.Source)
	}
}

// deps bundles everything buildOrchestrator opens, so callers can close it
// down cleanly regardless of which subcommand is running.
type deps struct {
	db           *cache.DB
	usageStore   *usagelog.Store
	orchestrator *orchestrator.Orchestrator
	metrics      *metrics.Collector
}

func (d *deps) Close() {
	if d.usageStore != nil {
		d.usageStore.Close()
	}
	if d.db != nil {
		d.db.Close()
	}
}

// buildOrchestrator wires the cache stores, provider adapters, usage log,
// and metrics collector named by cfg into a ready-to-run Orchestrator.
func buildOrchestrator(ctx context.Context, cfg *config.Config) (*deps, error) {
	db, err := cache.Open(cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	d := &deps{db: db}

	policy, _, err := loadClassPolicy(ctx, cfg)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("load class policy: %w", err)
	}

	adapters := providers.New(httpclient.New(), providers.Credentials{
		SupplementAPIKey:   cfg.Providers.SupplementAPIKey,
		LiteratureAIAPIKey: cfg.Providers.LiteratureAIAPIKey,
	}, policy)
	adapters.Timeouts = providers.Timeouts{
		RxNormLookup:       cfg.Providers.RxNormLookupTimeout,
		RxNormInteractions: cfg.Providers.RxNormInteractionsTimeout,
		Supplement:         cfg.Providers.SupplementTimeout,
		LabelWarnings:      cfg.Providers.LabelWarningsTimeout,
		AdverseEvents:      cfg.Providers.AdverseEventsTimeout,
		Exposure:           cfg.Providers.ExposureTimeout,
		LiteratureAI:       cfg.Providers.LiteratureAITimeout,
	}
	applyEndpointOverrides(&adapters.Endpoints, cfg.Providers)

	orch := orchestrator.New(adapters, cache.NewItemStore(db), cache.NewPairStore(db, cfg.Cache.CalcVersion), cache.NewExposureStore(db), cfg.Cache.CalcVersion)

	if cfg.Database.UsageLogDSN != "" {
		store, err := usagelog.Open(cfg.Database.UsageLogDSN)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("open usage log database: %w", err)
		}
		d.usageStore = store
		orch.UsageLog = usagelog.NewRecorder(store, usagelog.DefaultRecorderConfig())
	}

	if cfg.Telemetry.Metrics.Enabled {
		metricsCfg := metrics.DefaultConfig()
		metricsCfg.Namespace = cfg.Telemetry.Metrics.Namespace
		metricsCfg.Subsystem = cfg.Telemetry.Metrics.Subsystem
		d.metrics = metrics.NewCollector(metricsCfg, nil)
		orch.Metrics = d.metrics
	}

	d.orchestrator = orch
	return d, nil
}

// applyEndpointOverrides replaces the zero-valued defaults providers.New
// seeded with any base URLs the config file overrides.
func applyEndpointOverrides(endpoints *providers.Endpoints, cfg config.ProvidersConfig) {
	if cfg.RxNormBase != "" {
		endpoints.RxNormBase = cfg.RxNormBase
	}
	if cfg.SupplementBase != "" {
		endpoints.SupplementBase = cfg.SupplementBase
	}
	if cfg.LabelBase != "" {
		endpoints.LabelBase = cfg.LabelBase
	}
	if cfg.AdverseEventsBase != "" {
		endpoints.AdverseEventsBase = cfg.AdverseEventsBase
	}
	if cfg.LiteratureAIBase != "" {
		endpoints.LiteratureAIBase = cfg.LiteratureAIBase
	}
	if cfg.ExposureBase != "" {
		endpoints.ExposureBase = cfg.ExposureBase
	}
}
