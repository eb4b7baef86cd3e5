package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles cache, provider, and consensus metrics behind one
// registry, and exposes the Prometheus scrape handler.
type Collector struct {
	config   Config
	registry *prometheus.Registry

	cache     *CacheMetrics
	provider  *ProviderMetrics
	consensus *ConsensusMetrics
}

// NewCollector creates a collector with its own registry. A nil registry
// is replaced with a freshly created one rather than the global default,
// so repeated test construction doesn't panic on duplicate registration.
func NewCollector(cfg Config, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg = DefaultConfig()
	}

	return &Collector{
		config:    cfg,
		registry:  registry,
		cache:     NewCacheMetrics(cfg, registry),
		provider:  NewProviderMetrics(cfg, registry),
		consensus: NewConsensusMetrics(cfg, registry),
	}
}

func (c *Collector) Cache() *CacheMetrics         { return c.cache }
func (c *Collector) Provider() *ProviderMetrics   { return c.provider }
func (c *Collector) Consensus() *ConsensusMetrics { return c.consensus }

// Registry returns the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler returns the HTTP handler serving this collector's registry in
// Prometheus exposition format, mounted at /metrics by pkg/server.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{ErrorHandling: promhttp.ContinueOnError})
}
