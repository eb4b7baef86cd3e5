package metrics

import "github.com/prometheus/client_golang/prometheus"

// CacheMetrics tracks item/pair/exposure cache hit and miss counts, one
// series per cache name ("item", "pair", "exposure"), mirroring
// cache.Stats's three counter pairs (§6 cacheStats).
type CacheMetrics struct {
	hitsTotal   *prometheus.CounterVec
	missesTotal *prometheus.CounterVec
}

// NewCacheMetrics creates and registers cache metrics.
func NewCacheMetrics(cfg Config, registry *prometheus.Registry) *CacheMetrics {
	cm := &CacheMetrics{
		hitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "cache_hits_total",
				Help:      "Total number of cache hits",
			},
			[]string{"cache"},
		),
		missesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "cache_misses_total",
				Help:      "Total number of cache misses",
			},
			[]string{"cache"},
		),
	}

	registry.MustRegister(cm.hitsTotal, cm.missesTotal)
	return cm
}

// RecordHit records a cache hit for cacheName ("item", "pair", "exposure").
func (cm *CacheMetrics) RecordHit(cacheName string) {
	cm.hitsTotal.WithLabelValues(cacheName).Inc()
}

// RecordMiss records a cache miss for cacheName.
func (cm *CacheMetrics) RecordMiss(cacheName string) {
	cm.missesTotal.WithLabelValues(cacheName).Inc()
}

// Observe folds a snapshot of cache.Stats-shaped counters into the
// cumulative series, used once per request with the delta since the last
// snapshot (counters are monotonic; callers pass already-deltaed values).
func (cm *CacheMetrics) Observe(cacheName string, hits, misses int64) {
	if hits > 0 {
		cm.hitsTotal.WithLabelValues(cacheName).Add(float64(hits))
	}
	if misses > 0 {
		cm.missesTotal.WithLabelValues(cacheName).Add(float64(misses))
	}
}
