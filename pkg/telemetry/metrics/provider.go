package metrics

import "github.com/prometheus/client_golang/prometheus"

// ProviderMetrics tracks per-upstream-provider latency and error counts,
// keyed by the same provider names used in providers.Status.Provider
// ("rxnorm_lookup", "rxnorm_interactions", "label_warnings", ...).
type ProviderMetrics struct {
	latency  *prometheus.HistogramVec
	errors   *prometheus.CounterVec
	requests *prometheus.CounterVec
}

// NewProviderMetrics creates and registers provider metrics.
func NewProviderMetrics(cfg Config, registry *prometheus.Registry) *ProviderMetrics {
	pm := &ProviderMetrics{
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "provider_latency_seconds",
				Help:      "Upstream provider call latency in seconds",
				Buckets:   cfg.RequestDurationBuckets,
			},
			[]string{"provider"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "provider_errors_total",
				Help:      "Total number of upstream provider errors by kind",
			},
			[]string{"provider", "error_kind"},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "provider_requests_total",
				Help:      "Total number of calls attempted to each upstream provider",
			},
			[]string{"provider"},
		),
	}

	registry.MustRegister(pm.latency, pm.errors, pm.requests)
	return pm
}

// Observe records one provider call's outcome from a providers.Status-shaped
// result: attempted, elapsed time, and (if non-empty) the apperrors.Kind
// string that classified the failure.
func (pm *ProviderMetrics) Observe(provider string, elapsedMs int64, errorKind string) {
	pm.requests.WithLabelValues(provider).Inc()
	pm.latency.WithLabelValues(provider).Observe(float64(elapsedMs) / 1000)
	if errorKind != "" {
		pm.errors.WithLabelValues(provider, errorKind).Inc()
	}
}
