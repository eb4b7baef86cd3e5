// Package metrics exposes Prometheus counters and histograms for cache
// performance, upstream provider latency, and consensus outcomes (A3).
// Grounded on the teacher's pkg/telemetry/metrics/collector.go,
// pkg/telemetry/metrics/cache.go, and pkg/telemetry/metrics/provider.go —
// the request/policy/cost metrics those files also define have no analog
// in a single-pipeline drug-interaction service (no per-model billing, no
// proxy policy engine) and are not carried over.
package metrics

// Config configures metric namespacing and histogram bucket boundaries.
type Config struct {
	Namespace              string
	Subsystem              string
	RequestDurationBuckets []float64
}

// DefaultConfig returns production-shaped defaults.
func DefaultConfig() Config {
	return Config{
		Namespace: "vitacheck",
		Subsystem: "engine",
		// Tuned for upstream lookup/interaction-API latencies (tens of ms
		// to the label_warnings retry ceiling), not LLM-scale requests.
		RequestDurationBuckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
	}
}
