// Package metrics provides Prometheus metrics for the interaction-check
// pipeline: cache hit/miss rates by store, upstream provider latency and
// error rates, and consensus severity outcomes.
//
// # Usage
//
//	collector := metrics.NewCollector(metrics.DefaultConfig(), nil)
//	collector.Cache().RecordHit("item")
//	collector.Provider().Observe("rxnorm_interactions", elapsedMs, "")
//	collector.Consensus().Record("severe")
//	http.Handle("/metrics", collector.Handler())
//
// # Metrics Categories
//
//   - Cache: hit/miss counters by cache name ("item", "pair", "exposure")
//   - Provider: request counter, latency histogram, and error counter by
//     provider name and error kind
//   - Consensus: outcome counter by decided severity
package metrics
