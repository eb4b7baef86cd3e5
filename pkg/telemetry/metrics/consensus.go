package metrics

import "github.com/prometheus/client_golang/prometheus"

// ConsensusMetrics tallies how often consensus.Decide lands on each
// severity, across pair/single/triple reports alike.
type ConsensusMetrics struct {
	outcomesTotal *prometheus.CounterVec
}

// NewConsensusMetrics creates and registers consensus outcome metrics.
func NewConsensusMetrics(cfg Config, registry *prometheus.Registry) *ConsensusMetrics {
	cm := &ConsensusMetrics{
		outcomesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "consensus_outcomes_total",
				Help:      "Total number of reports by consensus severity",
			},
			[]string{"severity"},
		),
	}
	registry.MustRegister(cm.outcomesTotal)
	return cm
}

// Record tallies one report's decided severity.
func (cm *ConsensusMetrics) Record(severity string) {
	cm.outcomesTotal.WithLabelValues(severity).Inc()
}
