// Package confidence implements the confidence engine (C9): per-source base
// weights, additive per-record adjustments, and the weighted-mean
// aggregation with its guardrails (§4.9). Grounded in mechanism on
// pkg/limits/budget/tracker.go's bounded, clamped accumulation and
// pkg/processing/costs/calculator.go's weighted per-source combination.
package confidence

import (
	"math"

	"vitacheck/engine/pkg/model"
)

// MaxConfidence is the effective ceiling; confidence must never reach 1.0.
const MaxConfidence = 0.95

// baseConfidence is the per-source table a standardizer seeds a fresh
// record's confidence from, before any adjustment.
var baseConfidence = map[model.Origin]float64{
	model.OriginRxNormInteractions:      0.85,
	model.OriginLabelWarnings:           0.80,
	model.OriginSupplementInteractions:  0.70,
	model.OriginPairAdverseEvents:       0.65,
	model.OriginSingleDrugAdverseEvents: 0.65,
	model.OriginLiteratureAI:            0.60,
}

// BaseConfidence returns the seed confidence for origin, used both by
// standardizers (as the record's initial value) and by the aggregator (as
// that record's weight).
func BaseConfidence(origin model.Origin) float64 {
	return baseConfidence[origin]
}

// AdjustRecord applies the additive, clamped per-record adjustments from
// §4.9 to a single merged evidence record, returning the adjusted value
// without mutating the record.
func AdjustRecord(r model.EvidenceRecord) float64 {
	conf := r.Confidence

	if r.Stats != nil {
		if r.Stats.Beneficiaries > 0 {
			conf += math.Min(math.Log10(float64(r.Stats.Beneficiaries)+1)/10, 0.15)
		}
		if r.Stats.EventRate > 0 && r.Stats.SeriousEventRate > 0 {
			conf += 0.05
		}
		switch {
		case r.Stats.TotalEvents > 1000:
			conf += 0.05
		case r.Stats.TotalEvents > 100:
			conf += 0.02
		case r.Stats.TotalEvents > 0 && r.Stats.TotalEvents < 10:
			conf -= 0.05
		}
	}

	if r.Severity == model.SeverityUnknown {
		conf *= 0.7
	}

	return clamp01(conf)
}

// PairInputs bundles what AggregatePair needs beyond the merged record list:
// facts about whether and how many primary providers completed without
// error, which the merged list alone can't distinguish from "didn't run".
type PairInputs struct {
	Records []model.EvidenceRecord

	// PrimaryRanSuccessfully is true if at least one primary-origin
	// provider (rxnorm_interactions, pair_adverse_events,
	// supplement_interactions) completed its call without error, whether
	// or not it found anything.
	PrimaryRanSuccessfully bool

	// PrimarySuccessCount is how many of those primary providers
	// completed without error.
	PrimarySuccessCount int
}

// AggregatePair computes the aggregate confidence for a pair from its merged
// evidence records, applying the two guardrails from §4.9:
//  1. no primary source ran successfully -> capped at 0;
//  2. merged set empty but a primary source ran -> baseline by count.
// Otherwise it is the weighted mean of each record's adjusted confidence,
// weighted by that origin's base-confidence value, capped at MaxConfidence.
func AggregatePair(in PairInputs) float64 {
	if !in.PrimaryRanSuccessfully {
		return 0
	}

	if len(in.Records) == 0 {
		switch {
		case in.PrimarySuccessCount >= 3:
			return 0.70
		case in.PrimarySuccessCount == 2:
			return 0.50
		case in.PrimarySuccessCount == 1:
			return 0.30
		default:
			return 0
		}
	}

	var weightedSum, weightSum float64
	for _, r := range in.Records {
		weight := BaseConfidence(r.Origin)
		if weight == 0 {
			continue
		}
		weightedSum += weight * AdjustRecord(r)
		weightSum += weight
	}
	if weightSum == 0 {
		return 0
	}

	return clamp(weightedSum/weightSum, 0, MaxConfidence)
}

func clamp01(v float64) float64 { return clamp(v, 0, 1) }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
