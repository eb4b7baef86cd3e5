// Package consensus implements the weighted-vote consensus engine (C8),
// grounded in mechanism on pkg/routing/strategies/health_based.go's
// filter-then-decide shape and pkg/policy/engine/priority.go's
// priority-tier resolution among competing signals.
package consensus

import "vitacheck/engine/pkg/model"

// reliabilityWeights is the fixed, tunable per-origin vote weight (§4.8).
var reliabilityWeights = map[model.Origin]float64{
	model.OriginRxNormInteractions:     1.0,
	model.OriginLabelWarnings:          0.9,
	model.OriginPairAdverseEvents:      0.7,
	model.OriginSupplementInteractions: 0.6,
	model.OriginLiteratureAI:           0.5,
}

// highReliabilityThreshold is the weight at or above which a record's vote
// is treated as high-reliability.
const highReliabilityThreshold = 0.8

func isHighReliability(origin model.Origin) bool {
	return reliabilityWeights[origin] >= highReliabilityThreshold
}

// Decide runs the §4.8 algorithm over a pair's merged evidence records (at
// most one per origin) and returns the consensus severity.
//
//  1. An empty list returns unknown.
//  2. Weighted votes are tallied per severity class.
//  3. If the severe tally is positive:
//     a. any high-reliability record voting severe wins outright;
//     b. else if the combined severe weight is >= 1.5 and the
//        high-reliability records that voted agree with each other (or none
//        voted), severe holds — unless a high-reliability record voted a
//        non-severe, non-unknown severity and moderate's weight exceeds 80%
//        of severe's, in which case the result is demoted to moderate;
//     c. else any high-reliability record voting non-severe, non-unknown
//        demotes the result to moderate;
//     d. else moderate wins if it has any weight at all;
//     e. else no high-reliability record voted severe and the combined
//        severe weight stayed below 1.5 — a lone or low-reliability
//        severe vote must not drive the pair severe, so the result is
//        demoted to moderate.
//  4. Otherwise the severity class with the greatest weight among
//     {moderate, mild, none, unknown} wins, ties broken in that order.
func Decide(records []model.EvidenceRecord) model.Severity {
	if len(records) == 0 {
		return model.SeverityUnknown
	}

	tally := make(map[model.Severity]float64)
	for _, r := range records {
		tally[r.Severity] += reliabilityWeights[r.Origin]
	}

	severeWeight := tally[model.SeveritySevere]
	if severeWeight > 0 {
		return decideWithSevereTally(records, tally, severeWeight)
	}

	order := []model.Severity{model.SeverityModerate, model.SeverityMild, model.SeverityNone, model.SeverityUnknown}
	best := model.SeverityUnknown
	bestWeight := -1.0
	for _, sev := range order {
		if w := tally[sev]; w > bestWeight {
			bestWeight = w
			best = sev
		}
	}
	return best
}

func decideWithSevereTally(records []model.EvidenceRecord, tally map[model.Severity]float64, severeWeight float64) model.Severity {
	var (
		anyHighRelSevere           bool
		highRelNonSevereNonUnknown bool
		highRelVotes               = make(map[model.Severity]bool)
	)
	for _, r := range records {
		if !isHighReliability(r.Origin) {
			continue
		}
		switch r.Severity {
		case model.SeveritySevere:
			anyHighRelSevere = true
			highRelVotes[model.SeveritySevere] = true
		case model.SeverityUnknown:
			// Treated as an abstention, not a disagreement.
		default:
			highRelNonSevereNonUnknown = true
			highRelVotes[r.Severity] = true
		}
	}

	if anyHighRelSevere {
		return model.SeveritySevere // 3a
	}

	if severeWeight >= 1.5 && len(highRelVotes) <= 1 {
		moderateWeight := tally[model.SeverityModerate]
		if highRelNonSevereNonUnknown && moderateWeight > 0.8*severeWeight {
			return model.SeverityModerate
		}
		return model.SeveritySevere // 3b
	}

	if highRelNonSevereNonUnknown {
		return model.SeverityModerate // 3c
	}
	if tally[model.SeverityModerate] > 0 {
		return model.SeverityModerate // 3d
	}

	// No high-reliability record voted severe and the combined severe
	// weight didn't clear 1.5: a lone or low-reliability severe vote
	// (e.g. literature_ai alone) must not drive the consensus to severe
	// per the EvidenceRecord invariant in §3.
	return model.SeverityModerate
}
