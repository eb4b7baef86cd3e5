package orchestrator

import (
	"vitacheck/engine/pkg/confidence"
	"vitacheck/engine/pkg/consensus"
	"vitacheck/engine/pkg/merge"
	"vitacheck/engine/pkg/model"
	"vitacheck/engine/pkg/normalize"
)

// runTriplePhase derives each triple's report from the union of its three
// constituent pairs' already-merged source lists, re-merging and re-running
// consensus and confidence (§4.10 step 5). No upstream calls are made here.
//
// A constituent pair's own report doesn't carry forward whether a primary
// provider ran without error, so that fact is inferred from the report
// itself: severity other than unknown, or confidence above zero.
// Confidence above zero only arises when a primary provider completed
// successfully (confidence's guardrail forces 0 whenever none did), but
// severity does not: a pair whose only record is a literature_ai one, with
// no primary run, has a non-unknown severity and confidence 0, and is
// counted here as if a primary had run. This is a judgment call on an
// otherwise underspecified cross-phase signal, not a literal carry-through
// of a field the pair phase exposes.
func runTriplePhase(triples []normalize.Triple, outcomes map[string]pairOutcome) []model.TripleReport {
	reports := make([]model.TripleReport, 0, len(triples))

	for _, tr := range triples {
		var union []model.EvidenceRecord
		primaryRan := false
		primaryCount := 0

		for _, p := range tr.Pairs() {
			out, ok := outcomes[p.Key()]
			if !ok {
				continue
			}
			union = append(union, out.Merged...)
			if inferPrimaryRan(out.Report) {
				primaryRan = true
				primaryCount++
			}
		}

		merged := merge.ByOrigin(union)
		severity := consensus.Decide(merged)
		if len(merged) == 0 && primaryRan && severity == model.SeverityUnknown {
			severity = model.SeverityNone
		}

		conf := confidence.AggregatePair(confidence.PairInputs{
			Records:                merged,
			PrimaryRanSuccessfully: primaryRan,
			PrimarySuccessCount:    primaryCount,
		})

		reports = append(reports, model.TripleReport{
			AOriginal:  tr.A.Original,
			BOriginal:  tr.B.Original,
			COriginal:  tr.C.Original,
			Severity:   severity,
			Confidence: conf,
			Sources:    merged,
			Summary:    summarize(merged, primaryRan),
		})
	}

	return reports
}

func inferPrimaryRan(r model.PairReport) bool {
	return r.Severity != model.SeverityUnknown || r.Confidence > 0
}
