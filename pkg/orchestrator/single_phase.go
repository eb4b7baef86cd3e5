package orchestrator

import (
	"context"
	"sync"

	"vitacheck/engine/pkg/confidence"
	"vitacheck/engine/pkg/consensus"
	"vitacheck/engine/pkg/merge"
	"vitacheck/engine/pkg/model"
	"vitacheck/engine/pkg/normalize"
	"vitacheck/engine/pkg/providers"
	"vitacheck/engine/pkg/standardize"
)

// runSinglePhase builds one SingleReport per item (§4.10 step 4). The
// single-drug adverse-event fetch is non-blocking: its own failure only
// degrades that item's report, never the request, and items run outside
// either limiter since the fan-out is bounded by the item count itself
// (already bounded to normalize.MaxItems).
func (o *Orchestrator) runSinglePhase(ctx context.Context, items []normalize.Item, states map[string]*itemState, traces *traceRecorder) []model.SingleReport {
	singles := make([]model.SingleReport, len(items))
	var wg sync.WaitGroup
	for i, it := range items {
		i, it := i, it
		wg.Add(1)
		go func() {
			defer wg.Done()
			singles[i] = o.buildSingle(ctx, it, states[it.Normalized], traces)
		}()
	}
	wg.Wait()
	return singles
}

func (o *Orchestrator) buildSingle(ctx context.Context, item normalize.Item, st *itemState, traces *traceRecorder) model.SingleReport {
	var records []model.EvidenceRecord

	result, err, cached, elapsed := o.Adapters.SingleDrugAdverseEvents(ctx, item.Normalized, nil)
	traces.add(item.Normalized, providers.Status{Provider: "single_drug_adverse_events", Attempted: true, OK: err == nil, ElapsedMs: elapsed.Milliseconds(), Cached: cached, Error: safeErr(err)})
	ranOK := err == nil
	if ranOK && result != nil {
		var exposure *providers.ExposureResult
		var denom model.DenominatorMethod
		if st != nil && st.Exposure != nil {
			exposure = st.Exposure
			denom = model.DenominatorSingleDrugA
		}
		records = append(records, standardize.AdverseEvents(model.OriginSingleDrugAdverseEvents, result, exposure, denom))
	}

	if st != nil && st.Label != nil {
		records = append(records, standardize.LabelWarnings(st.Label))
	}

	merged := merge.ByOrigin(records)
	severity := consensus.Decide(merged)
	if len(merged) == 0 && ranOK && severity == model.SeverityUnknown {
		severity = model.SeverityNone
	}

	count := 0
	if ranOK {
		count = 1
	}
	conf := confidence.AggregatePair(confidence.PairInputs{
		Records:                merged,
		PrimaryRanSuccessfully: ranOK,
		PrimarySuccessCount:    count,
	})

	return model.SingleReport{
		Original:   item.Original,
		Severity:   severity,
		Confidence: conf,
		Sources:    merged,
		Summary:    summarize(merged, ranOK),
	}
}
