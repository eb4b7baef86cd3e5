package orchestrator

import (
	"context"
	"sync"

	"vitacheck/engine/pkg/apperrors"
	"vitacheck/engine/pkg/cache"
	"vitacheck/engine/pkg/concurrency"
	"vitacheck/engine/pkg/confidence"
	"vitacheck/engine/pkg/consensus"
	"vitacheck/engine/pkg/merge"
	"vitacheck/engine/pkg/model"
	"vitacheck/engine/pkg/normalize"
	"vitacheck/engine/pkg/providers"
	"vitacheck/engine/pkg/standardize"
)

// runPairPhase submits one task per pair to the pair limiter (§4.10 step 3).
// It never begins before the item phase has populated itemState for every
// item, since Run calls it only after runItemPhase returns.
func (o *Orchestrator) runPairPhase(ctx context.Context, pairs []normalize.Pair, states map[string]*itemState, opts Options, counters *cache.Counters, traces *traceRecorder, cacheErrs *errCollector) ([]model.PairReport, map[string]pairOutcome) {
	tasks := make([]concurrency.Task[pairOutcome], len(pairs))
	for i, p := range pairs {
		p := p
		tasks[i] = func(ctx context.Context) (pairOutcome, error) {
			return o.fetchPair(ctx, p, states[p.A.Normalized], states[p.B.Normalized], opts, counters, traces, cacheErrs), nil
		}
	}

	results := concurrency.RunAll(ctx, o.pairLimiter, tasks)
	reports := make([]model.PairReport, len(results))
	outcomes := make(map[string]pairOutcome, len(results))
	for i, r := range results {
		reports[i] = r.Value.Report
		outcomes[pairs[i].Key()] = r.Value
	}
	return reports, outcomes
}

func (o *Orchestrator) fetchPair(ctx context.Context, pair normalize.Pair, a, b *itemState, opts Options, counters *cache.Counters, traces *traceRecorder, cacheErrs *errCollector) pairOutcome {
	key := pair.Key()

	cached, hit, err := o.Pairs.Get(ctx, key, opts.ForceRefresh)
	if err != nil {
		cacheErrs.add(apperrors.Wrap(apperrors.CacheFailure, "read pair cache", err))
	}
	counters.RecordPair(hit)
	if hit {
		for _, s := range cached.Sources {
			traces.add(key, providers.Status{Provider: string(s.Origin), Attempted: true, OK: true, Cached: true})
		}
		return pairOutcome{Report: *cached, Merged: cached.Sources}
	}

	var (
		mu         sync.Mutex
		wg         sync.WaitGroup
		records    []model.EvidenceRecord
		primaryRan int
	)
	addRecord := func(r model.EvidenceRecord) {
		mu.Lock()
		records = append(records, r)
		mu.Unlock()
	}
	markPrimaryRan := func() {
		mu.Lock()
		primaryRan++
		mu.Unlock()
	}

	if a.RxCUI != nil && b.RxCUI != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err, cachedFlag, elapsed := o.Adapters.RxNormInteractions(ctx, *a.RxCUI, *b.RxCUI)
			traces.add(key, providers.Status{Provider: "rxnorm_interactions", Attempted: true, OK: err == nil, ElapsedMs: elapsed.Milliseconds(), Cached: cachedFlag, Error: safeErr(err)})
			if err == nil {
				markPrimaryRan()
				if result != nil {
					addRecord(standardize.RxNormInteraction(result))
				}
			}
		}()
	} else {
		traces.add(key, providers.Status{Provider: "rxnorm_interactions", Attempted: false})
	}

	if a.SupplementID != nil && b.SupplementID != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			entries, err, cachedFlag, elapsed := o.Adapters.SupplementInteractions(ctx, a.Item.Normalized, b.Item.Normalized, a.SupplementID, b.SupplementID)
			traces.add(key, providers.Status{Provider: "supplement_interactions", Attempted: true, OK: err == nil, ElapsedMs: elapsed.Milliseconds(), Cached: cachedFlag, Error: safeErr(err)})
			if err == nil {
				markPrimaryRan()
				if len(entries) > 0 {
					addRecord(standardize.SupplementInteractions(entries))
				}
			}
		}()
	} else {
		traces.add(key, providers.Status{Provider: "supplement_interactions", Attempted: false})
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		result, err, cachedFlag, elapsed := o.Adapters.PairAdverseEvents(ctx, a.Item.Normalized, b.Item.Normalized, nil, nil)
		traces.add(key, providers.Status{Provider: "pair_adverse_events", Attempted: true, OK: err == nil, ElapsedMs: elapsed.Milliseconds(), Cached: cachedFlag, Error: safeErr(err)})
		if err == nil {
			markPrimaryRan()
			if result != nil {
				exposure, denom := pairExposure(a, b)
				addRecord(standardize.AdverseEvents(model.OriginPairAdverseEvents, result, exposure, denom))
			}
		}
	}()

	if opts.IncludeAI {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec, err, cachedFlag, elapsed := o.Adapters.LiteratureAI(ctx, a.Item.Normalized, b.Item.Normalized)
			traces.add(key, providers.Status{Provider: "literature_ai", Attempted: true, OK: err == nil, ElapsedMs: elapsed.Milliseconds(), Cached: cachedFlag, Error: safeErr(err)})
			if err == nil && rec != nil {
				addRecord(*rec)
			}
		}()
	} else {
		traces.add(key, providers.Status{Provider: "literature_ai", Attempted: false})
	}

	wg.Wait()

	merged := merge.ByOrigin(records)
	severity := consensus.Decide(merged)
	if len(merged) == 0 && primaryRan > 0 && severity == model.SeverityUnknown {
		severity = model.SeverityNone
	}

	conf := confidence.AggregatePair(confidence.PairInputs{
		Records:                merged,
		PrimaryRanSuccessfully: primaryRan > 0,
		PrimarySuccessCount:    primaryRan,
	})

	report := model.PairReport{
		AOriginal:  a.Item.Original,
		BOriginal:  b.Item.Original,
		Severity:   severity,
		Confidence: conf,
		Sources:    merged,
		Summary:    summarize(merged, primaryRan > 0),
	}

	if err := o.Pairs.Put(ctx, key, &report); err != nil {
		cacheErrs.add(apperrors.Wrap(apperrors.CacheFailure, "write pair cache", err))
	}

	return pairOutcome{Report: report, Merged: merged}
}

// pairExposure picks the denominator for a pair's adverse-event rate: the
// smaller of two known per-item exposures, or whichever single item's
// exposure is known, never a fabricated value (§4.9 "Denominator
// semantics").
func pairExposure(a, b *itemState) (*providers.ExposureResult, model.DenominatorMethod) {
	switch {
	case a.Exposure != nil && b.Exposure != nil:
		if a.Exposure.Beneficiaries <= b.Exposure.Beneficiaries {
			return a.Exposure, model.DenominatorMinOfPair
		}
		return b.Exposure, model.DenominatorMinOfPair
	case a.Exposure != nil:
		return a.Exposure, model.DenominatorSingleDrugA
	case b.Exposure != nil:
		return b.Exposure, model.DenominatorSingleDrugB
	default:
		return nil, ""
	}
}
