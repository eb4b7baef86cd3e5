package orchestrator

import (
	"context"
	"sync"
	"time"

	"vitacheck/engine/pkg/apperrors"
	"vitacheck/engine/pkg/cache"
	"vitacheck/engine/pkg/concurrency"
	"vitacheck/engine/pkg/normalize"
	"vitacheck/engine/pkg/providers"
)

// runItemPhase submits one task per normalized item to the upstream limiter
// (§4.10 step 2). Each task occupies a single limiter slot; the up-to-four
// provider calls a cache miss requires fan out as plain goroutines beneath
// that slot, since the limiter governs per-request admission, not a task's
// internal concurrency.
func (o *Orchestrator) runItemPhase(ctx context.Context, items []normalize.Item, opts Options, counters *cache.Counters, traces *traceRecorder, cacheErrs *errCollector) []*itemState {
	tasks := make([]concurrency.Task[*itemState], len(items))
	for i, it := range items {
		it := it
		tasks[i] = func(ctx context.Context) (*itemState, error) {
			return o.fetchItem(ctx, it, opts, counters, traces, cacheErrs), nil
		}
	}

	results := concurrency.RunAll(ctx, o.upstreamLimiter, tasks)
	states := make([]*itemState, len(results))
	for i, r := range results {
		if r.Value != nil {
			states[i] = r.Value
		} else {
			states[i] = &itemState{Item: items[i]}
		}
	}
	return states
}

func (o *Orchestrator) fetchItem(ctx context.Context, item normalize.Item, opts Options, counters *cache.Counters, traces *traceRecorder, cacheErrs *errCollector) *itemState {
	entry, miss, err := o.Items.Get(ctx, item.Normalized, opts.ForceRefresh)
	if err != nil {
		cacheErrs.add(err)
		entry = nil
		miss = cache.ItemMiss{RxCUI: true, Supplement: true, Label: true}
	}

	counters.RecordItem(!miss.Any())

	next := &cache.ItemEntry{Normalized: item.Normalized}
	if entry != nil {
		*next = *entry
	}

	var wg sync.WaitGroup

	if miss.RxCUI {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rxcui, err, cached, elapsed := o.Adapters.RxNormLookup(ctx, item.Normalized)
			traces.add(item.Normalized, providers.Status{Provider: "rxnorm_lookup", Attempted: true, OK: rxcui != nil, ElapsedMs: elapsed.Milliseconds(), Cached: cached, Error: safeErr(err)})
			switch {
			case rxcui != nil:
				next.RxCUI = rxcui
				next.RxCUINegativeAt = nil
			case err == nil:
				now := time.Now()
				next.RxCUI = nil
				next.RxCUINegativeAt = &now
			}
		}()
	} else {
		traces.add(item.Normalized, providers.Status{Provider: "rxnorm_lookup", Attempted: true, OK: next.RxCUI != nil, Cached: true})
	}

	if miss.Supplement {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err, cached, elapsed := o.Adapters.SupplementLookup(ctx, item.Normalized)
			traces.add(item.Normalized, providers.Status{Provider: "supplement_lookup", Attempted: true, OK: id != nil, ElapsedMs: elapsed.Milliseconds(), Cached: cached, Error: safeErr(err)})
			switch {
			case id != nil:
				next.SupplementID = id
				next.SupplementNegativeAt = nil
			case err == nil:
				now := time.Now()
				next.SupplementID = nil
				next.SupplementNegativeAt = &now
			}
		}()
	} else {
		traces.add(item.Normalized, providers.Status{Provider: "supplement_lookup", Attempted: true, OK: next.SupplementID != nil, Cached: true})
	}

	if miss.Label {
		wg.Add(1)
		go func() {
			defer wg.Done()
			identifier := ""
			if entry != nil && entry.Label != nil {
				identifier = entry.Label.Identifier
			}
			label, err, cached, elapsed := o.Adapters.LabelWarnings(ctx, item.Normalized, identifier)
			traces.add(item.Normalized, providers.Status{Provider: "label_warnings", Attempted: true, OK: label != nil, ElapsedMs: elapsed.Milliseconds(), Cached: cached, Error: safeErr(err)})
			if err == nil {
				next.Label = label
				now := time.Now()
				next.LabelFetchedAt = &now
			}
		}()
	} else {
		traces.add(item.Normalized, providers.Status{Provider: "label_warnings", Attempted: true, OK: next.Label != nil, Cached: true})
	}

	var exposure *providers.ExposureResult
	if opts.IncludeCMS {
		wg.Add(1)
		go func() {
			defer wg.Done()
			exposure = o.fetchExposure(ctx, item, opts, counters, traces)
		}()
	}

	wg.Wait()

	if miss.Any() {
		next.UpdatedAt = time.Now()
		if err := o.Items.Put(ctx, next); err != nil {
			cacheErrs.add(apperrors.Wrap(apperrors.CacheFailure, "write item cache", err))
		}
	}

	state := &itemState{
		Item:         item,
		RxCUI:        next.RxCUI,
		SupplementID: next.SupplementID,
		Label:        next.Label,
		Exposure:     exposure,
	}

	return state
}

func (o *Orchestrator) fetchExposure(ctx context.Context, item normalize.Item, opts Options, counters *cache.Counters, traces *traceRecorder) *providers.ExposureResult {
	cached, hit, err := o.Exposures.Get(ctx, item.Normalized, opts.ForceRefresh)
	counters.RecordExposure(hit)
	if err == nil && hit {
		traces.add(item.Normalized, providers.Status{Provider: "exposure", Attempted: true, OK: cached != nil, Cached: true})
		return cached
	}

	result, err, cachedFlag, elapsed := o.Adapters.Exposure(ctx, item.Normalized)
	traces.add(item.Normalized, providers.Status{Provider: "exposure", Attempted: true, OK: result != nil, ElapsedMs: elapsed.Milliseconds(), Cached: cachedFlag, Error: safeErr(err)})
	if err == nil && result != nil {
		// Exposure writes are best-effort; a failure here does not block the
		// response or count as a cache-store failure (§7 ambient swallow).
		_ = o.Exposures.Put(ctx, item.Normalized, result)
	}
	return result
}
