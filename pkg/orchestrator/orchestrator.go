// Package orchestrator implements the per-request pipeline (C10): normalize,
// item phase, pair phase, single phase, triple phase, assembly. Grounded in
// mechanism on pkg/routing/router_impl.go's RouteRequest — a coordinator that
// checks a precondition, delegates to sub-components, and assembles their
// results — generalized here into a multi-stage fan-out/fan-in over two
// independent concurrency limiters.
package orchestrator

import (
	"context"
	"sync"
	"time"

	"vitacheck/engine/pkg/apperrors"
	"vitacheck/engine/pkg/cache"
	"vitacheck/engine/pkg/concurrency"
	"vitacheck/engine/pkg/model"
	"vitacheck/engine/pkg/normalize"
	"vitacheck/engine/pkg/providers"
	"vitacheck/engine/pkg/telemetry/metrics"
	"vitacheck/engine/pkg/usagelog"
)

// RequestItem is one entry in an incoming check request.
type RequestItem struct {
	Value   string `json:"value"`
	Display string `json:"display,omitempty"`
	Type    string `json:"type,omitempty"`
}

// Options toggles optional providers and cache behavior (§6).
type Options struct {
	IncludeAI    bool `json:"includeAi,omitempty"`
	IncludeCMS   bool `json:"includeCms,omitempty"`
	Debug        bool `json:"debug,omitempty"`
	ForceRefresh bool `json:"forceRefresh,omitempty"`
}

// Request is the decoded POST body for a check.
type Request struct {
	Items   []RequestItem `json:"items"`
	Options Options       `json:"options,omitempty"`
}

// Results bundles the three report lists.
type Results struct {
	Singles []model.SingleReport `json:"singles"`
	Pairs   []model.PairReport   `json:"pairs"`
	Triples []model.TripleReport `json:"triples"`
}

// Timing reports per-phase wall-clock duration in milliseconds.
type Timing struct {
	TotalMs            int64 `json:"totalMs"`
	LookupMs           int64 `json:"lookupMs"`
	PairProcessingMs   int64 `json:"pairProcessingMs"`
	TripleProcessingMs int64 `json:"tripleProcessingMs"`
}

// Meta carries calcVersion, cache counters, and timing for the response.
type Meta struct {
	CalcVersion string      `json:"calcVersion"`
	CacheStats  cache.Stats `json:"cacheStats"`
	Timing      Timing      `json:"timing"`
}

// ProviderTrace is one debug-mode provider observation, attributed to the
// normalized item or pairKey it was made for.
type ProviderTrace struct {
	Subject string `json:"subject"`
	providers.Status
}

// Debug is only populated when Options.Debug is set.
type Debug struct {
	ProviderStatuses []ProviderTrace  `json:"providerStatuses"`
	RxCUIResolutions map[string]string `json:"rxcuiResolutions,omitempty"`
}

// Response is the full assembled result of a check (§6).
type Response struct {
	Items   []model.NormalizedItemView `json:"items"`
	Results Results                    `json:"results"`
	Meta    Meta                       `json:"meta"`
	Debug   *Debug                     `json:"debug,omitempty"`
}

// Orchestrator bundles the provider adapters, cache stores, and the two
// independent concurrency limiters (upstream=6, pair=3) used per request.
type Orchestrator struct {
	Adapters    *providers.Adapters
	Items       *cache.ItemStore
	Pairs       *cache.PairStore
	Exposures   *cache.ExposureStore
	CalcVersion string

	// UsageLog is optional; when set, every completed request is appended
	// to the audit log (A6) off the request's critical path. A nil value
	// disables logging entirely rather than failing requests.
	UsageLog *usagelog.Recorder

	// Metrics is optional; when set, each completed request's cache stats
	// and decided severities are folded into the Prometheus collector (A3).
	// A nil value disables metrics entirely rather than failing requests.
	Metrics *metrics.Collector

	upstreamLimiter *concurrency.Limiter
	pairLimiter     *concurrency.Limiter
}

// New builds an Orchestrator with the spec-mandated limiter sizes.
func New(adapters *providers.Adapters, items *cache.ItemStore, pairs *cache.PairStore, exposures *cache.ExposureStore, calcVersion string) *Orchestrator {
	return &Orchestrator{
		Adapters:        adapters,
		Items:           items,
		Pairs:           pairs,
		Exposures:       exposures,
		CalcVersion:     calcVersion,
		upstreamLimiter: concurrency.New(6),
		pairLimiter:     concurrency.New(3),
	}
}

// itemState is what the pair/single/triple phases need about one normalized
// item, carried forward from the item phase without re-fetching.
type itemState struct {
	Item         normalize.Item
	RxCUI        *providers.RxCUI
	SupplementID *providers.SupplementID
	Label        *providers.LabelResult
	Exposure     *providers.ExposureResult
}

// pairOutcome is what the triple phase needs from a completed pair: its
// report plus the merged source list the report was derived from (the
// triple phase re-merges the union of three pairs' merged lists, per §4.10
// step 5, and makes no new upstream calls).
type pairOutcome struct {
	Report model.PairReport
	Merged []model.EvidenceRecord
}

// errCollector records the first item/pair cache-store failure seen across
// the concurrent phases. Per §7, such failures are surfaced to the caller as
// Internal after the in-memory response has been computed; exposure-cache
// and log-write failures are swallowed instead (ambient, non-essential
// state), matching the teacher's "best-effort auxiliary write" idiom.
type errCollector struct {
	mu  sync.Mutex
	err error
}

func (c *errCollector) add(err error) {
	if err == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err == nil {
		c.err = err
	}
}

func (c *errCollector) first() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// traceRecorder accumulates provider trace entries under a single mutex; it
// is a no-op sink when debug mode is off so phases never branch on it.
type traceRecorder struct {
	mu      sync.Mutex
	enabled bool
	entries []ProviderTrace
}

func newTraceRecorder(enabled bool) *traceRecorder {
	return &traceRecorder{enabled: enabled}
}

func (t *traceRecorder) add(subject string, status providers.Status) {
	if !t.enabled {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, ProviderTrace{Subject: subject, Status: status})
}

func safeErr(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// Run executes the full six-step pipeline from §4.10 for one request.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	values := make([]string, len(req.Items))
	for i, it := range req.Items {
		values[i] = it.Value
	}
	items, err := normalize.Items(values)
	if err != nil {
		return nil, err
	}
	for i, it := range req.Items {
		if it.Display != "" {
			items[i].Original = it.Display
		}
	}

	pairs := normalize.Pairs(items)
	triples := normalize.Triples(items)

	counters := &cache.Counters{}
	traces := newTraceRecorder(req.Options.Debug)
	cacheErrs := &errCollector{}

	lookupStart := time.Now()
	states := o.runItemPhase(ctx, items, req.Options, counters, traces, cacheErrs)
	lookupMs := time.Since(lookupStart).Milliseconds()

	statesByNormalized := make(map[string]*itemState, len(states))
	for _, s := range states {
		statesByNormalized[s.Item.Normalized] = s
	}

	pairStart := time.Now()
	pairReports, outcomes := o.runPairPhase(ctx, pairs, statesByNormalized, req.Options, counters, traces, cacheErrs)
	pairMs := time.Since(pairStart).Milliseconds()

	singles := o.runSinglePhase(ctx, items, statesByNormalized, traces)

	tripleStart := time.Now()
	tripleReports := runTriplePhase(triples, outcomes)
	tripleMs := time.Since(tripleStart).Milliseconds()

	if err := cacheErrs.first(); err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "cache store failure", err)
	}

	itemViews := make([]model.NormalizedItemView, len(items))
	for i, it := range items {
		itemViews[i] = model.NormalizedItemView{Normalized: it.Normalized, Original: it.Original}
	}

	resp := &Response{
		Items: itemViews,
		Results: Results{
			Singles: singles,
			Pairs:   pairReports,
			Triples: tripleReports,
		},
		Meta: Meta{
			CalcVersion: o.CalcVersion,
			CacheStats:  counters.Snapshot(),
			Timing: Timing{
				TotalMs:            time.Since(start).Milliseconds(),
				LookupMs:           lookupMs,
				PairProcessingMs:   pairMs,
				TripleProcessingMs: tripleMs,
			},
		},
	}

	if req.Options.Debug {
		resp.Debug = &Debug{
			ProviderStatuses: traces.entries,
			RxCUIResolutions: rxcuiResolutions(states),
		}
	}

	if o.UsageLog != nil {
		o.UsageLog.Record(usageLogEntry(items, resp))
	}

	if o.Metrics != nil {
		recordMetrics(o.Metrics, resp)
	}

	return resp, nil
}

// recordMetrics folds one request's cache stats and decided severities into
// the collector. Cache counters are request-scoped deltas (cache.Counters
// starts fresh per Run), so Observe adds them directly rather than computing
// a diff against a prior snapshot.
func recordMetrics(m *metrics.Collector, resp *Response) {
	stats := resp.Meta.CacheStats
	m.Cache().Observe("item", int64(stats.MedLookupHits), int64(stats.MedLookupMisses))
	m.Cache().Observe("pair", int64(stats.PairCacheHits), int64(stats.PairCacheMisses))
	m.Cache().Observe("exposure", int64(stats.CMSCacheHits), int64(stats.CMSCacheMisses))

	for _, p := range resp.Results.Pairs {
		m.Consensus().Record(string(p.Severity))
	}
	for _, s := range resp.Results.Singles {
		m.Consensus().Record(string(s.Severity))
	}
	for _, t := range resp.Results.Triples {
		m.Consensus().Record(string(t.Severity))
	}
}

func usageLogEntry(items []normalize.Item, resp *Response) usagelog.Entry {
	values := make([]string, len(items))
	for i, it := range items {
		values[i] = it.Normalized
	}

	maxSeverity := model.SeverityUnknown
	for _, p := range resp.Results.Pairs {
		maxSeverity = model.Max(maxSeverity, p.Severity)
	}
	for _, s := range resp.Results.Singles {
		maxSeverity = model.Max(maxSeverity, s.Severity)
	}
	for _, t := range resp.Results.Triples {
		maxSeverity = model.Max(maxSeverity, t.Severity)
	}

	return usagelog.Entry{
		Items: values,
		Summary: usagelog.Summary{
			SingleCount: len(resp.Results.Singles),
			PairCount:   len(resp.Results.Pairs),
			TripleCount: len(resp.Results.Triples),
			MaxSeverity: maxSeverity,
		},
		LatencyMs: resp.Meta.Timing.TotalMs,
		CacheHits: resp.Meta.CacheStats,
	}
}

func rxcuiResolutions(states []*itemState) map[string]string {
	out := make(map[string]string, len(states))
	for _, s := range states {
		if s.RxCUI != nil {
			out[s.Item.Normalized] = string(*s.RxCUI)
		}
	}
	return out
}

// summarize implements §7's three-way summary rule: a merged source's own
// summary when evidence exists, otherwise text distinguishing "looked and
// found nothing" from "couldn't look". When more than one source merged,
// the most severe source's summary is used as the most specific account.
func summarize(merged []model.EvidenceRecord, primaryRan bool) string {
	if len(merged) > 0 {
		best := merged[0]
		for _, r := range merged[1:] {
			if r.Severity.Rank() > best.Severity.Rank() {
				best = r
			}
		}
		return best.Summary
	}
	if primaryRan {
		return "No significant interactions found."
	}
	return "Limited evidence available."
}
