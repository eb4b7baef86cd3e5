package providers

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"vitacheck/engine/pkg/httpclient"
)

// AdverseEventsResult is the raw FAERS-style adverse-event count shape.
type AdverseEventsResult struct {
	TotalEvents   int
	SeriousEvents int
	Outcomes      map[string]int
}

type adverseEventsResponse struct {
	Results []struct {
		Count int `json:"count"`
	} `json:"results"`
	Meta struct {
		Results struct {
			Total int `json:"total"`
		} `json:"results"`
	} `json:"meta"`
}

// PairAdverseEvents fetches adverse-event counts for the co-occurrence of
// two drugs/supplements.
func (a *Adapters) PairAdverseEvents(ctx context.Context, aName, bName string, aID, bID *string) (*AdverseEventsResult, error, bool, time.Duration) {
	return a.fetchAdverseEvents(ctx, fmt.Sprintf("%s+AND+%s", url.QueryEscape(aName), url.QueryEscape(bName)))
}

// SingleDrugAdverseEvents fetches adverse-event counts for a single item.
func (a *Adapters) SingleDrugAdverseEvents(ctx context.Context, name string, id *string) (*AdverseEventsResult, error, bool, time.Duration) {
	return a.fetchAdverseEvents(ctx, url.QueryEscape(name))
}

func (a *Adapters) fetchAdverseEvents(ctx context.Context, searchTerm string) (*AdverseEventsResult, error, bool, time.Duration) {
	start := time.Now()
	u := fmt.Sprintf("%s?search=patient.drug.medicinalproduct:%s&count=patient.reaction.reactionmeddrapt.exact", a.Endpoints.AdverseEventsBase, searchTerm)

	resp, err := a.HTTP.Do(ctx, httpclient.Request{Method: "GET", URL: u, Timeout: a.Timeouts.AdverseEvents})
	if err != nil {
		return nil, err, false, time.Since(start)
	}

	var body adverseEventsResponse
	if err := httpclient.DecodeJSON(resp, &body); err != nil {
		return nil, err, false, time.Since(start)
	}
	if len(body.Results) == 0 && body.Meta.Results.Total == 0 {
		return nil, nil, false, time.Since(start)
	}

	outcomes := make(map[string]int, len(body.Results))
	serious := 0
	total := body.Meta.Results.Total
	for i, r := range body.Results {
		outcomes[fmt.Sprintf("reaction_%d", i)] = r.Count
		serious += r.Count
	}

	return &AdverseEventsResult{TotalEvents: total, SeriousEvents: serious, Outcomes: outcomes}, nil, false, time.Since(start)
}

// ExposureResult holds the beneficiary-count denominator used to contextualize
// adverse-event counts. It is always approximate and is never fabricated
// when unknown.
type ExposureResult struct {
	Beneficiaries int
	Year          int
	SourceMeta    map[string]any
}

type exposureResponse struct {
	Beneficiaries int            `json:"beneficiaries"`
	Year          int            `json:"year"`
	SourceMeta    map[string]any `json:"sourceMeta"`
}

// Exposure fetches the beneficiary-count denominator for a single item.
func (a *Adapters) Exposure(ctx context.Context, canonicalName string) (*ExposureResult, error, bool, time.Duration) {
	start := time.Now()
	u := fmt.Sprintf("%s?name=%s", a.Endpoints.ExposureBase, url.QueryEscape(canonicalName))

	resp, err := a.HTTP.Do(ctx, httpclient.Request{Method: "GET", URL: u, Timeout: a.Timeouts.Exposure})
	if err != nil {
		return nil, err, false, time.Since(start)
	}

	var body exposureResponse
	if err := httpclient.DecodeJSON(resp, &body); err != nil {
		return nil, err, false, time.Since(start)
	}
	if body.Beneficiaries == 0 {
		return nil, nil, false, time.Since(start)
	}
	return &ExposureResult{Beneficiaries: body.Beneficiaries, Year: body.Year, SourceMeta: body.SourceMeta}, nil, false, time.Since(start)
}
