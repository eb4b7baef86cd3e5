package providers

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"vitacheck/engine/pkg/httpclient"
)

// LabelResult is the accepted shape of an FDA-style label lookup, after the
// post-filter has removed cross-class confusions.
type LabelResult struct {
	Warnings    []string
	ProductName string
	Identifier  string
}

type labelSearchResponse struct {
	Results []labelRecord `json:"results"`
}

type labelRecord struct {
	ID                  string   `json:"set_id"`
	OpenFDA             openFDA  `json:"openfda"`
	Warnings            []string `json:"warnings"`
	WarningsAndCautions []string `json:"warnings_and_cautions"`
}

type openFDA struct {
	GenericName   []string `json:"generic_name"`
	BrandName     []string `json:"brand_name"`
	SubstanceName []string `json:"substance_name"`
}

// LabelWarnings runs a tiered query strategy: exact identifier match, exact
// generic-name phrase, exact brand-name phrase, then an exact substance-name
// phrase. Every tier's candidate passes the same strict post-filter; no
// broad or unfielded query is issued. Each query is retried up to
// LabelRetryPolicy.
func (a *Adapters) LabelWarnings(ctx context.Context, canonicalName string, identifier string) (*LabelResult, error, bool, time.Duration) {
	start := time.Now()

	queries := a.labelQueries(canonicalName, identifier)
	for _, q := range queries {
		record, err := a.fetchLabel(ctx, q)
		if err != nil {
			return nil, err, false, time.Since(start)
		}
		if record == nil {
			continue
		}
		if !a.acceptsLabel(canonicalName, *record) {
			continue
		}
		warnings := a.filterWarnings(canonicalName, *record)
		if len(warnings) == 0 {
			return &LabelResult{ProductName: primaryName(*record), Identifier: record.ID}, nil, false, time.Since(start)
		}
		return &LabelResult{Warnings: warnings, ProductName: primaryName(*record), Identifier: record.ID}, nil, false, time.Since(start)
	}
	return nil, nil, false, time.Since(start)
}

func (a *Adapters) labelQueries(canonicalName, identifier string) []string {
	var qs []string
	if identifier != "" {
		qs = append(qs, fmt.Sprintf("set_id:%q", identifier))
	}
	qs = append(qs,
		fmt.Sprintf("openfda.generic_name:%q", canonicalName),
		fmt.Sprintf("openfda.brand_name:%q", canonicalName),
		fmt.Sprintf("openfda.substance_name:%q", canonicalName),
	)
	return qs
}

func (a *Adapters) fetchLabel(ctx context.Context, query string) (*labelRecord, error) {
	u := fmt.Sprintf("%s?search=%s&limit=1", a.Endpoints.LabelBase, url.QueryEscape(query))
	resp, err := a.HTTP.DoWithRetry(ctx, httpclient.Request{Method: "GET", URL: u, Timeout: a.Timeouts.LabelWarnings}, LabelRetryPolicy)
	if err != nil {
		return nil, err
	}

	var body labelSearchResponse
	if err := httpclient.DecodeJSON(resp, &body); err != nil {
		return nil, err
	}
	if len(body.Results) == 0 {
		return nil, nil
	}
	return &body.Results[0], nil
}

// acceptsLabel implements the primary-ingredient check: the candidate's
// generic/substance/brand name must contain the queried canonical name, and
// the candidate must not list a different well-known drug of the same
// class as its primary ingredient.
func (a *Adapters) acceptsLabel(canonicalName string, record labelRecord) bool {
	names := append(append(append([]string{}, record.OpenFDA.GenericName...), record.OpenFDA.SubstanceName...), record.OpenFDA.BrandName...)

	matches := false
	for _, n := range names {
		if strings.Contains(strings.ToLower(n), canonicalName) {
			matches = true
			break
		}
	}
	if !matches {
		return false
	}

	if a.ClassPolicy == nil {
		return true
	}
	for _, n := range names {
		normalized := strings.ToLower(strings.TrimSpace(n))
		if a.ClassPolicy.IsDifferentClassMember(canonicalName, normalized) {
			return false
		}
	}
	return true
}

// filterWarnings drops any warning text that mentions a different member
// of the queried drug's class. If every warning is filtered, the returned
// slice is empty (the record's warnings are absent, per §4.4).
func (a *Adapters) filterWarnings(canonicalName string, record labelRecord) []string {
	all := append(append([]string{}, record.Warnings...), record.WarningsAndCautions...)
	if a.ClassPolicy == nil {
		return all
	}

	if _, ok := a.ClassPolicy.ClassOf(canonicalName); !ok {
		return all
	}

	kept := make([]string, 0, len(all))
	for _, w := range all {
		if a.mentionsOtherClassMember(strings.ToLower(w), canonicalName) {
			continue
		}
		kept = append(kept, w)
	}
	return kept
}

func (a *Adapters) mentionsOtherClassMember(warningLower, canonicalName string) bool {
	for _, word := range strings.Fields(warningLower) {
		word = strings.Trim(word, ".,;:()")
		if a.ClassPolicy.IsDifferentClassMember(canonicalName, word) {
			return true
		}
	}
	return false
}

func primaryName(record labelRecord) string {
	if len(record.OpenFDA.BrandName) > 0 {
		return record.OpenFDA.BrandName[0]
	}
	if len(record.OpenFDA.GenericName) > 0 {
		return record.OpenFDA.GenericName[0]
	}
	return ""
}
