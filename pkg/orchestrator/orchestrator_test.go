package orchestrator

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"vitacheck/engine/pkg/cache"
	"vitacheck/engine/pkg/classpolicy"
	"vitacheck/engine/pkg/httpclient"
	"vitacheck/engine/pkg/model"
	"vitacheck/engine/pkg/providers"
)

func newTestOrchestrator(t *testing.T, srv *httptest.Server) *Orchestrator {
	t.Helper()
	db, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open test cache db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	adapters := &providers.Adapters{
		HTTP:     httpclient.New(),
		Timeouts: providers.DefaultTimeouts(),
		Endpoints: providers.Endpoints{
			RxNormBase:        srv.URL + "/rxnorm",
			LabelBase:         srv.URL + "/label",
			AdverseEventsBase: srv.URL + "/events",
			SupplementBase:    srv.URL + "/supplement",
			LiteratureAIBase:  srv.URL + "/literature",
			ExposureBase:      srv.URL + "/exposure",
		},
		ClassPolicy: classpolicy.New(classpolicy.DefaultDoc()),
	}

	return New(adapters, cache.NewItemStore(db), cache.NewPairStore(db, "v1"), cache.NewExposureStore(db), "v1")
}

// emptyResultsServer always reports "looked, found nothing" for every
// provider and never matches an identifier lookup. It models a request with
// no upstream evidence at all, useful for the boundary-count tests where the
// exact severity/confidence numbers don't matter.
func emptyResultsServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/rxnorm/approximateTerm.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"idGroup":{}}`))
	})
	mux.HandleFunc("/rxnorm/interaction/interaction.json", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/label", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[]}`))
	})
	mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[],"meta":{"results":{"total":0}}}`))
	})
	return httptest.NewServer(mux)
}

func TestOneItemYieldsZeroPairsZeroTriplesOneSingle(t *testing.T) {
	srv := emptyResultsServer(t)
	defer srv.Close()

	o := newTestOrchestrator(t, srv)
	resp, err := o.Run(context.Background(), Request{Items: []RequestItem{{Value: "ibuprofen"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Results.Pairs) != 0 {
		t.Errorf("expected zero pairs, got %d", len(resp.Results.Pairs))
	}
	if len(resp.Results.Triples) != 0 {
		t.Errorf("expected zero triples, got %d", len(resp.Results.Triples))
	}
	if len(resp.Results.Singles) != 1 {
		t.Errorf("expected one single, got %d", len(resp.Results.Singles))
	}
}

func TestTwoItemsYieldsOnePairZeroTriplesTwoSingles(t *testing.T) {
	srv := emptyResultsServer(t)
	defer srv.Close()

	o := newTestOrchestrator(t, srv)
	resp, err := o.Run(context.Background(), Request{Items: []RequestItem{{Value: "ibuprofen"}, {Value: "warfarin"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Results.Pairs) != 1 {
		t.Errorf("expected one pair, got %d", len(resp.Results.Pairs))
	}
	if len(resp.Results.Triples) != 0 {
		t.Errorf("expected zero triples, got %d", len(resp.Results.Triples))
	}
	if len(resp.Results.Singles) != 2 {
		t.Errorf("expected two singles, got %d", len(resp.Results.Singles))
	}
}

// TestRxNormOnlySevere is spec scenario 1: only rxnorm_interactions produces
// a record, and it is severe.
func TestRxNormOnlySevere(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/rxnorm/approximateTerm.json", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("term") {
		case "warfarin":
			w.Write([]byte(`{"idGroup":{"rxnormId":["W1"]}}`))
		case "ibuprofen":
			w.Write([]byte(`{"idGroup":{"rxnormId":["I1"]}}`))
		default:
			w.Write([]byte(`{"idGroup":{}}`))
		}
	})
	mux.HandleFunc("/rxnorm/interaction/interaction.json", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("rxcui") == "I1" {
			fmt.Fprint(w, `{"interactionTypeGroup":[{"interactionType":[{"interactionPair":[
				{"description":"ibuprofen raises bleeding risk with warfarin (RXCUI W1)","severity":"severe"}
			]}]}]}`)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/label", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[]}`))
	})
	mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[],"meta":{"results":{"total":0}}}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	o := newTestOrchestrator(t, srv)
	resp, err := o.Run(context.Background(), Request{Items: []RequestItem{{Value: "warfarin"}, {Value: "ibuprofen"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Results.Pairs) != 1 {
		t.Fatalf("expected one pair, got %d", len(resp.Results.Pairs))
	}
	pair := resp.Results.Pairs[0]
	if pair.Severity != model.SeveritySevere {
		t.Errorf("expected severe, got %v", pair.Severity)
	}
	if pair.Confidence < 0.80 || pair.Confidence > 0.90 {
		t.Errorf("expected confidence near 0.85, got %v", pair.Confidence)
	}
	if len(pair.Sources) != 1 || pair.Sources[0].Origin != model.OriginRxNormInteractions {
		t.Errorf("expected a single rxnorm_interactions source, got %v", pair.Sources)
	}
}

// TestNormalizedEmptyYieldsNoneWithBaselineConfidence is spec scenario 2:
// primaries ran and found nothing, so the result is lifted from unknown to
// none with a count-based baseline confidence.
func TestNormalizedEmptyYieldsNoneWithBaselineConfidence(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/rxnorm/approximateTerm.json", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("term") {
		case "metformin":
			w.Write([]byte(`{"idGroup":{"rxnormId":["M1"]}}`))
		case "ibuprofen":
			w.Write([]byte(`{"idGroup":{"rxnormId":["I1"]}}`))
		default:
			w.Write([]byte(`{"idGroup":{}}`))
		}
	})
	mux.HandleFunc("/rxnorm/interaction/interaction.json", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/label", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[]}`))
	})
	mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[],"meta":{"results":{"total":0}}}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	o := newTestOrchestrator(t, srv)
	resp, err := o.Run(context.Background(), Request{Items: []RequestItem{{Value: "metformin"}, {Value: "ibuprofen"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pair := resp.Results.Pairs[0]
	if pair.Severity != model.SeverityNone {
		t.Errorf("expected none, got %v", pair.Severity)
	}
	if pair.Confidence < 0.30 || pair.Confidence > 0.70 {
		t.Errorf("expected baseline confidence in [0.30, 0.70], got %v", pair.Confidence)
	}
	if got := pair.Summary; got != "No significant interactions found." {
		t.Errorf("unexpected summary: %q", got)
	}
}

// TestRxNormAbsentPrimariesErrorYieldsLimitedEvidence is spec scenario 3:
// identifier lookup succeeds for only one item (so rxnorm_interactions is
// never attempted) and the adverse-events fetch fails outright, so no
// primary provider completes successfully.
func TestRxNormAbsentPrimariesErrorYieldsLimitedEvidence(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/rxnorm/approximateTerm.json", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("term") == "metformin" {
			w.Write([]byte(`{"idGroup":{"rxnormId":["M1"]}}`))
			return
		}
		w.Write([]byte(`{"idGroup":{}}`))
	})
	mux.HandleFunc("/label", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[]}`))
	})
	mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	o := newTestOrchestrator(t, srv)
	resp, err := o.Run(context.Background(), Request{Items: []RequestItem{{Value: "metformin"}, {Value: "unlistedcompound"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pair := resp.Results.Pairs[0]
	if pair.Severity != model.SeverityUnknown {
		t.Errorf("expected unknown, got %v", pair.Severity)
	}
	if pair.Confidence != 0 {
		t.Errorf("expected confidence 0, got %v", pair.Confidence)
	}
	if got := pair.Summary; got != "Limited evidence available." {
		t.Errorf("unexpected summary: %q", got)
	}
}

// TestForceRefreshBypassesItemAndPairCache exercises the §4.5 explicit
// refresh lifecycle end to end: a second request with forceRefresh=true
// must re-issue every provider call rather than reading the first
// request's cached entries.
func TestForceRefreshBypassesItemAndPairCache(t *testing.T) {
	var lookupCalls, eventCalls int
	mux := http.NewServeMux()
	mux.HandleFunc("/rxnorm/approximateTerm.json", func(w http.ResponseWriter, r *http.Request) {
		lookupCalls++
		w.Write([]byte(`{"idGroup":{}}`))
	})
	mux.HandleFunc("/rxnorm/interaction/interaction.json", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/label", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[]}`))
	})
	mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		// Only pair queries are counted: single-drug adverse-event fetches
		// share this endpoint but have no cache and run on every request.
		if strings.Contains(r.URL.RawQuery, "+AND+") {
			eventCalls++
		}
		w.Write([]byte(`{"results":[],"meta":{"results":{"total":0}}}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	o := newTestOrchestrator(t, srv)
	req := Request{Items: []RequestItem{{Value: "metformin"}, {Value: "ibuprofen"}}}

	if _, err := o.Run(context.Background(), req); err != nil {
		t.Fatalf("first run: %v", err)
	}
	firstLookupCalls, firstEventCalls := lookupCalls, eventCalls

	if _, err := o.Run(context.Background(), req); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if lookupCalls != firstLookupCalls || eventCalls != firstEventCalls {
		t.Errorf("expected cached second run to make no new provider calls, got lookups %d->%d events %d->%d",
			firstLookupCalls, lookupCalls, firstEventCalls, eventCalls)
	}

	req.Options.ForceRefresh = true
	if _, err := o.Run(context.Background(), req); err != nil {
		t.Fatalf("forced run: %v", err)
	}
	if lookupCalls == firstLookupCalls {
		t.Error("expected forceRefresh to re-issue rxnorm lookups")
	}
	if eventCalls == firstEventCalls {
		t.Error("expected forceRefresh to re-issue adverse-event calls")
	}
}
