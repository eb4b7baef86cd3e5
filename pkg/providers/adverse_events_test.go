package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPairAdverseEventsLooksAndFindsNothing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[],"meta":{"results":{"total":0}}}`))
	}))
	defer srv.Close()

	a := &Adapters{HTTP: newTestAdapters("").HTTP, Timeouts: DefaultTimeouts(), Endpoints: Endpoints{AdverseEventsBase: srv.URL}}
	result, err, _, _ := a.PairAdverseEvents(context.Background(), "ibuprofen", "warfarin", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != nil {
		t.Fatalf("expected nil result for zero events, got %v", result)
	}
}

func TestPairAdverseEventsFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[{"count":12}],"meta":{"results":{"total":42}}}`))
	}))
	defer srv.Close()

	a := &Adapters{HTTP: newTestAdapters("").HTTP, Timeouts: DefaultTimeouts(), Endpoints: Endpoints{AdverseEventsBase: srv.URL}}
	result, err, _, _ := a.PairAdverseEvents(context.Background(), "ibuprofen", "warfarin", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result == nil || result.TotalEvents != 42 {
		t.Fatalf("expected total events 42, got %v", result)
	}
}

func TestExposureNeverFabricatesZeroBeneficiaries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"beneficiaries":0}`))
	}))
	defer srv.Close()

	a := &Adapters{HTTP: newTestAdapters("").HTTP, Timeouts: DefaultTimeouts(), Endpoints: Endpoints{ExposureBase: srv.URL}}
	result, err, _, _ := a.Exposure(context.Background(), "ibuprofen")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != nil {
		t.Fatalf("expected nil result when beneficiaries unknown, got %v", result)
	}
}

func TestExposureFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"beneficiaries":1000,"year":2024}`))
	}))
	defer srv.Close()

	a := &Adapters{HTTP: newTestAdapters("").HTTP, Timeouts: DefaultTimeouts(), Endpoints: Endpoints{ExposureBase: srv.URL}}
	result, err, _, _ := a.Exposure(context.Background(), "ibuprofen")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result == nil || result.Beneficiaries != 1000 {
		t.Fatalf("expected 1000 beneficiaries, got %v", result)
	}
}
