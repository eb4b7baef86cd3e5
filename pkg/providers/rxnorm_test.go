package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"vitacheck/engine/pkg/apperrors"
	"vitacheck/engine/pkg/httpclient"
)

func newTestAdapters(rxnormBase string) *Adapters {
	return &Adapters{
		HTTP:      httpclient.New(),
		Timeouts:  DefaultTimeouts(),
		Endpoints: Endpoints{RxNormBase: rxnormBase},
	}
}

func TestRxNormLookupNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"idGroup":{}}`))
	}))
	defer srv.Close()

	a := newTestAdapters(srv.URL)
	id, err, _, _ := a.RxNormLookup(context.Background(), "ibuprofen")
	if id != nil {
		t.Fatal("expected nil RxCUI")
	}
	if !apperrors.Is(err, apperrors.NotFound) {
		t.Fatalf("expected NotFound kind, got %v", err)
	}
}

func TestRxNormLookupFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"idGroup":{"rxnormId":["5640"]}}`))
	}))
	defer srv.Close()

	a := newTestAdapters(srv.URL)
	id, err, _, _ := a.RxNormLookup(context.Background(), "ibuprofen")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == nil || *id != "5640" {
		t.Fatalf("expected RxCUI 5640, got %v", id)
	}
}

func TestRxNormInteractions404IsNormalizedNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	a := newTestAdapters(srv.URL)
	result, err, cached, _ := a.RxNormInteractions(context.Background(), "5640", "1191")
	if err != nil {
		t.Fatalf("expected 404 to be normalized to no error, got %v", err)
	}
	if result != nil {
		t.Fatalf("expected nil result, got %v", result)
	}
	if cached {
		t.Fatal("expected cached=false")
	}
}

func TestRxNormInteractionsFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"interactionTypeGroup":[{"interactionType":[{"interactionPair":[
			{"description":"interacts with RXCUI 1191","severity":"high"}
		]}]}]}`))
	}))
	defer srv.Close()

	a := newTestAdapters(srv.URL)
	result, err, _, _ := a.RxNormInteractions(context.Background(), "5640", "1191")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result == nil || result.SeverityLabel != "high" {
		t.Fatalf("expected matched interaction, got %v", result)
	}
}
