package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"vitacheck/engine/pkg/apperrors"
	"vitacheck/engine/pkg/model"
)

func TestLiteratureAIMissingCredential(t *testing.T) {
	a := &Adapters{HTTP: newTestAdapters("").HTTP, Timeouts: DefaultTimeouts(), Endpoints: Endpoints{LiteratureAIBase: "http://unused"}}
	record, err, _, _ := a.LiteratureAI(context.Background(), "ibuprofen", "warfarin")
	if record != nil {
		t.Fatal("expected nil record")
	}
	if !apperrors.Is(err, apperrors.MissingCredential) {
		t.Fatalf("expected MissingCredential, got %v", err)
	}
}

func TestLiteratureAIReturnsStandardizedRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"severity":"major","confidence":1.4,"summary":"increased bleeding risk","citations":["pmid:123"]}`))
	}))
	defer srv.Close()

	a := &Adapters{
		HTTP:        newTestAdapters("").HTTP,
		Timeouts:    DefaultTimeouts(),
		Endpoints:   Endpoints{LiteratureAIBase: srv.URL},
		Credentials: Credentials{LiteratureAIAPIKey: "test-key"},
	}
	record, err, _, _ := a.LiteratureAI(context.Background(), "ibuprofen", "warfarin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record == nil {
		t.Fatal("expected a standardized record")
	}
	if record.Origin != model.OriginLiteratureAI {
		t.Errorf("expected origin literature_ai, got %v", record.Origin)
	}
	if record.Severity != model.SeveritySevere {
		t.Errorf("expected severity severe for token 'major', got %v", record.Severity)
	}
	if record.Confidence != 1.0 {
		t.Errorf("expected confidence clamped to 1.0, got %v", record.Confidence)
	}
}

func TestLiteratureAIEmptySeverityYieldsNoRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"severity":"","confidence":0}`))
	}))
	defer srv.Close()

	a := &Adapters{
		HTTP:        newTestAdapters("").HTTP,
		Timeouts:    DefaultTimeouts(),
		Endpoints:   Endpoints{LiteratureAIBase: srv.URL},
		Credentials: Credentials{LiteratureAIAPIKey: "test-key"},
	}
	record, err, _, _ := a.LiteratureAI(context.Background(), "ibuprofen", "warfarin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record != nil {
		t.Fatalf("expected nil record for empty severity, got %v", record)
	}
}
