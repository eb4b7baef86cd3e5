package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"vitacheck/engine/pkg/cache"
	"vitacheck/engine/pkg/classpolicy"
	"vitacheck/engine/pkg/config"
	"vitacheck/engine/pkg/httpclient"
	"vitacheck/engine/pkg/orchestrator"
	"vitacheck/engine/pkg/providers"
)

func newTestServer(t *testing.T) *Server {
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
	upstream := httptest.NewServer(mux)
	t.Cleanup(upstream.Close)

	db, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open test cache db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	adapters := &providers.Adapters{
		HTTP:     httpclient.New(),
		Timeouts: providers.DefaultTimeouts(),
		Endpoints: providers.Endpoints{
			RxNormBase:        upstream.URL + "/rxnorm",
			LabelBase:         upstream.URL + "/label",
			AdverseEventsBase: upstream.URL + "/events",
			SupplementBase:    upstream.URL + "/supplement",
			LiteratureAIBase:  upstream.URL + "/literature",
			ExposureBase:      upstream.URL + "/exposure",
		},
		ClassPolicy: classpolicy.New(classpolicy.DefaultDoc()),
	}

	orch := orchestrator.New(adapters, cache.NewItemStore(db), cache.NewPairStore(db, "v1"), cache.NewExposureStore(db), "v1")

	return NewServer(&config.ServerConfig{
		ListenAddress:   "127.0.0.1:0",
		ReadTimeout:     config.DefaultReadTimeout,
		WriteTimeout:    config.DefaultWriteTimeout,
		IdleTimeout:     config.DefaultIdleTimeout,
		ShutdownTimeout: config.DefaultShutdownTimeout,
	}, orch, db, nil)
}

func TestHandleCheckReturnsReport(t *testing.T) {
	s := newTestServer(t)
	body, _ := json.Marshal(orchestrator.Request{Items: []orchestrator.RequestItem{{Value: "ibuprofen"}}})

	req := httptest.NewRequest(http.MethodPost, "/v1/check", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp orchestrator.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Results.Singles) != 1 {
		t.Errorf("expected one single report, got %d", len(resp.Results.Singles))
	}
}

func TestHandleCheckRejectsMalformedBody(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/check", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandleHealthReturnsOK(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHandleReadyReturnsOKWhenCacheReachable(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}
