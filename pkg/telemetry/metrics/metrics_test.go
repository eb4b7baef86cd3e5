package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func newTestCollector(t *testing.T) *Collector {
	t.Helper()
	return NewCollector(DefaultConfig(), prometheus.NewRegistry())
}

func TestNewCollectorNilRegistryDoesNotPanic(t *testing.T) {
	c := NewCollector(DefaultConfig(), nil)
	if c.Registry() == nil {
		t.Fatal("expected a non-nil registry")
	}
}

func TestCacheMetricsRecordHitAndMiss(t *testing.T) {
	c := newTestCollector(t)
	c.Cache().RecordHit("item")
	c.Cache().RecordMiss("pair")

	body := scrape(t, c)
	if !strings.Contains(body, `vitacheck_engine_cache_hits_total{cache="item"} 1`) {
		t.Errorf("expected item cache hit recorded, got:\n%s", body)
	}
	if !strings.Contains(body, `vitacheck_engine_cache_misses_total{cache="pair"} 1`) {
		t.Errorf("expected pair cache miss recorded, got:\n%s", body)
	}
}

func TestCacheMetricsObserveSkipsZeroDeltas(t *testing.T) {
	c := newTestCollector(t)
	c.Cache().Observe("exposure", 0, 3)

	body := scrape(t, c)
	if strings.Contains(body, `cache_hits_total{cache="exposure"}`) {
		t.Errorf("did not expect a hits series for a zero-hit observation, got:\n%s", body)
	}
	if !strings.Contains(body, `vitacheck_engine_cache_misses_total{cache="exposure"} 3`) {
		t.Errorf("expected exposure misses observed as 3, got:\n%s", body)
	}
}

func TestProviderMetricsObserveRecordsRequestLatencyAndError(t *testing.T) {
	c := newTestCollector(t)
	c.Provider().Observe("rxnorm_interactions", 150, "")
	c.Provider().Observe("label_warnings", 5000, "TransportError")

	body := scrape(t, c)
	if !strings.Contains(body, `vitacheck_engine_provider_requests_total{provider="rxnorm_interactions"} 1`) {
		t.Errorf("expected rxnorm_interactions request counted, got:\n%s", body)
	}
	if !strings.Contains(body, `vitacheck_engine_provider_errors_total{error_kind="TransportError",provider="label_warnings"} 1`) {
		t.Errorf("expected label_warnings error counted, got:\n%s", body)
	}
	if strings.Contains(body, `provider_errors_total{error_kind="",provider="rxnorm_interactions"}`) {
		t.Errorf("did not expect an error series for a successful call, got:\n%s", body)
	}
}

func TestConsensusMetricsRecordBySeverity(t *testing.T) {
	c := newTestCollector(t)
	c.Consensus().Record("severe")
	c.Consensus().Record("severe")
	c.Consensus().Record("none")

	body := scrape(t, c)
	if !strings.Contains(body, `vitacheck_engine_consensus_outcomes_total{severity="severe"} 2`) {
		t.Errorf("expected 2 severe outcomes, got:\n%s", body)
	}
	if !strings.Contains(body, `vitacheck_engine_consensus_outcomes_total{severity="none"} 1`) {
		t.Errorf("expected 1 none outcome, got:\n%s", body)
	}
}

func TestHandlerServesPrometheusFormat(t *testing.T) {
	c := newTestCollector(t)
	c.Cache().RecordHit("item")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	c.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "cache_hits_total") {
		t.Errorf("expected scraped body to contain cache_hits_total, got:\n%s", rec.Body.String())
	}
}

func scrape(t *testing.T, c *Collector) string {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	c.Handler().ServeHTTP(rec, req)
	return rec.Body.String()
}
