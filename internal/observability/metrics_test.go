package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/x", "200", time.Millisecond)
	m.ObserveGeneration("itinerary", "fallback", "", time.Millisecond)
	m.ObserveLLMRequest("gpt", "200", time.Second, 1, 1)
	m.IncRateLimited("/api/ai")
	m.ApiInflightInc()
	m.ApiInflightDec()
}

func TestMetricsExposition(t *testing.T) {
	m := New()
	m.ObserveGeneration("itinerary", "fallback", "", 20*time.Millisecond)
	m.ObserveGeneration("itinerary", "live", "parse_error", time.Second)
	m.ObserveAPI("POST", "/api/ai/optimize-itinerary", "200", 10*time.Millisecond)

	if got := testutil.ToFloat64(m.generationRuns.WithLabelValues("itinerary", "fallback", "ok")); got != 1 {
		t.Fatalf("expected one ok fallback run, got %v", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`yanxue_generation_runs_total{kind="itinerary",mode="live",outcome="parse_error"} 1`,
		`yanxue_http_requests_total{method="POST",route="/api/ai/optimize-itinerary",status="200"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("exposition missing %q", want)
		}
	}
}
