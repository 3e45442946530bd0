package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCounter(t *testing.T) {
	r := New()
	c := r.Counter("claims_queries_total", "Total queries")
	c.Inc()
	c.Add(2)
	if c.Value() != 3 {
		t.Fatalf("expected 3, got %d", c.Value())
	}
	// Same name returns the same counter.
	if r.Counter("claims_queries_total", "") != c {
		t.Fatal("expected identical counter instance")
	}
}

func TestGauge(t *testing.T) {
	r := New()
	g := r.Gauge("claims_loaded", "Loaded claims")
	g.Set(10)
	g.Inc()
	g.Dec()
	if g.Value() != 10 {
		t.Fatalf("expected 10, got %d", g.Value())
	}
}

func TestWithLabels(t *testing.T) {
	got := WithLabels("claims_queries_total", "intent", "status_count")
	want := `claims_queries_total{intent="status_count"}`
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
	// Odd kv count is ignored.
	if WithLabels("x", "only") != "x" {
		t.Fatal("expected bare name on odd kv count")
	}
}

func TestRenderCounterWithLabels(t *testing.T) {
	r := New()
	r.Counter(WithLabels("claims_queries_total", "intent", "semantic_search"), "Total queries").Inc()
	r.Counter(WithLabels("claims_queries_total", "intent", "status_count"), "Total queries").Add(2)

	out := r.Render()
	if !strings.Contains(out, "# TYPE claims_queries_total counter") {
		t.Fatalf("missing TYPE line:\n%s", out)
	}
	if !strings.Contains(out, `claims_queries_total{intent="semantic_search"} 1`) {
		t.Fatalf("missing labeled line:\n%s", out)
	}
	if !strings.Contains(out, `claims_queries_total{intent="status_count"} 2`) {
		t.Fatalf("missing labeled line:\n%s", out)
	}
}

func TestHistogramRender(t *testing.T) {
	r := New()
	h := r.Histogram("claims_query_duration_seconds", "Query latency", []float64{0.1, 1, 10})
	h.Observe(0.05)
	h.Observe(5)

	out := r.Render()
	if !strings.Contains(out, `claims_query_duration_seconds_bucket{le="0.1"} 1`) {
		t.Fatalf("bad bucket render:\n%s", out)
	}
	if !strings.Contains(out, `claims_query_duration_seconds_bucket{le="+Inf"} 2`) {
		t.Fatalf("bad +Inf bucket:\n%s", out)
	}
	if !strings.Contains(out, "claims_query_duration_seconds_count 2") {
		t.Fatalf("bad count:\n%s", out)
	}
}

func TestHandler(t *testing.T) {
	r := New()
	r.Counter("c_total", "c").Inc()
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 200 {
		t.Fatalf("status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "c_total 1") {
		t.Fatalf("body: %s", rec.Body.String())
	}
}
