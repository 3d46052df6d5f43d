package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCollectorRecordsHTTPMetrics(t *testing.T) {
	collector, err := NewCollector()
	if err != nil {
		t.Fatalf("NewCollector returned error: %v", err)
	}

	handlerInvoked := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerInvoked = true
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("ok"))
	})

	instrumented := collector.InstrumentHandler(handler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rr := httptest.NewRecorder()

	instrumented.ServeHTTP(rr, req)

	if !handlerInvoked {
		t.Fatal("expected handler to be invoked")
	}

	if rr.Code != http.StatusAccepted {
		t.Fatalf("unexpected status code: %d", rr.Code)
	}

	body := scrape(t, collector)
	if !strings.Contains(body, `reeltodo_http_requests_total{method="GET",path="/test",status="202"} 1`) {
		t.Fatalf("requests_total metric not recorded, body=%q", body)
	}

	if !strings.Contains(body, `reeltodo_http_request_duration_seconds_count{method="GET",path="/test",status="202"} 1`) {
		t.Fatalf("request_duration_seconds_count metric not recorded, body=%q", body)
	}
}

func TestCollectorRecordsPipelineMetrics(t *testing.T) {
	collector, err := NewCollector()
	if err != nil {
		t.Fatalf("NewCollector returned error: %v", err)
	}

	collector.DedupHit("exact")
	collector.GateDecision(true)
	collector.GateDecision(false)
	collector.Rejection("NO_CONTENT")
	collector.StageFailure("analyzer")

	body := scrape(t, collector)
	for _, want := range []string{
		`reeltodo_pipeline_dedup_hits_total{kind="exact"} 1`,
		`reeltodo_pipeline_ai_gate_decisions_total{decision="invoke"} 1`,
		`reeltodo_pipeline_ai_gate_decisions_total{decision="skip"} 1`,
		`reeltodo_pipeline_rejections_total{code="NO_CONTENT"} 1`,
		`reeltodo_pipeline_stage_failures_total{stage="analyzer"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected metric %q in body=%q", want, body)
		}
	}
}

func TestCollectorNilSafe(t *testing.T) {
	var collector *Collector
	collector.DedupHit("exact")
	collector.GateDecision(true)
	collector.Rejection("NO_CONTENT")
	collector.StageFailure("scrape")
}

func scrape(t *testing.T, collector *Collector) string {
	t.Helper()
	rr := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected metrics handler to return 200, got %d", rr.Code)
	}
	return rr.Body.String()
}
