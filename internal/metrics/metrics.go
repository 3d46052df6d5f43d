package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "reeltodo"

// Collector exposes Prometheus metrics for inbound HTTP requests and for
// pipeline stage outcomes.
type Collector struct {
	registry        *prometheus.Registry
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	dedupHits     *prometheus.CounterVec
	gateDecisions *prometheus.CounterVec
	rejections    *prometheus.CounterVec
	stageFailures *prometheus.CounterVec
}

// NewCollector constructs a collector with default histograms/counters.
func NewCollector() (*Collector, error) {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Latency distribution for inbound HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of inbound HTTP requests.",
	}, []string{"method", "path", "status"})

	dedupHits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "dedup_hits_total",
		Help:      "Ingestions resolved to an existing activity instead of a new row.",
	}, []string{"kind"}) // exact | fuzzy | race

	gateDecisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "ai_gate_decisions_total",
		Help:      "Decisions of the AI extraction gate.",
	}, []string{"decision"}) // invoke | skip

	rejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "rejections_total",
		Help:      "Content-level rejections by error code.",
	}, []string{"code"})

	stageFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "stage_failures_total",
		Help:      "Silently absorbed extraction-stage failures.",
	}, []string{"stage"})

	for _, c := range []prometheus.Collector{requestDuration, requestTotal, dedupHits, gateDecisions, rejections, stageFailures} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	return &Collector{
		registry:        registry,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		dedupHits:       dedupHits,
		gateDecisions:   gateDecisions,
		rejections:      rejections,
		stageFailures:   stageFailures,
	}, nil
}

// Handler returns an HTTP handler for exposing Prometheus metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler to record HTTP metrics.
func (c *Collector) InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.status)
		path := r.URL.Path

		c.requestTotal.WithLabelValues(r.Method, path, status).Inc()
		c.requestDuration.WithLabelValues(r.Method, path, status).Observe(duration)
	})
}

// DedupHit records an ingestion resolved through deduplication.
func (c *Collector) DedupHit(kind string) {
	if c == nil {
		return
	}
	c.dedupHits.WithLabelValues(kind).Inc()
}

// GateDecision records whether the AI extractor ran.
func (c *Collector) GateDecision(invoked bool) {
	if c == nil {
		return
	}
	decision := "skip"
	if invoked {
		decision = "invoke"
	}
	c.gateDecisions.WithLabelValues(decision).Inc()
}

// Rejection records a content-level rejection code.
func (c *Collector) Rejection(code string) {
	if c == nil {
		return
	}
	c.rejections.WithLabelValues(code).Inc()
}

// StageFailure records a silently absorbed extraction failure.
func (c *Collector) StageFailure(stage string) {
	if c == nil {
		return
	}
	c.stageFailures.WithLabelValues(stage).Inc()
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
