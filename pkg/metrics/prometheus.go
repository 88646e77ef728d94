package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// promMirror mirrors the collector's in-memory counters and histograms onto
// a dedicated Prometheus registry, exposed via GET /metrics for scraping.
// The in-memory collector above remains the source of truth read by the
// JSON dashboard endpoint; this is a secondary, ecosystem-standard view over
// the same events.
type promMirror struct {
	registry *prometheus.Registry

	decisionsTotal      *prometheus.CounterVec
	decisionLatency     prometheus.Histogram
	llmLatency          prometheus.Histogram
	llmFailuresTotal    prometheus.Counter
	dbLatency           prometheus.Histogram
	circuitTripsTotal   *prometheus.CounterVec
	errorsTotal         *prometheus.CounterVec
}

func newPromMirror() *promMirror {
	reg := prometheus.NewRegistry()

	m := &promMirror{
		registry: reg,
		decisionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orchestrator_decisions_total",
			Help: "Total routing decisions made, partitioned by module and depth.",
		}, []string{"module", "depth"}),
		decisionLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "orchestrator_decision_latency_ms",
			Help:    "End-to-end routing decision latency in milliseconds.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		llmLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "orchestrator_llm_latency_ms",
			Help:    "LLM scoring/reasoning call latency in milliseconds.",
			Buckets: prometheus.ExponentialBuckets(10, 2, 12),
		}),
		llmFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orchestrator_llm_failures_total",
			Help: "Total LLM calls that failed to produce a usable result.",
		}),
		dbLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "orchestrator_db_latency_ms",
			Help:    "Database round-trip latency in milliseconds.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
		}),
		circuitTripsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orchestrator_circuit_breaker_trips_total",
			Help: "Total circuit breaker state transitions into OPEN, by service.",
		}, []string{"service"}),
		errorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orchestrator_errors_total",
			Help: "Total errors recorded, by category.",
		}, []string{"type"}),
	}

	reg.MustRegister(
		m.decisionsTotal,
		m.decisionLatency,
		m.llmLatency,
		m.llmFailuresTotal,
		m.dbLatency,
		m.circuitTripsTotal,
		m.errorsTotal,
	)
	return m
}

func (m *promMirror) observeDecision(module, depth string, latencyMs float64) {
	m.decisionsTotal.WithLabelValues(module, depth).Inc()
	m.decisionLatency.Observe(latencyMs)
}

func (m *promMirror) observeLLM(latencyMs float64, success bool) {
	m.llmLatency.Observe(latencyMs)
	if !success {
		m.llmFailuresTotal.Inc()
	}
}

func (m *promMirror) observeDB(latencyMs float64) {
	m.dbLatency.Observe(latencyMs)
}

func (m *promMirror) incCircuitTrip(service string) {
	m.circuitTripsTotal.WithLabelValues(service).Inc()
}

func (m *promMirror) incError(errType string) {
	m.errorsTotal.WithLabelValues(errType).Inc()
}

func (m *promMirror) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
