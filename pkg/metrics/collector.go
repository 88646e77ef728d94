package metrics

import (
	"net/http"
	"sync"
	"time"
)

// RecentDecision is a privacy-truncated summary of a single routing decision,
// kept for the dashboard's "recent activity" view.
type RecentDecision struct {
	UserID     string    `json:"user_id"`
	Module     string    `json:"module"`
	Depth      string    `json:"depth"`
	LatencyMs  float64   `json:"latency_ms"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
}

// Collector is the central in-memory metrics store for the orchestrator.
// Every exported method is safe for concurrent use.
type Collector struct {
	startTime time.Time

	DecisionsTotal      *Counter
	DecisionsByDepth    *Counter
	LLMFailures         *Counter
	CircuitBreakerTrips *Counter
	HealthChecks        *Counter
	FeedbackEvents      *Counter
	ErrorsTotal         *Counter

	DecisionLatency *Histogram
	LLMLatency      *Histogram
	DBLatency       *Histogram

	mu            sync.Mutex
	activeUsers   map[string]struct{}
	recentWindow  []RecentDecision
	recentNext    int
	recentFull    bool
	recentCap     int

	prom *promMirror
}

// NewCollector builds a Collector with the given histogram buffer size. A
// zero bufferSize falls back to a 1000-sample default.
func NewCollector(bufferSize int) *Collector {
	if bufferSize <= 0 {
		bufferSize = 1000
	}
	return &Collector{
		startTime: time.Now(),

		DecisionsTotal:      NewCounter("decisions_total"),
		DecisionsByDepth:    NewCounter("decisions_by_depth"),
		LLMFailures:         NewCounter("llm_failures_total"),
		CircuitBreakerTrips: NewCounter("circuit_breaker_trips"),
		HealthChecks:        NewCounter("health_checks"),
		FeedbackEvents:      NewCounter("feedback_events_total"),
		ErrorsTotal:         NewCounter("errors_total"),

		DecisionLatency: NewHistogram("decision_latency_ms", bufferSize),
		LLMLatency:      NewHistogram("llm_latency_ms", bufferSize),
		DBLatency:       NewHistogram("db_latency_ms", bufferSize),

		activeUsers:  make(map[string]struct{}),
		recentWindow: make([]RecentDecision, 50),
		recentCap:    50,

		prom: newPromMirror(),
	}
}

// RecordDecision records a completed routing decision.
func (c *Collector) RecordDecision(userID, module, depth string, latencyMs, confidence float64) {
	c.DecisionsTotal.Inc(module, 1)
	c.DecisionsByDepth.Inc(depth, 1)
	c.DecisionLatency.Observe(latencyMs)

	c.mu.Lock()
	c.activeUsers[userID] = struct{}{}
	c.recentWindow[c.recentNext] = RecentDecision{
		UserID:     truncateUserID(userID),
		Module:     module,
		Depth:      depth,
		LatencyMs:  round3(latencyMs),
		Confidence: round3(confidence),
		Timestamp:  time.Now().UTC(),
	}
	c.recentNext = (c.recentNext + 1) % c.recentCap
	if c.recentNext == 0 {
		c.recentFull = true
	}
	c.mu.Unlock()

	c.prom.observeDecision(module, depth, latencyMs)
}

// RecordLLMCall records an LLM scoring/reasoning call outcome.
func (c *Collector) RecordLLMCall(latencyMs float64, success bool) {
	c.LLMLatency.Observe(latencyMs)
	if !success {
		c.LLMFailures.Inc("", 1)
	}
	c.prom.observeLLM(latencyMs, success)
}

// RecordDBCall records a database round trip.
func (c *Collector) RecordDBCall(latencyMs float64) {
	c.DBLatency.Observe(latencyMs)
	c.prom.observeDB(latencyMs)
}

// RecordCircuitTrip records a circuit breaker opening for a service.
func (c *Collector) RecordCircuitTrip(service string) {
	c.CircuitBreakerTrips.Inc(service, 1)
	c.prom.incCircuitTrip(service)
}

// RecordHealthCheck records a health probe outcome for a service.
func (c *Collector) RecordHealthCheck(service, result string) {
	c.HealthChecks.Inc(service+":"+result, 1)
}

// RecordFeedback records a completed-module feedback event.
func (c *Collector) RecordFeedback(module string) {
	c.FeedbackEvents.Inc(module, 1)
}

// RecordError records an error by category.
func (c *Collector) RecordError(errType string) {
	c.ErrorsTotal.Inc(errType, 1)
	c.prom.incError(errType)
}

// UptimeSeconds returns how long the collector has been running.
func (c *Collector) UptimeSeconds() float64 {
	return time.Since(c.startTime).Seconds()
}

// ActiveUserCount returns the number of distinct users seen.
func (c *Collector) ActiveUserCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.activeUsers)
}

func (c *Collector) recentDecisions(limit int) []RecentDecision {
	c.mu.Lock()
	defer c.mu.Unlock()

	var ordered []RecentDecision
	if c.recentFull {
		ordered = append(ordered, c.recentWindow[c.recentNext:]...)
		ordered = append(ordered, c.recentWindow[:c.recentNext]...)
	} else {
		ordered = append(ordered, c.recentWindow[:c.recentNext]...)
	}

	if limit > 0 && len(ordered) > limit {
		ordered = ordered[len(ordered)-limit:]
	}
	return ordered
}

// Summary is the full JSON snapshot served at the metrics API endpoint.
type Summary struct {
	UptimeSeconds     float64            `json:"uptime_seconds"`
	ActiveUsers       int                `json:"active_users"`
	Decisions         CounterSummary     `json:"decisions"`
	DecisionsByDepth  CounterSummary     `json:"decisions_by_depth"`
	DecisionLatency   HistogramSummary   `json:"decision_latency"`
	LLMLatency        HistogramSummary   `json:"llm_latency"`
	LLMFailures       CounterSummary     `json:"llm_failures"`
	DBLatency         HistogramSummary   `json:"db_latency"`
	CircuitTrips      CounterSummary     `json:"circuit_breaker_trips"`
	Errors            CounterSummary     `json:"errors"`
	RecentDecisions   []RecentDecision   `json:"recent_decisions"`
}

// Summary builds the full dashboard snapshot.
func (c *Collector) Summary() Summary {
	return Summary{
		UptimeSeconds:    round3(c.UptimeSeconds()),
		ActiveUsers:      c.ActiveUserCount(),
		Decisions:        c.DecisionsTotal.Summary(),
		DecisionsByDepth: c.DecisionsByDepth.Summary(),
		DecisionLatency:  c.DecisionLatency.Summary(),
		LLMLatency:       c.LLMLatency.Summary(),
		LLMFailures:      c.LLMFailures.Summary(),
		DBLatency:        c.DBLatency.Summary(),
		CircuitTrips:     c.CircuitBreakerTrips.Summary(),
		Errors:           c.ErrorsTotal.Summary(),
		RecentDecisions:  c.recentDecisions(10),
	}
}

// PrometheusHandler exposes the mirrored Prometheus registry's HTTP handler,
// for mounting at GET /metrics.
func (c *Collector) PrometheusHandler() http.Handler {
	return c.prom.handler()
}

func truncateUserID(userID string) string {
	if len(userID) <= 8 {
		return userID
	}
	return userID[:8] + "..."
}
