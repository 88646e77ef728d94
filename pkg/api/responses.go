package api

import "time"

// EvaluateResponse is returned by POST /api/evaluate, always with status
// "ok" regardless of internal DB/LLM failures.
type EvaluateResponse struct {
	Status string `json:"status"`
}

// NextResponse is returned by GET /api/next.
type NextResponse struct {
	NextModule      string             `json:"next_module"`
	Reason          string             `json:"reason"`
	Description     string             `json:"description"`
	MemoryContext   string             `json:"memory_context,omitempty"`
	WeaknessTrigger *string            `json:"weakness_trigger"`
	Scores          map[string]float64 `json:"scores"`
	Confidence      float64            `json:"confidence"`
	Depth           string             `json:"depth"`
	DecisionID      *string            `json:"decision_id"`
}

// StateResponse is returned by GET /api/state/:user_id.
type StateResponse struct {
	UserID        string             `json:"user_id"`
	Scores        map[string]float64 `json:"scores"`
	NextModule    *string            `json:"next_module"`
	TargetRole    *string            `json:"target_role"`
	RecentModules []string           `json:"recent_modules"`
	Depth         string             `json:"depth"`
}

// DecisionEntry is one element of GET /api/orchestrator/decisions.
type DecisionEntry struct {
	ID            int64     `json:"id"`
	NextModule    string    `json:"next_module"`
	Depth         int       `json:"depth"`
	Reason        *string   `json:"reason"`
	CreatedAt     time.Time `json:"created_at"`
	InputSnapshot []byte    `json:"input_snapshot"`
}

// BreakerStatsResponse mirrors spec §6.1's circuit-breaker listing shape.
type BreakerStatsResponse struct {
	Name        string              `json:"name"`
	State       string              `json:"state"`
	IsAvailable bool                `json:"is_available"`
	Stats       BreakerStatsFields  `json:"stats"`
	Config      BreakerConfigFields `json:"config"`
}

type BreakerStatsFields struct {
	TotalCalls          int64   `json:"total_calls"`
	TotalSuccesses      int64   `json:"total_successes"`
	TotalFailures       int64   `json:"total_failures"`
	TotalRejections     int64   `json:"total_rejections"`
	ConsecutiveFailures int     `json:"consecutive_failures"`
	SuccessRate         float64 `json:"success_rate"`
}

type BreakerConfigFields struct {
	FailureThreshold int     `json:"failure_threshold"`
	RecoveryTimeoutS float64 `json:"recovery_timeout_s"`
	HalfOpenMaxCalls int     `json:"half_open_max_calls"`
}

// ServiceStatusResponse mirrors spec §6.1's service listing shape.
type ServiceStatusResponse struct {
	Name                string   `json:"name"`
	Status              string   `json:"status"`
	IsEmbedded          bool     `json:"is_embedded"`
	URL                 string   `json:"url,omitempty"`
	Port                int      `json:"port,omitempty"`
	LatencyMs           *float64 `json:"latency_ms,omitempty"`
	AvailabilityPct     float64  `json:"availability_pct"`
	ConsecutiveFailures int      `json:"consecutive_failures"`
	LastError           string   `json:"last_error,omitempty"`
	CircuitBreakerState string   `json:"circuit_breaker,omitempty"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
	Database  string            `json:"database"`
}
