package config

import (
	"fmt"
	"os"
	"strconv"
)

// EngineConfig carries every tuning knob for the decision engine, circuit
// breakers, health monitor, and metrics collector. Immutable after
// LoadEngineConfig returns.
type EngineConfig struct {
	// Score thresholds
	WeaknessThreshold float64 // below this → remediation needed
	StrengthThreshold float64 // above this → skill is strong
	CriticalThreshold float64 // below this → urgent remediation

	// Temporal decay (exponential moving average, reserved for future use)
	DecayAlpha      float64
	ScoreWindowDays int

	// Weights for the multi-signal scoring
	WeaknessSeverityWeight float64
	RateOfChangeWeight     float64
	RecencyWeight          float64
	GoalAlignmentWeight    float64
	PatternWeight          float64

	// Cooldown & diversity
	MaxConsecutiveSameModule int
	MinModulesBeforeRepeat   int

	// LLM reasoning decoration (pkg/api/reason.go). Scoring has its own
	// independent timeout, evaluator.ScoringTimeout, since the two calls
	// tune separately.
	LLMTimeoutSeconds float64
	LLMMaxTokens      int
	LLMTemperature    float64

	// Circuit breaker
	CBFailureThreshold  int
	CBRecoveryTimeoutS  int
	CBHalfOpenMaxCalls  int

	// Health check
	HealthCheckIntervalS int
	HealthCheckTimeoutS  float64

	// Metrics
	MetricsBufferSize     int
	MetricsFlushIntervalS int
}

// DefaultEngineConfig returns the engine's hardcoded baseline, before any
// ORCH_* overrides are applied.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		WeaknessThreshold: 0.4,
		StrengthThreshold: 0.75,
		CriticalThreshold: 0.2,

		DecayAlpha:      0.3,
		ScoreWindowDays: 30,

		WeaknessSeverityWeight: 0.40,
		RateOfChangeWeight:     0.15,
		RecencyWeight:          0.15,
		GoalAlignmentWeight:    0.15,
		PatternWeight:          0.15,

		MaxConsecutiveSameModule: 3,
		MinModulesBeforeRepeat:   1,

		LLMTimeoutSeconds: 10.0,
		LLMMaxTokens:      200,
		LLMTemperature:    0.3,

		CBFailureThreshold: 5,
		CBRecoveryTimeoutS: 60,
		CBHalfOpenMaxCalls: 2,

		HealthCheckIntervalS: 30,
		HealthCheckTimeoutS:  5.0,

		MetricsBufferSize:     1000,
		MetricsFlushIntervalS: 60,
	}
}

// LoadEngineConfig loads EngineConfig starting from the defaults and
// applying any ORCH_* environment overrides present in the process
// environment.
func LoadEngineConfig() (EngineConfig, error) {
	cfg := DefaultEngineConfig()

	if err := overrideFloat(&cfg.WeaknessThreshold, "ORCH_WEAKNESS_THRESHOLD"); err != nil {
		return cfg, err
	}
	if err := overrideFloat(&cfg.StrengthThreshold, "ORCH_STRENGTH_THRESHOLD"); err != nil {
		return cfg, err
	}
	if err := overrideFloat(&cfg.CriticalThreshold, "ORCH_CRITICAL_THRESHOLD"); err != nil {
		return cfg, err
	}
	if err := overrideFloat(&cfg.DecayAlpha, "ORCH_DECAY_ALPHA"); err != nil {
		return cfg, err
	}
	if err := overrideInt(&cfg.ScoreWindowDays, "ORCH_SCORE_WINDOW_DAYS"); err != nil {
		return cfg, err
	}
	if err := overrideFloat(&cfg.LLMTimeoutSeconds, "ORCH_LLM_TIMEOUT"); err != nil {
		return cfg, err
	}
	if err := overrideInt(&cfg.CBFailureThreshold, "ORCH_CB_FAILURE_THRESHOLD"); err != nil {
		return cfg, err
	}
	if err := overrideInt(&cfg.CBRecoveryTimeoutS, "ORCH_CB_RECOVERY_TIMEOUT"); err != nil {
		return cfg, err
	}
	if err := overrideInt(&cfg.HealthCheckIntervalS, "ORCH_HEALTH_CHECK_INTERVAL"); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate enforces the invariants the decision engine and circuit breakers
// rely on.
func (c EngineConfig) Validate() error {
	if c.WeaknessThreshold <= 0 || c.WeaknessThreshold >= 1 {
		return NewValidationError("engine", "weakness_threshold", "value", fmt.Errorf("%w: must be in (0,1)", ErrInvalidValue))
	}
	if c.CriticalThreshold <= 0 || c.CriticalThreshold >= c.WeaknessThreshold {
		return NewValidationError("engine", "critical_threshold", "value", fmt.Errorf("%w: must be in (0, weakness_threshold)", ErrInvalidValue))
	}
	if c.CBFailureThreshold < 1 {
		return NewValidationError("engine", "cb_failure_threshold", "value", fmt.Errorf("%w: must be >= 1", ErrInvalidValue))
	}
	if c.HealthCheckIntervalS < 1 {
		return NewValidationError("engine", "health_check_interval_s", "value", fmt.Errorf("%w: must be >= 1", ErrInvalidValue))
	}
	return nil
}

func overrideFloat(dst *float64, envKey string) error {
	val := os.Getenv(envKey)
	if val == "" {
		return nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return NewLoadError(envKey, err)
	}
	*dst = f
	return nil
}

func overrideInt(dst *int, envKey string) error {
	val := os.Getenv(envKey)
	if val == "" {
		return nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return NewLoadError(envKey, err)
	}
	*dst = n
	return nil
}
