package config

// GoalWeights maps skill keys to a role-specific importance multiplier, used
// by the decision engine's goal-alignment signal. Values outside 0.7–1.5 are
// not meaningful — the engine normalizes against that range.
type GoalWeights map[string]float64

// GoalWeightRegistry is a small, immutable lookup from a normalized target
// role to its GoalWeights profile, falling back to "default" for unknown
// roles.
type GoalWeightRegistry struct {
	profiles map[string]GoalWeights
}

// NewGoalWeightRegistry builds the registry from the built-in role profiles.
func NewGoalWeightRegistry() *GoalWeightRegistry {
	return &GoalWeightRegistry{profiles: builtinGoalWeights()}
}

// Get returns the weight profile for a normalized role key, falling back to
// the default profile when the role is unrecognized.
func (r *GoalWeightRegistry) Get(roleKey string) GoalWeights {
	if w, ok := r.profiles[roleKey]; ok {
		return w
	}
	return r.profiles["default"]
}

func builtinGoalWeights() map[string]GoalWeights {
	return map[string]GoalWeights{
		"backend_engineer": {
			"clarity_avg": 1.0, "tradeoff_avg": 1.3, "adaptability_avg": 1.0,
			"failure_awareness_avg": 1.3, "dsa_predict_skill": 1.2,
		},
		"frontend_engineer": {
			"clarity_avg": 1.2, "tradeoff_avg": 1.0, "adaptability_avg": 1.3,
			"failure_awareness_avg": 0.8, "dsa_predict_skill": 0.9,
		},
		"fullstack_engineer": {
			"clarity_avg": 1.1, "tradeoff_avg": 1.2, "adaptability_avg": 1.1,
			"failure_awareness_avg": 1.1, "dsa_predict_skill": 1.1,
		},
		"ml_engineer": {
			"clarity_avg": 1.0, "tradeoff_avg": 1.3, "adaptability_avg": 1.0,
			"failure_awareness_avg": 1.2, "dsa_predict_skill": 1.4,
		},
		"devops_engineer": {
			"clarity_avg": 0.9, "tradeoff_avg": 1.2, "adaptability_avg": 1.1,
			"failure_awareness_avg": 1.5, "dsa_predict_skill": 0.7,
		},
		"default": {
			"clarity_avg": 1.0, "tradeoff_avg": 1.0, "adaptability_avg": 1.0,
			"failure_awareness_avg": 1.0, "dsa_predict_skill": 1.0,
		},
	}
}
