package config

import "fmt"

// ModuleDefinition describes a learning module the orchestrator can route to.
// Instances are immutable once built by NewModuleRegistry.
type ModuleDefinition struct {
	Name               string
	Label              string
	Description        string
	Route              string
	Port               int      // 0 = embedded in gateway
	BaseURL            string   // "" = embedded, no health probing or breaker
	RemediationSkills  []string // weakness dimensions this module addresses
	PrerequisiteModules []string
	Weight             float64 // base priority multiplier (higher = more likely to be chosen)
	CooldownMinutes    int     // minimum time before re-recommending this module
}

// ModuleRegistry is a read-mostly, thread-safe view over the built-in module
// set. Built once at startup; GetAll returns a defensive copy so callers can
// range over it without holding a lock.
type ModuleRegistry struct {
	modules map[string]ModuleDefinition
	order   []string // insertion order, for stable iteration in API responses
}

// NewModuleRegistry builds the registry from the built-in module definitions.
func NewModuleRegistry() *ModuleRegistry {
	defs := builtinModules()
	order := make([]string, 0, len(defs))
	modules := make(map[string]ModuleDefinition, len(defs))
	for _, d := range defs {
		modules[d.Name] = d
		order = append(order, d.Name)
	}
	return &ModuleRegistry{modules: modules, order: order}
}

// Get returns a module definition by name.
func (r *ModuleRegistry) Get(name string) (ModuleDefinition, error) {
	d, ok := r.modules[name]
	if !ok {
		return ModuleDefinition{}, fmt.Errorf("%w: %s", ErrModuleNotFound, name)
	}
	return d, nil
}

// Has reports whether a module is registered.
func (r *ModuleRegistry) Has(name string) bool {
	_, ok := r.modules[name]
	return ok
}

// GetAll returns a defensive copy of every registered module, in registration
// order.
func (r *ModuleRegistry) GetAll() []ModuleDefinition {
	out := make([]ModuleDefinition, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.modules[name])
	}
	return out
}

// Len returns the number of registered modules.
func (r *ModuleRegistry) Len() int {
	return len(r.modules)
}

func builtinModules() []ModuleDefinition {
	return []ModuleDefinition{
		{
			Name:            "onboarding",
			Label:           "Onboarding",
			Description:     "Set up your goals, preferences, and learning profile.",
			Route:           "/onboarding",
			Weight:          0.5,
			CooldownMinutes: 1440,
		},
		{
			Name:              "production_interview",
			Label:             "Mock Interview",
			Description:       "Practice production thinking, clarity, and adaptability in realistic mock interviews.",
			Route:             "/mock-interview",
			Port:              8002,
			BaseURL:           "http://127.0.0.1:8002",
			RemediationSkills: []string{"clarity_avg", "adaptability_avg"},
			Weight:            1.2,
			CooldownMinutes:   15,
		},
		{
			Name:              "interactive_course",
			Label:             "Interactive Course",
			Description:       "Learn system design, tradeoffs, and failure analysis through AI-powered courses.",
			Route:             "/course-generator",
			Port:              8008,
			BaseURL:           "http://127.0.0.1:8008",
			RemediationSkills: []string{"tradeoff_avg", "failure_awareness_avg"},
			Weight:            1.0,
			CooldownMinutes:   20,
		},
		{
			Name:              "dsa_practice",
			Label:             "DSA Practice",
			Description:       "Strengthen algorithm fundamentals with AI-guided problem solving.",
			Route:             "/dsa-sheet",
			Port:              8004,
			BaseURL:           "http://127.0.0.1:8004",
			RemediationSkills: []string{"dsa_predict_skill"},
			Weight:            1.0,
			CooldownMinutes:   10,
		},
		{
			Name:            "resume_builder",
			Label:           "Resume Builder",
			Description:     "Optimize your resume for target roles with AI analysis.",
			Route:           "/resume-analyzer",
			Port:            8003,
			BaseURL:         "http://127.0.0.1:8003",
			Weight:          0.7,
			CooldownMinutes: 60,
		},
		{
			Name:                "project_studio",
			Label:               "Project Studio",
			Description:         "Apply your skills to a real project with multi-agent AI collaboration.",
			Route:               "/project-studio",
			Port:                8012,
			BaseURL:             "http://127.0.0.1:8012",
			PrerequisiteModules: []string{"production_interview", "interactive_course"},
			Weight:              0.9,
			CooldownMinutes:     30,
		},
	}
}

// SkillDimension is descriptive metadata about a scorable skill.
type SkillDimension struct {
	Label               string
	Description         string
	RemediationModules []string
}

// SkillDimensions maps every skill key to its display metadata. Order is not
// significant; iterate via a fixed key list where stability matters.
var SkillDimensions = map[string]SkillDimension{
	"clarity_avg": {
		Label:               "Clarity",
		Description:         "Ability to explain thinking clearly and communicate solutions",
		RemediationModules: []string{"production_interview"},
	},
	"tradeoff_avg": {
		Label:               "Tradeoff Analysis",
		Description:         "Ability to evaluate and articulate engineering tradeoffs",
		RemediationModules: []string{"interactive_course"},
	},
	"adaptability_avg": {
		Label:               "Adaptability",
		Description:         "Flexibility in handling curveballs and changing requirements",
		RemediationModules: []string{"production_interview"},
	},
	"failure_awareness_avg": {
		Label:               "Failure Awareness",
		Description:         "Understanding of edge cases, failure modes, and system reliability",
		RemediationModules: []string{"interactive_course"},
	},
	"dsa_predict_skill": {
		Label:               "DSA Skills",
		Description:         "Data structures and algorithms problem-solving ability",
		RemediationModules: []string{"dsa_practice"},
	},
}

// SkillKeys lists every skill dimension in a stable, deterministic order.
var SkillKeys = []string{
	"clarity_avg",
	"tradeoff_avg",
	"adaptability_avg",
	"failure_awareness_avg",
	"dsa_predict_skill",
}
