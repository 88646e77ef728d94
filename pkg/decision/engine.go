// Package decision implements the weighted multi-signal routing engine:
// given a user's skill state, optional memory context, and downstream
// service health, it picks the single best next learning module.
package decision

import (
	"fmt"
	"sort"
	"strings"

	"github.com/codeready-toolchain/pathwright/pkg/config"
	"github.com/codeready-toolchain/pathwright/pkg/state"
)

// MemoryEvent is one entry from the memory service's recent-events feed,
// used by the rate-of-change signal.
type MemoryEvent struct {
	EventType string
	Module    string
}

// MemoryPattern is one detected behavioral pattern, used by the pattern
// signal.
type MemoryPattern struct {
	Description string
	Confidence  float64
}

// MemoryContext carries the optional signals the memory service supplies.
// A zero-value MemoryContext is valid — every signal that reads it falls
// back to a neutral default.
type MemoryContext struct {
	RecentEvents []MemoryEvent
	Patterns     []MemoryPattern
}

// ModuleScore is the full scoring breakdown for one candidate, preserved
// for explainability in the decision's audit snapshot.
type ModuleScore struct {
	Module                string
	WeaknessSeverityScore float64
	RateOfChangeScore     float64
	RecencyScore          float64
	GoalAlignmentScore    float64
	PatternScore          float64
	CooldownPenalty       float64
	DiversityBonus        float64
	TotalScore            float64
}

func round4(v float64) float64 {
	return float64(int(v*10000+0.5)) / 10000
}

// Engine is a pure, stateless scorer: every decide() call takes the full
// user state as input and returns a Decision with no hidden state or I/O.
type Engine struct {
	modules config.ModuleRegistry
	goals   *config.GoalWeightRegistry
	dims    map[string]config.SkillDimension
	cfg     config.EngineConfig
}

// New builds a decision Engine over the given module registry, goal-weight
// registry, and tuning configuration.
func New(modules *config.ModuleRegistry, goals *config.GoalWeightRegistry, cfg config.EngineConfig) *Engine {
	return &Engine{modules: *modules, goals: goals, dims: config.SkillDimensions, cfg: cfg}
}

// Decide is the engine's single entry point. serviceHealth maps module name
// → is-healthy; a false entry excludes that module's candidacy.
func (e *Engine) Decide(s state.UserState, mem MemoryContext, serviceHealth map[string]bool) state.Decision {
	depth := e.determineDepth(s)
	candidates := e.candidates(s, serviceHealth)

	if len(candidates) == 0 {
		return e.fallbackDecision(s, depth)
	}

	scored := make([]ModuleScore, 0, len(candidates))
	for _, name := range candidates {
		scored = append(scored, e.scoreCandidate(name, s, mem))
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].TotalScore > scored[j].TotalScore })

	winner := e.applyDiversityFilter(scored, s)

	modDef, err := e.modules.Get(winner.Module)
	if err != nil {
		modDef, _ = e.modules.Get("project_studio")
	}

	weaknessTrigger := s.Scores.WeakestDimension(e.cfg.WeaknessThreshold)
	ruleReason := e.buildRuleReason(modDef, s, weaknessTrigger)

	top5 := scored
	if len(top5) > 5 {
		top5 = top5[:5]
	}
	candidateScores := make([]state.CandidateScore, 0, len(top5))
	for _, sc := range top5 {
		candidateScores = append(candidateScores, state.CandidateScore{Module: sc.Module, TotalScore: round4(sc.TotalScore)})
	}

	return state.Decision{
		UserID:          s.UserID,
		NextModule:      winner.Module,
		Depth:           depth,
		Reason:          ruleReason,
		RuleReason:      ruleReason,
		WeaknessTrigger: weaknessTrigger,
		Scores:          s.Scores.AsMap(),
		Confidence:      e.calculateConfidence(scored),
		CandidateScores: candidateScores,
	}
}

// fallbackDecision is returned only when the candidate set is unexpectedly
// empty — every module filtered out by an unhealthy service.
func (e *Engine) fallbackDecision(s state.UserState, depth state.DecisionDepth) state.Decision {
	return state.Decision{
		UserID:     s.UserID,
		NextModule: "project_studio",
		Depth:      depth,
		Reason:     "All modules are available. Apply your skills freely!",
		RuleReason: "No candidates matched — fallback",
		Scores:     s.Scores.AsMap(),
		Confidence: 0.5,
	}
}

// DetermineDepth classifies a user's current depth band without running a
// full Decide — used by read-only endpoints that only need the
// classification (e.g. GET /api/state/:user_id).
func (e *Engine) DetermineDepth(s state.UserState) state.DecisionDepth {
	return e.determineDepth(s)
}

// Step 1: decision depth.
func (e *Engine) determineDepth(s state.UserState) state.DecisionDepth {
	scores := s.Scores.AsMap()
	for _, v := range scores {
		if v < e.cfg.CriticalThreshold {
			return state.DepthCritical
		}
	}
	for _, v := range scores {
		if v < e.cfg.WeaknessThreshold {
			return state.DepthRemediation
		}
	}
	allMax := true
	for _, v := range scores {
		if v < 0.99 {
			allMax = false
			break
		}
	}
	if allMax && len(s.RecentModules) == 0 {
		return state.DepthOnboarding
	}
	return state.DepthNormal
}

// Step 2: candidate set.
func (e *Engine) candidates(s state.UserState, serviceHealth map[string]bool) []string {
	var out []string
	for _, mod := range e.modules.GetAll() {
		if mod.BaseURL != "" {
			if healthy, known := serviceHealth[mod.Name]; known && !healthy {
				continue
			}
		}
		if mod.Name == "onboarding" && len(s.RecentModules) > 0 {
			continue
		}
		out = append(out, mod.Name)
	}
	return out
}

// Step 3: score one candidate across all five signals plus cooldown/diversity.
func (e *Engine) scoreCandidate(name string, s state.UserState, mem MemoryContext) ModuleScore {
	mod, _ := e.modules.Get(name)
	ms := ModuleScore{Module: name}

	ms.WeaknessSeverityScore = e.calcWeaknessSeverity(mod, s)
	ms.RateOfChangeScore = e.calcRateOfChange(mem)
	ms.RecencyScore = e.calcRecencyScore(name, s)
	ms.GoalAlignmentScore = e.calcGoalAlignment(mod, s)
	ms.PatternScore = e.calcPatternSignal(mod, mem)
	ms.CooldownPenalty = e.calcCooldownPenalty(name, s)
	ms.DiversityBonus = e.calcDiversityBonus(name, s)

	cfg := e.cfg
	ms.TotalScore = (ms.WeaknessSeverityScore*cfg.WeaknessSeverityWeight +
		ms.RateOfChangeScore*cfg.RateOfChangeWeight +
		ms.RecencyScore*cfg.RecencyWeight +
		ms.GoalAlignmentScore*cfg.GoalAlignmentWeight +
		ms.PatternScore*cfg.PatternWeight +
		ms.DiversityBonus*0.05 -
		ms.CooldownPenalty) * mod.Weight

	return ms
}

// Signal 1: weakness severity (weight 0.40).
func (e *Engine) calcWeaknessSeverity(mod config.ModuleDefinition, s state.UserState) float64 {
	if len(mod.RemediationSkills) == 0 {
		if s.Scores.AllHealthy(e.cfg.WeaknessThreshold) {
			return 0.6
		}
		return 0.1
	}

	scores := s.Scores.AsMap()
	max := 0.0
	for _, skill := range mod.RemediationSkills {
		val, ok := scores[skill]
		if !ok {
			val = 1.0
		}
		var severity float64
		switch {
		case val < e.cfg.CriticalThreshold:
			severity = 1.0
		case val < e.cfg.WeaknessThreshold:
			severity = 1.0 - (val / e.cfg.WeaknessThreshold)
			if severity < 0.4 {
				severity = 0.4
			}
		default:
			severity = 0.0
		}
		if severity > max {
			max = severity
		}
	}
	return max
}

// Signal 2: rate of change (weight 0.15).
func (e *Engine) calcRateOfChange(mem MemoryContext) float64 {
	if len(mem.RecentEvents) == 0 {
		return 0.5
	}
	weaknessCount, strengthCount := 0, 0
	for _, evt := range mem.RecentEvents {
		switch {
		case strings.Contains(evt.EventType, "weakness"):
			weaknessCount++
		case strings.Contains(evt.EventType, "strength"):
			strengthCount++
		}
	}
	total := weaknessCount + strengthCount
	if total == 0 {
		return 0.5
	}
	return float64(weaknessCount) / float64(total)
}

// Signal 3: recency (weight 0.15).
func (e *Engine) calcRecencyScore(name string, s state.UserState) float64 {
	if len(s.RecentModules) == 0 {
		return 0.5
	}
	for idx, m := range s.RecentModules {
		if m == name {
			ratio := float64(idx) / float64(len(s.RecentModules))
			if ratio > 1.0 {
				ratio = 1.0
			}
			return ratio
		}
	}
	return 0.8
}

// Signal 4: goal alignment (weight 0.15).
func (e *Engine) calcGoalAlignment(mod config.ModuleDefinition, s state.UserState) float64 {
	if s.TargetRole == nil || *s.TargetRole == "" || len(mod.RemediationSkills) == 0 {
		return 0.5
	}
	roleKey := normalizeRoleKey(*s.TargetRole)
	weights := e.goals.Get(roleKey)

	sum := 0.0
	for _, skill := range mod.RemediationSkills {
		w, ok := weights[skill]
		if !ok {
			w = 1.0
		}
		sum += w
	}
	avg := sum / float64(len(mod.RemediationSkills))

	normalized := (avg - 0.7) / 0.8
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}
	return normalized
}

func normalizeRoleKey(role string) string {
	r := strings.ToLower(role)
	r = strings.ReplaceAll(r, " ", "_")
	r = strings.ReplaceAll(r, "-", "_")
	return r
}

// Signal 5: pattern signal (weight 0.15).
func (e *Engine) calcPatternSignal(mod config.ModuleDefinition, mem MemoryContext) float64 {
	if len(mem.Patterns) == 0 {
		return 0.5
	}
	if len(mod.RemediationSkills) == 0 {
		return 0.3
	}

	relevant := 0.0
	for _, pattern := range mem.Patterns {
		desc := strings.ToLower(pattern.Description)
		for _, skill := range mod.RemediationSkills {
			label := strings.ToLower(e.dims[skill].Label)
			if label != "" && strings.Contains(desc, label) {
				relevant += pattern.Confidence
			}
		}
	}
	if relevant > 1.0 {
		relevant = 1.0
	}
	return relevant
}

// Cooldown penalty.
func (e *Engine) calcCooldownPenalty(name string, s state.UserState) float64 {
	if len(s.RecentModules) == 0 {
		return 0.0
	}
	if s.RecentModules[0] == name {
		return 0.3
	}
	window := s.RecentModules
	if len(window) > e.cfg.MinModulesBeforeRepeat+1 {
		window = window[:e.cfg.MinModulesBeforeRepeat+1]
	}
	for _, m := range window {
		if m == name {
			return 0.15
		}
	}
	return 0.0
}

// Diversity bonus.
func (e *Engine) calcDiversityBonus(name string, s state.UserState) float64 {
	visits := s.ModuleVisitCounts[name]
	total := 0
	for _, v := range s.ModuleVisitCounts {
		total += v
	}
	if total == 0 {
		total = 1
	}
	ratio := float64(visits) / float64(total)
	bonus := 1.0 - ratio*3
	if bonus < 0 {
		bonus = 0
	}
	return bonus
}

// Step 6: diversity filter — avoid recommending the same module too many
// times in a row.
func (e *Engine) applyDiversityFilter(scored []ModuleScore, s state.UserState) ModuleScore {
	if len(s.RecentModules) == 0 {
		return scored[0]
	}

	lastModule := s.RecentModules[0]
	consecutive := 0
	for _, m := range s.RecentModules {
		if m != lastModule {
			break
		}
		consecutive++
	}

	if consecutive >= e.cfg.MaxConsecutiveSameModule && scored[0].Module == lastModule && len(scored) > 1 {
		return scored[1]
	}
	return scored[0]
}

// Confidence: the gap between #1 and #2, clamped to [0.3, 1.0]; 1.0 with a
// single candidate.
func (e *Engine) calculateConfidence(scored []ModuleScore) float64 {
	if len(scored) < 2 {
		return 1.0
	}
	top := scored[0].TotalScore
	second := scored[1].TotalScore
	if top <= 0 {
		return 0.5
	}
	gapRatio := (top - second) / top
	conf := 0.5 + gapRatio
	if conf < 0.3 {
		conf = 0.3
	}
	if conf > 1.0 {
		conf = 1.0
	}
	return conf
}

// Step 7: build the deterministic rule-based reason string.
func (e *Engine) buildRuleReason(mod config.ModuleDefinition, s state.UserState, weaknessTrigger string) string {
	scores := s.Scores.AsMap()

	if weaknessTrigger != "" {
		val := scores[weaknessTrigger]
		label := e.dims[weaknessTrigger].Label
		if label == "" {
			label = weaknessTrigger
		}
		if val < e.cfg.CriticalThreshold {
			return fmt.Sprintf("Your %s score (%.2f) is critically low. Urgent practice in %s is recommended.", label, val, mod.Label)
		}
		return fmt.Sprintf("Your %s score (%.2f) is below %.1f. %s will help you improve through targeted practice.", label, val, e.cfg.WeaknessThreshold, mod.Label)
	}

	if s.Scores.AllHealthy(e.cfg.WeaknessThreshold) {
		return fmt.Sprintf("All your skills are healthy (>= %.1f). %s is recommended to apply and reinforce your knowledge.", e.cfg.WeaknessThreshold, mod.Label)
	}

	return mod.Label + " is your best next step based on your current skill profile."
}
