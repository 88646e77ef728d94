package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Manager owns the user_state / user_onboarding / orchestrator_decisions
// tables. Every read degrades to defaults rather than propagating an error:
// the decision engine must always have something to work with.
type Manager struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// New creates a state Manager over an already-migrated database handle.
func New(db *sqlx.DB) *Manager {
	return &Manager{db: db, logger: slog.Default()}
}

type userStateRow struct {
	UserID              string         `db:"user_id"`
	ClarityAvg          float64        `db:"clarity_avg"`
	TradeoffAvg         float64        `db:"tradeoff_avg"`
	AdaptabilityAvg     float64        `db:"adaptability_avg"`
	FailureAwarenessAvg float64        `db:"failure_awareness_avg"`
	DsaPredictSkill     float64        `db:"dsa_predict_skill"`
	NextModule          sql.NullString `db:"next_module"`
	LastUpdate          time.Time      `db:"last_update"`
}

// GetUserState fetches the complete state snapshot for a user: skill
// averages, onboarding context, and the last 10 decisions. Auto-initializes
// a user_state row on first access. Never returns an error: a failed upsert
// or state read yields the all-default snapshot, and a failed onboarding or
// history read leaves only those fields empty.
func (m *Manager) GetUserState(ctx context.Context, userID string) UserState {
	start := time.Now()

	_, err := m.db.ExecContext(ctx, `
		INSERT INTO user_state (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
	`, userID)
	if err != nil {
		m.logger.Error("failed to upsert user_state", "user_id", userID, "error", err)
		return defaultUserState(userID)
	}

	var row userStateRow
	err = m.db.GetContext(ctx, &row, `
		SELECT user_id,
		       COALESCE(clarity_avg, 1.0)           AS clarity_avg,
		       COALESCE(tradeoff_avg, 1.0)           AS tradeoff_avg,
		       COALESCE(adaptability_avg, 1.0)       AS adaptability_avg,
		       COALESCE(failure_awareness_avg, 1.0)  AS failure_awareness_avg,
		       COALESCE(dsa_predict_skill, 1.0)      AS dsa_predict_skill,
		       next_module,
		       last_update
		FROM user_state
		WHERE user_id = $1
	`, userID)
	if err != nil {
		m.logger.Warn("user state not found after upsert, using defaults", "user_id", userID, "error", err)
		return defaultUserState(userID)
	}

	state := UserState{
		UserID: userID,
		Scores: SkillScores{
			ClarityAvg:          row.ClarityAvg,
			TradeoffAvg:         row.TradeoffAvg,
			AdaptabilityAvg:     row.AdaptabilityAvg,
			FailureAwarenessAvg: row.FailureAwarenessAvg,
			DsaPredictSkill:     row.DsaPredictSkill,
		},
		LastUpdate: row.LastUpdate,
	}
	if row.NextModule.Valid {
		nm := row.NextModule.String
		state.NextModule = &nm
	}

	if targetRole, primaryFocus, ok := m.fetchOnboarding(ctx, userID); ok {
		state.TargetRole = targetRole
		state.PrimaryFocus = primaryFocus
	}

	recentModules, visitCounts := m.fetchHistory(ctx, userID)
	state.RecentModules = recentModules
	state.ModuleVisitCounts = visitCounts

	m.logger.Debug("state fetch complete", "user_id", userID, "elapsed_ms", time.Since(start).Milliseconds())
	return state
}

func defaultUserState(userID string) UserState {
	return UserState{UserID: userID, Scores: DefaultSkillScores()}
}

func (m *Manager) fetchOnboarding(ctx context.Context, userID string) (targetRole, primaryFocus *string, ok bool) {
	var row struct {
		TargetRole   sql.NullString `db:"target_role"`
		PrimaryFocus sql.NullString `db:"primary_focus"`
	}
	err := m.db.GetContext(ctx, &row, `
		SELECT target_role, primary_focus FROM user_onboarding WHERE user_id = $1
	`, userID)
	if err != nil {
		// Table may not exist yet, or the user has no onboarding record.
		return nil, nil, false
	}
	if row.TargetRole.Valid {
		v := row.TargetRole.String
		targetRole = &v
	}
	if row.PrimaryFocus.Valid {
		v := row.PrimaryFocus.String
		primaryFocus = &v
	}
	return targetRole, primaryFocus, true
}

func (m *Manager) fetchHistory(ctx context.Context, userID string) ([]string, map[string]int) {
	var modules []string
	err := m.db.SelectContext(ctx, &modules, `
		SELECT next_module FROM orchestrator_decisions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 10
	`, userID)
	if err != nil {
		return nil, nil
	}

	var counts []struct {
		NextModule string `db:"next_module"`
		Cnt        int    `db:"cnt"`
	}
	if err := m.db.SelectContext(ctx, &counts, `
		SELECT next_module, COUNT(*) AS cnt
		FROM orchestrator_decisions
		WHERE user_id = $1
		GROUP BY next_module
	`, userID); err != nil {
		return modules, nil
	}

	visitCounts := make(map[string]int, len(counts))
	for _, c := range counts {
		visitCounts[c.NextModule] = c.Cnt
	}
	return modules, visitCounts
}

// UpdateNextModule records the module the engine decided a user should see
// next.
func (m *Manager) UpdateNextModule(ctx context.Context, userID, module string) error {
	_, err := m.db.ExecContext(ctx, `
		UPDATE user_state SET next_module = $2, last_update = NOW()
		WHERE user_id = $1
	`, userID, module)
	if err != nil {
		m.logger.Error("failed to update next_module", "user_id", userID, "error", err)
		return fmt.Errorf("update next_module: %w", err)
	}
	return nil
}

type decisionSnapshot struct {
	Scores          map[string]float64 `json:"scores"`
	WeaknessTrigger string              `json:"weakness_trigger"`
	Confidence      float64             `json:"confidence"`
	CandidateScores []CandidateScore    `json:"candidate_scores"`
}

// RecordDecision persists a decision to the audit trail, best-effort: a
// failure is logged but never propagated since the audit trail must never
// block the recommendation path. Returns the new row's id, or "" on
// failure.
func (m *Manager) RecordDecision(ctx context.Context, d Decision) string {
	top := d.CandidateScores
	if len(top) > 5 {
		top = top[:5]
	}
	snapshot := decisionSnapshot{
		Scores:          d.Scores,
		WeaknessTrigger: d.WeaknessTrigger,
		Confidence:      d.Confidence,
		CandidateScores: top,
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		m.logger.Warn("failed to marshal decision snapshot", "user_id", d.UserID, "error", err)
		return ""
	}

	depthInt, ok := depthToInt[d.Depth]
	if !ok {
		depthInt = depthToInt[DepthNormal]
	}

	var id int64
	err = m.db.GetContext(ctx, &id, `
		INSERT INTO orchestrator_decisions (user_id, input_snapshot, next_module, depth, reason)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, d.UserID, payload, d.NextModule, depthInt, d.Reason)
	if err != nil {
		m.logger.Warn("failed to persist decision", "user_id", d.UserID, "error", err)
		return ""
	}

	m.logger.Info("decision recorded",
		"decision_id", id, "user_id", d.UserID, "next_module", d.NextModule,
		"depth", d.Depth, "confidence", d.Confidence)
	return fmt.Sprintf("%d", id)
}

// GetDecisionHistory fetches the most recent decisions for a user, newest
// first.
func (m *Manager) GetDecisionHistory(ctx context.Context, userID string, limit int) []DecisionHistoryEntry {
	var rows []DecisionHistoryEntry
	err := m.db.SelectContext(ctx, &rows, `
		SELECT id, next_module, depth, reason, created_at, input_snapshot
		FROM orchestrator_decisions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		m.logger.Error("failed to fetch decision history", "user_id", userID, "error", err)
		return nil
	}
	return rows
}
