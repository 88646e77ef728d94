package evaluator

import (
	"context"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

// Aggregator recomputes user_state's rolling skill averages from the
// scores table. SQL AVG() natively ignores nulls, so a dimension with no
// evaluations yet simply keeps its current value.
type Aggregator struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewAggregator builds an Aggregator over an already-migrated database
// handle.
func NewAggregator(db *sqlx.DB) *Aggregator {
	return &Aggregator{db: db, logger: slog.Default()}
}

// UpdateUserState recomputes and persists the five rolling averages for a
// user. Must be idempotent under concurrent evaluators — the database
// serializes the UPDATE ... FROM so concurrent calls never interleave
// partial writes.
func (a *Aggregator) UpdateUserState(ctx context.Context, userID string) bool {
	if _, err := a.db.ExecContext(ctx, `
		INSERT INTO user_state (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
	`, userID); err != nil {
		a.logger.Error("failed to upsert user_state before aggregation", "user_id", userID, "error", err)
		return false
	}

	result, err := a.db.ExecContext(ctx, `
		UPDATE user_state us SET
			clarity_avg           = COALESCE(sub.clarity_avg, us.clarity_avg),
			tradeoff_avg          = COALESCE(sub.tradeoff_avg, us.tradeoff_avg),
			adaptability_avg      = COALESCE(sub.adaptability_avg, us.adaptability_avg),
			failure_awareness_avg = COALESCE(sub.failure_awareness_avg, us.failure_awareness_avg),
			dsa_predict_skill     = COALESCE(sub.dsa_predict_skill, us.dsa_predict_skill),
			last_update           = NOW()
		FROM (
			SELECT
				user_id,
				AVG(clarity)           AS clarity_avg,
				AVG(tradeoffs)         AS tradeoff_avg,
				AVG(adaptability)      AS adaptability_avg,
				AVG(failure_awareness) AS failure_awareness_avg,
				AVG(dsa_predict)       AS dsa_predict_skill
			FROM scores
			WHERE user_id = $1
			GROUP BY user_id
		) AS sub
		WHERE us.user_id = sub.user_id
	`, userID)
	if err != nil {
		a.logger.Error("failed to update user_state from aggregation", "user_id", userID, "error", err)
		return false
	}

	rows, _ := result.RowsAffected()
	a.logger.Info("user_state aggregated", "user_id", userID, "rows_affected", rows)
	return true
}
