// Package evaluator scores a user's reasoning-question answers via an LLM
// and rolls the results into that user's skill averages.
package evaluator

import (
	"context"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

// EvaluationRequest is the inbound payload for a single answer to judge.
type EvaluationRequest struct {
	UserID   string `json:"user_id" validate:"required"`
	Module   string `json:"module" validate:"required"`
	Question string `json:"question" validate:"required"`
	Answer   string `json:"answer" validate:"required"`
}

// Evaluator runs the full evaluate flow: persist the interaction, score it
// via LLM, persist the scores, and roll them into user_state. Every step is
// best-effort: a failed interaction or scores insert ends the flow early,
// and the caller always gets {"status":"ok"}, with failures only visible in
// logs.
type Evaluator struct {
	db         *sqlx.DB
	scorer     *Scorer
	aggregator *Aggregator
	logger     *slog.Logger
}

// New builds an Evaluator over an already-migrated database handle.
func New(db *sqlx.DB, scorer *Scorer, aggregator *Aggregator) *Evaluator {
	return &Evaluator{db: db, scorer: scorer, aggregator: aggregator, logger: slog.Default()}
}

// Evaluate runs the flow described on Evaluator. It never
// returns an error to the caller: internal failures are logged and
// swallowed so a scoring hiccup never blocks the user's learning flow.
func (e *Evaluator) Evaluate(ctx context.Context, req EvaluationRequest) {
	if _, err := e.db.ExecContext(ctx, `
		INSERT INTO interactions (user_id, module, step_type, question, user_answer)
		VALUES ($1, $2, 'core', $3, $4)
	`, req.UserID, req.Module, req.Question, req.Answer); err != nil {
		e.logger.Error("failed to insert interaction", "user_id", req.UserID, "error", err)
		return
	}

	scores := e.scorer.Score(ctx, req.Question, req.Answer)

	if _, err := e.db.ExecContext(ctx, `
		INSERT INTO scores (user_id, module, clarity, tradeoffs, adaptability, failure_awareness, dsa_predict)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, req.UserID, req.Module, scores.Clarity, scores.Tradeoffs, scores.Adaptability, scores.FailureAwareness, scores.DsaPredict); err != nil {
		e.logger.Error("failed to insert scores", "user_id", req.UserID, "error", err)
		return
	}

	e.aggregator.UpdateUserState(ctx, req.UserID)
}
