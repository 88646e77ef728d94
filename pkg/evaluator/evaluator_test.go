package evaluator

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newMockEvaluator(t *testing.T) (*Evaluator, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	db := sqlx.NewDb(mockDB, "sqlmock")
	// No API keys configured: both providers are nil, so Score always
	// degrades to null scores without touching the network.
	scorer := NewScorer(nil, nil, time.Second, nil)
	aggregator := NewAggregator(db)
	return New(db, scorer, aggregator), mock
}

func TestEvaluateHappyPathRunsAllFourSteps(t *testing.T) {
	e, mock := newMockEvaluator(t)
	ctx := context.Background()

	mock.ExpectExec("INSERT INTO interactions").
		WithArgs("user-1", "dsa_practice", "What is Big O?", "An upper bound on growth.").
		WillReturnResult(sqlmock.NewResult(1, 1))

	mock.ExpectExec("INSERT INTO scores").
		WithArgs("user-1", "dsa_practice", nil, nil, nil, nil, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	mock.ExpectExec("INSERT INTO user_state").
		WithArgs("user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE user_state us SET").
		WithArgs("user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	e.Evaluate(ctx, EvaluationRequest{
		UserID:   "user-1",
		Module:   "dsa_practice",
		Question: "What is Big O?",
		Answer:   "An upper bound on growth.",
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluateStopsAfterInteractionInsertFailure(t *testing.T) {
	e, mock := newMockEvaluator(t)
	ctx := context.Background()

	mock.ExpectExec("INSERT INTO interactions").
		WithArgs("user-1", "dsa_practice", "q", "a").
		WillReturnError(errAggregatorMock)

	e.Evaluate(ctx, EvaluationRequest{
		UserID:   "user-1",
		Module:   "dsa_practice",
		Question: "q",
		Answer:   "a",
	})

	// Nothing beyond the failed interaction insert should have been attempted.
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluateStopsAfterScoresInsertFailure(t *testing.T) {
	e, mock := newMockEvaluator(t)
	ctx := context.Background()

	mock.ExpectExec("INSERT INTO interactions").
		WithArgs("user-1", "dsa_practice", "q", "a").
		WillReturnResult(sqlmock.NewResult(1, 1))

	mock.ExpectExec("INSERT INTO scores").
		WithArgs("user-1", "dsa_practice", nil, nil, nil, nil, nil).
		WillReturnError(errAggregatorMock)

	e.Evaluate(ctx, EvaluationRequest{
		UserID:   "user-1",
		Module:   "dsa_practice",
		Question: "q",
		Answer:   "a",
	})

	require.NoError(t, mock.ExpectationsWereMet())
}
