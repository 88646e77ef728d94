package state

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var assertErr = errors.New("mock failure")

func newMockManager(t *testing.T) (*Manager, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	db := sqlx.NewDb(mockDB, "sqlmock")
	return New(db), mock
}

func TestGetUserStateHappyPath(t *testing.T) {
	m, mock := newMockManager(t)
	ctx := context.Background()

	mock.ExpectExec("INSERT INTO user_state").
		WithArgs("user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	stateRows := sqlmock.NewRows([]string{
		"user_id", "clarity_avg", "tradeoff_avg", "adaptability_avg",
		"failure_awareness_avg", "dsa_predict_skill", "next_module", "last_update",
	}).AddRow("user-1", 0.8, 0.7, 0.9, 0.6, 0.5, "dsa_practice", time.Now())
	mock.ExpectQuery("SELECT user_id").WithArgs("user-1").WillReturnRows(stateRows)

	mock.ExpectQuery("SELECT target_role, primary_focus").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"target_role", "primary_focus"}).
			AddRow("backend_engineer", "system_design"))

	mock.ExpectQuery("SELECT next_module FROM orchestrator_decisions").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"next_module"}).
			AddRow("dsa_practice").AddRow("interactive_course"))

	mock.ExpectQuery("SELECT next_module, COUNT").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"next_module", "cnt"}).
			AddRow("dsa_practice", 3).AddRow("interactive_course", 1))

	state := m.GetUserState(ctx, "user-1")

	assert.Equal(t, "user-1", state.UserID)
	assert.Equal(t, 0.8, state.Scores.ClarityAvg)
	require.NotNil(t, state.NextModule)
	assert.Equal(t, "dsa_practice", *state.NextModule)
	require.NotNil(t, state.TargetRole)
	assert.Equal(t, "backend_engineer", *state.TargetRole)
	assert.Equal(t, []string{"dsa_practice", "interactive_course"}, state.RecentModules)
	assert.Equal(t, 3, state.ModuleVisitCounts["dsa_practice"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserStateDegradesToDefaultsOnUpsertFailure(t *testing.T) {
	m, mock := newMockManager(t)
	ctx := context.Background()

	mock.ExpectExec("INSERT INTO user_state").
		WithArgs("user-2").
		WillReturnError(assertErr)

	state := m.GetUserState(ctx, "user-2")
	assert.Equal(t, DefaultSkillScores(), state.Scores)
	assert.Nil(t, state.NextModule)
}

func TestGetUserStateToleratesMissingOnboardingTable(t *testing.T) {
	m, mock := newMockManager(t)
	ctx := context.Background()

	mock.ExpectExec("INSERT INTO user_state").
		WithArgs("user-3").
		WillReturnResult(sqlmock.NewResult(0, 1))

	stateRows := sqlmock.NewRows([]string{
		"user_id", "clarity_avg", "tradeoff_avg", "adaptability_avg",
		"failure_awareness_avg", "dsa_predict_skill", "next_module", "last_update",
	}).AddRow("user-3", 1.0, 1.0, 1.0, 1.0, 1.0, nil, time.Now())
	mock.ExpectQuery("SELECT user_id").WithArgs("user-3").WillReturnRows(stateRows)

	mock.ExpectQuery("SELECT target_role, primary_focus").
		WithArgs("user-3").
		WillReturnError(assertErr)

	mock.ExpectQuery("SELECT next_module FROM orchestrator_decisions").
		WithArgs("user-3").
		WillReturnError(assertErr)

	state := m.GetUserState(ctx, "user-3")
	assert.Nil(t, state.TargetRole)
	assert.Nil(t, state.RecentModules)
	assert.Nil(t, state.NextModule)
}

func TestUpdateNextModule(t *testing.T) {
	m, mock := newMockManager(t)
	ctx := context.Background()

	mock.ExpectExec("UPDATE user_state SET next_module").
		WithArgs("user-1", "resume_builder").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := m.UpdateNextModule(ctx, "user-1", "resume_builder")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordDecisionReturnsNewID(t *testing.T) {
	m, mock := newMockManager(t)
	ctx := context.Background()

	mock.ExpectQuery("INSERT INTO orchestrator_decisions").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	id := m.RecordDecision(ctx, Decision{
		UserID:     "user-1",
		NextModule: "dsa_practice",
		Depth:      DepthRemediation,
		Reason:     "weak on tradeoffs",
		Scores:     map[string]float64{"tradeoffs": 0.3},
	})

	assert.Equal(t, "42", id)
}

func TestRecordDecisionSwallowsFailure(t *testing.T) {
	m, mock := newMockManager(t)
	ctx := context.Background()

	mock.ExpectQuery("INSERT INTO orchestrator_decisions").
		WillReturnError(assertErr)

	id := m.RecordDecision(ctx, Decision{UserID: "user-1", NextModule: "dsa_practice", Depth: DepthNormal})
	assert.Equal(t, "", id)
}

func TestGetDecisionHistory(t *testing.T) {
	m, mock := newMockManager(t)
	ctx := context.Background()

	mock.ExpectQuery("SELECT id, next_module, depth, reason, created_at, input_snapshot").
		WithArgs("user-1", 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "next_module", "depth", "reason", "created_at", "input_snapshot"}).
			AddRow(1, "dsa_practice", 1, "reason-a", time.Now(), []byte(`{}`)))

	history := m.GetDecisionHistory(ctx, "user-1", 10)
	require.Len(t, history, 1)
	assert.Equal(t, "dsa_practice", history[0].NextModule)
}
