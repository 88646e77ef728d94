package evaluator

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

var errAggregatorMock = errors.New("mock failure")

func newMockAggregator(t *testing.T) (*Aggregator, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	db := sqlx.NewDb(mockDB, "sqlmock")
	return NewAggregator(db), mock
}

func TestUpdateUserStateSucceeds(t *testing.T) {
	a, mock := newMockAggregator(t)
	ctx := context.Background()

	mock.ExpectExec("INSERT INTO user_state").
		WithArgs("user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE user_state us SET").
		WithArgs("user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok := a.UpdateUserState(ctx, "user-1")

	require.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateUserStateFailsOnUpsertError(t *testing.T) {
	a, mock := newMockAggregator(t)
	ctx := context.Background()

	mock.ExpectExec("INSERT INTO user_state").
		WithArgs("user-1").
		WillReturnError(errAggregatorMock)

	ok := a.UpdateUserState(ctx, "user-1")

	require.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateUserStateFailsOnAggregationError(t *testing.T) {
	a, mock := newMockAggregator(t)
	ctx := context.Background()

	mock.ExpectExec("INSERT INTO user_state").
		WithArgs("user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE user_state us SET").
		WithArgs("user-1").
		WillReturnError(errAggregatorMock)

	ok := a.UpdateUserState(ctx, "user-1")

	require.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}
