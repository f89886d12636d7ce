package postgres

import (
	"context"
	"errors"
	"testing"

	"scholarship-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestWithinTransaction(t *testing.T) {
	t.Run("Should commit when fn succeeds", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE calls").WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectCommit()

		err := NewTxManager(mock).WithinTransaction(context.Background(), func(ctx context.Context) error {
			_, err := conn(ctx, mock).Exec(ctx, "UPDATE calls SET status = 'OPEN'")
			return err
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Should roll back and return fn's error", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		boom := errors.New("boom")
		err := NewTxManager(mock).WithinTransaction(context.Background(), func(ctx context.Context) error {
			return boom
		})

		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, domain.ErrTransientPersistence)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Should mark commit failures as transient", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectCommit().WillReturnError(&pgconn.PgError{Code: "40001", Message: "could not serialize access"})
		mock.ExpectRollback()

		err := NewTxManager(mock).WithinTransaction(context.Background(), func(ctx context.Context) error {
			return nil
		})

		assert.ErrorIs(t, err, domain.ErrTransientPersistence)
	})

	t.Run("Should mark serialization failures inside fn as transient", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		err := NewTxManager(mock).WithinTransaction(context.Background(), func(ctx context.Context) error {
			return &pgconn.PgError{Code: "40P01", Message: "deadlock detected"}
		})

		assert.ErrorIs(t, err, domain.ErrTransientPersistence)
	})
}

func TestNotFound(t *testing.T) {
	assert.ErrorIs(t, notFound(pgx.ErrNoRows), domain.ErrNotFound)
	assert.Nil(t, notFound(nil))

	other := &pgconn.PgError{Code: "23505"}
	assert.ErrorIs(t, notFound(other), other)
}
