package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"scholarship-backend/internal/domain"
	"scholarship-backend/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestRecoveryHook_Escalate(t *testing.T) {
	failure := domain.TickFailure{
		Job:       usecase.JobCallTransition,
		Attempts:  5,
		LastError: "gave up after 5 attempts",
		FailedAt:  time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC),
	}

	t.Run("Should record the failure", func(t *testing.T) {
		repo := new(MockFailureRepo)
		repo.On("Record", mock.Anything, mock.MatchedBy(func(f *domain.TickFailure) bool {
			return f.Job == failure.Job && f.Attempts == 5
		})).Return(nil)

		usecase.NewRecoveryHook(repo, nil, quietLogger()).Escalate(context.Background(), failure)

		repo.AssertExpectations(t)
	})

	t.Run("Should record even when the tick context is cancelled", func(t *testing.T) {
		repo := new(MockFailureRepo)
		repo.On("Record", mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil }), mock.Anything).Return(nil)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		usecase.NewRecoveryHook(repo, nil, quietLogger()).Escalate(ctx, failure)

		repo.AssertExpectations(t)
	})

	t.Run("Should swallow storage errors", func(t *testing.T) {
		repo := new(MockFailureRepo)
		repo.On("Record", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

		assert.NotPanics(t, func() {
			usecase.NewRecoveryHook(repo, nil, quietLogger()).Escalate(context.Background(), failure)
		})
	})

	t.Run("Should only log without a repository", func(t *testing.T) {
		assert.NotPanics(t, func() {
			usecase.NewRecoveryHook(nil, nil, quietLogger()).Escalate(context.Background(), failure)
		})
	})

	t.Run("Should alert operators after recording", func(t *testing.T) {
		repo := new(MockFailureRepo)
		repo.On("Record", mock.Anything, mock.Anything).Return(nil)
		notifier := new(MockNotifier)
		notifier.On("NotifyFailure", mock.Anything, failure).Return(nil)

		usecase.NewRecoveryHook(repo, notifier, quietLogger()).Escalate(context.Background(), failure)

		repo.AssertExpectations(t)
		notifier.AssertExpectations(t)
	})

	t.Run("Should still alert when recording fails", func(t *testing.T) {
		repo := new(MockFailureRepo)
		repo.On("Record", mock.Anything, mock.Anything).Return(errors.New("connection refused"))
		notifier := new(MockNotifier)
		notifier.On("NotifyFailure", mock.Anything, mock.Anything).Return(errors.New("smtp down"))

		assert.NotPanics(t, func() {
			usecase.NewRecoveryHook(repo, notifier, quietLogger()).Escalate(context.Background(), failure)
		})
		notifier.AssertExpectations(t)
	})
}
