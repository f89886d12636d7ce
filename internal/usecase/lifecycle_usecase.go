package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"scholarship-backend/internal/domain"
	"scholarship-backend/internal/metrics"
	"scholarship-backend/pkg/retry"
)

// JobCallTransition names the scheduled job in failure records.
const JobCallTransition = "call-transition"

// RetrySettings bounds how a failed tick is retried.
type RetrySettings struct {
	MaxAttempts int
	Delay       time.Duration
	// Sleep overrides the wait between attempts; nil waits in real time.
	Sleep func(ctx context.Context, d time.Duration) error
}

type lifecycleUsecase struct {
	callRepo domain.CallRepository
	ranking  domain.RankingUsecase
	tx       domain.TxManager
	recovery domain.RecoveryHook
	clock    Clock
	retry    RetrySettings
	logger   *slog.Logger
}

// NewLifecycleUsecase creates the call lifecycle manager driven by the scheduler
func NewLifecycleUsecase(
	callRepo domain.CallRepository,
	ranking domain.RankingUsecase,
	tx domain.TxManager,
	recovery domain.RecoveryHook,
	clock Clock,
	settings RetrySettings,
	logger *slog.Logger,
) domain.LifecycleUsecase {
	return &lifecycleUsecase{
		callRepo: callRepo,
		ranking:  ranking,
		tx:       tx,
		recovery: recovery,
		clock:    clock,
		retry:    settings,
		logger:   logger.With("component", "lifecycle"),
	}
}

// TransitionDueCalls opens due calls before closing expired ones, so a call whose
// window already passed is opened and closed in the same tick instead of skipped.
// Evaluation runs in a savepoint: its failure is logged and does not undo the transition,
// except for transient failures, which fail the whole attempt.
func (uc *lifecycleUsecase) TransitionDueCalls(ctx context.Context) (domain.TickOutcome, error) {
	today := uc.clock.Today()

	var out domain.TickOutcome
	err := uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		out = domain.TickOutcome{}

		opened, err := uc.callRepo.BulkOpenDueCalls(ctx, today)
		if err != nil {
			return fmt.Errorf("open due calls: %w", err)
		}
		closed, err := uc.callRepo.BulkCloseExpiredCalls(ctx, today)
		if err != nil {
			return fmt.Errorf("close expired calls: %w", err)
		}
		out.Opened, out.Closed = opened, closed

		if closed == 0 {
			return nil
		}

		var result domain.EvaluationResult
		err = uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
			var err error
			result, err = uc.ranking.Evaluate(ctx)
			return err
		})
		if err != nil {
			if errors.Is(err, domain.ErrTransientPersistence) {
				return fmt.Errorf("evaluate closed call: %w", err)
			}
			uc.logger.Error("post-closure evaluation failed, transition kept", "closed", closed, "error", err)
			return nil
		}

		out.Rescored = result.Rescored
		out.Skipped = result.Skipped
		out.Failed = result.Failed
		out.Ranked = result.Ranked
		return nil
	})
	if err != nil {
		return domain.TickOutcome{}, err
	}

	metrics.CallsTransitioned.WithLabelValues(string(domain.CallStatusOpen)).Add(float64(out.Opened))
	metrics.CallsTransitioned.WithLabelValues(string(domain.CallStatusClosed)).Add(float64(out.Closed))
	return out, nil
}

// RunScheduledTick retries transient failures with a fixed delay and escalates
// through the recovery hook once attempts run out.
func (uc *lifecycleUsecase) RunScheduledTick(ctx context.Context) domain.TickOutcome {
	started := time.Now()
	defer func() { metrics.TransitionDuration.Observe(time.Since(started).Seconds()) }()

	policy := retry.Policy{
		MaxAttempts: uc.retry.MaxAttempts,
		Delay:       uc.retry.Delay,
		Sleep:       uc.retry.Sleep,
		Retryable: func(err error) bool {
			return errors.Is(err, domain.ErrTransientPersistence)
		},
		OnRetry: func(attempt int, err error) {
			metrics.TransitionRetries.Inc()
			uc.logger.Warn("call transition attempt failed, retrying",
				"attempt", attempt,
				"retry_in", uc.retry.Delay,
				"error", err,
			)
		},
	}

	var outcome domain.TickOutcome
	attempts, err := retry.Do(ctx, policy, func(ctx context.Context, attempt int) error {
		o, err := uc.TransitionDueCalls(ctx)
		if err != nil {
			return err
		}
		outcome = o
		return nil
	})
	outcome.Attempts = attempts

	if err != nil {
		outcome.Err = err
		label := metrics.OutcomeFailed
		var exhausted *retry.ExhaustedError
		if errors.As(err, &exhausted) {
			label = metrics.OutcomeExhausted
		}
		metrics.TransitionTicks.WithLabelValues(label).Inc()

		uc.recovery.Escalate(ctx, domain.TickFailure{
			Job:       JobCallTransition,
			Attempts:  attempts,
			LastError: err.Error(),
			FailedAt:  uc.clock.Now(),
		})
		return outcome
	}

	metrics.TransitionTicks.WithLabelValues(metrics.OutcomeSuccess).Inc()
	uc.logger.Info("call transition tick finished",
		"opened", outcome.Opened,
		"closed", outcome.Closed,
		"rescored", outcome.Rescored,
		"skipped", outcome.Skipped,
		"failed", outcome.Failed,
		"ranked", outcome.Ranked,
		"attempt", attempts,
	)
	return outcome
}
