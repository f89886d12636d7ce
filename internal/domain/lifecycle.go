package domain

import (
	"context"
	"time"
)

// TickOutcome is the structured record emitted by every scheduled transition.
type TickOutcome struct {
	Opened   int64 `json:"opened"`
	Closed   int64 `json:"closed"`
	Rescored int   `json:"rescored"`
	Skipped  int   `json:"skipped"`
	Failed   int   `json:"failed"`
	Ranked   int64 `json:"ranked"`
	Attempts int   `json:"attempts"`
	Err      error `json:"-"`
}

// TickFailure describes a scheduled run that could not complete.
type TickFailure struct {
	ID        int64     `json:"id"`
	Job       string    `json:"job"`
	Attempts  int       `json:"attempts"`
	LastError string    `json:"last_error"`
	FailedAt  time.Time `json:"failed_at"`
}

type SchedulerFailureRepository interface {
	Record(ctx context.Context, f *TickFailure) error
}

// FailureNotifier alerts operators about a terminal job failure.
type FailureNotifier interface {
	NotifyFailure(ctx context.Context, f TickFailure) error
}

// RecoveryHook escalates a terminal job failure for manual intervention.
// Implementations must not panic and have no error return.
type RecoveryHook interface {
	Escalate(ctx context.Context, f TickFailure)
}

// TxManager runs fn inside a transaction carried by the returned context.
// Nested calls run inside a savepoint of the outer transaction.
type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type LifecycleUsecase interface {
	// TransitionDueCalls runs one transition attempt: open due calls, close
	// expired ones, and evaluate when anything closed.
	TransitionDueCalls(ctx context.Context) (TickOutcome, error)
	// RunScheduledTick wraps TransitionDueCalls with retry and escalation. It never fails.
	RunScheduledTick(ctx context.Context) TickOutcome
}
