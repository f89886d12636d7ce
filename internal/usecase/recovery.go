package usecase

import (
	"context"
	"log/slog"
	"time"

	"scholarship-backend/internal/domain"
)

type recoveryHook struct {
	repo     domain.SchedulerFailureRepository
	notifier domain.FailureNotifier
	logger   *slog.Logger
}

// NewRecoveryHook logs terminal job failures, records them and alerts operators.
// repo and notifier may be nil, in which case that step is skipped.
func NewRecoveryHook(repo domain.SchedulerFailureRepository, notifier domain.FailureNotifier, logger *slog.Logger) domain.RecoveryHook {
	return &recoveryHook{repo: repo, notifier: notifier, logger: logger.With("component", "recovery")}
}

func (h *recoveryHook) Escalate(ctx context.Context, f domain.TickFailure) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("recovery hook panicked", "panic", r)
		}
	}()

	h.logger.Error("scheduled job gave up, manual intervention required",
		"job", f.Job,
		"attempts", f.Attempts,
		"error", f.LastError,
	)

	// The tick's context may already be cancelled by shutdown.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if h.repo != nil {
		if err := h.repo.Record(ctx, &f); err != nil {
			h.logger.Error("failed to record scheduler failure", "job", f.Job, "error", err)
		}
	}
	if h.notifier != nil {
		if err := h.notifier.NotifyFailure(ctx, f); err != nil {
			h.logger.Error("failed to send scheduler failure alert", "job", f.Job, "error", err)
		}
	}
}
