package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"scholarship-backend/internal/domain"
	"scholarship-backend/internal/metrics"
)

type rankingUsecase struct {
	callRepo domain.CallRepository
	appRepo  domain.ApplicationRepository
	source   domain.EvaluationSource
	tx       domain.TxManager
	clock    Clock
	logger   *slog.Logger
}

// NewRankingUsecase creates the applicant ranking engine
func NewRankingUsecase(
	callRepo domain.CallRepository,
	appRepo domain.ApplicationRepository,
	source domain.EvaluationSource,
	tx domain.TxManager,
	clock Clock,
	logger *slog.Logger,
) domain.RankingUsecase {
	return &rankingUsecase{
		callRepo: callRepo,
		appRepo:  appRepo,
		source:   source,
		tx:       tx,
		clock:    clock,
		logger:   logger.With("component", "ranking"),
	}
}

// Evaluate ranks the most recently closed call of the current year. Having no
// such call is not an error.
func (uc *rankingUsecase) Evaluate(ctx context.Context) (domain.EvaluationResult, error) {
	year := uc.clock.Today().Year()

	call, err := uc.callRepo.FindMostRecentlyClosed(ctx, year)
	if errors.Is(err, domain.ErrNotFound) {
		uc.logger.Info("no closed call this year, nothing to evaluate", "year", year)
		return domain.EvaluationResult{}, nil
	}
	if err != nil {
		return domain.EvaluationResult{}, fmt.Errorf("find most recently closed call: %w", err)
	}

	return uc.EvaluateCall(ctx, call)
}

// EvaluateCall scores every applicant of call, then flags winners in one bulk update.
func (uc *rankingUsecase) EvaluateCall(ctx context.Context, call *domain.Call) (domain.EvaluationResult, error) {
	result := domain.EvaluationResult{CallID: call.ID}
	if call.Status != domain.CallStatusClosed {
		return result, fmt.Errorf("%w: call %d is %s, only closed calls are evaluated", domain.ErrInvalidTransition, call.ID, call.Status)
	}

	log := uc.logger.With("call_id", call.ID, "evaluation_mode", call.EvaluationMode)

	ids, err := uc.appRepo.FindIDsByCall(ctx, call.ID)
	if err != nil {
		return result, fmt.Errorf("list applications of call %d: %w", call.ID, err)
	}
	if len(ids) == 0 {
		log.Info("call has no applicants")
		return result, nil
	}

	inputs, err := uc.source.FetchEvaluationInputs(ctx, ids, call.StartDate, uc.clock.Today())
	if err != nil {
		return result, fmt.Errorf("fetch evaluation inputs: %w", err)
	}

	mode := string(call.EvaluationMode)
	for _, in := range inputs {
		score, ok := domain.ComputeScore(call.EvaluationMode, in)

		// Savepoint per row keeps one failed write from aborting the batch.
		err := uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
			if !ok {
				// A score from an earlier run must not keep competing for a vacancy.
				return uc.appRepo.ClearScore(ctx, in.ApplicationID)
			}
			return uc.appRepo.UpdateScore(ctx, in.ApplicationID, score)
		})
		if err != nil {
			if errors.Is(err, domain.ErrTransientPersistence) {
				return result, fmt.Errorf("score application %d: %w", in.ApplicationID, err)
			}
			result.Failed++
			metrics.ApplicationsScored.WithLabelValues(mode, metrics.ResultFailed).Inc()
			log.Warn("failed to score applicant", "application_id", in.ApplicationID, "error", err)
			continue
		}

		if !ok {
			result.Skipped++
			metrics.ApplicationsScored.WithLabelValues(mode, metrics.ResultSkipped).Inc()
			log.Debug("applicant left unscored, missing inputs", "application_id", in.ApplicationID)
			continue
		}

		result.Rescored++
		metrics.ApplicationsScored.WithLabelValues(mode, metrics.ResultScored).Inc()
	}

	ranked, err := uc.appRepo.BulkRankAndFlag(ctx, call.ID)
	if err != nil {
		return result, fmt.Errorf("rank applicants of call %d: %w", call.ID, err)
	}
	result.Ranked = ranked

	log.Info("call evaluated",
		"rescored", result.Rescored,
		"skipped", result.Skipped,
		"failed", result.Failed,
		"ranked", result.Ranked,
	)
	return result, nil
}
