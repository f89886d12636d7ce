package domain

import (
	"context"
	"time"
)

// EvaluationMode selects the scoring formula a call applies to its applicants.
type EvaluationMode string

const (
	EvaluationWeightedAverage EvaluationMode = "WEIGHTED_AVERAGE"
	EvaluationSocioeconomic   EvaluationMode = "SOCIOECONOMIC"
	EvaluationMixed           EvaluationMode = "MIXED"
)

func (m EvaluationMode) Valid() bool {
	switch m {
	case EvaluationWeightedAverage, EvaluationSocioeconomic, EvaluationMixed:
		return true
	}
	return false
}

// SocioeconomicTier is the outcome of a socioeconomic evaluation. Higher need scores higher.
type SocioeconomicTier string

const (
	TierPoor SocioeconomicTier = "POOR"
	TierFair SocioeconomicTier = "FAIR"
	TierGood SocioeconomicTier = "GOOD"
)

func (t SocioeconomicTier) Value() (int, bool) {
	switch t {
	case TierPoor:
		return 20, true
	case TierFair:
		return 15, true
	case TierGood:
		return 10, true
	}
	return 0, false
}

// SocioeconomicValidityMonths is how long an evaluation stays usable after issuance.
const SocioeconomicValidityMonths = 5

// EvaluationInput carries the raw per-applicant data a score is computed from.
// Either field is nil when the source record is missing.
type EvaluationInput struct {
	ApplicationID      int64
	WeightedAverage    *float64
	SocioeconomicValue *int
}

// ComputeScore applies mode to in. It reports false when a required input is
// missing, in which case the applicant stays unscored.
func ComputeScore(mode EvaluationMode, in EvaluationInput) (float64, bool) {
	switch mode {
	case EvaluationWeightedAverage:
		if in.WeightedAverage == nil {
			return 0, false
		}
		return *in.WeightedAverage, true
	case EvaluationSocioeconomic:
		if in.SocioeconomicValue == nil {
			return 0, false
		}
		return float64(*in.SocioeconomicValue), true
	case EvaluationMixed:
		if in.WeightedAverage == nil || in.SocioeconomicValue == nil {
			return 0, false
		}
		return (*in.WeightedAverage + float64(*in.SocioeconomicValue)) / 2, true
	}
	return 0, false
}

// EvaluationResult summarizes one ranking run.
type EvaluationResult struct {
	CallID   int64 `json:"call_id"`
	Rescored int   `json:"rescored"`
	Skipped  int   `json:"skipped"`
	Failed   int   `json:"failed"`
	Ranked   int64 `json:"ranked"`
}

// EvaluationSource supplies scoring inputs. referenceDate selects the academic
// period (latest one ending before it); today bounds socioeconomic validity.
type EvaluationSource interface {
	FetchEvaluationInputs(ctx context.Context, applicationIDs []int64, referenceDate, today time.Time) ([]EvaluationInput, error)
}

type RankingUsecase interface {
	// Evaluate scores and ranks the most recently closed call of the current year.
	Evaluate(ctx context.Context) (EvaluationResult, error)
	EvaluateCall(ctx context.Context, call *Call) (EvaluationResult, error)
}
