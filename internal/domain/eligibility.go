package domain

import (
	"errors"
	"time"
)

const (
	MaxScholarshipsPerYear  = 3
	ActiveScholarshipMonths = 3
	MinimumEnrollmentGrade  = 15.0
)

// Eligibility refusals. Each maps to a distinct user-facing message.
var (
	ErrAlreadyApplied    = errors.New("you can only apply once to this call")
	ErrScholarshipCap    = errors.New("you reached the limit of 3 scholarships per year")
	ErrActiveScholarship = errors.New("you still have an active scholarship")
	ErrInsufficientGrade = errors.New("your latest enrollment grade must be at least 15")
)

// EligibilityFacts is what the checks read about a student before a new application.
type EligibilityFacts struct {
	AlreadyApplied   bool
	AcceptedThisYear int
	// LatestAccepted is the most recent accepted application this year, joined with its enrollment.
	LatestAccepted *Application
}

// CheckEligibility decides whether a student may apply. Rules run in order:
// duplicate, annual cap, active scholarship lock, minimum standing.
func CheckEligibility(f EligibilityFacts, today time.Time) error {
	if f.AlreadyApplied {
		return ErrAlreadyApplied
	}
	if f.AcceptedThisYear == 0 || f.LatestAccepted == nil {
		return nil
	}
	if f.AcceptedThisYear >= MaxScholarshipsPerYear {
		return ErrScholarshipCap
	}

	latest := f.LatestAccepted
	if !latest.Enrollment.Completed() && MonthsBetween(latest.SubmittedDate, today) <= ActiveScholarshipMonths {
		return ErrActiveScholarship
	}

	grade := 0.0
	if latest.Enrollment != nil && latest.Enrollment.Grade != nil {
		grade = *latest.Enrollment.Grade
	}
	if grade < MinimumEnrollmentGrade {
		return ErrInsufficientGrade
	}
	return nil
}
