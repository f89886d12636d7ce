package domain

import (
	"context"
	"time"
)

// Month is the calendar month a call is registered for. At most one
// non-rejected call per month and year may exist.
type Month string

const (
	January   Month = "JANUARY"
	February  Month = "FEBRUARY"
	March     Month = "MARCH"
	April     Month = "APRIL"
	May       Month = "MAY"
	June      Month = "JUNE"
	July      Month = "JULY"
	August    Month = "AUGUST"
	September Month = "SEPTEMBER"
	October   Month = "OCTOBER"
	November  Month = "NOVEMBER"
	December  Month = "DECEMBER"
)

var Months = []Month{
	January, February, March, April, May, June,
	July, August, September, October, November, December,
}

func (m Month) Valid() bool {
	for _, v := range Months {
		if v == m {
			return true
		}
	}
	return false
}

// CallStatus follows SCHEDULED -> OPEN -> CLOSED, with SCHEDULED -> REJECTED as
// a terminal side exit. OPEN and CLOSED are only ever set by the scheduled job.
type CallStatus string

const (
	CallStatusScheduled CallStatus = "SCHEDULED"
	CallStatusOpen      CallStatus = "OPEN"
	CallStatusClosed    CallStatus = "CLOSED"
	CallStatusRejected  CallStatus = "REJECTED"
)

// Call is a scholarship application window with a vacancy budget.
type Call struct {
	ID                  int64          `json:"id"`
	Month               Month          `json:"month"`
	Year                int            `json:"year"`
	StartDate           time.Time      `json:"start_date"`
	EndDate             time.Time      `json:"end_date"`
	Status              CallStatus     `json:"status"`
	VacancyCount        int            `json:"vacancy_count"`
	EvaluationMode      EvaluationMode `json:"evaluation_mode"`
	CreatedByEmployeeID int64          `json:"created_by_employee_id"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

// Overlaps reports whether [start, end) intersects the call's [StartDate, EndDate) window.
func (c *Call) Overlaps(start, end time.Time) bool {
	return start.Before(c.EndDate) && end.After(c.StartDate)
}

// CreateCallRequest is the payload staff submit to schedule a call.
type CreateCallRequest struct {
	Month          Month          `json:"month" validate:"required,call_month"`
	StartDate      string         `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate        string         `json:"end_date" validate:"required,datetime=2006-01-02"`
	VacancyCount   int            `json:"vacancy_count" validate:"required,gt=0,lte=1000"`
	EvaluationMode EvaluationMode `json:"evaluation_mode" validate:"required,evaluation_mode"`
}

// AuditEmployee is the display identity of the staff member behind a change.
type AuditEmployee struct {
	Code     string   `json:"code"`
	FullName string   `json:"full_name"`
	Roles    []string `json:"roles"`
}

type RegisteredCall struct {
	Call      *Call         `json:"call"`
	CreatedBy AuditEmployee `json:"created_by"`
}

// CallRepository defines data access for calls and their aggregate queries.
type CallRepository interface {
	Save(ctx context.Context, call *Call) error
	FindByID(ctx context.Context, id int64) (*Call, error)
	// FindOpenCall returns ErrNotFound when no call is open and
	// ErrMultipleOpenCalls when more than one is.
	FindOpenCall(ctx context.Context) (*Call, error)
	FindByYear(ctx context.Context, year int) ([]Call, error)
	// LockSchedule serializes call creation until the surrounding transaction ends.
	LockSchedule(ctx context.Context) error
	UpdateStatus(ctx context.Context, id int64, from, to CallStatus) error

	// Conditional bulk transitions. Each is a single statement and idempotent.
	BulkOpenDueCalls(ctx context.Context, today time.Time) (int64, error)
	BulkCloseExpiredCalls(ctx context.Context, today time.Time) (int64, error)
	FindMostRecentlyClosed(ctx context.Context, year int) (*Call, error)

	// Reporting
	CountApplicants(ctx context.Context, callID int64) (int64, error)
	GetRates(ctx context.Context, callID int64) (*CallRates, error)
	SocioeconomicRanking(ctx context.Context, callID int64, today time.Time) ([]RankingBucket, error)
	CycleRanking(ctx context.Context, callID int64) ([]RankingBucket, error)
	ProgramRanking(ctx context.Context, callID int64) ([]RankingBucket, error)
}

// CallUsecase defines staff and student facing operations on calls.
type CallUsecase interface {
	CreateCall(ctx context.Context, actor Actor, req CreateCallRequest) (*RegisteredCall, error)
	GetOpenCall(ctx context.Context) (*Call, error)
	GetCallHistory(ctx context.Context, year int) ([]Call, error)
	GetCallDetail(ctx context.Context, callID int64) (*CallDetail, error)
	RejectCall(ctx context.Context, actor Actor, callID int64) (*Call, error)
	ListApplicants(ctx context.Context, callID int64, q ApplicantQuery) (*PaginatedResult[Applicant], error)
}
