package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Application is one student's submission against one call.
type Application struct {
	ID            int64     `json:"id"`
	CallID        int64     `json:"call_id"`
	StudentID     uuid.UUID `json:"student_id"`
	SubmittedDate time.Time `json:"submitted_date"`
	CourseIDs     []int64   `json:"course_ids"`
	// OverallScore and Accepted are written only by the ranking engine.
	// Accepted is nil while pending.
	OverallScore *float64  `json:"overall_score,omitempty"`
	Accepted     *bool     `json:"accepted"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Joined data
	CallMonth  *Month      `json:"call_month,omitempty"`
	Enrollment *Enrollment `json:"enrollment,omitempty"`
}

func (a *Application) IsAccepted() bool {
	return a.Accepted != nil && *a.Accepted
}

type EnrollmentStatus string

const (
	EnrollmentStatusPending  EnrollmentStatus = "PENDING"
	EnrollmentStatusAccepted EnrollmentStatus = "ACCEPTED"
)

// Enrollment records a scholarship holder's enrollment in the awarded courses.
type Enrollment struct {
	ID            int64            `json:"id"`
	ApplicationID int64            `json:"application_id"`
	Status        EnrollmentStatus `json:"status"`
	Grade         *float64         `json:"grade,omitempty"`
}

// Completed reports whether the enrollment was accepted. A nil enrollment is not completed.
func (e *Enrollment) Completed() bool {
	return e != nil && e.Status == EnrollmentStatusAccepted
}

type ApplyRequest struct {
	CallID    int64   `json:"call_id" validate:"required,gt=0"`
	CourseIDs []int64 `json:"course_ids" validate:"required,min=1,max=3,unique,dive,gt=0"`
}

// Applicant is a row of the per-call applicant listing.
type Applicant struct {
	ApplicationID int64     `json:"application_id"`
	StudentID     uuid.UUID `json:"student_id"`
	StudentCode   string    `json:"student_code"`
	FullName      string    `json:"full_name"`
	Program       *string   `json:"program,omitempty"`
	SubmittedDate time.Time `json:"submitted_date"`
	OverallScore  *float64  `json:"overall_score,omitempty"`
	Accepted      *bool     `json:"accepted"`
}

// Sortable applicant columns.
const (
	SortSubmittedDate = "submitted_date"
	SortOverallScore  = "overall_score"
	SortAccepted      = "accepted"
)

type ApplicantQuery struct {
	Page     int    `form:"page" validate:"gte=0"`
	PageSize int    `form:"page_size" validate:"gte=0,lte=100"`
	SortBy   string `form:"sort_by" validate:"omitempty,sort_field"`
	Desc     bool   `form:"desc"`
}

// ApplicationRepository defines data access methods for applications
type ApplicationRepository interface {
	Create(ctx context.Context, app *Application) error
	FindByID(ctx context.Context, id int64) (*Application, error)
	FindByStudentAndYear(ctx context.Context, studentID uuid.UUID, year int) ([]Application, error)
	ListByCall(ctx context.Context, callID int64, q ApplicantQuery) ([]Applicant, int64, error)

	// Eligibility reads
	ExistsByStudentAndCall(ctx context.Context, studentID uuid.UUID, callID int64) (bool, error)
	CountAcceptedInYear(ctx context.Context, studentID uuid.UUID, year int) (int, error)
	// FindMostRecentAcceptedInYear returns the latest accepted application with its enrollment, if any.
	FindMostRecentAcceptedInYear(ctx context.Context, studentID uuid.UUID, year int) (*Application, error)

	// Ranking
	FindIDsByCall(ctx context.Context, callID int64) ([]int64, error)
	UpdateScore(ctx context.Context, id int64, score float64) error
	// ClearScore drops a score left by an earlier evaluation. No-op when already unscored.
	ClearScore(ctx context.Context, id int64) error
	// BulkRankAndFlag marks the top vacancy_count scored applicants accepted and
	// every other applicant rejected, in one statement.
	BulkRankAndFlag(ctx context.Context, callID int64) (int64, error)
}

// ApplicationUsecase defines business logic for applications
type ApplicationUsecase interface {
	Apply(ctx context.Context, actor Actor, req ApplyRequest) (*Application, error)
	CheckEligibility(ctx context.Context, studentID uuid.UUID, callID int64) error
	GetApplication(ctx context.Context, actor Actor, id int64) (*Application, error)
	GetMyHistory(ctx context.Context, actor Actor, year int) ([]Application, error)
	GetStudentYear(ctx context.Context, studentID uuid.UUID, year int) (*StudentYear, error)
}
