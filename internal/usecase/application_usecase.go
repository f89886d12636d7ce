package usecase

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"scholarship-backend/internal/domain"
	"scholarship-backend/pkg/apperror"
	"scholarship-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type applicationUsecase struct {
	appRepo     domain.ApplicationRepository
	callRepo    domain.CallRepository
	studentRepo domain.StudentRepository
	courseRepo  domain.CourseRepository
	validate    *validator.Validate
	clock       Clock
	logger      *slog.Logger
}

// NewApplicationUsecase creates a new application usecase
func NewApplicationUsecase(
	appRepo domain.ApplicationRepository,
	callRepo domain.CallRepository,
	studentRepo domain.StudentRepository,
	courseRepo domain.CourseRepository,
	validate *validator.Validate,
	clock Clock,
	logger *slog.Logger,
) domain.ApplicationUsecase {
	return &applicationUsecase{
		appRepo:     appRepo,
		callRepo:    callRepo,
		studentRepo: studentRepo,
		courseRepo:  courseRepo,
		validate:    validate,
		clock:       clock,
		logger:      logger.With("component", "applications"),
	}
}

// Apply submits the authenticated student's application to an open call
func (uc *applicationUsecase) Apply(ctx context.Context, actor domain.Actor, req domain.ApplyRequest) (*domain.Application, error) {
	// 1. Validate request
	if err := uc.validate.Struct(req); err != nil {
		return nil, apperror.BadRequest(validation.Message(err))
	}

	// 2. Validate call exists and is open
	call, err := uc.callRepo.FindByID(ctx, req.CallID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.NotFound("call not found")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if call.Status != domain.CallStatusOpen {
		return nil, apperror.BadRequest("the call is not open")
	}

	// 3. Resolve the student behind the token
	student, err := uc.studentFor(ctx, actor)
	if err != nil {
		return nil, err
	}

	// 4. Eligibility rules
	if err := uc.CheckEligibility(ctx, student.ID, call.ID); err != nil {
		return nil, err
	}

	// 5. Every course must exist
	found, err := uc.courseRepo.CountExisting(ctx, req.CourseIDs)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if found != len(req.CourseIDs) {
		return nil, apperror.NotFound("one or more courses were not found")
	}

	app := &domain.Application{
		CallID:        call.ID,
		StudentID:     student.ID,
		SubmittedDate: uc.clock.Today(),
		CourseIDs:     req.CourseIDs,
	}
	if err := uc.appRepo.Create(ctx, app); err != nil {
		// Lost a race against a concurrent submission.
		if errors.Is(err, domain.ErrAlreadyApplied) {
			return nil, apperror.New(http.StatusBadRequest, err.Error(), err)
		}
		return nil, apperror.Internal(err)
	}

	month := call.Month
	app.CallMonth = &month
	uc.logger.Info("application submitted", "application_id", app.ID, "call_id", call.ID, "student_id", student.ID)
	return app, nil
}

// CheckEligibility gathers the student's history for the current year and
// applies the eligibility rules to it.
func (uc *applicationUsecase) CheckEligibility(ctx context.Context, studentID uuid.UUID, callID int64) error {
	today := uc.clock.Today()
	year := today.Year()

	exists, err := uc.appRepo.ExistsByStudentAndCall(ctx, studentID, callID)
	if err != nil {
		return apperror.Internal(err)
	}

	facts := domain.EligibilityFacts{AlreadyApplied: exists}
	if !exists {
		if facts.AcceptedThisYear, err = uc.appRepo.CountAcceptedInYear(ctx, studentID, year); err != nil {
			return apperror.Internal(err)
		}
		if facts.AcceptedThisYear > 0 {
			latest, err := uc.appRepo.FindMostRecentAcceptedInYear(ctx, studentID, year)
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return apperror.Internal(err)
			}
			facts.LatestAccepted = latest
		}
	}

	if err := domain.CheckEligibility(facts, today); err != nil {
		return apperror.New(http.StatusBadRequest, err.Error(), err)
	}
	return nil
}

// GetApplication returns an application. Students only see their own.
func (uc *applicationUsecase) GetApplication(ctx context.Context, actor domain.Actor, id int64) (*domain.Application, error) {
	app, err := uc.appRepo.FindByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.NotFound("application not found")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}

	if actor.IsStaff() {
		return app, nil
	}

	student, err := uc.studentFor(ctx, actor)
	if err != nil {
		return nil, err
	}
	if app.StudentID != student.ID {
		// Same response as a missing row so ids cannot be discovered.
		return nil, apperror.NotFound("application not found")
	}
	return app, nil
}

func (uc *applicationUsecase) GetMyHistory(ctx context.Context, actor domain.Actor, year int) ([]domain.Application, error) {
	if year < 1 {
		return nil, apperror.BadRequest("year must be a positive number")
	}
	student, err := uc.studentFor(ctx, actor)
	if err != nil {
		return nil, err
	}

	apps, err := uc.appRepo.FindByStudentAndYear(ctx, student.ID, year)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if apps == nil {
		apps = []domain.Application{}
	}
	return apps, nil
}

// GetStudentYear is the staff view of a student's applications in a year
func (uc *applicationUsecase) GetStudentYear(ctx context.Context, studentID uuid.UUID, year int) (*domain.StudentYear, error) {
	if year < 1 {
		return nil, apperror.BadRequest("year must be a positive number")
	}
	student, err := uc.studentRepo.FindByID(ctx, studentID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.NotFound("student not found")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}

	apps, err := uc.appRepo.FindByStudentAndYear(ctx, studentID, year)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	record := &domain.StudentYear{
		Student:      student,
		Year:         year,
		Applications: []domain.Application{},
	}
	for _, a := range apps {
		if a.IsAccepted() {
			record.Scholarships++
		}
		record.Applications = append(record.Applications, a)
	}
	return record, nil
}

func (uc *applicationUsecase) studentFor(ctx context.Context, actor domain.Actor) (*domain.Student, error) {
	student, err := uc.studentRepo.FindByUserID(ctx, actor.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.Forbidden("no student is linked to the authenticated user")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return student, nil
}
