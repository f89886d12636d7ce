package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"scholarship-backend/internal/domain"
	"scholarship-backend/pkg/apperror"
	"scholarship-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type callUsecase struct {
	callRepo     domain.CallRepository
	employeeRepo domain.EmployeeRepository
	appRepo      domain.ApplicationRepository
	tx           domain.TxManager
	validate     *validator.Validate
	clock        Clock
	logger       *slog.Logger
}

// NewCallUsecase creates a new call usecase
func NewCallUsecase(
	callRepo domain.CallRepository,
	employeeRepo domain.EmployeeRepository,
	appRepo domain.ApplicationRepository,
	tx domain.TxManager,
	validate *validator.Validate,
	clock Clock,
	logger *slog.Logger,
) domain.CallUsecase {
	return &callUsecase{
		callRepo:     callRepo,
		employeeRepo: employeeRepo,
		appRepo:      appRepo,
		tx:           tx,
		validate:     validate,
		clock:        clock,
		logger:       logger.With("component", "calls"),
	}
}

// CreateCall schedules a new call on behalf of a staff member
func (uc *callUsecase) CreateCall(ctx context.Context, actor domain.Actor, req domain.CreateCallRequest) (*domain.RegisteredCall, error) {
	// 1. Shape validation
	if err := uc.validate.Struct(req); err != nil {
		return nil, apperror.BadRequest(validation.Message(err))
	}
	start, err := domain.ParseDate(req.StartDate)
	if err != nil {
		return nil, apperror.BadRequest("Start date: must be a date formatted as YYYY-MM-DD")
	}
	end, err := domain.ParseDate(req.EndDate)
	if err != nil {
		return nil, apperror.BadRequest("End date: must be a date formatted as YYYY-MM-DD")
	}
	if !end.After(start) {
		return nil, apperror.BadRequest("end date must be after start date")
	}

	// 2. Resolve the staff member recorded as creator
	employee, err := uc.employeeRepo.FindByUserID(ctx, actor.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.NotFound("no employee is linked to the authenticated user")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}

	call := &domain.Call{
		Month:               req.Month,
		Year:                start.Year(),
		StartDate:           start,
		EndDate:             end,
		Status:              domain.CallStatusScheduled,
		VacancyCount:        req.VacancyCount,
		EvaluationMode:      req.EvaluationMode,
		CreatedByEmployeeID: employee.ID,
	}

	// 3. Conflict checks and insert run under the schedule lock
	err = uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := uc.callRepo.LockSchedule(ctx); err != nil {
			return err
		}
		// Calls starting late in the previous year can still run into this one.
		existing, err := uc.callRepo.FindByYear(ctx, call.Year-1)
		if err != nil {
			return err
		}
		current, err := uc.callRepo.FindByYear(ctx, call.Year)
		if err != nil {
			return err
		}
		if err := checkCallConflicts(append(existing, current...), call); err != nil {
			return err
		}
		return uc.callRepo.Save(ctx, call)
	})
	if err != nil {
		var appErr *apperror.AppError
		switch {
		case errors.As(err, &appErr):
			return nil, appErr
		case errors.Is(err, domain.ErrCallMonthTaken):
			return nil, monthTakenError(call.Month)
		case errors.Is(err, domain.ErrCallOverlap):
			return nil, apperror.Conflict(overlapMessage)
		}
		return nil, apperror.Internal(err)
	}

	uc.logger.Info("call scheduled",
		"call_id", call.ID,
		"month", call.Month,
		"year", call.Year,
		"employee_code", employee.Code,
	)

	return &domain.RegisteredCall{
		Call: call,
		CreatedBy: domain.AuditEmployee{
			Code:     employee.Code,
			FullName: employee.FullName(),
			Roles:    actor.Roles,
		},
	}, nil
}

const overlapMessage = "the selected dates overlap another scheduled call"

func monthTakenError(month domain.Month) *apperror.AppError {
	return apperror.Conflict(fmt.Sprintf("a call is already registered for month %s", month))
}

// checkCallConflicts reports the month clash first, then any date overlap.
// Months only clash within the same year. Rejected calls never conflict.
func checkCallConflicts(existing []domain.Call, call *domain.Call) error {
	for _, c := range existing {
		if c.Status != domain.CallStatusRejected && c.Year == call.Year && c.Month == call.Month {
			return monthTakenError(call.Month)
		}
	}
	for _, c := range existing {
		if c.Status != domain.CallStatusRejected && c.Overlaps(call.StartDate, call.EndDate) {
			return apperror.Conflict(overlapMessage)
		}
	}
	return nil
}

func (uc *callUsecase) GetOpenCall(ctx context.Context) (*domain.Call, error) {
	call, err := uc.callRepo.FindOpenCall(ctx)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil, apperror.NotFound("there is no open call")
	case errors.Is(err, domain.ErrMultipleOpenCalls):
		uc.logger.Error("storage holds more than one open call")
		return nil, apperror.New(http.StatusConflict, "more than one call is open", err)
	case err != nil:
		return nil, apperror.Internal(err)
	}
	return call, nil
}

func (uc *callUsecase) GetCallHistory(ctx context.Context, year int) ([]domain.Call, error) {
	if year < 1 {
		return nil, apperror.BadRequest("year must be a positive number")
	}
	calls, err := uc.callRepo.FindByYear(ctx, year)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if calls == nil {
		calls = []domain.Call{}
	}
	return calls, nil
}

// GetCallDetail assembles the staff report for a call
func (uc *callUsecase) GetCallDetail(ctx context.Context, callID int64) (*domain.CallDetail, error) {
	call, err := uc.findCall(ctx, callID)
	if err != nil {
		return nil, err
	}

	detail := &domain.CallDetail{Call: call}

	if detail.ApplicantCount, err = uc.callRepo.CountApplicants(ctx, callID); err != nil {
		return nil, apperror.Internal(err)
	}
	rates, err := uc.callRepo.GetRates(ctx, callID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	detail.Rates = *rates

	if detail.SocioeconomicRanking, err = uc.callRepo.SocioeconomicRanking(ctx, callID, uc.clock.Today()); err != nil {
		return nil, apperror.Internal(err)
	}
	if detail.CycleRanking, err = uc.callRepo.CycleRanking(ctx, callID); err != nil {
		return nil, apperror.Internal(err)
	}
	if detail.ProgramRanking, err = uc.callRepo.ProgramRanking(ctx, callID); err != nil {
		return nil, apperror.Internal(err)
	}

	return detail, nil
}

// RejectCall cancels a call that has not opened yet
func (uc *callUsecase) RejectCall(ctx context.Context, actor domain.Actor, callID int64) (*domain.Call, error) {
	call, err := uc.findCall(ctx, callID)
	if err != nil {
		return nil, err
	}
	if call.Status != domain.CallStatusScheduled {
		return nil, apperror.Conflict(fmt.Sprintf("only scheduled calls can be rejected, this call is %s", call.Status))
	}

	err = uc.callRepo.UpdateStatus(ctx, callID, domain.CallStatusScheduled, domain.CallStatusRejected)
	if errors.Is(err, domain.ErrInvalidTransition) {
		// Opened by the scheduler between the read and the update.
		return nil, apperror.Conflict("only scheduled calls can be rejected")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}

	call.Status = domain.CallStatusRejected
	uc.logger.Info("call rejected", "call_id", callID, "user_id", actor.UserID)
	return call, nil
}

func (uc *callUsecase) ListApplicants(ctx context.Context, callID int64, q domain.ApplicantQuery) (*domain.PaginatedResult[domain.Applicant], error) {
	if err := uc.validate.Struct(q); err != nil {
		return nil, apperror.BadRequest(validation.Message(err))
	}
	if _, err := uc.findCall(ctx, callID); err != nil {
		return nil, err
	}

	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = defaultPageSize
	}
	if q.PageSize > maxPageSize {
		q.PageSize = maxPageSize
	}
	if q.SortBy == "" {
		q.SortBy = domain.SortSubmittedDate
	}

	applicants, total, err := uc.appRepo.ListByCall(ctx, callID, q)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return domain.NewPaginatedResult(applicants, total, q.Page, q.PageSize), nil
}

func (uc *callUsecase) findCall(ctx context.Context, callID int64) (*domain.Call, error) {
	call, err := uc.callRepo.FindByID(ctx, callID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.NotFound("call not found")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return call, nil
}
