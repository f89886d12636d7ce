package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"scholarship-backend/internal/domain"
	"scholarship-backend/internal/usecase"
	"scholarship-backend/pkg/apperror"
	"scholarship-backend/pkg/validation"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type callFixture struct {
	calls     *MockCallRepo
	employees *MockEmployeeRepo
	apps      *MockApplicationRepo
	uc        domain.CallUsecase
}

func newCallFixture() *callFixture {
	f := &callFixture{
		calls:     new(MockCallRepo),
		employees: new(MockEmployeeRepo),
		apps:      new(MockApplicationRepo),
	}
	f.uc = usecase.NewCallUsecase(f.calls, f.employees, f.apps, &fakeTx{}, validation.New(), fixedClock(2026, 2, 10), quietLogger())
	return f
}

func staffActor() domain.Actor {
	return domain.Actor{UserID: uuid.MustParse("8f14e45f-ceea-467f-a0e6-6f1c7e1d2b3a"), Name: "Rosa", Roles: []string{domain.RoleSocial}}
}

func marchRequest() domain.CreateCallRequest {
	return domain.CreateCallRequest{
		Month:          domain.March,
		StartDate:      "2026-03-01",
		EndDate:        "2026-03-15",
		VacancyCount:   5,
		EvaluationMode: domain.EvaluationMixed,
	}
}

func assertAppError(t *testing.T, err error, status int, message string) {
	t.Helper()
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, status, appErr.Code)
	if message != "" {
		assert.Equal(t, message, appErr.Message)
	}
}

// expectSchedule stubs the locked conflict scan over the previous and current year.
func (f *callFixture) expectSchedule(previous, current []domain.Call) {
	f.calls.On("LockSchedule", mock.Anything).Return(nil)
	f.calls.On("FindByYear", mock.Anything, 2025).Return(previous, nil)
	f.calls.On("FindByYear", mock.Anything, 2026).Return(current, nil)
}

func TestCallUsecase_CreateCall(t *testing.T) {
	employee := &domain.Employee{ID: 4, Code: "E-004", FirstName: "Rosa", LastName: "Paredes"}

	t.Run("Should schedule the call and report the creator", func(t *testing.T) {
		f := newCallFixture()
		f.employees.On("FindByUserID", mock.Anything, staffActor().UserID).Return(employee, nil)
		f.expectSchedule(nil, []domain.Call{
			{ID: 1, Month: domain.February, Year: 2026, StartDate: date(2026, 2, 1), EndDate: date(2026, 2, 20), Status: domain.CallStatusOpen},
		})
		f.calls.On("Save", mock.Anything, mock.MatchedBy(func(c *domain.Call) bool {
			return c.Status == domain.CallStatusScheduled && c.Year == 2026 && c.CreatedByEmployeeID == 4
		})).Return(nil).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Call).ID = 9
		})

		registered, err := f.uc.CreateCall(context.Background(), staffActor(), marchRequest())

		require.NoError(t, err)
		assert.Equal(t, int64(9), registered.Call.ID)
		assert.Equal(t, date(2026, 3, 1), registered.Call.StartDate)
		assert.Equal(t, "Rosa Paredes", registered.CreatedBy.FullName)
		assert.Equal(t, []string{domain.RoleSocial}, registered.CreatedBy.Roles)
	})

	t.Run("Should reject an end date that is not after the start date", func(t *testing.T) {
		f := newCallFixture()
		req := marchRequest()
		req.EndDate = req.StartDate

		_, err := f.uc.CreateCall(context.Background(), staffActor(), req)

		assertAppError(t, err, http.StatusBadRequest, "end date must be after start date")
		f.calls.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("Should reject a second call for the same month", func(t *testing.T) {
		f := newCallFixture()
		f.employees.On("FindByUserID", mock.Anything, mock.Anything).Return(employee, nil)
		f.expectSchedule(nil, []domain.Call{
			{ID: 2, Month: domain.March, Year: 2026, StartDate: date(2026, 3, 20), EndDate: date(2026, 3, 30), Status: domain.CallStatusScheduled},
		})

		_, err := f.uc.CreateCall(context.Background(), staffActor(), marchRequest())

		assertAppError(t, err, http.StatusConflict, "a call is already registered for month MARCH")
	})

	t.Run("Should reject overlapping dates", func(t *testing.T) {
		f := newCallFixture()
		f.employees.On("FindByUserID", mock.Anything, mock.Anything).Return(employee, nil)
		f.expectSchedule(nil, []domain.Call{
			{ID: 2, Month: domain.February, Year: 2026, StartDate: date(2026, 2, 15), EndDate: date(2026, 3, 5), Status: domain.CallStatusScheduled},
		})

		_, err := f.uc.CreateCall(context.Background(), staffActor(), marchRequest())

		assertAppError(t, err, http.StatusConflict, "the selected dates overlap another scheduled call")
	})

	t.Run("Should ignore rejected calls when checking conflicts", func(t *testing.T) {
		f := newCallFixture()
		f.employees.On("FindByUserID", mock.Anything, mock.Anything).Return(employee, nil)
		f.expectSchedule(nil, []domain.Call{
			{ID: 2, Month: domain.March, Year: 2026, StartDate: date(2026, 3, 1), EndDate: date(2026, 3, 15), Status: domain.CallStatusRejected},
		})
		f.calls.On("Save", mock.Anything, mock.Anything).Return(nil)

		_, err := f.uc.CreateCall(context.Background(), staffActor(), marchRequest())

		assert.NoError(t, err)
	})

	t.Run("Should take the schedule lock before scanning for conflicts", func(t *testing.T) {
		f := newCallFixture()
		f.employees.On("FindByUserID", mock.Anything, mock.Anything).Return(employee, nil)
		f.expectSchedule(nil, nil)
		f.calls.On("Save", mock.Anything, mock.Anything).Return(nil)

		_, err := f.uc.CreateCall(context.Background(), staffActor(), marchRequest())

		require.NoError(t, err)
		require.GreaterOrEqual(t, len(f.calls.Calls), 2)
		assert.Equal(t, "LockSchedule", f.calls.Calls[0].Method)
		assert.Equal(t, "FindByYear", f.calls.Calls[1].Method)
	})

	t.Run("Should reject overlap with a call that started the previous year", func(t *testing.T) {
		f := newCallFixture()
		f.employees.On("FindByUserID", mock.Anything, mock.Anything).Return(employee, nil)
		f.expectSchedule([]domain.Call{
			{ID: 3, Month: domain.December, Year: 2025, StartDate: date(2025, 12, 20), EndDate: date(2026, 1, 20), Status: domain.CallStatusScheduled},
		}, nil)
		req := marchRequest()
		req.Month = domain.January
		req.StartDate = "2026-01-05"
		req.EndDate = "2026-02-01"

		_, err := f.uc.CreateCall(context.Background(), staffActor(), req)

		assertAppError(t, err, http.StatusConflict, "the selected dates overlap another scheduled call")
		f.calls.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("Should allow the same month of the previous year", func(t *testing.T) {
		f := newCallFixture()
		f.employees.On("FindByUserID", mock.Anything, mock.Anything).Return(employee, nil)
		f.expectSchedule([]domain.Call{
			{ID: 3, Month: domain.March, Year: 2025, StartDate: date(2025, 3, 1), EndDate: date(2025, 3, 15), Status: domain.CallStatusClosed},
		}, nil)
		f.calls.On("Save", mock.Anything, mock.Anything).Return(nil)

		_, err := f.uc.CreateCall(context.Background(), staffActor(), marchRequest())

		assert.NoError(t, err)
	})

	t.Run("Should report a month taken by a concurrent request as a conflict", func(t *testing.T) {
		f := newCallFixture()
		f.employees.On("FindByUserID", mock.Anything, mock.Anything).Return(employee, nil)
		f.expectSchedule(nil, nil)
		f.calls.On("Save", mock.Anything, mock.Anything).Return(domain.ErrCallMonthTaken)

		_, err := f.uc.CreateCall(context.Background(), staffActor(), marchRequest())

		assertAppError(t, err, http.StatusConflict, "a call is already registered for month MARCH")
	})

	t.Run("Should report an overlap caught by storage as a conflict", func(t *testing.T) {
		f := newCallFixture()
		f.employees.On("FindByUserID", mock.Anything, mock.Anything).Return(employee, nil)
		f.expectSchedule(nil, nil)
		f.calls.On("Save", mock.Anything, mock.Anything).Return(domain.ErrCallOverlap)

		_, err := f.uc.CreateCall(context.Background(), staffActor(), marchRequest())

		assertAppError(t, err, http.StatusConflict, "the selected dates overlap another scheduled call")
	})

	t.Run("Should fail when the schedule lock cannot be taken", func(t *testing.T) {
		f := newCallFixture()
		f.employees.On("FindByUserID", mock.Anything, mock.Anything).Return(employee, nil)
		f.calls.On("LockSchedule", mock.Anything).Return(errors.New("connection reset"))

		_, err := f.uc.CreateCall(context.Background(), staffActor(), marchRequest())

		assertAppError(t, err, http.StatusInternalServerError, "")
		f.calls.AssertNotCalled(t, "FindByYear", mock.Anything, mock.Anything)
	})

	t.Run("Should fail validation for an unknown month", func(t *testing.T) {
		f := newCallFixture()
		req := marchRequest()
		req.Month = "MARZO"

		_, err := f.uc.CreateCall(context.Background(), staffActor(), req)

		assertAppError(t, err, http.StatusBadRequest, "")
	})

	t.Run("Should require a linked employee", func(t *testing.T) {
		f := newCallFixture()
		f.employees.On("FindByUserID", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)

		_, err := f.uc.CreateCall(context.Background(), staffActor(), marchRequest())

		assertAppError(t, err, http.StatusNotFound, "")
	})
}

func TestCallUsecase_GetOpenCall(t *testing.T) {
	t.Run("Should return the open call", func(t *testing.T) {
		f := newCallFixture()
		f.calls.On("FindOpenCall", mock.Anything).Return(&domain.Call{ID: 3, Status: domain.CallStatusOpen}, nil)

		call, err := f.uc.GetOpenCall(context.Background())

		require.NoError(t, err)
		assert.Equal(t, int64(3), call.ID)
	})

	t.Run("Should report not found when no call is open", func(t *testing.T) {
		f := newCallFixture()
		f.calls.On("FindOpenCall", mock.Anything).Return(nil, domain.ErrNotFound)

		_, err := f.uc.GetOpenCall(context.Background())

		assertAppError(t, err, http.StatusNotFound, "there is no open call")
	})

	t.Run("Should surface a broken single-open invariant as a conflict", func(t *testing.T) {
		f := newCallFixture()
		f.calls.On("FindOpenCall", mock.Anything).Return(nil, domain.ErrMultipleOpenCalls)

		_, err := f.uc.GetOpenCall(context.Background())

		assertAppError(t, err, http.StatusConflict, "more than one call is open")
		assert.ErrorIs(t, err, domain.ErrMultipleOpenCalls)
	})
}

func TestCallUsecase_GetCallHistory(t *testing.T) {
	f := newCallFixture()
	f.calls.On("FindByYear", mock.Anything, 2025).Return(nil, nil)

	calls, err := f.uc.GetCallHistory(context.Background(), 2025)

	require.NoError(t, err)
	assert.NotNil(t, calls)
	assert.Empty(t, calls)

	_, err = f.uc.GetCallHistory(context.Background(), 0)
	assertAppError(t, err, http.StatusBadRequest, "")
}

func TestCallUsecase_GetCallDetail(t *testing.T) {
	t.Run("Should assemble counts, rates and rankings", func(t *testing.T) {
		f := newCallFixture()
		fill := 0.5
		f.calls.On("FindByID", mock.Anything, int64(3)).Return(&domain.Call{ID: 3, Status: domain.CallStatusClosed}, nil)
		f.calls.On("CountApplicants", mock.Anything, int64(3)).Return(int64(12), nil)
		f.calls.On("GetRates", mock.Anything, int64(3)).Return(&domain.CallRates{AcceptanceRate: 0.25, VacancyFillRate: &fill, EnrollmentRate: 1}, nil)
		f.calls.On("SocioeconomicRanking", mock.Anything, int64(3), date(2026, 2, 10)).Return([]domain.RankingBucket{{Label: "POOR", Count: 7}}, nil)
		f.calls.On("CycleRanking", mock.Anything, int64(3)).Return([]domain.RankingBucket{{Label: "5", Count: 4}}, nil)
		f.calls.On("ProgramRanking", mock.Anything, int64(3)).Return([]domain.RankingBucket{{Label: domain.NoneLabel, Count: 2}}, nil)

		detail, err := f.uc.GetCallDetail(context.Background(), 3)

		require.NoError(t, err)
		assert.Equal(t, int64(12), detail.ApplicantCount)
		assert.Equal(t, 0.25, detail.Rates.AcceptanceRate)
		assert.Equal(t, "POOR", detail.SocioeconomicRanking[0].Label)
		assert.Equal(t, domain.NoneLabel, detail.ProgramRanking[0].Label)
	})

	t.Run("Should report an unknown call", func(t *testing.T) {
		f := newCallFixture()
		f.calls.On("FindByID", mock.Anything, int64(99)).Return(nil, domain.ErrNotFound)

		_, err := f.uc.GetCallDetail(context.Background(), 99)

		assertAppError(t, err, http.StatusNotFound, "call not found")
	})
}

func TestCallUsecase_RejectCall(t *testing.T) {
	t.Run("Should reject a scheduled call", func(t *testing.T) {
		f := newCallFixture()
		f.calls.On("FindByID", mock.Anything, int64(5)).Return(&domain.Call{ID: 5, Status: domain.CallStatusScheduled}, nil)
		f.calls.On("UpdateStatus", mock.Anything, int64(5), domain.CallStatusScheduled, domain.CallStatusRejected).Return(nil)

		call, err := f.uc.RejectCall(context.Background(), staffActor(), 5)

		require.NoError(t, err)
		assert.Equal(t, domain.CallStatusRejected, call.Status)
	})

	t.Run("Should refuse to reject an open call", func(t *testing.T) {
		f := newCallFixture()
		f.calls.On("FindByID", mock.Anything, int64(5)).Return(&domain.Call{ID: 5, Status: domain.CallStatusOpen}, nil)

		_, err := f.uc.RejectCall(context.Background(), staffActor(), 5)

		assertAppError(t, err, http.StatusConflict, "")
		f.calls.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should report a conflict when the scheduler won the race", func(t *testing.T) {
		f := newCallFixture()
		f.calls.On("FindByID", mock.Anything, int64(5)).Return(&domain.Call{ID: 5, Status: domain.CallStatusScheduled}, nil)
		f.calls.On("UpdateStatus", mock.Anything, int64(5), mock.Anything, mock.Anything).Return(domain.ErrInvalidTransition)

		_, err := f.uc.RejectCall(context.Background(), staffActor(), 5)

		assertAppError(t, err, http.StatusConflict, "only scheduled calls can be rejected")
	})
}

func TestCallUsecase_ListApplicants(t *testing.T) {
	t.Run("Should apply paging defaults", func(t *testing.T) {
		f := newCallFixture()
		f.calls.On("FindByID", mock.Anything, int64(3)).Return(&domain.Call{ID: 3}, nil)
		want := domain.ApplicantQuery{Page: 1, PageSize: 10, SortBy: domain.SortSubmittedDate}
		f.apps.On("ListByCall", mock.Anything, int64(3), want).Return([]domain.Applicant{{ApplicationID: 1}}, int64(21), nil)

		page, err := f.uc.ListApplicants(context.Background(), 3, domain.ApplicantQuery{})

		require.NoError(t, err)
		assert.Equal(t, int64(21), page.Total)
		assert.Equal(t, 3, page.TotalPages)
		assert.Len(t, page.Data, 1)
	})

	t.Run("Should reject an unknown sort field", func(t *testing.T) {
		f := newCallFixture()

		_, err := f.uc.ListApplicants(context.Background(), 3, domain.ApplicantQuery{SortBy: "name"})

		assertAppError(t, err, http.StatusBadRequest, "")
		f.calls.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("Should surface storage errors as internal", func(t *testing.T) {
		f := newCallFixture()
		f.calls.On("FindByID", mock.Anything, int64(3)).Return(&domain.Call{ID: 3}, nil)
		f.apps.On("ListByCall", mock.Anything, int64(3), mock.Anything).Return(nil, int64(0), errors.New("timeout"))

		_, err := f.uc.ListApplicants(context.Background(), 3, domain.ApplicantQuery{SortBy: domain.SortOverallScore, Desc: true})

		assertAppError(t, err, http.StatusInternalServerError, "")
	})
}
