package usecase_test

import (
	"context"
	"log/slog"
	"time"

	"scholarship-backend/internal/domain"
	"scholarship-backend/internal/usecase"
	"scholarship-backend/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Mock Repositories
type MockCallRepo struct {
	mock.Mock
}

func (m *MockCallRepo) Save(ctx context.Context, call *domain.Call) error {
	return m.Called(ctx, call).Error(0)
}

func (m *MockCallRepo) FindByID(ctx context.Context, id int64) (*domain.Call, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Call), args.Error(1)
}

func (m *MockCallRepo) FindOpenCall(ctx context.Context) (*domain.Call, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Call), args.Error(1)
}

func (m *MockCallRepo) FindByYear(ctx context.Context, year int) ([]domain.Call, error) {
	args := m.Called(ctx, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Call), args.Error(1)
}

func (m *MockCallRepo) LockSchedule(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockCallRepo) UpdateStatus(ctx context.Context, id int64, from, to domain.CallStatus) error {
	return m.Called(ctx, id, from, to).Error(0)
}

func (m *MockCallRepo) BulkOpenDueCalls(ctx context.Context, today time.Time) (int64, error) {
	args := m.Called(ctx, today)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCallRepo) BulkCloseExpiredCalls(ctx context.Context, today time.Time) (int64, error) {
	args := m.Called(ctx, today)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCallRepo) FindMostRecentlyClosed(ctx context.Context, year int) (*domain.Call, error) {
	args := m.Called(ctx, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Call), args.Error(1)
}

func (m *MockCallRepo) CountApplicants(ctx context.Context, callID int64) (int64, error) {
	args := m.Called(ctx, callID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCallRepo) GetRates(ctx context.Context, callID int64) (*domain.CallRates, error) {
	args := m.Called(ctx, callID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CallRates), args.Error(1)
}

func (m *MockCallRepo) SocioeconomicRanking(ctx context.Context, callID int64, today time.Time) ([]domain.RankingBucket, error) {
	args := m.Called(ctx, callID, today)
	return buckets(args.Get(0)), args.Error(1)
}

func (m *MockCallRepo) CycleRanking(ctx context.Context, callID int64) ([]domain.RankingBucket, error) {
	args := m.Called(ctx, callID)
	return buckets(args.Get(0)), args.Error(1)
}

func (m *MockCallRepo) ProgramRanking(ctx context.Context, callID int64) ([]domain.RankingBucket, error) {
	args := m.Called(ctx, callID)
	return buckets(args.Get(0)), args.Error(1)
}

func buckets(v any) []domain.RankingBucket {
	if v == nil {
		return nil
	}
	return v.([]domain.RankingBucket)
}

type MockApplicationRepo struct {
	mock.Mock
}

func (m *MockApplicationRepo) Create(ctx context.Context, app *domain.Application) error {
	return m.Called(ctx, app).Error(0)
}

func (m *MockApplicationRepo) FindByID(ctx context.Context, id int64) (*domain.Application, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}

func (m *MockApplicationRepo) FindByStudentAndYear(ctx context.Context, studentID uuid.UUID, year int) ([]domain.Application, error) {
	args := m.Called(ctx, studentID, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Application), args.Error(1)
}

func (m *MockApplicationRepo) ListByCall(ctx context.Context, callID int64, q domain.ApplicantQuery) ([]domain.Applicant, int64, error) {
	args := m.Called(ctx, callID, q)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]domain.Applicant), args.Get(1).(int64), args.Error(2)
}

func (m *MockApplicationRepo) ExistsByStudentAndCall(ctx context.Context, studentID uuid.UUID, callID int64) (bool, error) {
	args := m.Called(ctx, studentID, callID)
	return args.Bool(0), args.Error(1)
}

func (m *MockApplicationRepo) CountAcceptedInYear(ctx context.Context, studentID uuid.UUID, year int) (int, error) {
	args := m.Called(ctx, studentID, year)
	return args.Int(0), args.Error(1)
}

func (m *MockApplicationRepo) FindMostRecentAcceptedInYear(ctx context.Context, studentID uuid.UUID, year int) (*domain.Application, error) {
	args := m.Called(ctx, studentID, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}

func (m *MockApplicationRepo) FindIDsByCall(ctx context.Context, callID int64) ([]int64, error) {
	args := m.Called(ctx, callID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockApplicationRepo) UpdateScore(ctx context.Context, id int64, score float64) error {
	return m.Called(ctx, id, score).Error(0)
}

func (m *MockApplicationRepo) ClearScore(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockApplicationRepo) BulkRankAndFlag(ctx context.Context, callID int64) (int64, error) {
	args := m.Called(ctx, callID)
	return args.Get(0).(int64), args.Error(1)
}

type MockEvaluationSource struct {
	mock.Mock
}

func (m *MockEvaluationSource) FetchEvaluationInputs(ctx context.Context, ids []int64, referenceDate, today time.Time) ([]domain.EvaluationInput, error) {
	args := m.Called(ctx, ids, referenceDate, today)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.EvaluationInput), args.Error(1)
}

type MockStudentRepo struct {
	mock.Mock
}

func (m *MockStudentRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Student, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Student), args.Error(1)
}

func (m *MockStudentRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.Student, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Student), args.Error(1)
}

type MockCourseRepo struct {
	mock.Mock
}

func (m *MockCourseRepo) CountExisting(ctx context.Context, ids []int64) (int, error) {
	args := m.Called(ctx, ids)
	return args.Int(0), args.Error(1)
}

type MockEmployeeRepo struct {
	mock.Mock
}

func (m *MockEmployeeRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.Employee, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Employee), args.Error(1)
}

type MockFailureRepo struct {
	mock.Mock
}

func (m *MockFailureRepo) Record(ctx context.Context, f *domain.TickFailure) error {
	return m.Called(ctx, f).Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyFailure(ctx context.Context, f domain.TickFailure) error {
	return m.Called(ctx, f).Error(0)
}

// Mock collaborators
type MockRanking struct {
	mock.Mock
}

func (m *MockRanking) Evaluate(ctx context.Context) (domain.EvaluationResult, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.EvaluationResult), args.Error(1)
}

func (m *MockRanking) EvaluateCall(ctx context.Context, call *domain.Call) (domain.EvaluationResult, error) {
	args := m.Called(ctx, call)
	return args.Get(0).(domain.EvaluationResult), args.Error(1)
}

type MockRecoveryHook struct {
	mock.Mock
}

func (m *MockRecoveryHook) Escalate(ctx context.Context, f domain.TickFailure) {
	m.Called(ctx, f)
}

// fakeTx runs fn inline and counts how many scopes were opened.
type fakeTx struct {
	scopes int
}

func (f *fakeTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.scopes++
	return fn(ctx)
}

func fixedClock(year int, month time.Month, day int) usecase.Clock {
	now := time.Date(year, month, day, 10, 30, 0, 0, time.UTC)
	return usecase.Clock{Now: func() time.Time { return now }, Location: time.UTC}
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func quietLogger() *slog.Logger {
	return logger.Discard()
}

func f64(v float64) *float64 { return &v }

func intp(v int) *int { return &v }

func boolp(v bool) *bool { return &v }
