package postgres

import (
	"context"
	"fmt"
	"time"

	"scholarship-backend/internal/domain"

	"github.com/jackc/pgx/v5"
)

type callRepo struct {
	db DBTX
}

// NewCallRepository creates a new call repository
func NewCallRepository(db DBTX) domain.CallRepository {
	return &callRepo{db: db}
}

const callColumns = `id, month, year, start_date, end_date, status, vacancy_count,
	evaluation_mode, created_by_employee_id, created_at, updated_at`

func scanCall(row pgx.Row) (*domain.Call, error) {
	var c domain.Call
	err := row.Scan(
		&c.ID, &c.Month, &c.Year, &c.StartDate, &c.EndDate, &c.Status, &c.VacancyCount,
		&c.EvaluationMode, &c.CreatedByEmployeeID, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Save inserts a new call
func (r *callRepo) Save(ctx context.Context, call *domain.Call) error {
	query := `
		INSERT INTO calls (month, year, start_date, end_date, status, vacancy_count,
			evaluation_mode, created_by_employee_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		RETURNING id`

	now := time.Now()
	call.CreatedAt = now
	call.UpdatedAt = now
	if call.Status == "" {
		call.Status = domain.CallStatusScheduled
	}

	err := conn(ctx, r.db).QueryRow(ctx, query,
		call.Month,
		call.Year,
		call.StartDate,
		call.EndDate,
		call.Status,
		call.VacancyCount,
		call.EvaluationMode,
		call.CreatedByEmployeeID,
		now,
	).Scan(&call.ID)
	switch {
	case isUniqueViolation(err):
		return domain.ErrCallMonthTaken
	case isExclusionViolation(err):
		return domain.ErrCallOverlap
	}
	return classify(err)
}

// callScheduleLockKey is the advisory lock held while a new call is checked and inserted.
const callScheduleLockKey int64 = 0x5c4a11

func (r *callRepo) LockSchedule(ctx context.Context) error {
	_, err := conn(ctx, r.db).Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, callScheduleLockKey)
	return classify(err)
}

func (r *callRepo) FindByID(ctx context.Context, id int64) (*domain.Call, error) {
	query := `SELECT ` + callColumns + ` FROM calls WHERE id = $1`

	call, err := scanCall(conn(ctx, r.db).QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return call, nil
}

// FindOpenCall fetches up to two OPEN calls so a broken invariant is detected rather than hidden.
func (r *callRepo) FindOpenCall(ctx context.Context) (*domain.Call, error) {
	query := `SELECT ` + callColumns + ` FROM calls WHERE status = 'OPEN' ORDER BY start_date LIMIT 2`

	calls, err := r.queryCalls(ctx, query)
	if err != nil {
		return nil, err
	}
	switch len(calls) {
	case 0:
		return nil, domain.ErrNotFound
	case 1:
		return &calls[0], nil
	default:
		return nil, domain.ErrMultipleOpenCalls
	}
}

// FindByYear returns every call starting in year, rejected ones included.
func (r *callRepo) FindByYear(ctx context.Context, year int) ([]domain.Call, error) {
	query := `
		SELECT ` + callColumns + `
		FROM calls
		WHERE EXTRACT(YEAR FROM start_date) = $1
		ORDER BY start_date`

	return r.queryCalls(ctx, query, year)
}

func (r *callRepo) queryCalls(ctx context.Context, query string, args ...any) ([]domain.Call, error) {
	rows, err := conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	calls := []domain.Call{}
	for rows.Next() {
		call, err := scanCall(rows)
		if err != nil {
			return nil, err
		}
		calls = append(calls, *call)
	}
	return calls, classify(rows.Err())
}

// UpdateStatus moves a call from one status to another. It fails with
// ErrInvalidTransition when the call is not currently in `from`.
func (r *callRepo) UpdateStatus(ctx context.Context, id int64, from, to domain.CallStatus) error {
	query := `UPDATE calls SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`

	cmd, err := conn(ctx, r.db).Exec(ctx, query, id, from, to)
	if err != nil {
		return classify(err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: call %d is not %s", domain.ErrInvalidTransition, id, from)
	}
	return nil
}

func (r *callRepo) BulkOpenDueCalls(ctx context.Context, today time.Time) (int64, error) {
	query := `
		UPDATE calls SET status = 'OPEN', updated_at = NOW()
		WHERE status = 'SCHEDULED' AND start_date <= $1`

	cmd, err := conn(ctx, r.db).Exec(ctx, query, today)
	if err != nil {
		return 0, classify(err)
	}
	return cmd.RowsAffected(), nil
}

func (r *callRepo) BulkCloseExpiredCalls(ctx context.Context, today time.Time) (int64, error) {
	query := `
		UPDATE calls SET status = 'CLOSED', updated_at = NOW()
		WHERE status = 'OPEN' AND end_date < $1`

	cmd, err := conn(ctx, r.db).Exec(ctx, query, today)
	if err != nil {
		return 0, classify(err)
	}
	return cmd.RowsAffected(), nil
}

// FindMostRecentlyClosed returns the CLOSED call with the latest end date within year.
func (r *callRepo) FindMostRecentlyClosed(ctx context.Context, year int) (*domain.Call, error) {
	query := `
		SELECT ` + callColumns + `
		FROM calls
		WHERE status = 'CLOSED' AND EXTRACT(YEAR FROM end_date) = $1
		ORDER BY end_date DESC, id DESC
		LIMIT 1`

	call, err := scanCall(conn(ctx, r.db).QueryRow(ctx, query, year))
	if err != nil {
		return nil, notFound(err)
	}
	return call, nil
}
