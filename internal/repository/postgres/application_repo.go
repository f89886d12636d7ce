package postgres

import (
	"context"
	"fmt"
	"time"

	"scholarship-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
)

type applicationRepo struct {
	db DBTX
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db DBTX) domain.ApplicationRepository {
	return &applicationRepo{db: db}
}

// NewEvaluationSource exposes the scoring-input query of the application store.
func NewEvaluationSource(db DBTX) domain.EvaluationSource {
	return &applicationRepo{db: db}
}

// Create inserts the application and its course selections atomically.
func (r *applicationRepo) Create(ctx context.Context, app *domain.Application) error {
	tx, err := conn(ctx, r.db).Begin(ctx)
	if err != nil {
		return classify(err)
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	app.CreatedAt = now
	app.UpdatedAt = now

	err = tx.QueryRow(ctx, `
		INSERT INTO applications (call_id, student_id, submitted_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING id`,
		app.CallID, app.StudentID, app.SubmittedDate, now,
	).Scan(&app.ID)
	if isUniqueViolation(err) {
		return domain.ErrAlreadyApplied
	}
	if err != nil {
		return classify(err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO application_courses (application_id, course_id)
		SELECT $1, UNNEST($2::bigint[])`,
		app.ID, pq.Array(app.CourseIDs),
	)
	if err != nil {
		return classify(err)
	}

	return classify(tx.Commit(ctx))
}

const applicationSelect = `
	SELECT
		a.id, a.call_id, a.student_id, a.submitted_date, a.overall_score, a.accepted,
		a.created_at, a.updated_at,
		ARRAY(SELECT ac.course_id FROM application_courses ac WHERE ac.application_id = a.id ORDER BY ac.course_id) AS course_ids,
		c.month,
		e.id, e.status, e.grade
	FROM applications a
	JOIN calls c ON c.id = a.call_id
	LEFT JOIN enrollments e ON e.application_id = a.id`

func scanApplication(row pgx.Row) (*domain.Application, error) {
	var (
		app              domain.Application
		month            domain.Month
		enrollmentID     *int64
		enrollmentStatus *string
		grade            *float64
	)
	err := row.Scan(
		&app.ID, &app.CallID, &app.StudentID, &app.SubmittedDate, &app.OverallScore, &app.Accepted,
		&app.CreatedAt, &app.UpdatedAt,
		&app.CourseIDs,
		&month,
		&enrollmentID, &enrollmentStatus, &grade,
	)
	if err != nil {
		return nil, err
	}
	app.CallMonth = &month
	if enrollmentID != nil {
		app.Enrollment = &domain.Enrollment{
			ID:            *enrollmentID,
			ApplicationID: app.ID,
			Grade:         grade,
		}
		if enrollmentStatus != nil {
			app.Enrollment.Status = domain.EnrollmentStatus(*enrollmentStatus)
		}
	}
	return &app, nil
}

func (r *applicationRepo) FindByID(ctx context.Context, id int64) (*domain.Application, error) {
	app, err := scanApplication(conn(ctx, r.db).QueryRow(ctx, applicationSelect+` WHERE a.id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return app, nil
}

// FindByStudentAndYear lists a student's applications submitted during year, newest first.
func (r *applicationRepo) FindByStudentAndYear(ctx context.Context, studentID uuid.UUID, year int) ([]domain.Application, error) {
	query := applicationSelect + `
		WHERE a.student_id = $1 AND EXTRACT(YEAR FROM a.submitted_date) = $2
		ORDER BY a.submitted_date DESC, a.id DESC`

	rows, err := conn(ctx, r.db).Query(ctx, query, studentID, year)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	apps := []domain.Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, *app)
	}
	return apps, classify(rows.Err())
}

var applicantSortColumns = map[string]string{
	domain.SortSubmittedDate: "a.submitted_date",
	domain.SortOverallScore:  "a.overall_score",
	domain.SortAccepted:      "a.accepted",
}

// ListByCall pages through a call's applicants. q.SortBy must already be validated.
func (r *applicationRepo) ListByCall(ctx context.Context, callID int64, q domain.ApplicantQuery) ([]domain.Applicant, int64, error) {
	column, ok := applicantSortColumns[q.SortBy]
	if !ok {
		return nil, 0, fmt.Errorf("unsupported sort field %q", q.SortBy)
	}
	direction := "ASC"
	if q.Desc {
		direction = "DESC"
	}

	var total int64
	if err := conn(ctx, r.db).QueryRow(ctx, `SELECT COUNT(*) FROM applications WHERE call_id = $1`, callID).Scan(&total); err != nil {
		return nil, 0, classify(err)
	}

	query := `
		SELECT a.id, s.id, s.code, s.full_name, pr.name, a.submitted_date, a.overall_score, a.accepted
		FROM applications a
		JOIN students s ON s.id = a.student_id
		LEFT JOIN programs pr ON pr.id = s.program_id
		WHERE a.call_id = $1
		ORDER BY ` + column + ` ` + direction + ` NULLS LAST, a.id
		LIMIT $2 OFFSET $3`

	offset := (q.Page - 1) * q.PageSize
	rows, err := conn(ctx, r.db).Query(ctx, query, callID, q.PageSize, offset)
	if err != nil {
		return nil, 0, classify(err)
	}
	defer rows.Close()

	applicants := []domain.Applicant{}
	for rows.Next() {
		var a domain.Applicant
		if err := rows.Scan(
			&a.ApplicationID, &a.StudentID, &a.StudentCode, &a.FullName, &a.Program,
			&a.SubmittedDate, &a.OverallScore, &a.Accepted,
		); err != nil {
			return nil, 0, err
		}
		applicants = append(applicants, a)
	}
	return applicants, total, classify(rows.Err())
}

func (r *applicationRepo) ExistsByStudentAndCall(ctx context.Context, studentID uuid.UUID, callID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM applications WHERE student_id = $1 AND call_id = $2)`

	var exists bool
	err := conn(ctx, r.db).QueryRow(ctx, query, studentID, callID).Scan(&exists)
	return exists, classify(err)
}

func (r *applicationRepo) CountAcceptedInYear(ctx context.Context, studentID uuid.UUID, year int) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM applications
		WHERE student_id = $1 AND accepted IS TRUE AND EXTRACT(YEAR FROM submitted_date) = $2`

	var count int
	err := conn(ctx, r.db).QueryRow(ctx, query, studentID, year).Scan(&count)
	return count, classify(err)
}

func (r *applicationRepo) FindMostRecentAcceptedInYear(ctx context.Context, studentID uuid.UUID, year int) (*domain.Application, error) {
	query := applicationSelect + `
		WHERE a.student_id = $1 AND a.accepted IS TRUE AND EXTRACT(YEAR FROM a.submitted_date) = $2
		ORDER BY a.submitted_date DESC, a.id DESC
		LIMIT 1`

	app, err := scanApplication(conn(ctx, r.db).QueryRow(ctx, query, studentID, year))
	if err != nil {
		return nil, notFound(err)
	}
	return app, nil
}

func (r *applicationRepo) FindIDsByCall(ctx context.Context, callID int64) ([]int64, error) {
	rows, err := conn(ctx, r.db).Query(ctx, `SELECT id FROM applications WHERE call_id = $1 ORDER BY id`, callID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, classify(rows.Err())
}

// FetchEvaluationInputs resolves, per application, the weighted average of the latest
// academic period ending before referenceDate and the tier value of the latest
// socioeconomic evaluation still valid on today.
func (r *applicationRepo) FetchEvaluationInputs(ctx context.Context, applicationIDs []int64, referenceDate, today time.Time) ([]domain.EvaluationInput, error) {
	query := `
		WITH reference_period AS (
			SELECT id
			FROM academic_periods
			WHERE end_date < $2
			ORDER BY end_date DESC
			LIMIT 1
		),
		latest_evaluation AS (
			SELECT DISTINCT ON (student_id) student_id, tier
			FROM socioeconomic_evaluations
			WHERE issued_on + make_interval(months => $4) > $3
			ORDER BY student_id, issued_on DESC, id DESC
		),
		latest_average AS (
			SELECT DISTINCT ON (wa.student_id) wa.student_id, wa.value
			FROM weighted_averages wa
			JOIN reference_period rp ON wa.academic_period_id = rp.id
			ORDER BY wa.student_id, wa.created_at DESC
		)
		SELECT a.id, la.value::float8, le.tier
		FROM applications a
		LEFT JOIN latest_evaluation le ON le.student_id = a.student_id
		LEFT JOIN latest_average la ON la.student_id = a.student_id
		WHERE a.id = ANY($1)
		ORDER BY a.id`

	rows, err := conn(ctx, r.db).Query(ctx, query,
		pq.Array(applicationIDs), referenceDate, today, domain.SocioeconomicValidityMonths,
	)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	inputs := make([]domain.EvaluationInput, 0, len(applicationIDs))
	for rows.Next() {
		var (
			in   domain.EvaluationInput
			tier *string
		)
		if err := rows.Scan(&in.ApplicationID, &in.WeightedAverage, &tier); err != nil {
			return nil, err
		}
		if tier != nil {
			if v, ok := domain.SocioeconomicTier(*tier).Value(); ok {
				in.SocioeconomicValue = &v
			}
		}
		inputs = append(inputs, in)
	}
	return inputs, classify(rows.Err())
}

func (r *applicationRepo) UpdateScore(ctx context.Context, id int64, score float64) error {
	cmd, err := conn(ctx, r.db).Exec(ctx,
		`UPDATE applications SET overall_score = $2, updated_at = NOW() WHERE id = $1`, id, score)
	if err != nil {
		return classify(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *applicationRepo) ClearScore(ctx context.Context, id int64) error {
	_, err := conn(ctx, r.db).Exec(ctx,
		`UPDATE applications SET overall_score = NULL, updated_at = NOW() WHERE id = $1 AND overall_score IS NOT NULL`, id)
	return classify(err)
}

// winnerPredicate accepts a scored applicant ranked within the vacancy count.
// Unscored applicants are never winners, even when vacancies are left over.
// Ties on score go to the earlier submission, then the lower id, so reruns over
// unchanged data are stable.
const winnerPredicate = `(a2.overall_score IS NOT NULL AND
				 ROW_NUMBER() OVER (
					ORDER BY a2.overall_score DESC NULLS LAST, a2.submitted_date ASC, a2.id ASC
				 ) <= c.vacancy_count)`

// BulkRankAndFlag ranks in a single statement.
func (r *applicationRepo) BulkRankAndFlag(ctx context.Context, callID int64) (int64, error) {
	query := `
		UPDATE applications a
		SET accepted = ranked.is_winner, updated_at = NOW()
		FROM (
			SELECT
				a2.id,
				` + winnerPredicate + ` AS is_winner
			FROM applications a2
			JOIN calls c ON c.id = a2.call_id
			WHERE a2.call_id = $1
		) AS ranked
		WHERE a.id = ranked.id AND a.call_id = $1`

	cmd, err := conn(ctx, r.db).Exec(ctx, query, callID)
	if err != nil {
		return 0, classify(err)
	}
	return cmd.RowsAffected(), nil
}
