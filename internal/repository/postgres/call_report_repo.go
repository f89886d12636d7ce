package postgres

import (
	"context"
	"time"

	"scholarship-backend/internal/domain"
)

func (r *callRepo) CountApplicants(ctx context.Context, callID int64) (int64, error) {
	var count int64
	err := conn(ctx, r.db).QueryRow(ctx, `SELECT COUNT(*) FROM applications WHERE call_id = $1`, callID).Scan(&count)
	return count, classify(err)
}

// GetRates computes acceptance, vacancy fill and enrollment ratios for a call.
func (r *callRepo) GetRates(ctx context.Context, callID int64) (*domain.CallRates, error) {
	query := `
		SELECT
			CASE
				WHEN COUNT(a.id) = 0 THEN 0
				ELSE COUNT(a.id) FILTER (WHERE a.accepted) / CAST(COUNT(a.id) AS NUMERIC)
			END::float8 AS acceptance_rate,
			(COUNT(a.id) FILTER (WHERE a.accepted) / NULLIF(CAST(c.vacancy_count AS NUMERIC), 0))::float8 AS vacancy_fill_rate,
			CASE
				WHEN COUNT(a.id) FILTER (WHERE a.accepted) = 0 THEN 0
				ELSE COUNT(e.id) / CAST(COUNT(a.id) FILTER (WHERE a.accepted) AS NUMERIC)
			END::float8 AS enrollment_rate
		FROM calls c
		LEFT JOIN applications a ON a.call_id = c.id
		LEFT JOIN enrollments e ON e.application_id = a.id AND e.status = 'ACCEPTED'
		WHERE c.id = $1
		GROUP BY c.id, c.vacancy_count`

	var rates domain.CallRates
	err := conn(ctx, r.db).QueryRow(ctx, query, callID).Scan(
		&rates.AcceptanceRate, &rates.VacancyFillRate, &rates.EnrollmentRate,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return &rates, nil
}

// SocioeconomicRanking buckets applicants by the tier of their latest valid evaluation.
func (r *callRepo) SocioeconomicRanking(ctx context.Context, callID int64, today time.Time) ([]domain.RankingBucket, error) {
	query := `
		SELECT COALESCE(ev.tier, 'NONE') AS label, COUNT(a.id) AS total
		FROM calls c
		LEFT JOIN applications a ON a.call_id = c.id
		LEFT JOIN (
			SELECT DISTINCT ON (student_id) student_id, tier
			FROM socioeconomic_evaluations
			WHERE issued_on + make_interval(months => $3) > $2
			ORDER BY student_id, issued_on DESC, id DESC
		) ev ON ev.student_id = a.student_id
		WHERE c.id = $1
		GROUP BY label
		ORDER BY total DESC, label
		LIMIT 3`

	return r.queryBuckets(ctx, query, callID, today, domain.SocioeconomicValidityMonths)
}

// CycleRanking buckets applicants by relative cycle in the academic period preceding the call.
func (r *callRepo) CycleRanking(ctx context.Context, callID int64) ([]domain.RankingBucket, error) {
	query := `
		WITH reference_period AS (
			SELECT p.id
			FROM academic_periods p
			JOIN calls c ON p.end_date < c.start_date
			WHERE c.id = $1
			ORDER BY p.end_date DESC
			LIMIT 1
		)
		SELECT COALESCE(CAST(wa.relative_cycle AS VARCHAR), 'NONE') AS label, COUNT(a.id) AS total
		FROM calls c
		LEFT JOIN applications a ON a.call_id = c.id
		LEFT JOIN (
			SELECT DISTINCT ON (student_id) student_id, relative_cycle
			FROM weighted_averages
			WHERE academic_period_id = (SELECT id FROM reference_period)
			ORDER BY student_id, created_at DESC
		) wa ON wa.student_id = a.student_id
		WHERE c.id = $1
		GROUP BY label
		ORDER BY total DESC, label
		LIMIT 3`

	return r.queryBuckets(ctx, query, callID)
}

// ProgramRanking buckets applicants by their academic program.
func (r *callRepo) ProgramRanking(ctx context.Context, callID int64) ([]domain.RankingBucket, error) {
	query := `
		SELECT COALESCE(pr.name, 'NONE') AS label, COUNT(a.id) AS total
		FROM calls c
		LEFT JOIN applications a ON a.call_id = c.id
		LEFT JOIN students s ON s.id = a.student_id
		LEFT JOIN programs pr ON pr.id = s.program_id
		WHERE c.id = $1
		GROUP BY label
		ORDER BY total DESC, label
		LIMIT 3`

	return r.queryBuckets(ctx, query, callID)
}

func (r *callRepo) queryBuckets(ctx context.Context, query string, args ...any) ([]domain.RankingBucket, error) {
	rows, err := conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	buckets := []domain.RankingBucket{}
	for rows.Next() {
		var b domain.RankingBucket
		if err := rows.Scan(&b.Label, &b.Count); err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}
	return buckets, classify(rows.Err())
}
