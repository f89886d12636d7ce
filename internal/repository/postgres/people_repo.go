package postgres

import (
	"context"

	"scholarship-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type employeeRepo struct {
	db DBTX
}

func NewEmployeeRepository(db DBTX) domain.EmployeeRepository {
	return &employeeRepo{db: db}
}

func (r *employeeRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.Employee, error) {
	query := `SELECT id, user_id, code, first_name, last_name FROM employees WHERE user_id = $1`

	var e domain.Employee
	err := conn(ctx, r.db).QueryRow(ctx, query, userID).Scan(&e.ID, &e.UserID, &e.Code, &e.FirstName, &e.LastName)
	if err != nil {
		return nil, notFound(err)
	}
	return &e, nil
}

type studentRepo struct {
	db DBTX
}

func NewStudentRepository(db DBTX) domain.StudentRepository {
	return &studentRepo{db: db}
}

const studentSelect = `
	SELECT s.id, s.user_id, s.code, s.full_name, pr.name
	FROM students s
	LEFT JOIN programs pr ON pr.id = s.program_id`

func (r *studentRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Student, error) {
	return r.findOne(ctx, studentSelect+` WHERE s.id = $1`, id)
}

func (r *studentRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.Student, error) {
	return r.findOne(ctx, studentSelect+` WHERE s.user_id = $1`, userID)
}

func (r *studentRepo) findOne(ctx context.Context, query string, arg uuid.UUID) (*domain.Student, error) {
	var s domain.Student
	err := conn(ctx, r.db).QueryRow(ctx, query, arg).Scan(&s.ID, &s.UserID, &s.Code, &s.FullName, &s.Program)
	if err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

type courseRepo struct {
	db DBTX
}

func NewCourseRepository(db DBTX) domain.CourseRepository {
	return &courseRepo{db: db}
}

func (r *courseRepo) CountExisting(ctx context.Context, ids []int64) (int, error) {
	var count int
	err := conn(ctx, r.db).QueryRow(ctx,
		`SELECT COUNT(*) FROM courses WHERE id = ANY($1)`, pq.Array(ids),
	).Scan(&count)
	return count, classify(err)
}

type schedulerFailureRepo struct {
	db DBTX
}

func NewSchedulerFailureRepository(db DBTX) domain.SchedulerFailureRepository {
	return &schedulerFailureRepo{db: db}
}

func (r *schedulerFailureRepo) Record(ctx context.Context, f *domain.TickFailure) error {
	query := `
		INSERT INTO scheduler_failures (job, attempts, last_error, failed_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	return classify(conn(ctx, r.db).QueryRow(ctx, query, f.Job, f.Attempts, f.LastError, f.FailedAt).Scan(&f.ID))
}
