package domain

import (
	"context"

	"github.com/google/uuid"
)

type Student struct {
	ID       uuid.UUID `json:"id"`
	UserID   uuid.UUID `json:"user_id"`
	Code     string    `json:"code"`
	FullName string    `json:"full_name"`
	Program  *string   `json:"program,omitempty"`
}

// StudentYear is a student's application record for one calendar year.
type StudentYear struct {
	Student      *Student      `json:"student"`
	Year         int           `json:"year"`
	Scholarships int           `json:"scholarships"`
	Applications []Application `json:"applications"`
}

type StudentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Student, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Student, error)
}

type CourseRepository interface {
	// CountExisting returns how many of ids refer to existing courses.
	CountExisting(ctx context.Context, ids []int64) (int, error)
}
