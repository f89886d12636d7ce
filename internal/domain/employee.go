package domain

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Employee is a staff member linked to an identity-server user.
type Employee struct {
	ID        int64     `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Code      string    `json:"code"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
}

func (e *Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

type EmployeeRepository interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Employee, error)
}
