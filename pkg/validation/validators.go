package validation

import (
	"strings"

	"scholarship-backend/internal/domain"

	"github.com/go-playground/validator/v10"
)

// New returns a validator with the custom rules registered.
func New() *validator.Validate {
	v := validator.New()
	RegisterValidators(v)
	return v
}

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("call_month", CallMonth)
	_ = v.RegisterValidation("evaluation_mode", EvaluationMode)
	_ = v.RegisterValidation("sort_field", SortField)
}

// CallMonth validates an upper-case English month name
func CallMonth(fl validator.FieldLevel) bool {
	return domain.Month(fl.Field().String()).Valid()
}

func EvaluationMode(fl validator.FieldLevel) bool {
	return domain.EvaluationMode(fl.Field().String()).Valid()
}

// SortField accepts an empty value or one of the sortable applicant columns
func SortField(fl validator.FieldLevel) bool {
	switch strings.TrimSpace(fl.Field().String()) {
	case "", domain.SortSubmittedDate, domain.SortOverallScore, domain.SortAccepted:
		return true
	}
	return false
}
