package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps struct field names to user-friendly labels
var FieldLabels = map[string]string{
	// Call fields
	"Month":          "Month",
	"StartDate":      "Start date",
	"EndDate":        "End date",
	"VacancyCount":   "Vacancy count",
	"EvaluationMode": "Evaluation mode",

	// Application fields
	"CallID":    "Call",
	"CourseIDs": "Courses",

	// Listing
	"Page":     "Page",
	"PageSize": "Page size",
	"SortBy":   "Sort field",
}

// FormatValidationErrors converts validator.ValidationErrors to user-friendly messages
func FormatValidationErrors(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, formatSingleError(e))
	}
	return messages
}

// Message joins every validation message into one line.
func Message(err error) string {
	return strings.Join(FormatValidationErrors(err), "; ")
}

func formatSingleError(e validator.FieldError) string {
	label := getFieldLabel(e.StructField())
	param := e.Param()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s: is required", label)

	case "min":
		if e.Kind().String() == "slice" {
			return fmt.Sprintf("%s: select at least %s", label, param)
		}
		return fmt.Sprintf("%s: must be at least %s", label, param)

	case "max":
		if e.Kind().String() == "slice" {
			return fmt.Sprintf("%s: select at most %s", label, param)
		}
		return fmt.Sprintf("%s: must be at most %s", label, param)

	case "gt":
		return fmt.Sprintf("%s: must be greater than %s", label, param)

	case "gte":
		return fmt.Sprintf("%s: must be at least %s", label, param)

	case "lte":
		return fmt.Sprintf("%s: must be at most %s", label, param)

	case "unique":
		return fmt.Sprintf("%s: must not contain duplicates", label)

	case "datetime":
		return fmt.Sprintf("%s: must be a date formatted as YYYY-MM-DD", label)

	case "call_month":
		return fmt.Sprintf("%s: must be an English month name such as JANUARY", label)

	case "evaluation_mode":
		return fmt.Sprintf("%s: must be one of WEIGHTED_AVERAGE, SOCIOECONOMIC, MIXED", label)

	case "sort_field":
		return fmt.Sprintf("%s: must be one of submitted_date, overall_score, accepted", label)

	default:
		return fmt.Sprintf("%s: failed validation (%s)", label, e.Tag())
	}
}

// getFieldLabel returns the user-friendly label for a field
func getFieldLabel(fieldName string) string {
	if label, ok := FieldLabels[fieldName]; ok {
		return label
	}
	return formatCamelCase(fieldName)
}

// formatCamelCase converts CamelCase to spaced words
func formatCamelCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune(' ')
		}
		result.WriteRune(r)
	}
	return result.String()
}
