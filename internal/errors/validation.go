package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/SAP-F-2025/diagnosis-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// ValidationError is one rejected request field.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// ValidationErrors lists every rejected field of one request.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	switch len(ve) {
	case 0:
		return "validation failed"
	case 1:
		return "validation failed: " + ve[0].Error()
	}
	fields := make([]string, len(ve))
	for i := range ve {
		fields[i] = ve[i].Field
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(fields, ", "))
}

func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: message, Value: value}
}

// FromValidator translates go-playground field errors. It returns nil when err is not
// a validator.ValidationErrors.
func FromValidator(err error) ValidationErrors {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil
	}

	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{
			Field:   fe.Field(),
			Message: fieldMessage(fe),
			Value:   fe.Value(),
			Rule:    fe.Tag(),
		})
	}
	return out
}

// fieldMessage covers the tags used by the request DTOs.
func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "maturity_level":
		return "must be a valid maturity level (" + strings.Join(maturityLevelNames(), ", ") + ")"
	default:
		return fmt.Sprintf("failed rule %q", fe.Tag())
	}
}

func maturityLevelNames() []string {
	names := make([]string, len(models.MaturityLevels))
	for i, l := range models.MaturityLevels {
		names[i] = string(l)
	}
	return names
}
