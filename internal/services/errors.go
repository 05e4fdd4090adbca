package services

import (
	"errors"

	apperrors "github.com/SAP-F-2025/diagnosis-service/internal/errors"
	"github.com/SAP-F-2025/diagnosis-service/internal/questionnaire"
	"github.com/SAP-F-2025/diagnosis-service/internal/repositories"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")

	// Identity
	ErrSessionInactive = errors.New("identity session is not active")

	// Workspace
	ErrNoActiveQuestionnaire = errors.New("no questionnaire in progress")
	ErrNoCurrentResult       = errors.New("no result is being presented")
	ErrResultLoading         = errors.New("result is still loading")

	// Export
	ErrExportFailed = errors.New("report export failed")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

// ===== ERROR HELPERS =====

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrNoActiveQuestionnaire) ||
		errors.Is(err, ErrNoCurrentResult) ||
		errors.Is(err, questionnaire.ErrResultNotFound) ||
		errors.Is(err, questionnaire.ErrUnknownQuestion) ||
		errors.Is(err, repositories.ErrNotFound)
}

// IsUnauthorized checks if error represents an "unauthorized" condition
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrSessionInactive)
}

// IsValidation checks if error represents a rejected input that left state untouched
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) || questionnaire.IsValidation(err) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsConflict checks if error represents an operation not allowed in the current state
func IsConflict(err error) bool {
	return questionnaire.IsNavigation(err) ||
		errors.Is(err, questionnaire.ErrIncompleteSubmission) ||
		errors.Is(err, questionnaire.ErrSubmissionInProgress) ||
		errors.Is(err, questionnaire.ErrStaleResponse) ||
		errors.Is(err, ErrResultLoading)
}

// IsUnavailable checks if error comes from an unreachable collaborator
func IsUnavailable(err error) bool {
	return errors.Is(err, questionnaire.ErrCatalogUnavailable) ||
		errors.Is(err, questionnaire.ErrScoringUnavailable)
}
