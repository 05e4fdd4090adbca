package questionnaire

import (
	"errors"
	"fmt"

	"github.com/SAP-F-2025/diagnosis-service/internal/models"
)

var (
	// Catalog
	ErrCatalogUnavailable = errors.New("question catalog unavailable")
	ErrUnknownQuestion    = errors.New("question is not part of the catalog")

	// Answer validation, resolved locally by re-prompting
	ErrInvalidAnswerValue         = errors.New("invalid answer value")
	ErrOutOfRange                 = errors.New("answer value out of range")
	ErrUnsupportedQuestionVariant = models.ErrUnsupportedQuestionVariant

	// Navigation
	ErrAnswerRequired      = errors.New("current question must be answered first")
	ErrNavigationBoundary  = errors.New("no question in that direction")
	ErrNoQuestionnaireOpen = errors.New("questionnaire has no questions")

	// Submission
	ErrIncompleteSubmission = errors.New("questionnaire is incomplete")
	ErrSubmissionInProgress = errors.New("a submission is already in progress")
	ErrScoringUnavailable   = errors.New("scoring service unavailable")
	ErrStaleResponse        = errors.New("response discarded after questionnaire reset")

	// Results
	ErrResultNotFound = errors.New("result not found")
)

// AnswerError describes a rejected answer.
type AnswerError struct {
	QuestionID models.QuestionID
	Value      models.RawValue
	Reason     string
	Err        error
}

func (e *AnswerError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("question %d: %v (value %q)", e.QuestionID, e.Err, e.Value.String())
	}
	return fmt.Sprintf("question %d: %v (value %q): %s", e.QuestionID, e.Err, e.Value.String(), e.Reason)
}

func (e *AnswerError) Unwrap() error { return e.Err }

// IncompleteSubmissionError names the first unanswered question in catalog order.
type IncompleteSubmissionError struct {
	Index      int
	QuestionID models.QuestionID
	Domain     string
	Missing    int
}

func (e *IncompleteSubmissionError) Error() string {
	return fmt.Sprintf("%v: %d unanswered, first is question %d (#%d, domain %q)",
		ErrIncompleteSubmission, e.Missing, e.QuestionID, e.Index+1, e.Domain)
}

func (e *IncompleteSubmissionError) Unwrap() error { return ErrIncompleteSubmission }

// ScoringError wraps a failure of the scoring collaborator.
type ScoringError struct {
	Op  string
	Err error
}

func (e *ScoringError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrScoringUnavailable, e.Err)
}

func (e *ScoringError) Unwrap() []error { return []error{ErrScoringUnavailable, e.Err} }

// IsValidation reports whether err is an answer validation failure that leaves the
// engine state unchanged.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidAnswerValue) ||
		errors.Is(err, ErrOutOfRange) ||
		errors.Is(err, ErrUnsupportedQuestionVariant)
}

// IsNavigation reports whether err blocked a navigation transition.
func IsNavigation(err error) bool {
	return errors.Is(err, ErrAnswerRequired) || errors.Is(err, ErrNavigationBoundary)
}
