package events

import (
	"time"

	"github.com/SAP-F-2025/diagnosis-service/internal/models"
	"github.com/google/uuid"
)

// EventType represents the diagnosis lifecycle events
type EventType string

const (
	// Questionnaire events
	EventQuestionnaireStarted EventType = "questionnaire.started"
	EventQuestionnaireReset   EventType = "questionnaire.reset"

	// Diagnosis events
	EventDiagnosisSubmitted EventType = "diagnosis.submitted"
	EventDiagnosisViewed    EventType = "diagnosis.viewed"
)

const (
	eventSource  = "diagnosis-service"
	eventVersion = "1.0"
)

// DiagnosisEvent is the envelope of every published event
type DiagnosisEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	UserID    string                 `json:"user_id"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Event payloads

type QuestionnaireStartedEvent struct {
	QuestionCount  int       `json:"question_count"`
	OptionsVersion string    `json:"options_version"`
	StartedAt      time.Time `json:"started_at"`
}

type QuestionnaireResetEvent struct {
	AnsweredCount int       `json:"answered_count"`
	Generation    uint64    `json:"generation"`
	ResetAt       time.Time `json:"reset_at"`
}

type DiagnosisSubmittedEvent struct {
	DiagnosisID        int64                `json:"diagnosis_id"`
	PredictedLevel     models.MaturityLevel `json:"predicted_level"`
	SuccessProbability float64              `json:"success_probability"`
	AnswerCount        int                  `json:"answer_count"`
	SubmittedAt        time.Time            `json:"submitted_at"`
}

type DiagnosisViewedEvent struct {
	DiagnosisID int64     `json:"diagnosis_id"`
	ViewedAt    time.Time `json:"viewed_at"`
}

// Event factory functions

func newEvent(t EventType, userID string, data interface{}) *DiagnosisEvent {
	return &DiagnosisEvent{
		ID:        GenerateEventID(),
		Type:      t,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		UserID:    userID,
		Data:      data,
	}
}

func NewQuestionnaireStartedEvent(userID string, questionCount int, optionsVersion string) *DiagnosisEvent {
	return newEvent(EventQuestionnaireStarted, userID, QuestionnaireStartedEvent{
		QuestionCount:  questionCount,
		OptionsVersion: optionsVersion,
		StartedAt:      time.Now().UTC(),
	})
}

func NewQuestionnaireResetEvent(userID string, answeredCount int, generation uint64) *DiagnosisEvent {
	return newEvent(EventQuestionnaireReset, userID, QuestionnaireResetEvent{
		AnsweredCount: answeredCount,
		Generation:    generation,
		ResetAt:       time.Now().UTC(),
	})
}

func NewDiagnosisSubmittedEvent(userID string, result *models.Result, answerCount int) *DiagnosisEvent {
	return newEvent(EventDiagnosisSubmitted, userID, DiagnosisSubmittedEvent{
		DiagnosisID:        result.ID,
		PredictedLevel:     result.PredictedLevel,
		SuccessProbability: result.SuccessProbability,
		AnswerCount:        answerCount,
		SubmittedAt:        result.Timestamp,
	})
}

func NewDiagnosisViewedEvent(userID string, diagnosisID int64) *DiagnosisEvent {
	return newEvent(EventDiagnosisViewed, userID, DiagnosisViewedEvent{
		DiagnosisID: diagnosisID,
		ViewedAt:    time.Now().UTC(),
	})
}

// GenerateEventID returns a random event id
func GenerateEventID() string {
	return uuid.NewString()
}
