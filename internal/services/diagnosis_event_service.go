package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/diagnosis-service/internal/events"
	"github.com/SAP-F-2025/diagnosis-service/internal/models"
)

// DiagnosisEventService publishes the questionnaire lifecycle to the event bus.
type DiagnosisEventService interface {
	NotifyQuestionnaireStarted(ctx context.Context, userID string, questionCount int, optionsVersion string) error
	NotifyQuestionnaireReset(ctx context.Context, userID string, answeredCount int, generation uint64) error
	NotifyDiagnosisSubmitted(ctx context.Context, userID string, result *models.Result, answerCount int) error
	NotifyDiagnosisViewed(ctx context.Context, userID string, diagnosisID int64) error
}

type diagnosisEventService struct {
	eventPublisher events.EventPublisher
	logger         *slog.Logger
}

func NewDiagnosisEventService(eventPublisher events.EventPublisher, logger *slog.Logger) DiagnosisEventService {
	return &diagnosisEventService{
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

func (s *diagnosisEventService) NotifyQuestionnaireStarted(ctx context.Context, userID string, questionCount int, optionsVersion string) error {
	s.logger.Info("Publishing questionnaire started event", "user_id", userID, "question_count", questionCount)
	return s.publish(ctx, events.NewQuestionnaireStartedEvent(userID, questionCount, optionsVersion))
}

func (s *diagnosisEventService) NotifyQuestionnaireReset(ctx context.Context, userID string, answeredCount int, generation uint64) error {
	s.logger.Info("Publishing questionnaire reset event", "user_id", userID, "answered_count", answeredCount)
	return s.publish(ctx, events.NewQuestionnaireResetEvent(userID, answeredCount, generation))
}

func (s *diagnosisEventService) NotifyDiagnosisSubmitted(ctx context.Context, userID string, result *models.Result, answerCount int) error {
	if result == nil {
		return fmt.Errorf("diagnosis submitted event: nil result")
	}
	s.logger.Info("Publishing diagnosis submitted event",
		"user_id", userID,
		"diagnosis_id", result.ID,
		"level", result.PredictedLevel)
	return s.publish(ctx, events.NewDiagnosisSubmittedEvent(userID, result, answerCount))
}

func (s *diagnosisEventService) NotifyDiagnosisViewed(ctx context.Context, userID string, diagnosisID int64) error {
	s.logger.Debug("Publishing diagnosis viewed event", "user_id", userID, "diagnosis_id", diagnosisID)
	return s.publish(ctx, events.NewDiagnosisViewedEvent(userID, diagnosisID))
}

func (s *diagnosisEventService) publish(ctx context.Context, event *events.DiagnosisEvent) error {
	if s.eventPublisher == nil {
		return nil
	}
	if err := s.eventPublisher.PublishDiagnosisEvent(ctx, event); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}
