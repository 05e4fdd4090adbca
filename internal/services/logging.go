package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/SAP-F-2025/diagnosis-service/internal/questionnaire"
	"github.com/SAP-F-2025/diagnosis-service/internal/utils"
)

// ServiceLogger provides structured logging for service layer operations
type ServiceLogger struct {
	logger *slog.Logger
	config LogConfig
}

type LogConfig struct {
	Service     string
	Component   string
	EnableDebug bool
}

func NewServiceLogger(logger *slog.Logger, config LogConfig) *ServiceLogger {
	return &ServiceLogger{
		logger: logger.With("service", config.Service, "component", config.Component),
		config: config,
	}
}

// ===== OPERATION LOGGING =====

// LogOperation records the outcome of one service call. Expected outcomes of the
// questionnaire flow (rejected answers, blocked navigation) are logged below error.
func (l *ServiceLogger) LogOperation(ctx context.Context, operation, userID string, resourceID int64, resourceType string, duration time.Duration, err error) {
	level := slog.LevelInfo
	status := "success"

	if err != nil {
		level = slog.LevelError
		status = "error"

		switch {
		case IsValidation(err):
			level = slog.LevelWarn
			status = "validation_error"
		case IsConflict(err):
			level = slog.LevelWarn
			status = "conflict"
		case IsUnauthorized(err):
			level = slog.LevelWarn
			status = "unauthorized"
		case IsNotFound(err):
			level = slog.LevelInfo
			status = "not_found"
		case IsUnavailable(err):
			status = "unavailable"
		}
	}

	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("user_id", userID),
		slog.String("resource_type", resourceType),
		slog.String("status", status),
		slog.Duration("duration", duration),
	}
	if resourceID != 0 {
		attrs = append(attrs, slog.Int64("resource_id", resourceID))
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))

		var incomplete *questionnaire.IncompleteSubmissionError
		var answerErr *questionnaire.AnswerError
		var validationErrs ValidationErrors
		switch {
		case errors.As(err, &validationErrs):
			attrs = append(attrs, slog.Int("validation_errors_count", len(validationErrs)))
		case errors.As(err, &incomplete):
			attrs = append(attrs,
				slog.Int("missing_count", incomplete.Missing),
				slog.Int("first_missing_question", int(incomplete.QuestionID)))
		case errors.As(err, &answerErr):
			attrs = append(attrs, slog.Int("question_id", int(answerErr.QuestionID)))
		}
	}

	if requestID := utils.RequestIDFromContext(ctx); requestID != "" {
		attrs = append(attrs, slog.String("request_id", requestID))
	}

	// Caller information for unexpected failures
	if level == slog.LevelError {
		if pc, file, line, ok := runtime.Caller(2); ok {
			if fn := runtime.FuncForPC(pc); fn != nil {
				attrs = append(attrs,
					slog.String("caller_func", fn.Name()),
					slog.String("caller_file", file),
					slog.Int("caller_line", line),
				)
			}
		}
	}

	l.logger.LogAttrs(ctx, level, fmt.Sprintf("%s operation %s", operation, status), attrs...)
}

func (l *ServiceLogger) LogValidationError(ctx context.Context, operation, userID string, validationErrors ValidationErrors) {
	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("user_id", userID),
		slog.Int("error_count", len(validationErrors)),
	}

	for i, err := range validationErrors {
		if i < 5 {
			attrs = append(attrs, slog.Group(fmt.Sprintf("error_%d", i+1),
				slog.String("field", err.Field),
				slog.String("message", err.Message),
				slog.Any("value", err.Value),
			))
		}
	}

	l.logger.LogAttrs(ctx, slog.LevelWarn, "Validation failed", attrs...)
}

// Debug logs only when the logger was built with EnableDebug.
func (l *ServiceLogger) Debug(ctx context.Context, msg string, args ...any) {
	if l.config.EnableDebug {
		l.logger.DebugContext(ctx, msg, args...)
	}
}

// ===== AUDIT LOGGING =====

type AuditEventType string

const (
	AuditEventCreate AuditEventType = "create"
	AuditEventRead   AuditEventType = "read"
	AuditEventUpdate AuditEventType = "update"
	AuditEventDelete AuditEventType = "delete"
)

type AuditEvent struct {
	Type         AuditEventType         `json:"type"`
	UserID       string                 `json:"user_id"`
	ResourceID   int64                  `json:"resource_id"`
	ResourceType string                 `json:"resource_type"`
	Action       string                 `json:"action"`
	Timestamp    time.Time              `json:"timestamp"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

func (l *ServiceLogger) LogAuditEvent(ctx context.Context, event AuditEvent) {
	attrs := []slog.Attr{
		slog.String("event_type", string(event.Type)),
		slog.String("user_id", event.UserID),
		slog.Int64("resource_id", event.ResourceID),
		slog.String("resource_type", event.ResourceType),
		slog.String("action", event.Action),
		slog.Time("timestamp", event.Timestamp),
	}

	for key, value := range event.Metadata {
		attrs = append(attrs, slog.Any(fmt.Sprintf("meta_%s", key), value))
	}

	l.logger.LogAttrs(ctx, slog.LevelInfo, fmt.Sprintf("Audit: %s %s", event.Action, event.ResourceType), attrs...)
}

// ===== MIDDLEWARE AND HELPERS =====

// ContextualLogger wraps operations with automatic logging
type ContextualLogger struct {
	logger    *ServiceLogger
	operation string
	userID    string
	startTime time.Time
	ctx       context.Context
}

func (l *ServiceLogger) WithOperation(ctx context.Context, operation, userID string) *ContextualLogger {
	return &ContextualLogger{
		logger:    l,
		operation: operation,
		userID:    userID,
		startTime: time.Now(),
		ctx:       ctx,
	}
}

func (cl *ContextualLogger) LogResult(resourceID int64, resourceType string, err error) {
	duration := time.Since(cl.startTime)
	cl.logger.LogOperation(cl.ctx, cl.operation, cl.userID, resourceID, resourceType, duration, err)

	var validationErrors ValidationErrors
	if errors.As(err, &validationErrors) {
		cl.logger.LogValidationError(cl.ctx, cl.operation, cl.userID, validationErrors)
	}
}

func (cl *ContextualLogger) LogAudit(eventType AuditEventType, resourceID int64, resourceType string, metadata map[string]interface{}) {
	cl.logger.LogAuditEvent(cl.ctx, AuditEvent{
		Type:         eventType,
		UserID:       cl.userID,
		ResourceID:   resourceID,
		ResourceType: resourceType,
		Action:       cl.operation,
		Timestamp:    time.Now(),
		Metadata:     metadata,
	})
}

// ===== ERROR FORMATTING HELPERS =====

// FormatError describes err for API error details.
func FormatError(err error) map[string]interface{} {
	if err == nil {
		return nil
	}

	result := map[string]interface{}{
		"message": err.Error(),
		"type":    "unknown",
	}

	var validationErrs ValidationErrors
	var incomplete *questionnaire.IncompleteSubmissionError
	var answerErr *questionnaire.AnswerError

	switch {
	case errors.As(err, &validationErrs):
		result["type"] = "validation"
		result["count"] = len(validationErrs)
		result["errors"] = []ValidationError(validationErrs)

	case errors.As(err, &answerErr):
		result["type"] = "invalid_answer"
		result["question_id"] = answerErr.QuestionID
		result["value"] = answerErr.Value
		if answerErr.Reason != "" {
			result["reason"] = answerErr.Reason
		}

	case errors.As(err, &incomplete):
		result["type"] = "incomplete"
		result["question_id"] = incomplete.QuestionID
		result["index"] = incomplete.Index
		result["domain"] = incomplete.Domain
		result["missing"] = incomplete.Missing

	default:
		switch {
		case IsNotFound(err):
			result["type"] = "not_found"
		case IsUnauthorized(err):
			result["type"] = "unauthorized"
		case IsConflict(err):
			result["type"] = "conflict"
		case IsUnavailable(err):
			result["type"] = "unavailable"
		}
	}

	return result
}
