package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/SAP-F-2025/diagnosis-service/internal/questionnaire"
	"github.com/SAP-F-2025/diagnosis-service/internal/services"
	"github.com/SAP-F-2025/diagnosis-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging functionality for all handlers
type BaseHandler struct {
	logger utils.Logger
}

// NewBaseHandler creates a new base handler with logging capability
func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{
		logger: logger,
	}
}

// requestLogger returns the logger ContextLogger scoped to this request, falling
// back to the handler logger when the middleware is not installed.
func (h *BaseHandler) requestLogger(c *gin.Context) utils.Logger {
	return utils.GetLoggerFromContext(c, h.logger)
}

// LogRequest logs incoming HTTP requests with context information
func (h *BaseHandler) LogRequest(c *gin.Context, message string, additionalFields ...interface{}) {
	start := time.Now()
	c.Set(requestStartKey, start)

	fields := []interface{}{
		"remote_addr", c.ClientIP(),
		"user_agent", c.Request.UserAgent(),
		"user_id", h.extractUserID(c),
		"timestamp", start.Format(time.RFC3339),
	}
	fields = append(fields, additionalFields...)

	h.requestLogger(c).Info(message, fields...)
}

// LogResponse logs HTTP responses with timing and status information
func (h *BaseHandler) LogResponse(c *gin.Context, statusCode int, message string, additionalFields ...interface{}) {
	var duration time.Duration
	if started, ok := c.Get(requestStartKey); ok {
		duration = time.Since(started.(time.Time))
	}

	fields := append([]interface{}{"message", message}, additionalFields...)
	h.requestLogger(c).LogRequest(c.Request.Method, c.Request.URL.Path, statusCode, duration.String(), fields...)
}

// LogError logs error details with context information
func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	fields := append([]interface{}{"user_id", h.extractUserID(c)}, additionalFields...)
	h.requestLogger(c).LogError(err, message, fields...)
}

func (h *BaseHandler) LogDebug(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := append([]interface{}{"user_id", h.extractUserID(c)}, additionalFields...)
	h.requestLogger(c).Debug(message, fields...)
}

func (h *BaseHandler) LogInfo(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := append([]interface{}{"user_id", h.extractUserID(c)}, additionalFields...)
	h.requestLogger(c).Info(message, fields...)
}

func (h *BaseHandler) LogWarn(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := append([]interface{}{"user_id", h.extractUserID(c)}, additionalFields...)
	h.requestLogger(c).Warn(message, fields...)
}

// Helper method to extract user ID from context
func (h *BaseHandler) extractUserID(c *gin.Context) interface{} {
	if userID, exists := c.Get("user_id"); exists {
		return userID
	}
	return nil
}

// RespondWithError sends a consistent error response and logs it
func (h *BaseHandler) RespondWithError(c *gin.Context, statusCode int, message string, err error, details ...interface{}) {
	errorResp := ErrorResponse{
		Message: message,
	}

	if len(details) > 0 {
		errorResp.Details = details[0]
	}

	// Log the error with context
	if err != nil {
		h.LogError(c, err, message, "status_code", statusCode)
	} else {
		h.LogWarn(c, message, "status_code", statusCode)
	}

	c.JSON(statusCode, errorResp)
}

// RespondWithSuccess sends a consistent success response and logs it
func (h *BaseHandler) RespondWithSuccess(c *gin.Context, statusCode int, message string, data interface{}, additionalFields ...interface{}) {
	successResp := SuccessResponse{
		Message: message,
		Data:    data,
	}

	// Log the successful response
	fields := []interface{}{"status_code", statusCode}
	fields = append(fields, additionalFields...)
	h.LogInfo(c, message, fields...)

	c.JSON(statusCode, successResp)
}

// ===== ERROR MAPPING =====

// RespondWithServiceError maps a service error onto an HTTP status. Collaborator
// failures keep the questionnaire intact, so the client may retry.
func (h *BaseHandler) RespondWithServiceError(c *gin.Context, err error) {
	details := services.FormatError(err)

	var validationErrors services.ValidationErrors
	var fieldError *services.ValidationError
	switch {
	case errors.As(err, &validationErrors):
		h.RespondWithError(c, http.StatusUnprocessableEntity, "Validation failed", nil, validationErrors)
	case errors.As(err, &fieldError):
		h.RespondWithError(c, http.StatusUnprocessableEntity, "Validation failed", nil, services.ValidationErrors{*fieldError})
	case questionnaire.IsValidation(err):
		h.RespondWithError(c, http.StatusUnprocessableEntity, "Answer rejected", nil, details)

	case services.IsUnauthorized(err):
		h.RespondWithError(c, http.StatusUnauthorized, "Session is not active", nil)

	case errors.Is(err, services.ErrNoActiveQuestionnaire):
		h.RespondWithError(c, http.StatusNotFound, "No questionnaire in progress", nil)
	case errors.Is(err, questionnaire.ErrResultNotFound):
		h.RespondWithError(c, http.StatusNotFound, "Diagnosis not found", nil)
	case services.IsNotFound(err):
		h.RespondWithError(c, http.StatusNotFound, "Resource not found", nil, details)

	case errors.Is(err, questionnaire.ErrIncompleteSubmission):
		h.RespondWithError(c, http.StatusConflict, "Questionnaire is incomplete", nil, details)
	case errors.Is(err, questionnaire.ErrStaleResponse):
		h.RespondWithError(c, http.StatusConflict, "Questionnaire was reset while the request was in flight", nil)
	case services.IsConflict(err):
		h.RespondWithError(c, http.StatusConflict, err.Error(), nil, details)

	// Catalog failures also wrap the scoring sentinel; check them first
	case errors.Is(err, questionnaire.ErrCatalogUnavailable):
		h.RespondWithError(c, http.StatusServiceUnavailable, "Question catalog unavailable", err)
	case errors.Is(err, questionnaire.ErrScoringUnavailable):
		h.RespondWithError(c, http.StatusBadGateway, "Diagnosis service unavailable", err)

	default:
		h.RespondWithError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}

const requestStartKey = "request_start"
