package handlers

import (
	"context"
	"net/http"

	"github.com/SAP-F-2025/diagnosis-service/internal/models"
	"github.com/SAP-F-2025/diagnosis-service/internal/services"
	"github.com/SAP-F-2025/diagnosis-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type QuestionnaireHandler struct {
	BaseHandler
	questionnaireService services.QuestionnaireService
}

func NewQuestionnaireHandler(questionnaireService services.QuestionnaireService, logger utils.Logger) *QuestionnaireHandler {
	return &QuestionnaireHandler{
		BaseHandler:          NewBaseHandler(logger),
		questionnaireService: questionnaireService,
	}
}

// StartQuestionnaire opens a new questionnaire for the caller
// @Summary Start questionnaire
// @Tags questionnaire
// @Produce json
// @Success 201 {object} SuccessResponse{data=services.SessionView}
// @Failure 401 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /questionnaire [post]
func (h *QuestionnaireHandler) StartQuestionnaire(c *gin.Context) {
	h.LogRequest(c, "Starting questionnaire")

	view, err := h.questionnaireService.Start(c.Request.Context())
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusCreated, "Questionnaire started", view)
}

// GetQuestionnaire returns the current question and progress
// @Router /questionnaire [get]
func (h *QuestionnaireHandler) GetQuestionnaire(c *gin.Context) {
	view, err := h.questionnaireService.Current(c.Request.Context())
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Questionnaire retrieved", Data: view})
}

// EndQuestionnaire discards the caller's questionnaire
// @Router /questionnaire [delete]
func (h *QuestionnaireHandler) EndQuestionnaire(c *gin.Context) {
	h.LogRequest(c, "Ending questionnaire")

	if err := h.questionnaireService.End(c.Request.Context()); err != nil {
		h.RespondWithServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AnswerQuestion records an answer
// @Summary Answer question
// @Description Records "Si"/"No" for binary questions or an integer for scale and categorical ones
// @Tags questionnaire
// @Accept json
// @Produce json
// @Param question_id path int true "Question ID"
// @Param answer body services.AnswerRequest true "Answer"
// @Success 200 {object} SuccessResponse{data=services.SessionView}
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /questionnaire/answers/{question_id} [put]
func (h *QuestionnaireHandler) AnswerQuestion(c *gin.Context) {
	questionID, ok := ParseInt64Param(c, "question_id")
	if !ok {
		return
	}

	var req services.AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusUnprocessableEntity, "Answer rejected", nil, err.Error())
		return
	}

	h.LogDebug(c, "Answering question", "question_id", questionID)

	view, err := h.questionnaireService.Answer(c.Request.Context(), models.QuestionID(questionID), &req)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Answer recorded", Data: view})
}

// NextQuestion moves forward
// @Router /questionnaire/next [post]
func (h *QuestionnaireHandler) NextQuestion(c *gin.Context) {
	h.navigate(c, h.questionnaireService.Next)
}

// PreviousQuestion moves back
// @Router /questionnaire/previous [post]
func (h *QuestionnaireHandler) PreviousQuestion(c *gin.Context) {
	h.navigate(c, h.questionnaireService.Previous)
}

// ResetQuestionnaire clears all answers
// @Router /questionnaire/reset [post]
func (h *QuestionnaireHandler) ResetQuestionnaire(c *gin.Context) {
	h.LogRequest(c, "Resetting questionnaire")
	h.navigate(c, h.questionnaireService.Reset)
}

// SubmitQuestionnaire scores the completed questionnaire
// @Summary Submit questionnaire
// @Tags questionnaire
// @Produce json
// @Success 200 {object} SuccessResponse{data=services.ResultView}
// @Failure 409 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /questionnaire/submit [post]
func (h *QuestionnaireHandler) SubmitQuestionnaire(c *gin.Context) {
	h.LogRequest(c, "Submitting questionnaire")

	result, err := h.questionnaireService.Submit(c.Request.Context())
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Questionnaire submitted", result, "diagnosis_id", result.ID)
}

func (h *QuestionnaireHandler) navigate(c *gin.Context, step func(ctx context.Context) (*services.SessionView, error)) {
	view, err := step(c.Request.Context())
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Questionnaire updated", Data: view})
}
