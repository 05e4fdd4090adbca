package handlers

import (
	"github.com/SAP-F-2025/diagnosis-service/internal/services"
	"github.com/SAP-F-2025/diagnosis-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	questionnaireHandler *QuestionnaireHandler
	resultHandler        *ResultHandler
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		questionnaireHandler: NewQuestionnaireHandler(serviceManager.Questionnaire(), logger),
		resultHandler:        NewResultHandler(serviceManager.Result(), logger),
	}
}

// SetupRoutes sets up all API routes. Everything under /api/v1 goes through auth.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine, auth gin.HandlerFunc) {
	// Health check endpoint
	router.GET("/health", HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1", auth)
	{
		// Questionnaire routes
		questionnaire := v1.Group("/questionnaire")
		{
			questionnaire.POST("", hm.questionnaireHandler.StartQuestionnaire)
			questionnaire.GET("", hm.questionnaireHandler.GetQuestionnaire)
			questionnaire.DELETE("", hm.questionnaireHandler.EndQuestionnaire)
			questionnaire.PUT("/answers/:question_id", hm.questionnaireHandler.AnswerQuestion)
			questionnaire.POST("/next", hm.questionnaireHandler.NextQuestion)
			questionnaire.POST("/previous", hm.questionnaireHandler.PreviousQuestion)
			questionnaire.POST("/reset", hm.questionnaireHandler.ResetQuestionnaire)
			questionnaire.POST("/submit", hm.questionnaireHandler.SubmitQuestionnaire)
		}

		// Result routes
		results := v1.Group("/results")
		{
			results.GET("", hm.resultHandler.ListResults)
			results.GET("/current", hm.resultHandler.GetCurrentResult)
			results.DELETE("/current", hm.resultHandler.InvalidateResult)
			results.GET("/:id", hm.resultHandler.GetResult)
			results.GET("/:id/export", hm.resultHandler.ExportResult)
		}
	}
}
