package handlers

import (
	"fmt"
	"net/http"

	"github.com/SAP-F-2025/diagnosis-service/internal/services"
	"github.com/SAP-F-2025/diagnosis-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type ResultHandler struct {
	BaseHandler
	resultService services.ResultService
}

func NewResultHandler(resultService services.ResultService, logger utils.Logger) *ResultHandler {
	return &ResultHandler{
		BaseHandler:   NewBaseHandler(logger),
		resultService: resultService,
	}
}

// GetResult loads a diagnosis and makes it the presented one
// @Summary Get diagnosis
// @Tags results
// @Produce json
// @Param id path int true "Diagnosis ID"
// @Success 200 {object} SuccessResponse{data=services.ResultView}
// @Failure 404 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /results/{id} [get]
func (h *ResultHandler) GetResult(c *gin.Context) {
	id, ok := ParseInt64Param(c, "id")
	if !ok {
		return
	}

	h.LogRequest(c, "Loading diagnosis", "diagnosis_id", id)

	result, err := h.resultService.Load(c.Request.Context(), id)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}

	h.LogResponse(c, http.StatusOK, "Diagnosis loaded", "diagnosis_id", id)
	c.JSON(http.StatusOK, SuccessResponse{Message: "Diagnosis retrieved", Data: result})
}

// GetCurrentResult returns the presented diagnosis
// @Router /results/current [get]
func (h *ResultHandler) GetCurrentResult(c *gin.Context) {
	result, err := h.resultService.Current(c.Request.Context())
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Diagnosis retrieved", Data: result})
}

// InvalidateResult drops the presented diagnosis
// @Router /results/current [delete]
func (h *ResultHandler) InvalidateResult(c *gin.Context) {
	if err := h.resultService.Invalidate(c.Request.Context()); err != nil {
		h.RespondWithServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListResults returns the caller's diagnosis history, newest first
// @Summary List diagnoses
// @Tags results
// @Produce json
// @Param level query string false "Maturity level filter"
// @Param limit query int false "Max results (1-100)"
// @Success 200 {object} SuccessResponse{data=services.HistoryResponse}
// @Failure 422 {object} ErrorResponse
// @Router /results [get]
func (h *ResultHandler) ListResults(c *gin.Context) {
	var query services.HistoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	history, err := h.resultService.History(c.Request.Context(), &query)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Diagnoses retrieved", Data: history})
}

// ExportResult downloads a diagnosis as a spreadsheet
// @Summary Export diagnosis
// @Tags results
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path int true "Diagnosis ID"
// @Router /results/{id}/export [get]
func (h *ResultHandler) ExportResult(c *gin.Context) {
	id, ok := ParseInt64Param(c, "id")
	if !ok {
		return
	}

	h.LogRequest(c, "Exporting diagnosis", "diagnosis_id", id)

	report, err := h.resultService.Export(c.Request.Context(), id)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename))
	c.Data(http.StatusOK, report.ContentType, report.Content)
	h.LogResponse(c, http.StatusOK, "Diagnosis exported", "diagnosis_id", id, "bytes", len(report.Content))
}
