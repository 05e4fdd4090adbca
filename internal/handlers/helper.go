package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// ParseInt64Param reads a positive integer path parameter. It writes a 400
// response and returns false when the parameter is invalid.
func ParseInt64Param(c *gin.Context, param string) (int64, bool) {
	idStr := strings.TrimSpace(c.Param(param))
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "must be a positive integer",
		})
		return 0, false
	}
	return id, true
}

// HealthCheck reports liveness.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "diagnosis-service",
	})
}
