package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/SAP-F-2025/diagnosis-service/internal/models"
)

// ErrNotFound is returned when an archived result does not exist for the user.
var ErrNotFound = errors.New("record not found")

// ResultFilters narrows a user's archived results.
type ResultFilters struct {
	Level     *models.MaturityLevel `json:"level"`
	DateFrom  *time.Time            `json:"date_from"`
	DateTo    *time.Time            `json:"date_to"`
	Limit     int                   `json:"limit"`
	Offset    int                   `json:"offset"`
	SortBy    string                `json:"sort_by"`    // "diagnosed_at", "success_probability"
	SortOrder string                `json:"sort_order"` // "asc", "desc"
}

// ResultRepository archives every Result a user received. It never stores in-progress
// answers.
type ResultRepository interface {
	Save(ctx context.Context, userID string, result *models.Result) error
	GetByResultID(ctx context.Context, userID string, resultID int64) (*models.Result, error)
	ListByUser(ctx context.Context, userID string, filters ResultFilters) ([]*models.Result, int64, error)
}
