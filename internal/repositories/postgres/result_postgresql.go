package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/SAP-F-2025/diagnosis-service/internal/models"
	"github.com/SAP-F-2025/diagnosis-service/internal/repositories"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ResultPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewResultPostgreSQL(db *gorm.DB) repositories.ResultRepository {
	return &ResultPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

// Save inserts the result or refreshes the archived copy of the same diagnosis.
func (r ResultPostgreSQL) Save(ctx context.Context, userID string, result *models.Result) error {
	if userID == "" || result == nil {
		return errors.New("archive: user id and result are required")
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("archive: encode result: %w", err)
	}

	record := models.DiagnosisRecord{
		UserID:             userID,
		ResultID:           result.ID,
		PredictedLevel:     result.PredictedLevel,
		SuccessProbability: result.SuccessProbability,
		DiagnosedAt:        result.Timestamp,
		Payload:            datatypes.JSON(payload),
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "result_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"predicted_level", "success_probability", "diagnosed_at", "payload", "updated_at",
			}),
		}).
		Create(&record).Error
}

func (r ResultPostgreSQL) GetByResultID(ctx context.Context, userID string, resultID int64) (*models.Result, error) {
	var record models.DiagnosisRecord
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND result_id = ?", userID, resultID).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}
	return decodeRecord(record)
}

func (r ResultPostgreSQL) ListByUser(ctx context.Context, userID string, filters repositories.ResultFilters) ([]*models.Result, int64, error) {
	var records []models.DiagnosisRecord
	var total int64

	query := r.db.WithContext(ctx).Model(&models.DiagnosisRecord{}).Where("user_id = ?", userID)
	query = r.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = r.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset,
		"diagnosed_at", "success_probability")

	if err := query.Find(&records).Error; err != nil {
		return nil, 0, err
	}

	results := make([]*models.Result, 0, len(records))
	for _, record := range records {
		result, err := decodeRecord(record)
		if err != nil {
			return nil, 0, err
		}
		results = append(results, result)
	}
	return results, total, nil
}

func (r ResultPostgreSQL) applyFilters(query *gorm.DB, filters repositories.ResultFilters) *gorm.DB {
	if filters.Level != nil {
		query = query.Where("predicted_level = ?", *filters.Level)
	}
	if filters.DateFrom != nil {
		query = query.Where("diagnosed_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("diagnosed_at <= ?", *filters.DateTo)
	}
	return query
}

func decodeRecord(record models.DiagnosisRecord) (*models.Result, error) {
	var result models.Result
	if err := json.Unmarshal(record.Payload, &result); err != nil {
		return nil, fmt.Errorf("archive: decode result %d: %w", record.ResultID, err)
	}
	return &result, nil
}
