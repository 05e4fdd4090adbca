package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/SAP-F-2025/diagnosis-service/internal/cache"
	"github.com/SAP-F-2025/diagnosis-service/internal/models"
	"github.com/SAP-F-2025/diagnosis-service/internal/questionnaire"
	"github.com/SAP-F-2025/diagnosis-service/internal/repositories"
	"github.com/SAP-F-2025/diagnosis-service/internal/validator"
)

// History sources
const (
	SourceCollaborator = "collaborator"
	SourceArchive      = "archive"
)

const defaultArchiveLimit = 100

type resultService struct {
	api        DiagnosisAPI
	workspaces *WorkspaceRegistry
	archive    repositories.ResultRepository
	cache      cache.CacheService
	resultTTL  time.Duration
	events     DiagnosisEventService
	exporter   *ReportExporter
	validator  *validator.Validator
	logger     *slog.Logger
	opLogger   *ServiceLogger
}

// NewResultService shares deps.Workspaces with the questionnaire service so both
// operate on the same per-user result.
func NewResultService(deps Dependencies) ResultService {
	workspaces := deps.Workspaces
	if workspaces == nil {
		workspaces = NewWorkspaceRegistry()
	}
	return &resultService{
		api:        deps.API,
		workspaces: workspaces,
		archive:    deps.Archive,
		cache:      deps.Cache,
		resultTTL:  deps.ResultCacheTTL,
		events:     deps.Events,
		exporter:   NewReportExporter(),
		validator:  deps.Validator,
		logger:     deps.Logger,
		opLogger:   NewServiceLogger(deps.Logger, LogConfig{Service: "diagnosis-service", Component: "results"}),
	}
}

// Load fetches a past diagnosis and presents it.
func (s *resultService) Load(ctx context.Context, id int64) (view *ResultView, err error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	op := s.opLogger.WithOperation(ctx, "result.load", userID)
	defer func() { op.LogResult(id, "diagnosis", err) }()

	result, err := s.workspaces.Results(userID).Load(ctx, s.fetcher(userID), id)
	if err != nil {
		return nil, err
	}

	if s.events != nil {
		if err := s.events.NotifyDiagnosisViewed(ctx, userID, result.ID); err != nil {
			s.logger.WarnContext(ctx, "Failed to publish diagnosis viewed event", "user_id", userID, "error", err)
		}
	}
	return newResultView(result), nil
}

// Current returns the presented diagnosis. It is withheld while a load or
// submission is in flight.
func (s *resultService) Current(ctx context.Context) (*ResultView, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	result, loading := s.workspaces.Results(userID).Current()
	if loading {
		return nil, ErrResultLoading
	}
	if result == nil {
		return nil, ErrNoCurrentResult
	}
	return newResultView(result), nil
}

// Invalidate drops the presented diagnosis. Answers are not touched.
func (s *resultService) Invalidate(ctx context.Context) (err error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return err
	}
	op := s.opLogger.WithOperation(ctx, "result.invalidate", userID)
	defer func() { op.LogResult(0, "diagnosis", err) }()

	s.workspaces.Results(userID).Invalidate()
	return nil
}

// History lists the user's diagnoses, most recent first. The local archive serves
// the list while the collaborator is unavailable.
func (s *resultService) History(ctx context.Context, query *HistoryQuery) (resp *HistoryResponse, err error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	op := s.opLogger.WithOperation(ctx, "result.history", userID)
	defer func() { op.LogResult(0, "diagnosis", err) }()

	if query == nil {
		query = &HistoryQuery{}
	}
	if s.validator != nil {
		if err := s.validator.Validate(query); err != nil {
			return nil, err
		}
	}

	var level *models.MaturityLevel
	if query.Level != "" {
		l, err := models.ParseMaturityLevel(query.Level)
		if err != nil {
			return nil, ValidationErrors{*NewValidationError("level", err.Error(), query.Level)}
		}
		level = &l
	}

	source := SourceCollaborator
	results, err := s.api.History(ctx)
	if err != nil {
		if !IsUnavailable(err) || s.archive == nil {
			return nil, err
		}
		s.logger.WarnContext(ctx, "Diagnosis history unavailable, serving archive", "user_id", userID, "error", err)

		archived, _, archiveErr := s.archive.ListByUser(ctx, userID, repositories.ResultFilters{Limit: defaultArchiveLimit})
		if archiveErr != nil {
			s.logger.ErrorContext(ctx, "Archive read failed", "user_id", userID, "error", archiveErr)
			return nil, err
		}
		results = archived
		source = SourceArchive
	}

	filtered := make([]*models.Result, 0, len(results))
	for _, r := range results {
		if r == nil || (level != nil && r.PredictedLevel != *level) {
			continue
		}
		filtered = append(filtered, r)
	}
	slices.SortStableFunc(filtered, newestFirst)

	total := len(filtered)
	if query.Limit > 0 && len(filtered) > query.Limit {
		filtered = filtered[:query.Limit]
	}

	views := make([]*ResultView, len(filtered))
	for i, r := range filtered {
		views[i] = newResultView(r)
	}
	return &HistoryResponse{Results: views, Total: total, Source: source}, nil
}

// Export renders a diagnosis as an xlsx report. The presented result is not changed.
func (s *resultService) Export(ctx context.Context, id int64) (report *ExportedReport, err error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	op := s.opLogger.WithOperation(ctx, "result.export", userID)
	defer func() { op.LogResult(id, "diagnosis", err) }()

	result, err := s.fetcher(userID).GetResult(ctx, id)
	if err != nil {
		return nil, err
	}
	content, err := s.exporter.Export(result)
	if err != nil {
		return nil, err
	}

	op.LogAudit(AuditEventRead, id, "diagnosis_report", map[string]interface{}{"bytes": len(content)})
	return &ExportedReport{
		Filename:    fmt.Sprintf("diagnostico-%d.xlsx", id),
		ContentType: xlsxContentType,
		Content:     content,
	}, nil
}

func (s *resultService) fetcher(userID string) *resultFetcher {
	return &resultFetcher{
		userID:  userID,
		api:     s.api,
		archive: s.archive,
		cache:   s.cache,
		ttl:     s.resultTTL,
		logger:  s.logger,
	}
}

// resultFetcher reads a user's result from the cache, then the collaborator, then
// the archive when the collaborator is unavailable.
type resultFetcher struct {
	userID  string
	api     DiagnosisAPI
	archive repositories.ResultRepository
	cache   cache.CacheService
	ttl     time.Duration
	logger  *slog.Logger
}

func (f *resultFetcher) GetResult(ctx context.Context, id int64) (*models.Result, error) {
	key := cache.ResultKey(f.userID, id)

	if f.cache != nil {
		var cached models.Result
		err := f.cache.Get(ctx, key, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			f.logger.WarnContext(ctx, "Result cache read failed", "diagnosis_id", id, "error", err)
		}
	}

	result, err := f.api.GetResult(ctx, id)
	if err == nil && result != nil {
		f.remember(ctx, result)
		return result, nil
	}

	if f.archive != nil && errors.Is(err, questionnaire.ErrScoringUnavailable) {
		archived, archiveErr := f.archive.GetByResultID(ctx, f.userID, id)
		if archiveErr == nil {
			f.logger.WarnContext(ctx, "Serving archived diagnosis", "diagnosis_id", id, "error", err)
			return archived, nil
		}
		if !errors.Is(archiveErr, repositories.ErrNotFound) {
			f.logger.ErrorContext(ctx, "Archive read failed", "diagnosis_id", id, "error", archiveErr)
		}
	}
	return result, err
}

func (f *resultFetcher) remember(ctx context.Context, result *models.Result) {
	if f.cache != nil && f.ttl > 0 {
		if err := f.cache.Set(ctx, cache.ResultKey(f.userID, result.ID), result, f.ttl); err != nil {
			f.logger.WarnContext(ctx, "Result cache write failed", "diagnosis_id", result.ID, "error", err)
		}
	}
	if f.archive != nil {
		if err := f.archive.Save(ctx, f.userID, result); err != nil {
			f.logger.WarnContext(ctx, "Failed to archive diagnosis", "diagnosis_id", result.ID, "error", err)
		}
	}
}
