package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/diagnosis-service/internal/cache"
	"github.com/SAP-F-2025/diagnosis-service/internal/identity"
	"github.com/SAP-F-2025/diagnosis-service/internal/models"
	"github.com/SAP-F-2025/diagnosis-service/internal/questionnaire"
	"github.com/SAP-F-2025/diagnosis-service/internal/repositories"
	"github.com/SAP-F-2025/diagnosis-service/internal/validator"
)

// Dependencies wires the services. Cache, Archive and Events are optional.
type Dependencies struct {
	API        DiagnosisAPI
	Options    *questionnaire.OptionRegistry
	Workspaces *WorkspaceRegistry
	Archive    repositories.ResultRepository
	Cache      cache.CacheService
	Events     DiagnosisEventService
	Validator  *validator.Validator
	Logger     *slog.Logger

	CatalogCacheTTL time.Duration
	ResultCacheTTL  time.Duration
}

type questionnaireService struct {
	catalog    questionnaire.CatalogSource
	scorer     questionnaire.Scorer
	options    *questionnaire.OptionRegistry
	resolver   *questionnaire.Resolver
	workspaces *WorkspaceRegistry
	archive    repositories.ResultRepository
	cache      cache.CacheService
	resultTTL  time.Duration
	events     DiagnosisEventService
	validator  *validator.Validator
	logger     *slog.Logger
	opLogger   *ServiceLogger
}

func NewQuestionnaireService(deps Dependencies) QuestionnaireService {
	options := deps.Options
	if options == nil {
		options = questionnaire.DefaultOptionRegistry()
	}
	workspaces := deps.Workspaces
	if workspaces == nil {
		workspaces = NewWorkspaceRegistry()
	}
	return &questionnaireService{
		catalog:    NewCachedCatalogSource(deps.API, deps.Cache, deps.CatalogCacheTTL, deps.Logger),
		scorer:     deps.API,
		options:    options,
		resolver:   questionnaire.NewResolver(options),
		workspaces: workspaces,
		archive:    deps.Archive,
		cache:      deps.Cache,
		resultTTL:  deps.ResultCacheTTL,
		events:     deps.Events,
		validator:  deps.Validator,
		logger:     deps.Logger,
		opLogger:   NewServiceLogger(deps.Logger, LogConfig{Service: "diagnosis-service", Component: "questionnaire"}),
	}
}

// currentUser resolves the calling user from the identity principal in ctx.
func currentUser(ctx context.Context) (string, error) {
	principal, ok := identity.FromContext(ctx)
	if !ok {
		return "", ErrSessionInactive
	}
	userID, ok := principal.CurrentUserID()
	if !ok {
		return "", ErrSessionInactive
	}
	return userID, nil
}

func (s *questionnaireService) session(userID string) (*questionnaire.Session, error) {
	session, ok := s.workspaces.Session(userID)
	if !ok {
		return nil, ErrNoActiveQuestionnaire
	}
	return session, nil
}

// Start loads the catalog and opens a questionnaire at its first question, replacing
// any questionnaire the user had open.
func (s *questionnaireService) Start(ctx context.Context) (view *SessionView, err error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	op := s.opLogger.WithOperation(ctx, "questionnaire.start", userID)
	defer func() { op.LogResult(0, "questionnaire", err) }()

	catalog, err := questionnaire.LoadCatalog(ctx, s.catalog)
	if err != nil {
		return nil, err
	}
	session, err := questionnaire.NewSession(catalog, s.resolver, s.scorer, s.workspaces.Results(userID))
	if err != nil {
		return nil, err
	}
	s.workspaces.Replace(userID, session)

	if s.events != nil {
		if err := s.events.NotifyQuestionnaireStarted(ctx, userID, catalog.Len(), s.options.Version()); err != nil {
			s.logger.WarnContext(ctx, "Failed to publish questionnaire started event", "user_id", userID, "error", err)
		}
	}

	return newSessionView(session, false)
}

func (s *questionnaireService) Current(ctx context.Context) (*SessionView, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	session, err := s.session(userID)
	if err != nil {
		return nil, err
	}
	return newSessionView(session, false)
}

// Answer records an answer. A rejected value leaves the questionnaire untouched.
func (s *questionnaireService) Answer(ctx context.Context, questionID models.QuestionID, req *AnswerRequest) (view *SessionView, err error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	op := s.opLogger.WithOperation(ctx, "questionnaire.answer", userID)
	defer func() { op.LogResult(int64(questionID), "question", err) }()

	if req == nil {
		return nil, ValidationErrors{*NewValidationError("value", "is required", nil)}
	}
	if s.validator != nil {
		if err := s.validator.Validate(req); err != nil {
			return nil, err
		}
	} else if req.Value == nil {
		return nil, ValidationErrors{*NewValidationError("value", "is required", nil)}
	}

	session, err := s.session(userID)
	if err != nil {
		return nil, err
	}
	advanced, err := session.Select(questionID, *req.Value)
	if err != nil {
		return nil, err
	}
	return newSessionView(session, advanced)
}

func (s *questionnaireService) Next(ctx context.Context) (view *SessionView, err error) {
	return s.move(ctx, "questionnaire.next", (*questionnaire.Session).Next)
}

func (s *questionnaireService) Previous(ctx context.Context) (view *SessionView, err error) {
	return s.move(ctx, "questionnaire.previous", (*questionnaire.Session).Previous)
}

func (s *questionnaireService) move(ctx context.Context, operation string, step func(*questionnaire.Session) error) (view *SessionView, err error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	op := s.opLogger.WithOperation(ctx, operation, userID)
	defer func() { op.LogResult(0, "questionnaire", err) }()

	session, err := s.session(userID)
	if err != nil {
		return nil, err
	}
	if err := step(session); err != nil {
		return nil, err
	}
	return newSessionView(session, false)
}

// Reset clears every answer and returns to the first question. A submission still
// in flight is discarded when it returns.
func (s *questionnaireService) Reset(ctx context.Context) (view *SessionView, err error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	op := s.opLogger.WithOperation(ctx, "questionnaire.reset", userID)
	defer func() { op.LogResult(0, "questionnaire", err) }()

	session, err := s.session(userID)
	if err != nil {
		return nil, err
	}

	answered := session.Snapshot().AnsweredCount
	session.Reset()
	generation := session.Snapshot().Generation

	if s.events != nil {
		if err := s.events.NotifyQuestionnaireReset(ctx, userID, answered, generation); err != nil {
			s.logger.WarnContext(ctx, "Failed to publish questionnaire reset event", "user_id", userID, "error", err)
		}
	}

	return newSessionView(session, false)
}

// Submit scores the completed questionnaire. Repeating it returns the same result;
// archiving and notification happen once.
func (s *questionnaireService) Submit(ctx context.Context) (view *ResultView, err error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	op := s.opLogger.WithOperation(ctx, "questionnaire.submit", userID)
	var resultID int64
	defer func() { op.LogResult(resultID, "diagnosis", err) }()

	session, err := s.session(userID)
	if err != nil {
		return nil, err
	}

	// A client disconnect does not cancel scoring; the client timeout still applies.
	scoringCtx := context.WithoutCancel(ctx)
	result, fresh, err := session.SubmitOnce(scoringCtx)
	if err != nil {
		return nil, err
	}
	resultID = result.ID

	if fresh {
		s.afterSubmit(scoringCtx, userID, result, session.Catalog().Len())
		op.LogAudit(AuditEventCreate, result.ID, "diagnosis", map[string]interface{}{
			"level": string(result.PredictedLevel),
		})
	}

	return newResultView(result), nil
}

// afterSubmit archives, caches and announces a fresh result. Failures are logged
// only: the user already holds the result.
func (s *questionnaireService) afterSubmit(ctx context.Context, userID string, result *models.Result, answerCount int) {
	if s.archive != nil {
		if err := s.archive.Save(ctx, userID, result); err != nil {
			s.logger.WarnContext(ctx, "Failed to archive diagnosis", "user_id", userID, "diagnosis_id", result.ID, "error", err)
		}
	}
	if s.cache != nil && s.resultTTL > 0 {
		if err := s.cache.Set(ctx, cache.ResultKey(userID, result.ID), result, s.resultTTL); err != nil {
			s.logger.WarnContext(ctx, "Failed to cache diagnosis", "user_id", userID, "diagnosis_id", result.ID, "error", err)
		}
	}
	if s.events != nil {
		if err := s.events.NotifyDiagnosisSubmitted(ctx, userID, result, answerCount); err != nil {
			s.logger.WarnContext(ctx, "Failed to publish diagnosis submitted event", "user_id", userID, "error", err)
		}
	}
}

// End closes the user's questionnaire, discarding its answers.
func (s *questionnaireService) End(ctx context.Context) (err error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return err
	}
	op := s.opLogger.WithOperation(ctx, "questionnaire.end", userID)
	defer func() { op.LogResult(0, "questionnaire", err) }()

	if !s.workspaces.Remove(userID) {
		return fmt.Errorf("end: %w", ErrNoActiveQuestionnaire)
	}
	return nil
}
