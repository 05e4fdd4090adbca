package services

import (
	"context"

	"github.com/SAP-F-2025/diagnosis-service/internal/models"
	"github.com/SAP-F-2025/diagnosis-service/internal/questionnaire"
)

// DiagnosisAPI is the external diagnosis collaborator: question catalog, scoring,
// reports and the user's diagnosis history.
type DiagnosisAPI interface {
	questionnaire.CatalogSource
	questionnaire.Scorer
	questionnaire.ResultFetcher
	History(ctx context.Context) ([]*models.Result, error)
}

// QuestionnaireService drives the calling user's questionnaire. The user is taken
// from the identity principal stored in ctx.
type QuestionnaireService interface {
	Start(ctx context.Context) (*SessionView, error)
	Current(ctx context.Context) (*SessionView, error)
	Answer(ctx context.Context, questionID models.QuestionID, req *AnswerRequest) (*SessionView, error)
	Next(ctx context.Context) (*SessionView, error)
	Previous(ctx context.Context) (*SessionView, error)
	Reset(ctx context.Context) (*SessionView, error)
	Submit(ctx context.Context) (*ResultView, error)
	End(ctx context.Context) error
}

// ResultService presents scored diagnoses.
type ResultService interface {
	Load(ctx context.Context, id int64) (*ResultView, error)
	Current(ctx context.Context) (*ResultView, error)
	Invalidate(ctx context.Context) error
	History(ctx context.Context, query *HistoryQuery) (*HistoryResponse, error)
	Export(ctx context.Context, id int64) (*ExportedReport, error)
}

// ServiceManager groups the services exposed over HTTP.
type ServiceManager interface {
	Questionnaire() QuestionnaireService
	Result() ResultService
}

type serviceManager struct {
	questionnaire QuestionnaireService
	result        ResultService
}

func NewServiceManager(questionnaire QuestionnaireService, result ResultService) ServiceManager {
	return &serviceManager{questionnaire: questionnaire, result: result}
}

func (m *serviceManager) Questionnaire() QuestionnaireService { return m.questionnaire }
func (m *serviceManager) Result() ResultService               { return m.result }
