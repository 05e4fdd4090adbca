package services

import (
	"bytes"
	"errors"
	"testing"

	"github.com/SAP-F-2025/diagnosis-service/internal/cache"
	"github.com/SAP-F-2025/diagnosis-service/internal/events"
	"github.com/SAP-F-2025/diagnosis-service/internal/models"
	"github.com/SAP-F-2025/diagnosis-service/internal/questionnaire"
	"github.com/SAP-F-2025/diagnosis-service/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var errUnavailable = &questionnaire.ScoringError{Op: "load result", Err: errors.New("connection refused")}

func TestResultService_Load(t *testing.T) {
	env := newTestEnv(t)
	ctx := userContext("user-1")
	svc := NewResultService(env.deps)

	env.api.On("GetResult", mock.Anything, int64(7)).Return(testResult(7, models.LevelMaster, 2), nil).Once()
	env.archive.On("Save", mock.Anything, "user-1", mock.Anything).Return(nil)

	view, err := svc.Load(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, models.LevelMaster, view.PredictedLevel)
	assert.Equal(t, models.LevelMaster.Description(), view.LevelDescription)

	current, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, view.Result, current.Result)

	// Served from the result cache the second time
	assert.True(t, env.cache.Has(cache.ResultKey("user-1", 7)))
	_, err = svc.Load(ctx, 7)
	require.NoError(t, err)
	env.api.AssertNumberOfCalls(t, "GetResult", 1)

	assert.Len(t, env.publisher.EventsOfType(events.EventDiagnosisViewed), 2)
}

func TestResultService_LoadFallsBackToArchive(t *testing.T) {
	env := newTestEnv(t)
	env.deps.Cache = nil
	ctx := userContext("user-1")
	svc := NewResultService(env.deps)

	archived := testResult(7, models.LevelConservative, 2)
	env.api.On("GetResult", mock.Anything, int64(7)).Return(nil, errUnavailable)
	env.api.On("GetResult", mock.Anything, int64(8)).Return(nil, errUnavailable)
	env.archive.On("GetByResultID", mock.Anything, "user-1", int64(7)).Return(archived, nil)
	env.archive.On("GetByResultID", mock.Anything, "user-1", int64(8)).Return(nil, repositories.ErrNotFound)

	view, err := svc.Load(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, archived, view.Result)

	_, err = svc.Load(ctx, 8)
	assert.ErrorIs(t, err, questionnaire.ErrScoringUnavailable)
}

func TestResultService_LoadNotFound(t *testing.T) {
	env := newTestEnv(t)
	ctx := userContext("user-1")
	svc := NewResultService(env.deps)

	env.api.On("GetResult", mock.Anything, int64(404)).Return(nil, questionnaire.ErrResultNotFound)

	_, err := svc.Load(ctx, 404)
	assert.ErrorIs(t, err, questionnaire.ErrResultNotFound)
	assert.True(t, IsNotFound(err))

	_, err = svc.Current(ctx)
	assert.ErrorIs(t, err, ErrNoCurrentResult)
	env.archive.AssertNotCalled(t, "GetByResultID", mock.Anything, mock.Anything, mock.Anything)
}

func TestResultService_Invalidate(t *testing.T) {
	env := newTestEnv(t)
	ctx := userContext("user-1")
	svc := NewResultService(env.deps)

	env.api.On("GetResult", mock.Anything, int64(7)).Return(testResult(7, models.LevelMaster, 2), nil)
	env.archive.On("Save", mock.Anything, "user-1", mock.Anything).Return(nil)

	_, err := svc.Load(ctx, 7)
	require.NoError(t, err)
	require.NoError(t, svc.Invalidate(ctx))

	_, err = svc.Current(ctx)
	assert.ErrorIs(t, err, ErrNoCurrentResult)
}

func TestResultService_SharesWorkspaceWithQuestionnaire(t *testing.T) {
	env := newTestEnv(t)
	ctx := userContext("user-1")
	questionnaireSvc := startedService(t, env, ctx)
	resultSvc := NewResultService(env.deps)
	answerAll(t, questionnaireSvc, ctx)

	env.api.On("Submit", mock.Anything, mock.Anything).Return(testResult(12, models.LevelFollower, 4), nil)
	env.archive.On("Save", mock.Anything, "user-1", mock.Anything).Return(nil)

	_, err := questionnaireSvc.Submit(ctx)
	require.NoError(t, err)

	current, err := resultSvc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(12), current.ID)
}

func TestResultService_History(t *testing.T) {
	env := newTestEnv(t)
	ctx := userContext("user-1")
	svc := NewResultService(env.deps)

	env.api.On("History", mock.Anything).Return([]*models.Result{
		testResult(1, models.LevelBeginner, 1),
		testResult(3, models.LevelFollower, 9),
		testResult(2, models.LevelFollower, 5),
	}, nil)

	all, err := svc.History(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, SourceCollaborator, all.Source)
	assert.Equal(t, 3, all.Total)
	assert.Equal(t, []int64{3, 2, 1}, []int64{all.Results[0].ID, all.Results[1].ID, all.Results[2].ID})

	followers, err := svc.History(ctx, &HistoryQuery{Level: "Seguidor", Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, followers.Total)
	require.Len(t, followers.Results, 1)
	assert.Equal(t, int64(3), followers.Results[0].ID)

	_, err = svc.History(ctx, &HistoryQuery{Level: "Experto"})
	assert.True(t, IsValidation(err))
}

func TestResultService_HistoryFallsBackToArchive(t *testing.T) {
	env := newTestEnv(t)
	ctx := userContext("user-1")
	svc := NewResultService(env.deps)

	env.api.On("History", mock.Anything).Return(nil, &questionnaire.ScoringError{Op: "history", Err: errors.New("timeout")})
	env.archive.On("ListByUser", mock.Anything, "user-1", mock.Anything).
		Return([]*models.Result{testResult(5, models.LevelMaster, 2)}, int64(1), nil)

	resp, err := svc.History(ctx, &HistoryQuery{})
	require.NoError(t, err)
	assert.Equal(t, SourceArchive, resp.Source)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, int64(5), resp.Results[0].ID)
}

func TestResultService_Export(t *testing.T) {
	env := newTestEnv(t)
	ctx := userContext("user-1")
	svc := NewResultService(env.deps)

	env.api.On("GetResult", mock.Anything, int64(7)).Return(testResult(7, models.LevelFollower, 2), nil)
	env.archive.On("Save", mock.Anything, "user-1", mock.Anything).Return(nil)

	report, err := svc.Export(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "diagnostico-7.xlsx", report.Filename)
	assert.Equal(t, xlsxContentType, report.ContentType)

	f, err := excelize.OpenReader(bytes.NewReader(report.Content))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetSummary, SheetDomains, SheetImprovements, SheetStrengths}, f.GetSheetList())

	level, err := f.GetCellValue(SheetSummary, "B4")
	require.NoError(t, err)
	assert.Equal(t, "Seguidor", level)

	domain, err := f.GetCellValue(SheetDomains, "A2")
	require.NoError(t, err)
	assert.Equal(t, "Operaciones", domain)

	factor, err := f.GetCellValue(SheetImprovements, "B2")
	require.NoError(t, err)
	assert.Equal(t, "Inversión en Tecnología", factor)

	// Export does not change what is presented
	_, err = svc.Current(ctx)
	assert.ErrorIs(t, err, ErrNoCurrentResult)
}

func TestReportExporter_NilResult(t *testing.T) {
	_, err := NewReportExporter().Export(nil)
	assert.ErrorIs(t, err, ErrExportFailed)
}
