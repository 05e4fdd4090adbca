package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SAP-F-2025/diagnosis-service/internal/identity"
	"github.com/SAP-F-2025/diagnosis-service/internal/models"
	"github.com/SAP-F-2025/diagnosis-service/internal/questionnaire"
	"github.com/SAP-F-2025/diagnosis-service/internal/services"
	"github.com/SAP-F-2025/diagnosis-service/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "handler-test-secret"

type MockQuestionnaireService struct {
	mock.Mock
}

func (m *MockQuestionnaireService) view(args mock.Arguments) (*services.SessionView, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SessionView), args.Error(1)
}

func (m *MockQuestionnaireService) Start(ctx context.Context) (*services.SessionView, error) {
	return m.view(m.Called(ctx))
}

func (m *MockQuestionnaireService) Current(ctx context.Context) (*services.SessionView, error) {
	return m.view(m.Called(ctx))
}

func (m *MockQuestionnaireService) Answer(ctx context.Context, questionID models.QuestionID, req *services.AnswerRequest) (*services.SessionView, error) {
	return m.view(m.Called(ctx, questionID, req))
}

func (m *MockQuestionnaireService) Next(ctx context.Context) (*services.SessionView, error) {
	return m.view(m.Called(ctx))
}

func (m *MockQuestionnaireService) Previous(ctx context.Context) (*services.SessionView, error) {
	return m.view(m.Called(ctx))
}

func (m *MockQuestionnaireService) Reset(ctx context.Context) (*services.SessionView, error) {
	return m.view(m.Called(ctx))
}

func (m *MockQuestionnaireService) Submit(ctx context.Context) (*services.ResultView, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ResultView), args.Error(1)
}

func (m *MockQuestionnaireService) End(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockResultService struct {
	mock.Mock
}

func (m *MockResultService) Load(ctx context.Context, id int64) (*services.ResultView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ResultView), args.Error(1)
}

func (m *MockResultService) Current(ctx context.Context) (*services.ResultView, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ResultView), args.Error(1)
}

func (m *MockResultService) Invalidate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockResultService) History(ctx context.Context, query *services.HistoryQuery) (*services.HistoryResponse, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.HistoryResponse), args.Error(1)
}

func (m *MockResultService) Export(ctx context.Context, id int64) (*services.ExportedReport, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ExportedReport), args.Error(1)
}

type testServer struct {
	router        *gin.Engine
	questionnaire *MockQuestionnaireService
	results       *MockResultService
	token         string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithLog(t, io.Discard)
}

func newTestServerWithLog(t *testing.T, logOutput io.Writer) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(logOutput, nil)))
	verifier, err := identity.NewJWTVerifier(testSecret)
	require.NoError(t, err)
	token, err := identity.SignToken(testSecret, "user-1", "user-1@example.com", time.Hour)
	require.NoError(t, err)

	s := &testServer{
		router:        gin.New(),
		questionnaire: new(MockQuestionnaireService),
		results:       new(MockResultService),
		token:         token,
	}
	s.router.Use(utils.ContextLogger(logger))
	NewHandlerManager(services.NewServiceManager(s.questionnaire, s.results), logger).
		SetupRoutes(s.router, identity.Middleware(verifier, logger))
	return s
}

func (s *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+s.token)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func sampleView() *services.SessionView {
	return &services.SessionView{
		Question: services.QuestionView{ID: 2, Text: "¿Utiliza herramientas digitales?", Domain: "Operaciones", Type: "Escala"},
		Index:    1,
		Count:    3,
	}
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","service":"diagnosis-service"}`, w.Body.String())
}

func TestRoutesRequireAuthentication(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/questionnaire", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	s.questionnaire.AssertNotCalled(t, "Start", mock.Anything)
}

func TestQuestionnaireHandler_Start(t *testing.T) {
	s := newTestServer(t)
	s.questionnaire.On("Start", mock.MatchedBy(func(ctx context.Context) bool {
		p, ok := identity.FromContext(ctx)
		return ok && p.UserID == "user-1"
	})).Return(sampleView(), nil)

	w := s.do(http.MethodPost, "/api/v1/questionnaire", "")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var resp struct {
		Data services.SessionView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.QuestionID(2), resp.Data.Question.ID)
	assert.Equal(t, 3, resp.Data.Count)
}

func TestHandlersLogWithRequestLogger(t *testing.T) {
	var logs bytes.Buffer
	s := newTestServerWithLog(t, &logs)
	s.questionnaire.On("Start", mock.Anything).Return(sampleView(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/questionnaire", nil)
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set(utils.RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var line string
	for _, l := range strings.Split(logs.String(), "\n") {
		if strings.Contains(l, "Starting questionnaire") {
			line = l
		}
	}
	require.NotEmpty(t, line)
	assert.Contains(t, line, "request_id=req-42")
	assert.Contains(t, line, "path=/api/v1/questionnaire")
	assert.Contains(t, line, "user_id=user-1")
}

func TestGetLoggerFromContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fallback := utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	scoped := fallback.With("request_id", "abc")

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Same(t, fallback, utils.GetLoggerFromContext(c, fallback))

	c.Set("logger", "not a logger")
	assert.Same(t, fallback, utils.GetLoggerFromContext(c, fallback))

	c.Set("logger", scoped)
	assert.Same(t, scoped, utils.GetLoggerFromContext(c, fallback))
}

func TestQuestionnaireHandler_Answer(t *testing.T) {
	s := newTestServer(t)
	s.questionnaire.On("Answer", mock.Anything, models.QuestionID(2), mock.MatchedBy(func(req *services.AnswerRequest) bool {
		return req.Value != nil && req.Value.Equal(models.Number(4))
	})).Return(sampleView(), nil)
	s.questionnaire.On("Answer", mock.Anything, models.QuestionID(1), mock.Anything).
		Return(nil, &questionnaire.AnswerError{QuestionID: 1, Value: models.Token("Quizas"), Err: questionnaire.ErrInvalidAnswerValue})
	s.questionnaire.On("Answer", mock.Anything, models.QuestionID(99), mock.Anything).
		Return(nil, questionnaire.ErrUnknownQuestion)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{"recorded", "/api/v1/questionnaire/answers/2", `{"value":4}`, http.StatusOK},
		{"rejected value", "/api/v1/questionnaire/answers/1", `{"value":"Quizas"}`, http.StatusUnprocessableEntity},
		{"fractional value", "/api/v1/questionnaire/answers/2", `{"value":4.5}`, http.StatusUnprocessableEntity},
		{"unknown question", "/api/v1/questionnaire/answers/99", `{"value":1}`, http.StatusNotFound},
		{"bad id", "/api/v1/questionnaire/answers/abc", `{"value":1}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(http.MethodPut, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestQuestionnaireHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"no questionnaire", services.ErrNoActiveQuestionnaire, http.StatusNotFound},
		{"inactive session", services.ErrSessionInactive, http.StatusUnauthorized},
		{"incomplete", &questionnaire.IncompleteSubmissionError{QuestionID: 2, Index: 1, Missing: 1}, http.StatusConflict},
		{"stale", questionnaire.ErrStaleResponse, http.StatusConflict},
		{"in progress", questionnaire.ErrSubmissionInProgress, http.StatusConflict},
		{"scoring down", &questionnaire.ScoringError{Op: "submit", Err: errors.New("timeout")}, http.StatusBadGateway},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			s.questionnaire.On("Submit", mock.Anything).Return(nil, tt.err)

			w := s.do(http.MethodPost, "/api/v1/questionnaire/submit", "")
			assert.Equal(t, tt.status, w.Code)
			assert.NotEmpty(t, decodeError(t, w).Message)
		})
	}
}

func TestQuestionnaireHandler_IncompleteDetails(t *testing.T) {
	s := newTestServer(t)
	s.questionnaire.On("Submit", mock.Anything).
		Return(nil, &questionnaire.IncompleteSubmissionError{QuestionID: 6, Index: 2, Domain: "Organización", Missing: 1})

	w := s.do(http.MethodPost, "/api/v1/questionnaire/submit", "")
	require.Equal(t, http.StatusConflict, w.Code)

	details, ok := decodeError(t, w).Details.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "incomplete", details["type"])
	assert.Equal(t, float64(6), details["question_id"])
}

func TestQuestionnaireHandler_Navigation(t *testing.T) {
	s := newTestServer(t)
	s.questionnaire.On("Next", mock.Anything).Return(nil, questionnaire.ErrAnswerRequired)
	s.questionnaire.On("Previous", mock.Anything).Return(sampleView(), nil)
	s.questionnaire.On("Reset", mock.Anything).Return(sampleView(), nil)
	s.questionnaire.On("End", mock.Anything).Return(nil)

	assert.Equal(t, http.StatusConflict, s.do(http.MethodPost, "/api/v1/questionnaire/next", "").Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/v1/questionnaire/previous", "").Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/v1/questionnaire/reset", "").Code)
	assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/api/v1/questionnaire", "").Code)
}

func TestResultHandler_GetResult(t *testing.T) {
	s := newTestServer(t)
	result := &services.ResultView{
		Result:           &models.Result{ID: 7, PredictedLevel: models.LevelMaster, SuccessProbability: 81},
		LevelDescription: models.LevelMaster.Description(),
	}
	s.results.On("Load", mock.Anything, int64(7)).Return(result, nil)
	s.results.On("Load", mock.Anything, int64(8)).Return(nil, questionnaire.ErrResultNotFound)
	s.results.On("Current", mock.Anything).Return(nil, services.ErrResultLoading)
	s.results.On("Invalidate", mock.Anything).Return(nil)

	w := s.do(http.MethodGet, "/api/v1/results/7", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"level_description"`)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/v1/results/8", "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/v1/results/0", "").Code)
	assert.Equal(t, http.StatusConflict, s.do(http.MethodGet, "/api/v1/results/current", "").Code)
	assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/api/v1/results/current", "").Code)
}

func TestResultHandler_ListResults(t *testing.T) {
	s := newTestServer(t)
	s.results.On("History", mock.Anything, &services.HistoryQuery{Level: "Seguidor", Limit: 5}).
		Return(&services.HistoryResponse{Total: 0, Source: services.SourceCollaborator}, nil)
	s.results.On("History", mock.Anything, &services.HistoryQuery{Level: "Experto"}).
		Return(nil, services.ValidationErrors{*services.NewValidationError("level", "must be a valid maturity level", "Experto")})

	w := s.do(http.MethodGet, "/api/v1/results?level=Seguidor&limit=5", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"source":"collaborator"`)

	assert.Equal(t, http.StatusUnprocessableEntity, s.do(http.MethodGet, "/api/v1/results?level=Experto", "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/v1/results?limit=many", "").Code)
}

func TestResultHandler_Export(t *testing.T) {
	s := newTestServer(t)
	s.results.On("Export", mock.Anything, int64(7)).Return(&services.ExportedReport{
		Filename:    "diagnostico-7.xlsx",
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Content:     []byte("PK"),
	}, nil)

	w := s.do(http.MethodGet, "/api/v1/results/7/export", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="diagnostico-7.xlsx"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "PK", w.Body.String())
}
