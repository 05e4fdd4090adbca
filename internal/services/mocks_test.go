package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/SAP-F-2025/diagnosis-service/internal/cache"
	"github.com/SAP-F-2025/diagnosis-service/internal/events"
	"github.com/SAP-F-2025/diagnosis-service/internal/identity"
	"github.com/SAP-F-2025/diagnosis-service/internal/models"
	"github.com/SAP-F-2025/diagnosis-service/internal/questionnaire"
	"github.com/SAP-F-2025/diagnosis-service/internal/repositories"
	"github.com/SAP-F-2025/diagnosis-service/internal/validator"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockDiagnosisAPI is a mock implementation of DiagnosisAPI
type MockDiagnosisAPI struct {
	mock.Mock
}

func (m *MockDiagnosisAPI) FetchQuestions(ctx context.Context) ([]models.Question, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Question), args.Error(1)
}

func (m *MockDiagnosisAPI) Submit(ctx context.Context, submission models.Submission) (*models.Result, error) {
	args := m.Called(ctx, submission)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Result), args.Error(1)
}

func (m *MockDiagnosisAPI) GetResult(ctx context.Context, id int64) (*models.Result, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Result), args.Error(1)
}

func (m *MockDiagnosisAPI) History(ctx context.Context) ([]*models.Result, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Result), args.Error(1)
}

// MockResultRepository is a mock implementation of repositories.ResultRepository
type MockResultRepository struct {
	mock.Mock
}

func (m *MockResultRepository) Save(ctx context.Context, userID string, result *models.Result) error {
	args := m.Called(ctx, userID, result)
	return args.Error(0)
}

func (m *MockResultRepository) GetByResultID(ctx context.Context, userID string, resultID int64) (*models.Result, error) {
	args := m.Called(ctx, userID, resultID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Result), args.Error(1)
}

func (m *MockResultRepository) ListByUser(ctx context.Context, userID string, filters repositories.ResultFilters) ([]*models.Result, int64, error) {
	args := m.Called(ctx, userID, filters)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.Result), args.Get(1).(int64), args.Error(2)
}

// memoryCache is an in-process CacheService storing JSON like the redis one.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = data
	return nil
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	data, ok := c.entries[key]
	c.mu.Unlock()
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *memoryCache) DeletePattern(ctx context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	return nil
}

func (c *memoryCache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

// ===== FIXTURES =====

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func userContext(userID string) context.Context {
	return identity.WithPrincipal(context.Background(), &identity.Principal{
		UserID:    userID,
		Email:     userID + "@example.com",
		ExpiresAt: time.Now().Add(time.Hour),
	})
}

func testQuestions() []models.Question {
	return []models.Question{
		{ID: 1, Text: "¿Su empresa tiene un sitio web actualizado?", Domain: "Presencia Digital", AnswerType: models.Binary{}},
		{ID: 2, Text: "¿Utiliza herramientas digitales para la gestión financiera?", Domain: "Operaciones", AnswerType: models.Scale{Max: 5}},
		{ID: 6, Text: "¿Cuántos empleados tiene su empresa?", Domain: "Organización", AnswerType: models.Categorical{}},
	}
}

func testOptions(t *testing.T) *questionnaire.OptionRegistry {
	t.Helper()
	r, err := questionnaire.NewOptionRegistry("test-v1", map[models.QuestionID]models.OptionSet{
		6: {
			{Label: "1-10", Value: 1},
			{Label: "11-50", Value: 2},
			{Label: "51-200", Value: 3},
		},
	})
	require.NoError(t, err)
	return r
}

func testResult(id int64, level models.MaturityLevel, day int) *models.Result {
	return &models.Result{
		ID:                 id,
		Timestamp:          time.Date(2024, 5, day, 9, 0, 0, 0, time.UTC),
		PredictedLevel:     level,
		SuccessProbability: 64.5,
		DomainBreakdown:    map[string]float64{"Operaciones": 3.5, "Presencia Digital": 4},
		TopImprovementFactors: []models.ImpactFactor{
			{QuestionRef: "16", Label: "Inversión en Tecnología", Weight: -0.15, Explanation: "Inversión limitada", RecommendedAction: "Destine 3-5% de ingresos"},
		},
		TopStrengthFactors: []models.ImpactFactor{
			{QuestionRef: "2", Label: "Presencia en Redes Sociales", Weight: 0.18, Explanation: "Uso efectivo"},
		},
	}
}

type testEnv struct {
	api       *MockDiagnosisAPI
	archive   *MockResultRepository
	cache     *memoryCache
	publisher *events.MockEventPublisher
	deps      Dependencies
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := discardLogger()
	env := &testEnv{
		api:       new(MockDiagnosisAPI),
		archive:   new(MockResultRepository),
		cache:     newMemoryCache(),
		publisher: events.NewMockEventPublisher(logger),
	}
	env.deps = Dependencies{
		API:             env.api,
		Options:         testOptions(t),
		Workspaces:      NewWorkspaceRegistry(),
		Archive:         env.archive,
		Cache:           env.cache,
		Events:          NewDiagnosisEventService(env.publisher, logger),
		Validator:       validator.New(),
		Logger:          logger,
		CatalogCacheTTL: time.Minute,
		ResultCacheTTL:  time.Minute,
	}
	return env
}
