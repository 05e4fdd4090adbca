package questionnaire

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/SAP-F-2025/diagnosis-service/internal/models"
)

// staticSource serves a fixed question list.
type staticSource struct {
	questions []models.Question
	err       error
}

func (s staticSource) FetchQuestions(ctx context.Context) ([]models.Question, error) {
	return s.questions, s.err
}

// fakeScorer counts calls and can hold a call open until released.
type fakeScorer struct {
	mu       sync.Mutex
	calls    int
	payloads []models.Submission
	result   *models.Result
	err      error

	started chan struct{}
	release chan struct{}
}

func (f *fakeScorer) Submit(ctx context.Context, submission models.Submission) (*models.Result, error) {
	f.mu.Lock()
	f.calls++
	f.payloads = append(f.payloads, submission)
	started, release := f.started, f.release
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if release != nil {
		<-release
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeScorer) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeFetcher serves results by id.
type fakeFetcher struct {
	results map[int64]*models.Result
	err     error
	release chan struct{}
}

func (f *fakeFetcher) GetResult(ctx context.Context, id int64) (*models.Result, error) {
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	r, ok := f.results[id]
	if !ok {
		return nil, ErrResultNotFound
	}
	return r, nil
}

var errBackendDown = errors.New("connection refused")

const (
	timeout = time.Second
	tick    = 5 * time.Millisecond
)

// threeQuestionCatalog is Binary q1, Scale(5) q2, Categorical q3 with options {0,2,4,6,7}.
func threeQuestionCatalog() []models.Question {
	return []models.Question{
		{ID: 1, Text: "¿Su empresa tiene un sitio web actualizado?", Domain: "Presencia Digital", AnswerType: models.Binary{}},
		{ID: 2, Text: "¿Utiliza herramientas digitales para la gestión financiera?", Domain: "Operaciones", AnswerType: models.Scale{Max: 5}},
		{ID: 3, Text: "¿Cuántas áreas usan software?", Domain: "Tecnología", AnswerType: models.Categorical{}},
	}
}

func threeQuestionRegistry() *OptionRegistry {
	r, err := NewOptionRegistry("test", map[models.QuestionID]models.OptionSet{
		3: {
			{Label: "0 (Ninguna)", Value: 0},
			{Label: "1-2", Value: 2},
			{Label: "3-4", Value: 4},
			{Label: "5-6", Value: 6},
			{Label: "7 (Todas)", Value: 7},
		},
	})
	if err != nil {
		panic(err)
	}
	return r
}

func sampleResult(id int64) *models.Result {
	return &models.Result{
		ID:                 id,
		Timestamp:          time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC),
		PredictedLevel:     models.LevelFollower,
		SuccessProbability: 72,
		DomainBreakdown:    map[string]float64{"Operaciones": 3.5, "Presencia Digital": 4},
		TopImprovementFactors: []models.ImpactFactor{
			{QuestionRef: "16", Label: "Inversión en Tecnología", Weight: -0.15, Explanation: "Inversión limitada", RecommendedAction: "Destine 3-5% de ingresos"},
		},
		TopStrengthFactors: []models.ImpactFactor{
			{QuestionRef: "2", Label: "Presencia en Redes Sociales", Weight: 0.18, Explanation: "Uso efectivo"},
		},
	}
}
