package questionnaire

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/SAP-F-2025/diagnosis-service/internal/models"
)

// Scorer is the external scoring collaborator.
type Scorer interface {
	Submit(ctx context.Context, submission models.Submission) (*models.Result, error)
}

// Session is one user's questionnaire: catalog, answers, position and the submit
// pipeline. All methods are safe for concurrent use and are applied in call order.
type Session struct {
	mu sync.Mutex

	catalog  *Catalog
	resolver *Resolver
	scorer   Scorer
	results  *ResultLifecycle

	store *AnswerStore
	nav   *Navigator

	generation uint64
	submitting bool
	submitted  *models.Result
}

// SessionState is a consistent snapshot of a session.
type SessionState struct {
	Index         int
	Count         int
	IsFirst       bool
	IsLast        bool
	Question      models.Question
	Answer        *models.RawValue
	AnsweredCount int
	IsComplete    bool
	Submitting    bool
	Submitted     bool
	Generation    uint64
}

// NewSession starts a questionnaire at question 0. It fails fast when a categorical
// question has no registered option set.
func NewSession(catalog *Catalog, resolver *Resolver, scorer Scorer, results *ResultLifecycle) (*Session, error) {
	if catalog == nil || catalog.Len() == 0 {
		return nil, ErrCatalogUnavailable
	}
	if err := resolver.CheckCatalog(catalog); err != nil {
		return nil, err
	}
	if results == nil {
		results = NewResultLifecycle()
	}
	return &Session{
		catalog:  catalog,
		resolver: resolver,
		scorer:   scorer,
		results:  results,
		store:    NewAnswerStore(catalog.IDs()),
		nav:      NewNavigator(catalog.Len()),
	}, nil
}

func (s *Session) Catalog() *Catalog         { return s.catalog }
func (s *Session) Results() *ResultLifecycle { return s.results }
func (s *Session) Resolver() *Resolver       { return s.resolver }

// Select validates and records an answer. When the answered question is the current
// one and not the last, the session advances to the next question.
func (s *Session) Select(id models.QuestionID, v models.RawValue) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, idx, ok := s.catalog.Lookup(id)
	if !ok {
		return false, fmt.Errorf("question %d: %w", id, ErrUnknownQuestion)
	}
	if err := s.resolver.Validate(q, v); err != nil {
		return false, err
	}

	s.store.Record(id, v)

	if idx == s.nav.Index() && !s.nav.IsLast() {
		if err := s.nav.Next(true); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

func (s *Session) Next() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.catalog.At(s.nav.Index())
	return s.nav.Next(s.store.Has(current.ID))
}

func (s *Session) Previous() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav.Previous()
}

// Reset returns to question 0 and clears every answer in one step. Submissions still
// in flight are discarded when they return.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nav.Reset()
	s.store.Reset()
	s.generation++
	s.submitting = false
	s.submitted = nil
}

// Submit sends the complete answer set to the scorer exactly once. A second call after
// success returns the same result without contacting the scorer.
func (s *Session) Submit(ctx context.Context) (*models.Result, error) {
	result, _, err := s.SubmitOnce(ctx)
	return result, err
}

// SubmitOnce is Submit that also reports whether this call reached the scorer. Only
// the call that got fresh == true sees a given result for the first time.
func (s *Session) SubmitOnce(ctx context.Context) (result *models.Result, fresh bool, err error) {
	s.mu.Lock()
	if s.submitted != nil {
		r := s.submitted.Clone()
		s.results.replace(r)
		s.mu.Unlock()
		return r, false, nil
	}
	if s.submitting {
		s.mu.Unlock()
		return nil, false, ErrSubmissionInProgress
	}
	if idx, missing := s.store.FirstMissing(); missing {
		q := s.catalog.At(idx)
		err := &IncompleteSubmissionError{Index: idx, QuestionID: q.ID, Domain: q.Domain, Missing: s.store.Missing()}
		s.mu.Unlock()
		return nil, false, err
	}

	submission := s.payload()
	generation := s.generation
	s.submitting = true
	t := s.results.begin()
	s.mu.Unlock()

	result, err = s.scorer.Submit(ctx, submission)

	s.mu.Lock()
	defer s.mu.Unlock()

	stale := generation != s.generation
	if !stale {
		s.submitting = false
	}
	if err == nil && result == nil {
		err = errors.New("scorer returned no result")
	}
	if err != nil {
		s.results.abort(t)
		if stale {
			return nil, false, ErrStaleResponse
		}
		var se *ScoringError
		if errors.As(err, &se) {
			return nil, false, err
		}
		return nil, false, &ScoringError{Op: "submit", Err: err}
	}
	if stale {
		s.results.abort(t)
		return nil, false, ErrStaleResponse
	}

	s.submitted = result.Clone()
	s.results.complete(t, result)
	return result.Clone(), true, nil
}

// payload lists answers in catalog order. Caller holds mu.
func (s *Session) payload() models.Submission {
	answers := make([]models.Answer, 0, s.catalog.Len())
	for _, id := range s.catalog.IDs() {
		v, _ := s.store.Get(id)
		answers = append(answers, models.Answer{QuestionID: id, Value: v})
	}
	return models.Submission{Answers: answers}
}

// Snapshot returns the current state of the session.
func (s *Session) Snapshot() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := s.catalog.At(s.nav.Index())
	state := SessionState{
		Index:         s.nav.Index(),
		Count:         s.nav.Count(),
		IsFirst:       s.nav.IsFirst(),
		IsLast:        s.nav.IsLast(),
		Question:      q,
		AnsweredCount: s.store.Len(),
		IsComplete:    s.store.IsComplete(),
		Submitting:    s.submitting,
		Submitted:     s.submitted != nil,
		Generation:    s.generation,
	}
	if v, ok := s.store.Get(q.ID); ok {
		state.Answer = &v
	}
	return state
}

// Answers returns the recorded answers in recording order.
func (s *Session) Answers() []models.Answer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Answers()
}
