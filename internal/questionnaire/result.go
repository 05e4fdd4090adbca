package questionnaire

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/SAP-F-2025/diagnosis-service/internal/models"
)

// ResultFetcher loads a previously computed result by id.
type ResultFetcher interface {
	GetResult(ctx context.Context, id int64) (*models.Result, error)
}

// ResultLifecycle holds the diagnosis currently presented to the user. Loads and
// submissions are tagged with a generation; Invalidate bumps it so late responses are
// dropped on arrival.
type ResultLifecycle struct {
	mu         sync.Mutex
	current    *models.Result
	pending    int
	generation uint64
}

func NewResultLifecycle() *ResultLifecycle {
	return &ResultLifecycle{}
}

type ticket struct {
	generation uint64
}

// Load fetches a past result for history browsing.
func (l *ResultLifecycle) Load(ctx context.Context, fetcher ResultFetcher, id int64) (*models.Result, error) {
	t := l.begin()
	result, err := fetcher.GetResult(ctx, id)
	if err != nil {
		l.abort(t)
		if errors.Is(err, ErrResultNotFound) {
			return nil, fmt.Errorf("result %d: %w", id, ErrResultNotFound)
		}
		var se *ScoringError
		if errors.As(err, &se) {
			return nil, err
		}
		return nil, &ScoringError{Op: "load result", Err: err}
	}
	if result == nil {
		l.abort(t)
		return nil, fmt.Errorf("result %d: %w", id, ErrResultNotFound)
	}
	l.complete(t, result)
	return result.Clone(), nil
}

// Current returns a copy of the held result and whether an operation is in flight.
// The result must not be treated as valid while loading is true.
func (l *ResultLifecycle) Current() (*models.Result, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current.Clone(), l.pending > 0
}

func (l *ResultLifecycle) IsLoading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pending > 0
}

// Invalidate discards the held result. It never touches the answer store.
func (l *ResultLifecycle) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.current = nil
	l.generation++
}

func (l *ResultLifecycle) begin() ticket {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending++
	return ticket{generation: l.generation}
}

// complete stores result if no invalidation happened since t was issued.
func (l *ResultLifecycle) complete(t ticket, result *models.Result) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending--
	if t.generation != l.generation {
		return false
	}
	l.current = result.Clone()
	return true
}

// replace presents result without an operation in flight.
func (l *ResultLifecycle) replace(result *models.Result) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.current = result.Clone()
}

func (l *ResultLifecycle) abort(t ticket) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending--
}
