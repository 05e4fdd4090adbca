package questionnaire

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/diagnosis-service/internal/models"
)

// CatalogSource is the external question catalog.
type CatalogSource interface {
	FetchQuestions(ctx context.Context) ([]models.Question, error)
}

// Catalog is the ordered, immutable question list of one questionnaire session.
// The order returned by the source is authoritative.
type Catalog struct {
	questions []models.Question
	index     map[models.QuestionID]int
}

// LoadCatalog fetches the catalog once. It fails with ErrCatalogUnavailable when the
// source fails, returns no questions, returns duplicate ids, or declares a scale bound
// outside 1..models.MaxScaleMax.
func LoadCatalog(ctx context.Context, src CatalogSource) (*Catalog, error) {
	questions, err := src.FetchQuestions(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	return NewCatalog(questions)
}

// NewCatalog builds a catalog from an already fetched question list.
func NewCatalog(questions []models.Question) (*Catalog, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: catalog returned zero questions", ErrCatalogUnavailable)
	}

	c := &Catalog{
		questions: make([]models.Question, len(questions)),
		index:     make(map[models.QuestionID]int, len(questions)),
	}
	for i, q := range questions {
		if _, dup := c.index[q.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate question id %d", ErrCatalogUnavailable, q.ID)
		}
		if q.AnswerType == nil {
			return nil, fmt.Errorf("%w: question %d has no answer type", ErrCatalogUnavailable, q.ID)
		}
		if scale, ok := q.AnswerType.(models.Scale); ok && (scale.Max < 1 || scale.Max > models.MaxScaleMax) {
			return nil, fmt.Errorf("%w: question %d: %w: scale bound %d", ErrCatalogUnavailable, q.ID, ErrUnsupportedQuestionVariant, scale.Max)
		}
		c.questions[i] = q
		c.index[q.ID] = i
	}
	return c, nil
}

func (c *Catalog) Len() int { return len(c.questions) }

// At returns the question at catalog position i.
func (c *Catalog) At(i int) models.Question { return c.questions[i] }

// Lookup returns the question with the given id and its catalog position.
func (c *Catalog) Lookup(id models.QuestionID) (models.Question, int, bool) {
	i, ok := c.index[id]
	if !ok {
		return models.Question{}, -1, false
	}
	return c.questions[i], i, true
}

// IDs returns the question ids in catalog order.
func (c *Catalog) IDs() []models.QuestionID {
	ids := make([]models.QuestionID, len(c.questions))
	for i, q := range c.questions {
		ids[i] = q.ID
	}
	return ids
}

// Questions returns a copy of the ordered question list.
func (c *Catalog) Questions() []models.Question {
	return append([]models.Question(nil), c.questions...)
}
