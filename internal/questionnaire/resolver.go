package questionnaire

import (
	"fmt"
	"strconv"

	"github.com/SAP-F-2025/diagnosis-service/internal/models"
)

// Resolver maps a question's answer type to its accepted value domain.
type Resolver struct {
	registry *OptionRegistry
}

func NewResolver(registry *OptionRegistry) *Resolver {
	return &Resolver{registry: registry}
}

// Validate checks a candidate answer against the question's answer type. A rejected
// answer must not be recorded.
func (r *Resolver) Validate(q models.Question, v models.RawValue) error {
	switch t := q.AnswerType.(type) {
	case models.Binary:
		token, ok := v.Text()
		if !ok || (token != models.BinaryYes && token != models.BinaryNo) {
			return &AnswerError{QuestionID: q.ID, Value: v, Err: ErrInvalidAnswerValue,
				Reason: fmt.Sprintf("expected %q or %q", models.BinaryYes, models.BinaryNo)}
		}
		return nil

	case models.Scale:
		n, ok := v.Int()
		if !ok {
			return &AnswerError{QuestionID: q.ID, Value: v, Err: ErrInvalidAnswerValue, Reason: "expected an integer"}
		}
		if n < 1 || n > t.Max {
			return &AnswerError{QuestionID: q.ID, Value: v, Err: ErrOutOfRange,
				Reason: fmt.Sprintf("expected 1..%d", t.Max)}
		}
		return nil

	case models.Categorical:
		set, err := r.optionSet(q)
		if err != nil {
			return err
		}
		n, ok := v.Int()
		if !ok || !set.Contains(n) {
			return &AnswerError{QuestionID: q.ID, Value: v, Err: ErrInvalidAnswerValue,
				Reason: fmt.Sprintf("expected one of %v", set.Values())}
		}
		return nil

	default:
		return &AnswerError{QuestionID: q.ID, Value: v, Err: ErrUnsupportedQuestionVariant,
			Reason: fmt.Sprintf("answer type %T", q.AnswerType)}
	}
}

// Choices lists the values a presentation layer should offer for q.
func (r *Resolver) Choices(q models.Question) ([]models.Option, error) {
	switch t := q.AnswerType.(type) {
	case models.Binary:
		return []models.Option{{Label: models.BinaryYes}, {Label: models.BinaryNo}}, nil
	case models.Scale:
		if t.Max < 1 || t.Max > models.MaxScaleMax {
			return nil, fmt.Errorf("question %d: %w: scale bound %d", q.ID, ErrUnsupportedQuestionVariant, t.Max)
		}
		opts := make([]models.Option, t.Max)
		for i := range opts {
			opts[i] = models.Option{Label: strconv.Itoa(i + 1), Value: i + 1}
		}
		return opts, nil
	case models.Categorical:
		set, err := r.optionSet(q)
		if err != nil {
			return nil, err
		}
		return set, nil
	default:
		return nil, fmt.Errorf("question %d: %w: answer type %T", q.ID, ErrUnsupportedQuestionVariant, q.AnswerType)
	}
}

// CheckCatalog fails fast when a categorical question has no registered option set.
func (r *Resolver) CheckCatalog(c *Catalog) error {
	for i := 0; i < c.Len(); i++ {
		if _, err := r.Choices(c.At(i)); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) optionSet(q models.Question) (models.OptionSet, error) {
	if r.registry != nil {
		if set, ok := r.registry.Lookup(q.ID); ok {
			return set, nil
		}
	}
	return nil, fmt.Errorf("question %d: %w: no option set registered for categorical question",
		q.ID, ErrUnsupportedQuestionVariant)
}
