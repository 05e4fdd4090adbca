package services

import (
	"github.com/SAP-F-2025/diagnosis-service/internal/models"
	"github.com/SAP-F-2025/diagnosis-service/internal/questionnaire"
)

// ===== REQUESTS =====

// AnswerRequest carries a raw answer: "Si"/"No" for binary questions, an integer
// otherwise.
type AnswerRequest struct {
	Value *models.RawValue `json:"value" validate:"required"`
}

// HistoryQuery filters the diagnosis history.
type HistoryQuery struct {
	Level string `form:"level" validate:"omitempty,maturity_level"`
	Limit int    `form:"limit" validate:"omitempty,min=1,max=100"`
}

// ===== RESPONSES =====

// ChoiceView is one value the client may send for a question.
type ChoiceView struct {
	Label string          `json:"label"`
	Value models.RawValue `json:"value"`
}

type QuestionView struct {
	ID        models.QuestionID `json:"id"`
	Text      string            `json:"text"`
	Section   string            `json:"section,omitempty"`
	Domain    string            `json:"domain"`
	Subdomain string            `json:"subdomain"`
	Type      string            `json:"type"`
	Choices   []ChoiceView      `json:"choices"`
}

// SessionView is the state of a questionnaire as shown to the client.
type SessionView struct {
	Question      QuestionView     `json:"question"`
	Answer        *models.RawValue `json:"answer,omitempty"`
	Index         int              `json:"index"`
	Count         int              `json:"count"`
	AnsweredCount int              `json:"answered_count"`
	IsFirst       bool             `json:"is_first"`
	IsLast        bool             `json:"is_last"`
	IsComplete    bool             `json:"is_complete"`
	Submitting    bool             `json:"submitting"`
	Submitted     bool             `json:"submitted"`
	Advanced      bool             `json:"advanced"`
}

// ResultView is a Result plus presentation fields.
type ResultView struct {
	*models.Result
	LevelDescription string `json:"level_description"`
}

type HistoryResponse struct {
	Results []*ResultView `json:"results"`
	Total   int           `json:"total"`
	Source  string        `json:"source"` // "collaborator" or "archive"
}

// ExportedReport is a rendered report file.
type ExportedReport struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ===== CONVERSIONS =====

func newQuestionView(q models.Question, resolver *questionnaire.Resolver) (QuestionView, error) {
	options, err := resolver.Choices(q)
	if err != nil {
		return QuestionView{}, err
	}

	_, binary := q.AnswerType.(models.Binary)
	choices := make([]ChoiceView, len(options))
	for i, o := range options {
		value := models.Number(o.Value)
		if binary {
			value = models.Token(o.Label)
		}
		choices[i] = ChoiceView{Label: o.Label, Value: value}
	}

	return QuestionView{
		ID:        q.ID,
		Text:      q.Text,
		Section:   q.Section,
		Domain:    q.Domain,
		Subdomain: q.Subdomain,
		Type:      q.TypeCode(),
		Choices:   choices,
	}, nil
}

func newSessionView(s *questionnaire.Session, advanced bool) (*SessionView, error) {
	state := s.Snapshot()
	question, err := newQuestionView(state.Question, s.Resolver())
	if err != nil {
		return nil, err
	}
	return &SessionView{
		Question:      question,
		Answer:        state.Answer,
		Index:         state.Index,
		Count:         state.Count,
		AnsweredCount: state.AnsweredCount,
		IsFirst:       state.IsFirst,
		IsLast:        state.IsLast,
		IsComplete:    state.IsComplete,
		Submitting:    state.Submitting,
		Submitted:     state.Submitted,
		Advanced:      advanced,
	}, nil
}

func newResultView(r *models.Result) *ResultView {
	if r == nil {
		return nil
	}
	return &ResultView{Result: r, LevelDescription: r.PredictedLevel.Description()}
}

// newestFirst orders results by timestamp, most recent first, then by id.
func newestFirst(a, b *models.Result) int {
	if c := b.Timestamp.Compare(a.Timestamp); c != 0 {
		return c
	}
	switch {
	case a.ID > b.ID:
		return -1
	case a.ID < b.ID:
		return 1
	}
	return 0
}
