package questionnaire

import "github.com/SAP-F-2025/diagnosis-service/internal/models"

// AnswerStore holds at most one answer per question (upsert semantics). It does not
// validate values; the Resolver runs before Record.
type AnswerStore struct {
	questions []models.QuestionID
	known     map[models.QuestionID]struct{}

	answers  []models.Answer
	slots    map[models.QuestionID]int
	complete bool
}

// NewAnswerStore creates an empty store for the given catalog ids.
func NewAnswerStore(questions []models.QuestionID) *AnswerStore {
	s := &AnswerStore{
		questions: append([]models.QuestionID(nil), questions...),
		known:     make(map[models.QuestionID]struct{}, len(questions)),
	}
	for _, id := range questions {
		s.known[id] = struct{}{}
	}
	s.Reset()
	return s
}

// Record inserts or replaces the answer for id.
func (s *AnswerStore) Record(id models.QuestionID, v models.RawValue) {
	if slot, ok := s.slots[id]; ok {
		s.answers[slot].Value = v
	} else {
		s.slots[id] = len(s.answers)
		s.answers = append(s.answers, models.Answer{QuestionID: id, Value: v})
	}
	s.complete = s.computeComplete()
}

func (s *AnswerStore) Get(id models.QuestionID) (models.RawValue, bool) {
	slot, ok := s.slots[id]
	if !ok {
		return models.RawValue{}, false
	}
	return s.answers[slot].Value, true
}

func (s *AnswerStore) Has(id models.QuestionID) bool {
	_, ok := s.slots[id]
	return ok
}

func (s *AnswerStore) Len() int { return len(s.answers) }

// Answers returns the recorded answers in recording order.
func (s *AnswerStore) Answers() []models.Answer {
	return append([]models.Answer(nil), s.answers...)
}

// IsComplete requires a non-empty catalog and the set of answered ids to equal the set
// of question ids; matching counts alone are not enough.
func (s *AnswerStore) IsComplete() bool { return s.complete }

// FirstMissing returns the catalog index of the first unanswered question.
func (s *AnswerStore) FirstMissing() (int, bool) {
	for i, id := range s.questions {
		if !s.Has(id) {
			return i, true
		}
	}
	return -1, false
}

// Missing counts unanswered catalog questions.
func (s *AnswerStore) Missing() int {
	n := 0
	for _, id := range s.questions {
		if !s.Has(id) {
			n++
		}
	}
	return n
}

// Reset clears every answer.
func (s *AnswerStore) Reset() {
	s.answers = nil
	s.slots = make(map[models.QuestionID]int, len(s.questions))
	s.complete = false
}

func (s *AnswerStore) computeComplete() bool {
	if len(s.questions) == 0 || len(s.answers) != len(s.questions) {
		return false
	}
	for _, a := range s.answers {
		if _, ok := s.known[a.QuestionID]; !ok {
			return false
		}
	}
	for _, id := range s.questions {
		if !s.Has(id) {
			return false
		}
	}
	return true
}
