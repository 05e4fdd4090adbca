package questionnaire

// Navigator tracks the current question index. The index moves by exactly one step per
// transition and never leaves [0, count).
type Navigator struct {
	index int
	count int
}

func NewNavigator(count int) *Navigator {
	return &Navigator{count: count}
}

func (n *Navigator) Index() int    { return n.index }
func (n *Navigator) Count() int    { return n.count }
func (n *Navigator) IsFirst() bool { return n.index == 0 }
func (n *Navigator) IsLast() bool  { return n.index == n.count-1 }

// Next advances one question. The current question must be answered.
func (n *Navigator) Next(currentAnswered bool) error {
	if n.count == 0 {
		return ErrNoQuestionnaireOpen
	}
	if n.IsLast() {
		return ErrNavigationBoundary
	}
	if !currentAnswered {
		return ErrAnswerRequired
	}
	n.index++
	return nil
}

// Previous goes back one question regardless of answer state.
func (n *Navigator) Previous() error {
	if n.count == 0 {
		return ErrNoQuestionnaireOpen
	}
	if n.IsFirst() {
		return ErrNavigationBoundary
	}
	n.index--
	return nil
}

func (n *Navigator) Reset() { n.index = 0 }
