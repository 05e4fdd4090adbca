package models

// Option is one selectable choice of a question.
type Option struct {
	Label string `json:"label" yaml:"label"`
	Value int    `json:"value" yaml:"value"`
}

// OptionSet is the hand-authored list of choices of a categorical question.
type OptionSet []Option

// Contains reports whether value is one of the set's values.
func (s OptionSet) Contains(value int) bool {
	for _, o := range s {
		if o.Value == value {
			return true
		}
	}
	return false
}

// Values returns the option values in declaration order.
func (s OptionSet) Values() []int {
	values := make([]int, len(s))
	for i, o := range s {
		values[i] = o.Value
	}
	return values
}
