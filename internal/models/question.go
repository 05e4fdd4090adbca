package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// QuestionID identifies a question within the catalog.
type QuestionID int

// ErrUnsupportedQuestionVariant is returned when a question's declared answer type
// cannot be handled by the engine.
var ErrUnsupportedQuestionVariant = errors.New("unsupported question variant")

// Wire codes used by the catalog for each answer type.
const (
	AnswerTypeCodeBinary      = "Binaria"
	AnswerTypeCodeScale       = "Escala"
	AnswerTypeCodeCategorical = "Categorica"

	// DefaultScaleMax applies when the catalog declares a scale without an upper bound.
	DefaultScaleMax = 7
	// MaxScaleMax is the largest scale bound accepted from the catalog.
	MaxScaleMax = 100
)

// Canonical Binary tokens.
const (
	BinaryYes = "Si"
	BinaryNo  = "No"
)

// AnswerType is the closed set of answer kinds a question can declare.
// Implementations: Binary, Scale, Categorical.
type AnswerType interface {
	// Code returns the catalog wire code of the type.
	Code() string
	isAnswerType()
}

// Binary accepts exactly the two canonical tokens "Si" and "No".
type Binary struct{}

// Scale accepts integers 1..Max inclusive.
type Scale struct {
	Max int `json:"max"`
}

// Categorical accepts the values of an option set registered for the question id.
type Categorical struct{}

func (Binary) Code() string      { return AnswerTypeCodeBinary }
func (s Scale) Code() string     { return fmt.Sprintf("%s_1_%d", AnswerTypeCodeScale, s.Max) }
func (Categorical) Code() string { return AnswerTypeCodeCategorical }

func (Binary) isAnswerType()      {}
func (Scale) isAnswerType()       {}
func (Categorical) isAnswerType() {}

// ParseAnswerType converts a catalog type code such as "Binaria", "Escala_1_5" or
// "Categorica" into an AnswerType.
func ParseAnswerType(code string) (AnswerType, error) {
	code = strings.TrimSpace(code)
	switch {
	case strings.EqualFold(code, AnswerTypeCodeBinary), strings.EqualFold(code, "Binary"):
		return Binary{}, nil
	case strings.EqualFold(code, AnswerTypeCodeCategorical), strings.EqualFold(code, "Categorical"):
		return Categorical{}, nil
	case strings.EqualFold(code, AnswerTypeCodeScale):
		return Scale{Max: DefaultScaleMax}, nil
	case strings.HasPrefix(strings.ToLower(code), strings.ToLower(AnswerTypeCodeScale)+"_"):
		parts := strings.Split(code, "_")
		if len(parts) != 3 || parts[1] != "1" {
			return nil, fmt.Errorf("%w: malformed scale code %q", ErrUnsupportedQuestionVariant, code)
		}
		max, err := strconv.Atoi(parts[2])
		if err != nil || max < 2 || max > MaxScaleMax {
			return nil, fmt.Errorf("%w: invalid scale bound in %q", ErrUnsupportedQuestionVariant, code)
		}
		return Scale{Max: max}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedQuestionVariant, code)
	}
}

// Question is a single questionnaire item. Domain and Subdomain are only used for
// grouping in the report breakdown.
type Question struct {
	ID         QuestionID `json:"id"`
	Text       string     `json:"text"`
	Section    string     `json:"section,omitempty"`
	Domain     string     `json:"domain"`
	Subdomain  string     `json:"subdomain"`
	AnswerType AnswerType `json:"-"`
}

// TypeCode returns the wire code of the question's answer type, or "" when unset.
func (q Question) TypeCode() string {
	if q.AnswerType == nil {
		return ""
	}
	return q.AnswerType.Code()
}
