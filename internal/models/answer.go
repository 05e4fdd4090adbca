package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// RawValue is an answer value: either an integer (scales, categorical options) or a
// fixed string token (binary questions). The zero value is an empty token.
type RawValue struct {
	token    string
	number   int
	isNumber bool
}

// Token builds a string-token value.
func Token(s string) RawValue {
	return RawValue{token: s}
}

// Number builds a numeric value.
func Number(n int) RawValue {
	return RawValue{number: n, isNumber: true}
}

// IsNumber reports whether the value is numeric.
func (v RawValue) IsNumber() bool { return v.isNumber }

// Int returns the numeric value and whether the value is numeric.
func (v RawValue) Int() (int, bool) { return v.number, v.isNumber }

// Text returns the token and whether the value is a token.
func (v RawValue) Text() (string, bool) { return v.token, !v.isNumber }

// Interface returns the underlying Go value (int or string).
func (v RawValue) Interface() any {
	if v.isNumber {
		return v.number
	}
	return v.token
}

func (v RawValue) String() string {
	if v.isNumber {
		return strconv.Itoa(v.number)
	}
	return v.token
}

// Equal reports whether both values have the same kind and content.
func (v RawValue) Equal(o RawValue) bool {
	return v.isNumber == o.isNumber && v.number == o.number && v.token == o.token
}

func (v RawValue) MarshalJSON() ([]byte, error) {
	if v.isNumber {
		return []byte(strconv.Itoa(v.number)), nil
	}
	return json.Marshal(v.token)
}

func (v *RawValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("answer value cannot be null")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Token(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("answer value must be a string or an integer: %w", err)
	}
	if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return fmt.Errorf("answer value %v is not an integer", f)
	}
	*v = Number(int(f))
	return nil
}

// Answer is the user's response to one question.
type Answer struct {
	QuestionID QuestionID `json:"question_id"`
	Value      RawValue   `json:"value"`
}

// Submission is the ordered payload handed to the scoring collaborator.
type Submission struct {
	Answers []Answer `json:"answers"`
}
