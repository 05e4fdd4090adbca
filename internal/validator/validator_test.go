package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type historyQuery struct {
	Level string `form:"level" validate:"omitempty,maturity_level"`
	Limit int    `form:"limit" validate:"omitempty,min=1,max=100"`
}

func TestValidator_MaturityLevel(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(historyQuery{}))
	assert.NoError(t, v.Validate(historyQuery{Level: "Seguidor", Limit: 10}))

	err := v.Validate(historyQuery{Level: "Experto"})
	require.Error(t, err)

	var errs ValidationErrors
	require.ErrorAs(t, err, &errs)
	require.Len(t, errs, 1)
	assert.Equal(t, "level", errs[0].Field)
	assert.Equal(t, "maturity_level", errs[0].Rule)
}

func TestValidator_ReportsTagNames(t *testing.T) {
	type body struct {
		Value *int `json:"value" validate:"required"`
	}

	err := New().Validate(body{})

	var errs ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, "value", errs[0].Field)
	assert.Equal(t, "is required", errs[0].Message)
}

func TestValidator_LimitBounds(t *testing.T) {
	v := New()

	var errs ValidationErrors
	require.ErrorAs(t, v.Validate(historyQuery{Limit: 500}), &errs)
	assert.Equal(t, "must be at most 100", errs[0].Message)
}
