package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Username string `validate:"required,min=3,max=30"`
	Email    string `validate:"required,email"`
	Role     string `validate:"required,oneof=buyer seller both"`
	Rating   int    `validate:"omitempty,gte=1,lte=5"`
}

func TestRequestValidator(t *testing.T) {
	v := NewRequestValidator()

	t.Run("valid struct passes", func(t *testing.T) {
		err := v.Validate(&sampleRequest{
			Username: "chidi",
			Email:    "chidi@campus.test",
			Role:     "both",
			Rating:   4,
		})
		assert.NoError(t, err)
	})

	t.Run("invalid struct fails", func(t *testing.T) {
		err := v.Validate(&sampleRequest{Username: "ab", Email: "nope", Role: "admin"})
		assert.Error(t, err)
	})
}

func TestValidationFields(t *testing.T) {
	v := NewRequestValidator()

	err := v.Validate(&sampleRequest{Username: "ab", Email: "not-an-email", Role: "wizard", Rating: 9})
	require.Error(t, err)

	fields := ValidationFields(err)
	assert.Equal(t, "too short (min 3)", fields["username"])
	assert.Equal(t, "must be a valid email address", fields["email"])
	assert.Equal(t, "must be one of: buyer seller both", fields["role"])
	assert.Equal(t, "must be at most 5", fields["rating"])
}

func TestValidationFieldsNonValidatorError(t *testing.T) {
	fields := ValidationFields(errors.New("boom"))
	assert.Equal(t, map[string]string{"_": "boom"}, fields)
}
