package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type createRoomInput struct {
	Name            string `json:"name" validate:"required,min=3"`
	MaxParticipants *int   `json:"maxParticipants" validate:"omitnil,min=2,max=50"`
}

func TestValidate(t *testing.T) {
	v := NewValidator()

	limit := 10
	require.NoError(t, v.Validate(createRoomInput{Name: "movie night", MaxParticipants: &limit}))
	require.NoError(t, v.Validate(createRoomInput{Name: "abc"}))

	tooMany := 51
	err := v.Validate(createRoomInput{Name: "ab", MaxParticipants: &tooMany})
	require.Error(t, err)

	var errs ValidationErrors
	require.True(t, errors.As(err, &errs))
	require.Len(t, errs, 2)
	assert.Equal(t, "name", errs[0].Field)
	assert.Equal(t, "MIN", errs[0].Code)
	assert.Equal(t, "name must be at least 3 characters long", errs[0].Message)
	assert.Equal(t, "maxParticipants", errs[1].Field)
	assert.Equal(t, "MAX", errs[1].Code)
	assert.Equal(t, "maxParticipants must not exceed 50", errs[1].Message)
}
