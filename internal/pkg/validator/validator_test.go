package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodmap-client/internal/pkg/errors"
	"github.com/foodmap-client/internal/pkg/validator"
)

type form struct {
	Name  string  `validate:"required,max=10"`
	Lat   float64 `validate:"gte=-90,lte=90"`
	Color string  `validate:"omitempty,hexcolor"`
}

func TestValidate(t *testing.T) {
	require.NoError(t, validator.Validate(&form{Name: "noodles", Lat: 30}))

	err := validator.Validate(&form{Lat: 120, Color: "red"})
	require.Error(t, err)

	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.KindValidation, appErr.Kind)
	assert.Equal(t, "required", appErr.Details["Name"])
	assert.Equal(t, "lte", appErr.Details["Lat"])
	assert.Equal(t, "hexcolor", appErr.Details["Color"])
}
