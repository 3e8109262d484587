package handler

import (
	"errors"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type phoneForm struct {
	Phone string `json:"phone_number" binding:"required,phone"`
}

func TestRegisterValidators(t *testing.T) {
	require.NoError(t, RegisterValidators())
	// second call is a no-op
	require.NoError(t, RegisterValidators())

	assert.NoError(t, binding.Validator.ValidateStruct(&phoneForm{Phone: "+62 812-0000-0001"}))

	err := binding.Validator.ValidateStruct(&phoneForm{Phone: "call me"})
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs), "got %v", err)
	require.Len(t, verrs, 1)
	assert.Equal(t, "phone_number", verrs[0].Field())
	assert.Equal(t, "phone", verrs[0].Tag())
}

func TestRegisterValidators_UnsupportedEngine(t *testing.T) {
	err := registerValidators(struct{}{})
	assert.ErrorContains(t, err, "unsupported binding validator engine")
}
