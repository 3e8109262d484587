package handler

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/ergosit/posture-auth/internal/dto"
	"github.com/ergosit/posture-auth/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterValidators installs the custom binding rules used by request DTOs.
// It must run before the first request is bound.
func RegisterValidators() error {
	registerOnce.Do(func() {
		registerErr = registerValidators(binding.Validator.Engine())
	})
	return registerErr
}

func registerValidators(engine any) error {
	v, ok := engine.(*validator.Validate)
	if !ok {
		return fmt.Errorf("unsupported binding validator engine %T", engine)
	}

	err := v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return utils.ValidatePhone(fl.Field().String())
	})
	if err != nil {
		return fmt.Errorf("failed to register phone validation: %w", err)
	}

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return nil
}

// respondBindingError reports a request body that failed to bind.
func respondBindingError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			details[fe.Field()] = messageForTag(fe)
		}
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: "request contains invalid fields",
			Details: details,
		})
		return
	}

	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Error:   "Validation failed",
		Message: "malformed request body",
	})
}

func messageForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "phone":
		return "must be a valid phone number"
	case "uuid":
		return "must be a valid UUID"
	case "url":
		return "must be a valid URL"
	case "numeric":
		return "must contain digits only"
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return "is invalid"
	}
}
