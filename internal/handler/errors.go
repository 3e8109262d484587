package handler

import (
	"errors"
	"net/http"

	"github.com/ergosit/posture-auth/internal/dto"
	"github.com/ergosit/posture-auth/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type errorMapping struct {
	target  error
	status  int
	title   string
	message string
}

// Order matters: more specific errors come first. An empty message means the
// error's own text is used.
var errorMappings = []errorMapping{
	{service.ErrEmailTaken, http.StatusConflict, "Conflict", "email already registered"},
	{service.ErrPhoneTaken, http.StatusConflict, "Conflict", "phone already registered"},
	{service.ErrDuplicateIdentity, http.StatusConflict, "Conflict", "identity already registered"},
	{service.ErrAuthenticationFailed, http.StatusUnauthorized, "Unauthorized", "invalid email or password"},
	{service.ErrUnverified, http.StatusForbidden, "Unverified", "email address has not been verified"},
	{service.ErrTokenExpired, http.StatusUnauthorized, "TokenExpired", "token has expired"},
	{service.ErrTokenInvalid, http.StatusUnauthorized, "InvalidToken", "token is invalid"},
	{service.ErrUnauthenticated, http.StatusUnauthorized, "Unauthorized", "authentication required"},
	{service.ErrInvalidAPIKey, http.StatusUnauthorized, "Unauthorized", "invalid api key"},
	{service.ErrForbidden, http.StatusForbidden, "Forbidden", "insufficient permissions"},
	{service.ErrInvalidOTP, http.StatusUnauthorized, "InvalidCode", "invalid or expired code"},
	{service.ErrWrongPassword, http.StatusBadRequest, "Bad request", "current password is incorrect"},
	{service.ErrFederatedAccount, http.StatusBadRequest, "Bad request", ""},
	{service.ErrNotFound, http.StatusNotFound, "Not found", "resource not found"},
}

// respondError writes the response for a service error. Unknown errors are
// logged and reported as 500 without detail.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: "request contains invalid fields",
			Details: verr.Fields,
		})
		return
	}
	if errors.Is(err, service.ErrValidation) {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			message := m.message
			if message == "" {
				message = m.target.Error()
			}
			c.JSON(m.status, dto.ErrorResponse{Error: m.title, Message: message})
			return
		}
	}

	if logger != nil {
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Error:   "Internal server error",
		Message: "an unexpected error occurred",
	})
}
