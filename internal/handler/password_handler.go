package handler

import (
	"net/http"

	"github.com/ergosit/posture-auth/internal/dto"
	"github.com/gin-gonic/gin"
)

// ForgotPassword issues a reset code and emails it. ResendCode is the same
// operation under a second route.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req dto.EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if err := h.authService.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "A verification code has been sent to your email",
	})
}

func (h *AuthHandler) ResendCode(c *gin.Context) {
	h.ForgotPassword(c)
}

// VerifyCode checks a reset code without consuming it.
func (h *AuthHandler) VerifyCode(c *gin.Context) {
	var req dto.VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if err := h.authService.VerifyResetCode(c.Request.Context(), req.Email, req.Code); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "Code is valid",
	})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "Password has been reset",
	})
}
