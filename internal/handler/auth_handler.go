package handler

import (
	"net/http"

	"github.com/ergosit/posture-auth/internal/dto"
	"github.com/ergosit/posture-auth/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService    service.AuthService
	accountService service.AccountService
	logger         *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService service.AuthService, accountService service.AccountService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		accountService: accountService,
		logger:         logger,
	}
}

// Register handles user registration
// @Summary Register a new user
// @Description Create an unverified account and email a verification link
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration request"
// @Success 201 {object} dto.RegisterResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	user, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, dto.RegisterResponse{
		Message: "Registration successful. Check your email to verify your account.",
		UserID:  user.ID,
	})
}

// Login handles user login
// @Summary Login user
// @Description Authenticate user with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login request"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	// A body that does not bind is still passed on so the attempt is audited.
	_ = c.ShouldBindJSON(&req)

	response, err := h.authService.Login(c.Request.Context(), req.Email, req.Password, clientInfo(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GoogleLogin exchanges a Google ID token for a session token.
// @Summary Login with Google
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.GoogleLoginRequest true "Google ID token"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/google-login [post]
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	var req dto.GoogleLoginRequest
	_ = c.ShouldBindJSON(&req)

	response, err := h.authService.GoogleLogin(c.Request.Context(), req.IDToken, clientInfo(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Validate reports the caller's token claims and current account.
// @Summary Validate bearer token
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.ValidateResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /auth/validate [get]
func (h *AuthHandler) Validate(c *gin.Context) {
	claims := currentClaims(c)
	if claims == nil {
		respondError(c, h.logger, service.ErrUnauthenticated)
		return
	}

	user, err := h.accountService.GetUser(c.Request.Context(), claims.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ValidateResponse{
		Valid:     true,
		UserID:    claims.UserID,
		Email:     claims.Email,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt,
		User:      dto.NewUserInfo(user),
	})
}

// VerifyEmail consumes the token from a verification link.
// @Summary Verify email address
// @Tags auth
// @Produce json
// @Param token query string true "Verification token"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /auth/verify-email [get]
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	if err := h.authService.VerifyEmail(c.Request.Context(), c.Query("token")); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "Email verified successfully",
	})
}

// Status reports whether an email address has been verified.
// @Summary Verification status
// @Tags auth
// @Produce json
// @Param email query string true "Email"
// @Success 200 {object} dto.VerificationStatusResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /auth/status [get]
func (h *AuthHandler) Status(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		respondError(c, h.logger, &service.ValidationError{Fields: map[string]string{"email": "is required"}})
		return
	}

	verified, err := h.authService.VerificationStatus(c.Request.Context(), email)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.VerificationStatusResponse{
		Email:      email,
		IsVerified: verified,
	})
}
