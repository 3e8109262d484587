package handler

import (
	"net/http"
	"strconv"

	"github.com/ergosit/posture-auth/internal/domain"
	"github.com/ergosit/posture-auth/internal/dto"
	"github.com/ergosit/posture-auth/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserHandler serves the authenticated user's own account.
type UserHandler struct {
	accountService  service.AccountService
	loginLogService service.LoginLogService
	logger          *zap.Logger
}

func NewUserHandler(accountService service.AccountService, loginLogService service.LoginLogService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		accountService:  accountService,
		loginLogService: loginLogService,
		logger:          logger,
	}
}

// GetProfile returns the current user.
// @Summary Get profile
// @Tags user
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.UserInfo
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /user/profile [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	user, err := h.accountService.GetUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewUserInfo(user))
}

// UpdateProfile changes the fields present in the body.
// @Summary Update profile
// @Tags user
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.UpdateProfileRequest true "Profile fields"
// @Success 200 {object} dto.UserInfo
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /user/profile [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	user, err := h.accountService.UpdateProfile(c.Request.Context(), currentUserID(c), domain.ProfileUpdate{
		FullName:          req.FullName,
		Phone:             req.Phone,
		Age:               req.Age,
		Gender:            req.Gender,
		ProfilePictureURL: req.ProfilePictureURL,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewUserInfo(user))
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if err := h.accountService.ChangePassword(c.Request.Context(), currentUserID(c), req.OldPassword, req.NewPassword); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "Password changed successfully",
	})
}

// DeleteAccount removes the caller's account and detection history. Login
// logs are retained.
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	if err := h.accountService.DeleteAccount(c.Request.Context(), currentUserID(c)); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "Account deleted",
	})
}

func (h *UserHandler) LoginLogs(c *gin.Context) {
	logs, err := h.loginLogService.ListForUser(c.Request.Context(), currentUserID(c), queryLimit(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewLoginLogList(logs))
}

// queryLimit reads ?limit=. Missing or malformed values yield 0, which the
// services replace with their default.
func queryLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		return 0
	}
	return limit
}
