package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ergosit/posture-auth/internal/dto"
	"github.com/ergosit/posture-auth/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const adminLoginPage = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Admin login</title></head>
<body>
%s<form method="post" action="/admin/login">
<label>Email <input type="email" name="email" required></label>
<label>Password <input type="password" name="password" required></label>
<button type="submit">Sign in</button>
</form>
</body>
</html>`

// Console login failures travel back to the form as one of these codes.
const (
	consoleErrCredentials = "credentials"
	consoleErrForbidden   = "forbidden"
	consoleErrUnavailable = "unavailable"
)

var consoleErrorMessages = map[string]string{
	consoleErrCredentials: "Invalid email or password.",
	consoleErrForbidden:   "This account has no access to the console.",
	consoleErrUnavailable: "Sign in is temporarily unavailable, please try again.",
}

// AdminHandler serves the admin console and the admin API.
type AdminHandler struct {
	authService     service.AuthService
	accountService  service.AccountService
	loginLogService service.LoginLogService
	sessions        *SessionManager
	logger          *zap.Logger
}

func NewAdminHandler(
	authService service.AuthService,
	accountService service.AccountService,
	loginLogService service.LoginLogService,
	sessions *SessionManager,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		authService:     authService,
		accountService:  accountService,
		loginLogService: loginLogService,
		sessions:        sessions,
		logger:          logger,
	}
}

func (h *AdminHandler) LoginForm(c *gin.Context) {
	notice := ""
	if msg, ok := consoleErrorMessages[c.Query("error")]; ok {
		notice = `<p role="alert">` + msg + "</p>\n"
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(fmt.Sprintf(adminLoginPage, notice)))
}

// Login authenticates an administrator and starts a console session. Form
// posts are redirected to the log view, JSON callers get the account.
func (h *AdminHandler) Login(c *gin.Context) {
	var req dto.AdminLoginRequest
	// Binding problems are reported by the service so the attempt is audited.
	_ = c.ShouldBind(&req)

	user, err := h.authService.AdminLogin(c.Request.Context(), req.Email, req.Password, clientInfo(c))
	if err == nil {
		err = h.sessions.Start(c.Writer, c.Request, user)
	}

	isJSON := c.ContentType() == gin.MIMEJSON
	switch {
	case err != nil && isJSON:
		respondError(c, h.logger, err)
	case err != nil:
		c.Redirect(http.StatusSeeOther, AdminLoginPath+"?error="+h.consoleError(err))
	case isJSON:
		c.JSON(http.StatusOK, dto.NewUserInfo(user))
	default:
		c.Redirect(http.StatusSeeOther, "/admin/login-logs")
	}
}

// consoleError picks the code shown on the login form and logs unexpected
// errors.
func (h *AdminHandler) consoleError(err error) string {
	switch {
	case errors.Is(err, service.ErrForbidden):
		return consoleErrForbidden
	case errors.Is(err, service.ErrAuthenticationFailed),
		errors.Is(err, service.ErrUnverified),
		errors.Is(err, service.ErrValidation):
		return consoleErrCredentials
	default:
		h.logger.Error("admin console login failed", zap.Error(err))
		return consoleErrUnavailable
	}
}

func (h *AdminHandler) Logout(c *gin.Context) {
	if err := h.sessions.End(c.Writer, c.Request); err != nil {
		respondError(c, h.logger, err)
		return
	}

	if c.ContentType() == gin.MIMEJSON {
		c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Logged out"})
		return
	}
	c.Redirect(http.StatusSeeOther, AdminLoginPath)
}

// ListLoginLogs returns the most recent login attempts across all users.
// @Summary List login logs
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Maximum entries"
// @Success 200 {object} dto.LoginLogListResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /admin/login-logs [get]
func (h *AdminHandler) ListLoginLogs(c *gin.Context) {
	logs, err := h.loginLogService.ListAll(c.Request.Context(), queryLimit(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewLoginLogList(logs))
}

func (h *AdminHandler) UserLoginLogs(c *gin.Context) {
	logs, err := h.loginLogService.ListForUser(c.Request.Context(), c.Param("id"), queryLimit(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewLoginLogList(logs))
}

// PurgeUserLoginLogs deletes every login log entry of one user.
func (h *AdminHandler) PurgeUserLoginLogs(c *gin.Context) {
	deleted, err := h.loginLogService.Purge(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.Info("login logs purged",
		zap.String("user_id", c.Param("id")),
		zap.String("by", currentUserID(c)),
		zap.Int64("deleted", deleted),
	)
	c.JSON(http.StatusOK, dto.DeletedResponse{
		Message: "Login logs purged",
		Deleted: deleted,
	})
}

func (h *AdminHandler) GetUser(c *gin.Context) {
	user, err := h.accountService.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewUserInfo(user))
}
