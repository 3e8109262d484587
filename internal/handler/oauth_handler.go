package handler

import (
	"net/http"

	"github.com/ergosit/posture-auth/internal/domain"
	"github.com/ergosit/posture-auth/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"go.uber.org/zap"
)

const googleProvider = "google"

// OAuthHandler runs the browser redirect flow for Google sign-in. The
// provider must be registered with goth.UseProviders beforehand.
type OAuthHandler struct {
	authService service.AuthService
	logger      *zap.Logger
	complete    func(http.ResponseWriter, *http.Request) (goth.User, error)
}

func NewOAuthHandler(authService service.AuthService, logger *zap.Logger) *OAuthHandler {
	return &OAuthHandler{
		authService: authService,
		logger:      logger,
		complete:    gothic.CompleteUserAuth,
	}
}

// Begin redirects the browser to Google's consent screen.
func (h *OAuthHandler) Begin(c *gin.Context) {
	withProvider(c.Request, googleProvider)
	gothic.BeginAuthHandler(c.Writer, c.Request)
}

// Callback completes the flow and signs the user in like an ID-token login.
func (h *OAuthHandler) Callback(c *gin.Context) {
	withProvider(c.Request, googleProvider)

	var identity *domain.ExternalIdentity
	gu, err := h.complete(c.Writer, c.Request)
	if err != nil {
		h.logger.Info("oauth callback rejected", zap.Error(err))
	} else {
		identity = &domain.ExternalIdentity{
			Provider: gu.Provider,
			Subject:  gu.UserID,
			Email:    gu.Email,
			Name:     gu.Name,
			Picture:  gu.AvatarURL,
		}
	}

	response, err := h.authService.FederatedLogin(c.Request.Context(), identity, clientInfo(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func withProvider(r *http.Request, provider string) {
	q := r.URL.Query()
	q.Set("provider", provider)
	r.URL.RawQuery = q.Encode()
}
