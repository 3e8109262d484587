package handler

import (
	"net/http"
	"strings"

	"github.com/ergosit/posture-auth/internal/domain"
	"github.com/ergosit/posture-auth/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys set by the gate for downstream handlers.
const (
	ctxUserID     = "user_id"
	ctxEmail      = "email"
	ctxRole       = "role"
	ctxClaims     = "claims"
	ctxAuthSource = "auth_source"
)

// AdminLoginPath is where browser requests are sent when the gate denies them.
const AdminLoginPath = "/admin/login"

// Authenticator turns gate verdicts into gin middleware.
type Authenticator struct {
	gate     *service.Gate
	sessions *SessionManager
	logger   *zap.Logger
}

func NewAuthenticator(gate *service.Gate, sessions *SessionManager, logger *zap.Logger) *Authenticator {
	return &Authenticator{gate: gate, sessions: sessions, logger: logger}
}

// Require returns middleware enforcing policy. Requests under /api/ are denied
// with a JSON body, anything else is redirected to the admin login page.
func (a *Authenticator) Require(policy service.Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		verdict := a.gate.Decide(c.Request.Context(), a.credentials(c), policy)
		if !verdict.Allowed {
			a.logger.Debug("request denied",
				zap.String("path", c.Request.URL.Path),
				zap.String("reason", string(verdict.Reason)),
				zap.String("source", string(verdict.Source)),
			)
			if !strings.HasPrefix(c.Request.URL.Path, "/api/") {
				c.Redirect(http.StatusFound, AdminLoginPath)
				c.Abort()
				return
			}
			respondError(c, a.logger, verdict.Err())
			c.Abort()
			return
		}

		c.Set(ctxAuthSource, string(verdict.Source))
		if id := verdict.SubjectID(); id != "" {
			c.Set(ctxUserID, id)
			c.Set(ctxRole, verdict.Role())
		}
		if verdict.Claims != nil {
			c.Set(ctxEmail, verdict.Claims.Email)
			c.Set(ctxClaims, verdict.Claims)
		}

		c.Next()
	}
}

func (a *Authenticator) credentials(c *gin.Context) service.Credentials {
	creds := service.Credentials{
		APIKey: strings.TrimSpace(c.GetHeader("X-API-Key")),
	}
	if a.sessions != nil {
		creds.Session = a.sessions.Marker(c.Request)
	}

	if header := c.GetHeader("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		token = strings.TrimSpace(token)
		if ok && strings.EqualFold(scheme, "Bearer") && token != "" {
			creds.BearerToken = token
		} else {
			creds.MalformedAuthorization = true
		}
	}
	return creds
}

func currentUserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

func currentClaims(c *gin.Context) *domain.TokenClaims {
	v, ok := c.Get(ctxClaims)
	if !ok {
		return nil
	}
	claims, _ := v.(*domain.TokenClaims)
	return claims
}

func clientInfo(c *gin.Context) domain.ClientInfo {
	return domain.ClientInfo{
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	}
}
