package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ergosit/posture-auth/internal/domain"
	"github.com/ergosit/posture-auth/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testAPIKey = "device-key"

// stubTokens accepts a fixed set of tokens.
type stubTokens map[string]*domain.TokenClaims

func (s stubTokens) Validate(token string) (*domain.TokenClaims, error) {
	switch token {
	case "expired":
		return nil, service.ErrTokenExpired
	}
	claims, ok := s[token]
	if !ok {
		return nil, service.ErrTokenInvalid
	}
	return claims, nil
}

var testTokens = stubTokens{
	"user-token":  {UserID: "u-1", Email: "user@example.com", Role: domain.RoleUser, ExpiresAt: time.Now().Add(time.Hour)},
	"admin-token": {UserID: "a-1", Email: "admin@example.com", Role: domain.RoleAdmin, ExpiresAt: time.Now().Add(time.Hour)},
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestSessions() *SessionManager {
	return NewSessionManager(sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef")), "test_session")
}

func sessionCookie(t *testing.T, sm *SessionManager, role string) *http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/admin/login", nil)
	require.NoError(t, sm.Start(w, r, &domain.User{ID: "s-1", Role: role}))
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func newGateRouter(sm *SessionManager) *gin.Engine {
	authn := NewAuthenticator(service.NewGate(testTokens, testAPIKey, nil), sm, zap.NewNop())

	echo := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetString(ctxUserID),
			"role":    c.GetString(ctxRole),
			"source":  c.GetString(ctxAuthSource),
		})
	}

	r := gin.New()
	r.GET("/api/user", authn.Require(service.Policy{}), echo)
	r.POST("/api/ingest", authn.Require(service.Policy{AllowAPIKey: true}), echo)
	r.GET("/api/admin", authn.Require(service.Policy{RequireAdmin: true}), echo)
	r.GET("/admin/console", authn.Require(service.Policy{RequireAdmin: true}), echo)
	return r
}

func TestAuthenticator_Require(t *testing.T) {
	sm := newTestSessions()
	adminCookie := sessionCookie(t, sm, domain.RoleAdmin)
	userCookie := sessionCookie(t, sm, domain.RoleUser)
	router := newGateRouter(sm)

	tests := []struct {
		name       string
		method     string
		path       string
		headers    map[string]string
		cookie     *http.Cookie
		wantStatus int
		wantBody   string
	}{
		{
			name:       "no credentials",
			method:     http.MethodGet,
			path:       "/api/user",
			wantStatus: http.StatusUnauthorized,
			wantBody:   `"error":"Unauthorized"`,
		},
		{
			name:       "valid bearer",
			method:     http.MethodGet,
			path:       "/api/user",
			headers:    map[string]string{"Authorization": "Bearer user-token"},
			wantStatus: http.StatusOK,
			wantBody:   `"user_id":"u-1"`,
		},
		{
			name:       "lower case scheme",
			method:     http.MethodGet,
			path:       "/api/user",
			headers:    map[string]string{"Authorization": "bearer user-token"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "malformed header",
			method:     http.MethodGet,
			path:       "/api/user",
			headers:    map[string]string{"Authorization": "Basic dXNlcjpwYXNz"},
			wantStatus: http.StatusUnauthorized,
			wantBody:   `"error":"InvalidToken"`,
		},
		{
			name:       "expired token",
			method:     http.MethodGet,
			path:       "/api/user",
			headers:    map[string]string{"Authorization": "Bearer expired"},
			wantStatus: http.StatusUnauthorized,
			wantBody:   `"error":"TokenExpired"`,
		},
		{
			name:       "user token on admin route",
			method:     http.MethodGet,
			path:       "/api/admin",
			headers:    map[string]string{"Authorization": "Bearer user-token"},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "admin token on admin route",
			method:     http.MethodGet,
			path:       "/api/admin",
			headers:    map[string]string{"Authorization": "Bearer admin-token"},
			wantStatus: http.StatusOK,
			wantBody:   `"source":"bearer"`,
		},
		{
			name:       "admin session without bearer",
			method:     http.MethodGet,
			path:       "/api/admin",
			cookie:     adminCookie,
			wantStatus: http.StatusOK,
			wantBody:   `"source":"session"`,
		},
		{
			name:       "admin session wins over bad bearer",
			method:     http.MethodGet,
			path:       "/api/admin",
			headers:    map[string]string{"Authorization": "Bearer garbage"},
			cookie:     adminCookie,
			wantStatus: http.StatusOK,
		},
		{
			name:       "user session falls through to bearer",
			method:     http.MethodGet,
			path:       "/api/admin",
			headers:    map[string]string{"Authorization": "Bearer user-token"},
			cookie:     userCookie,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "api key where allowed",
			method:     http.MethodPost,
			path:       "/api/ingest",
			headers:    map[string]string{"X-API-Key": testAPIKey},
			wantStatus: http.StatusOK,
			wantBody:   `"source":"api_key"`,
		},
		{
			name:       "wrong api key",
			method:     http.MethodPost,
			path:       "/api/ingest",
			headers:    map[string]string{"X-API-Key": "nope"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "api key where not allowed",
			method:     http.MethodGet,
			path:       "/api/user",
			headers:    map[string]string{"X-API-Key": testAPIKey},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "browser route redirects",
			method:     http.MethodGet,
			path:       "/admin/console",
			wantStatus: http.StatusFound,
		},
		{
			name:       "browser route with admin session",
			method:     http.MethodGet,
			path:       "/admin/console",
			cookie:     adminCookie,
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantBody != "" {
				assert.Contains(t, w.Body.String(), tt.wantBody)
			}
			if tt.wantStatus == http.StatusFound {
				assert.Equal(t, AdminLoginPath, w.Header().Get("Location"))
			}
		})
	}
}

func TestSessionManager_TamperedCookieIsIgnored(t *testing.T) {
	sm := newTestSessions()
	cookie := sessionCookie(t, sm, domain.RoleAdmin)
	cookie.Value = cookie.Value[:len(cookie.Value)-2] + "xx"

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	assert.Nil(t, sm.Marker(req))
}

func TestSessionManager_End(t *testing.T) {
	sm := newTestSessions()
	cookie := sessionCookie(t, sm, domain.RoleAdmin)

	req := httptest.NewRequest(http.MethodPost, "/admin/logout", nil)
	req.AddCookie(cookie)
	require.NotNil(t, sm.Marker(req))

	w := httptest.NewRecorder()
	require.NoError(t, sm.End(w, req))

	cleared := w.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Negative(t, cleared[0].MaxAge)
}
