package handler

import (
	"net/http"

	"github.com/ergosit/posture-auth/internal/config"
	"github.com/ergosit/posture-auth/internal/domain"
	"github.com/ergosit/posture-auth/internal/service"
	"github.com/gorilla/sessions"
)

const (
	sessionUserID = "user_id"
	sessionRole   = "user_role"
)

// NewCookieStore builds the signed cookie store backing admin sessions.
func NewCookieStore(cfg config.SessionConfig) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(cfg.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// SessionManager reads and writes the admin console session marker.
type SessionManager struct {
	store sessions.Store
	name  string
}

func NewSessionManager(store sessions.Store, name string) *SessionManager {
	return &SessionManager{store: store, name: name}
}

// Marker returns the session marker on the request, or nil when there is no
// valid session. A cookie that fails signature checks counts as no session.
func (m *SessionManager) Marker(r *http.Request) *service.SessionMarker {
	sess, err := m.store.Get(r, m.name)
	if err != nil || sess.IsNew {
		return nil
	}

	userID, _ := sess.Values[sessionUserID].(string)
	role, _ := sess.Values[sessionRole].(string)
	if userID == "" {
		return nil
	}
	return &service.SessionMarker{UserID: userID, Role: role}
}

// Start stores the marker for user in a fresh session cookie.
func (m *SessionManager) Start(w http.ResponseWriter, r *http.Request, user *domain.User) error {
	sess, _ := m.store.Get(r, m.name)
	sess.Values[sessionUserID] = user.ID
	sess.Values[sessionRole] = user.Role
	return sess.Save(r, w)
}

// End expires the session cookie.
func (m *SessionManager) End(w http.ResponseWriter, r *http.Request) error {
	sess, _ := m.store.Get(r, m.name)
	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}
