// internal/app/system/auth/session.go
package auth

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const isAdminKey = "is_admin"

// SessionManager issues and reads the admin session cookie.
type SessionManager struct {
	store *sessions.CookieStore
	name  string
}

// NewSessionManager builds a cookie-backed session manager. An empty key is
// replaced by a random one, so sessions last only until restart.
//
// In production (secure=true) cookies are Secure + SameSite=None; for local
// development over http use secure=false.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if name == "" {
		return nil, fmt.Errorf("session name is empty")
	}
	key := []byte(sessionKey)
	switch {
	case sessionKey == "":
		key = securecookie.GenerateRandomKey(32)
		if key == nil {
			return nil, fmt.Errorf("generate session key")
		}
		logger.Warn("session key not configured; admin sessions will not survive a restart")
	case len(sessionKey) < 32:
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}

	store := sessions.NewCookieStore(key)
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge / time.Second),
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts
	store.MaxAge(opts.MaxAge)

	logger.Info("session store initialized",
		zap.String("name", name),
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{store: store, name: name}, nil
}

// SignIn marks the caller's session as admin.
func (sm *SessionManager) SignIn(w http.ResponseWriter, r *http.Request) error {
	sess, _ := sm.store.Get(r, sm.name)
	sess.Values[isAdminKey] = true
	return sess.Save(r, w)
}

// SignOut clears the session cookie.
func (sm *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, _ := sm.store.Get(r, sm.name)
	delete(sess.Values, isAdminKey)
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// IsAdmin reports whether r carries a valid admin session.
func (sm *SessionManager) IsAdmin(r *http.Request) bool {
	if sm == nil {
		return false
	}
	sess, err := sm.store.Get(r, sm.name)
	if err != nil {
		return false
	}
	ok, _ := sess.Values[isAdminKey].(bool)
	return ok
}
