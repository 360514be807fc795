package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/sessions"
)

const (
	SessionName     = "tracker_session"
	sessionTokenKey = "token"
)

// NewSessionStore returns the cookie store backing the session transport.
func NewSessionStore(secret string, ttl time.Duration, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// SessionToken returns the token held in the session cookie, or "" when the
// cookie is absent or cannot be decoded.
func SessionToken(store sessions.Store, r *http.Request) string {
	if store == nil {
		return ""
	}
	session, err := store.Get(r, SessionName)
	if err != nil {
		return ""
	}
	token, _ := session.Values[sessionTokenKey].(string)
	return token
}

func SaveSessionToken(store sessions.Store, w http.ResponseWriter, r *http.Request, token string) error {
	session, _ := store.Get(r, SessionName)
	session.Values[sessionTokenKey] = token
	return session.Save(r, w)
}

func ClearSession(store sessions.Store, w http.ResponseWriter, r *http.Request) error {
	session, _ := store.Get(r, SessionName)
	delete(session.Values, sessionTokenKey)
	session.Options.MaxAge = -1
	return session.Save(r, w)
}
