package session

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
)

const (
	CookieName = "session"
	userIDKey  = "user_id"
)

// GorillaStore adapts a gorilla/sessions store to domain.SessionStore.
type GorillaStore struct {
	store sessions.Store
	name  string
}

// NewCookieStore keeps the session in an HMAC-signed cookie. Cookies older
// than maxAge are rejected on read as well as expired in the browser.
func NewCookieStore(secret []byte, secure bool, maxAge time.Duration) *GorillaStore {
	cs := sessions.NewCookieStore(secret)
	cs.Options = sessionOptions(secure, maxAge)
	cs.MaxAge(cs.Options.MaxAge)
	return &GorillaStore{store: cs, name: CookieName}
}

// NewFilesystemStore keeps session values in files under dir; the cookie
// carries only the signed session id. An empty dir uses os.TempDir.
func NewFilesystemStore(dir string, secret []byte, secure bool, maxAge time.Duration) *GorillaStore {
	fs := sessions.NewFilesystemStore(dir, secret)
	fs.Options = sessionOptions(secure, maxAge)
	fs.MaxAge(fs.Options.MaxAge)
	return &GorillaStore{store: fs, name: CookieName}
}

func sessionOptions(secure bool, maxAge time.Duration) *sessions.Options {
	c := baseCookie(CookieName, secure)
	return &sessions.Options{
		Path:     c.Path,
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: c.HttpOnly,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	}
}

func (s *GorillaStore) Get(r *http.Request) (int64, bool) {
	sess, err := s.store.Get(r, s.name)
	if err != nil {
		slog.Debug("discarding unreadable session", "error", err)
		return 0, false
	}
	id, ok := sess.Values[userIDKey].(int64)
	return id, ok && id > 0
}

func (s *GorillaStore) Set(w http.ResponseWriter, r *http.Request, userID int64) error {
	// An unreadable cookie still yields a usable fresh session.
	sess, _ := s.store.Get(r, s.name)
	// Force a new server-side id on sign-in.
	sess.ID = ""
	sess.Values = map[any]any{userIDKey: userID}
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *GorillaStore) Clear(w http.ResponseWriter, r *http.Request) error {
	sess, _ := s.store.Get(r, s.name)
	sess.Values = map[any]any{}
	sess.Options.MaxAge = -1
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
