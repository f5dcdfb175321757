// Package session provides the domain.SessionStore implementations: a signed
// cookie, a server-side filesystem store keyed by cookie, and a JWT cookie.
package session

import (
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/msomdec/user-registry/internal/domain"
)

const (
	BackendCookie     = "cookie"
	BackendFilesystem = "filesystem"
	BackendJWT        = "jwt"

	DefaultMaxAge = 24 * time.Hour
)

// Options selects and configures a session backend.
type Options struct {
	Backend string
	Secret  string
	Dir     string // filesystem backend only
	Secure  bool
	MaxAge  time.Duration
}

// Backends lists the supported backend names.
func Backends() []string {
	return []string{BackendCookie, BackendFilesystem, BackendJWT}
}

// ValidBackend reports whether name is a supported backend.
func ValidBackend(name string) bool {
	return slices.Contains(Backends(), name)
}

// New builds the session store named by opts.Backend.
func New(opts Options) (domain.SessionStore, error) {
	if opts.MaxAge <= 0 {
		opts.MaxAge = DefaultMaxAge
	}
	switch opts.Backend {
	case "", BackendCookie:
		return NewCookieStore([]byte(opts.Secret), opts.Secure, opts.MaxAge), nil
	case BackendFilesystem:
		return NewFilesystemStore(opts.Dir, []byte(opts.Secret), opts.Secure, opts.MaxAge), nil
	case BackendJWT:
		return NewTokenStore(opts.Secret, opts.Secure, opts.MaxAge), nil
	}
	return nil, fmt.Errorf("unknown session backend %q", opts.Backend)
}

func baseCookie(name string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
