package handler

import (
	"net/http"

	"github.com/msomdec/user-registry/internal/domain"
	"github.com/msomdec/user-registry/internal/metrics"
	"github.com/msomdec/user-registry/internal/service"
)

// Deps carries everything the routes need.
type Deps struct {
	Users    *service.UserService
	Sessions domain.SessionStore
	Limiter  *service.RateLimiter
	DB       domain.Database
	Metrics  *metrics.Metrics
}

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, d Deps) {
	users := NewUserHandler(d.Users, d.Sessions)
	auth := NewAuthHandler(d.Users, d.Sessions)

	requireSession := func(h http.HandlerFunc) http.Handler {
		return RequireSession(d.Sessions, d.Users, h)
	}
	limited := func(h http.HandlerFunc) http.Handler {
		if d.Limiter == nil {
			return h
		}
		return RateLimit(d.Limiter, h)
	}

	mux.HandleFunc("GET /{$}", users.HandleIndex)
	mux.HandleFunc("GET /users", users.HandleIndex)
	mux.HandleFunc("GET /users/json", users.HandleListJSON)
	mux.Handle("POST /users", limited(users.HandleCreate))
	mux.Handle("POST /sign_in", limited(auth.HandleSignIn))

	mux.Handle("PUT /users", requireSession(users.HandleChangePassword))
	mux.Handle("PUT /update_firstname", requireSession(users.HandleChangeFirstname))
	mux.Handle("DELETE /sign_out", requireSession(auth.HandleSignOut))
	mux.Handle("DELETE /users", requireSession(users.HandleDestroy))

	if d.DB != nil {
		mux.Handle("GET /healthz", HandleHealthz(d.DB))
	}
	if d.Metrics != nil {
		mux.Handle("GET /metrics", d.Metrics.Handler())
	}
}

// NewHandler builds the mux and wraps it in the request middleware chain.
func NewHandler(d Deps) http.Handler {
	mux := http.NewServeMux()
	RegisterRoutes(mux, d)
	return Chain(mux,
		RequestID,
		Logger(d.Metrics),
		SecurityHeaders,
		Recover,
	)
}
