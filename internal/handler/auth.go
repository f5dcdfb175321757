package handler

import (
	"net/http"

	"github.com/msomdec/user-registry/internal/domain"
	"github.com/msomdec/user-registry/internal/service"
)

// AuthHandler handles sign in and sign out.
type AuthHandler struct {
	users    *service.UserService
	sessions domain.SessionStore
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users *service.UserService, sessions domain.SessionStore) *AuthHandler {
	return &AuthHandler{users: users, sessions: sessions}
}

// HandleSignIn checks credentials and starts a session.
// POST /sign_in
// Params:   email, password
// Response: the user without password
func (h *AuthHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	params, err := readParams(w, r)
	if err != nil {
		writeStoreError(w, r, "read params", err)
		return
	}

	user, err := h.users.SignIn(r.Context(), params.Get("email"), params.Get("password"))
	if err != nil {
		writeStoreError(w, r, "sign in", err)
		return
	}

	if err := h.sessions.Set(w, r, user.ID); err != nil {
		writeStoreError(w, r, "save session", err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(user))
}

// HandleSignOut ends the current session.
// DELETE /sign_out
func (h *AuthHandler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Clear(w, r); err != nil {
		writeStoreError(w, r, "clear session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
