package handler

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"github.com/msomdec/user-registry/internal/domain"
	"github.com/msomdec/user-registry/internal/service"
	"github.com/msomdec/user-registry/internal/view"
)

// UserHandler serves the user listing and account routes.
type UserHandler struct {
	users    *service.UserService
	sessions domain.SessionStore
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *service.UserService, sessions domain.SessionStore) *UserHandler {
	return &UserHandler{users: users, sessions: sessions}
}

// HandleIndex renders the HTML user listing.
// GET / and GET /users
func (h *UserHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeStoreError(w, r, "list users", err)
		return
	}

	var buf bytes.Buffer
	if err := view.UsersPage(users).Render(r.Context(), &buf); err != nil {
		writeStoreError(w, r, "render users page", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

// HandleListJSON returns every user as JSON.
// GET /users/json
// Response: [{"id":1,"firstname":"...","lastname":"...","age":30,"email":"..."}]
func (h *UserHandler) HandleListJSON(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeStoreError(w, r, "list users", err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTOs(users))
}

// HandleCreate registers a new user.
// POST /users
// Params:   firstname, lastname, email, password, age (optional)
// Response: 201 {"id":1,"name":"first last"}
func (h *UserHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	params, err := readParams(w, r)
	if err != nil {
		writeStoreError(w, r, "read params", err)
		return
	}

	in := domain.NewUser{
		Firstname: params.Get("firstname"),
		Lastname:  params.Get("lastname"),
		Email:     params.Get("email"),
		Password:  params.Get("password"),
	}
	if raw := strings.TrimSpace(params.Get("age")); raw != "" {
		age, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Age must be a whole number.")
			return
		}
		in.Age = &age
	}

	user, err := h.users.Register(r.Context(), in)
	if err != nil {
		writeStoreError(w, r, "register user", err)
		return
	}

	writeJSON(w, http.StatusCreated, CreatedUserDTO{
		ID:   user.ID,
		Name: user.Firstname + " " + user.Lastname,
	})
}

// HandleChangePassword updates the signed-in user's password.
// PUT /users
// Params:   new_password
// Response: the updated user without password
func (h *UserHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	params, err := readParams(w, r)
	if err != nil {
		writeStoreError(w, r, "read params", err)
		return
	}

	updated, err := h.users.ChangePassword(r.Context(), user.ID, params.Get("new_password"))
	if err != nil {
		writeStoreError(w, r, "change password", err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(updated))
}

// HandleChangeFirstname updates the signed-in user's first name.
// PUT /update_firstname
// Params:   firstname
// Response: the updated user without password
func (h *UserHandler) HandleChangeFirstname(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	params, err := readParams(w, r)
	if err != nil {
		writeStoreError(w, r, "read params", err)
		return
	}

	updated, err := h.users.ChangeFirstname(r.Context(), user.ID, params.Get("firstname"))
	if err != nil {
		writeStoreError(w, r, "change firstname", err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(updated))
}

// HandleDestroy deletes the signed-in user and ends the session.
// DELETE /users
func (h *UserHandler) HandleDestroy(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if err := h.users.Destroy(r.Context(), user.ID); err != nil {
		writeStoreError(w, r, "destroy user", err)
		return
	}
	if err := h.sessions.Clear(w, r); err != nil {
		writeStoreError(w, r, "clear session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
