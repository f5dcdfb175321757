package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/msomdec/user-registry/internal/domain"
)

const msgInternal = "An unexpected error occurred. Please try again."

// writeStoreError maps a service error onto a status code and a message that
// is safe to show the client. Anything unexpected is logged and hidden.
func writeStoreError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, errBadParams):
		writeError(w, http.StatusBadRequest, "Invalid request parameters.")
	case errors.Is(err, domain.ErrDuplicateEmail):
		writeError(w, http.StatusBadRequest, "An account with that email already exists.")
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, invalidInputMessage(err))
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "Invalid email or password.")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusUnauthorized, "Not signed in.")
	case errors.Is(err, domain.ErrPoolExhausted):
		slog.Warn(op, "error", err, "request_id", RequestIDFromContext(r.Context()))
		writeError(w, http.StatusServiceUnavailable, "The server is busy. Please try again.")
	default:
		slog.Error(op, "error", err, "request_id", RequestIDFromContext(r.Context()))
		writeError(w, http.StatusInternalServerError, msgInternal)
	}
}

func invalidInputMessage(err error) string {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	return err.Error()
}
