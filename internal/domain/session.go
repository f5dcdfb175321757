package domain

import "net/http"

// SessionStore keeps the signed-in user id for a client across requests.
type SessionStore interface {
	// Get returns the user id bound to the request's session, if any.
	Get(r *http.Request) (userID int64, ok bool)
	// Set binds userID to the client's session.
	Set(w http.ResponseWriter, r *http.Request, userID int64) error
	// Clear drops the client's session.
	Clear(w http.ResponseWriter, r *http.Request) error
}
