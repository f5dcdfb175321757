package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/msomdec/user-registry/internal/domain"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func backends(t *testing.T) map[string]domain.SessionStore {
	t.Helper()
	return map[string]domain.SessionStore{
		BackendCookie:     NewCookieStore([]byte(testSecret), false, time.Hour),
		BackendFilesystem: NewFilesystemStore(t.TempDir(), []byte(testSecret), false, time.Hour),
		BackendJWT:        NewTokenStore(testSecret, false, time.Hour),
	}
}

// requestWith builds a request carrying the cookies set on rec.
func requestWith(rec *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func signIn(t *testing.T, store domain.SessionStore, userID int64) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	if err := store.Set(rec, httptest.NewRequest(http.MethodPost, "/sign_in", nil), userID); err != nil {
		t.Fatalf("Set: %v", err)
	}
	return rec
}

func TestStore_SetThenGet(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			rec := signIn(t, store, 42)

			cookies := rec.Result().Cookies()
			if len(cookies) != 1 {
				t.Fatalf("expected 1 cookie, got %d", len(cookies))
			}
			c := cookies[0]
			if !c.HttpOnly || c.Path != "/" || c.SameSite != http.SameSiteLaxMode {
				t.Fatalf("unexpected cookie attributes: %+v", c)
			}

			id, ok := store.Get(requestWith(rec))
			if !ok || id != 42 {
				t.Fatalf("expected user 42, got %d (ok=%v)", id, ok)
			}
		})
	}
}

func TestStore_GetWithoutCookie(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, ok := store.Get(httptest.NewRequest(http.MethodGet, "/", nil)); ok {
				t.Fatal("expected no session without a cookie")
			}
		})
	}
}

func TestStore_TamperedCookie(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			rec := signIn(t, store, 7)
			c := rec.Result().Cookies()[0]
			c.Value = c.Value[:len(c.Value)-4] + "AAAA"

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(c)
			if _, ok := store.Get(req); ok {
				t.Fatal("tampered cookie should be rejected")
			}
		})
	}
}

func TestStore_Clear(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			rec := signIn(t, store, 9)
			req := requestWith(rec)

			clearRec := httptest.NewRecorder()
			if err := store.Clear(clearRec, req); err != nil {
				t.Fatalf("Clear: %v", err)
			}

			cookies := clearRec.Result().Cookies()
			if len(cookies) != 1 {
				t.Fatalf("expected 1 cookie, got %d", len(cookies))
			}
			if cookies[0].MaxAge >= 0 {
				t.Fatalf("cleared cookie must expire immediately, got MaxAge %d", cookies[0].MaxAge)
			}

			if _, ok := store.Get(requestWith(clearRec)); ok {
				t.Fatal("expected no session after Clear")
			}
		})
	}
}

func TestGorillaStore_RejectsCookieOlderThanMaxAge(t *testing.T) {
	stores := map[string]domain.SessionStore{
		BackendCookie:     NewCookieStore([]byte(testSecret), false, time.Second),
		BackendFilesystem: NewFilesystemStore(t.TempDir(), []byte(testSecret), false, time.Second),
	}
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			rec := signIn(t, store, 13)

			if _, ok := store.Get(requestWith(rec)); !ok {
				t.Fatal("fresh cookie should be accepted")
			}

			// Signed timestamps have one-second resolution.
			time.Sleep(2100 * time.Millisecond)

			if _, ok := store.Get(requestWith(rec)); ok {
				t.Fatal("cookie older than max age should be rejected")
			}
		})
	}
}

func TestFilesystemStore_ClearRevokesServerSide(t *testing.T) {
	store := NewFilesystemStore(t.TempDir(), []byte(testSecret), false, time.Hour)
	rec := signIn(t, store, 11)

	if err := store.Clear(httptest.NewRecorder(), requestWith(rec)); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	// Replaying the pre-sign-out cookie finds no server-side session.
	if _, ok := store.Get(requestWith(rec)); ok {
		t.Fatal("replayed cookie should not resolve after Clear")
	}
}

func TestFilesystemStore_SignInIssuesFreshID(t *testing.T) {
	store := NewFilesystemStore(t.TempDir(), []byte(testSecret), false, time.Hour)
	first := signIn(t, store, 1)

	second := httptest.NewRecorder()
	if err := store.Set(second, requestWith(first), 2); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if first.Result().Cookies()[0].Value == second.Result().Cookies()[0].Value {
		t.Fatal("expected a new session id on sign in")
	}
	id, ok := store.Get(requestWith(second))
	if !ok || id != 2 {
		t.Fatalf("expected user 2, got %d (ok=%v)", id, ok)
	}
}

func TestStore_WrongSecret(t *testing.T) {
	const other = "another-secret-another-secret-xx"

	rec := signIn(t, NewCookieStore([]byte(testSecret), false, time.Hour), 5)
	if _, ok := NewCookieStore([]byte(other), false, time.Hour).Get(requestWith(rec)); ok {
		t.Fatal("cookie store accepted a cookie signed with another secret")
	}

	rec = signIn(t, NewTokenStore(testSecret, false, time.Hour), 5)
	if _, ok := NewTokenStore(other, false, time.Hour).Get(requestWith(rec)); ok {
		t.Fatal("token store accepted a token signed with another secret")
	}
}

func TestTokenStore_Expired(t *testing.T) {
	store := NewTokenStore(testSecret, false, time.Hour)
	issued := time.Now()
	store.now = func() time.Time { return issued }

	rec := signIn(t, store, 3)

	store.now = func() time.Time { return issued.Add(30 * time.Minute) }
	if _, ok := store.Get(requestWith(rec)); !ok {
		t.Fatal("token should still be valid before expiry")
	}

	store.now = func() time.Time { return issued.Add(2 * time.Hour) }
	if _, ok := store.Get(requestWith(rec)); ok {
		t.Fatal("token should be rejected after expiry")
	}
}

func TestTokenStore_RejectsUnsignedToken(t *testing.T) {
	store := NewTokenStore(testSecret, false, time.Hour)

	// alg=none token with sub=1
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{
		Name:  TokenCookieName,
		Value: "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0.eyJzdWIiOiIxIn0.",
	})
	if _, ok := store.Get(req); ok {
		t.Fatal("unsigned token should be rejected")
	}
}

func TestNew(t *testing.T) {
	for _, backend := range Backends() {
		store, err := New(Options{Backend: backend, Secret: testSecret, Dir: t.TempDir()})
		if err != nil {
			t.Fatalf("New(%q): %v", backend, err)
		}
		if store == nil {
			t.Fatalf("New(%q) returned nil store", backend)
		}
	}

	if _, err := New(Options{Secret: testSecret}); err != nil {
		t.Fatalf("empty backend should default to cookie: %v", err)
	}
	if _, err := New(Options{Backend: "redis", Secret: testSecret}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestValidBackend(t *testing.T) {
	for _, b := range []string{BackendCookie, BackendFilesystem, BackendJWT} {
		if !ValidBackend(b) {
			t.Errorf("ValidBackend(%q) = false", b)
		}
	}
	if ValidBackend("redis") {
		t.Error("ValidBackend(redis) = true")
	}
}
