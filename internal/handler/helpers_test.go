package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/msomdec/user-registry/internal/domain"
	"github.com/msomdec/user-registry/internal/handler"
	"github.com/msomdec/user-registry/internal/metrics"
	"github.com/msomdec/user-registry/internal/repository/sqlite"
	"github.com/msomdec/user-registry/internal/service"
	"github.com/msomdec/user-registry/internal/session"
)

const testSessionSecret = "test-secret-for-handler-tests-0123456789"

type testEnv struct {
	db       *sqlite.DB
	users    *service.UserService
	sessions domain.SessionStore
	metrics  *metrics.Metrics
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWith(t, sqlite.Options{})
}

func newTestEnvWith(t *testing.T, opts sqlite.Options) *testEnv {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath, opts)
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return &testEnv{
		db:       db,
		users:    service.NewUserService(db.Users(), 4),
		sessions: session.NewCookieStore([]byte(testSessionSecret), false, time.Hour),
		metrics:  metrics.New(db.SqlDB),
	}
}

func (e *testEnv) deps() handler.Deps {
	return handler.Deps{
		Users:    e.users,
		Sessions: e.sessions,
		DB:       e.db,
		Metrics:  e.metrics,
	}
}

func (e *testEnv) register(t *testing.T, email, password string) *domain.User {
	t.Helper()
	age := 30
	user, err := e.users.Register(context.Background(), domain.NewUser{
		Firstname: "A", Lastname: "B", Email: email, Password: password, Age: &age,
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return user
}

// sessionCookies signs userID in and returns the cookies the store issued.
func (e *testEnv) sessionCookies(t *testing.T, userID int64) []*http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/sign_in", nil)
	if err := e.sessions.Set(w, r, userID); err != nil {
		t.Fatalf("Set session: %v", err)
	}
	return w.Result().Cookies()
}

func findCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}
