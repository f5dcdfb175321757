package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/msomdec/user-registry/internal/metrics"
)

func TestObserve(t *testing.T) {
	m := metrics.New(nil)

	m.Observe(http.MethodGet, "GET /users/json", http.StatusOK, 10*time.Millisecond)
	m.Observe(http.MethodGet, "GET /users/json", http.StatusOK, 20*time.Millisecond)
	m.Observe(http.MethodPost, "POST /sign_in", http.StatusUnauthorized, time.Millisecond)

	got, err := testutil.GatherAndCount(m.Registry(), "http_requests_total")
	if err != nil {
		t.Fatalf("GatherAndCount: %v", err)
	}
	if got != 2 {
		t.Fatalf("expected 2 label sets, got %d", got)
	}
}

func TestHandler(t *testing.T) {
	m := metrics.New(nil)
	m.Observe(http.MethodDelete, "DELETE /users", http.StatusNoContent, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `http_requests_total{method="DELETE",route="DELETE /users",status="204"} 1`) {
		t.Fatalf("counter missing from exposition:\n%s", body)
	}
}
