package view_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/msomdec/user-registry/internal/domain"
	"github.com/msomdec/user-registry/internal/view"
)

func render(t *testing.T, users []domain.User) string {
	t.Helper()
	var buf bytes.Buffer
	if err := view.UsersPage(users).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return buf.String()
}

func TestUsersPage_Empty(t *testing.T) {
	html := render(t, nil)
	if !strings.Contains(html, "No users yet.") {
		t.Fatalf("expected empty-state message, got %s", html)
	}
	if strings.Contains(html, "<table>") {
		t.Fatal("empty listing should not render a table")
	}
}

func TestUsersPage_Rows(t *testing.T) {
	age := 30
	html := render(t, []domain.User{
		{ID: 1, Firstname: "A", Lastname: "B", Age: &age, Email: "a@b.com"},
		{ID: 2, Firstname: "C", Lastname: "D", Email: "c@d.com"},
	})

	for _, want := range []string{"<td>1</td><td>A</td><td>B</td><td>30</td><td>a@b.com</td>", "<td>2</td><td>C</td><td>D</td><td></td><td>c@d.com</td>"} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected row %q in %s", want, html)
		}
	}
}

func TestUsersPage_EscapesFields(t *testing.T) {
	html := render(t, []domain.User{{ID: 1, Firstname: "<script>alert(1)</script>", Lastname: "x", Email: "e"}})
	if strings.Contains(html, "<script>") {
		t.Fatalf("firstname was not escaped: %s", html)
	}
	if !strings.Contains(html, "&lt;script&gt;") {
		t.Fatalf("expected escaped markup, got %s", html)
	}
}
