package domain

import (
	"context"
	"strings"
)

// User represents a registered user of the service.
type User struct {
	ID        int64
	Firstname string
	Lastname  string
	Age       *int   // nil when not supplied
	Password  string // bcrypt hash; empty in list projections
	Email     string
}

// NewUser carries the caller-supplied fields for account creation.
type NewUser struct {
	Firstname string
	Lastname  string
	Email     string
	Password  string
	Age       *int
}

// Field names an updatable user attribute. Only the constants below are valid.
type Field string

const (
	FieldPassword  Field = "password"
	FieldFirstname Field = "firstname"
)

// Column returns the SQL column backing the field. ok is false for any value
// outside the closed set.
func (f Field) Column() (column string, ok bool) {
	switch f {
	case FieldPassword:
		return "password", true
	case FieldFirstname:
		return "firstname", true
	}
	return "", false
}

// ValidateNewUser checks that every required field is non-blank after trimming.
func ValidateNewUser(u NewUser) error {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"firstname", u.Firstname},
		{"lastname", u.Lastname},
		{"email", u.Email},
		{"password", u.Password},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	// GetByEmail returns the single user with the given email. Emails are
	// unique at the schema level.
	GetByEmail(ctx context.Context, email string) (*User, error)
	// List returns all users without their password hashes, ordered by id.
	List(ctx context.Context) ([]User, error)
	Update(ctx context.Context, id int64, field Field, value string) (*User, error)
	Delete(ctx context.Context, id int64) error
}
