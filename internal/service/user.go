package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/msomdec/user-registry/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// UserService handles account creation, credential checks and profile changes.
type UserService struct {
	users      domain.UserRepository
	bcryptCost int
}

// NewUserService creates a new UserService.
func NewUserService(users domain.UserRepository, bcryptCost int) *UserService {
	return &UserService{
		users:      users,
		bcryptCost: bcryptCost,
	}
}

// Register validates the input, hashes the password and stores the user.
// The returned user carries no password.
func (s *UserService) Register(ctx context.Context, in domain.NewUser) (*domain.User, error) {
	if err := domain.ValidateNewUser(in); err != nil {
		return nil, err
	}
	if in.Age != nil && *in.Age < 0 {
		return nil, fmt.Errorf("%w: age must not be negative", domain.ErrInvalidInput)
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Firstname: strings.TrimSpace(in.Firstname),
		Lastname:  strings.TrimSpace(in.Lastname),
		Email:     strings.TrimSpace(in.Email),
		Age:       in.Age,
		Password:  hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	user.Password = ""
	return user, nil
}

// SignIn verifies credentials. Unknown emails and wrong passwords both yield
// domain.ErrUnauthorized.
func (s *UserService) SignIn(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrInvalidInput)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, domain.ErrUnauthorized
	}

	user.Password = ""
	return user, nil
}

// ChangePassword replaces the user's password.
func (s *UserService) ChangePassword(ctx context.Context, id int64, newPassword string) (*domain.User, error) {
	if strings.TrimSpace(newPassword) == "" {
		return nil, fmt.Errorf("%w: new password is required", domain.ErrInvalidInput)
	}

	hash, err := s.hash(newPassword)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, id, domain.FieldPassword, hash)
}

// ChangeFirstname replaces the user's first name with its trimmed value.
func (s *UserService) ChangeFirstname(ctx context.Context, id int64, firstname string) (*domain.User, error) {
	firstname = strings.TrimSpace(firstname)
	if firstname == "" {
		return nil, fmt.Errorf("%w: first name is required", domain.ErrInvalidInput)
	}
	return s.update(ctx, id, domain.FieldFirstname, firstname)
}

// Destroy deletes the user permanently.
func (s *UserService) Destroy(ctx context.Context, id int64) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// List returns every user without passwords.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// GetUserByID retrieves a user by id, password removed.
func (s *UserService) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Password = ""
	return user, nil
}

func (s *UserService) update(ctx context.Context, id int64, field domain.Field, value string) (*domain.User, error) {
	user, err := s.users.Update(ctx, id, field, value)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", field, err)
	}
	user.Password = ""
	return user, nil
}

func (s *UserService) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
