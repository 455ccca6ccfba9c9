package users

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	CreateUser(ctx context.Context, user User) (User, error)
	SetActive(ctx context.Context, id int64, active bool) error
}

// Service handles user business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// CreateUser hashes the password and stores the account.
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return User{}, errors.New("users: email is required")
	}
	if len(in.Password) < 8 {
		return User{}, errors.New("users: password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	return s.repo.CreateUser(ctx, User{
		Email:        email,
		Name:         in.Name,
		PasswordHash: string(hash),
		RoleID:       in.RoleID,
		IsActive:     true,
	})
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	user, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return User{}, ErrInvalidCredentials
	}
	if !user.IsActive {
		return User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

// Deactivate disables an account. Disabled accounts fail authentication.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	return s.repo.SetActive(ctx, id, false)
}

// Activate re-enables an account.
func (s *Service) Activate(ctx context.Context, id int64) error {
	return s.repo.SetActive(ctx, id, true)
}
