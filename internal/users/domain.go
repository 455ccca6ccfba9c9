package users

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no user matches.
	ErrNotFound = errors.New("users: not found")
	// ErrDuplicateEmail marks an email collision.
	ErrDuplicateEmail = errors.New("users: email already registered")
	// ErrInvalidCredentials hides whether the email or the password was wrong.
	ErrInvalidCredentials = errors.New("users: invalid credentials")
)

// User represents a user account.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	RoleID       *int64    `json:"role_id,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateUserInput describes a new account.
type CreateUserInput struct {
	Email    string
	Name     string
	Password string
	RoleID   *int64
}
