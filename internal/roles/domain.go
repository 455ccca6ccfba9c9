package roles

import (
	"errors"
	"time"
)

// ErrNotFound is returned when no role matches.
var ErrNotFound = errors.New("roles: not found")

// ErrInUse blocks deletion of a role still assigned to users.
var ErrInUse = errors.New("roles: role still assigned to users")

// Role represents a role for management.
type Role struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
