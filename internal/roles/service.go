package roles

import (
	"context"
	"errors"
	"strings"
)

// RepositoryPort defines data access methods for roles.
type RepositoryPort interface {
	ListRoles(ctx context.Context) ([]Role, error)
	GetRole(ctx context.Context, id int64) (Role, error)
	CreateRole(ctx context.Context, name, description string) (Role, error)
	DeleteRole(ctx context.Context, id int64) error
}

// Service handles role business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListRoles returns all roles.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.repo.ListRoles(ctx)
}

// CreateRole registers a new role.
func (s *Service) CreateRole(ctx context.Context, name, description string) (Role, error) {
	if strings.TrimSpace(name) == "" {
		return Role{}, errors.New("roles: name is required")
	}
	return s.repo.CreateRole(ctx, name, description)
}

// DeleteRole removes a role.
func (s *Service) DeleteRole(ctx context.Context, id int64) error {
	if id <= 0 {
		return errors.New("roles: invalid role ID")
	}
	return s.repo.DeleteRole(ctx, id)
}
