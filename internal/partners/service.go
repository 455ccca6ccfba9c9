package partners

import (
	"context"
	"errors"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Counterparty, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Counterparty, error) {
	if id <= 0 {
		return Counterparty{}, errors.New("invalid counterparty ID")
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, cp Counterparty) (Counterparty, error) {
	if err := s.validate(cp); err != nil {
		return Counterparty{}, err
	}
	return s.repo.Create(ctx, cp)
}

func (s *Service) Update(ctx context.Context, id int64, cp Counterparty) error {
	if id <= 0 {
		return errors.New("invalid counterparty ID")
	}
	if err := s.validate(cp); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, cp)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return errors.New("invalid counterparty ID")
	}
	return s.repo.Delete(ctx, id)
}
