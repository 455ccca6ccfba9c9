package treasury

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Service manages bank accounts and the cash journal. It also satisfies
// the ledger's cash recorder port, so cash payments registered in the
// ledger land in the journal automatically.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// SetClock overrides the time source, for tests.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// RecordCashIn appends an inbound movement to the cash journal.
func (s *Service) RecordCashIn(ctx context.Context, label string, amount int64, reference string, at time.Time) error {
	_, err := s.appendEntry(ctx, label, DirectionIn, amount, reference, at)
	return err
}

// RecordCashOut appends an outbound movement to the cash journal.
func (s *Service) RecordCashOut(ctx context.Context, label string, amount int64, reference string, at time.Time) error {
	_, err := s.appendEntry(ctx, label, DirectionOut, amount, reference, at)
	return err
}

func (s *Service) appendEntry(ctx context.Context, label string, direction EntryDirection, amount int64, reference string, at time.Time) (CashEntry, error) {
	if amount <= 0 {
		return CashEntry{}, ErrInvalidAmount
	}
	if strings.TrimSpace(label) == "" {
		return CashEntry{}, errors.New("treasury: entry label is required")
	}
	if at.IsZero() {
		at = s.now()
	}
	return s.repo.AppendEntry(ctx, CashEntry{
		Label:     label,
		Direction: direction,
		Amount:    amount,
		Reference: reference,
		EntryDate: at,
	})
}

// ListEntries returns journal entries matching the filters.
func (s *Service) ListEntries(ctx context.Context, filters EntryFilters) ([]CashEntry, error) {
	return s.repo.ListEntries(ctx, filters)
}

// CashBalance is total inflow minus total outflow.
func (s *Service) CashBalance(ctx context.Context) (int64, error) {
	in, err := s.repo.SumByDirection(ctx, DirectionIn)
	if err != nil {
		return 0, err
	}
	out, err := s.repo.SumByDirection(ctx, DirectionOut)
	if err != nil {
		return 0, err
	}
	return in - out, nil
}

// CreateAccount registers a bank account.
func (s *Service) CreateAccount(ctx context.Context, account BankAccount) (BankAccount, error) {
	if strings.TrimSpace(account.Label) == "" {
		return BankAccount{}, errors.New("treasury: account label is required")
	}
	if strings.TrimSpace(account.Bank) == "" {
		return BankAccount{}, errors.New("treasury: bank name is required")
	}
	return s.repo.CreateAccount(ctx, account)
}

// GetAccount returns one bank account.
func (s *Service) GetAccount(ctx context.Context, id int64) (BankAccount, error) {
	if id <= 0 {
		return BankAccount{}, errors.New("treasury: invalid account ID")
	}
	return s.repo.GetAccount(ctx, id)
}

// ListAccounts returns all bank accounts.
func (s *Service) ListAccounts(ctx context.Context) ([]BankAccount, error) {
	return s.repo.ListAccounts(ctx)
}

// UpdateAccount edits a bank account.
func (s *Service) UpdateAccount(ctx context.Context, id int64, account BankAccount) error {
	if id <= 0 {
		return errors.New("treasury: invalid account ID")
	}
	if strings.TrimSpace(account.Label) == "" {
		return errors.New("treasury: account label is required")
	}
	return s.repo.UpdateAccount(ctx, id, account)
}
