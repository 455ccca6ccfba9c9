package treasury

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var treasuryNow = time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

type memoryTreasuryRepo struct {
	accounts map[int64]BankAccount
	entries  []CashEntry
	nextID   int64
}

func newMemoryTreasuryRepo() *memoryTreasuryRepo {
	return &memoryTreasuryRepo{accounts: make(map[int64]BankAccount)}
}

func (m *memoryTreasuryRepo) CreateAccount(_ context.Context, account BankAccount) (BankAccount, error) {
	m.nextID++
	account.ID = m.nextID
	m.accounts[account.ID] = account
	return account, nil
}

func (m *memoryTreasuryRepo) GetAccount(_ context.Context, id int64) (BankAccount, error) {
	a, ok := m.accounts[id]
	if !ok {
		return BankAccount{}, ErrNotFound
	}
	return a, nil
}

func (m *memoryTreasuryRepo) ListAccounts(_ context.Context) ([]BankAccount, error) {
	out := make([]BankAccount, 0, len(m.accounts))
	for _, a := range m.accounts {
		out = append(out, a)
	}
	return out, nil
}

func (m *memoryTreasuryRepo) UpdateAccount(_ context.Context, id int64, account BankAccount) error {
	if _, ok := m.accounts[id]; !ok {
		return ErrNotFound
	}
	account.ID = id
	m.accounts[id] = account
	return nil
}

func (m *memoryTreasuryRepo) AppendEntry(_ context.Context, entry CashEntry) (CashEntry, error) {
	m.nextID++
	entry.ID = m.nextID
	m.entries = append(m.entries, entry)
	return entry, nil
}

func (m *memoryTreasuryRepo) ListEntries(_ context.Context, filters EntryFilters) ([]CashEntry, error) {
	var out []CashEntry
	for _, e := range m.entries {
		if filters.Direction != "" && e.Direction != filters.Direction {
			continue
		}
		if !filters.From.IsZero() && e.EntryDate.Before(filters.From) {
			continue
		}
		if !filters.To.IsZero() && e.EntryDate.After(filters.To) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *memoryTreasuryRepo) SumByDirection(_ context.Context, direction EntryDirection) (int64, error) {
	var sum int64
	for _, e := range m.entries {
		if e.Direction == direction {
			sum += e.Amount
		}
	}
	return sum, nil
}

func newTreasuryService(repo *memoryTreasuryRepo) *Service {
	svc := NewService(repo)
	svc.SetClock(func() time.Time { return treasuryNow })
	return svc
}

func TestRecordCashInValidation(t *testing.T) {
	repo := newMemoryTreasuryRepo()
	svc := newTreasuryService(repo)

	err := svc.RecordCashIn(context.Background(), "Encaissement SOCOMAR", 0, "", treasuryNow)
	require.ErrorIs(t, err, ErrInvalidAmount)

	err = svc.RecordCashIn(context.Background(), "  ", 1000, "", treasuryNow)
	require.Error(t, err)

	err = svc.RecordCashIn(context.Background(), "Encaissement SOCOMAR", 250_000, "PAY-001", treasuryNow)
	require.NoError(t, err)
	require.Len(t, repo.entries, 1)
	require.Equal(t, DirectionIn, repo.entries[0].Direction)
	require.Equal(t, int64(250_000), repo.entries[0].Amount)
}

func TestRecordCashInDefaultsEntryDate(t *testing.T) {
	repo := newMemoryTreasuryRepo()
	svc := newTreasuryService(repo)

	require.NoError(t, svc.RecordCashIn(context.Background(), "Encaissement divers", 1000, "", time.Time{}))
	require.Equal(t, treasuryNow, repo.entries[0].EntryDate)
}

func TestCashBalance(t *testing.T) {
	repo := newMemoryTreasuryRepo()
	svc := newTreasuryService(repo)

	require.NoError(t, svc.RecordCashIn(context.Background(), "Encaissement SOCOMAR", 500_000, "", treasuryNow))
	require.NoError(t, svc.RecordCashIn(context.Background(), "Encaissement MSC", 300_000, "", treasuryNow))
	require.NoError(t, svc.RecordCashOut(context.Background(), "Frais de port", 120_000, "", treasuryNow))

	balance, err := svc.CashBalance(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(680_000), balance)
}

func TestListEntriesFilters(t *testing.T) {
	repo := newMemoryTreasuryRepo()
	svc := newTreasuryService(repo)

	require.NoError(t, svc.RecordCashIn(context.Background(), "Encaissement SOCOMAR", 500_000, "", treasuryNow))
	require.NoError(t, svc.RecordCashOut(context.Background(), "Frais de port", 120_000, "", treasuryNow.AddDate(0, 0, 1)))

	out, err := svc.ListEntries(context.Background(), EntryFilters{Direction: DirectionOut})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "Frais de port", out[0].Label)

	out, err = svc.ListEntries(context.Background(), EntryFilters{From: treasuryNow.AddDate(0, 0, 1)})
	require.NoError(t, err)
	require.Len(t, out, 1)
}

func TestBankAccountLifecycle(t *testing.T) {
	repo := newMemoryTreasuryRepo()
	svc := newTreasuryService(repo)

	_, err := svc.CreateAccount(context.Background(), BankAccount{Bank: "CBAO"})
	require.Error(t, err)

	account, err := svc.CreateAccount(context.Background(), BankAccount{Label: "Compte principal", Bank: "CBAO", IsActive: true})
	require.NoError(t, err)
	require.NotZero(t, account.ID)

	account.Label = "Compte courant"
	require.NoError(t, svc.UpdateAccount(context.Background(), account.ID, account))

	got, err := svc.GetAccount(context.Background(), account.ID)
	require.NoError(t, err)
	require.Equal(t, "Compte courant", got.Label)

	_, err = svc.GetAccount(context.Background(), 999)
	require.ErrorIs(t, err, ErrNotFound)
}
