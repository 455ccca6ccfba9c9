package treasury

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	CreateAccount(ctx context.Context, account BankAccount) (BankAccount, error)
	GetAccount(ctx context.Context, id int64) (BankAccount, error)
	ListAccounts(ctx context.Context) ([]BankAccount, error)
	UpdateAccount(ctx context.Context, id int64, account BankAccount) error

	AppendEntry(ctx context.Context, entry CashEntry) (CashEntry, error)
	ListEntries(ctx context.Context, filters EntryFilters) ([]CashEntry, error)
	SumByDirection(ctx context.Context, direction EntryDirection) (int64, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) CreateAccount(ctx context.Context, account BankAccount) (BankAccount, error) {
	query := `INSERT INTO bank_accounts (label, bank, iban, is_active, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	now := time.Now()
	err := r.db.QueryRow(ctx, query, account.Label, account.Bank, account.IBAN, account.IsActive, now, now).Scan(&account.ID)
	if err != nil {
		return BankAccount{}, err
	}
	account.CreatedAt = now
	account.UpdatedAt = now
	return account, nil
}

func (r *repository) GetAccount(ctx context.Context, id int64) (BankAccount, error) {
	query := `SELECT id, label, bank, iban, is_active, created_at, updated_at FROM bank_accounts WHERE id = $1`
	var a BankAccount
	err := r.db.QueryRow(ctx, query, id).Scan(&a.ID, &a.Label, &a.Bank, &a.IBAN, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return BankAccount{}, ErrNotFound
	}
	return a, err
}

func (r *repository) ListAccounts(ctx context.Context) ([]BankAccount, error) {
	query := `SELECT id, label, bank, iban, is_active, created_at, updated_at FROM bank_accounts ORDER BY label`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BankAccount
	for rows.Next() {
		var a BankAccount
		if err := rows.Scan(&a.ID, &a.Label, &a.Bank, &a.IBAN, &a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *repository) UpdateAccount(ctx context.Context, id int64, account BankAccount) error {
	query := `UPDATE bank_accounts SET label = $1, bank = $2, iban = $3, is_active = $4, updated_at = $5 WHERE id = $6`
	tag, err := r.db.Exec(ctx, query, account.Label, account.Bank, account.IBAN, account.IsActive, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) AppendEntry(ctx context.Context, entry CashEntry) (CashEntry, error) {
	query := `INSERT INTO cash_entries (label, direction, amount, reference, entry_date, created_at) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	now := time.Now()
	err := r.db.QueryRow(ctx, query, entry.Label, entry.Direction, entry.Amount, entry.Reference, entry.EntryDate, now).Scan(&entry.ID)
	if err != nil {
		return CashEntry{}, err
	}
	entry.CreatedAt = now
	return entry, nil
}

func (r *repository) ListEntries(ctx context.Context, filters EntryFilters) ([]CashEntry, error) {
	query := `SELECT id, label, direction, amount, reference, entry_date, created_at FROM cash_entries WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if !filters.From.IsZero() {
		argCount++
		query += ` AND entry_date >= $` + strconv.Itoa(argCount)
		args = append(args, filters.From)
	}
	if !filters.To.IsZero() {
		argCount++
		query += ` AND entry_date <= $` + strconv.Itoa(argCount)
		args = append(args, filters.To)
	}
	if filters.Direction != "" {
		argCount++
		query += ` AND direction = $` + strconv.Itoa(argCount)
		args = append(args, string(filters.Direction))
	}

	query += ` ORDER BY entry_date DESC, id DESC`
	if filters.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.Limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CashEntry
	for rows.Next() {
		var e CashEntry
		if err := rows.Scan(&e.ID, &e.Label, &e.Direction, &e.Amount, &e.Reference, &e.EntryDate, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *repository) SumByDirection(ctx context.Context, direction EntryDirection) (int64, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM cash_entries WHERE direction = $1`
	var sum int64
	err := r.db.QueryRow(ctx, query, string(direction)).Scan(&sum)
	return sum, err
}
