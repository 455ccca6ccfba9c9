package partners

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when no counterparty matches the given ID.
var ErrNotFound = errors.New("partners: counterparty not found")

// ErrHasDocuments blocks deletion of a counterparty with ledger history.
var ErrHasDocuments = errors.New("partners: counterparty has ledger documents")

type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Counterparty, int, error)
	Get(ctx context.Context, id int64) (Counterparty, error)
	Create(ctx context.Context, cp Counterparty) (Counterparty, error)
	Update(ctx context.Context, id int64, cp Counterparty) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Counterparty, int, error) {
	query := `SELECT id, code, name, tax_id, address, email, phone, is_active, created_at, updated_at FROM counterparties WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		query += ` AND (name ILIKE $` + strconv.Itoa(argCount) + ` OR code ILIKE $` + strconv.Itoa(argCount) + `)`
		args = append(args, "%"+filters.Search+"%")
	}
	if filters.IsActive != nil {
		argCount++
		query += ` AND is_active = $` + strconv.Itoa(argCount)
		args = append(args, *filters.IsActive)
	}

	countQuery := `SELECT COUNT(*) FROM counterparties WHERE 1=1`
	countArgs := []interface{}{}
	countN := 0
	if filters.Search != "" {
		countN++
		countQuery += ` AND (name ILIKE $` + strconv.Itoa(countN) + ` OR code ILIKE $` + strconv.Itoa(countN) + `)`
		countArgs = append(countArgs, "%"+filters.Search+"%")
	}
	if filters.IsActive != nil {
		countN++
		countQuery += ` AND is_active = $` + strconv.Itoa(countN)
		countArgs = append(countArgs, *filters.IsActive)
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += " ORDER BY " + sortOrder(filters.SortBy, filters.SortDir)

	if filters.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.Limit)

		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		offset := (filters.Page - 1) * filters.Limit
		if offset < 0 {
			offset = 0
		}
		args = append(args, offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Counterparty
	for rows.Next() {
		var cp Counterparty
		if err := rows.Scan(&cp.ID, &cp.Code, &cp.Name, &cp.TaxID, &cp.Address, &cp.Email, &cp.Phone, &cp.IsActive, &cp.CreatedAt, &cp.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, cp)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Counterparty, error) {
	query := `SELECT id, code, name, tax_id, address, email, phone, is_active, created_at, updated_at FROM counterparties WHERE id = $1`
	var cp Counterparty
	err := r.db.QueryRow(ctx, query, id).Scan(&cp.ID, &cp.Code, &cp.Name, &cp.TaxID, &cp.Address, &cp.Email, &cp.Phone, &cp.IsActive, &cp.CreatedAt, &cp.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Counterparty{}, ErrNotFound
	}
	return cp, err
}

func (r *repository) Create(ctx context.Context, cp Counterparty) (Counterparty, error) {
	query := `INSERT INTO counterparties (code, name, tax_id, address, email, phone, is_active, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	now := time.Now()
	err := r.db.QueryRow(ctx, query, cp.Code, cp.Name, cp.TaxID, cp.Address, cp.Email, cp.Phone, cp.IsActive, now, now).Scan(&cp.ID)
	if err != nil {
		return Counterparty{}, err
	}
	cp.CreatedAt = now
	cp.UpdatedAt = now
	return cp, nil
}

func (r *repository) Update(ctx context.Context, id int64, cp Counterparty) error {
	query := `UPDATE counterparties SET code = $1, name = $2, tax_id = $3, address = $4, email = $5, phone = $6, is_active = $7, updated_at = $8 WHERE id = $9`
	tag, err := r.db.Exec(ctx, query, cp.Code, cp.Name, cp.TaxID, cp.Address, cp.Email, cp.Phone, cp.IsActive, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	// Refuse to delete a counterparty whose ledger history exists.
	query := `DELETE FROM counterparties c WHERE c.id = $1 AND NOT EXISTS (SELECT 1 FROM payable_documents d WHERE d.counterparty_id = c.id)`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, getErr := r.Get(ctx, id); getErr != nil {
			return getErr
		}
		return ErrHasDocuments
	}
	return nil
}

func sortOrder(sortBy, sortDir string) string {
	dir := "ASC"
	if sortDir == "desc" {
		dir = "DESC"
	}
	switch sortBy {
	case "code":
		return "code " + dir
	case "name":
		return "name " + dir
	case "created_at":
		return "created_at " + dir
	default:
		return "name " + dir
	}
}
