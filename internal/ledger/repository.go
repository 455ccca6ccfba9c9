package ledger

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridianmar/meridian/internal/platform/db"
)

// Repository provides PostgreSQL backed persistence for the ledger.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const documentColumns = `
	d.id, d.number, d.kind, d.counterparty_id, c.name,
	d.linked_ref, d.issue_date, d.due_date,
	d.amount, d.paid, d.advance, d.issued, d.cancelled, d.status,
	d.created_at, d.updated_at`

func scanDocument(row pgx.Row) (PayableDocument, error) {
	var d PayableDocument
	var linkedRef pgtype.Text
	var dueDate pgtype.Date
	err := row.Scan(
		&d.ID, &d.Number, &d.Kind, &d.CounterpartyID, &d.CounterpartyName,
		&linkedRef, &d.IssueDate, &dueDate,
		&d.Amount, &d.Paid, &d.Advance, &d.Issued, &d.Cancelled, &d.Status,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return PayableDocument{}, err
	}
	if linkedRef.Valid {
		d.LinkedRef = linkedRef.String
	}
	if dueDate.Valid {
		d.DueDate = dueDate.Time
	}
	return d, nil
}

// ListDocuments returns documents of one kind, newest first.
func (r *Repository) ListDocuments(ctx context.Context, kind DocumentKind) ([]PayableDocument, error) {
	query := `
		SELECT` + documentColumns + `
		FROM payable_documents d
		JOIN counterparties c ON c.id = d.counterparty_id
		WHERE d.kind = $1
		ORDER BY d.issue_date DESC, d.id DESC`

	rows, err := r.pool.Query(ctx, query, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PayableDocument
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// GetDocuments loads the documents for ids, preserving the ids order.
func (r *Repository) GetDocuments(ctx context.Context, ids []int64) ([]PayableDocument, error) {
	query := `
		SELECT` + documentColumns + `
		FROM payable_documents d
		JOIN counterparties c ON c.id = d.counterparty_id
		WHERE d.id = ANY($1)`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[int64]PayableDocument, len(ids))
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		byID[d.ID] = d
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]PayableDocument, 0, len(ids))
	for _, id := range ids {
		d, ok := byID[id]
		if !ok {
			return nil, ErrUnknownDocument
		}
		out = append(out, d)
	}
	return out, nil
}

// SavePayment persists the payment, its allocations and the updated document
// amounts and statuses in one transaction.
func (r *Repository) SavePayment(ctx context.Context, rec PaymentRecord, docs []PayableDocument) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var paymentID int64
		err := tx.QueryRow(ctx, `
			INSERT INTO ledger_payments (reference, amount, method, is_advance, paid_at, created_at)
			VALUES ($1, $2, $3, $4, $5, NOW())
			RETURNING id`,
			rec.Reference, rec.Amount, rec.Method, rec.IsAdvance, rec.PaidAt,
		).Scan(&paymentID)
		if err != nil {
			return err
		}

		for _, alloc := range rec.Allocations {
			if _, err := tx.Exec(ctx, `
				INSERT INTO ledger_allocations (payment_id, document_id, amount)
				VALUES ($1, $2, $3)`,
				paymentID, alloc.DocumentID, alloc.Amount,
			); err != nil {
				return err
			}
		}

		for _, d := range docs {
			tag, err := tx.Exec(ctx, `
				UPDATE payable_documents
				SET paid = $2, advance = $3, status = $4, updated_at = $5
				WHERE id = $1`,
				d.ID, d.Paid, d.Advance, d.Status, d.UpdatedAt,
			)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return ErrUnknownDocument
			}
		}
		return nil
	})
}

// ListOpenPastDue returns unsettled, uncancelled documents whose due date is
// before asOf.
func (r *Repository) ListOpenPastDue(ctx context.Context, asOf time.Time) ([]PayableDocument, error) {
	query := `
		SELECT` + documentColumns + `
		FROM payable_documents d
		JOIN counterparties c ON c.id = d.counterparty_id
		WHERE d.cancelled = FALSE
		  AND d.due_date IS NOT NULL
		  AND d.due_date < $1
		  AND d.paid + d.advance < d.amount
		ORDER BY d.due_date ASC`

	rows, err := r.pool.Query(ctx, query, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PayableDocument
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// UpdateStatuses persists recomputed statuses in one transaction.
func (r *Repository) UpdateStatuses(ctx context.Context, docs []PayableDocument) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, d := range docs {
			if _, err := tx.Exec(ctx, `
				UPDATE payable_documents SET status = $2, updated_at = $3 WHERE id = $1`,
				d.ID, d.Status, d.UpdatedAt,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListPayments returns recorded payments, newest first.
func (r *Repository) ListPayments(ctx context.Context, limit int) ([]PaymentRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT reference, amount, method, is_advance, paid_at
		FROM ledger_payments
		ORDER BY paid_at DESC, id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PaymentRecord
	for rows.Next() {
		var rec PaymentRecord
		if err := rows.Scan(&rec.Reference, &rec.Amount, &rec.Method, &rec.IsAdvance, &rec.PaidAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
