package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridianmar/meridian/internal/ledger"
	"github.com/meridianmar/meridian/internal/platform/db"
)

// Repository provides PostgreSQL backed persistence for billing documents
// and quotes.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// uq_payable_documents_kind_number backs number uniqueness per kind.
const uniqueNumberConstraint = "uq_payable_documents_kind_number"

// uniqueViolation reports whether err is a postgres unique violation on the
// named constraint. An empty name matches any unique violation.
func uniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// CreateDocument inserts a payable document row and returns its id.
func (r *Repository) CreateDocument(ctx context.Context, doc ledger.PayableDocument) (int64, error) {
	var dueDate pgtype.Date
	if !doc.DueDate.IsZero() {
		dueDate = pgtype.Date{Time: doc.DueDate, Valid: true}
	}
	var linkedRef pgtype.Text
	if doc.LinkedRef != "" {
		linkedRef = pgtype.Text{String: doc.LinkedRef, Valid: true}
	}

	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO payable_documents (
			number, kind, counterparty_id, linked_ref, issue_date, due_date,
			amount, paid, advance, issued, cancelled, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
		RETURNING id`,
		doc.Number, doc.Kind, doc.CounterpartyID, linkedRef, doc.IssueDate, dueDate,
		doc.Amount, doc.Paid, doc.Advance, doc.Issued, doc.Cancelled, doc.Status,
	).Scan(&id)
	if err != nil {
		if uniqueViolation(err, uniqueNumberConstraint) {
			return 0, ErrDuplicateNumber
		}
		return 0, err
	}
	return id, nil
}

// GetDocument loads one payable document.
func (r *Repository) GetDocument(ctx context.Context, id int64) (ledger.PayableDocument, error) {
	query := `
		SELECT d.id, d.number, d.kind, d.counterparty_id, c.name,
			d.linked_ref, d.issue_date, d.due_date,
			d.amount, d.paid, d.advance, d.issued, d.cancelled, d.status,
			d.created_at, d.updated_at
		FROM payable_documents d
		JOIN counterparties c ON c.id = d.counterparty_id
		WHERE d.id = $1`

	var doc ledger.PayableDocument
	var linkedRef pgtype.Text
	var dueDate pgtype.Date
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&doc.ID, &doc.Number, &doc.Kind, &doc.CounterpartyID, &doc.CounterpartyName,
		&linkedRef, &doc.IssueDate, &dueDate,
		&doc.Amount, &doc.Paid, &doc.Advance, &doc.Issued, &doc.Cancelled, &doc.Status,
		&doc.CreatedAt, &doc.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return ledger.PayableDocument{}, ErrNotFound
	}
	if err != nil {
		return ledger.PayableDocument{}, err
	}
	if linkedRef.Valid {
		doc.LinkedRef = linkedRef.String
	}
	if dueDate.Valid {
		doc.DueDate = dueDate.Time
	}
	return doc, nil
}

// SetIssued marks a document issued and persists its recomputed status.
func (r *Repository) SetIssued(ctx context.Context, id int64, status ledger.DocumentStatus) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE payable_documents SET issued = TRUE, status = $2, updated_at = NOW() WHERE id = $1`,
		id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetCancelled marks a document cancelled.
func (r *Repository) SetCancelled(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE payable_documents SET cancelled = TRUE, status = $2, updated_at = NOW() WHERE id = $1`,
		id, ledger.StatusCancelled)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// HasPayments reports whether any allocation references the document.
func (r *Repository) HasPayments(ctx context.Context, id int64) (bool, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM ledger_allocations WHERE document_id = $1`, id).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeleteDocument removes a document. The caller must have checked HasPayments;
// the query refuses paid-against rows as a second guard.
func (r *Repository) DeleteDocument(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM payable_documents
		WHERE id = $1
		  AND NOT EXISTS (SELECT 1 FROM ledger_allocations WHERE document_id = $1)`,
		id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrHasPayments
	}
	return nil
}

// GenerateNumber produces the next reference for a kind, e.g. FAC-2026-0142.
func (r *Repository) GenerateNumber(ctx context.Context, kind ledger.DocumentKind, year int) (string, error) {
	prefix, ok := numberPrefixes[kind]
	if !ok {
		return "", fmt.Errorf("billing: no number prefix for kind %q", kind)
	}
	var seq int64
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) + 1 FROM payable_documents
		WHERE kind = $1 AND EXTRACT(YEAR FROM issue_date) = $2`,
		kind, year).Scan(&seq)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%d-%04d", prefix, year, seq), nil
}

// --- Quotes ---

const quoteColumns = `id, number, client_id, quote_date, validity, total, status, invoice_id, created_at, updated_at`

func scanQuote(row pgx.Row) (Quote, error) {
	var q Quote
	var invoiceID pgtype.Int8
	err := row.Scan(&q.ID, &q.Number, &q.ClientID, &q.QuoteDate, &q.Validity,
		&q.Total, &q.Status, &invoiceID, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return Quote{}, err
	}
	if invoiceID.Valid {
		q.InvoiceID = &invoiceID.Int64
	}
	return q, nil
}

// CreateQuote inserts a quote.
func (r *Repository) CreateQuote(ctx context.Context, in CreateQuoteInput) (Quote, error) {
	q, err := scanQuote(r.pool.QueryRow(ctx, `
		INSERT INTO quotes (number, client_id, quote_date, validity, total, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING `+quoteColumns,
		in.Number, in.ClientID, in.QuoteDate, in.Validity, in.Total, QuoteDraft,
	))
	if err != nil {
		if uniqueViolation(err, "") {
			return Quote{}, ErrDuplicateNumber
		}
		return Quote{}, err
	}
	return q, nil
}

// GetQuote loads one quote.
func (r *Repository) GetQuote(ctx context.Context, id int64) (Quote, error) {
	q, err := scanQuote(r.pool.QueryRow(ctx, `SELECT `+quoteColumns+` FROM quotes WHERE id = $1`, id))
	if err == pgx.ErrNoRows {
		return Quote{}, ErrNotFound
	}
	return q, err
}

// ListQuotes returns quotes, newest first.
func (r *Repository) ListQuotes(ctx context.Context, status QuoteStatus) ([]Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY quote_date DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// UpdateQuoteStatus moves a quote between states.
func (r *Repository) UpdateQuoteStatus(ctx context.Context, id int64, status QuoteStatus) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE quotes SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ConvertQuote creates the invoice row and marks the quote converted in one
// transaction.
func (r *Repository) ConvertQuote(ctx context.Context, quoteID int64, doc ledger.PayableDocument) (int64, error) {
	var invoiceID int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var dueDate pgtype.Date
		if !doc.DueDate.IsZero() {
			dueDate = pgtype.Date{Time: doc.DueDate, Valid: true}
		}
		var linkedRef pgtype.Text
		if doc.LinkedRef != "" {
			linkedRef = pgtype.Text{String: doc.LinkedRef, Valid: true}
		}
		if err := tx.QueryRow(ctx, `
			INSERT INTO payable_documents (
				number, kind, counterparty_id, linked_ref, issue_date, due_date,
				amount, paid, advance, issued, cancelled, status, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, 0, 0, $8, FALSE, $9, NOW(), NOW())
			RETURNING id`,
			doc.Number, doc.Kind, doc.CounterpartyID, linkedRef, doc.IssueDate, dueDate,
			doc.Amount, doc.Issued, doc.Status,
		).Scan(&invoiceID); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `
			UPDATE quotes SET status = $2, invoice_id = $3, updated_at = NOW()
			WHERE id = $1 AND status <> $2`,
			quoteID, QuoteConverted, invoiceID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrAlreadyConverted
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return invoiceID, nil
}

// CountQuotesForYear supports quote number generation.
func (r *Repository) CountQuotesForYear(ctx context.Context, year int) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM quotes WHERE EXTRACT(YEAR FROM quote_date) = $1`, year).Scan(&count)
	return count, err
}
