package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/meridianmar/meridian/internal/ledger"
)

// RepositoryPort defines data access methods for billing.
type RepositoryPort interface {
	CreateDocument(ctx context.Context, doc ledger.PayableDocument) (int64, error)
	GetDocument(ctx context.Context, id int64) (ledger.PayableDocument, error)
	SetIssued(ctx context.Context, id int64, status ledger.DocumentStatus) error
	SetCancelled(ctx context.Context, id int64) error
	HasPayments(ctx context.Context, id int64) (bool, error)
	DeleteDocument(ctx context.Context, id int64) error
	GenerateNumber(ctx context.Context, kind ledger.DocumentKind, year int) (string, error)

	CreateQuote(ctx context.Context, in CreateQuoteInput) (Quote, error)
	GetQuote(ctx context.Context, id int64) (Quote, error)
	ListQuotes(ctx context.Context, status QuoteStatus) ([]Quote, error)
	UpdateQuoteStatus(ctx context.Context, id int64, status QuoteStatus) error
	ConvertQuote(ctx context.Context, quoteID int64, doc ledger.PayableDocument) (int64, error)
	CountQuotesForYear(ctx context.Context, year int) (int64, error)
}

// Service handles billing business logic.
type Service struct {
	repo  RepositoryPort
	cache ledger.Bumper
	now   func() time.Time
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, now: time.Now}
}

// SetCacheBumper injects the ledger listing cache invalidation hook.
func (s *Service) SetCacheBumper(cache ledger.Bumper) { s.cache = cache }

// SetClock overrides the clock, for tests.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// CreateInvoice records a draft invoice and returns its normalized shape.
func (s *Service) CreateInvoice(ctx context.Context, in CreateInvoiceInput) (ledger.PayableDocument, error) {
	if in.ClientID == 0 {
		return ledger.PayableDocument{}, errors.New("billing: client ID required")
	}
	if in.TotalTTC <= 0 {
		return ledger.PayableDocument{}, errors.New("billing: total must be positive")
	}
	now := s.now()
	if in.InvoiceDate.IsZero() {
		in.InvoiceDate = now
	}
	if in.DueDate.IsZero() {
		in.DueDate = in.InvoiceDate.AddDate(0, 0, 30)
	}
	if in.Number == "" {
		num, err := s.repo.GenerateNumber(ctx, ledger.KindInvoice, in.InvoiceDate.Year())
		if err != nil {
			return ledger.PayableDocument{}, err
		}
		in.Number = num
	}

	doc := ledger.Normalize(ledger.InvoiceRecord{
		Number:      in.Number,
		ClientID:    in.ClientID,
		InvoiceDate: in.InvoiceDate,
		DueDate:     in.DueDate,
		TotalTTC:    in.TotalTTC,
	}, now)

	return s.persist(ctx, doc)
}

// CreateCreditNote records a draft credit note.
func (s *Service) CreateCreditNote(ctx context.Context, in CreateCreditNoteInput) (ledger.PayableDocument, error) {
	if in.ClientID == 0 {
		return ledger.PayableDocument{}, errors.New("billing: client ID required")
	}
	if in.Total <= 0 {
		return ledger.PayableDocument{}, errors.New("billing: total must be positive")
	}
	now := s.now()
	if in.IssuedOn.IsZero() {
		in.IssuedOn = now
	}
	if in.Reference == "" {
		num, err := s.repo.GenerateNumber(ctx, ledger.KindCreditNote, in.IssuedOn.Year())
		if err != nil {
			return ledger.PayableDocument{}, err
		}
		in.Reference = num
	}

	doc := ledger.Normalize(ledger.CreditNoteRecord{
		Reference:     in.Reference,
		ClientID:      in.ClientID,
		SourceInvoice: in.SourceInvoice,
		IssuedOn:      in.IssuedOn,
		Total:         in.Total,
	}, now)

	return s.persist(ctx, doc)
}

// CreateStartNote records a draft note de début.
func (s *Service) CreateStartNote(ctx context.Context, in CreateStartNoteInput) (ledger.PayableDocument, error) {
	if in.ClientID == 0 {
		return ledger.PayableDocument{}, errors.New("billing: client ID required")
	}
	if in.EstimateTotal <= 0 {
		return ledger.PayableDocument{}, errors.New("billing: estimate total must be positive")
	}
	now := s.now()
	if in.OpenedOn.IsZero() {
		in.OpenedOn = now
	}
	if in.NoteNumber == "" {
		num, err := s.repo.GenerateNumber(ctx, ledger.KindStartNote, in.OpenedOn.Year())
		if err != nil {
			return ledger.PayableDocument{}, err
		}
		in.NoteNumber = num
	}

	doc := ledger.Normalize(ledger.StartNoteRecord{
		NoteNumber:    in.NoteNumber,
		ClientID:      in.ClientID,
		OperationRef:  in.OperationRef,
		OpenedOn:      in.OpenedOn,
		EstimateTotal: in.EstimateTotal,
	}, now)

	return s.persist(ctx, doc)
}

func (s *Service) persist(ctx context.Context, doc ledger.PayableDocument) (ledger.PayableDocument, error) {
	id, err := s.repo.CreateDocument(ctx, doc)
	if err != nil {
		return ledger.PayableDocument{}, err
	}
	doc.ID = id
	s.bump(ctx)
	return doc, nil
}

// IssueDocument moves a draft document into circulation.
func (s *Service) IssueDocument(ctx context.Context, id int64) (ledger.PayableDocument, error) {
	doc, err := s.repo.GetDocument(ctx, id)
	if err != nil {
		return ledger.PayableDocument{}, err
	}
	if doc.Cancelled {
		return ledger.PayableDocument{}, ErrInvalidStatus
	}
	if doc.Issued {
		return ledger.PayableDocument{}, ErrInvalidStatus
	}
	doc.Issued = true
	doc = ledger.Restatus(doc, s.now())
	if err := s.repo.SetIssued(ctx, id, doc.Status); err != nil {
		return ledger.PayableDocument{}, err
	}
	s.bump(ctx)
	return doc, nil
}

// CancelDocument cancels a document unless it is already fully settled.
func (s *Service) CancelDocument(ctx context.Context, id int64) error {
	doc, err := s.repo.GetDocument(ctx, id)
	if err != nil {
		return err
	}
	if doc.Settled() || doc.Cancelled {
		return ErrInvalidStatus
	}
	if err := s.repo.SetCancelled(ctx, id); err != nil {
		return err
	}
	s.bump(ctx)
	return nil
}

// DeleteDocument removes a document. Forbidden once any payment exists
// against it.
func (s *Service) DeleteDocument(ctx context.Context, id int64) error {
	if _, err := s.repo.GetDocument(ctx, id); err != nil {
		return err
	}
	hasPayments, err := s.repo.HasPayments(ctx, id)
	if err != nil {
		return err
	}
	if hasPayments {
		return ErrHasPayments
	}
	if err := s.repo.DeleteDocument(ctx, id); err != nil {
		return err
	}
	s.bump(ctx)
	return nil
}

// GetDocument returns one document.
func (s *Service) GetDocument(ctx context.Context, id int64) (ledger.PayableDocument, error) {
	return s.repo.GetDocument(ctx, id)
}

// CreateQuote records a new quote.
func (s *Service) CreateQuote(ctx context.Context, in CreateQuoteInput) (Quote, error) {
	if in.ClientID == 0 {
		return Quote{}, errors.New("billing: client ID required")
	}
	if in.Total <= 0 {
		return Quote{}, errors.New("billing: total must be positive")
	}
	now := s.now()
	if in.QuoteDate.IsZero() {
		in.QuoteDate = now
	}
	if in.Validity.IsZero() {
		in.Validity = in.QuoteDate.AddDate(0, 1, 0)
	}
	if in.Number == "" {
		count, err := s.repo.CountQuotesForYear(ctx, in.QuoteDate.Year())
		if err != nil {
			return Quote{}, err
		}
		in.Number = fmt.Sprintf("%s-%d-%04d", quotePrefix, in.QuoteDate.Year(), count+1)
	}
	return s.repo.CreateQuote(ctx, in)
}

// ListQuotes returns quotes, optionally limited to one status.
func (s *Service) ListQuotes(ctx context.Context, status QuoteStatus) ([]Quote, error) {
	return s.repo.ListQuotes(ctx, status)
}

// MarkQuoteSent moves a draft quote to sent.
func (s *Service) MarkQuoteSent(ctx context.Context, id int64) error {
	q, err := s.repo.GetQuote(ctx, id)
	if err != nil {
		return err
	}
	if q.Status != QuoteDraft {
		return ErrInvalidStatus
	}
	return s.repo.UpdateQuoteStatus(ctx, id, QuoteSent)
}

// ConvertQuoteToInvoice creates an invoice carrying the quote's total and a
// reference back to the quote number.
func (s *Service) ConvertQuoteToInvoice(ctx context.Context, quoteID int64) (ledger.PayableDocument, error) {
	q, err := s.repo.GetQuote(ctx, quoteID)
	if err != nil {
		return ledger.PayableDocument{}, err
	}
	if q.Status == QuoteConverted {
		return ledger.PayableDocument{}, ErrAlreadyConverted
	}
	if q.Status == QuoteDeclined {
		return ledger.PayableDocument{}, ErrInvalidStatus
	}

	now := s.now()
	number, err := s.repo.GenerateNumber(ctx, ledger.KindInvoice, now.Year())
	if err != nil {
		return ledger.PayableDocument{}, err
	}

	doc := ledger.Normalize(ledger.InvoiceRecord{
		Number:      number,
		ClientID:    q.ClientID,
		InvoiceDate: now,
		DueDate:     now.AddDate(0, 0, 30),
		TotalTTC:    q.Total,
	}, now)
	doc.LinkedRef = q.Number

	id, err := s.repo.ConvertQuote(ctx, quoteID, doc)
	if err != nil {
		return ledger.PayableDocument{}, err
	}
	doc.ID = id
	s.bump(ctx)
	return doc, nil
}

func (s *Service) bump(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Bump(ctx)
	}
}
