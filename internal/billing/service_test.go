package billing

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meridianmar/meridian/internal/ledger"
)

var billNow = time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

type memoryBillingRepo struct {
	docs       map[int64]ledger.PayableDocument
	quotes     map[int64]Quote
	paid       map[int64]bool
	nextDocID  int64
	nextQuote  int64
	docCounts  map[ledger.DocumentKind]int64
	quoteCount int64
}

func newMemoryBillingRepo() *memoryBillingRepo {
	return &memoryBillingRepo{
		docs:      make(map[int64]ledger.PayableDocument),
		quotes:    make(map[int64]Quote),
		paid:      make(map[int64]bool),
		docCounts: make(map[ledger.DocumentKind]int64),
	}
}

func (m *memoryBillingRepo) CreateDocument(_ context.Context, doc ledger.PayableDocument) (int64, error) {
	for _, existing := range m.docs {
		if existing.Kind == doc.Kind && existing.Number == doc.Number {
			return 0, ErrDuplicateNumber
		}
	}
	m.nextDocID++
	doc.ID = m.nextDocID
	m.docs[doc.ID] = doc
	return doc.ID, nil
}

func (m *memoryBillingRepo) GetDocument(_ context.Context, id int64) (ledger.PayableDocument, error) {
	doc, ok := m.docs[id]
	if !ok {
		return ledger.PayableDocument{}, ErrNotFound
	}
	return doc, nil
}

func (m *memoryBillingRepo) SetIssued(_ context.Context, id int64, status ledger.DocumentStatus) error {
	doc, ok := m.docs[id]
	if !ok {
		return ErrNotFound
	}
	doc.Issued = true
	doc.Status = status
	m.docs[id] = doc
	return nil
}

func (m *memoryBillingRepo) SetCancelled(_ context.Context, id int64) error {
	doc, ok := m.docs[id]
	if !ok {
		return ErrNotFound
	}
	doc.Cancelled = true
	doc.Status = ledger.StatusCancelled
	m.docs[id] = doc
	return nil
}

func (m *memoryBillingRepo) HasPayments(_ context.Context, id int64) (bool, error) {
	return m.paid[id], nil
}

func (m *memoryBillingRepo) DeleteDocument(_ context.Context, id int64) error {
	if m.paid[id] {
		return ErrHasPayments
	}
	delete(m.docs, id)
	return nil
}

func (m *memoryBillingRepo) GenerateNumber(_ context.Context, kind ledger.DocumentKind, year int) (string, error) {
	m.docCounts[kind]++
	return fmt.Sprintf("%s-%d-%04d", numberPrefixes[kind], year, m.docCounts[kind]), nil
}

func (m *memoryBillingRepo) CreateQuote(_ context.Context, in CreateQuoteInput) (Quote, error) {
	m.nextQuote++
	m.quoteCount++
	q := Quote{
		ID:        m.nextQuote,
		Number:    in.Number,
		ClientID:  in.ClientID,
		QuoteDate: in.QuoteDate,
		Validity:  in.Validity,
		Total:     in.Total,
		Status:    QuoteDraft,
	}
	m.quotes[q.ID] = q
	return q, nil
}

func (m *memoryBillingRepo) GetQuote(_ context.Context, id int64) (Quote, error) {
	q, ok := m.quotes[id]
	if !ok {
		return Quote{}, ErrNotFound
	}
	return q, nil
}

func (m *memoryBillingRepo) ListQuotes(_ context.Context, status QuoteStatus) ([]Quote, error) {
	out := make([]Quote, 0, len(m.quotes))
	for _, q := range m.quotes {
		if status == "" || q.Status == status {
			out = append(out, q)
		}
	}
	return out, nil
}

func (m *memoryBillingRepo) UpdateQuoteStatus(_ context.Context, id int64, status QuoteStatus) error {
	q, ok := m.quotes[id]
	if !ok {
		return ErrNotFound
	}
	q.Status = status
	m.quotes[id] = q
	return nil
}

func (m *memoryBillingRepo) ConvertQuote(_ context.Context, quoteID int64, doc ledger.PayableDocument) (int64, error) {
	q, ok := m.quotes[quoteID]
	if !ok {
		return 0, ErrNotFound
	}
	if q.Status == QuoteConverted {
		return 0, ErrAlreadyConverted
	}
	id, err := m.CreateDocument(context.Background(), doc)
	if err != nil {
		return 0, err
	}
	q.Status = QuoteConverted
	q.InvoiceID = &id
	m.quotes[quoteID] = q
	return id, nil
}

func (m *memoryBillingRepo) CountQuotesForYear(_ context.Context, _ int) (int64, error) {
	return m.quoteCount, nil
}

type countingBillingBumper struct{ bumps int }

func (c *countingBillingBumper) Bump(context.Context) error {
	c.bumps++
	return nil
}

func newBillingService(repo *memoryBillingRepo) (*Service, *countingBillingBumper) {
	svc := NewService(repo)
	svc.SetClock(func() time.Time { return billNow })
	bumper := &countingBillingBumper{}
	svc.SetCacheBumper(bumper)
	return svc, bumper
}

func TestCreateInvoiceDefaults(t *testing.T) {
	repo := newMemoryBillingRepo()
	svc, bumper := newBillingService(repo)

	doc, err := svc.CreateInvoice(context.Background(), CreateInvoiceInput{
		ClientID: 7,
		TotalTTC: 1_500_000,
	})
	require.NoError(t, err)
	require.Equal(t, "FAC-2026-0001", doc.Number)
	require.Equal(t, ledger.KindInvoice, doc.Kind)
	require.Equal(t, ledger.StatusDraft, doc.Status)
	require.Equal(t, billNow.AddDate(0, 0, 30), doc.DueDate)
	require.Equal(t, int64(1_500_000), doc.Amount)
	require.Zero(t, doc.Paid)
	require.Zero(t, doc.Advance)
	require.Equal(t, 1, bumper.bumps)
}

func TestCreateInvoiceRejectsBadInput(t *testing.T) {
	repo := newMemoryBillingRepo()
	svc, _ := newBillingService(repo)

	_, err := svc.CreateInvoice(context.Background(), CreateInvoiceInput{TotalTTC: 100})
	require.Error(t, err)

	_, err = svc.CreateInvoice(context.Background(), CreateInvoiceInput{ClientID: 7, TotalTTC: -100})
	require.Error(t, err)
}

func TestCreateCreditNoteLinksSourceInvoice(t *testing.T) {
	repo := newMemoryBillingRepo()
	svc, _ := newBillingService(repo)

	doc, err := svc.CreateCreditNote(context.Background(), CreateCreditNoteInput{
		ClientID:      3,
		SourceInvoice: "FAC-2026-0042",
		Total:         250_000,
	})
	require.NoError(t, err)
	require.Equal(t, ledger.KindCreditNote, doc.Kind)
	require.Equal(t, "AVR-2026-0001", doc.Number)
	require.Equal(t, "FAC-2026-0042", doc.LinkedRef)
}

func TestCreateStartNote(t *testing.T) {
	repo := newMemoryBillingRepo()
	svc, _ := newBillingService(repo)

	doc, err := svc.CreateStartNote(context.Background(), CreateStartNoteInput{
		ClientID:      9,
		OperationRef:  "OP-2026-018",
		EstimateTotal: 4_000_000,
	})
	require.NoError(t, err)
	require.Equal(t, ledger.KindStartNote, doc.Kind)
	require.Equal(t, "NDD-2026-0001", doc.Number)
	require.Equal(t, "OP-2026-018", doc.LinkedRef)
}

func TestIssueDocument(t *testing.T) {
	repo := newMemoryBillingRepo()
	svc, _ := newBillingService(repo)

	doc, err := svc.CreateInvoice(context.Background(), CreateInvoiceInput{ClientID: 1, TotalTTC: 500_000})
	require.NoError(t, err)
	require.Equal(t, ledger.StatusDraft, doc.Status)

	issued, err := svc.IssueDocument(context.Background(), doc.ID)
	require.NoError(t, err)
	require.True(t, issued.Issued)
	require.Equal(t, ledger.StatusPending, issued.Status)

	_, err = svc.IssueDocument(context.Background(), doc.ID)
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestCancelDocumentRefusesSettled(t *testing.T) {
	repo := newMemoryBillingRepo()
	svc, _ := newBillingService(repo)

	doc, err := svc.CreateInvoice(context.Background(), CreateInvoiceInput{ClientID: 1, TotalTTC: 500_000})
	require.NoError(t, err)

	settled := repo.docs[doc.ID]
	settled.Paid = settled.Amount
	repo.docs[doc.ID] = settled

	require.ErrorIs(t, svc.CancelDocument(context.Background(), doc.ID), ErrInvalidStatus)
}

func TestCancelDocument(t *testing.T) {
	repo := newMemoryBillingRepo()
	svc, _ := newBillingService(repo)

	doc, err := svc.CreateInvoice(context.Background(), CreateInvoiceInput{ClientID: 1, TotalTTC: 500_000})
	require.NoError(t, err)

	require.NoError(t, svc.CancelDocument(context.Background(), doc.ID))
	got, err := svc.GetDocument(context.Background(), doc.ID)
	require.NoError(t, err)
	require.True(t, got.Cancelled)
	require.Equal(t, ledger.StatusCancelled, got.Status)

	require.ErrorIs(t, svc.CancelDocument(context.Background(), doc.ID), ErrInvalidStatus)
}

func TestDeleteDocumentGuardedByPayments(t *testing.T) {
	repo := newMemoryBillingRepo()
	svc, _ := newBillingService(repo)

	doc, err := svc.CreateInvoice(context.Background(), CreateInvoiceInput{ClientID: 1, TotalTTC: 500_000})
	require.NoError(t, err)

	repo.paid[doc.ID] = true
	require.ErrorIs(t, svc.DeleteDocument(context.Background(), doc.ID), ErrHasPayments)

	repo.paid[doc.ID] = false
	require.NoError(t, svc.DeleteDocument(context.Background(), doc.ID))
	_, err = svc.GetDocument(context.Background(), doc.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCreateQuoteGeneratesNumber(t *testing.T) {
	repo := newMemoryBillingRepo()
	svc, _ := newBillingService(repo)

	q, err := svc.CreateQuote(context.Background(), CreateQuoteInput{ClientID: 5, Total: 900_000})
	require.NoError(t, err)
	require.Equal(t, "DEV-2026-0001", q.Number)
	require.Equal(t, QuoteDraft, q.Status)
	require.Equal(t, billNow.AddDate(0, 1, 0), q.Validity)
}

func TestMarkQuoteSent(t *testing.T) {
	repo := newMemoryBillingRepo()
	svc, _ := newBillingService(repo)

	q, err := svc.CreateQuote(context.Background(), CreateQuoteInput{ClientID: 5, Total: 900_000})
	require.NoError(t, err)

	require.NoError(t, svc.MarkQuoteSent(context.Background(), q.ID))
	require.ErrorIs(t, svc.MarkQuoteSent(context.Background(), q.ID), ErrInvalidStatus)
}

func TestConvertQuoteToInvoice(t *testing.T) {
	repo := newMemoryBillingRepo()
	svc, bumper := newBillingService(repo)

	q, err := svc.CreateQuote(context.Background(), CreateQuoteInput{ClientID: 5, Total: 900_000})
	require.NoError(t, err)

	doc, err := svc.ConvertQuoteToInvoice(context.Background(), q.ID)
	require.NoError(t, err)
	require.Equal(t, ledger.KindInvoice, doc.Kind)
	require.Equal(t, q.Number, doc.LinkedRef)
	require.Equal(t, int64(900_000), doc.Amount)
	require.Equal(t, "FAC-2026-0001", doc.Number)

	stored := repo.quotes[q.ID]
	require.Equal(t, QuoteConverted, stored.Status)
	require.NotNil(t, stored.InvoiceID)
	require.Equal(t, doc.ID, *stored.InvoiceID)
	require.Positive(t, bumper.bumps)

	_, err = svc.ConvertQuoteToInvoice(context.Background(), q.ID)
	require.ErrorIs(t, err, ErrAlreadyConverted)
}
