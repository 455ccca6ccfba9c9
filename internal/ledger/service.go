package ledger

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// RepositoryPort defines data access methods for the ledger.
type RepositoryPort interface {
	ListDocuments(ctx context.Context, kind DocumentKind) ([]PayableDocument, error)
	// GetDocuments returns the documents for ids, preserving the ids order.
	// A missing id yields ErrUnknownDocument.
	GetDocuments(ctx context.Context, ids []int64) ([]PayableDocument, error)
	// SavePayment persists the payment, its allocations and the updated
	// documents in one transaction.
	SavePayment(ctx context.Context, rec PaymentRecord, docs []PayableDocument) error
	// ListPayments returns recorded payments, newest first.
	ListPayments(ctx context.Context, limit int) ([]PaymentRecord, error)
	ListOpenPastDue(ctx context.Context, asOf time.Time) ([]PayableDocument, error)
	UpdateStatuses(ctx context.Context, docs []PayableDocument) error
}

// AllocationInput records how much of a payment landed on one document.
type AllocationInput struct {
	DocumentID int64
	Amount     int64
}

// PaymentRecord is the persisted form of a Payment.
type PaymentRecord struct {
	Reference   string
	Amount      int64
	Method      PaymentMethod
	IsAdvance   bool
	PaidAt      time.Time
	Allocations []AllocationInput
}

// CashRecorder appends cash settlements to the treasury journal.
type CashRecorder interface {
	RecordCashIn(ctx context.Context, label string, amount int64, reference string, at time.Time) error
}

// Bumper invalidates cached document listings after a write.
type Bumper interface {
	Bump(ctx context.Context) error
}

// Service handles ledger business logic on top of the pure core.
type Service struct {
	repo   RepositoryPort
	policy AllocationPolicy
	cash   CashRecorder
	cache  Bumper
	logger *slog.Logger
	now    func() time.Time
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, policy AllocationPolicy) *Service {
	return &Service{repo: repo, policy: policy, now: time.Now}
}

// SetCashRecorder injects the treasury journal hook.
func (s *Service) SetCashRecorder(cash CashRecorder) { s.cash = cash }

// SetCacheBumper injects the listing cache invalidation hook.
func (s *Service) SetCacheBumper(cache Bumper) { s.cache = cache }

// SetLogger injects the logger used for post-commit side effect failures.
func (s *Service) SetLogger(logger *slog.Logger) { s.logger = logger }

// SetClock overrides the clock, for tests.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// ListDocuments returns documents of a kind filtered by the search term and
// status filter, in repository order.
func (s *Service) ListDocuments(ctx context.Context, kind DocumentKind, searchTerm, statusFilter string) ([]PayableDocument, error) {
	docs, err := s.repo.ListDocuments(ctx, kind)
	if err != nil {
		return nil, err
	}
	return Filter(docs, searchTerm, statusFilter), nil
}

// ListPayments returns recent payment records, newest first.
func (s *Service) ListPayments(ctx context.Context, limit int) ([]PaymentRecord, error) {
	return s.repo.ListPayments(ctx, limit)
}

// RegisterPayment applies a single payment to its one target document and
// persists the result atomically. Returns the updated document.
func (s *Service) RegisterPayment(ctx context.Context, p Payment) (PayableDocument, error) {
	if p.Amount <= 0 {
		return PayableDocument{}, ErrInvalidAmount
	}
	if len(p.TargetDocumentIDs) != 1 {
		return PayableDocument{}, ErrUnknownDocument
	}

	docs, err := s.repo.GetDocuments(ctx, p.TargetDocumentIDs)
	if err != nil {
		return PayableDocument{}, err
	}

	now := s.now()
	updated, err := ApplyPayment(docs[0], p, s.policy, now)
	if err != nil {
		return PayableDocument{}, err
	}

	rec := s.record(p, now, []AllocationInput{{DocumentID: updated.ID, Amount: p.Amount}})
	if err := s.repo.SavePayment(ctx, rec, []PayableDocument{updated}); err != nil {
		return PayableDocument{}, err
	}

	s.afterWrite(ctx, rec, updated.CounterpartyName)
	return updated, nil
}

// RegisterGroupPayment applies one payment across two or more documents of
// the same counterparty, allocating in target order, and persists the result
// atomically. Leftover is reported on the result, never credited.
func (s *Service) RegisterGroupPayment(ctx context.Context, p Payment) (GroupResult, error) {
	if p.Amount <= 0 {
		return GroupResult{}, ErrInvalidAmount
	}
	if len(p.TargetDocumentIDs) < 2 {
		return GroupResult{}, ErrInsufficientSelection
	}

	docs, err := s.repo.GetDocuments(ctx, p.TargetDocumentIDs)
	if err != nil {
		return GroupResult{}, err
	}

	now := s.now()
	result, err := ApplyGroupPayment(docs, p, s.policy, now)
	if err != nil {
		return GroupResult{}, err
	}

	allocations := make([]AllocationInput, 0, len(result.Documents))
	for _, d := range result.Documents {
		if amt := result.Allocated[d.ID]; amt > 0 {
			allocations = append(allocations, AllocationInput{DocumentID: d.ID, Amount: amt})
		}
	}

	rec := s.record(p, now, allocations)
	if err := s.repo.SavePayment(ctx, rec, result.Documents); err != nil {
		return GroupResult{}, err
	}

	s.afterWrite(ctx, rec, docs[0].CounterpartyName)
	return result, nil
}

// AgingBucket summarises outstanding balances by days past due.
type AgingBucket struct {
	Current   int64
	Bucket30  int64
	Bucket60  int64
	Bucket90  int64
	Bucket120 int64
}

// CalculateAging groups open invoice balances by due date buckets.
func (s *Service) CalculateAging(ctx context.Context, asOf time.Time) (AgingBucket, error) {
	if asOf.IsZero() {
		asOf = s.now()
	}
	docs, err := s.repo.ListDocuments(ctx, KindInvoice)
	if err != nil {
		return AgingBucket{}, err
	}
	var bucket AgingBucket
	for _, d := range docs {
		if d.Cancelled || d.Settled() || d.DueDate.IsZero() {
			continue
		}
		days := int(asOf.Sub(d.DueDate).Hours() / 24)
		switch {
		case days <= 0:
			bucket.Current += d.Remaining()
		case days <= 30:
			bucket.Bucket30 += d.Remaining()
		case days <= 60:
			bucket.Bucket60 += d.Remaining()
		case days <= 90:
			bucket.Bucket90 += d.Remaining()
		default:
			bucket.Bucket120 += d.Remaining()
		}
	}
	return bucket, nil
}

// RefreshOverdue rederives statuses for open documents past their due date
// and persists the transitions. Idempotent. Returns how many documents moved.
func (s *Service) RefreshOverdue(ctx context.Context, asOf time.Time) (int, error) {
	if asOf.IsZero() {
		asOf = s.now()
	}
	docs, err := s.repo.ListOpenPastDue(ctx, asOf)
	if err != nil {
		return 0, err
	}
	var changed []PayableDocument
	for _, d := range docs {
		next := Restatus(d, asOf)
		if next.Status != d.Status {
			next.UpdatedAt = asOf
			changed = append(changed, next)
		}
	}
	if len(changed) == 0 {
		return 0, nil
	}
	if err := s.repo.UpdateStatuses(ctx, changed); err != nil {
		return 0, err
	}
	if s.cache != nil {
		_ = s.cache.Bump(ctx)
	}
	return len(changed), nil
}

func (s *Service) record(p Payment, now time.Time, allocations []AllocationInput) PaymentRecord {
	ref := p.Reference
	if ref == "" {
		ref = uuid.NewString()
	}
	paidAt := p.PaidAt
	if paidAt.IsZero() {
		paidAt = now
	}
	return PaymentRecord{
		Reference:   ref,
		Amount:      p.Amount,
		Method:      p.Method,
		IsAdvance:   p.IsAdvance,
		PaidAt:      paidAt,
		Allocations: allocations,
	}
}

func (s *Service) afterWrite(ctx context.Context, rec PaymentRecord, counterparty string) {
	if s.cash != nil && rec.Method == MethodCash {
		// The payment is already committed; a journal failure must leave a
		// trace so the entry can be re-entered by hand.
		if err := s.cash.RecordCashIn(ctx, "Encaissement "+counterparty, rec.Amount, rec.Reference, rec.PaidAt); err != nil {
			s.log().Error("record cash entry",
				slog.Any("error", err),
				slog.String("reference", rec.Reference),
				slog.Int64("amount", rec.Amount))
		}
	}
	if s.cache != nil {
		_ = s.cache.Bump(ctx)
	}
}

func (s *Service) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}
