package ledger

import (
	"time"
)

// DocumentKind tags the payable document variants.
type DocumentKind string

const (
	KindInvoice    DocumentKind = "invoice"
	KindCreditNote DocumentKind = "credit_note"
	KindStartNote  DocumentKind = "start_note"
)

// DocumentStatus enumerates payable document statuses.
type DocumentStatus string

const (
	StatusDraft     DocumentStatus = "draft"
	StatusPending   DocumentStatus = "pending"
	StatusPartial   DocumentStatus = "partial"
	StatusAdvance   DocumentStatus = "advance"
	StatusPaid      DocumentStatus = "paid"
	StatusOverdue   DocumentStatus = "overdue"
	StatusCancelled DocumentStatus = "cancelled"
)

// StatusFilterAll is the sentinel accepted by Matches instead of an exact status.
const StatusFilterAll = "all"

// PaymentMethod enumerates settlement channels.
type PaymentMethod string

const (
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodCash         PaymentMethod = "cash"
	MethodCheck        PaymentMethod = "check"
	MethodCompensation PaymentMethod = "compensation"
	MethodOther        PaymentMethod = "other"
)

// PayableDocument is the uniform shape shared by invoices, credit notes and
// start-of-operation notes. Amounts are whole FCFA.
type PayableDocument struct {
	ID               int64
	Number           string
	Kind             DocumentKind
	CounterpartyID   int64
	CounterpartyName string
	// LinkedRef carries a secondary reference, e.g. the source invoice
	// number on a credit note or the operation file on a start note.
	LinkedRef string
	IssueDate time.Time
	// DueDate is set for invoices only; zero otherwise.
	DueDate   time.Time
	Amount    int64
	Paid      int64
	Advance   int64
	Issued    bool
	Cancelled bool
	Status    DocumentStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Remaining returns the outstanding balance. Invariant: never negative after
// a valid mutation.
func (d PayableDocument) Remaining() int64 {
	return d.Amount - d.Paid - d.Advance
}

// Settled reports whether the document is fully covered by payments and advances.
func (d PayableDocument) Settled() bool {
	return d.Amount > 0 && d.Paid+d.Advance >= d.Amount
}

// Payment describes one settlement to apply against one or more documents of
// a single counterparty.
type Payment struct {
	Amount    int64
	Method    PaymentMethod
	IsAdvance bool
	Reference string
	PaidAt    time.Time
	// TargetDocumentIDs is ordered; allocation follows this order for group
	// payments. One entry for a single payment, two or more for a group one.
	TargetDocumentIDs []int64
}

// AllocationPolicy makes the overpayment rule explicit instead of replicating
// the legacy screens' silent acceptance.
type AllocationPolicy struct {
	RejectOverpayment bool
}

// DefaultPolicy refuses payments that would push paid+advance past amount,
// and group payments exceeding the group's total remaining.
var DefaultPolicy = AllocationPolicy{RejectOverpayment: true}

// GroupResult is the outcome of a group payment application.
type GroupResult struct {
	Documents []PayableDocument
	// Allocated maps document ID to the share of the payment it absorbed.
	Allocated map[int64]int64
	// Unallocated is the leftover after every document was settled. It is
	// reported so callers can surface it; it is never credited anywhere.
	Unallocated int64
}
