package billing

import (
	"errors"
	"time"

	"github.com/meridianmar/meridian/internal/ledger"
)

var (
	// ErrNotFound indicates a missing document or quote.
	ErrNotFound = errors.New("billing: not found")
	// ErrDuplicateNumber indicates a document number already in use for its kind.
	ErrDuplicateNumber = errors.New("billing: duplicate document number")
	// ErrHasPayments forbids deleting a document once a payment exists against it.
	ErrHasPayments = errors.New("billing: document has payments recorded")
	// ErrInvalidStatus indicates an operation not allowed in the current state.
	ErrInvalidStatus = errors.New("billing: invalid status for operation")
	// ErrAlreadyConverted indicates a quote that already produced an invoice.
	ErrAlreadyConverted = errors.New("billing: quote already converted")
)

// CreateInvoiceInput describes a new client invoice.
type CreateInvoiceInput struct {
	Number      string
	ClientID    int64
	InvoiceDate time.Time
	DueDate     time.Time
	TotalTTC    int64
}

// CreateCreditNoteInput describes a new credit note against an invoice.
type CreateCreditNoteInput struct {
	Reference     string
	ClientID      int64
	SourceInvoice string
	IssuedOn      time.Time
	Total         int64
}

// CreateStartNoteInput describes a new note de début opening an operation file.
type CreateStartNoteInput struct {
	NoteNumber    string
	ClientID      int64
	OperationRef  string
	OpenedOn      time.Time
	EstimateTotal int64
}

// QuoteStatus enumerates quote states.
type QuoteStatus string

const (
	QuoteDraft     QuoteStatus = "draft"
	QuoteSent      QuoteStatus = "sent"
	QuoteAccepted  QuoteStatus = "accepted"
	QuoteConverted QuoteStatus = "converted"
	QuoteDeclined  QuoteStatus = "declined"
)

// Quote is a commercial proposal; it never enters the payable ledger until
// converted into an invoice.
type Quote struct {
	ID        int64
	Number    string
	ClientID  int64
	QuoteDate time.Time
	Validity  time.Time
	Total     int64
	Status    QuoteStatus
	// InvoiceID links the invoice produced by conversion, when any.
	InvoiceID *int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateQuoteInput describes a new quote.
type CreateQuoteInput struct {
	Number    string
	ClientID  int64
	QuoteDate time.Time
	Validity  time.Time
	Total     int64
}

// numberPrefixes maps a document kind to its reference prefix.
var numberPrefixes = map[ledger.DocumentKind]string{
	ledger.KindInvoice:    "FAC",
	ledger.KindCreditNote: "AVR",
	ledger.KindStartNote:  "NDD",
}

const quotePrefix = "DEV"
