package ledger

import "errors"

// Validation failures surfaced by the ledger core. All are deterministic
// input errors; none warrant a retry.
var (
	// ErrInvalidAmount indicates a zero or negative payment amount.
	ErrInvalidAmount = errors.New("ledger: payment amount must be positive")
	// ErrInsufficientSelection indicates a group payment with fewer than two targets.
	ErrInsufficientSelection = errors.New("ledger: group payment requires at least two documents")
	// ErrMixedCounterparty indicates group targets spanning more than one counterparty.
	ErrMixedCounterparty = errors.New("ledger: group payment documents must share one counterparty")
	// ErrUnknownDocument indicates a target id absent from the supplied collection.
	ErrUnknownDocument = errors.New("ledger: unknown document")
	// ErrOverpayment indicates a payment exceeding the remaining balance under
	// a rejecting policy.
	ErrOverpayment = errors.New("ledger: payment exceeds remaining balance")
	// ErrDocumentClosed indicates a payment against a cancelled document.
	ErrDocumentClosed = errors.New("ledger: document is cancelled")
)
