package ledger

import "time"

// DeriveStatus computes a document's status from its amounts, due date and
// flags at the given instant. Pure: the clock is an explicit input so the
// function is testable at fixed dates. Precedence, first match wins:
// cancelled, paid, advance, partial, overdue, then pending or draft.
func DeriveStatus(doc PayableDocument, now time.Time) DocumentStatus {
	switch {
	case doc.Cancelled:
		return StatusCancelled
	case doc.Settled():
		return StatusPaid
	case doc.Advance > 0 && doc.Paid == 0:
		return StatusAdvance
	case doc.Paid > 0 && doc.Paid+doc.Advance < doc.Amount:
		return StatusPartial
	case !doc.DueDate.IsZero() && doc.DueDate.Before(now) && doc.Paid+doc.Advance < doc.Amount:
		return StatusOverdue
	case !doc.Issued:
		return StatusDraft
	default:
		return StatusPending
	}
}

// Restatus returns a copy of doc with Status recomputed at now.
func Restatus(doc PayableDocument, now time.Time) PayableDocument {
	doc.Status = DeriveStatus(doc, now)
	return doc
}
