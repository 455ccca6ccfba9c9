package ledger

import "time"

// ApplyPayment applies one payment to one document and returns the updated
// copy with its status recomputed at now. The caller's value is never
// mutated. Advance payments accrue on Advance, everything else on Paid.
func ApplyPayment(doc PayableDocument, p Payment, policy AllocationPolicy, now time.Time) (PayableDocument, error) {
	if p.Amount <= 0 {
		return doc, ErrInvalidAmount
	}
	if doc.Cancelled {
		return doc, ErrDocumentClosed
	}
	if policy.RejectOverpayment && p.Amount > doc.Remaining() {
		return doc, ErrOverpayment
	}

	if p.IsAdvance {
		doc.Advance += p.Amount
	} else {
		doc.Paid += p.Amount
	}
	doc.UpdatedAt = now
	return Restatus(doc, now), nil
}

// ApplyGroupPayment allocates one payment across several documents of the
// same counterparty, in input order, fully settling each document's
// remaining balance before moving to the next. All-or-nothing: on any error
// the input slice is untouched and no partial result is returned. Under a
// rejecting policy a payment exceeding the group's total remaining fails
// with ErrOverpayment; otherwise the leftover is reported in
// GroupResult.Unallocated, never credited.
func ApplyGroupPayment(docs []PayableDocument, p Payment, policy AllocationPolicy, now time.Time) (GroupResult, error) {
	if p.Amount <= 0 {
		return GroupResult{}, ErrInvalidAmount
	}
	if len(docs) < 2 {
		return GroupResult{}, ErrInsufficientSelection
	}
	counterparty := docs[0].CounterpartyID
	for _, d := range docs {
		if d.CounterpartyID != counterparty {
			return GroupResult{}, ErrMixedCounterparty
		}
		if d.Cancelled {
			return GroupResult{}, ErrDocumentClosed
		}
	}

	result := GroupResult{
		Documents: make([]PayableDocument, len(docs)),
		Allocated: make(map[int64]int64, len(docs)),
	}
	remaining := p.Amount
	for i, d := range docs {
		updated := d
		if remaining > 0 {
			share := updated.Remaining()
			if share > remaining {
				share = remaining
			}
			if share > 0 {
				if p.IsAdvance {
					updated.Advance += share
				} else {
					updated.Paid += share
				}
				updated.UpdatedAt = now
				remaining -= share
				result.Allocated[updated.ID] = share
			}
		}
		result.Documents[i] = Restatus(updated, now)
	}
	if remaining > 0 && policy.RejectOverpayment {
		return GroupResult{}, ErrOverpayment
	}
	result.Unallocated = remaining
	return result, nil
}
