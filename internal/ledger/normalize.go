package ledger

import "time"

// SourceRecord is implemented by the billing records that feed the ledger.
// Each kind carries its own field names; Normalize maps them to the uniform
// PayableDocument shape.
type SourceRecord interface {
	normalize() PayableDocument
}

// InvoiceRecord mirrors a billing invoice row.
type InvoiceRecord struct {
	ID          int64
	Number      string
	ClientID    int64
	ClientName  string
	InvoiceDate time.Time
	DueDate     time.Time
	TotalTTC    int64
	AmountPaid  int64
	AdvancePaid int64
	Sent        bool
	Cancelled   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (r InvoiceRecord) normalize() PayableDocument {
	return PayableDocument{
		ID:               r.ID,
		Number:           r.Number,
		Kind:             KindInvoice,
		CounterpartyID:   r.ClientID,
		CounterpartyName: r.ClientName,
		IssueDate:        r.InvoiceDate,
		DueDate:          r.DueDate,
		Amount:           r.TotalTTC,
		Paid:             r.AmountPaid,
		Advance:          r.AdvancePaid,
		Issued:           r.Sent,
		Cancelled:        r.Cancelled,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

// CreditNoteRecord mirrors a billing credit note ("avoir") row.
type CreditNoteRecord struct {
	ID            int64
	Reference     string
	ClientID      int64
	ClientName    string
	SourceInvoice string
	IssuedOn      time.Time
	Total         int64
	Settled       int64
	AdvanceTotal  int64
	Issued        bool
	Cancelled     bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (r CreditNoteRecord) normalize() PayableDocument {
	return PayableDocument{
		ID:               r.ID,
		Number:           r.Reference,
		Kind:             KindCreditNote,
		CounterpartyID:   r.ClientID,
		CounterpartyName: r.ClientName,
		LinkedRef:        r.SourceInvoice,
		IssueDate:        r.IssuedOn,
		Amount:           r.Total,
		Paid:             r.Settled,
		Advance:          r.AdvanceTotal,
		Issued:           r.Issued,
		Cancelled:        r.Cancelled,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

// StartNoteRecord mirrors a "note de début" row opening an operation file.
type StartNoteRecord struct {
	ID            int64
	NoteNumber    string
	ClientID      int64
	ClientName    string
	OperationRef  string
	OpenedOn      time.Time
	EstimateTotal int64
	Collected     int64
	Deposits      int64
	Issued        bool
	Cancelled     bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (r StartNoteRecord) normalize() PayableDocument {
	return PayableDocument{
		ID:               r.ID,
		Number:           r.NoteNumber,
		Kind:             KindStartNote,
		CounterpartyID:   r.ClientID,
		CounterpartyName: r.ClientName,
		LinkedRef:        r.OperationRef,
		IssueDate:        r.OpenedOn,
		Amount:           r.EstimateTotal,
		Paid:             r.Collected,
		Advance:          r.Deposits,
		Issued:           r.Issued,
		Cancelled:        r.Cancelled,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

// Normalize converts a source record into the uniform payable shape and
// derives its status at now. Pure; the input is never mutated.
func Normalize(rec SourceRecord, now time.Time) PayableDocument {
	return Restatus(rec.normalize(), now)
}

// normalize satisfies SourceRecord so re-normalizing an already-normalized
// document is a no-op.
func (d PayableDocument) normalize() PayableDocument {
	return d
}
