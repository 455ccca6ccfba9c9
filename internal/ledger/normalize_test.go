package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var normNow = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

func TestNormalizeInvoiceRecord(t *testing.T) {
	rec := InvoiceRecord{
		ID:          7,
		Number:      "FAC-2026-0030",
		ClientID:    42,
		ClientName:  "Maersk Line Douala",
		InvoiceDate: normNow.AddDate(0, 0, -15),
		DueDate:     normNow.AddDate(0, 0, 15),
		TotalTTC:    500000,
		AmountPaid:  100000,
		AdvancePaid: 50000,
		Sent:        true,
	}

	doc := Normalize(rec, normNow)
	require.Equal(t, KindInvoice, doc.Kind)
	require.Equal(t, rec.TotalTTC, doc.Amount)
	require.Equal(t, rec.AmountPaid+rec.AdvancePaid, doc.Paid+doc.Advance)
	require.Equal(t, rec.ClientID, doc.CounterpartyID)
	require.Equal(t, StatusPartial, doc.Status)
	require.Equal(t, int64(350000), doc.Remaining())
}

func TestNormalizeCreditNoteCarriesLinkedInvoice(t *testing.T) {
	rec := CreditNoteRecord{
		ID:            3,
		Reference:     "AVR-2026-0004",
		ClientID:      42,
		ClientName:    "Maersk Line Douala",
		SourceInvoice: "FAC-2026-0030",
		IssuedOn:      normNow,
		Total:         80000,
		Issued:        true,
	}

	doc := Normalize(rec, normNow)
	require.Equal(t, KindCreditNote, doc.Kind)
	require.Equal(t, "AVR-2026-0004", doc.Number)
	require.Equal(t, "FAC-2026-0030", doc.LinkedRef)
	require.True(t, doc.DueDate.IsZero())
	require.Equal(t, StatusPending, doc.Status)
}

func TestNormalizeStartNote(t *testing.T) {
	rec := StartNoteRecord{
		ID:            9,
		NoteNumber:    "NDD-2026-0012",
		ClientID:      7,
		ClientName:    "SOCOMAR",
		OperationRef:  "ESC-DLA-118",
		OpenedOn:      normNow,
		EstimateTotal: 1200000,
		Deposits:      300000,
		Issued:        true,
	}

	doc := Normalize(rec, normNow)
	require.Equal(t, KindStartNote, doc.Kind)
	require.Equal(t, "ESC-DLA-118", doc.LinkedRef)
	require.Equal(t, int64(300000), doc.Advance)
	require.Equal(t, StatusAdvance, doc.Status)
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	rec := InvoiceRecord{ID: 1, Number: "FAC-1", ClientID: 2, TotalTTC: 100, Sent: true}
	before := rec
	_ = Normalize(rec, normNow)
	require.Equal(t, before, rec)
}

func TestNormalizeIdempotentOnNormalizedDocument(t *testing.T) {
	rec := InvoiceRecord{
		ID:       1,
		Number:   "FAC-1",
		ClientID: 2,
		TotalTTC: 100,
		Sent:     true,
	}
	once := Normalize(rec, normNow)
	twice := Normalize(once, normNow)
	require.Equal(t, once, twice)
}
