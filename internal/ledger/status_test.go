package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var statusNow = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

func TestDeriveStatusCancelledWins(t *testing.T) {
	doc := PayableDocument{Amount: 100, Paid: 100, Cancelled: true, Issued: true}
	require.Equal(t, StatusCancelled, DeriveStatus(doc, statusNow))
}

func TestDeriveStatusPaid(t *testing.T) {
	doc := PayableDocument{Amount: 100, Paid: 60, Advance: 40, Issued: true}
	require.Equal(t, StatusPaid, DeriveStatus(doc, statusNow))
}

func TestDeriveStatusAdvanceOnly(t *testing.T) {
	doc := PayableDocument{Amount: 100, Advance: 30, Issued: true}
	require.Equal(t, StatusAdvance, DeriveStatus(doc, statusNow))
}

func TestDeriveStatusPartial(t *testing.T) {
	doc := PayableDocument{Amount: 100, Paid: 30, Issued: true}
	require.Equal(t, StatusPartial, DeriveStatus(doc, statusNow))

	// Partial outranks overdue even past the due date.
	doc.DueDate = statusNow.AddDate(0, 0, -5)
	require.Equal(t, StatusPartial, DeriveStatus(doc, statusNow))
}

func TestDeriveStatusOverdue(t *testing.T) {
	doc := PayableDocument{
		Amount:  100,
		DueDate: statusNow.AddDate(0, 0, -1),
		Issued:  true,
	}
	require.Equal(t, StatusOverdue, DeriveStatus(doc, statusNow))
}

func TestDeriveStatusOverdueRequiresPastDueDate(t *testing.T) {
	doc := PayableDocument{
		Amount:  100,
		DueDate: statusNow.AddDate(0, 0, 1),
		Issued:  true,
	}
	require.Equal(t, StatusPending, DeriveStatus(doc, statusNow))
}

func TestDeriveStatusDraftWhenNeverIssued(t *testing.T) {
	doc := PayableDocument{Amount: 100}
	require.Equal(t, StatusDraft, DeriveStatus(doc, statusNow))
}

func TestDeriveStatusPending(t *testing.T) {
	doc := PayableDocument{Amount: 100, Issued: true}
	require.Equal(t, StatusPending, DeriveStatus(doc, statusNow))
}

func TestDeriveStatusZeroAmountNeverPaid(t *testing.T) {
	doc := PayableDocument{Amount: 0, Issued: true}
	require.Equal(t, StatusPending, DeriveStatus(doc, statusNow))
}

func TestDeriveStatusIsDeterministic(t *testing.T) {
	doc := PayableDocument{
		Amount:  500,
		Paid:    100,
		Advance: 50,
		DueDate: statusNow.AddDate(0, 0, -10),
		Issued:  true,
	}
	first := DeriveStatus(doc, statusNow)
	for i := 0; i < 5; i++ {
		require.Equal(t, first, DeriveStatus(doc, statusNow))
	}
}
