package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleDocs() []PayableDocument {
	return []PayableDocument{
		{ID: 1, Number: "FAC-2024-0142", CounterpartyName: "CMA CGM Douala", Status: StatusPending},
		{ID: 2, Number: "FAC-2024-0143", CounterpartyName: "Bolloré Transport", Status: StatusPaid},
		{ID: 3, Number: "AVR-2024-0007", CounterpartyName: "CMA CGM Douala", LinkedRef: "FAC-2024-0142", Status: StatusPending},
	}
}

func TestMatchesNumberCaseInsensitive(t *testing.T) {
	docs := sampleDocs()
	out := Filter(docs, "fac-2024-0142", StatusFilterAll)
	require.Len(t, out, 2)
	require.Equal(t, int64(1), out[0].ID)
	// The credit note matches through its linked invoice reference.
	require.Equal(t, int64(3), out[1].ID)
}

func TestMatchesCounterpartyName(t *testing.T) {
	out := Filter(sampleDocs(), "bolloré", StatusFilterAll)
	require.Len(t, out, 1)
	require.Equal(t, "FAC-2024-0143", out[0].Number)
}

func TestMatchesStatusFilter(t *testing.T) {
	out := Filter(sampleDocs(), "", string(StatusPaid))
	require.Len(t, out, 1)
	require.Equal(t, int64(2), out[0].ID)
}

func TestMatchesAllSentinelAndEmpty(t *testing.T) {
	require.Len(t, Filter(sampleDocs(), "", StatusFilterAll), 3)
	require.Len(t, Filter(sampleDocs(), "", ""), 3)
}

func TestFilterPreservesInputOrder(t *testing.T) {
	out := Filter(sampleDocs(), "cma", StatusFilterAll)
	require.Len(t, out, 2)
	require.Equal(t, int64(1), out[0].ID)
	require.Equal(t, int64(3), out[1].ID)
}

func TestFilterCombinedPredicates(t *testing.T) {
	out := Filter(sampleDocs(), "cma", string(StatusPending))
	require.Len(t, out, 2)
	out = Filter(sampleDocs(), "cma", string(StatusPaid))
	require.Empty(t, out)
}
