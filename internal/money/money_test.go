package money

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatGroupsDigits(t *testing.T) {
	got := Format(1234567)
	// French locale groups with narrow no-break space (U+202F).
	require.Equal(t, "1 234 567 FCFA", got)
}

func TestFormatSmallAmount(t *testing.T) {
	require.Equal(t, "950 FCFA", Format(950))
}

func TestFormatZero(t *testing.T) {
	require.Equal(t, "0 FCFA", Format(0))
}

func TestFormatBare(t *testing.T) {
	require.Equal(t, "25 000", FormatBare(25000))
}
