package question

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	display, normalized := Normalize("  Provide   a\tStaffing\n\nPlan. ")
	require.Equal(t, "Provide a Staffing Plan.", display)
	require.Equal(t, "provide a staffing plan.", normalized)

	display, normalized = Normalize(" \n\t ")
	require.Empty(t, display)
	require.Empty(t, normalized)
}

func TestHashStableAcrossFormatting(t *testing.T) {
	variants := []string{
		"Provide a staffing plan.",
		"  provide a STAFFING plan.",
		"Provide\na   staffing\tplan.  ",
	}
	_, base := Normalize(variants[0])
	want := Hash(base)
	require.Len(t, want, 64)
	for _, v := range variants {
		_, n := Normalize(v)
		require.Equal(t, want, Hash(n))
	}
	_, other := Normalize("Provide a staffing plans.")
	require.NotEqual(t, want, Hash(other))
}
