package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookupKeyword(t *testing.T) {
	k, ok := Lookup("routine")
	require.True(t, ok)
	require.Equal(t, Routine, k)
}

func TestLookupOrdinaryIdentifier(t *testing.T) {
	_, ok := Lookup("total")
	require.False(t, ok)
}

func TestKindStringKnownAndUnknown(t *testing.T) {
	require.Equal(t, "routine", Routine.String())
	require.Equal(t, "<unknown>", Kind(9999).String())
}
