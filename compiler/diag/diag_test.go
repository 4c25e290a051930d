package diag

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/egorTorshin/IU-Compilers-Construction/compiler/source"
)

func TestEmptySinkHasNilErr(t *testing.T) {
	s := New()
	require.True(t, s.Empty())
	require.NoError(t, s.Err())
}

func TestAddAccumulatesAndCombines(t *testing.T) {
	s := New()

	f := source.NewFile("t.il", []byte("x"))
	sp := f.Span(0, 1)

	s.Add(Semantic, sp, "undeclared variable %q", "x")
	s.Add(Syntax, sp, "unexpected token %q", ";")

	require.False(t, s.Empty())
	require.Equal(t, 2, s.Len())

	err := s.Err()
	require.Error(t, err)
	require.Contains(t, err.Error(), "undeclared variable")
	require.Contains(t, err.Error(), "unexpected token")
}

func TestDiagnosticError(t *testing.T) {
	f := source.NewFile("t.il", []byte("x"))
	d := Diagnostic{Kind: Lexical, Message: "bad character", Span: f.Span(0, 1)}

	require.Contains(t, d.Error(), "lexical")
	require.Contains(t, d.Error(), "bad character")
}
