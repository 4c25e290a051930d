package tp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEqualSimple(t *testing.T) {
	require.True(t, Equal(Integer, Integer))
	require.False(t, Equal(Integer, RealT))
}

func TestEqualArray(t *testing.T) {
	a := Array{Element: Integer, Size: 5}
	b := Array{Element: Integer, Size: 5}
	c := Array{Element: Integer, Size: 6}
	require.True(t, Equal(a, b))
	require.False(t, Equal(a, c))
}

func TestEqualRecordByFields(t *testing.T) {
	a := Record{Fields: []Field{{Name: "x", Type: Integer}, {Name: "y", Type: Integer}}}
	b := Record{Fields: []Field{{Name: "x", Type: Integer}, {Name: "y", Type: Integer}}}
	c := Record{Fields: []Field{{Name: "x", Type: Integer}}}
	require.True(t, Equal(a, b))
	require.False(t, Equal(a, c))
}

func TestAssignableFromIntToReal(t *testing.T) {
	require.True(t, AssignableFrom(RealT, Integer))
	require.False(t, AssignableFrom(Integer, RealT))
}

func TestAssignableFromArrayRequiresCompatibleElement(t *testing.T) {
	ints := Array{Element: Integer, Size: 3}
	reals := Array{Element: RealT, Size: 3}
	require.True(t, AssignableFrom(reals, ints))
	require.False(t, AssignableFrom(ints, reals))
}

func TestFieldType(t *testing.T) {
	r := Record{Fields: []Field{{Name: "x", Type: Integer}}}

	typ, ok := r.FieldType("x")
	require.True(t, ok)
	require.Equal(t, Integer, typ)

	_, ok = r.FieldType("missing")
	require.False(t, ok)
}

func TestIsNumericAndBoolean(t *testing.T) {
	require.True(t, IsNumeric(Integer))
	require.True(t, IsNumeric(RealT))
	require.False(t, IsNumeric(Boolean))
	require.True(t, IsBoolean(Boolean))
}
