package symtab

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/egorTorshin/IU-Compilers-Construction/compiler/tp"
)

func TestBuiltinTypesPreloaded(t *testing.T) {
	table := New()

	typ, ok := table.LookupType(tp.IntegerName)
	require.True(t, ok)
	require.Equal(t, tp.Integer, typ)
}

func TestVarScopingShadowsAndPops(t *testing.T) {
	table := New()

	require.True(t, table.DeclareVar("x", tp.Integer))
	require.False(t, table.DeclareVar("x", tp.RealT), "redeclaring in the same scope must fail")

	table.PushScope()
	require.True(t, table.DeclareVar("x", tp.String), "shadowing an outer scope is allowed")

	typ, ok := table.LookupVar("x")
	require.True(t, ok)
	require.Equal(t, tp.String, typ)

	table.PopScope()

	typ, ok = table.LookupVar("x")
	require.True(t, ok)
	require.Equal(t, tp.Integer, typ)
}

func TestRoutineNamespaceIsFlat(t *testing.T) {
	table := New()

	r := Routine{Name: "add", Params: []tp.Type{tp.Integer, tp.Integer}, ReturnType: tp.Integer}
	require.True(t, table.DeclareRoutine(r))
	require.False(t, table.DeclareRoutine(r), "duplicate routine names must be rejected")

	got, ok := table.LookupRoutine("add")
	require.True(t, ok)
	require.Equal(t, r, got)
}

func TestDeclareTypeRejectsDuplicates(t *testing.T) {
	table := New()

	require.True(t, table.DeclareType("point", tp.Record{Fields: []tp.Field{{Name: "x", Type: tp.Integer}}}))
	require.False(t, table.DeclareType("point", tp.Integer))
	require.False(t, table.DeclareType(tp.IntegerName, tp.Integer), "built-in names are already taken")
}

func TestRoutinesSnapshot(t *testing.T) {
	table := New()
	table.DeclareRoutine(Routine{Name: "main", ReturnType: tp.Void})

	snap := table.Routines()
	_, ok := snap["main"]
	require.True(t, ok)

	snap["extra"] = Routine{Name: "extra"}
	_, ok = table.LookupRoutine("extra")
	require.False(t, ok, "Routines() must return a copy, not a live view")
}
