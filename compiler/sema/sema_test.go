package sema

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/egorTorshin/IU-Compilers-Construction/compiler/diag"
	"github.com/egorTorshin/IU-Compilers-Construction/compiler/lexer"
	"github.com/egorTorshin/IU-Compilers-Construction/compiler/parser"
	"github.com/egorTorshin/IU-Compilers-Construction/compiler/source"
	"github.com/egorTorshin/IU-Compilers-Construction/compiler/symtab"
)

func analyze(t *testing.T, text string) (*diag.Sink, *symtab.Table) {
	t.Helper()

	ctx := context.Background()
	sink := diag.New()
	file := source.NewFile("t.il", []byte(text))
	toks := lexer.New(file, sink).All(ctx)

	prog, err := parser.New(toks, sink).ParseProgram(ctx)
	require.NoError(t, err)
	require.True(t, sink.Empty(), "fixture must parse cleanly")

	table := Analyze(ctx, prog, sink)

	return sink, table
}

func TestAnalyzeValidProgramHasNoDiagnostics(t *testing.T) {
	sink, _ := analyze(t, `
		routine add(a : integer, b : integer) : integer is
			return a + b
		end;
		var total : integer is add(1, 2);
		print(total)
	`)
	require.True(t, sink.Empty())
}

func TestUndefinedVariableReported(t *testing.T) {
	sink, _ := analyze(t, `print(missing)`)
	require.False(t, sink.Empty())
	require.Contains(t, sink.Err().Error(), "Undefined variable 'missing'")
}

func TestDuplicateTypeNameReported(t *testing.T) {
	sink, _ := analyze(t, `
		type point is record var x : integer end;
		type point is record var y : integer end
	`)
	require.False(t, sink.Empty())
	require.Contains(t, sink.Err().Error(), "Type point already defined")
}

func TestDuplicateRoutineNameReported(t *testing.T) {
	sink, _ := analyze(t, `
		routine f() is end;
		routine f() is end
	`)
	require.False(t, sink.Empty())
	require.Contains(t, sink.Err().Error(), "Routine f already defined")
}

func TestAssignmentTypeMismatchReported(t *testing.T) {
	sink, _ := analyze(t, `
		var flag : boolean is true;
		flag := 1
	`)
	require.False(t, sink.Empty())
	require.Contains(t, sink.Err().Error(), "Type mismatch")
}

func TestIntegerAssignableToReal(t *testing.T) {
	sink, _ := analyze(t, `
		var x : real is 1
	`)
	require.True(t, sink.Empty())
}

func TestRoutineMustReturnOnEveryPath(t *testing.T) {
	sink, _ := analyze(t, `
		routine f() : integer is
			print(1)
		end
	`)
	require.False(t, sink.Empty())
	require.Contains(t, sink.Err().Error(), "must return a value")
}

func TestRoutineReturnsOnBothIfBranches(t *testing.T) {
	sink, _ := analyze(t, `
		routine f(x : boolean) : integer is
			if x then
				return 1
			else
				return 2
			end
		end
	`)
	require.True(t, sink.Empty())
}

func TestWrongArgumentCountReported(t *testing.T) {
	sink, _ := analyze(t, `
		routine add(a : integer, b : integer) : integer is
			return a + b
		end;
		print(add(1))
	`)
	require.False(t, sink.Empty())
	require.Contains(t, sink.Err().Error(), "Wrong number of arguments")
}

func TestStringConcatenationYieldsString(t *testing.T) {
	sink, _ := analyze(t, `
		var s : string is "a" + "b"
	`)
	require.True(t, sink.Empty())
}

func TestArrayIndexMustBeInteger(t *testing.T) {
	sink, _ := analyze(t, `
		var xs : array[3] integer;
		var y : real is 1.5;
		print(xs[y])
	`)
	require.False(t, sink.Empty())
	require.Contains(t, sink.Err().Error(), "Array index must be integer")
}

func TestFieldAccessOnUndeclaredFieldReported(t *testing.T) {
	sink, _ := analyze(t, `
		type point is record var x : integer end;
		var p : point;
		print(p.z)
	`)
	require.False(t, sink.Empty())
	require.Contains(t, sink.Err().Error(), "Field 'z' does not exist")
}

func TestForLoopVariableIsAutoDeclaredInteger(t *testing.T) {
	sink, table := analyze(t, `
		for i in 1 .. 10 loop
			print(i)
		end
	`)
	require.True(t, sink.Empty())

	// the loop's scope is popped by the time Analyze returns, so the
	// loop variable must not leak into the outer scope.
	_, ok := table.LookupVar("i")
	require.False(t, ok)
}

func TestReturnOutsideRoutineReported(t *testing.T) {
	sink, _ := analyze(t, `return 1`)
	require.False(t, sink.Empty())
	require.Contains(t, sink.Err().Error(), "'return' outside of a routine")
}

func TestCastBetweenScalarsAllowed(t *testing.T) {
	sink, _ := analyze(t, `
		var x : integer is 1;
		var y : real is x as real
	`)
	require.True(t, sink.Empty())
}
