package parser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/egorTorshin/IU-Compilers-Construction/compiler/ast"
	"github.com/egorTorshin/IU-Compilers-Construction/compiler/diag"
	"github.com/egorTorshin/IU-Compilers-Construction/compiler/lexer"
	"github.com/egorTorshin/IU-Compilers-Construction/compiler/source"
	"github.com/egorTorshin/IU-Compilers-Construction/compiler/token"
)

func parse(t *testing.T, text string) (*ast.Program, *diag.Sink, error) {
	t.Helper()

	ctx := context.Background()
	sink := diag.New()
	file := source.NewFile("t.il", []byte(text))
	toks := lexer.New(file, sink).All(ctx)
	prog, err := New(toks, sink).ParseProgram(ctx)

	return prog, sink, err
}

func TestParseVarDeclWithInit(t *testing.T) {
	prog, sink, err := parse(t, "var x : integer is 1")
	require.NoError(t, err)
	require.True(t, sink.Empty())
	require.Len(t, prog.Statements, 1)

	decl, ok := prog.Statements[0].(ast.VarDecl)
	require.True(t, ok)
	require.Equal(t, "x", decl.Name)
	require.NotNil(t, decl.Init)
}

func TestParseArrayDeclHasNoInit(t *testing.T) {
	prog, sink, err := parse(t, "var xs : array[3] integer")
	require.NoError(t, err)
	require.True(t, sink.Empty())

	decl, ok := prog.Statements[0].(ast.VarDecl)
	require.True(t, ok)
	require.True(t, decl.IsArrayDecl())
	require.Nil(t, decl.Init)
}

func TestParseRecordTypeDecl(t *testing.T) {
	prog, sink, err := parse(t, "type point is record var x : integer; var y : integer; end")
	require.NoError(t, err)
	require.True(t, sink.Empty())

	decl, ok := prog.Statements[0].(ast.TypeDecl)
	require.True(t, ok)

	rec, ok := decl.Type.(ast.RecordTypeExpr)
	require.True(t, ok)
	require.Len(t, rec.Fields, 2)
	require.Equal(t, "x", rec.Fields[0].Name)
	require.Equal(t, "y", rec.Fields[1].Name)
}

func TestParseRoutineDeclWithReturn(t *testing.T) {
	prog, sink, err := parse(t, "routine add(a : integer, b : integer) : integer is return a + b end")
	require.NoError(t, err)
	require.True(t, sink.Empty())

	decl, ok := prog.Statements[0].(ast.RoutineDecl)
	require.True(t, ok)
	require.Equal(t, "add", decl.Name)
	require.Len(t, decl.Params, 2)
	require.NotNil(t, decl.ReturnType)
	require.Len(t, decl.Body, 1)

	ret, ok := decl.Body[0].(ast.ReturnStmt)
	require.True(t, ok)

	bin, ok := ret.Expr.(ast.Binary)
	require.True(t, ok)
	require.Equal(t, ast.OpAdd, bin.Op)
}

func TestParseIfElse(t *testing.T) {
	prog, sink, err := parse(t, "if x = 1 then print(x) else print(0) end")
	require.NoError(t, err)
	require.True(t, sink.Empty())

	st, ok := prog.Statements[0].(ast.IfStmt)
	require.True(t, ok)
	require.Len(t, st.Then, 1)
	require.Len(t, st.Else, 1)
}

func TestParseForLoopReverse(t *testing.T) {
	prog, sink, err := parse(t, "for i in reverse 1 .. 10 loop print(i) end")
	require.NoError(t, err)
	require.True(t, sink.Empty())

	fl, ok := prog.Statements[0].(ast.ForLoop)
	require.True(t, ok)
	require.True(t, fl.Reverse)
	require.Equal(t, "i", fl.Var)
}

func TestParseArrayAccessAssignment(t *testing.T) {
	prog, sink, err := parse(t, "xs[0] := 5")
	require.NoError(t, err)
	require.True(t, sink.Empty())

	a, ok := prog.Statements[0].(ast.Assignment)
	require.True(t, ok)
	require.Equal(t, "xs", a.Target)
	require.NotNil(t, a.Index)
}

func TestParseRecordFieldAssignment(t *testing.T) {
	prog, sink, err := parse(t, "p.x := 5")
	require.NoError(t, err)
	require.True(t, sink.Empty())

	a, ok := prog.Statements[0].(ast.Assignment)
	require.True(t, ok)
	require.Equal(t, "p", a.Target)
	require.Equal(t, "x", a.Field)
}

func TestParseRoutineCallStatement(t *testing.T) {
	prog, sink, err := parse(t, "foo(1, 2)")
	require.NoError(t, err)
	require.True(t, sink.Empty())

	call, ok := prog.Statements[0].(ast.RoutineCallStmt)
	require.True(t, ok)
	require.Equal(t, "foo", call.Name)
	require.Len(t, call.Args, 2)
}

func TestOperatorPrecedence(t *testing.T) {
	prog, sink, err := parse(t, "print(1 + 2 * 3)")
	require.NoError(t, err)
	require.True(t, sink.Empty())

	st := prog.Statements[0].(ast.PrintStmt)
	top, ok := st.Expr.(ast.Binary)
	require.True(t, ok)
	require.Equal(t, ast.OpAdd, top.Op)

	_, leftIsLit := top.Left.(ast.IntegerLit)
	require.True(t, leftIsLit)

	right, ok := top.Right.(ast.Binary)
	require.True(t, ok)
	require.Equal(t, ast.OpMul, right.Op)
}

func TestUnaryMinusAndNot(t *testing.T) {
	prog, sink, err := parse(t, "print(-1)")
	require.NoError(t, err)
	require.True(t, sink.Empty())

	st := prog.Statements[0].(ast.PrintStmt)
	u, ok := st.Expr.(ast.Unary)
	require.True(t, ok)
	require.Equal(t, ast.OpNeg, u.Op)
}

func TestTypeCastExpression(t *testing.T) {
	prog, sink, err := parse(t, "print(x as real)")
	require.NoError(t, err)
	require.True(t, sink.Empty())

	st := prog.Statements[0].(ast.PrintStmt)
	cast, ok := st.Expr.(ast.TypeCast)
	require.True(t, ok)

	typ, ok := cast.TargetType.(ast.SimpleTypeExpr)
	require.True(t, ok)
	require.Equal(t, "real", typ.Name)
}

func TestUnexpectedTokenReportsSyntaxDiagnostic(t *testing.T) {
	_, sink, err := parse(t, "var := 1")
	require.Error(t, err)
	require.False(t, sink.Empty())

	var utErr UnexpectedTokenError
	require.ErrorAs(t, err, &utErr)
	require.Equal(t, token.Walrus, utErr.Got.Kind)
}

func TestArrayTypeExprNested(t *testing.T) {
	prog, sink, err := parse(t, "var m : array[2] array[3] integer")
	require.NoError(t, err)
	require.True(t, sink.Empty())

	decl := prog.Statements[0].(ast.VarDecl)
	outer, ok := decl.Type.(ast.ArrayTypeExpr)
	require.True(t, ok)
	require.Equal(t, int32(2), outer.Size.(ast.IntegerLit).Value)

	inner, ok := outer.Element.(ast.ArrayTypeExpr)
	require.True(t, ok)
	require.Equal(t, int32(3), inner.Size.(ast.IntegerLit).Value)
}
