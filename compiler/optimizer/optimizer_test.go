package optimizer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/egorTorshin/IU-Compilers-Construction/compiler/ast"
	"github.com/egorTorshin/IU-Compilers-Construction/compiler/source"
)

func span() source.Span { return source.Span{} }

func TestFoldBinaryIntegers(t *testing.T) {
	expr := ast.Binary{
		Base: ast.Base{Sp: span()},
		Left: ast.IntegerLit{Base: ast.Base{Sp: span()}, Value: 2},
		Op:   ast.OpAdd,
		Right: ast.Binary{
			Base:  ast.Base{Sp: span()},
			Left:  ast.IntegerLit{Base: ast.Base{Sp: span()}, Value: 3},
			Op:    ast.OpMul,
			Right: ast.IntegerLit{Base: ast.Base{Sp: span()}, Value: 4},
		},
	}

	prog := &ast.Program{Statements: []ast.Statement{
		ast.PrintStmt{Base: ast.Base{Sp: span()}, Expr: expr},
	}}

	res := Optimize(context.Background(), prog)

	print := res.Program.Statements[0].(ast.PrintStmt)
	lit, ok := print.Expr.(ast.IntegerLit)
	require.True(t, ok, "expected folded expression to be an integer literal, got %T", print.Expr)
	require.Equal(t, int32(14), lit.Value)
	require.Greater(t, res.Count, 0)
}

func TestFoldDivisionByZeroSkipped(t *testing.T) {
	expr := ast.Binary{
		Base:  ast.Base{Sp: span()},
		Left:  ast.IntegerLit{Base: ast.Base{Sp: span()}, Value: 1},
		Op:    ast.OpDiv,
		Right: ast.IntegerLit{Base: ast.Base{Sp: span()}, Value: 0},
	}

	o := &optimizer{}
	folded := o.foldExpr(expr)

	_, stillBinary := folded.(ast.Binary)
	require.True(t, stillBinary, "division by a literal zero must not be folded")
}

func TestDeadCodeDropsAfterReturn(t *testing.T) {
	body := []ast.Statement{
		ast.ReturnStmt{Base: ast.Base{Sp: span()}, Expr: ast.IntegerLit{Base: ast.Base{Sp: span()}, Value: 1}},
		ast.PrintStmt{Base: ast.Base{Sp: span()}, Expr: ast.IntegerLit{Base: ast.Base{Sp: span()}, Value: 2}},
	}

	prog := &ast.Program{Statements: []ast.Statement{
		ast.RoutineDecl{Base: ast.Base{Sp: span()}, Name: "f", Body: body},
	}}

	res := Optimize(context.Background(), prog)

	rd := res.Program.Statements[0].(ast.RoutineDecl)
	require.Len(t, rd.Body, 1)
}

func TestDeadCodeIfTrueInlinesThen(t *testing.T) {
	st := ast.IfStmt{
		Base: ast.Base{Sp: span()},
		Cond: ast.BooleanLit{Base: ast.Base{Sp: span()}, Value: true},
		Then: []ast.Statement{
			ast.PrintStmt{Base: ast.Base{Sp: span()}, Expr: ast.IntegerLit{Base: ast.Base{Sp: span()}, Value: 1}},
		},
		Else: []ast.Statement{
			ast.PrintStmt{Base: ast.Base{Sp: span()}, Expr: ast.IntegerLit{Base: ast.Base{Sp: span()}, Value: 2}},
		},
	}

	prog := &ast.Program{Statements: []ast.Statement{st}}

	res := Optimize(context.Background(), prog)

	require.Len(t, res.Program.Statements, 1)

	print, ok := res.Program.Statements[0].(ast.PrintStmt)
	require.True(t, ok)

	lit := print.Expr.(ast.IntegerLit)
	require.Equal(t, int32(1), lit.Value)
}

func TestUnusedVariableElimination(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Statement{
		ast.VarDecl{Base: ast.Base{Sp: span()}, Name: "used", Type: ast.SimpleTypeExpr{Name: "integer"}},
		ast.VarDecl{Base: ast.Base{Sp: span()}, Name: "dead", Type: ast.SimpleTypeExpr{Name: "integer"}},
		ast.PrintStmt{Base: ast.Base{Sp: span()}, Expr: ast.VarRef{Base: ast.Base{Sp: span()}, Name: "used"}},
	}}

	res := Optimize(context.Background(), prog)

	require.Len(t, res.Program.Statements, 2)

	vd, ok := res.Program.Statements[0].(ast.VarDecl)
	require.True(t, ok)
	require.Equal(t, "used", vd.Name)
}
