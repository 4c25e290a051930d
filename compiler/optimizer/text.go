package optimizer

import (
	"fmt"

	"github.com/egorTorshin/IU-Compilers-Construction/compiler/ast"
)

// exprText renders e back to source-like text for an OptimizationDetail's
// before/after fields. It is deliberately approximate: good enough for a
// human reading the visualizer report, not a faithful pretty-printer.
func exprText(e ast.Expression) string {
	switch e := e.(type) {
	case ast.IntegerLit:
		return fmt.Sprintf("%d", e.Value)
	case ast.RealLit:
		return fmt.Sprintf("%g", e.Value)
	case ast.BooleanLit:
		return fmt.Sprintf("%t", e.Value)
	case ast.StringLit:
		return fmt.Sprintf("%q", e.Value)
	case ast.VarRef:
		return e.Name
	case ast.ArrayAccess:
		return fmt.Sprintf("%s[%s]", e.Name, exprText(e.Index))
	case ast.RecordAccess:
		return fmt.Sprintf("%s.%s", exprText(e.Record), e.Field)
	case ast.Unary:
		return fmt.Sprintf("%s%s", e.Op, exprText(e.Operand))
	case ast.Binary:
		return fmt.Sprintf("%s %s %s", exprText(e.Left), e.Op, exprText(e.Right))
	case ast.RoutineCall:
		return fmt.Sprintf("%s(...)", e.Name)
	case ast.TypeCast:
		return fmt.Sprintf("%s as ...", exprText(e.Expr))
	case nil:
		return ""
	default:
		return fmt.Sprintf("<%T>", e)
	}
}

// stmtText renders the head of a statement for a Detail's before/after
// fields, without recursing into nested bodies.
func stmtText(st ast.Statement) string {
	switch st := st.(type) {
	case ast.IfStmt:
		return fmt.Sprintf("if %s ...", exprText(st.Cond))
	case ast.WhileStmt:
		return fmt.Sprintf("while %s ...", exprText(st.Cond))
	case ast.ForLoop:
		return fmt.Sprintf("for %s in %s .. %s ...", st.Var, exprText(st.Start), exprText(st.End))
	case ast.ReturnStmt:
		return fmt.Sprintf("return %s", exprText(st.Expr))
	case ast.VarDecl:
		return fmt.Sprintf("var %s", st.Name)
	case nil:
		return "<empty>"
	default:
		return fmt.Sprintf("<%T>", st)
	}
}
