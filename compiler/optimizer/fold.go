package optimizer

import (
	"fmt"

	"github.com/egorTorshin/IU-Compilers-Construction/compiler/ast"
)

// foldProgram applies constant folding to every top-level statement.
func (o *optimizer) foldProgram(prog *ast.Program) *ast.Program {
	return &ast.Program{Statements: o.foldStmts(prog.Statements)}
}

func (o *optimizer) foldStmts(stmts []ast.Statement) []ast.Statement {
	out := make([]ast.Statement, len(stmts))
	for i, st := range stmts {
		out[i] = o.foldStmt(st)
	}

	return out
}

// foldStmt recurses into every statement form that carries a nested
// expression or statement body, rewriting them bottom-up per spec.md
// §4.4.
func (o *optimizer) foldStmt(st ast.Statement) ast.Statement {
	switch st := st.(type) {
	case ast.VarDecl:
		if st.Init != nil {
			st.Init = o.foldExpr(st.Init)
		}

		return st
	case ast.Assignment:
		if st.Index != nil {
			st.Index = o.foldExpr(st.Index)
		}

		st.Value = o.foldExpr(st.Value)

		return st
	case ast.IfStmt:
		st.Cond = o.foldExpr(st.Cond)
		st.Then = o.foldStmts(st.Then)

		if st.Else != nil {
			st.Else = o.foldStmts(st.Else)
		}

		return st
	case ast.WhileStmt:
		st.Cond = o.foldExpr(st.Cond)
		st.Body = o.foldStmts(st.Body)

		return st
	case ast.ForLoop:
		st.Start = o.foldExpr(st.Start)
		st.End = o.foldExpr(st.End)
		st.Body = o.foldStmts(st.Body)

		return st
	case ast.PrintStmt:
		st.Expr = o.foldExpr(st.Expr)
		return st
	case ast.ReturnStmt:
		if st.Expr != nil {
			st.Expr = o.foldExpr(st.Expr)
		}

		return st
	case ast.RoutineCallStmt:
		args := make([]ast.Expression, len(st.Args))
		for i, arg := range st.Args {
			args[i] = o.foldExpr(arg)
		}

		st.Args = args

		return st
	case ast.RoutineDecl:
		st.Body = o.foldStmts(st.Body)
		return st
	default:
		return st
	}
}

// foldExpr rewrites e bottom-up, folding any Binary/Unary expression
// whose operands are both literals (after their own folding) into a
// single literal node, per spec.md §4.4.
func (o *optimizer) foldExpr(e ast.Expression) ast.Expression {
	switch e := e.(type) {
	case ast.Unary:
		e.Operand = o.foldExpr(e.Operand)
		return o.foldUnary(e)
	case ast.Binary:
		e.Left = o.foldExpr(e.Left)
		e.Right = o.foldExpr(e.Right)

		return o.foldBinary(e)
	case ast.ArrayAccess:
		e.Index = o.foldExpr(e.Index)
		return e
	case ast.RecordAccess:
		e.Record = o.foldExpr(e.Record)
		return e
	case ast.RoutineCall:
		args := make([]ast.Expression, len(e.Args))
		for i, arg := range e.Args {
			args[i] = o.foldExpr(arg)
		}

		e.Args = args

		return e
	case ast.TypeCast:
		e.Expr = o.foldExpr(e.Expr)
		return e
	default:
		return e
	}
}

func (o *optimizer) foldUnary(e ast.Unary) ast.Expression {
	switch operand := e.Operand.(type) {
	case ast.IntegerLit:
		if e.Op == ast.OpNeg {
			lit := ast.IntegerLit{Base: e.Base, Value: -operand.Value}
			o.record("constant-fold", "folded unary '-' on an integer literal", exprText(e), exprText(lit), 0)

			return lit
		}
	case ast.RealLit:
		if e.Op == ast.OpNeg {
			lit := ast.RealLit{Base: e.Base, Value: -operand.Value}
			o.record("constant-fold", "folded unary '-' on a real literal", exprText(e), exprText(lit), 0)

			return lit
		}
	case ast.BooleanLit:
		if e.Op == ast.OpNot {
			lit := ast.BooleanLit{Base: e.Base, Value: !operand.Value}
			o.record("constant-fold", "folded 'not' on a boolean literal", exprText(e), exprText(lit), 0)

			return lit
		}
	}

	return e
}

//nolint:gocyclo // one flat dispatch table mirrors spec.md §4.4's rule list directly
func (o *optimizer) foldBinary(e ast.Binary) ast.Expression {
	li, lInt := e.Left.(ast.IntegerLit)
	ri, rInt := e.Right.(ast.IntegerLit)
	lr, lReal := e.Left.(ast.RealLit)
	rr, rReal := e.Right.(ast.RealLit)
	lb, lBool := e.Left.(ast.BooleanLit)
	rb, rBool := e.Right.(ast.BooleanLit)

	var folded ast.Expression

	switch {
	case lBool && rBool:
		folded = foldBooleanOp(e, lb, rb)
	case lInt && rInt:
		folded = foldIntOp(e, li, ri)
	case lReal && rReal:
		folded = foldRealOp(e, lr.Value, rr.Value)
	case lInt && rReal:
		folded = foldRealOp(e, float64(li.Value), rr.Value)
	case lReal && rInt:
		folded = foldRealOp(e, lr.Value, float64(ri.Value))
	}

	if folded != nil {
		o.record("constant-fold", fmt.Sprintf("folded binary '%s' on two literals", e.Op), exprText(e), exprText(folded), 0)
		return folded
	}

	return e
}

func foldBooleanOp(e ast.Binary, l, r ast.BooleanLit) ast.Expression {
	switch e.Op {
	case ast.OpAnd:
		return ast.BooleanLit{Base: e.Base, Value: l.Value && r.Value}
	case ast.OpOr:
		return ast.BooleanLit{Base: e.Base, Value: l.Value || r.Value}
	case ast.OpXor:
		return ast.BooleanLit{Base: e.Base, Value: l.Value != r.Value}
	case ast.OpEq:
		return ast.BooleanLit{Base: e.Base, Value: l.Value == r.Value}
	case ast.OpNeq:
		return ast.BooleanLit{Base: e.Base, Value: l.Value != r.Value}
	default:
		return nil
	}
}

func foldIntOp(e ast.Binary, l, r ast.IntegerLit) ast.Expression {
	switch e.Op {
	case ast.OpAdd:
		return ast.IntegerLit{Base: e.Base, Value: l.Value + r.Value}
	case ast.OpSub:
		return ast.IntegerLit{Base: e.Base, Value: l.Value - r.Value}
	case ast.OpMul:
		return ast.IntegerLit{Base: e.Base, Value: l.Value * r.Value}
	case ast.OpDiv:
		if r.Value == 0 {
			return nil
		}

		return ast.IntegerLit{Base: e.Base, Value: l.Value / r.Value}
	case ast.OpMod:
		if r.Value == 0 {
			return nil
		}

		return ast.IntegerLit{Base: e.Base, Value: l.Value % r.Value}
	case ast.OpEq:
		return ast.BooleanLit{Base: e.Base, Value: l.Value == r.Value}
	case ast.OpNeq:
		return ast.BooleanLit{Base: e.Base, Value: l.Value != r.Value}
	case ast.OpLt:
		return ast.BooleanLit{Base: e.Base, Value: l.Value < r.Value}
	case ast.OpLe:
		return ast.BooleanLit{Base: e.Base, Value: l.Value <= r.Value}
	case ast.OpGt:
		return ast.BooleanLit{Base: e.Base, Value: l.Value > r.Value}
	case ast.OpGe:
		return ast.BooleanLit{Base: e.Base, Value: l.Value >= r.Value}
	default:
		return nil
	}
}

func foldRealOp(e ast.Binary, l, r float64) ast.Expression {
	switch e.Op {
	case ast.OpAdd:
		return ast.RealLit{Base: e.Base, Value: l + r}
	case ast.OpSub:
		return ast.RealLit{Base: e.Base, Value: l - r}
	case ast.OpMul:
		return ast.RealLit{Base: e.Base, Value: l * r}
	case ast.OpDiv:
		if r == 0 {
			return nil
		}

		return ast.RealLit{Base: e.Base, Value: l / r}
	case ast.OpEq:
		return ast.BooleanLit{Base: e.Base, Value: l == r}
	case ast.OpNeq:
		return ast.BooleanLit{Base: e.Base, Value: l != r}
	case ast.OpLt:
		return ast.BooleanLit{Base: e.Base, Value: l < r}
	case ast.OpLe:
		return ast.BooleanLit{Base: e.Base, Value: l <= r}
	case ast.OpGt:
		return ast.BooleanLit{Base: e.Base, Value: l > r}
	case ast.OpGe:
		return ast.BooleanLit{Base: e.Base, Value: l >= r}
	default:
		return nil
	}
}
