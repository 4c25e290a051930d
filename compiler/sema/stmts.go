package sema

import (
	"context"

	"github.com/egorTorshin/IU-Compilers-Construction/compiler/ast"
	"github.com/egorTorshin/IU-Compilers-Construction/compiler/diag"
	"github.com/egorTorshin/IU-Compilers-Construction/compiler/tp"
)

// checkStmt implements the per-statement rules of spec.md §4.3, shared
// by pass 4 (routine bodies, where local var_decl/type_decl are legal)
// and pass 5 (remaining top-level statements).
func (a *Analyzer) checkStmt(ctx context.Context, st ast.Statement) {
	switch st := st.(type) {
	case ast.VarDecl:
		a.declareVar(ctx, st)
	case ast.TypeDecl:
		resolved, err := a.resolveTypeExpr(st.Type)
		if err != nil {
			a.sink.Add(diag.Semantic, st.Span(), "%s", err)
			return
		}

		if !a.table.DeclareType(st.Name, resolved) {
			a.sink.Add(diag.Semantic, st.Span(), "Type %s already defined.", st.Name)
		}
	case ast.RoutineDecl:
		a.sink.Add(diag.Semantic, st.Span(), "Nested routine declarations are not supported.")
	case ast.Assignment:
		a.checkAssignment(ctx, st)
	case ast.IfStmt:
		a.checkIf(ctx, st)
	case ast.WhileStmt:
		a.checkWhile(ctx, st)
	case ast.ForLoop:
		a.checkFor(ctx, st)
	case ast.PrintStmt:
		a.typeOf(ctx, st.Expr)
	case ast.ReadStmt:
		if _, ok := a.table.LookupVar(st.Var); !ok {
			a.sink.Add(diag.Semantic, st.Span(), "Undefined variable '%s'.", st.Var)
		}
	case ast.ReturnStmt:
		a.checkReturn(ctx, st)
	case ast.RoutineCallStmt:
		a.typeOfCall(ctx, st.Span(), st.Name, st.Args)
	default:
		a.sink.Add(diag.Semantic, st.Span(), "unsupported statement %T", st)
	}
}

func (a *Analyzer) checkAssignment(ctx context.Context, st ast.Assignment) {
	declared, ok := a.table.LookupVar(st.Target)
	if !ok {
		a.sink.Add(diag.Semantic, st.Span(), "Undefined variable '%s'.", st.Target)
		a.typeOf(ctx, st.Value)

		return
	}

	switch {
	case st.Index != nil:
		arr, ok := declared.(tp.Array)
		if !ok {
			a.sink.Add(diag.Semantic, st.Span(), "'%s' is not an array.", st.Target)
			a.typeOf(ctx, st.Value)

			return
		}

		idxType := a.typeOf(ctx, st.Index)
		if !tp.Equal(idxType, tp.Integer) {
			a.sink.Add(diag.Semantic, st.Span(), "Array index must be integer, got %s.", idxType)
		}

		a.checkConstIndex(st.Index, arr.Size)

		valType := a.typeOf(ctx, st.Value)
		if !tp.AssignableFrom(arr.Element, valType) {
			a.sink.Add(diag.Semantic, st.Span(),
				"Type mismatch: cannot assign %s to element of type %s.", valType, arr.Element)
		}
	case st.Field != "":
		rec, ok := declared.(tp.Record)
		if !ok {
			a.sink.Add(diag.Semantic, st.Span(), "'%s' is not a record.", st.Target)
			a.typeOf(ctx, st.Value)

			return
		}

		ftyp, ok := rec.FieldType(st.Field)
		if !ok {
			a.sink.Add(diag.Semantic, st.Span(), "Field '%s' does not exist on '%s'.", st.Field, st.Target)
			a.typeOf(ctx, st.Value)

			return
		}

		valType := a.typeOf(ctx, st.Value)
		if !tp.AssignableFrom(ftyp, valType) {
			a.sink.Add(diag.Semantic, st.Span(),
				"Type mismatch: cannot assign %s to field '%s' of type %s.", valType, st.Field, ftyp)
		}
	default:
		valType := a.typeOf(ctx, st.Value)
		if !tp.AssignableFrom(declared, valType) {
			a.sink.Add(diag.Semantic, st.Span(),
				"Type mismatch: cannot assign %s to '%s' of type %s.", valType, st.Target, declared)
		}
	}
}

func (a *Analyzer) checkIf(ctx context.Context, st ast.IfStmt) {
	condType := a.typeOf(ctx, st.Cond)
	if !tp.IsBoolean(condType) {
		a.sink.Add(diag.Semantic, st.Span(), "Type mismatch: 'if' condition must be boolean, got %s.", condType)
	}

	a.table.PushScope()

	for _, s := range st.Then {
		a.checkStmt(ctx, s)
	}

	a.table.PopScope()

	if st.Else != nil {
		a.table.PushScope()

		for _, s := range st.Else {
			a.checkStmt(ctx, s)
		}

		a.table.PopScope()
	}
}

func (a *Analyzer) checkWhile(ctx context.Context, st ast.WhileStmt) {
	condType := a.typeOf(ctx, st.Cond)
	if !tp.IsBoolean(condType) {
		a.sink.Add(diag.Semantic, st.Span(), "Type mismatch: 'while' condition must be boolean, got %s.", condType)
	}

	a.table.PushScope()

	for _, s := range st.Body {
		a.checkStmt(ctx, s)
	}

	a.table.PopScope()
}

// checkFor implements spec.md §9's resolution of the ForLoop open
// question: the loop variable is auto-declared as integer in a fresh
// inner scope, rather than requiring a pre-existing declaration (the
// source's behavior, which the spec identifies as a bug that would
// reject most valid-looking for loops).
func (a *Analyzer) checkFor(ctx context.Context, st ast.ForLoop) {
	startType := a.typeOf(ctx, st.Start)
	if !tp.Equal(startType, tp.Integer) {
		a.sink.Add(diag.Semantic, st.Span(), "Type mismatch: 'for' bounds must be integer, got %s.", startType)
	}

	endType := a.typeOf(ctx, st.End)
	if !tp.Equal(endType, tp.Integer) {
		a.sink.Add(diag.Semantic, st.Span(), "Type mismatch: 'for' bounds must be integer, got %s.", endType)
	}

	a.table.PushScope()

	if !a.table.DeclareVar(st.Var, tp.Integer) {
		a.sink.Add(diag.Semantic, st.Span(), "Variable %s already defined.", st.Var)
	}

	for _, s := range st.Body {
		a.checkStmt(ctx, s)
	}

	a.table.PopScope()
}

func (a *Analyzer) checkReturn(ctx context.Context, st ast.ReturnStmt) {
	if len(a.returnStack) == 0 {
		a.sink.Add(diag.Semantic, st.Span(), "'return' outside of a routine.")

		if st.Expr != nil {
			a.typeOf(ctx, st.Expr)
		}

		return
	}

	expected := a.returnStack[len(a.returnStack)-1]

	switch {
	case tp.Equal(expected, tp.Void) && st.Expr != nil:
		a.sink.Add(diag.Semantic, st.Span(), "Routine does not return a value; unexpected return value.")
		a.typeOf(ctx, st.Expr)
	case !tp.Equal(expected, tp.Void) && st.Expr == nil:
		a.sink.Add(diag.Semantic, st.Span(), "Missing return value of type %s.", expected)
	case st.Expr != nil:
		valType := a.typeOf(ctx, st.Expr)
		if !tp.AssignableFrom(expected, valType) {
			a.sink.Add(diag.Semantic, st.Span(), "Type mismatch: return value is %s, expected %s.", valType, expected)
		}
	}
}
