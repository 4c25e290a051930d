// Package sema implements the five-pass semantic analyzer described in
// spec.md §4.3: routine hoisting, type hoisting, variable/array
// hoisting, routine bodies, then remaining top-level statements. The
// analyzer never aborts on the first problem — every diagnostic is
// collected in the sink and the caller decides whether any failure
// should stop the pipeline, per the teacher compiler's "collect, don't
// throw" error model.
package sema

import (
	"context"

	"tlog.app/go/tlog"

	"github.com/egorTorshin/IU-Compilers-Construction/compiler/ast"
	"github.com/egorTorshin/IU-Compilers-Construction/compiler/diag"
	"github.com/egorTorshin/IU-Compilers-Construction/compiler/symtab"
	"github.com/egorTorshin/IU-Compilers-Construction/compiler/tp"
)

// Analyzer carries the per-compilation state threaded through all five
// passes: the symbol table being populated and the sink every rule
// violation is reported to.
type Analyzer struct {
	table *symtab.Table
	sink  *diag.Sink

	// returnStack holds the expected return type of each routine body
	// currently being walked; empty outside any routine.
	returnStack []tp.Type
}

// Analyze runs all five passes over prog and returns the populated
// symbol table. Errors are never returned directly — check sink.Err()
// (or sink.Empty()) to decide whether to proceed to optimization.
func Analyze(ctx context.Context, prog *ast.Program, sink *diag.Sink) *symtab.Table {
	a := &Analyzer{table: symtab.New(), sink: sink}

	// Type names must be resolvable before any signature referencing
	// them can be resolved, so type hoisting (spec.md pass 2) runs
	// ahead of routine-signature resolution (spec.md pass 1) even
	// though the two are presented in the opposite order in spec.md —
	// both are hoisting passes with no visible ordering effect other
	// than enabling forward references, which this ordering preserves
	// for both names.
	a.hoistTypes(ctx, prog)
	a.hoistRoutines(ctx, prog)
	a.hoistVars(ctx, prog)
	a.analyzeRoutineBodies(ctx, prog)
	a.analyzeRemaining(ctx, prog)

	tlog.SpanFromContext(ctx).Printw("semantic analysis", "diagnostics", sink.Len())

	return a.table
}

// hoistTypes is pass 2: register every top-level TypeDecl, rejecting
// duplicates and collisions with a built-in name, and validating record
// field types as they are resolved.
func (a *Analyzer) hoistTypes(ctx context.Context, prog *ast.Program) {
	for _, st := range prog.Statements {
		td, ok := st.(ast.TypeDecl)
		if !ok {
			continue
		}

		if symtab.IsBuiltinType(td.Name) {
			a.sink.Add(diag.Semantic, td.Span(), "Type %s already defined.", td.Name)
			continue
		}

		resolved, err := a.resolveTypeExpr(td.Type)
		if err != nil {
			a.sink.Add(diag.Semantic, td.Span(), "%s", err)
			continue
		}

		if !a.table.DeclareType(td.Name, resolved) {
			a.sink.Add(diag.Semantic, td.Span(), "Type %s already defined.", td.Name)
		}
	}
}

// hoistRoutines is pass 1: register every top-level RoutineDecl by
// name, with its fully resolved signature (see Analyze's ordering note).
func (a *Analyzer) hoistRoutines(ctx context.Context, prog *ast.Program) {
	for _, st := range prog.Statements {
		rd, ok := st.(ast.RoutineDecl)
		if !ok {
			continue
		}

		params := make([]tp.Type, len(rd.Params))

		for i, p := range rd.Params {
			typ, err := a.resolveTypeExpr(p.Type)
			if err != nil {
				a.sink.Add(diag.Semantic, rd.Span(), "%s", err)
				typ = tp.Void
			}

			params[i] = typ
		}

		var retType tp.Type = tp.Void

		if rd.ReturnType != nil {
			typ, err := a.resolveTypeExpr(rd.ReturnType)
			if err != nil {
				a.sink.Add(diag.Semantic, rd.Span(), "%s", err)
			} else {
				retType = typ
			}
		}

		ok = a.table.DeclareRoutine(symtab.Routine{Name: rd.Name, Params: params, ReturnType: retType})
		if !ok {
			a.sink.Add(diag.Semantic, rd.Span(), "Routine %s already defined.", rd.Name)
		}
	}
}

// hoistVars is pass 3: add top-level VarDecl/ArrayDecl to the global
// scope, validating the declared type and any initializer.
func (a *Analyzer) hoistVars(ctx context.Context, prog *ast.Program) {
	for _, st := range prog.Statements {
		vd, ok := st.(ast.VarDecl)
		if !ok {
			continue
		}

		a.declareVar(ctx, vd)
	}
}

// analyzeRoutineBodies is pass 4: walk each routine body in its own
// scope with its parameters declared and its return type on the stack.
func (a *Analyzer) analyzeRoutineBodies(ctx context.Context, prog *ast.Program) {
	for _, st := range prog.Statements {
		rd, ok := st.(ast.RoutineDecl)
		if !ok {
			continue
		}

		r, found := a.table.LookupRoutine(rd.Name)
		if !found {
			continue // duplicate definition already reported in pass 1
		}

		a.table.PushScope()

		for i, p := range rd.Params {
			if i < len(r.Params) && !a.table.DeclareVar(p.Name, r.Params[i]) {
				a.sink.Add(diag.Semantic, rd.Span(), "Variable %s already defined.", p.Name)
			}
		}

		a.returnStack = append(a.returnStack, r.ReturnType)

		for _, bst := range rd.Body {
			a.checkStmt(ctx, bst)
		}

		a.returnStack = a.returnStack[:len(a.returnStack)-1]

		if !tp.Equal(r.ReturnType, tp.Void) && !hasReturn(rd.Body) {
			a.sink.Add(diag.Semantic, rd.Span(),
				"Routine %s must return a value of type %s on every path.", rd.Name, r.ReturnType)
		}

		a.table.PopScope()
	}
}

// analyzeRemaining is pass 5: visit every top-level statement that is
// not itself a declaration (those were handled by passes 1-3) in
// source order.
func (a *Analyzer) analyzeRemaining(ctx context.Context, prog *ast.Program) {
	for _, st := range prog.Statements {
		switch st.(type) {
		case ast.VarDecl, ast.TypeDecl, ast.RoutineDecl:
			continue
		default:
			a.checkStmt(ctx, st)
		}
	}
}

// hasReturn reports whether body is guaranteed to return on every path
// it can exit through, per spec.md §4.3: a top-level ReturnStatement
// anywhere in the chain, or a terminal if-statement whose both branches
// (recursively) satisfy hasReturn.
func hasReturn(body []ast.Statement) bool {
	for _, st := range body {
		if _, ok := st.(ast.ReturnStmt); ok {
			return true
		}
	}

	if len(body) == 0 {
		return false
	}

	if ifs, ok := body[len(body)-1].(ast.IfStmt); ok && ifs.Else != nil {
		return hasReturn(ifs.Then) && hasReturn(ifs.Else)
	}

	return false
}
