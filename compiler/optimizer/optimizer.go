// Package optimizer implements the three AST-rewrite passes run on a
// semantically validated program: constant folding, dead-code
// elimination, and unused-variable elimination. Each pass is a pure
// AST-to-AST transformation; none of them re-run semantic analysis or
// consult the symbol table, since the passes only ever narrow an
// already-valid program.
package optimizer

import (
	"context"

	"tlog.app/go/tlog"

	"github.com/egorTorshin/IU-Compilers-Construction/compiler/ast"
)

// Detail records one transformation for the external reporter
// (compiler/external.Reporter) and for tests: what kind of rewrite
// happened, a human description, the before/after text and an optional
// source line.
type Detail struct {
	Kind        string
	Description string
	Before      string
	After       string
	Line        int
}

// Result is the outcome of running all three passes: the rewritten
// program, the per-transformation detail stream, and the total
// transformation count (sum of folds, drops and replacements).
type Result struct {
	Program *ast.Program
	Details []Detail
	Count   int
}

// Optimize runs constant folding, then dead-code elimination, then
// unused-variable elimination, in that order, matching spec.md §4.4's
// pass ordering (later passes see the earlier ones' output).
func Optimize(ctx context.Context, prog *ast.Program) Result {
	o := &optimizer{}

	folded := o.foldProgram(prog)
	pruned := o.eliminateDeadCode(folded)
	final := o.eliminateUnused(pruned)

	tlog.SpanFromContext(ctx).Printw("optimized", "transformations", o.count, "details", len(o.details))

	return Result{Program: final, Details: o.details, Count: o.count}
}

// optimizer carries the counter and detail stream shared by all three
// passes; it holds no program state between passes.
type optimizer struct {
	count   int
	details []Detail
}

func (o *optimizer) record(kind, desc, before, after string, line int) {
	o.count++
	o.details = append(o.details, Detail{Kind: kind, Description: desc, Before: before, After: after, Line: line})
}
