package codegen

import (
	"fmt"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"

	"github.com/egorTorshin/IU-Compilers-Construction/compiler/ast"
	"github.com/egorTorshin/IU-Compilers-Construction/compiler/tp"
)

// methodGen carries the per-method state used while lowering one
// routine (or the synthetic main method) body to instructions: the
// resolved type of every name in scope, the slot assignment for
// locals/params, and a label counter for control flow.
type methodGen struct {
	g       *generator
	vars    map[string]tp.Type
	globals map[string]tp.Type
	slots   *slotPlan
	retType tp.Type
	labelN  int
}

// stackLimit is a conservative, fixed operand-stack bound. The grammar
// this compiler accepts has no arbitrarily deep expression nesting in
// practice (spec.md's grammar keeps expressions to a handful of
// precedence levels), so a fixed generous limit is simpler and safer
// than tracking exact stack depth through every code path, at the cost
// of a slightly oversized ".limit stack" declaration.
const stackLimit = 32

func (m *methodGen) newLabel() string {
	m.labelN++
	return fmt.Sprintf("L%d", m.labelN)
}

// emitRoutine lowers one user-declared routine to a ".method" block.
func (g *generator) emitRoutine(rd ast.RoutineDecl, globals map[string]tp.Type) ([]byte, error) {
	r, ok := g.table.LookupRoutine(rd.Name)
	if !ok {
		return nil, errors.New("routine %s has no resolved signature", rd.Name)
	}

	vars := map[string]tp.Type{}
	params := make([]localUse, len(rd.Params))

	for i, p := range rd.Params {
		typ := r.Params[i]
		vars[p.Name] = typ
		params[i] = localUse{name: p.Name, firstUse: i, width: slotWidth(typ)}
	}

	locals := g.collectLocals(rd.Body, vars, len(params))

	m := &methodGen{
		g:       g,
		vars:    vars,
		globals: globals,
		slots:   newSlotPlan(params, locals),
		retType: r.ReturnType,
	}

	var b []byte

	b = hfmt.Appendf(b, ".method public static %s%s\n", rd.Name, g.methodDescriptor(r.Params, r.ReturnType))
	b = hfmt.Appendf(b, "\t.limit stack %d\n\t.limit locals %d\n", stackLimit, m.slots.localsCount())

	b = append(b, m.emitStmts(rd.Body)...)

	if tp.Equal(r.ReturnType, tp.Void) {
		b = append(b, "\treturn\n"...)
	}

	b = append(b, ".end method\n"...)

	return b, nil
}

// emitMainMethod either inlines the void main routine's body, invokes
// and discards a typed main's result, or runs the program's remaining
// top-level statements directly, per spec.md §4.5.
func (g *generator) emitMainMethod(mainRoutine *ast.RoutineDecl, prog *ast.Program, globals map[string]tp.Type) ([]byte, error) {
	var b []byte

	b = append(b, ".method public static main([Ljava/lang/String;)V\n"...)

	m := &methodGen{g: g, vars: map[string]tp.Type{}, globals: globals}

	switch {
	case mainRoutine != nil && isVoidMain(g, *mainRoutine):
		r, _ := g.table.LookupRoutine("main")

		locals := g.collectLocals(mainRoutine.Body, m.vars, 0)
		m.slots = newSlotPlan(nil, locals)
		m.retType = r.ReturnType

		b = hfmt.Appendf(b, "\t.limit stack %d\n\t.limit locals %d\n", stackLimit, m.slots.localsCount())
		b = append(b, m.emitStmts(mainRoutine.Body)...)
	case mainRoutine != nil:
		r, _ := g.table.LookupRoutine("main")

		b = hfmt.Appendf(b, "\t.limit stack %d\n\t.limit locals 1\n", stackLimit)
		b = hfmt.Appendf(b, "\tinvokestatic Main/main%s\n", g.methodDescriptor(r.Params, r.ReturnType))

		if slotWidth(r.ReturnType) == 2 {
			b = append(b, "\tpop2\n"...)
		} else if !tp.Equal(r.ReturnType, tp.Void) {
			b = append(b, "\tpop\n"...)
		}
	default:
		remaining := remainingTopLevel(prog)

		locals := g.collectLocals(remaining, m.vars, 0)
		m.slots = newSlotPlan(nil, locals)
		m.retType = tp.Void

		b = hfmt.Appendf(b, "\t.limit stack %d\n\t.limit locals %d\n", stackLimit, m.slots.localsCount())
		b = append(b, m.emitStmts(remaining)...)
	}

	b = append(b, "\treturn\n.end method\n"...)

	return b, nil
}

func isVoidMain(g *generator, rd ast.RoutineDecl) bool {
	r, ok := g.table.LookupRoutine(rd.Name)
	return ok && tp.Equal(r.ReturnType, tp.Void)
}

// remainingTopLevel returns the top-level statements that are not
// themselves declarations, i.e. spec.md pass 5's statement set,
// preserved in source order.
func remainingTopLevel(prog *ast.Program) []ast.Statement {
	var out []ast.Statement

	for _, st := range prog.Statements {
		switch st.(type) {
		case ast.VarDecl, ast.TypeDecl, ast.RoutineDecl:
			continue
		default:
			out = append(out, st)
		}
	}

	return out
}

// collectLocals walks body (recursing into every nested block,
// including for-loop bodies) collecting every local VarDecl and
// for-loop induction variable, in source order, and records each
// name's resolved type into vars.
func (g *generator) collectLocals(body []ast.Statement, vars map[string]tp.Type, startAt int) []localUse {
	var out []localUse

	counter := startAt

	var walk func([]ast.Statement)

	walk = func(stmts []ast.Statement) {
		for _, st := range stmts {
			counter++

			switch st := st.(type) {
			case ast.VarDecl:
				typ := g.resolveType(st.Type)
				vars[st.Name] = typ
				out = append(out, localUse{name: st.Name, firstUse: counter, width: slotWidth(typ)})
			case ast.IfStmt:
				walk(st.Then)
				walk(st.Else)
			case ast.WhileStmt:
				walk(st.Body)
			case ast.ForLoop:
				vars[st.Var] = tp.Integer
				out = append(out, localUse{name: st.Var, firstUse: counter, width: 1})
				walk(st.Body)
			}
		}
	}

	walk(body)

	return out
}
