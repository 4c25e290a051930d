package optimizer

import "github.com/egorTorshin/IU-Compilers-Construction/compiler/ast"

// eliminateDeadCode applies the second pass of spec.md §4.4 to every
// top-level statement list and every routine body, bottom-up.
func (o *optimizer) eliminateDeadCode(prog *ast.Program) *ast.Program {
	return &ast.Program{Statements: o.dceList(prog.Statements)}
}

// dceList rewrites a statement list: each statement is first recursed
// into (so nested ifs/whiles/fors are resolved before this list is
// truncated after a return), then spliced or dropped according to the
// unconditional-if/while-false/post-return rules. A statement's
// resolution may expand into zero or more statements in the result.
func (o *optimizer) dceList(stmts []ast.Statement) []ast.Statement {
	var out []ast.Statement

	for i, st := range stmts {
		out = append(out, o.dceStmt(st)...)

		if isUnconditionalReturn(st) {
			if i+1 < len(stmts) {
				o.record("dead-code", "dropped statements following an unconditional return",
					stmtText(stmts[i+1]), "", 0)
			}

			break
		}
	}

	return out
}

func isUnconditionalReturn(st ast.Statement) bool {
	_, ok := st.(ast.ReturnStmt)
	return ok
}

// dceStmt resolves a single statement to zero or more replacement
// statements, recursing into every nested body first.
func (o *optimizer) dceStmt(st ast.Statement) []ast.Statement {
	switch st := st.(type) {
	case ast.RoutineDecl:
		st.Body = o.dceList(st.Body)
		return []ast.Statement{st}
	case ast.IfStmt:
		return o.dceIf(st)
	case ast.WhileStmt:
		return o.dceWhile(st)
	case ast.ForLoop:
		st.Body = o.dceList(st.Body)
		return []ast.Statement{st}
	default:
		return []ast.Statement{st}
	}
}

func (o *optimizer) dceIf(st ast.IfStmt) []ast.Statement {
	if lit, ok := st.Cond.(ast.BooleanLit); ok {
		if lit.Value {
			o.record("dead-code", "replaced 'if true' with its then-branch", stmtText(st), "", 0)
			return o.dceList(st.Then)
		}

		o.record("dead-code", "replaced 'if false' with its else-branch", stmtText(st), "", 0)

		if st.Else == nil {
			return nil
		}

		return o.dceList(st.Else)
	}

	st.Then = o.dceList(st.Then)

	if st.Else != nil {
		st.Else = o.dceList(st.Else)
	}

	return []ast.Statement{st}
}

func (o *optimizer) dceWhile(st ast.WhileStmt) []ast.Statement {
	if lit, ok := st.Cond.(ast.BooleanLit); ok && !lit.Value {
		o.record("dead-code", "emptied the body of a 'while false' loop", stmtText(st), "", 0)
		st.Body = nil

		return []ast.Statement{st}
	}

	st.Body = o.dceList(st.Body)

	return []ast.Statement{st}
}
