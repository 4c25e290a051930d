package optimizer

import "github.com/egorTorshin/IU-Compilers-Construction/compiler/ast"

// eliminateUnused applies the third pass of spec.md §4.4: drop any
// VarDecl/array VarDecl whose name never appears as a use, where
// "use" is computed conservatively per the spec (an assignment to a
// name counts as a use).
func (o *optimizer) eliminateUnused(prog *ast.Program) *ast.Program {
	globalUsed := usedNames(prog.Statements)

	out := make([]ast.Statement, 0, len(prog.Statements))

	for _, st := range prog.Statements {
		if vd, ok := st.(ast.VarDecl); ok && !globalUsed[vd.Name] {
			o.record("unused-variable", "dropped unused top-level variable", "var "+vd.Name, "", 0)
			continue
		}

		if rd, ok := st.(ast.RoutineDecl); ok {
			out = append(out, o.pruneRoutineLocals(rd, globalUsed))
			continue
		}

		out = append(out, st)
	}

	return &ast.Program{Statements: out}
}

// pruneRoutineLocals drops locals of rd.Body that are used neither
// within the routine nor anywhere at global scope, per spec.md §4.4
// ("the union of local-used and global-used sets").
func (o *optimizer) pruneRoutineLocals(rd ast.RoutineDecl, globalUsed map[string]bool) ast.RoutineDecl {
	localUsed := usedNames(rd.Body)

	out := make([]ast.Statement, 0, len(rd.Body))

	for _, st := range rd.Body {
		if vd, ok := st.(ast.VarDecl); ok && !localUsed[vd.Name] && !globalUsed[vd.Name] {
			o.record("unused-variable", "dropped unused local variable", "var "+vd.Name, "", 0)
			continue
		}

		out = append(out, st)
	}

	rd.Body = out

	return rd
}

// usedNames walks stmts (recursing into every nested body and
// expression) and collects every name referenced as a VarRef, an
// ArrayAccess base, a RecordAccess base (when it bottoms out at a
// VarRef), an Assignment target, or a ForLoop variable.
func usedNames(stmts []ast.Statement) map[string]bool {
	used := make(map[string]bool)

	var walkExpr func(ast.Expression)
	walkExpr = func(e ast.Expression) {
		switch e := e.(type) {
		case ast.VarRef:
			used[e.Name] = true
		case ast.ArrayAccess:
			used[e.Name] = true
			walkExpr(e.Index)
		case ast.RecordAccess:
			walkExpr(e.Record)
		case ast.Unary:
			walkExpr(e.Operand)
		case ast.Binary:
			walkExpr(e.Left)
			walkExpr(e.Right)
		case ast.RoutineCall:
			for _, a := range e.Args {
				walkExpr(a)
			}
		case ast.TypeCast:
			walkExpr(e.Expr)
		}
	}

	var walkStmts func([]ast.Statement)

	walkStmt := func(st ast.Statement) {
		switch st := st.(type) {
		case ast.VarDecl:
			if st.Init != nil {
				walkExpr(st.Init)
			}
		case ast.Assignment:
			used[st.Target] = true

			if st.Index != nil {
				walkExpr(st.Index)
			}

			walkExpr(st.Value)
		case ast.IfStmt:
			walkExpr(st.Cond)
			walkStmts(st.Then)
			walkStmts(st.Else)
		case ast.WhileStmt:
			walkExpr(st.Cond)
			walkStmts(st.Body)
		case ast.ForLoop:
			used[st.Var] = true
			walkExpr(st.Start)
			walkExpr(st.End)
			walkStmts(st.Body)
		case ast.PrintStmt:
			walkExpr(st.Expr)
		case ast.ReadStmt:
			used[st.Var] = true
		case ast.ReturnStmt:
			if st.Expr != nil {
				walkExpr(st.Expr)
			}
		case ast.RoutineCallStmt:
			for _, a := range st.Args {
				walkExpr(a)
			}
		case ast.RoutineDecl:
			walkStmts(st.Body)
		}
	}

	walkStmts = func(stmts []ast.Statement) {
		for _, st := range stmts {
			walkStmt(st)
		}
	}

	walkStmts(stmts)

	return used
}
