// Package format renders a program's AST back to IL-like source text,
// the way the teacher's formatter renders its own AST back to Go-like
// text: a small set of mutually-recursive formatFoo functions sharing
// one indentation helper. Used by the CLI's --debug mode to let a
// developer see the tree the optimizer actually produced.
package format

import (
	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"

	"github.com/egorTorshin/IU-Compilers-Construction/compiler/ast"
)

// Program renders every top-level statement of prog in source order.
func Program(b []byte, prog *ast.Program) ([]byte, error) {
	return formatStmts(b, prog.Statements, 0)
}

func formatStmts(b []byte, stmts []ast.Statement, d int) (_ []byte, err error) {
	for i, st := range stmts {
		b, err = formatStmt(b, st, d)
		if err != nil {
			return nil, err
		}

		if i+1 < len(stmts) && len(b) > 0 && b[len(b)-1] == '\n' {
			b = append(b[:len(b)-1], ";\n"...)
		}
	}

	return b, nil
}

func formatStmt(b []byte, st ast.Statement, d int) (_ []byte, err error) {
	switch st := st.(type) {
	case ast.VarDecl:
		b = app(b, d, "var %s : ", st.Name)

		b, err = formatType(b, st.Type)
		if err != nil {
			return nil, err
		}

		if st.Init != nil {
			b = append(b, " is "...)

			b, err = formatExpr(b, st.Init)
			if err != nil {
				return nil, errors.Wrap(err, "var %v initializer", st.Name)
			}
		}

		b = append(b, '\n')
	case ast.TypeDecl:
		b = app(b, d, "type %s is ", st.Name)

		b, err = formatType(b, st.Type)
		if err != nil {
			return nil, err
		}

		b = append(b, '\n')
	case ast.RoutineDecl:
		b = app(b, d, "routine %s(", st.Name)

		for i, p := range st.Params {
			if i != 0 {
				b = append(b, ", "...)
			}

			b = hfmt.Appendf(b, "%s: ", p.Name)

			b, err = formatType(b, p.Type)
			if err != nil {
				return nil, errors.Wrap(err, "routine %v param %v", st.Name, p.Name)
			}
		}

		b = append(b, ')')

		if st.ReturnType != nil {
			b = append(b, ": "...)

			b, err = formatType(b, st.ReturnType)
			if err != nil {
				return nil, err
			}
		}

		b = append(b, " is\n"...)

		b, err = formatStmts(b, st.Body, d+1)
		if err != nil {
			return nil, errors.Wrap(err, "routine %v body", st.Name)
		}

		b = app(b, d, "end\n")
	case ast.Assignment:
		b = app(b, d, "%s", st.Target)

		switch {
		case st.Index != nil:
			b = append(b, '[')

			b, err = formatExpr(b, st.Index)
			if err != nil {
				return nil, err
			}

			b = append(b, ']')
		case st.Field != "":
			b = hfmt.Appendf(b, ".%s", st.Field)
		}

		b = append(b, " := "...)

		b, err = formatExpr(b, st.Value)
		if err != nil {
			return nil, errors.Wrap(err, "assignment to %v", st.Target)
		}

		b = append(b, '\n')
	case ast.IfStmt:
		b = app(b, d, "if ")

		b, err = formatExpr(b, st.Cond)
		if err != nil {
			return nil, errors.Wrap(err, "if condition")
		}

		b = append(b, " then\n"...)

		b, err = formatStmts(b, st.Then, d+1)
		if err != nil {
			return nil, err
		}

		if st.Else != nil {
			b = app(b, d, "else\n")

			b, err = formatStmts(b, st.Else, d+1)
			if err != nil {
				return nil, err
			}
		}

		b = app(b, d, "end\n")
	case ast.WhileStmt:
		b = app(b, d, "while ")

		b, err = formatExpr(b, st.Cond)
		if err != nil {
			return nil, errors.Wrap(err, "while condition")
		}

		b = append(b, " loop\n"...)

		b, err = formatStmts(b, st.Body, d+1)
		if err != nil {
			return nil, err
		}

		b = app(b, d, "end\n")
	case ast.ForLoop:
		dir := ""
		if st.Reverse {
			dir = "reverse "
		}

		b = app(b, d, "for %s in %s", st.Var, dir)

		b, err = formatExpr(b, st.Start)
		if err != nil {
			return nil, errors.Wrap(err, "for %v start", st.Var)
		}

		b = append(b, ".."...)

		b, err = formatExpr(b, st.End)
		if err != nil {
			return nil, errors.Wrap(err, "for %v end", st.Var)
		}

		b = append(b, " loop\n"...)

		b, err = formatStmts(b, st.Body, d+1)
		if err != nil {
			return nil, err
		}

		b = app(b, d, "end\n")
	case ast.PrintStmt:
		b = app(b, d, "print(")

		b, err = formatExpr(b, st.Expr)
		if err != nil {
			return nil, errors.Wrap(err, "print argument")
		}

		b = append(b, ")\n"...)
	case ast.ReadStmt:
		b = app(b, d, "read(%s)\n", st.Var)
	case ast.ReturnStmt:
		if st.Expr == nil {
			b = app(b, d, "return\n")
			break
		}

		b = app(b, d, "return ")

		b, err = formatExpr(b, st.Expr)
		if err != nil {
			return nil, errors.Wrap(err, "return value")
		}

		b = append(b, '\n')
	case ast.RoutineCallStmt:
		b = app(b, d, "%s(", st.Name)

		b, err = formatArgs(b, st.Args)
		if err != nil {
			return nil, errors.Wrap(err, "call %v", st.Name)
		}

		b = append(b, ")\n"...)
	default:
		return nil, errors.New("unsupported statement: %T", st)
	}

	return b, nil
}

func formatExpr(b []byte, e ast.Expression) (_ []byte, err error) {
	switch e := e.(type) {
	case ast.IntegerLit:
		b = hfmt.Appendf(b, "%d", e.Value)
	case ast.RealLit:
		b = hfmt.Appendf(b, "%v", e.Value)
	case ast.BooleanLit:
		b = hfmt.Appendf(b, "%v", e.Value)
	case ast.StringLit:
		b = hfmt.Appendf(b, "%q", e.Value)
	case ast.VarRef:
		b = append(b, e.Name...)
	case ast.ArrayAccess:
		b = hfmt.Appendf(b, "%s[", e.Name)

		b, err = formatExpr(b, e.Index)
		if err != nil {
			return nil, err
		}

		b = append(b, ']')
	case ast.RecordAccess:
		b, err = formatExpr(b, e.Record)
		if err != nil {
			return nil, err
		}

		b = hfmt.Appendf(b, ".%s", e.Field)
	case ast.Unary:
		b = append(b, string(e.Op)...)

		if e.Op == ast.OpNot {
			b = append(b, ' ')
		}

		b, err = formatExpr(b, e.Operand)
		if err != nil {
			return nil, err
		}
	case ast.Binary:
		b = append(b, '(')

		b, err = formatExpr(b, e.Left)
		if err != nil {
			return nil, err
		}

		b = hfmt.Appendf(b, " %s ", string(e.Op))

		b, err = formatExpr(b, e.Right)
		if err != nil {
			return nil, err
		}

		b = append(b, ')')
	case ast.RoutineCall:
		b = hfmt.Appendf(b, "%s(", e.Name)

		b, err = formatArgs(b, e.Args)
		if err != nil {
			return nil, errors.Wrap(err, "call %v", e.Name)
		}

		b = append(b, ')')
	case ast.TypeCast:
		b, err = formatExpr(b, e.Expr)
		if err != nil {
			return nil, err
		}

		b = append(b, " as "...)

		b, err = formatType(b, e.TargetType)
		if err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("unsupported expression: %T", e)
	}

	return b, nil
}

func formatArgs(b []byte, args []ast.Expression) (_ []byte, err error) {
	for i, a := range args {
		if i != 0 {
			b = append(b, ", "...)
		}

		b, err = formatExpr(b, a)
		if err != nil {
			return nil, err
		}
	}

	return b, nil
}

func formatType(b []byte, te ast.TypeExpr) (_ []byte, err error) {
	switch te := te.(type) {
	case ast.SimpleTypeExpr:
		b = append(b, te.Name...)
	case ast.ArrayTypeExpr:
		b = append(b, "array["...)

		b, err = formatExpr(b, te.Size)
		if err != nil {
			return nil, err
		}

		b = append(b, ']')

		b, err = formatType(b, te.Element)
		if err != nil {
			return nil, err
		}
	case ast.RecordTypeExpr:
		b = append(b, "record\n"...)

		for _, f := range te.Fields {
			b = hfmt.Appendf(b, "\tvar %s : ", f.Name)

			b, err = formatType(b, f.Type)
			if err != nil {
				return nil, errors.Wrap(err, "field %v", f.Name)
			}

			b = append(b, '\n')
		}

		b = append(b, "end"...)
	default:
		return nil, errors.New("unsupported type expression: %T", te)
	}

	return b, nil
}

func app(b []byte, d int, f string, args ...any) []byte {
	const tabs = "\t\t\t\t\t\t\t\t\t\t\t\t\t\t\t"
	b = append(b, tabs[:d]...)
	return hfmt.Appendf(b, f, args...)
}
