package codegen

import (
	"github.com/egorTorshin/IU-Compilers-Construction/compiler/ast"
	"github.com/egorTorshin/IU-Compilers-Construction/compiler/tp"
)

// resolveType re-derives the resolved type of a local VarDecl's type
// expression. By the time codegen runs, the program has already passed
// semantic analysis, so this never reports an error; it only needs the
// global type namespace, which (unlike local variable scopes) survives
// analysis, so a fresh top-down resolve is sufficient here without
// access to the analyzer's scope stack.
func (g *generator) resolveType(te ast.TypeExpr) tp.Type {
	switch te := te.(type) {
	case ast.SimpleTypeExpr:
		if typ, ok := g.table.LookupType(te.Name); ok {
			return typ
		}

		return tp.Void
	case ast.ArrayTypeExpr:
		lit, ok := te.Size.(ast.IntegerLit)
		if !ok {
			return tp.Void
		}

		return tp.Array{Element: g.resolveType(te.Element), Size: lit.Value}
	case ast.RecordTypeExpr:
		fields := make([]tp.Field, len(te.Fields))
		for i, f := range te.Fields {
			fields[i] = tp.Field{Name: f.Name, Type: g.resolveType(f.Type)}
		}

		return tp.Record{Fields: fields}
	default:
		return tp.Void
	}
}
