package sema

import (
	"context"
	"fmt"

	"github.com/egorTorshin/IU-Compilers-Construction/compiler/ast"
	"github.com/egorTorshin/IU-Compilers-Construction/compiler/diag"
	"github.com/egorTorshin/IU-Compilers-Construction/compiler/source"
	"github.com/egorTorshin/IU-Compilers-Construction/compiler/tp"
)

// resolveTypeExpr turns a parsed type expression into a resolved
// descriptor, looking up user type names through the symbol table's
// type namespace and validating array sizes and record field types.
func (a *Analyzer) resolveTypeExpr(te ast.TypeExpr) (tp.Type, error) {
	switch te := te.(type) {
	case ast.SimpleTypeExpr:
		typ, ok := a.table.LookupType(te.Name)
		if !ok {
			return nil, fmt.Errorf("Unknown type '%s'.", te.Name)
		}

		return typ, nil
	case ast.ArrayTypeExpr:
		lit, ok := te.Size.(ast.IntegerLit)
		if !ok {
			return nil, fmt.Errorf("Array size must be a constant integer.")
		}

		if lit.Value <= 0 {
			return nil, fmt.Errorf("Array size must be greater than zero.")
		}

		elem, err := a.resolveTypeExpr(te.Element)
		if err != nil {
			return nil, err
		}

		return tp.Array{Element: elem, Size: lit.Value}, nil
	case ast.RecordTypeExpr:
		fields := make([]tp.Field, len(te.Fields))

		for i, f := range te.Fields {
			ftyp, err := a.resolveTypeExpr(f.Type)
			if err != nil {
				return nil, fmt.Errorf("field '%s': %s", f.Name, err)
			}

			fields[i] = tp.Field{Name: f.Name, Type: ftyp}
		}

		return tp.Record{Fields: fields}, nil
	default:
		return nil, fmt.Errorf("unsupported type expression %T", te)
	}
}

// declareVar implements pass 3's per-declaration rules, shared with the
// local-declaration path inside routine bodies.
func (a *Analyzer) declareVar(ctx context.Context, vd ast.VarDecl) {
	typ, err := a.resolveTypeExpr(vd.Type)
	if err != nil {
		a.sink.Add(diag.Semantic, vd.Span(), "%s", err)
		return
	}

	if vd.Init != nil {
		initType := a.typeOf(ctx, vd.Init)

		if !tp.AssignableFrom(typ, initType) {
			a.sink.Add(diag.Semantic, vd.Span(),
				"Type mismatch: cannot initialize '%s' of type %s with %s.", vd.Name, typ, initType)
		}
	}

	if !a.table.DeclareVar(vd.Name, typ) {
		a.sink.Add(diag.Semantic, vd.Span(), "Variable %s already defined.", vd.Name)
	}
}

// typeOf computes the type of an expression, reporting any violation to
// the sink and returning tp.Void as a safe stand-in so that callers can
// keep checking without cascading a second diagnostic from the same
// root cause.
func (a *Analyzer) typeOf(ctx context.Context, e ast.Expression) tp.Type {
	switch e := e.(type) {
	case ast.IntegerLit:
		return tp.Integer
	case ast.RealLit:
		return tp.RealT
	case ast.BooleanLit:
		return tp.Boolean
	case ast.StringLit:
		return tp.String
	case ast.VarRef:
		typ, ok := a.table.LookupVar(e.Name)
		if !ok {
			a.sink.Add(diag.Semantic, e.Span(), "Undefined variable '%s'.", e.Name)
			return tp.Void
		}

		return typ
	case ast.ArrayAccess:
		return a.typeOfArrayAccess(ctx, e)
	case ast.RecordAccess:
		return a.typeOfRecordAccess(ctx, e)
	case ast.Unary:
		return a.typeOfUnary(ctx, e)
	case ast.Binary:
		return a.typeOfBinary(ctx, e)
	case ast.RoutineCall:
		return a.typeOfCall(ctx, e.Span(), e.Name, e.Args)
	case nil:
		return tp.Void
	case ast.TypeCast:
		return a.typeOfCast(ctx, e)
	default:
		a.sink.Add(diag.Semantic, e.Span(), "unsupported expression %T", e)
		return tp.Void
	}
}

func (a *Analyzer) typeOfArrayAccess(ctx context.Context, e ast.ArrayAccess) tp.Type {
	declared, ok := a.table.LookupVar(e.Name)
	if !ok {
		a.sink.Add(diag.Semantic, e.Span(), "Undefined variable '%s'.", e.Name)
		return tp.Void
	}

	arr, ok := declared.(tp.Array)
	if !ok {
		a.sink.Add(diag.Semantic, e.Span(), "'%s' is not an array.", e.Name)
		return tp.Void
	}

	idxType := a.typeOf(ctx, e.Index)
	if !tp.Equal(idxType, tp.Integer) {
		a.sink.Add(diag.Semantic, e.Span(), "Array index must be integer, got %s.", idxType)
	}

	a.checkConstIndex(e.Index, arr.Size)

	return arr.Element
}

func (a *Analyzer) typeOfRecordAccess(ctx context.Context, e ast.RecordAccess) tp.Type {
	ref, ok := e.Record.(ast.VarRef)
	if !ok {
		a.sink.Add(diag.Semantic, e.Span(), "invalid record access target")
		return tp.Void
	}

	declared, ok := a.table.LookupVar(ref.Name)
	if !ok {
		a.sink.Add(diag.Semantic, e.Span(), "Undefined variable '%s'.", ref.Name)
		return tp.Void
	}

	rec, ok := declared.(tp.Record)
	if !ok {
		a.sink.Add(diag.Semantic, e.Span(), "'%s' is not a record.", ref.Name)
		return tp.Void
	}

	ftyp, ok := rec.FieldType(e.Field)
	if !ok {
		a.sink.Add(diag.Semantic, e.Span(), "Field '%s' does not exist on '%s'.", e.Field, ref.Name)
		return tp.Void
	}

	return ftyp
}

// checkConstIndex enforces spec.md's array bounds rule exactly as the
// source behaves: the rejection test is "index > size", so index ==
// size is accepted. This is very likely an off-by-one relative to the
// declared "size" semantics; it is preserved intentionally for
// compatibility per spec.md §9's open question, rather than tightened
// to "index >= size".
func (a *Analyzer) checkConstIndex(idx ast.Expression, size int32) {
	lit, ok := idx.(ast.IntegerLit)
	if !ok {
		return
	}

	if lit.Value < 0 || lit.Value > size {
		a.sink.Add(diag.Semantic, idx.Span(), "Array index %d out of bounds (size %d).", lit.Value, size)
	}
}

func (a *Analyzer) typeOfUnary(ctx context.Context, e ast.Unary) tp.Type {
	operand := a.typeOf(ctx, e.Operand)

	switch e.Op {
	case ast.OpNot:
		if !tp.IsBoolean(operand) {
			a.sink.Add(diag.Semantic, e.Span(), "Type mismatch: 'not' requires boolean, got %s.", operand)
			return tp.Void
		}

		return tp.Boolean
	case ast.OpNeg:
		if !tp.IsNumeric(operand) {
			a.sink.Add(diag.Semantic, e.Span(), "Type mismatch: unary '-' requires a numeric operand, got %s.", operand)
			return tp.Void
		}

		return operand
	default:
		return tp.Void
	}
}

func (a *Analyzer) typeOfBinary(ctx context.Context, e ast.Binary) tp.Type {
	left := a.typeOf(ctx, e.Left)
	right := a.typeOf(ctx, e.Right)

	switch e.Op {
	case ast.OpAnd, ast.OpOr, ast.OpXor:
		if !tp.IsBoolean(left) || !tp.IsBoolean(right) {
			a.sink.Add(diag.Semantic, e.Span(), "Type mismatch: '%s' requires boolean operands.", e.Op)
			return tp.Void
		}

		return tp.Boolean
	case ast.OpEq, ast.OpNeq, ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		return tp.Boolean
	case ast.OpAdd:
		// Per spec.md §4.5, '+' concatenates to a string when either
		// operand is a string, lowered later as a StringBuilder chain;
		// otherwise it falls through to the numeric rule below.
		if tp.Equal(left, tp.String) || tp.Equal(right, tp.String) {
			return tp.String
		}

		fallthrough
	case ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod:
		if !tp.IsNumeric(left) || !tp.IsNumeric(right) {
			a.sink.Add(diag.Semantic, e.Span(), "Type mismatch: operator '%s' requires numeric operands, got %s and %s.", e.Op, left, right)
			return tp.Void
		}

		if tp.Equal(left, tp.Integer) && tp.Equal(right, tp.Integer) {
			return tp.Integer
		}

		return tp.RealT
	default:
		return tp.Void
	}
}

// typeOfCall implements the Call rule (spec.md §4.3) shared by
// expression-position calls and RoutineCallStmt.
func (a *Analyzer) typeOfCall(ctx context.Context, span source.Span, name string, args []ast.Expression) tp.Type {
	r, ok := a.table.LookupRoutine(name)
	if !ok {
		a.sink.Add(diag.Semantic, span, "Undefined routine '%s'.", name)

		for _, arg := range args {
			a.typeOf(ctx, arg)
		}

		return tp.Void
	}

	if len(args) != len(r.Params) {
		a.sink.Add(diag.Semantic, span,
			"Wrong number of arguments to '%s': expected %d, got %d.", name, len(r.Params), len(args))
	}

	for i, arg := range args {
		argType := a.typeOf(ctx, arg)

		if i < len(r.Params) && !tp.AssignableFrom(r.Params[i], argType) {
			a.sink.Add(diag.Semantic, arg.Span(),
				"Type mismatch: argument %d to '%s' expects %s, got %s.", i+1, name, r.Params[i], argType)
		}
	}

	return r.ReturnType
}

func (a *Analyzer) typeOfCast(ctx context.Context, e ast.TypeCast) tp.Type {
	from := a.typeOf(ctx, e.Expr)

	target, err := a.resolveTypeExpr(e.TargetType)
	if err != nil {
		a.sink.Add(diag.Semantic, e.Span(), "%s", err)
		return tp.Void
	}

	if !isCastable(from) || !isCastable(target) {
		a.sink.Add(diag.Semantic, e.Span(), "Invalid cast from %s to %s.", from, target)
		return target
	}

	return target
}

func isCastable(t tp.Type) bool {
	s, ok := t.(tp.Simple)
	if !ok {
		return false
	}

	switch s.Name {
	case tp.IntegerName, tp.RealName, tp.BooleanName:
		return true
	default:
		return false
	}
}
