package codegen

import (
	"github.com/nikandfor/hacked/hfmt"

	"github.com/egorTorshin/IU-Compilers-Construction/compiler/ast"
	"github.com/egorTorshin/IU-Compilers-Construction/compiler/tp"
)

// typeOf re-derives an expression's resolved type using the method's
// own variable table (locals, params) and the program's globals.
// Semantic analysis already validated the program, so this never
// reports an error and defaults to tp.Void on anything it cannot
// resolve, matching the analyzer's own "safe stand-in" convention.
func (m *methodGen) typeOf(e ast.Expression) tp.Type {
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
		return m.typeOfName(e.Name)
	case ast.ArrayAccess:
		if arr, ok := m.typeOfName(e.Name).(tp.Array); ok {
			return arr.Element
		}

		return tp.Void
	case ast.RecordAccess:
		if ref, ok := e.Record.(ast.VarRef); ok {
			if rec, ok := m.typeOfName(ref.Name).(tp.Record); ok {
				if ftyp, ok := rec.FieldType(e.Field); ok {
					return ftyp
				}
			}
		}

		return tp.Void
	case ast.Unary:
		return m.typeOf(e.Operand)
	case ast.Binary:
		return m.typeOfBinary(e)
	case ast.RoutineCall:
		if r, ok := m.g.table.LookupRoutine(e.Name); ok {
			return r.ReturnType
		}

		return tp.Void
	case ast.TypeCast:
		return m.g.resolveType(e.TargetType)
	default:
		return tp.Void
	}
}

func (m *methodGen) typeOfBinary(e ast.Binary) tp.Type {
	switch e.Op {
	case ast.OpAnd, ast.OpOr, ast.OpXor, ast.OpEq, ast.OpNeq, ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		return tp.Boolean
	case ast.OpAdd:
		l, r := m.typeOf(e.Left), m.typeOf(e.Right)
		if tp.Equal(l, tp.String) || tp.Equal(r, tp.String) {
			return tp.String
		}

		return arithResult(l, r)
	default:
		return arithResult(m.typeOf(e.Left), m.typeOf(e.Right))
	}
}

func arithResult(l, r tp.Type) tp.Type {
	if tp.Equal(l, tp.Integer) && tp.Equal(r, tp.Integer) {
		return tp.Integer
	}

	return tp.RealT
}

func (m *methodGen) typeOfName(name string) tp.Type {
	if t, ok := m.vars[name]; ok {
		return t
	}

	if t, ok := m.globals[name]; ok {
		return t
	}

	return tp.Void
}

// emitExpr lowers e, leaving exactly one value on the operand stack.
func (m *methodGen) emitExpr(e ast.Expression) []byte {
	switch e := e.(type) {
	case ast.IntegerLit:
		return hfmt.Appendf(nil, "\tldc %d\n", e.Value)
	case ast.RealLit:
		return hfmt.Appendf(nil, "\tldc2_w %g\n", e.Value)
	case ast.BooleanLit:
		if e.Value {
			return []byte("\ticonst_1\n")
		}

		return []byte("\ticonst_0\n")
	case ast.StringLit:
		return hfmt.Appendf(nil, "\tldc %q\n", e.Value)
	case ast.VarRef:
		return m.emitLoad(e.Name)
	case ast.ArrayAccess:
		return m.emitArrayLoad(e)
	case ast.RecordAccess:
		return m.emitRecordLoad(e)
	case ast.Unary:
		return m.emitUnary(e)
	case ast.Binary:
		return m.emitBinary(e)
	case ast.RoutineCall:
		return m.emitCall(e)
	case ast.TypeCast:
		return m.emitCast(e)
	default:
		return nil
	}
}

func (m *methodGen) emitLoad(name string) []byte {
	typ := m.typeOfName(name)

	if slot := m.slots.slot(name); slot >= 0 {
		return hfmt.Appendf(nil, "\t%s %d\n", loadOp(typ), slot)
	}

	return hfmt.Appendf(nil, "\tgetstatic Main/%s %s\n", name, m.g.descriptor(typ))
}

func (m *methodGen) emitStore(name string) []byte {
	typ := m.typeOfName(name)

	if slot := m.slots.slot(name); slot >= 0 {
		return hfmt.Appendf(nil, "\t%s %d\n", storeOp(typ), slot)
	}

	return hfmt.Appendf(nil, "\tputstatic Main/%s %s\n", name, m.g.descriptor(typ))
}

func loadOp(t tp.Type) string {
	switch t := t.(type) {
	case tp.Simple:
		switch t.Name {
		case tp.IntegerName, tp.BooleanName:
			return "iload"
		case tp.RealName:
			return "dload"
		default:
			return "aload"
		}
	default:
		return "aload"
	}
}

func storeOp(t tp.Type) string {
	switch t := t.(type) {
	case tp.Simple:
		switch t.Name {
		case tp.IntegerName, tp.BooleanName:
			return "istore"
		case tp.RealName:
			return "dstore"
		default:
			return "astore"
		}
	default:
		return "astore"
	}
}

func (m *methodGen) emitArrayLoad(e ast.ArrayAccess) []byte {
	var b []byte

	b = append(b, m.emitLoad(e.Name)...)
	b = append(b, m.emitExpr(e.Index)...)

	elem := tp.Type(tp.Void)
	if arr, ok := m.typeOfName(e.Name).(tp.Array); ok {
		elem = arr.Element
	}

	b = append(b, arrayLoadOp(elem)...)

	return b
}

func arrayLoadOp(t tp.Type) []byte {
	switch t := t.(type) {
	case tp.Simple:
		switch t.Name {
		case tp.IntegerName, tp.BooleanName:
			return []byte("\tiaload\n")
		case tp.RealName:
			return []byte("\tdaload\n")
		default:
			return []byte("\taaload\n")
		}
	default:
		return []byte("\taaload\n")
	}
}

func arrayStoreOp(t tp.Type) []byte {
	switch t := t.(type) {
	case tp.Simple:
		switch t.Name {
		case tp.IntegerName, tp.BooleanName:
			return []byte("\tiastore\n")
		case tp.RealName:
			return []byte("\tdastore\n")
		default:
			return []byte("\taastore\n")
		}
	default:
		return []byte("\taastore\n")
	}
}

func (m *methodGen) emitRecordLoad(e ast.RecordAccess) []byte {
	ref, ok := e.Record.(ast.VarRef)
	if !ok {
		return nil
	}

	rec, _ := m.typeOfName(ref.Name).(tp.Record)

	ftyp, owner := tp.Type(tp.Void), "Record"

	if v, ok := rec.FieldType(e.Field); ok {
		ftyp = v
		owner = m.g.recordName(rec)
	}

	var b []byte

	b = append(b, m.emitLoad(ref.Name)...)
	b = append(b, hfmt.Appendf(nil, "\tgetfield %s/%s %s\n", owner, e.Field, m.g.descriptor(ftyp))...)

	return b
}

func (m *methodGen) emitUnary(e ast.Unary) []byte {
	var b []byte

	b = append(b, m.emitExpr(e.Operand)...)

	switch e.Op {
	case ast.OpNeg:
		if tp.Equal(m.typeOf(e.Operand), tp.RealT) {
			b = append(b, "\tdneg\n"...)
		} else {
			b = append(b, "\tineg\n"...)
		}
	case ast.OpNot:
		b = append(b, "\ticonst_1\n\tixor\n"...)
	}

	return b
}

func (m *methodGen) emitBinary(e ast.Binary) []byte {
	if e.Op == ast.OpAdd {
		lt, rt := m.typeOf(e.Left), m.typeOf(e.Right)
		if tp.Equal(lt, tp.String) || tp.Equal(rt, tp.String) {
			return m.emitConcat(e)
		}
	}

	switch e.Op {
	case ast.OpAnd:
		return m.appendBoth(e, "\tiand\n")
	case ast.OpOr:
		return m.appendBoth(e, "\tior\n")
	case ast.OpXor:
		return m.appendBoth(e, "\tixor\n")
	case ast.OpEq, ast.OpNeq, ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		return m.emitComparison(e)
	default:
		return m.emitArith(e)
	}
}

func (m *methodGen) appendBoth(e ast.Binary, op string) []byte {
	var b []byte
	b = append(b, m.emitExpr(e.Left)...)
	b = append(b, m.emitExpr(e.Right)...)
	b = append(b, op...)

	return b
}

func (m *methodGen) emitArith(e ast.Binary) []byte {
	isReal := tp.Equal(m.typeOfBinary(e), tp.RealT)

	var b []byte

	b = append(b, m.emitExpr(e.Left)...)

	if isReal && tp.Equal(m.typeOf(e.Left), tp.Integer) {
		b = append(b, "\ti2d\n"...)
	}

	b = append(b, m.emitExpr(e.Right)...)

	if isReal && tp.Equal(m.typeOf(e.Right), tp.Integer) {
		b = append(b, "\ti2d\n"...)
	}

	b = append(b, arithOp(e.Op, isReal)...)

	return b
}

func arithOp(op ast.BinaryOp, isReal bool) string {
	table := map[ast.BinaryOp][2]string{
		ast.OpAdd: {"\tiadd\n", "\tdadd\n"},
		ast.OpSub: {"\tisub\n", "\tdsub\n"},
		ast.OpMul: {"\timul\n", "\tdmul\n"},
		ast.OpDiv: {"\tidiv\n", "\tddiv\n"},
		ast.OpMod: {"\tirem\n", "\tdrem\n"},
	}

	pair, ok := table[op]
	if !ok {
		return ""
	}

	if isReal {
		return pair[1]
	}

	return pair[0]
}

// emitComparison lowers a comparison to a 0/1 integer value via a
// branch-and-constant-push idiom, since the target has no direct
// compare-and-push-boolean instruction for either operand type.
func (m *methodGen) emitComparison(e ast.Binary) []byte {
	operandIsReal := tp.Equal(m.typeOf(e.Left), tp.RealT) || tp.Equal(m.typeOf(e.Right), tp.RealT)

	var b []byte

	b = append(b, m.emitExpr(e.Left)...)

	if operandIsReal && tp.Equal(m.typeOf(e.Left), tp.Integer) {
		b = append(b, "\ti2d\n"...)
	}

	b = append(b, m.emitExpr(e.Right)...)

	if operandIsReal && tp.Equal(m.typeOf(e.Right), tp.Integer) {
		b = append(b, "\ti2d\n"...)
	}

	trueLabel, endLabel := m.newLabel(), m.newLabel()

	if operandIsReal {
		b = append(b, "\tdcmpg\n"...)
		b = append(b, hfmt.Appendf(nil, "\t%s %s\n", realCmpOp(e.Op), trueLabel)...)
	} else {
		b = append(b, hfmt.Appendf(nil, "\t%s %s\n", intCmpOp(e.Op), trueLabel)...)
	}

	b = append(b, "\ticonst_0\n"...)
	b = append(b, hfmt.Appendf(nil, "\tgoto %s\n", endLabel)...)
	b = append(b, hfmt.Appendf(nil, "%s:\n\ticonst_1\n", trueLabel)...)
	b = append(b, hfmt.Appendf(nil, "%s:\n", endLabel)...)

	return b
}

func intCmpOp(op ast.BinaryOp) string {
	switch op {
	case ast.OpEq:
		return "if_icmpeq"
	case ast.OpNeq:
		return "if_icmpne"
	case ast.OpLt:
		return "if_icmplt"
	case ast.OpLe:
		return "if_icmple"
	case ast.OpGt:
		return "if_icmpgt"
	case ast.OpGe:
		return "if_icmpge"
	default:
		return "if_icmpeq"
	}
}

func realCmpOp(op ast.BinaryOp) string {
	switch op {
	case ast.OpEq:
		return "ifeq"
	case ast.OpNeq:
		return "ifne"
	case ast.OpLt:
		return "iflt"
	case ast.OpLe:
		return "ifle"
	case ast.OpGt:
		return "ifgt"
	case ast.OpGe:
		return "ifge"
	default:
		return "ifeq"
	}
}

// emitConcat implements spec.md §4.5's string-concatenation lowering:
// a StringBuilder allocation, one type-specific append per flattened
// operand (left-first), and a final toString call.
func (m *methodGen) emitConcat(e ast.Binary) []byte {
	operands := m.flattenConcat(e)

	var b []byte

	b = append(b, "\tnew java/lang/StringBuilder\n\tdup\n\tinvokespecial java/lang/StringBuilder/<init>()V\n"...)

	for _, operand := range operands {
		b = append(b, m.emitExpr(operand)...)
		b = append(b, hfmt.Appendf(nil, "\tinvokevirtual java/lang/StringBuilder/append(%s)Ljava/lang/StringBuilder;\n",
			appendSignature(m.typeOf(operand)))...)
	}

	b = append(b, "\tinvokevirtual java/lang/StringBuilder/toString()Ljava/lang/String;\n"...)

	return b
}

func (m *methodGen) flattenConcat(e ast.Expression) []ast.Expression {
	b, ok := e.(ast.Binary)
	if !ok || b.Op != ast.OpAdd {
		return []ast.Expression{e}
	}

	if !tp.Equal(m.typeOf(b.Left), tp.String) && !tp.Equal(m.typeOf(b.Right), tp.String) {
		return []ast.Expression{e}
	}

	var out []ast.Expression
	out = append(out, m.flattenConcat(b.Left)...)
	out = append(out, m.flattenConcat(b.Right)...)

	return out
}

func appendSignature(t tp.Type) string {
	switch t := t.(type) {
	case tp.Simple:
		switch t.Name {
		case tp.IntegerName:
			return "I"
		case tp.BooleanName:
			return "Z"
		case tp.RealName:
			return "D"
		case tp.StringName:
			return "Ljava/lang/String;"
		default:
			return "Ljava/lang/Object;"
		}
	default:
		return "Ljava/lang/Object;"
	}
}

func (m *methodGen) emitCall(e ast.RoutineCall) []byte {
	r, ok := m.g.table.LookupRoutine(e.Name)
	if !ok {
		return nil
	}

	var b []byte

	for _, arg := range e.Args {
		b = append(b, m.emitExpr(arg)...)
	}

	b = append(b, hfmt.Appendf(nil, "\tinvokestatic Main/%s%s\n", e.Name, m.g.methodDescriptor(r.Params, r.ReturnType))...)

	return b
}

func (m *methodGen) emitCast(e ast.TypeCast) []byte {
	from := m.typeOf(e.Expr)
	to := m.g.resolveType(e.TargetType)

	var b []byte

	b = append(b, m.emitExpr(e.Expr)...)

	switch {
	case tp.Equal(from, tp.Integer) && tp.Equal(to, tp.RealT):
		b = append(b, "\ti2d\n"...)
	case tp.Equal(from, tp.RealT) && tp.Equal(to, tp.Integer):
		b = append(b, "\td2i\n"...)
	case tp.Equal(from, tp.RealT) && tp.Equal(to, tp.Boolean):
		b = append(b, "\td2i\n"...)
	case tp.Equal(from, tp.Boolean) && tp.Equal(to, tp.RealT):
		b = append(b, "\ti2d\n"...)
	}
	// integer<->boolean casts are a no-op: both are represented as a
	// single-word 0/1 integer on this target.

	return b
}
