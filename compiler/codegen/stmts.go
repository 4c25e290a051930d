package codegen

import (
	"github.com/nikandfor/hacked/hfmt"

	"github.com/egorTorshin/IU-Compilers-Construction/compiler/ast"
	"github.com/egorTorshin/IU-Compilers-Construction/compiler/tp"
)

func (m *methodGen) emitStmts(stmts []ast.Statement) []byte {
	var b []byte

	for _, st := range stmts {
		b = append(b, m.emitStmt(st)...)
	}

	return b
}

func (m *methodGen) emitStmt(st ast.Statement) []byte {
	switch st := st.(type) {
	case ast.VarDecl:
		return m.emitVarDecl(st)
	case ast.Assignment:
		return m.emitAssignment(st)
	case ast.IfStmt:
		return m.emitIf(st)
	case ast.WhileStmt:
		return m.emitWhile(st)
	case ast.ForLoop:
		return m.emitFor(st)
	case ast.PrintStmt:
		return m.emitPrint(st)
	case ast.ReadStmt:
		return m.emitRead(st)
	case ast.ReturnStmt:
		return m.emitReturn(st)
	case ast.RoutineCallStmt:
		return m.emitCallStmt(st)
	case ast.TypeDecl:
		return nil // type declarations carry no runtime instructions
	default:
		return nil
	}
}

func (m *methodGen) emitVarDecl(vd ast.VarDecl) []byte {
	if vd.Init == nil {
		return nil
	}

	var b []byte

	b = append(b, m.emitExpr(vd.Init)...)
	b = append(b, m.emitStore(vd.Name)...)

	return b
}

func (m *methodGen) emitAssignment(a ast.Assignment) []byte {
	switch {
	case a.Index != nil:
		var b []byte

		b = append(b, m.emitLoad(a.Target)...)
		b = append(b, m.emitExpr(a.Index)...)
		b = append(b, m.emitExpr(a.Value)...)

		elem := tp.Type(tp.Void)
		if arr, ok := m.typeOfName(a.Target).(tp.Array); ok {
			elem = arr.Element
		}

		b = append(b, arrayStoreOp(elem)...)

		return b
	case a.Field != "":
		var b []byte

		rec, _ := m.typeOfName(a.Target).(tp.Record)

		ftyp, owner := tp.Type(tp.Void), "Record"

		if v, ok := rec.FieldType(a.Field); ok {
			ftyp = v
			owner = m.g.recordName(rec)
		}

		b = append(b, m.emitLoad(a.Target)...)
		b = append(b, m.emitExpr(a.Value)...)
		b = append(b, hfmt.Appendf(nil, "\tputfield %s/%s %s\n", owner, a.Field, m.g.descriptor(ftyp))...)

		return b
	default:
		var b []byte

		b = append(b, m.emitExpr(a.Value)...)
		b = append(b, m.emitStore(a.Target)...)

		return b
	}
}

func (m *methodGen) emitIf(st ast.IfStmt) []byte {
	elseLabel, endLabel := m.newLabel(), m.newLabel()

	var b []byte

	b = append(b, m.emitExpr(st.Cond)...)
	b = append(b, hfmt.Appendf(nil, "\tifeq %s\n", elseLabel)...)
	b = append(b, m.emitStmts(st.Then)...)

	if st.Else != nil {
		b = append(b, hfmt.Appendf(nil, "\tgoto %s\n", endLabel)...)
		b = append(b, hfmt.Appendf(nil, "%s:\n", elseLabel)...)
		b = append(b, m.emitStmts(st.Else)...)
		b = append(b, hfmt.Appendf(nil, "%s:\n", endLabel)...)
	} else {
		b = append(b, hfmt.Appendf(nil, "%s:\n", elseLabel)...)
	}

	return b
}

func (m *methodGen) emitWhile(st ast.WhileStmt) []byte {
	startLabel, endLabel := m.newLabel(), m.newLabel()

	var b []byte

	b = append(b, hfmt.Appendf(nil, "%s:\n", startLabel)...)
	b = append(b, m.emitExpr(st.Cond)...)
	b = append(b, hfmt.Appendf(nil, "\tifeq %s\n", endLabel)...)
	b = append(b, m.emitStmts(st.Body)...)
	b = append(b, hfmt.Appendf(nil, "\tgoto %s\n", startLabel)...)
	b = append(b, hfmt.Appendf(nil, "%s:\n", endLabel)...)

	return b
}

// emitFor lowers a for-loop by re-evaluating the end bound on every
// iteration rather than caching it in a temporary slot; the language
// has no expression side effects that a repeated evaluation could
// observably duplicate other than a routine call, which is rare in
// loop bounds and left as a known simplification.
func (m *methodGen) emitFor(st ast.ForLoop) []byte {
	startLabel, endLabel := m.newLabel(), m.newLabel()
	slot := m.slots.slot(st.Var)

	var b []byte

	b = append(b, m.emitExpr(st.Start)...)
	b = append(b, hfmt.Appendf(nil, "\tistore %d\n", slot)...)
	b = append(b, hfmt.Appendf(nil, "%s:\n", startLabel)...)
	b = append(b, hfmt.Appendf(nil, "\tiload %d\n", slot)...)
	b = append(b, m.emitExpr(st.End)...)

	if st.Reverse {
		b = append(b, hfmt.Appendf(nil, "\tif_icmplt %s\n", endLabel)...)
	} else {
		b = append(b, hfmt.Appendf(nil, "\tif_icmpgt %s\n", endLabel)...)
	}

	b = append(b, m.emitStmts(st.Body)...)
	b = append(b, hfmt.Appendf(nil, "\tiload %d\n", slot)...)

	if st.Reverse {
		b = append(b, "\ticonst_1\n\tisub\n"...)
	} else {
		b = append(b, "\ticonst_1\n\tiadd\n"...)
	}

	b = append(b, hfmt.Appendf(nil, "\tistore %d\n", slot)...)
	b = append(b, hfmt.Appendf(nil, "\tgoto %s\n", startLabel)...)
	b = append(b, hfmt.Appendf(nil, "%s:\n", endLabel)...)

	return b
}

func (m *methodGen) emitPrint(st ast.PrintStmt) []byte {
	var b []byte

	b = append(b, "\tgetstatic java/lang/System/out Ljava/io/PrintStream;\n"...)
	b = append(b, m.emitExpr(st.Expr)...)
	b = append(b, hfmt.Appendf(nil, "\tinvokevirtual java/io/PrintStream/println(%s)V\n", printSignature(m.typeOf(st.Expr)))...)

	return b
}

func printSignature(t tp.Type) string {
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

// emitRead invokes a runtime input helper matching the target
// variable's type. The helper class (Runtime) is the one piece of
// generated code's runtime support spec.md §6 leaves outside the
// batch-compiled program itself, alongside the assembler and archiver.
func (m *methodGen) emitRead(st ast.ReadStmt) []byte {
	typ := m.typeOfName(st.Var)

	var b []byte

	switch t := typ.(type) {
	case tp.Simple:
		switch t.Name {
		case tp.IntegerName:
			b = append(b, "\tinvokestatic Runtime/readInt()I\n"...)
		case tp.BooleanName:
			b = append(b, "\tinvokestatic Runtime/readBoolean()Z\n"...)
		case tp.RealName:
			b = append(b, "\tinvokestatic Runtime/readReal()D\n"...)
		case tp.StringName:
			b = append(b, "\tinvokestatic Runtime/readString()Ljava/lang/String;\n"...)
		}
	}

	b = append(b, m.emitStore(st.Var)...)

	return b
}

func (m *methodGen) emitReturn(st ast.ReturnStmt) []byte {
	if st.Expr == nil {
		return []byte("\treturn\n")
	}

	var b []byte

	b = append(b, m.emitExpr(st.Expr)...)
	b = append(b, returnOp(m.typeOf(st.Expr))...)

	return b
}

func returnOp(t tp.Type) string {
	switch t := t.(type) {
	case tp.Simple:
		switch t.Name {
		case tp.IntegerName, tp.BooleanName:
			return "\tireturn\n"
		case tp.RealName:
			return "\tdreturn\n"
		default:
			return "\tareturn\n"
		}
	default:
		return "\tareturn\n"
	}
}

func (m *methodGen) emitCallStmt(st ast.RoutineCallStmt) []byte {
	r, ok := m.g.table.LookupRoutine(st.Name)
	if !ok {
		return nil
	}

	var b []byte

	for _, arg := range st.Args {
		b = append(b, m.emitExpr(arg)...)
	}

	b = append(b, hfmt.Appendf(nil, "\tinvokestatic Main/%s%s\n", st.Name, m.g.methodDescriptor(r.Params, r.ReturnType))...)

	if slotWidth(r.ReturnType) == 2 {
		b = append(b, "\tpop2\n"...)
	} else if !tp.Equal(r.ReturnType, tp.Void) {
		b = append(b, "\tpop\n"...)
	}

	return b
}
