package codegen

import (
	"strings"

	"github.com/egorTorshin/IU-Compilers-Construction/compiler/tp"
)

// descriptor renders t using the JVM-like type descriptors spec.md §4.5
// names explicitly: I integer, Z boolean, D real, Ljava/lang/String;
// string, L<Name>; record, [<elem> array. Record types carry no name of
// their own once resolved, so rendering one goes through the
// generator's name table built from the program's TypeDecls.
func (g *generator) descriptor(t tp.Type) string {
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
		case tp.VoidName:
			return "V"
		default:
			return "L" + t.Name + ";"
		}
	case tp.Array:
		return "[" + g.descriptor(t.Element)
	case tp.Record:
		return "L" + g.recordName(t) + ";"
	default:
		return "V"
	}
}

// methodDescriptor renders a routine's full (<params>)<return> descriptor.
func (g *generator) methodDescriptor(params []tp.Type, ret tp.Type) string {
	var sb strings.Builder

	sb.WriteByte('(')

	for _, p := range params {
		sb.WriteString(g.descriptor(p))
	}

	sb.WriteByte(')')
	sb.WriteString(g.descriptor(ret))

	return sb.String()
}

// slotWidth reports how many local-variable slots t occupies: reals take
// two consecutive indices, everything else takes one, per spec.md §4.5.
func slotWidth(t tp.Type) int {
	if s, ok := t.(tp.Simple); ok && s.Name == tp.RealName {
		return 2
	}

	return 1
}

// newarrayTag is the primitive array-element tag consumed by the
// emitted "newarray" instruction for non-reference element types; it
// mirrors the Jasmin/JVM newarray operand table.
func newarrayTag(t tp.Type) string {
	s, ok := t.(tp.Simple)
	if !ok {
		return ""
	}

	switch s.Name {
	case tp.IntegerName:
		return "int"
	case tp.BooleanName:
		return "boolean"
	case tp.RealName:
		return "double"
	default:
		return ""
	}
}
