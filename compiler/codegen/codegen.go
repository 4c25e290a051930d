// Package codegen lowers an optimized AST to the line-oriented,
// Jasmin/JVM-like textual assembly dialect described in spec.md §4.5:
// one record unit per user-declared record type, plus a "Main"
// translation unit carrying static fields, a default initializer, one
// method per routine, and a main method. Emission accumulates into
// []byte buffers via hfmt.Appendf, following the teacher's
// compiler/format.Format and compiler/back text-emission style rather
// than building an intermediate instruction tree.
package codegen

import (
	"context"
	"sort"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/egorTorshin/IU-Compilers-Construction/compiler/ast"
	"github.com/egorTorshin/IU-Compilers-Construction/compiler/symtab"
	"github.com/egorTorshin/IU-Compilers-Construction/compiler/tp"
)

// Output is the full set of translation units produced for one program:
// the main unit and one unit per user-declared record type, keyed by
// record name. Each value is ready to be written to "<key>.j".
type Output struct {
	MainUnit []byte
	Records  map[string][]byte
}

// Generate lowers prog (already optimized) into Output, using table for
// name resolution (global variable and routine and record type
// descriptors were already validated by the semantic analyzer; codegen
// trusts that work and never re-reports a type error).
func Generate(ctx context.Context, prog *ast.Program, table *symtab.Table) (Output, error) {
	g := &generator{table: table, recordsByName: map[string]tp.Record{}}

	out := Output{Records: map[string][]byte{}}

	for _, st := range prog.Statements {
		td, ok := st.(ast.TypeDecl)
		if !ok {
			continue
		}

		typ, ok := table.LookupType(td.Name)
		if !ok {
			continue
		}

		if rec, ok := typ.(tp.Record); ok {
			g.recordsByName[td.Name] = rec
		}
	}

	for name, rec := range g.recordsByName {
		out.Records[name] = g.emitRecordUnit(name, rec)
	}

	mainUnit, err := g.emitMainUnit(ctx, prog)
	if err != nil {
		return Output{}, errors.Wrap(err, "emit main unit")
	}

	out.MainUnit = mainUnit

	tlog.SpanFromContext(ctx).Printw("codegen done", "records", len(out.Records), "bytes", len(out.MainUnit))

	return out, nil
}

type generator struct {
	table *symtab.Table

	// recordsByName lets descriptor() recover the "L<Name>;" spelling
	// for a structurally-resolved tp.Record, which carries no name of
	// its own once resolved.
	recordsByName map[string]tp.Record
}

// recordName finds the TypeDecl name a resolved record type was
// declared under. Anonymous record types (used inline rather than via
// a named TypeDecl) have no such name; "Record" is used as a fallback
// so generation still produces well-formed, if unresolvable, output.
func (g *generator) recordName(rec tp.Record) string {
	for name, r := range g.recordsByName {
		if tp.Equal(r, rec) {
			return name
		}
	}

	return "Record"
}

// emitRecordUnit emits a minimal class carrying one public field per
// record field and a no-arg constructor, per spec.md §4.5's "default
// constructor" requirement for record allocation.
func (g *generator) emitRecordUnit(name string, rec tp.Record) []byte {
	var b []byte

	b = hfmt.Appendf(b, ".class public %s\n.super java/lang/Object\n\n", name)

	for _, f := range rec.Fields {
		b = hfmt.Appendf(b, ".field public %s %s\n", f.Name, g.descriptor(f.Type))
	}

	b = append(b, '\n')
	b = append(b, ".method public <init>()V\n\t.limit stack 2\n\t.limit locals 1\n\taload_0\n\tinvokespecial java/lang/Object/<init>()V\n"...)

	for _, f := range rec.Fields {
		b = append(b, g.defaultFieldInit(name, f)...)
	}

	b = append(b, "\treturn\n.end method\n"...)

	return b
}

func (g *generator) defaultFieldInit(owner string, f tp.Field) []byte {
	if _, ok := f.Type.(tp.Record); ok {
		return nil // nested records default to null, matching the JVM's own field default
	}

	var b []byte

	b = append(b, "\taload_0\n"...)
	b = append(b, pushDefault(f.Type)...)
	b = hfmt.Appendf(b, "\tputfield %s/%s %s\n", owner, f.Name, g.descriptor(f.Type))

	return b
}

func pushDefault(t tp.Type) []byte {
	switch t := t.(type) {
	case tp.Simple:
		switch t.Name {
		case tp.IntegerName, tp.BooleanName:
			return []byte("\ticonst_0\n")
		case tp.RealName:
			return []byte("\tdconst_0\n")
		case tp.StringName:
			return []byte("\tldc \"\"\n")
		}
	case tp.Array:
		return []byte("\taconst_null\n")
	}

	return []byte("\taconst_null\n")
}

// emitMainUnit emits the "Main" class: static fields, <clinit>, one
// method per routine and a main method.
func (g *generator) emitMainUnit(ctx context.Context, prog *ast.Program) ([]byte, error) {
	var b []byte

	b = append(b, ".class public Main\n.super java/lang/Object\n\n"...)

	globals := g.globalVars(prog)

	for _, name := range sortedKeys(globals) {
		b = hfmt.Appendf(b, ".field static %s %s\n", name, g.descriptor(globals[name]))
	}

	b = append(b, '\n')
	b = append(b, g.emitClinit(globals)...)

	var mainRoutine *ast.RoutineDecl

	for i := range prog.Statements {
		rd, ok := prog.Statements[i].(ast.RoutineDecl)
		if !ok {
			continue
		}

		if rd.Name == "main" {
			rd := rd
			mainRoutine = &rd

			if isVoidMain(g, rd) {
				continue
			}
		}

		out, err := g.emitRoutine(rd, globals)
		if err != nil {
			return nil, errors.Wrap(err, "routine %s", rd.Name)
		}

		b = append(b, '\n')
		b = append(b, out...)
	}

	mainBody, err := g.emitMainMethod(mainRoutine, prog, globals)
	if err != nil {
		return nil, errors.Wrap(err, "main method")
	}

	b = append(b, '\n')
	b = append(b, mainBody...)

	return b, nil
}

func (g *generator) globalVars(prog *ast.Program) map[string]tp.Type {
	globals := map[string]tp.Type{}

	for _, st := range prog.Statements {
		vd, ok := st.(ast.VarDecl)
		if !ok {
			continue
		}

		if typ, ok := g.table.LookupVar(vd.Name); ok {
			globals[vd.Name] = typ
		}
	}

	return globals
}

func sortedKeys(m map[string]tp.Type) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

// emitClinit zero-initializes every static field, allocating record
// instances via their default constructor and fixed-size arrays via
// newarray, per spec.md §4.5.
func (g *generator) emitClinit(globals map[string]tp.Type) []byte {
	var b []byte

	b = append(b, ".method static <clinit>()V\n\t.limit stack 4\n\t.limit locals 0\n"...)

	for _, name := range sortedKeys(globals) {
		typ := globals[name]

		switch t := typ.(type) {
		case tp.Record:
			rn := g.recordName(t)
			b = hfmt.Appendf(b, "\tnew %s\n\tdup\n\tinvokespecial %s/<init>()V\n\tputstatic Main/%s %s\n",
				rn, rn, name, g.descriptor(typ))
		case tp.Array:
			b = hfmt.Appendf(b, "\tbipush %d\n", t.Size)

			if tag := newarrayTag(t.Element); tag != "" {
				b = hfmt.Appendf(b, "\tnewarray %s\n", tag)
			} else {
				b = hfmt.Appendf(b, "\tanewarray %s\n", g.descriptor(t.Element))
			}

			b = hfmt.Appendf(b, "\tputstatic Main/%s %s\n", name, g.descriptor(typ))
		default:
			b = append(b, pushDefault(typ)...)
			b = hfmt.Appendf(b, "\tputstatic Main/%s %s\n", name, g.descriptor(typ))
		}
	}

	b = append(b, "\treturn\n.end method\n"...)

	return b
}
