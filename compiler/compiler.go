// Package compiler orchestrates the batch pipeline: lex, parse,
// analyze, optionally optimize, then generate assembly text. Each
// stage's failure is wrapped with the stage name, mirroring the
// teacher pipeline's errors.Wrap-per-stage discipline.
package compiler

import (
	"context"
	"os"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/egorTorshin/IU-Compilers-Construction/compiler/ast"
	"github.com/egorTorshin/IU-Compilers-Construction/compiler/codegen"
	"github.com/egorTorshin/IU-Compilers-Construction/compiler/diag"
	"github.com/egorTorshin/IU-Compilers-Construction/compiler/lexer"
	"github.com/egorTorshin/IU-Compilers-Construction/compiler/optimizer"
	"github.com/egorTorshin/IU-Compilers-Construction/compiler/parser"
	"github.com/egorTorshin/IU-Compilers-Construction/compiler/sema"
	"github.com/egorTorshin/IU-Compilers-Construction/compiler/source"
	"github.com/egorTorshin/IU-Compilers-Construction/compiler/symtab"
)

// Result is everything downstream consumers (the CLI, the external
// reporter) need from one successful compilation.
type Result struct {
	Program   *ast.Program
	Table     *symtab.Table
	Optimized optimizer.Result
	Output    codegen.Output
}

// CompileFile reads name from disk and compiles it. optimize selects
// whether the optimizer passes run before codegen, per
// compiler/config.Config.Optimize.
func CompileFile(ctx context.Context, name string, optimize bool) (*Result, error) {
	text, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file %v", name)
	}

	tlog.SpanFromContext(ctx).Printw("read file", "name", name, "size", len(text))

	return Compile(ctx, name, text, optimize)
}

// Compile runs the full pipeline over in-memory source text.
func Compile(ctx context.Context, name string, text []byte, optimize bool) (*Result, error) {
	sink := diag.New()
	file := source.NewFile(name, text)

	toks := lexer.New(file, sink).All(ctx)
	if !sink.Empty() {
		return nil, errors.Wrap(sink.Err(), "lex %v", name)
	}

	prog, err := parser.New(toks, sink).ParseProgram(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "parse %v", name)
	}

	if !sink.Empty() {
		return nil, errors.Wrap(sink.Err(), "parse %v", name)
	}

	table := sema.Analyze(ctx, prog, sink)
	if !sink.Empty() {
		return nil, errors.Wrap(sink.Err(), "analyze %v", name)
	}

	res := optimizer.Result{Program: prog}
	if optimize {
		res = optimizer.Optimize(ctx, prog)
	}

	out, err := codegen.Generate(ctx, res.Program, table)
	if err != nil {
		return nil, errors.Wrap(err, "generate code for %v", name)
	}

	tlog.SpanFromContext(ctx).Printw("compiled", "name", name, "units", len(out.Records)+1)

	return &Result{Program: res.Program, Table: table, Optimized: res, Output: out}, nil
}
