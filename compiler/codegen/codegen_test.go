package codegen

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/egorTorshin/IU-Compilers-Construction/compiler/diag"
	"github.com/egorTorshin/IU-Compilers-Construction/compiler/lexer"
	"github.com/egorTorshin/IU-Compilers-Construction/compiler/optimizer"
	"github.com/egorTorshin/IU-Compilers-Construction/compiler/parser"
	"github.com/egorTorshin/IU-Compilers-Construction/compiler/sema"
	"github.com/egorTorshin/IU-Compilers-Construction/compiler/source"
)

const smokeProgram = `
var total : integer is 0;

routine add(a: integer, b: integer): integer is
    return a + b
end;

routine main() is
    for i in 1..3 loop
        total := add(total, i)
    end;
    print(total)
end
`

func TestGenerateSmoke(t *testing.T) {
	ctx := context.Background()
	sink := diag.New()

	file := source.NewFile("smoke.il", []byte(smokeProgram))
	toks := lexer.New(file, sink).All(ctx)
	require.True(t, sink.Empty(), "lexer diagnostics: %v", sink.Diagnostics())

	prog, err := parser.New(toks, sink).ParseProgram(ctx)
	require.NoError(t, err)
	require.True(t, sink.Empty(), "parser diagnostics: %v", sink.Diagnostics())

	table := sema.Analyze(ctx, prog, sink)
	require.True(t, sink.Empty(), "semantic diagnostics: %v", sink.Diagnostics())

	res := optimizer.Optimize(ctx, prog)

	out, err := Generate(ctx, res.Program, table)
	require.NoError(t, err)

	main := string(out.MainUnit)
	require.Contains(t, main, ".class public Main")
	require.Contains(t, main, ".method public static add(II)I")
	require.Contains(t, main, "invokestatic Main/add(II)I")
	require.Contains(t, main, strings.TrimSpace("invokevirtual java/io/PrintStream/println(I)V"))
}
