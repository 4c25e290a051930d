package format

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/egorTorshin/IU-Compilers-Construction/compiler/diag"
	"github.com/egorTorshin/IU-Compilers-Construction/compiler/lexer"
	"github.com/egorTorshin/IU-Compilers-Construction/compiler/parser"
	"github.com/egorTorshin/IU-Compilers-Construction/compiler/source"
)

const sample = `
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

func TestProgramRoundTripsParseably(t *testing.T) {
	ctx := context.Background()
	sink := diag.New()

	file := source.NewFile("sample.il", []byte(sample))
	toks := lexer.New(file, sink).All(ctx)
	require.True(t, sink.Empty())

	prog, err := parser.New(toks, sink).ParseProgram(ctx)
	require.NoError(t, err)
	require.True(t, sink.Empty())

	out, err := Program(nil, prog)
	require.NoError(t, err)

	text := string(out)
	require.True(t, strings.Contains(text, "routine add"))
	require.True(t, strings.Contains(text, "return (a + b)"))

	// The rendered text should itself parse without diagnostics.
	sink2 := diag.New()
	file2 := source.NewFile("sample-reformatted.il", out)
	toks2 := lexer.New(file2, sink2).All(ctx)
	require.True(t, sink2.Empty())

	_, err = parser.New(toks2, sink2).ParseProgram(ctx)
	require.NoError(t, err)
	require.True(t, sink2.Empty())
}
