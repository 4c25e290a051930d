package lexer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/egorTorshin/IU-Compilers-Construction/compiler/diag"
	"github.com/egorTorshin/IU-Compilers-Construction/compiler/source"
	"github.com/egorTorshin/IU-Compilers-Construction/compiler/token"
)

func scan(t *testing.T, text string) ([]token.Token, *diag.Sink) {
	t.Helper()

	sink := diag.New()
	file := source.NewFile("t.il", []byte(text))
	toks := New(file, sink).All(context.Background())

	require.NotEmpty(t, toks)
	require.Equal(t, token.EOF, toks[len(toks)-1].Kind)

	return toks, sink
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestScansKeywordsAndIdentifiers(t *testing.T) {
	toks, sink := scan(t, "routine total")
	require.True(t, sink.Empty())
	require.Equal(t, []token.Kind{token.Routine, token.Ident, token.EOF}, kinds(toks))
}

func TestScansUnicodeIdentifier(t *testing.T) {
	toks, sink := scan(t, "переменная")
	require.True(t, sink.Empty())
	require.Equal(t, token.Ident, toks[0].Kind)
	require.Equal(t, "переменная", toks[0].Text)
}

func TestScansIntegerLiteral(t *testing.T) {
	toks, sink := scan(t, "42")
	require.True(t, sink.Empty())
	require.Equal(t, token.IntLit, toks[0].Kind)
	require.Equal(t, int32(42), toks[0].Value)
}

func TestScansRealLiteral(t *testing.T) {
	toks, sink := scan(t, "3.5")
	require.True(t, sink.Empty())
	require.Equal(t, token.RealLit, toks[0].Kind)
	require.Equal(t, 3.5, toks[0].Value)
}

func TestScansStringLiteralWithEscapes(t *testing.T) {
	toks, sink := scan(t, `"a\nb"`)
	require.True(t, sink.Empty())
	require.Equal(t, token.StringLit, toks[0].Kind)
	require.Equal(t, "a\nb", toks[0].Value)
}

func TestUnterminatedStringIsLexicalError(t *testing.T) {
	_, sink := scan(t, `"abc`)
	require.False(t, sink.Empty())
}

func TestTwoCharOperators(t *testing.T) {
	toks, sink := scan(t, ":= <= >= /= <>")
	require.True(t, sink.Empty())
	require.Equal(t, []token.Kind{
		token.Walrus, token.LessEq, token.GreaterEq, token.NotEq, token.NotEq, token.EOF,
	}, kinds(toks))
}

func TestSkipsLineCommentsAndHashComments(t *testing.T) {
	toks, sink := scan(t, "// hi\n# also hi\nx")
	require.True(t, sink.Empty())
	require.Equal(t, []token.Kind{token.Ident, token.EOF}, kinds(toks))
}

func TestIllegalCharacterIsLexicalError(t *testing.T) {
	_, sink := scan(t, "@")
	require.False(t, sink.Empty())
}

func TestPercentAbuttingIdentifierIsIllegal(t *testing.T) {
	_, sink := scan(t, "foo%")
	require.False(t, sink.Empty())
}

func TestEOFIsStickyOnRepeatedNext(t *testing.T) {
	sink := diag.New()
	file := source.NewFile("t.il", []byte(""))
	l := New(file, sink)
	ctx := context.Background()

	require.Equal(t, token.EOF, l.Next(ctx).Kind)
	require.Equal(t, token.EOF, l.Next(ctx).Kind)
}
