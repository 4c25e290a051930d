package source

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPositionTracksLines(t *testing.T) {
	f := NewFile("t.il", []byte("abc\ndef\nghi"))

	line, col := f.Position(0)
	require.Equal(t, 1, line)
	require.Equal(t, 1, col)

	line, col = f.Position(4)
	require.Equal(t, 2, line)
	require.Equal(t, 1, col)

	line, col = f.Position(9)
	require.Equal(t, 3, line)
	require.Equal(t, 2, col)
}

func TestSpanStringSameLine(t *testing.T) {
	f := NewFile("t.il", []byte("var x : integer"))
	sp := f.Span(0, 3)
	require.Equal(t, "t.il:1:1-4", sp.String())
}

func TestSpanStringMultiLine(t *testing.T) {
	f := NewFile("t.il", []byte("abc\ndef"))
	sp := f.Span(1, 5)
	require.Equal(t, "t.il:1:2-2:2", sp.String())
}

func TestSliceClampsToBounds(t *testing.T) {
	f := NewFile("t.il", []byte("hello"))
	require.Equal(t, []byte("hello"), f.Slice(-5, 100))
	require.Equal(t, []byte{}, f.Slice(10, 2))
}
