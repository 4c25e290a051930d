// Package source provides random-access reading over UTF-8 program text
// with line/column tracking, mirroring the byte-buffer-of-files design
// used by the front end of the reference compiler this package is
// modeled on.
package source

import (
	"fmt"
	"sort"
)

type (
	// Span is a half-open range in a single File, 1-based on both ends.
	Span struct {
		File      string
		StartLine int
		StartCol  int
		EndLine   int
		EndCol    int
	}

	// File is a fully buffered source file with a precomputed line index.
	File struct {
		Name string
		b    []byte

		lineStarts []int // byte offset of the first byte of each line
	}
)

// NewFile buffers text and indexes its line starts.
func NewFile(name string, text []byte) *File {
	f := &File{
		Name: name,
		b:    text,
	}

	f.lineStarts = append(f.lineStarts, 0)

	for i, c := range text {
		if c == '\n' {
			f.lineStarts = append(f.lineStarts, i+1)
		}
	}

	return f
}

// Bytes returns the full buffered content.
func (f *File) Bytes() []byte { return f.b }

// Len returns the byte length of the file.
func (f *File) Len() int { return len(f.b) }

// At returns the byte at offset i, or 0 and false past the end.
func (f *File) At(i int) (byte, bool) {
	if i < 0 || i >= len(f.b) {
		return 0, false
	}

	return f.b[i], true
}

// Slice returns b[start:end], clamped to the file bounds.
func (f *File) Slice(start, end int) []byte {
	if start < 0 {
		start = 0
	}

	if end > len(f.b) {
		end = len(f.b)
	}

	if start > end {
		start = end
	}

	return f.b[start:end]
}

// Position converts a byte offset into a 1-based line/column pair.
func (f *File) Position(offset int) (line, col int) {
	i := sort.Search(len(f.lineStarts), func(i int) bool {
		return f.lineStarts[i] > offset
	})

	line = i // lineStarts[0] == 0 corresponds to line 1
	lineStart := f.lineStarts[i-1]

	return line, offset - lineStart + 1
}

// Span builds a Span for the half-open byte range [start, end).
func (f *File) Span(start, end int) Span {
	sl, sc := f.Position(start)
	el, ec := f.Position(end)

	return Span{
		File:      f.Name,
		StartLine: sl,
		StartCol:  sc,
		EndLine:   el,
		EndCol:    ec,
	}
}

func (s Span) String() string {
	if s.StartLine == s.EndLine {
		return fmt.Sprintf("%s:%d:%d-%d", s.File, s.StartLine, s.StartCol, s.EndCol)
	}

	return fmt.Sprintf("%s:%d:%d-%d:%d", s.File, s.StartLine, s.StartCol, s.EndLine, s.EndCol)
}
