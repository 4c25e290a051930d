// Package lexer scans IL source text into a lazy stream of tokens,
// following the byte-buffer scanning style of the front end this
// compiler's pipeline is modeled on: an explicit cursor over a fully
// buffered file, skip-helpers for whitespace and identifiers, and
// diagnostics routed to a sink rather than thrown.
package lexer

import (
	"context"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"tlog.app/go/tlog"

	"github.com/egorTorshin/IU-Compilers-Construction/compiler/diag"
	"github.com/egorTorshin/IU-Compilers-Construction/compiler/source"
	"github.com/egorTorshin/IU-Compilers-Construction/compiler/token"
)

// Lexer produces tokens on demand from a single source file.
type Lexer struct {
	file *source.File
	sink *diag.Sink

	pos int
	eof bool
}

// New returns a Lexer over file, reporting lexical errors to sink.
func New(file *source.File, sink *diag.Sink) *Lexer {
	return &Lexer{file: file, sink: sink}
}

// Next returns the next token. After EOF has been produced once, every
// subsequent call keeps returning an EOF token.
func (l *Lexer) Next(ctx context.Context) token.Token {
	l.skipTrivia()

	start := l.pos

	c, ok := l.file.At(l.pos)
	if !ok {
		l.eof = true
		return l.tok(token.EOF, start, start, nil)
	}

	r, _ := l.runeAt(l.pos)

	switch {
	case isIdentStart(r):
		return l.scanIdent(start)
	case c >= '0' && c <= '9':
		return l.scanNumber(start)
	case c == '"':
		return l.scanString(start)
	default:
		return l.scanOperator(start)
	}
}

// runeAt decodes the UTF-8 rune starting at byte offset i, returning its
// size in bytes (0 past the end of the file).
func (l *Lexer) runeAt(i int) (rune, int) {
	b := l.file.Bytes()
	if i < 0 || i >= len(b) {
		return utf8.RuneError, 0
	}

	return utf8.DecodeRune(b[i:])
}

// All drains the lexer into a slice, for callers (tests, the parser's
// lookahead buffer) that want random access instead of streaming.
func (l *Lexer) All(ctx context.Context) []token.Token {
	var toks []token.Token

	for {
		t := l.Next(ctx)
		toks = append(toks, t)

		if t.Kind == token.EOF {
			return toks
		}
	}
}

func (l *Lexer) tok(kind token.Kind, start, end int, value any) token.Token {
	return token.Token{
		Kind:  kind,
		Text:  string(l.file.Slice(start, end)),
		Value: value,
		Span:  l.file.Span(start, end),
	}
}

func (l *Lexer) skipTrivia() {
	for {
		c, ok := l.file.At(l.pos)
		if !ok {
			return
		}

		switch c {
		case ' ', '\t', '\r', '\n', '\f':
			l.pos++
			continue
		case '/':
			if c2, ok := l.file.At(l.pos + 1); ok && c2 == '/' {
				l.skipLine()
				continue
			}
		case '#':
			l.skipLine()
			continue
		}

		return
	}
}

func (l *Lexer) skipLine() {
	for {
		c, ok := l.file.At(l.pos)
		if !ok || c == '\n' {
			return
		}

		l.pos++
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentCont(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}

func (l *Lexer) scanIdent(start int) token.Token {
	_, size := l.runeAt(start)
	i := start + size

	for {
		r, size := l.runeAt(i)
		if size == 0 || !isIdentCont(r) {
			break
		}

		i += size
	}

	// '%' abutting an identifier body is explicitly illegal (percent is
	// not an IL operator token on its own within an identifier context).
	if c, ok := l.file.At(i); ok && c == '%' {
		text := string(l.file.Slice(start, i+1))
		l.pos = i + 1
		l.sink.Add(diag.Lexical, l.file.Span(start, i+1), "illegal character %q in identifier %q", '%', text)

		return l.tok(token.Invalid, start, i+1, nil)
	}

	l.pos = i
	text := string(l.file.Slice(start, i))

	if kw, ok := token.Lookup(text); ok {
		return l.tok(kw, start, i, nil)
	}

	return l.tok(token.Ident, start, i, nil)
}

func (l *Lexer) scanNumber(start int) token.Token {
	i := start

	if c, _ := l.file.At(i); c == '0' {
		i++
	} else {
		for {
			c, ok := l.file.At(i)
			if !ok || c < '0' || c > '9' {
				break
			}

			i++
		}
	}

	isReal := false

	if c, ok := l.file.At(i); ok && c == '.' {
		if c2, ok2 := l.file.At(i + 1); ok2 && c2 >= '0' && c2 <= '9' {
			isReal = true
			i++

			for {
				c, ok := l.file.At(i)
				if !ok || c < '0' || c > '9' {
					break
				}

				i++
			}
		}
	}

	l.pos = i
	text := string(l.file.Slice(start, i))

	if isReal {
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			l.sink.Add(diag.Lexical, l.file.Span(start, i), "malformed real literal %q", text)
			return l.tok(token.Invalid, start, i, nil)
		}

		return l.tok(token.RealLit, start, i, v)
	}

	v, err := strconv.ParseInt(text, 10, 32)
	if err != nil {
		l.sink.Add(diag.Lexical, l.file.Span(start, i), "malformed integer literal %q", text)
		return l.tok(token.Invalid, start, i, nil)
	}

	return l.tok(token.IntLit, start, i, int32(v))
}

func (l *Lexer) scanString(start int) token.Token {
	i := start + 1
	var sb strings.Builder

	for {
		c, ok := l.file.At(i)
		if !ok || c == '\n' {
			l.pos = i
			l.sink.Add(diag.Lexical, l.file.Span(start, i), "unterminated string literal")

			return l.tok(token.Invalid, start, i, nil)
		}

		if c == '"' {
			i++
			break
		}

		if c == '\\' {
			c2, ok := l.file.At(i + 1)
			if !ok || c2 == '\n' {
				l.pos = i
				l.sink.Add(diag.Lexical, l.file.Span(start, i), "unterminated string literal")

				return l.tok(token.Invalid, start, i, nil)
			}

			switch c2 {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '"':
				sb.WriteByte('"')
			case '\\':
				sb.WriteByte('\\')
			case 'b':
				sb.WriteByte('\b')
			case 'f':
				sb.WriteByte('\f')
			default:
				l.sink.Add(diag.Lexical, l.file.Span(i, i+2), "unknown escape sequence \\%c", c2)
				sb.WriteByte(c2)
			}

			i += 2
			continue
		}

		sb.WriteByte(c)
		i++
	}

	l.pos = i

	return l.tok(token.StringLit, start, i, sb.String())
}

func (l *Lexer) scanOperator(start int) token.Token {
	c, _ := l.file.At(start)
	c2, hasNext := l.file.At(start + 1)

	two := func(k token.Kind) token.Token {
		l.pos = start + 2
		return l.tok(k, start, start+2, nil)
	}

	one := func(k token.Kind) token.Token {
		l.pos = start + 1
		return l.tok(k, start, start+1, nil)
	}

	if hasNext {
		switch {
		case c == ':' && c2 == '=':
			return two(token.Walrus)
		case c == '<' && c2 == '=':
			return two(token.LessEq)
		case c == '>' && c2 == '=':
			return two(token.GreaterEq)
		case c == '/' && c2 == '=':
			return two(token.NotEq)
		case c == '!' && c2 == '=':
			return two(token.NotEq)
		case c == '<' && c2 == '>':
			return two(token.NotEq)
		case c == '.' && c2 == '.':
			return two(token.DotDot)
		}
	}

	switch c {
	case '+':
		return one(token.Plus)
	case '-':
		return one(token.Minus)
	case '*':
		return one(token.Star)
	case '/':
		return one(token.Slash)
	case '%':
		return one(token.Percent)
	case '=':
		return one(token.Assign)
	case '<':
		return one(token.Less)
	case '>':
		return one(token.Greater)
	case '(':
		return one(token.LParen)
	case ')':
		return one(token.RParen)
	case '[':
		return one(token.LBracket)
	case ']':
		return one(token.RBracket)
	case ':':
		return one(token.Colon)
	case ';':
		return one(token.Semi)
	case ',':
		return one(token.Comma)
	case '.':
		return one(token.Dot)
	}

	l.pos = start + 1
	l.sink.Add(diag.Lexical, l.file.Span(start, start+1), "illegal character %q", c)

	return l.tok(token.Invalid, start, start+1, nil)
}

// TraceEnabled reports whether the span carried by ctx has tracing
// enabled for the "next_token" topic.
func TraceEnabled(ctx context.Context) bool {
	return tlog.SpanFromContext(ctx).If("next_token")
}
