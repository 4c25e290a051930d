// Package token defines the lexical token kinds produced by the lexer.
package token

import "github.com/egorTorshin/IU-Compilers-Construction/compiler/source"

// Kind tags a Token's lexical category.
type Kind int

const (
	Invalid Kind = iota
	EOF

	Ident
	IntLit
	RealLit
	BoolLit
	StringLit

	// keywords
	Var
	Type
	Routine
	Is
	End
	If
	Then
	Else
	While
	Loop
	For
	In
	Reverse
	Return
	Print
	Read
	Record
	Array
	And
	Or
	Xor
	Not
	True
	False
	As

	// built-in type names
	Integer
	Real
	Boolean
	StringType

	// operators
	Plus
	Minus
	Star
	Slash
	Percent
	Assign  // =
	NotEq   // /=
	Less    // <
	LessEq  // <=
	Greater // >
	GreaterEq // >=
	Walrus  // :=

	// punctuation
	LParen
	RParen
	LBracket
	RBracket
	Colon
	Semi
	Comma
	Dot
	DotDot
)

var keywords = map[string]Kind{
	"var":     Var,
	"type":    Type,
	"routine": Routine,
	"is":      Is,
	"end":     End,
	"if":      If,
	"then":    Then,
	"else":    Else,
	"while":   While,
	"loop":    Loop,
	"for":     For,
	"in":      In,
	"reverse": Reverse,
	"return":  Return,
	"print":   Print,
	"read":    Read,
	"record":  Record,
	"array":   Array,
	"and":     And,
	"or":      Or,
	"xor":     Xor,
	"not":     Not,
	"true":    True,
	"false":   False,
	"as":      As,
	"integer": Integer,
	"real":    Real,
	"boolean": Boolean,
	"string":  StringType,
}

// Lookup returns the keyword Kind for an identifier's text, and false if
// it names an ordinary identifier.
func Lookup(text string) (Kind, bool) {
	k, ok := keywords[text]
	return k, ok
}

// Token is a tagged variant: kind, source text, decoded value (for
// literals) and span.
type Token struct {
	Kind  Kind
	Text  string
	Value any // int32, float64, bool or string, depending on Kind
	Span  source.Span
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}

	return "<unknown>"
}

var kindNames = map[Kind]string{
	Invalid: "invalid", EOF: "EOF",
	Ident: "identifier", IntLit: "integer literal", RealLit: "real literal",
	BoolLit: "boolean literal", StringLit: "string literal",
	Var: "var", Type: "type", Routine: "routine", Is: "is", End: "end",
	If: "if", Then: "then", Else: "else", While: "while", Loop: "loop",
	For: "for", In: "in", Reverse: "reverse", Return: "return",
	Print: "print", Read: "read", Record: "record", Array: "array",
	And: "and", Or: "or", Xor: "xor", Not: "not", True: "true", False: "false",
	As: "as",
	Integer: "integer", Real: "real", Boolean: "boolean", StringType: "string",
	Plus: "+", Minus: "-", Star: "*", Slash: "/", Percent: "%",
	Assign: "=", NotEq: "/=", Less: "<", LessEq: "<=", Greater: ">", GreaterEq: ">=",
	Walrus: ":=",
	LParen: "(", RParen: ")", LBracket: "[", RBracket: "]",
	Colon: ":", Semi: ";", Comma: ",", Dot: ".", DotDot: "..",
}
