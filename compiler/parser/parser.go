// Package parser reduces a token stream into a Program AST using a
// recursive-descent encoding of the LALR-style grammar in spec.md §4.2.
// On the first syntax error it emits one diagnostic carrying the
// offending token's span and aborts immediately — panic-mode recovery
// is explicitly a non-goal, matching the single-shot error model of the
// teacher compiler's front end.
package parser

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/egorTorshin/IU-Compilers-Construction/compiler/ast"
	"github.com/egorTorshin/IU-Compilers-Construction/compiler/diag"
	"github.com/egorTorshin/IU-Compilers-Construction/compiler/token"
)

// Parser consumes a pre-lexed token slice (the lexer's output, drained
// once by Lexer.All) and builds a Program.
type Parser struct {
	toks []token.Token
	pos  int
	sink *diag.Sink
}

// New returns a Parser over toks, reporting the first syntax error to
// sink.
func New(toks []token.Token, sink *diag.Sink) *Parser {
	return &Parser{toks: toks, sink: sink}
}

// UnexpectedTokenError is returned (and also routed to the sink) when
// the current token does not match any grammar alternative.
type UnexpectedTokenError struct {
	Got  token.Token
	Want []token.Kind
}

func (e UnexpectedTokenError) Error() string {
	return "unexpected token: " + e.Got.Kind.String()
}

// ParseProgram parses the whole token stream as stmt_list.
func (p *Parser) ParseProgram(ctx context.Context) (*ast.Program, error) {
	stmts, err := p.parseStmtList(ctx, token.EOF)
	if err != nil {
		return nil, err
	}

	if !p.at(token.EOF) {
		return nil, p.unexpected(token.EOF)
	}

	tlog.SpanFromContext(ctx).Printw("parsed program", "statements", len(stmts))

	return &ast.Program{Statements: stmts}, nil
}

// --- token stream helpers ---------------------------------------------

func (p *Parser) cur() token.Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF
	}

	return p.toks[p.pos]
}

func (p *Parser) at(k token.Kind) bool { return p.cur().Kind == k }

func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}

	return t
}

func (p *Parser) expect(k token.Kind) (token.Token, error) {
	if !p.at(k) {
		return token.Token{}, p.unexpected(k)
	}

	return p.advance(), nil
}

func (p *Parser) unexpected(want ...token.Kind) error {
	got := p.cur()

	p.sink.Add(diag.Syntax, got.Span, "unexpected token %q, expected one of %v", got.Text, kindList(want))

	return errors.Wrap(UnexpectedTokenError{Got: got, Want: want}, "at %s", got.Span)
}

func kindList(ks []token.Kind) []string {
	out := make([]string, len(ks))
	for i, k := range ks {
		out[i] = k.String()
	}

	return out
}

// --- statements ---------------------------------------------------------

// parseStmtList parses stmt (';' stmt)* ';'? up to (but not consuming) a
// token of kind stop, or End/Else when those terminate a block.
func (p *Parser) parseStmtList(ctx context.Context, stop token.Kind) (out []ast.Statement, err error) {
	for {
		if p.at(stop) || p.at(token.End) || p.at(token.Else) {
			return out, nil
		}

		st, err := p.parseStmt(ctx)
		if err != nil {
			return nil, err
		}

		out = append(out, st)

		if p.at(token.Semi) {
			p.advance()
			continue
		}

		return out, nil
	}
}

func (p *Parser) parseStmt(ctx context.Context) (ast.Statement, error) {
	switch p.cur().Kind {
	case token.Var:
		return p.parseVarDecl(ctx)
	case token.Type:
		return p.parseTypeDecl(ctx)
	case token.Routine:
		return p.parseRoutineDecl(ctx)
	case token.If:
		return p.parseIf(ctx)
	case token.While:
		return p.parseWhile(ctx)
	case token.For:
		return p.parseFor(ctx)
	case token.Print:
		return p.parsePrint(ctx)
	case token.Read:
		return p.parseRead(ctx)
	case token.Return:
		return p.parseReturn(ctx)
	case token.Ident:
		return p.parseIdentStmt(ctx)
	default:
		return nil, p.unexpected(token.Var, token.Type, token.Routine, token.If, token.While,
			token.For, token.Print, token.Read, token.Return, token.Ident)
	}
}

func (p *Parser) parseVarDecl(ctx context.Context) (ast.Statement, error) {
	start := p.cur()
	p.advance() // 'var'

	name, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.Colon); err != nil {
		return nil, err
	}

	typ, err := p.parseTypeExpr(ctx)
	if err != nil {
		return nil, err
	}

	decl := ast.VarDecl{
		Base: ast.Base{Sp: start.Span},
		Name: name.Text,
		Type: typ,
	}

	// array_decl carries no initializer in the grammar; only a plain
	// var_decl may have one.
	if !decl.IsArrayDecl() && p.at(token.Is) {
		p.advance()

		init, err := p.parseExpr(ctx)
		if err != nil {
			return nil, err
		}

		decl.Init = init
	}

	return decl, nil
}

func (p *Parser) parseTypeDecl(ctx context.Context) (ast.Statement, error) {
	start := p.cur()
	p.advance() // 'type'

	name, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.Is); err != nil {
		return nil, err
	}

	typ, err := p.parseTypeExpr(ctx)
	if err != nil {
		return nil, err
	}

	return ast.TypeDecl{
		Base: ast.Base{Sp: start.Span},
		Name: name.Text,
		Type: typ,
	}, nil
}

func (p *Parser) parseRoutineDecl(ctx context.Context) (ast.Statement, error) {
	start := p.cur()
	p.advance() // 'routine'

	name, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}

	var params []ast.Param

	for !p.at(token.RParen) {
		pname, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(token.Colon); err != nil {
			return nil, err
		}

		ptyp, err := p.parseTypeExpr(ctx)
		if err != nil {
			return nil, err
		}

		params = append(params, ast.Param{Name: pname.Text, Type: ptyp})

		if p.at(token.Comma) {
			p.advance()
			continue
		}

		break
	}

	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}

	var retType ast.TypeExpr

	if p.at(token.Colon) {
		p.advance()

		retType, err = p.parseTypeExpr(ctx)
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(token.Is); err != nil {
		return nil, err
	}

	body, err := p.parseStmtList(ctx, token.End)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.End); err != nil {
		return nil, err
	}

	return ast.RoutineDecl{
		Base:       ast.Base{Sp: start.Span},
		Name:       name.Text,
		Params:     params,
		ReturnType: retType,
		Body:       body,
	}, nil
}

func (p *Parser) parseIf(ctx context.Context) (ast.Statement, error) {
	start := p.cur()
	p.advance() // 'if'

	cond, err := p.parseExpr(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.Then); err != nil {
		return nil, err
	}

	then, err := p.parseStmtList(ctx, token.End)
	if err != nil {
		return nil, err
	}

	var els []ast.Statement

	if p.at(token.Else) {
		p.advance()

		els, err = p.parseStmtList(ctx, token.End)
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(token.End); err != nil {
		return nil, err
	}

	return ast.IfStmt{
		Base: ast.Base{Sp: start.Span},
		Cond: cond,
		Then: then,
		Else: els,
	}, nil
}

func (p *Parser) parseWhile(ctx context.Context) (ast.Statement, error) {
	start := p.cur()
	p.advance() // 'while'

	cond, err := p.parseExpr(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.Loop); err != nil {
		return nil, err
	}

	body, err := p.parseStmtList(ctx, token.End)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.End); err != nil {
		return nil, err
	}

	return ast.WhileStmt{
		Base: ast.Base{Sp: start.Span},
		Cond: cond,
		Body: body,
	}, nil
}

func (p *Parser) parseFor(ctx context.Context) (ast.Statement, error) {
	start := p.cur()
	p.advance() // 'for'

	varName, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.In); err != nil {
		return nil, err
	}

	reverse := false
	if p.at(token.Reverse) {
		reverse = true
		p.advance()
	}

	from, err := p.parseExpr(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.DotDot); err != nil {
		return nil, err
	}

	to, err := p.parseExpr(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.Loop); err != nil {
		return nil, err
	}

	body, err := p.parseStmtList(ctx, token.End)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.End); err != nil {
		return nil, err
	}

	return ast.ForLoop{
		Base:    ast.Base{Sp: start.Span},
		Var:     varName.Text,
		Reverse: reverse,
		Start:   from,
		End:     to,
		Body:    body,
	}, nil
}

func (p *Parser) parsePrint(ctx context.Context) (ast.Statement, error) {
	start := p.cur()
	p.advance() // 'print'

	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}

	e, err := p.parseExpr(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}

	return ast.PrintStmt{Base: ast.Base{Sp: start.Span}, Expr: e}, nil
}

func (p *Parser) parseRead(ctx context.Context) (ast.Statement, error) {
	start := p.cur()
	p.advance() // 'read'

	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}

	name, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}

	return ast.ReadStmt{Base: ast.Base{Sp: start.Span}, Var: name.Text}, nil
}

func (p *Parser) parseReturn(ctx context.Context) (ast.Statement, error) {
	start := p.cur()
	p.advance() // 'return'

	switch p.cur().Kind {
	case token.Semi, token.End, token.Else, token.EOF:
		return ast.ReturnStmt{Base: ast.Base{Sp: start.Span}}, nil
	}

	e, err := p.parseExpr(ctx)
	if err != nil {
		return nil, err
	}

	return ast.ReturnStmt{Base: ast.Base{Sp: start.Span}, Expr: e}, nil
}

// parseIdentStmt disambiguates the three statement forms that start with
// an identifier: assignment (to a var, array element or record field),
// and a bare routine call statement.
func (p *Parser) parseIdentStmt(ctx context.Context) (ast.Statement, error) {
	start := p.cur()
	name, _ := p.expect(token.Ident)

	if p.at(token.LParen) {
		args, err := p.parseArgList(ctx)
		if err != nil {
			return nil, err
		}

		return ast.RoutineCallStmt{Base: ast.Base{Sp: start.Span}, Name: name.Text, Args: args}, nil
	}

	a := ast.Assignment{Base: ast.Base{Sp: start.Span}, Target: name.Text}

	switch p.cur().Kind {
	case token.LBracket:
		p.advance()

		idx, err := p.parseExpr(ctx)
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(token.RBracket); err != nil {
			return nil, err
		}

		a.Index = idx
	case token.Dot:
		p.advance()

		field, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}

		a.Field = field.Text
	}

	if _, err := p.expect(token.Walrus); err != nil {
		return nil, err
	}

	val, err := p.parseExpr(ctx)
	if err != nil {
		return nil, err
	}

	a.Value = val

	return a, nil
}

// parseArgList parses '(' (expr (',' expr)*)? ')', consuming both
// parens.
func (p *Parser) parseArgList(ctx context.Context) ([]ast.Expression, error) {
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}

	var args []ast.Expression

	for !p.at(token.RParen) {
		e, err := p.parseExpr(ctx)
		if err != nil {
			return nil, err
		}

		args = append(args, e)

		if p.at(token.Comma) {
			p.advance()
			continue
		}

		break
	}

	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}

	return args, nil
}

// --- type expressions ----------------------------------------------------

func (p *Parser) parseTypeExpr(ctx context.Context) (ast.TypeExpr, error) {
	start := p.cur()

	switch start.Kind {
	case token.Array:
		p.advance()

		if _, err := p.expect(token.LBracket); err != nil {
			return nil, err
		}

		sizeTok, err := p.expect(token.IntLit)
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(token.RBracket); err != nil {
			return nil, err
		}

		elem, err := p.parseTypeExpr(ctx)
		if err != nil {
			return nil, err
		}

		return ast.ArrayTypeExpr{
			Base:    ast.Base{Sp: start.Span},
			Size:    ast.IntegerLit{Base: ast.Base{Sp: sizeTok.Span}, Value: sizeTok.Value.(int32)},
			Element: elem,
		}, nil
	case token.Record:
		p.advance()

		var fields []ast.FieldDecl

		for p.at(token.Var) {
			p.advance()

			fname, err := p.expect(token.Ident)
			if err != nil {
				return nil, err
			}

			if _, err := p.expect(token.Colon); err != nil {
				return nil, err
			}

			ftyp, err := p.parseTypeExpr(ctx)
			if err != nil {
				return nil, err
			}

			fields = append(fields, ast.FieldDecl{Name: fname.Text, Type: ftyp})

			if p.at(token.Semi) {
				p.advance()
			}
		}

		if _, err := p.expect(token.End); err != nil {
			return nil, err
		}

		return ast.RecordTypeExpr{Base: ast.Base{Sp: start.Span}, Fields: fields}, nil
	case token.Integer, token.Real, token.Boolean, token.StringType:
		p.advance()
		return ast.SimpleTypeExpr{Base: ast.Base{Sp: start.Span}, Name: start.Text}, nil
	case token.Ident:
		p.advance()
		return ast.SimpleTypeExpr{Base: ast.Base{Sp: start.Span}, Name: start.Text}, nil
	default:
		return nil, p.unexpected(token.Array, token.Record, token.Integer, token.Real,
			token.Boolean, token.StringType, token.Ident)
	}
}

// --- expressions, by precedence (lowest to highest) ----------------------

func (p *Parser) parseExpr(ctx context.Context) (ast.Expression, error) {
	return p.parseLogicOr(ctx)
}

func (p *Parser) parseLogicOr(ctx context.Context) (ast.Expression, error) {
	left, err := p.parseLogicAnd(ctx)
	if err != nil {
		return nil, err
	}

	for p.at(token.Or) || p.at(token.Xor) {
		op := p.advance()

		right, err := p.parseLogicAnd(ctx)
		if err != nil {
			return nil, err
		}

		bop := ast.OpOr
		if op.Kind == token.Xor {
			bop = ast.OpXor
		}

		left = ast.Binary{Base: ast.Base{Sp: op.Span}, Left: left, Op: bop, Right: right}
	}

	return left, nil
}

func (p *Parser) parseLogicAnd(ctx context.Context) (ast.Expression, error) {
	left, err := p.parseRel(ctx)
	if err != nil {
		return nil, err
	}

	for p.at(token.And) {
		op := p.advance()

		right, err := p.parseRel(ctx)
		if err != nil {
			return nil, err
		}

		left = ast.Binary{Base: ast.Base{Sp: op.Span}, Left: left, Op: ast.OpAnd, Right: right}
	}

	return left, nil
}

var relOps = map[token.Kind]ast.BinaryOp{
	token.Assign: ast.OpEq, token.NotEq: ast.OpNeq,
	token.Less: ast.OpLt, token.LessEq: ast.OpLe,
	token.Greater: ast.OpGt, token.GreaterEq: ast.OpGe,
}

func (p *Parser) parseRel(ctx context.Context) (ast.Expression, error) {
	left, err := p.parseSum(ctx)
	if err != nil {
		return nil, err
	}

	for {
		op, ok := relOps[p.cur().Kind]
		if !ok {
			return left, nil
		}

		opTok := p.advance()

		right, err := p.parseSum(ctx)
		if err != nil {
			return nil, err
		}

		left = ast.Binary{Base: ast.Base{Sp: opTok.Span}, Left: left, Op: op, Right: right}
	}
}

func (p *Parser) parseSum(ctx context.Context) (ast.Expression, error) {
	left, err := p.parseTerm(ctx)
	if err != nil {
		return nil, err
	}

	for p.at(token.Plus) || p.at(token.Minus) {
		op := p.advance()

		right, err := p.parseTerm(ctx)
		if err != nil {
			return nil, err
		}

		bop := ast.OpAdd
		if op.Kind == token.Minus {
			bop = ast.OpSub
		}

		left = ast.Binary{Base: ast.Base{Sp: op.Span}, Left: left, Op: bop, Right: right}
	}

	return left, nil
}

var termOps = map[token.Kind]ast.BinaryOp{
	token.Star: ast.OpMul, token.Slash: ast.OpDiv, token.Percent: ast.OpMod,
}

func (p *Parser) parseTerm(ctx context.Context) (ast.Expression, error) {
	left, err := p.parseFactor(ctx)
	if err != nil {
		return nil, err
	}

	for {
		op, ok := termOps[p.cur().Kind]
		if !ok {
			return left, nil
		}

		opTok := p.advance()

		right, err := p.parseFactor(ctx)
		if err != nil {
			return nil, err
		}

		left = ast.Binary{Base: ast.Base{Sp: opTok.Span}, Left: left, Op: op, Right: right}
	}
}

func (p *Parser) parseFactor(ctx context.Context) (ast.Expression, error) {
	switch p.cur().Kind {
	case token.Not:
		op := p.advance()

		operand, err := p.parseFactor(ctx)
		if err != nil {
			return nil, err
		}

		return ast.Unary{Base: ast.Base{Sp: op.Span}, Op: ast.OpNot, Operand: operand}, nil
	case token.Minus:
		op := p.advance()

		operand, err := p.parseFactor(ctx)
		if err != nil {
			return nil, err
		}

		return ast.Unary{Base: ast.Base{Sp: op.Span}, Op: ast.OpNeg, Operand: operand}, nil
	default:
		return p.parsePrimary(ctx)
	}
}

func (p *Parser) parsePrimary(ctx context.Context) (ast.Expression, error) {
	e, err := p.parseBasePrimary(ctx)
	if err != nil {
		return nil, err
	}

	for p.at(token.As) {
		asTok := p.advance()

		typ, err := p.parseTypeExpr(ctx)
		if err != nil {
			return nil, err
		}

		e = ast.TypeCast{Base: ast.Base{Sp: asTok.Span}, Expr: e, TargetType: typ}
	}

	return e, nil
}

func (p *Parser) parseBasePrimary(ctx context.Context) (ast.Expression, error) {
	t := p.cur()

	switch t.Kind {
	case token.IntLit:
		p.advance()
		return ast.IntegerLit{Base: ast.Base{Sp: t.Span}, Value: t.Value.(int32)}, nil
	case token.RealLit:
		p.advance()
		return ast.RealLit{Base: ast.Base{Sp: t.Span}, Value: t.Value.(float64)}, nil
	case token.True, token.False:
		p.advance()
		return ast.BooleanLit{Base: ast.Base{Sp: t.Span}, Value: t.Kind == token.True}, nil
	case token.StringLit:
		p.advance()
		return ast.StringLit{Base: ast.Base{Sp: t.Span}, Value: t.Value.(string)}, nil
	case token.LParen:
		p.advance()

		e, err := p.parseExpr(ctx)
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}

		return e, nil
	case token.Ident:
		p.advance()

		switch p.cur().Kind {
		case token.LParen:
			args, err := p.parseArgList(ctx)
			if err != nil {
				return nil, err
			}

			return ast.RoutineCall{Base: ast.Base{Sp: t.Span}, Name: t.Text, Args: args}, nil
		case token.LBracket:
			p.advance()

			idx, err := p.parseExpr(ctx)
			if err != nil {
				return nil, err
			}

			if _, err := p.expect(token.RBracket); err != nil {
				return nil, err
			}

			return ast.ArrayAccess{Base: ast.Base{Sp: t.Span}, Name: t.Text, Index: idx}, nil
		case token.Dot:
			p.advance()

			field, err := p.expect(token.Ident)
			if err != nil {
				return nil, err
			}

			return ast.RecordAccess{
				Base:   ast.Base{Sp: t.Span},
				Record: ast.VarRef{Base: ast.Base{Sp: t.Span}, Name: t.Text},
				Field:  field.Text,
			}, nil
		default:
			return ast.VarRef{Base: ast.Base{Sp: t.Span}, Name: t.Text}, nil
		}
	default:
		return nil, p.unexpected(token.IntLit, token.RealLit, token.True, token.False,
			token.StringLit, token.LParen, token.Ident)
	}
}

