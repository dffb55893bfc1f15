package surface

import (
	"fmt"

	"github.com/funvibe/lambdapi/internal/lexer"
	"github.com/funvibe/lambdapi/internal/token"
)

// Parser is a recursive-descent parser over one token stream, grounded
// on funxy's internal/parser curToken/peekToken/nextToken/curTokenIs
// style (types.go).
type Parser struct {
	l *lexer.Lexer

	curToken  token.Token
	peekToken token.Token

	errors []error
}

func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t token.Type) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t token.Type) bool { return p.peekToken.Type == t }

func (p *Parser) expect(t token.Type) (token.Token, error) {
	if !p.curTokenIs(t) {
		return token.Token{}, fmt.Errorf("%s: expected token %d, got %q (%d)", p.curToken.Pos, t, p.curToken.Lexeme, p.curToken.Type)
	}
	tok := p.curToken
	p.nextToken()
	return tok, nil
}

// ParseProgram parses every directive in the token stream.
func (p *Parser) ParseProgram() ([]Directive, error) {
	var out []Directive
	for !p.curTokenIs(token.EOF) {
		d, err := p.parseDirective()
		if err != nil {
			return out, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (p *Parser) parseDirective() (Directive, error) {
	pos := p.curToken.Pos
	switch p.curToken.Type {
	case token.IMPORT:
		p.nextToken()
		name, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.DOT); err != nil {
			return nil, err
		}
		return ImportDirective{ModulePath: name.Lexeme, Pos: pos}, nil

	case token.STATIC:
		p.nextToken()
		name, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.COLON); err != nil {
			return nil, err
		}
		typ, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.DOT); err != nil {
			return nil, err
		}
		return DeclStaticDirective{Name: name.Lexeme, Type: typ, Pos: pos}, nil

	case token.DEFINABLE:
		p.nextToken()
		name, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.COLON); err != nil {
			return nil, err
		}
		typ, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.DOT); err != nil {
			return nil, err
		}
		return DeclDefinableDirective{Name: name.Lexeme, Type: typ, Pos: pos}, nil

	case token.RULE:
		p.nextToken()
		lhs, err := p.parseApp()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.FATARROW); err != nil {
			return nil, err
		}
		rhs, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.DOT); err != nil {
			return nil, err
		}
		return RuleDirective{LHS: lhs, RHS: rhs, Pos: pos}, nil

	case token.INFER:
		p.nextToken()
		t, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.DOT); err != nil {
			return nil, err
		}
		return InferDirective{Term: t, Pos: pos}, nil

	case token.EVAL:
		p.nextToken()
		mode := EvalSNF
		if p.curTokenIs(token.WHNF) {
			mode = EvalWHNF
			p.nextToken()
		} else if p.curTokenIs(token.SNF) {
			p.nextToken()
		}
		t, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.DOT); err != nil {
			return nil, err
		}
		return EvalDirective{Mode: mode, Term: t, Pos: pos}, nil

	case token.ASSERT, token.CHECK:
		warn := p.curTokenIs(token.CHECK)
		p.nextToken()
		left, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		var op AssertOp
		switch p.curToken.Type {
		case token.EQUIV:
			op = AssertEquiv
		case token.COLON:
			op = AssertHasType
		default:
			return nil, fmt.Errorf("%s: expected '==' or ':' in assertion, got %q", p.curToken.Pos, p.curToken.Lexeme)
		}
		p.nextToken()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.DOT); err != nil {
			return nil, err
		}
		return AssertDirective{Left: left, Op: op, Right: right, Warn: warn, Pos: pos}, nil

	default:
		return nil, fmt.Errorf("%s: unexpected token %q starting a directive", p.curToken.Pos, p.curToken.Lexeme)
	}
}

// ParseTermString parses src as a single standalone term (no trailing
// '.'), for callers outside a directive stream such as internal/rpcapi.
func ParseTermString(file, src string) (Expr, error) {
	p := New(lexer.New(file, src))
	e, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	if !p.curTokenIs(token.EOF) {
		return nil, fmt.Errorf("%s: unexpected trailing token %q after term", p.curToken.Pos, p.curToken.Lexeme)
	}
	return e, nil
}

// parseTerm parses a full term: an application optionally followed by
// an arrow into a (non-dependent) Pi, or a lambda.
func (p *Parser) parseTerm() (Expr, error) {
	if p.curTokenIs(token.BACKSLASH) {
		return p.parseLambda()
	}
	left, err := p.parseApp()
	if err != nil {
		return nil, err
	}
	if p.curTokenIs(token.ARROW) {
		pos := p.curToken.Pos
		p.nextToken()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		return Pi{Param: "_", Domain: left, Body: right, Pos: pos}, nil
	}
	return left, nil
}

func (p *Parser) parseLambda() (Expr, error) {
	pos := p.curToken.Pos
	p.nextToken() // consume '\'
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	var domain Expr
	if p.curTokenIs(token.COLON) {
		p.nextToken()
		domain, err = p.parseAtom()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.DOT); err != nil {
		return nil, err
	}
	body, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	return Lambda{Param: name.Lexeme, Domain: domain, Body: body, Pos: pos}, nil
}

func (p *Parser) parseApp() (Expr, error) {
	left, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for isAtomStart(p.curToken.Type) {
		arg, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		left = App{Fun: left, Arg: arg}
	}
	return left, nil
}

func isAtomStart(t token.Type) bool {
	switch t {
	case token.IDENT, token.TYPESORT, token.QUESTION, token.LPAREN, token.BACKSLASH:
		return true
	default:
		return false
	}
}

func (p *Parser) parseAtom() (Expr, error) {
	pos := p.curToken.Pos
	switch p.curToken.Type {
	case token.IDENT:
		tok := p.curToken
		p.nextToken()
		return Ident{Name: tok.Lexeme, Pos: pos}, nil

	case token.TYPESORT:
		p.nextToken()
		return Sort{Pos: pos}, nil

	case token.QUESTION:
		p.nextToken()
		n, err := p.expect(token.INT)
		if err != nil {
			return nil, err
		}
		idx, err := parseDecimal(n.Lexeme)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid pattern hole index %q", pos, n.Lexeme)
		}
		return PatHole{Index: idx, Pos: pos}, nil

	case token.BACKSLASH:
		return p.parseLambda()

	case token.LPAREN:
		return p.parseParenthesised()

	default:
		return nil, fmt.Errorf("%s: unexpected token %q in term", pos, p.curToken.Lexeme)
	}
}

// parseParenthesised handles both a grouped term `(t)` and a dependent
// product `(x : A) -> B`, distinguished by a one-token lookahead for
// COLON right after the identifier.
func (p *Parser) parseParenthesised() (Expr, error) {
	pos := p.curToken.Pos
	p.nextToken() // consume '('
	if p.curTokenIs(token.IDENT) && p.peekTokenIs(token.COLON) {
		name := p.curToken.Lexeme
		p.nextToken() // ident
		p.nextToken() // ':'
		domain, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		if _, err := p.expect(token.ARROW); err != nil {
			return nil, err
		}
		body, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		return Pi{Param: name, Domain: domain, Body: body, Pos: pos}, nil
	}
	inner, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return inner, nil
}

func parseDecimal(s string) (int, error) {
	n := 0
	if s == "" {
		return 0, fmt.Errorf("empty integer literal")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("invalid digit %q", r)
		}
		n = n*10 + int(r-'0')
	}
	return n, nil
}
