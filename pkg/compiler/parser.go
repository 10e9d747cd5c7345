package compiler

import "fmt"

// Parser consumes the flat token slice produced by the Lexer and builds one
// tree per statement.
//
// Grammar, loosest binding first:
//
//	program        = statement* EOF
//	statement      = assignment ";"
//	assignment     = additive ("=" assignment)*
//	additive       = multiplicative (("+" | "-") multiplicative)*
//	multiplicative = atom (("*" | "/") atom)*
//	atom           = NUMBER | IDENTIFIER | "(" additive ")"
//
// "=" chains to the right through recursion; the other operators fold to
// the left.
type Parser struct {
	tokens []Token
	pos    int
	source string
}

func NewParser(tokens []Token, rawSource string) *Parser {
	return &Parser{tokens: tokens, source: rawSource}
}

// errorAt builds a ParseError pointing at tok.
func (p *Parser) errorAt(tok Token, format string, args ...any) error {
	return &Error{Kind: ParseError, Pos: tok.Pos, Msg: fmt.Sprintf(format, args...), Source: p.source}
}

// peek returns the current token without consuming it. Past the end of the
// slice it behaves as if the input ended there.
func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		end := len(p.source)
		if n := len(p.tokens); n > 0 {
			end = p.tokens[n-1].Pos
		}
		return Token{Type: EOF, Pos: end}
	}
	return p.tokens[p.pos]
}

// advance consumes and returns the current token.
func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// consume advances past the current token only if it has type tt.
// NUMBER and IDENTIFIER match regardless of their value.
func (p *Parser) consume(tt TokenType) bool {
	if p.peek().Type != tt {
		return false
	}
	p.advance()
	return true
}

// Pos reports the index of the next unconsumed token.
func (p *Parser) Pos() int {
	return p.pos
}

// ParseProgram parses statements until EOF.
func (p *Parser) ParseProgram() ([]Expr, error) {
	var stmts []Expr
	for p.peek().Type != EOF {
		stmt, err := p.ParseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

// ParseStatement parses one assignment expression and its terminating ';'.
func (p *Parser) ParseStatement() (Expr, error) {
	expr, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	if !p.consume(SEMICOLON) {
		tok := p.peek()
		return nil, p.errorAt(tok, "expected ';' after statement, got %s", tok.describe())
	}
	return expr, nil
}

// parseAssignment handles =, which chains right-to-left.
func (p *Parser) parseAssignment() (Expr, error) {
	expr, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	for p.peek().Type == ASSIGN {
		eq := p.advance()
		if _, ok := expr.(*Ident); !ok {
			return nil, p.errorAt(eq, "invalid assignment target %s: left of '=' must be a variable", expr)
		}
		right, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		expr = newAssign(expr, right)
	}
	return expr, nil
}

// parseAdditive handles + and -
func (p *Parser) parseAdditive() (Expr, error) {
	expr, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}

	for {
		tt := p.peek().Type
		if tt != PLUS && tt != MINUS {
			break
		}
		op := p.advance().Type
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		expr = newBinary(op, expr, right)
	}

	return expr, nil
}

// parseMultiplicative handles * and /
func (p *Parser) parseMultiplicative() (Expr, error) {
	expr, err := p.parseAtom()
	if err != nil {
		return nil, err
	}

	for {
		tt := p.peek().Type
		if tt != STAR && tt != SLASH {
			break
		}
		op := p.advance().Type
		right, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		expr = newBinary(op, expr, right)
	}

	return expr, nil
}

// parseAtom handles literals, variables, and parenthesised expressions.
// A parenthesised group holds an additive expression, so "(a = 1)" is
// rejected.
func (p *Parser) parseAtom() (Expr, error) {
	tok := p.peek()
	switch tok.Type {
	case NUMBER:
		p.advance()
		return &Number{Value: tok.Value}, nil

	case IDENTIFIER:
		p.advance()
		return &Ident{Name: tok.Name()}, nil

	case LPAREN:
		p.advance()
		expr, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		if !p.consume(RPAREN) {
			got := p.peek()
			return nil, p.errorAt(got, "missing ')' for '(' at column %d, got %s", tok.Pos+1, got.describe())
		}
		return expr, nil

	default:
		return nil, p.errorAt(tok, "unexpected token %s: expected a number, a variable or '('", tok.describe())
	}
}

// Parse builds the statement list for a token slice produced by Lex.
func Parse(tokens []Token, rawSource string) ([]Expr, error) {
	return NewParser(tokens, rawSource).ParseProgram()
}
