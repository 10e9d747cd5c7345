package compiler

import (
	"fmt"
	"strconv"
)

// punctuation maps single-character symbols to their TokenType.
var punctuation = map[byte]TokenType{
	'=': ASSIGN,
	';': SEMICOLON,
	'(': LPAREN,
	')': RPAREN,
	'+': PLUS,
	'-': MINUS,
	'*': STAR,
	'/': SLASH,
}

// Lexer holds all mutable state for a single scanning pass over src.
// It only ever moves forward.
type Lexer struct {
	src string
	pos int // index of the next byte to consume
}

func newLexer(src string) *Lexer {
	return &Lexer{src: src}
}

func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.src)
}

// peek returns the byte at the current position without advancing.
func (l *Lexer) peek() byte {
	if l.atEnd() {
		return 0
	}
	return l.src[l.pos]
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\f', '\r':
		return true
	}
	return false
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isLower(c byte) bool { return c >= 'a' && c <= 'z' }

func (l *Lexer) skipWhitespace() {
	for !l.atEnd() && isSpace(l.peek()) {
		l.pos++
	}
}

// scanNumber collects a maximal run of digits.
// The first digit must still be at l.peek().
func (l *Lexer) scanNumber() (Token, error) {
	start := l.pos
	for !l.atEnd() && isDigit(l.peek()) {
		l.pos++
	}
	lexeme := l.src[start:l.pos]
	val, err := strconv.ParseInt(lexeme, 10, 64)
	if err != nil {
		return Token{}, l.errorAt(start, "integer literal %s does not fit in 64 bits", lexeme)
	}
	return Token{Type: NUMBER, Lexeme: lexeme, Value: val, Pos: start}, nil
}

func (l *Lexer) errorAt(pos int, format string, args ...any) error {
	return &Error{Kind: TokenizeError, Pos: pos, Msg: fmt.Sprintf(format, args...), Source: l.src}
}

// Next returns the next token. Once the input is exhausted it returns EOF
// on every call.
func (l *Lexer) Next() (Token, error) {
	l.skipWhitespace()
	if l.atEnd() {
		return Token{Type: EOF, Pos: l.pos}, nil
	}

	c := l.peek()
	switch {
	case isDigit(c):
		return l.scanNumber()

	// Identifiers are exactly one letter; "ab" is two tokens.
	case isLower(c):
		tok := Token{Type: IDENTIFIER, Lexeme: l.src[l.pos : l.pos+1], Pos: l.pos}
		l.pos++
		return tok, nil
	}

	if tt, ok := punctuation[c]; ok {
		tok := Token{Type: tt, Lexeme: l.src[l.pos : l.pos+1], Pos: l.pos}
		l.pos++
		return tok, nil
	}

	return Token{}, l.errorAt(l.pos, "cannot tokenize: %s", l.src[l.pos:])
}

// Lex converts src into a flat token slice terminated by exactly one EOF.
func Lex(src string) ([]Token, error) {
	l := newLexer(src)
	var tokens []Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens, nil
		}
	}
}
