package compiler

import "fmt"

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF TokenType = iota // sentinel: end of input

	// Literals
	NUMBER     // decimal integer literal
	IDENTIFIER // single lowercase letter

	ASSIGN    // =
	SEMICOLON // ;

	LPAREN // (
	RPAREN // )

	// Arithmetic operators
	PLUS  // +
	MINUS // -
	SLASH // /
	STAR  // *
)

var tokenNames = [...]string{
	EOF:        "EOF",
	NUMBER:     "NUMBER",
	IDENTIFIER: "IDENTIFIER",
	ASSIGN:     "ASSIGN",
	SEMICOLON:  "SEMICOLON",
	LPAREN:     "LPAREN",
	RPAREN:     "RPAREN",
	PLUS:       "PLUS",
	MINUS:      "MINUS",
	SLASH:      "SLASH",
	STAR:       "STAR",
}

func (tt TokenType) String() string {
	if int(tt) >= 0 && int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// Symbol returns the source spelling of a punctuation token, or the type
// name for literals and EOF.
func (tt TokenType) Symbol() string {
	switch tt {
	case ASSIGN:
		return "="
	case SEMICOLON:
		return ";"
	case LPAREN:
		return "("
	case RPAREN:
		return ")"
	case PLUS:
		return "+"
	case MINUS:
		return "-"
	case SLASH:
		return "/"
	case STAR:
		return "*"
	}
	return tt.String()
}

// Token is a single lexical unit produced by the Lexer.
type Token struct {
	Type   TokenType
	Lexeme string // the exact source text that was matched
	Value  int64  // parsed value when Type == NUMBER
	Pos    int    // 0-based byte offset into the source
}

// Name returns the variable name of an IDENTIFIER token.
func (t Token) Name() byte {
	if t.Type != IDENTIFIER || t.Lexeme == "" {
		return 0
	}
	return t.Lexeme[0]
}

func (t Token) String() string {
	return fmt.Sprintf("%-10s %-6q  col %d", t.Type, t.Lexeme, t.Pos+1)
}

// describe renders a token for diagnostics.
func (t Token) describe() string {
	switch t.Type {
	case EOF:
		return "end of input"
	case NUMBER, IDENTIFIER:
		return fmt.Sprintf("%s %q", t.Type, t.Lexeme)
	}
	return fmt.Sprintf("%q", t.Lexeme)
}
