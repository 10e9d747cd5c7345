package compiler

import (
	"reflect"
	"strings"
	"testing"
)

func parseSource(t *testing.T, src string) []Expr {
	t.Helper()
	tokens, err := Lex(src)
	if err != nil {
		t.Fatalf("Lex(%q) failed: %v", src, err)
	}
	stmts, err := Parse(tokens, src)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", src, err)
	}
	return stmts
}

func num(v int64) *Number { return &Number{Value: v} }

func ident(c byte) *Ident { return &Ident{Name: c} }

func bin(op TokenType, l, r Expr) Expr { return &BinaryExpr{Op: op, Left: l, Right: r} }

func assign(l, r Expr) Expr { return &Assign{Left: l, Right: r} }

func TestParse_Trees(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Expr
	}{
		{"Empty Program", "", nil},
		{"Number", "42;", []Expr{num(42)}},
		{"Variable", "q;", []Expr{ident('q')}},
		{
			"Precedence",
			"2+3*4;",
			[]Expr{bin(PLUS, num(2), bin(STAR, num(3), num(4)))},
		},
		{
			"Left Associative Subtraction",
			"10-3-2;",
			[]Expr{bin(MINUS, bin(MINUS, num(10), num(3)), num(2))},
		},
		{
			"Left Associative Division",
			"8/4/2;",
			[]Expr{bin(SLASH, bin(SLASH, num(8), num(4)), num(2))},
		},
		{
			"Parentheses Override",
			"(2+3)*4;",
			[]Expr{bin(STAR, bin(PLUS, num(2), num(3)), num(4))},
		},
		{
			"Right Associative Assignment",
			"a=b=5;",
			[]Expr{assign(ident('a'), assign(ident('b'), num(5)))},
		},
		{
			"Assignment Of Expression",
			"a=b*2+1;",
			[]Expr{assign(ident('a'), bin(PLUS, bin(STAR, ident('b'), num(2)), num(1)))},
		},
		{
			"Parenthesised Variable Is Assignable",
			"(a)=1;",
			[]Expr{assign(ident('a'), num(1))},
		},
		{
			"Statement Sequence",
			"a=3; b=a*2; a+b;",
			[]Expr{
				assign(ident('a'), num(3)),
				assign(ident('b'), bin(STAR, ident('a'), num(2))),
				bin(PLUS, ident('a'), ident('b')),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseSource(t, tt.input)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantPos int
		wantMsg string
	}{
		{"Missing Semicolon", "1+2", 3, "expected ';' after statement, got end of input"},
		{"Dangling Operator", "1+;", 2, "unexpected token \";\": expected a number, a variable or '('"},
		{"Unclosed Paren", "(1+2;", 4, "missing ')' for '(' at column 1"},
		{"Stray Close Paren", "1);", 1, "expected ';' after statement, got \")\""},
		{"Empty Statement", ";", 0, "unexpected token \";\""},
		{"Assign To Number", "1=2;", 1, "invalid assignment target 1"},
		{"Assign To Sum", "a+b=2;", 3, "invalid assignment target (a + b)"},
		{"Assign Inside Parens", "(a=1);", 2, "missing ')'"},
		{"Chained Into Literal", "a=1=2;", 3, "invalid assignment target 1"},
		{"Unary Minus", "-1;", 0, "unexpected token \"-\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Lex(tt.input)
			if err != nil {
				t.Fatalf("Lex failed: %v", err)
			}
			_, err = Parse(tokens, tt.input)
			ce, ok := err.(*Error)
			if !ok {
				t.Fatalf("expected *Error, got %T (%v)", err, err)
			}
			if ce.Kind != ParseError {
				t.Errorf("Kind = %v, want ParseError", ce.Kind)
			}
			if ce.Pos != tt.wantPos {
				t.Errorf("Pos = %d, want %d", ce.Pos, tt.wantPos)
			}
			if !strings.Contains(ce.Msg, tt.wantMsg) {
				t.Errorf("Msg = %q, want it to contain %q", ce.Msg, tt.wantMsg)
			}
		})
	}
}

func TestParse_RoundTripThroughString(t *testing.T) {
	// String fully parenthesises a tree; reparsing it must give the same
	// tree back.
	sources := []string{
		"1+2*3;",
		"(1+2)*3;",
		"a*(b-c)/d;",
		"10-(3-2);",
		"10-3-2;",
	}
	for _, src := range sources {
		first := parseSource(t, src)
		printed := first[0].String() + ";"
		second := parseSource(t, printed)
		if !reflect.DeepEqual(first, second) {
			t.Errorf("round trip of %q via %q changed the tree: %v vs %v", src, printed, first, second)
		}
	}

	got := parseSource(t, "x=y=z*2;")[0].String()
	if got != "(x = (y = (z * 2)))" {
		t.Errorf("String() = %q", got)
	}
}

func TestParser_PeekPastEnd(t *testing.T) {
	p := NewParser(nil, "a")
	tok := p.peek()
	if tok.Type != EOF || tok.Pos != 1 {
		t.Errorf("peek on empty token slice = %v, want EOF at 1", tok)
	}
	p.advance()
	if p.Pos() != 0 {
		t.Errorf("advance past the end moved to %d", p.Pos())
	}
}

func TestParser_ConsumeMatchesAnyNumber(t *testing.T) {
	tokens, err := Lex("7 8")
	if err != nil {
		t.Fatal(err)
	}
	p := NewParser(tokens, "7 8")
	if !p.consume(NUMBER) || !p.consume(NUMBER) {
		t.Fatal("consume(NUMBER) should match both literals")
	}
	if p.consume(NUMBER) {
		t.Fatal("consume(NUMBER) matched EOF")
	}
}
