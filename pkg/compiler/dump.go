package compiler

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// dumpNode is the serialized shape of an Expr.
type dumpNode struct {
	Type  string    `json:"type" yaml:"type"`
	Value *int64    `json:"value,omitempty" yaml:"value,omitempty"`
	Name  string    `json:"name,omitempty" yaml:"name,omitempty"`
	Op    string    `json:"op,omitempty" yaml:"op,omitempty"`
	Left  *dumpNode `json:"left,omitempty" yaml:"left,omitempty"`
	Right *dumpNode `json:"right,omitempty" yaml:"right,omitempty"`
}

func toDump(e Expr) *dumpNode {
	switch n := e.(type) {
	case *Number:
		v := n.Value
		return &dumpNode{Type: "Number", Value: &v}
	case *Ident:
		return &dumpNode{Type: "Ident", Name: string(n.Name)}
	case *BinaryExpr:
		return &dumpNode{Type: "BinaryExpr", Op: n.Op.Symbol(), Left: toDump(n.Left), Right: toDump(n.Right)}
	case *Assign:
		return &dumpNode{Type: "Assign", Op: "=", Left: toDump(n.Left), Right: toDump(n.Right)}
	}
	return nil
}

func toDumpList(stmts []Expr) []*dumpNode {
	out := make([]*dumpNode, len(stmts))
	for i, s := range stmts {
		out[i] = toDump(s)
	}
	return out
}

// FprintJSON writes the statement list as a JSON array.
func FprintJSON(w io.Writer, stmts []Expr) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toDumpList(stmts))
}

// FprintYAML writes the statement list as a YAML sequence.
func FprintYAML(w io.Writer, stmts []Expr) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(toDumpList(stmts)); err != nil {
		return err
	}
	return enc.Close()
}

// FprintAST writes an indented tree, one node per line.
func FprintAST(w io.Writer, stmts []Expr) error {
	var b strings.Builder
	for i, s := range stmts {
		fmt.Fprintf(&b, "Stmt %d\n", i+1)
		printNode(&b, s, "  ")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func printNode(b *strings.Builder, e Expr, indent string) {
	switch n := e.(type) {
	case *Number:
		fmt.Fprintf(b, "%sNumber %d\n", indent, n.Value)
	case *Ident:
		fmt.Fprintf(b, "%sIdent %c\n", indent, n.Name)
	case *BinaryExpr:
		fmt.Fprintf(b, "%sBinaryExpr %s\n", indent, n.Op.Symbol())
		printNode(b, n.Left, indent+"  ")
		printNode(b, n.Right, indent+"  ")
	case *Assign:
		fmt.Fprintf(b, "%sAssign\n", indent)
		printNode(b, n.Left, indent+"  ")
		printNode(b, n.Right, indent+"  ")
	default:
		fmt.Fprintf(b, "%s%T\n", indent, e)
	}
}

// FprintTokens writes a column table of tokens.
func FprintTokens(w io.Writer, tokens []Token) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%-8s %-12s %s\n", "COLUMN", "TOKEN", "LEXEME")
	fmt.Fprintf(&b, "%-8s %-12s %s\n", strings.Repeat("-", 8), strings.Repeat("-", 12), strings.Repeat("-", 8))
	for _, tok := range tokens {
		fmt.Fprintf(&b, "%-8d %-12s %q\n", tok.Pos+1, tok.Type, tok.Lexeme)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
