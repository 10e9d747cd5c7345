package compiler

import (
	"fmt"
	"sort"
	"strings"
)

const (
	// SlotSize is the width in bytes of one variable slot.
	SlotSize = 8
	// NumSlots is the number of single-letter variables, 'a' through 'z'.
	NumSlots = 26
	// FrameSize is the local storage reserved by the prologue.
	FrameSize = NumSlots * SlotSize

	// DefaultEntrySymbol is the global label the program starts at.
	DefaultEntrySymbol = "main"
)

// Options controls the text around the generated instruction stream.
type Options struct {
	// EntrySymbol names the global entry label. Empty means DefaultEntrySymbol.
	EntrySymbol string
	// Comments precedes each statement's code with a '#' line rendering it.
	Comments bool
}

func (o Options) entry() string {
	if o.EntrySymbol == "" {
		return DefaultEntrySymbol
	}
	return o.EntrySymbol
}

// SlotOffset returns how far below the frame base the variable name lives:
// 'z' is at rbp-8, 'y' at rbp-16, ..., 'a' at rbp-208.
func SlotOffset(name byte) (int, error) {
	if name < 'a' || name > 'z' {
		return 0, codegenErrorf("no storage slot for variable %q", name)
	}
	return (int('z'-name) + 1) * SlotSize, nil
}

// CodeGen walks statement trees and emits x86-64 assembly text that
// evaluates them on the machine stack.
type CodeGen struct {
	opts Options
	out  strings.Builder
}

func newCodeGen(opts Options) *CodeGen {
	return &CodeGen{opts: opts}
}

func (cg *CodeGen) line(format string, args ...any) {
	fmt.Fprintf(&cg.out, format+"\n", args...)
}

func (cg *CodeGen) comment(format string, args ...any) {
	cg.line("  # "+format, args...)
}

// genLval pushes the address of the variable e names.
func (cg *CodeGen) genLval(e Expr) error {
	ident, ok := e.(*Ident)
	if !ok {
		return codegenErrorf("left side of assignment is not a variable: %s", e)
	}
	offset, err := SlotOffset(ident.Name)
	if err != nil {
		return err
	}
	cg.line("  mov rax, rbp")
	cg.line("  sub rax, %d", offset)
	cg.line("  push rax")
	return nil
}

// genExpr emits code that pushes the value of e, and nothing else.
func (cg *CodeGen) genExpr(e Expr) error {
	switch n := e.(type) {
	case *Number:
		cg.line("  push %d", n.Value)
		return nil

	case *Ident:
		if err := cg.genLval(n); err != nil {
			return err
		}
		cg.line("  pop rax")
		cg.line("  mov rax, [rax]")
		cg.line("  push rax")
		return nil

	case *Assign:
		if n.Left == nil || n.Right == nil {
			return codegenErrorf("assignment with missing operand")
		}
		if err := cg.genLval(n.Left); err != nil {
			return err
		}
		if err := cg.genExpr(n.Right); err != nil {
			return err
		}
		cg.line("  pop rdi")
		cg.line("  pop rax")
		cg.line("  mov [rax], rdi")
		cg.line("  push rdi")
		return nil

	case *BinaryExpr:
		return cg.genBinary(n)

	case nil:
		return codegenErrorf("missing expression")

	default:
		return codegenErrorf("unsupported node %T", e)
	}
}

func (cg *CodeGen) genBinary(n *BinaryExpr) error {
	if n.Left == nil || n.Right == nil {
		return codegenErrorf("operator %s with missing operand", n.Op.Symbol())
	}
	if err := cg.genExpr(n.Left); err != nil {
		return err
	}
	if err := cg.genExpr(n.Right); err != nil {
		return err
	}

	cg.line("  pop rdi")
	cg.line("  pop rax")

	switch n.Op {
	case PLUS:
		cg.line("  add rax, rdi")
	case MINUS:
		cg.line("  sub rax, rdi")
	case STAR:
		cg.line("  mul rdi")
	case SLASH:
		// Unsigned: rdx:rax / rdi. Negative operands are not given signed
		// semantics.
		cg.line("  mov rdx, 0")
		cg.line("  div rdi")
	default:
		return codegenErrorf("unknown binary operator %s", n.Op)
	}

	cg.line("  push rax")
	return nil
}

func (cg *CodeGen) prologue() {
	cg.line(".intel_syntax noprefix")
	cg.line(".global %s", cg.opts.entry())
	cg.line("%s:", cg.opts.entry())

	// Reserve the 26 variable slots.
	cg.line("  push rbp")
	cg.line("  mov rbp, rsp")
	cg.line("  sub rsp, %d", FrameSize)
}

// epilogue returns with the last statement's value still in rax.
func (cg *CodeGen) epilogue() {
	cg.line("  mov rsp, rbp")
	cg.line("  pop rbp")
	cg.line("  ret")
}

// GenExpr returns the instructions for a single tree: on completion they
// have pushed exactly one value, the result of e.
func GenExpr(e Expr) (string, error) {
	cg := newCodeGen(Options{})
	if err := cg.genExpr(e); err != nil {
		return "", err
	}
	return cg.out.String(), nil
}

// Generate emits a complete program for stmts. Each statement's value is
// popped into rax, so the caller sees the last one.
func Generate(stmts []Expr, opts Options) (string, error) {
	cg := newCodeGen(opts)
	cg.prologue()

	for i, stmt := range stmts {
		if cg.opts.Comments {
			cg.comment("%d: %s;", i+1, stmt)
		}
		if err := cg.genExpr(stmt); err != nil {
			return "", err
		}
		cg.line("  pop rax")
	}

	cg.epilogue()
	return cg.out.String(), nil
}

// Variables returns the distinct variable names referenced by stmts, in
// alphabetical order.
func Variables(stmts []Expr) []byte {
	seen := make(map[byte]bool)
	var walk func(Expr)
	walk = func(e Expr) {
		switch n := e.(type) {
		case *Ident:
			seen[n.Name] = true
		case *BinaryExpr:
			walk(n.Left)
			walk(n.Right)
		case *Assign:
			walk(n.Left)
			walk(n.Right)
		}
	}
	for _, s := range stmts {
		walk(s)
	}

	names := make([]byte, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
