package asm

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// OperandKind tells how an operand is addressed.
type OperandKind int

const (
	Reg OperandKind = iota // rax
	Imm                    // 42
	Mem                    // [rax]
)

func (k OperandKind) String() string {
	switch k {
	case Reg:
		return "reg"
	case Imm:
		return "imm"
	case Mem:
		return "mem"
	}
	return fmt.Sprintf("OperandKind(%d)", int(k))
}

// Operand is one instruction argument. Mem operands hold their base
// register in Reg.
type Operand struct {
	Kind OperandKind
	Reg  string
	Imm  int64
}

func (o Operand) String() string {
	switch o.Kind {
	case Reg:
		return o.Reg
	case Imm:
		return strconv.FormatInt(o.Imm, 10)
	case Mem:
		return "[" + o.Reg + "]"
	}
	return "?"
}

// Instruction is one decoded source line.
type Instruction struct {
	Line     int // 1-based source line
	Mnemonic string
	Operands []Operand
}

func (in Instruction) String() string {
	if len(in.Operands) == 0 {
		return in.Mnemonic
	}
	ops := make([]string, len(in.Operands))
	for i, o := range in.Operands {
		ops[i] = o.String()
	}
	return in.Mnemonic + " " + strings.Join(ops, ", ")
}

// Program is an assembled translation unit.
type Program struct {
	Syntax  string         // operand order declared by .intel_syntax
	Globals []string       // symbols exported with .global/.globl
	Labels  map[string]int // label -> index into Instrs
	Instrs  []Instruction
}

// Entry returns the instruction index of the first global symbol.
func (p *Program) Entry() (string, int, error) {
	if len(p.Globals) == 0 {
		return "", 0, fmt.Errorf("program declares no global entry symbol")
	}
	name := p.Globals[0]
	idx, ok := p.Labels[name]
	if !ok {
		return "", 0, fmt.Errorf("global symbol '%s' has no label", name)
	}
	return name, idx, nil
}

var registers = map[string]bool{
	"rax": true, "rbx": true, "rcx": true, "rdx": true,
	"rsi": true, "rdi": true, "rbp": true, "rsp": true,
}

// IsRegister reports whether name is a register the assembler accepts.
func IsRegister(name string) bool {
	return registers[name]
}

// forms lists the operand shapes each mnemonic accepts.
var forms = map[string][][]OperandKind{
	"push": {{Reg}, {Imm}},
	"pop":  {{Reg}},
	"mov":  {{Reg, Reg}, {Reg, Imm}, {Reg, Mem}, {Mem, Reg}},
	"add":  {{Reg, Reg}, {Reg, Imm}},
	"sub":  {{Reg, Reg}, {Reg, Imm}},
	"mul":  {{Reg}},
	"div":  {{Reg}},
	"ret":  {{}},
}

type Assembler struct {
	labels map[string]int
}

type parsedLine struct {
	lineNo    int
	labels    []string
	directive string
	mnemonic  string
	operands  []string
}

func NewAssembler() *Assembler {
	return &Assembler{
		labels: make(map[string]int),
	}
}

func Assemble(code string) (*Program, error) {
	return NewAssembler().Assemble(code)
}

func (a *Assembler) Assemble(code string) (*Program, error) {
	rawLines := strings.Split(code, "\n")
	lines := make([]parsedLine, 0, len(rawLines))
	for i, raw := range rawLines {
		p, err := parseLine(raw, i+1)
		if err != nil {
			return nil, err
		}
		lines = append(lines, p)
	}

	if err := a.pass1(lines); err != nil {
		return nil, err
	}
	return a.pass2(lines)
}

// pass1 binds every label to the index of the instruction that follows it.
func (a *Assembler) pass1(lines []parsedLine) error {
	index := 0
	for _, p := range lines {
		for _, lbl := range p.labels {
			if _, exists := a.labels[lbl]; exists {
				return fmt.Errorf("duplicate label '%s' on line %d", lbl, p.lineNo)
			}
			a.labels[lbl] = index
		}
		if p.mnemonic != "" {
			index++
		}
	}
	return nil
}

func (a *Assembler) pass2(lines []parsedLine) (*Program, error) {
	prog := &Program{Labels: a.labels}

	for _, p := range lines {
		if p.directive != "" {
			if err := a.directive(prog, p); err != nil {
				return nil, err
			}
			continue
		}
		if p.mnemonic == "" {
			continue
		}
		if prog.Syntax == "" {
			return nil, fmt.Errorf("instruction before .intel_syntax on line %d", p.lineNo)
		}

		in, err := decode(p)
		if err != nil {
			return nil, err
		}
		prog.Instrs = append(prog.Instrs, in)
	}

	for _, g := range prog.Globals {
		if _, ok := prog.Labels[g]; !ok {
			return nil, fmt.Errorf("global symbol '%s' is never defined", g)
		}
	}
	return prog, nil
}

func (a *Assembler) directive(prog *Program, p parsedLine) error {
	switch p.directive {
	case ".intel_syntax":
		if len(p.operands) != 1 || p.operands[0] != "noprefix" {
			return fmt.Errorf(".intel_syntax expects 'noprefix' on line %d", p.lineNo)
		}
		prog.Syntax = "intel"
	case ".att_syntax":
		return fmt.Errorf("AT&T syntax is not supported (line %d)", p.lineNo)
	case ".global", ".globl":
		if len(p.operands) != 1 || !isIdentifier(p.operands[0]) {
			return fmt.Errorf("%s expects exactly one symbol on line %d", p.directive, p.lineNo)
		}
		prog.Globals = append(prog.Globals, p.operands[0])
	case ".text":
	default:
		return fmt.Errorf("unknown directive on line %d: %s", p.lineNo, p.directive)
	}
	return nil
}

func decode(p parsedLine) (Instruction, error) {
	in := Instruction{Line: p.lineNo, Mnemonic: p.mnemonic}
	allowed, ok := forms[p.mnemonic]
	if !ok {
		return in, fmt.Errorf("unknown instruction on line %d: %s", p.lineNo, p.mnemonic)
	}

	for _, tok := range p.operands {
		op, err := parseOperand(tok, p.lineNo)
		if err != nil {
			return in, err
		}
		in.Operands = append(in.Operands, op)
	}

	for _, form := range allowed {
		if matches(form, in.Operands) {
			return in, nil
		}
	}
	return in, fmt.Errorf("invalid operands for %s on line %d: %s", p.mnemonic, p.lineNo, in)
}

func matches(form []OperandKind, ops []Operand) bool {
	if len(form) != len(ops) {
		return false
	}
	for i, k := range form {
		if ops[i].Kind != k {
			return false
		}
	}
	return true
}

func parseOperand(token string, lineNo int) (Operand, error) {
	if strings.HasPrefix(token, "[") {
		if !strings.HasSuffix(token, "]") {
			return Operand{}, fmt.Errorf("unterminated memory operand '%s' on line %d", token, lineNo)
		}
		base := strings.TrimSpace(token[1 : len(token)-1])
		if !IsRegister(base) {
			return Operand{}, fmt.Errorf("invalid base register '%s' on line %d", base, lineNo)
		}
		return Operand{Kind: Mem, Reg: base}, nil
	}

	if IsRegister(strings.ToLower(token)) {
		return Operand{Kind: Reg, Reg: strings.ToLower(token)}, nil
	}

	if v, err := strconv.ParseInt(token, 0, 64); err == nil {
		return Operand{Kind: Imm, Imm: v}, nil
	}
	// Large literals are written unsigned by some emitters.
	if v, err := strconv.ParseUint(token, 0, 64); err == nil {
		return Operand{Kind: Imm, Imm: int64(v)}, nil
	}

	return Operand{}, fmt.Errorf("invalid operand '%s' on line %d", token, lineNo)
}

func parseLine(raw string, lineNo int) (parsedLine, error) {
	p := parsedLine{lineNo: lineNo}

	line := strings.TrimSpace(stripComments(raw))
	if line == "" {
		return p, nil
	}

	for {
		colon := strings.IndexByte(line, ':')
		if colon <= 0 {
			break
		}

		beforeColon := strings.TrimSpace(line[:colon])
		if strings.ContainsAny(beforeColon, " \t[") {
			break
		}
		if !isIdentifier(beforeColon) {
			return p, fmt.Errorf("invalid label '%s' on line %d", beforeColon, lineNo)
		}

		p.labels = append(p.labels, beforeColon)
		line = strings.TrimSpace(line[colon+1:])
		if line == "" {
			return p, nil
		}
	}

	head, rest := line, ""
	if i := strings.IndexAny(line, " \t"); i >= 0 {
		head, rest = line[:i], line[i+1:]
	}
	head = strings.ToLower(head)
	rest = strings.TrimSpace(rest)

	if strings.HasPrefix(head, ".") {
		p.directive = head
		p.operands = strings.Fields(strings.ReplaceAll(rest, ",", " "))
		return p, nil
	}

	p.mnemonic = head
	if rest != "" {
		for _, op := range strings.Split(rest, ",") {
			op = strings.TrimSpace(op)
			if op == "" {
				return p, fmt.Errorf("empty operand on line %d", lineNo)
			}
			p.operands = append(p.operands, op)
		}
	}
	return p, nil
}

func stripComments(line string) string {
	hash := strings.Index(line, "#")
	doubleSlash := strings.Index(line, "//")

	cut := -1
	if hash >= 0 {
		cut = hash
	}
	if doubleSlash >= 0 && (cut == -1 || doubleSlash < cut) {
		cut = doubleSlash
	}
	if cut >= 0 {
		return line[:cut]
	}
	return line
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' && r != '.' {
				return false
			}
			continue
		}

		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '.' && r != '$' {
			return false
		}
	}

	return true
}
