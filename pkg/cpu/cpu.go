package cpu

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/bits"

	"r9cc/pkg/asm"
)

const (
	DefaultStackSize = 1 << 20
	DefaultMaxSteps  = 1_000_000

	wordSize = 8

	// returnSentinel is the return address pushed before entering the
	// program; returning to it halts the machine.
	returnSentinel uint64 = 0xDEAD_BEEF_0000_0000
)

const (
	RAX = iota
	RBX
	RCX
	RDX
	RSI
	RDI
	RBP
	RSP
	numRegs
)

var regIndex = map[string]int{
	"rax": RAX, "rbx": RBX, "rcx": RCX, "rdx": RDX,
	"rsi": RSI, "rdi": RDI, "rbp": RBP, "rsp": RSP,
}

var regNames = [numRegs]string{"rax", "rbx", "rcx", "rdx", "rsi", "rdi", "rbp", "rsp"}

// Fault is a runtime error raised by an instruction.
type Fault struct {
	Line   int    // source line of the faulting instruction, 0 if none
	Instr  string // instruction text
	Reason string
}

func (f *Fault) Error() string {
	if f.Line == 0 {
		return "cpu fault: " + f.Reason
	}
	return fmt.Sprintf("cpu fault on line %d (%s): %s", f.Line, f.Instr, f.Reason)
}

// Config sizes the machine.
type Config struct {
	StackSize int // bytes of stack memory; 0 means DefaultStackSize
	MaxSteps  int // instruction budget; 0 means DefaultMaxSteps
}

// CPU executes an assembled program. Memory is a single zeroed stack
// region; addresses run from 0 to len(Memory), and rsp starts at the top.
type CPU struct {
	Regs [numRegs]uint64

	PC     int // index of the next instruction
	Steps  int
	Halted bool

	Memory []byte

	// Trace, when set, receives one line per executed instruction.
	Trace io.Writer

	maxSteps int
	prog     *asm.Program
	top      uint64
}

func NewCPU(cfg Config) *CPU {
	size := cfg.StackSize
	if size <= 0 {
		size = DefaultStackSize
	}
	size -= size % wordSize
	if size < 2*wordSize {
		size = 2 * wordSize
	}
	maxSteps := cfg.MaxSteps
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	return &CPU{
		Memory:   make([]byte, size),
		maxSteps: maxSteps,
		top:      uint64(size),
	}
}

// Load resets the machine and positions it at the program's entry symbol,
// as if that symbol had just been called.
func (c *CPU) Load(prog *asm.Program) error {
	_, entry, err := prog.Entry()
	if err != nil {
		return err
	}

	clear(c.Memory)
	c.Regs = [numRegs]uint64{}
	c.Steps = 0
	c.Halted = false
	c.prog = prog
	c.PC = entry
	c.Regs[RSP] = c.top
	return c.push(returnSentinel)
}

// Reg returns the value of the named register.
func (c *CPU) Reg(name string) (uint64, bool) {
	idx, ok := regIndex[name]
	if !ok {
		return 0, false
	}
	return c.Regs[idx], true
}

// FrameBase is the rbp value established by a standard prologue
// ("push rbp; mov rbp, rsp") at the entry symbol.
func (c *CPU) FrameBase() uint64 {
	return c.top - 2*wordSize
}

// Frame reads the 8-byte value stored offset bytes below FrameBase.
func (c *CPU) Frame(offset int) (int64, error) {
	v, err := c.read64(c.FrameBase() - uint64(offset))
	return int64(v), err
}

func (c *CPU) fault(in *asm.Instruction, format string, args ...any) error {
	f := &Fault{Reason: fmt.Sprintf(format, args...)}
	if in != nil {
		f.Line = in.Line
		f.Instr = in.String()
	}
	return f
}

func (c *CPU) read64(addr uint64) (uint64, error) {
	if addr > c.top-wordSize {
		return 0, &Fault{Reason: fmt.Sprintf("memory read out of bounds at %#x", addr)}
	}
	return binary.LittleEndian.Uint64(c.Memory[addr:]), nil
}

func (c *CPU) write64(addr, val uint64) error {
	if addr > c.top-wordSize {
		return &Fault{Reason: fmt.Sprintf("memory write out of bounds at %#x", addr)}
	}
	binary.LittleEndian.PutUint64(c.Memory[addr:], val)
	return nil
}

func (c *CPU) push(val uint64) error {
	if c.Regs[RSP] < wordSize {
		return &Fault{Reason: "stack overflow"}
	}
	c.Regs[RSP] -= wordSize
	return c.write64(c.Regs[RSP], val)
}

func (c *CPU) pop() (uint64, error) {
	if c.Regs[RSP] >= c.top {
		return 0, &Fault{Reason: "stack underflow"}
	}
	v, err := c.read64(c.Regs[RSP])
	if err != nil {
		return 0, err
	}
	c.Regs[RSP] += wordSize
	return v, nil
}

// value evaluates a source operand.
func (c *CPU) value(op asm.Operand) (uint64, error) {
	switch op.Kind {
	case asm.Reg:
		return c.Regs[regIndex[op.Reg]], nil
	case asm.Imm:
		return uint64(op.Imm), nil
	case asm.Mem:
		return c.read64(c.Regs[regIndex[op.Reg]])
	}
	return 0, fmt.Errorf("bad operand kind %s", op.Kind)
}

// Step executes one instruction.
func (c *CPU) Step() error {
	if c.Halted {
		return nil
	}
	if c.prog == nil {
		return &Fault{Reason: "no program loaded"}
	}
	if c.PC < 0 || c.PC >= len(c.prog.Instrs) {
		return &Fault{Reason: fmt.Sprintf("execution ran off the program at instruction %d", c.PC)}
	}
	if c.Steps >= c.maxSteps {
		return &Fault{Reason: fmt.Sprintf("step limit of %d exceeded", c.maxSteps)}
	}

	in := &c.prog.Instrs[c.PC]
	c.PC++
	c.Steps++

	if err := c.exec(in); err != nil {
		if f, ok := err.(*Fault); ok && f.Line == 0 {
			f.Line, f.Instr = in.Line, in.String()
		}
		return err
	}

	if c.Trace != nil {
		fmt.Fprintf(c.Trace, "%4d  %-20s rax=%d rdi=%d rsp=%#x\n",
			in.Line, in.String(), int64(c.Regs[RAX]), int64(c.Regs[RDI]), c.Regs[RSP])
	}
	return nil
}

func (c *CPU) exec(in *asm.Instruction) error {
	ops := in.Operands

	switch in.Mnemonic {
	case "push":
		v, err := c.value(ops[0])
		if err != nil {
			return err
		}
		return c.push(v)

	case "pop":
		v, err := c.pop()
		if err != nil {
			return err
		}
		c.Regs[regIndex[ops[0].Reg]] = v

	case "mov":
		v, err := c.value(ops[1])
		if err != nil {
			return err
		}
		if ops[0].Kind == asm.Mem {
			return c.write64(c.Regs[regIndex[ops[0].Reg]], v)
		}
		c.Regs[regIndex[ops[0].Reg]] = v

	case "add", "sub":
		v, err := c.value(ops[1])
		if err != nil {
			return err
		}
		dst := &c.Regs[regIndex[ops[0].Reg]]
		if in.Mnemonic == "add" {
			*dst += v
		} else {
			*dst -= v
		}

	case "mul":
		hi, lo := bits.Mul64(c.Regs[RAX], c.Regs[regIndex[ops[0].Reg]])
		c.Regs[RAX], c.Regs[RDX] = lo, hi

	case "div":
		d := c.Regs[regIndex[ops[0].Reg]]
		if d == 0 {
			return c.fault(in, "divide by zero")
		}
		if c.Regs[RDX] >= d {
			return c.fault(in, "quotient overflow")
		}
		q, r := bits.Div64(c.Regs[RDX], c.Regs[RAX], d)
		c.Regs[RAX], c.Regs[RDX] = q, r

	case "ret":
		target, err := c.pop()
		if err != nil {
			return err
		}
		if target != returnSentinel {
			return c.fault(in, "return to unknown address %#x", target)
		}
		c.Halted = true

	default:
		return c.fault(in, "unsupported instruction")
	}
	return nil
}

// Run executes until the entry function returns and yields rax.
func (c *CPU) Run() (int64, error) {
	for !c.Halted {
		if err := c.Step(); err != nil {
			return 0, err
		}
	}
	return int64(c.Regs[RAX]), nil
}

// Execute loads prog into a fresh machine and runs it.
func Execute(prog *asm.Program, cfg Config) (*CPU, int64, error) {
	c := NewCPU(cfg)
	if err := c.Load(prog); err != nil {
		return nil, 0, err
	}
	result, err := c.Run()
	return c, result, err
}

// RegisterName returns the register spelled by index idx.
func RegisterName(idx int) string {
	if idx < 0 || idx >= numRegs {
		return ""
	}
	return regNames[idx]
}
