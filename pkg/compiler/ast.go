package compiler

import "fmt"

// Expr is implemented by every AST node. Every node produces a value:
// genExpr always leaves exactly one result on the operand stack.
//
// Leaves (*Number, *Ident) own no children. Internal nodes (*BinaryExpr,
// *Assign) own exactly two, both non-nil; the constructors below are the
// only way the parser builds them.
type Expr interface {
	exprNode()
	String() string
}

// Number is an integer literal.
//
//	a + 10;
//	    ^^  Number{Value: 10}
type Number struct {
	Value int64
}

func (*Number) exprNode()        {}
func (n *Number) String() string { return fmt.Sprintf("%d", n.Value) }

// Ident is a read of one of the 26 single-letter variables.
//
//	a + 10;
//	^  Ident{Name: 'a'}
type Ident struct {
	Name byte
}

func (*Ident) exprNode()        {}
func (i *Ident) String() string { return string(i.Name) }

// BinaryExpr represents Left Op Right for Op in PLUS, MINUS, STAR, SLASH.
//
//	x + 1
//	^ ^ ^
//	| | |
//	| | Right
//	| Op
//	Left
type BinaryExpr struct {
	Op    TokenType
	Left  Expr
	Right Expr
}

func (*BinaryExpr) exprNode() {}
func (b *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.Op.Symbol(), b.Right)
}

// Assign stores Right into the variable named by Left and yields the
// stored value. Left is always an *Ident when built by the parser.
//
//	a = b = 5;
//	Assign{Left: a, Right: Assign{Left: b, Right: 5}}
type Assign struct {
	Left  Expr
	Right Expr
}

func (*Assign) exprNode() {}
func (a *Assign) String() string {
	return fmt.Sprintf("(%s = %s)", a.Left, a.Right)
}

func newBinary(op TokenType, left, right Expr) *BinaryExpr {
	if left == nil || right == nil {
		panic("compiler: binary node with missing operand")
	}
	return &BinaryExpr{Op: op, Left: left, Right: right}
}

func newAssign(left, right Expr) *Assign {
	if left == nil || right == nil {
		panic("compiler: assignment with missing operand")
	}
	return &Assign{Left: left, Right: right}
}
