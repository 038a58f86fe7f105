package ast

import "fmt"

// Pos is a byte offset into the original condition string.
// It enables precise error reporting against the source text.
type Pos int

// Node is a node in the condition syntax tree.
type Node interface {
	// Position returns the source offset of the node.
	Position() Pos

	// String returns the canonical, fully parenthesized form of the
	// subtree. Two trees with equal canonical forms evaluate identically.
	String() string
}

// UnaryOp is a unary operator.
type UnaryOp string

const (
	OpNot UnaryOp = "not"
	OpNeg UnaryOp = "-"
)

// BinaryOp is a binary operator.
type BinaryOp string

const (
	OpAnd BinaryOp = "and"
	OpOr  BinaryOp = "or"
	OpAdd BinaryOp = "+"
	OpSub BinaryOp = "-"
	OpMul BinaryOp = "*"
	OpDiv BinaryOp = "/"
	OpEq  BinaryOp = "=="
	OpNe  BinaryOp = "!="
	OpLt  BinaryOp = "<"
	OpLe  BinaryOp = "<="
	OpGt  BinaryOp = ">"
	OpGe  BinaryOp = ">="
)

// Literal is a boolean, numeric, or string constant.
type Literal struct {
	Value Value
	At    Pos
}

// VariableRef is an unresolved lookup key into the evaluation context.
// Names carrying the "rule_" prefix may also refer to the outcome of an
// earlier rule in the same resolution run.
type VariableRef struct {
	Name string
	At   Pos
}

// UnaryExpr applies OpNot or OpNeg to a single operand.
type UnaryExpr struct {
	Op      UnaryOp
	Operand Node
	At      Pos
}

// BinaryExpr applies a binary operator to two operands.
type BinaryExpr struct {
	Op    BinaryOp
	Left  Node
	Right Node
	At    Pos
}

// ConditionalExpr is the ternary operator: Cond ? Then : Else.
type ConditionalExpr struct {
	Cond Node
	Then Node
	Else Node
	At   Pos
}

// Grouping is a parenthesized sub-expression. It has no semantic effect;
// it is retained so errors can point at the source parentheses.
type Grouping struct {
	Inner Node
	At    Pos
}

func (n *Literal) Position() Pos         { return n.At }
func (n *VariableRef) Position() Pos     { return n.At }
func (n *UnaryExpr) Position() Pos       { return n.At }
func (n *BinaryExpr) Position() Pos      { return n.At }
func (n *ConditionalExpr) Position() Pos { return n.At }
func (n *Grouping) Position() Pos        { return n.At }

func (n *Literal) String() string {
	if n.Value.Kind == ValueString {
		return fmt.Sprintf("%q", n.Value.Str)
	}
	return n.Value.String()
}

func (n *VariableRef) String() string {
	return n.Name
}

func (n *UnaryExpr) String() string {
	return fmt.Sprintf("(%s %s)", n.Op, n.Operand)
}

func (n *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", n.Left, n.Op, n.Right)
}

func (n *ConditionalExpr) String() string {
	return fmt.Sprintf("(%s ? %s : %s)", n.Cond, n.Then, n.Else)
}

func (n *Grouping) String() string {
	return n.Inner.String()
}

// Inspect traverses the tree in depth-first order, calling f for each node.
// If f returns false for a node, its children are not visited.
func Inspect(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}
	switch node := n.(type) {
	case *UnaryExpr:
		Inspect(node.Operand, f)
	case *BinaryExpr:
		Inspect(node.Left, f)
		Inspect(node.Right, f)
	case *ConditionalExpr:
		Inspect(node.Cond, f)
		Inspect(node.Then, f)
		Inspect(node.Else, f)
	case *Grouping:
		Inspect(node.Inner, f)
	}
}
