// Package eval walks condition syntax trees against a variable context,
// producing a typed value or a typed evaluation error.
package eval

import (
	"fmt"

	"cascadia-hq/halcyon/pkg/rulelang/ast"
)

// Evaluate walks the tree in a single pass without mutating it. The result
// of a top-level expression may be a boolean, a number, or a string: some
// rules resolve to a value rather than a truth value.
func Evaluate(node ast.Node, ctx Context) (ast.Value, error) {
	switch n := node.(type) {
	case *ast.Literal:
		return n.Value, nil

	case *ast.VariableRef:
		v, ok := ctx.Lookup(n.Name)
		if !ok {
			return ast.Value{}, &UndefinedVariableError{Name: n.Name, Pos: n.At}
		}
		return v, nil

	case *ast.Grouping:
		return Evaluate(n.Inner, ctx)

	case *ast.UnaryExpr:
		return evalUnary(n, ctx)

	case *ast.BinaryExpr:
		return evalBinary(n, ctx)

	case *ast.ConditionalExpr:
		return evalConditional(n, ctx)

	default:
		return ast.Value{}, fmt.Errorf("unknown node type %T", node)
	}
}

func evalUnary(n *ast.UnaryExpr, ctx Context) (ast.Value, error) {
	operand, err := Evaluate(n.Operand, ctx)
	if err != nil {
		return ast.Value{}, err
	}

	switch n.Op {
	case ast.OpNot:
		if operand.Kind != ast.ValueBool {
			return ast.Value{}, &TypeError{Op: "not", Expected: "a boolean operand", Got: operand.Kind, Pos: n.At}
		}
		return ast.BoolValue(!operand.Bool), nil

	case ast.OpNeg:
		if operand.Kind != ast.ValueNumber {
			return ast.Value{}, &TypeError{Op: "-", Expected: "a numeric operand", Got: operand.Kind, Pos: n.At}
		}
		return ast.NumberValue(-operand.Num), nil

	default:
		return ast.Value{}, fmt.Errorf("unknown unary operator %q", n.Op)
	}
}

func evalBinary(n *ast.BinaryExpr, ctx Context) (ast.Value, error) {
	// and/or evaluate left-to-right with short-circuiting: a short-circuited
	// right operand is never evaluated or type-checked, so a rule may
	// reference a variable only meaningful on one branch.
	switch n.Op {
	case ast.OpAnd, ast.OpOr:
		return evalLogical(n, ctx)
	}

	left, err := Evaluate(n.Left, ctx)
	if err != nil {
		return ast.Value{}, err
	}
	right, err := Evaluate(n.Right, ctx)
	if err != nil {
		return ast.Value{}, err
	}

	switch n.Op {
	case ast.OpEq, ast.OpNe:
		return evalEquality(n, left, right)
	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		return evalOrdering(n, left, right)
	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv:
		return evalArithmetic(n, left, right)
	default:
		return ast.Value{}, fmt.Errorf("unknown binary operator %q", n.Op)
	}
}

func evalLogical(n *ast.BinaryExpr, ctx Context) (ast.Value, error) {
	left, err := Evaluate(n.Left, ctx)
	if err != nil {
		return ast.Value{}, err
	}
	if left.Kind != ast.ValueBool {
		return ast.Value{}, &TypeError{Op: string(n.Op), Expected: "boolean operands", Got: left.Kind, Pos: n.At}
	}

	if n.Op == ast.OpAnd && !left.Bool {
		return ast.BoolValue(false), nil
	}
	if n.Op == ast.OpOr && left.Bool {
		return ast.BoolValue(true), nil
	}

	right, err := Evaluate(n.Right, ctx)
	if err != nil {
		return ast.Value{}, err
	}
	if right.Kind != ast.ValueBool {
		return ast.Value{}, &TypeError{Op: string(n.Op), Expected: "boolean operands", Got: right.Kind, Pos: n.At}
	}
	return right, nil
}

// evalEquality compares like-typed values; comparing unlike kinds is a type
// error, never a silent false.
func evalEquality(n *ast.BinaryExpr, left, right ast.Value) (ast.Value, error) {
	if left.Kind != right.Kind {
		return ast.Value{}, &TypeError{
			Op:       string(n.Op),
			Expected: fmt.Sprintf("operands of matching type (left is %s)", left.Kind),
			Got:      right.Kind,
			Pos:      n.At,
		}
	}

	equal := left.Equal(right)
	if n.Op == ast.OpNe {
		equal = !equal
	}
	return ast.BoolValue(equal), nil
}

func evalOrdering(n *ast.BinaryExpr, left, right ast.Value) (ast.Value, error) {
	if left.Kind != ast.ValueNumber {
		return ast.Value{}, &TypeError{Op: string(n.Op), Expected: "numeric operands", Got: left.Kind, Pos: n.At}
	}
	if right.Kind != ast.ValueNumber {
		return ast.Value{}, &TypeError{Op: string(n.Op), Expected: "numeric operands", Got: right.Kind, Pos: n.At}
	}

	var result bool
	switch n.Op {
	case ast.OpLt:
		result = left.Num < right.Num
	case ast.OpLe:
		result = left.Num <= right.Num
	case ast.OpGt:
		result = left.Num > right.Num
	case ast.OpGe:
		result = left.Num >= right.Num
	}
	return ast.BoolValue(result), nil
}

func evalArithmetic(n *ast.BinaryExpr, left, right ast.Value) (ast.Value, error) {
	// '+' on two strings is concatenation; every other combination is
	// strictly numeric.
	if n.Op == ast.OpAdd && left.Kind == ast.ValueString && right.Kind == ast.ValueString {
		return ast.StringValue(left.Str + right.Str), nil
	}

	if left.Kind != ast.ValueNumber {
		return ast.Value{}, &TypeError{Op: string(n.Op), Expected: "numeric operands", Got: left.Kind, Pos: n.At}
	}
	if right.Kind != ast.ValueNumber {
		return ast.Value{}, &TypeError{Op: string(n.Op), Expected: "numeric operands", Got: right.Kind, Pos: n.At}
	}

	switch n.Op {
	case ast.OpAdd:
		return ast.NumberValue(left.Num + right.Num), nil
	case ast.OpSub:
		return ast.NumberValue(left.Num - right.Num), nil
	case ast.OpMul:
		return ast.NumberValue(left.Num * right.Num), nil
	case ast.OpDiv:
		if right.Num == 0 {
			return ast.Value{}, &DivisionByZeroError{Pos: n.At}
		}
		return ast.NumberValue(left.Num / right.Num), nil
	default:
		return ast.Value{}, fmt.Errorf("unknown arithmetic operator %q", n.Op)
	}
}

// evalConditional evaluates only the taken branch of cond ? then : else.
func evalConditional(n *ast.ConditionalExpr, ctx Context) (ast.Value, error) {
	cond, err := Evaluate(n.Cond, ctx)
	if err != nil {
		return ast.Value{}, err
	}
	if cond.Kind != ast.ValueBool {
		return ast.Value{}, &TypeError{Op: "?:", Expected: "a boolean condition", Got: cond.Kind, Pos: n.At}
	}

	if cond.Bool {
		return Evaluate(n.Then, ctx)
	}
	return Evaluate(n.Else, ctx)
}
