package eval

import (
	"fmt"

	"cascadia-hq/halcyon/pkg/rulelang/ast"
)

// UndefinedVariableError indicates a condition referenced a name the
// evaluation context does not supply. Resolution fails fast rather than
// defaulting the value.
type UndefinedVariableError struct {
	Name string
	Pos  ast.Pos
}

func (e *UndefinedVariableError) Error() string {
	return fmt.Sprintf("undefined variable %q at offset %d", e.Name, e.Pos)
}

// TypeError indicates an operator was applied to operands of the wrong
// type. Operators never coerce; they fail closed on mismatch.
type TypeError struct {
	Op       string
	Expected string
	Got      ast.ValueKind
	Pos      ast.Pos
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("type error at offset %d: operator %q requires %s, got %s", e.Pos, e.Op, e.Expected, e.Got)
}

// DivisionByZeroError indicates the right operand of '/' evaluated to zero.
type DivisionByZeroError struct {
	Pos ast.Pos
}

func (e *DivisionByZeroError) Error() string {
	return fmt.Sprintf("division by zero at offset %d", e.Pos)
}
