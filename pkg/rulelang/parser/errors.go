package parser

import (
	"fmt"

	"cascadia-hq/halcyon/pkg/rulelang/ast"
)

// SyntaxError reports a grammar violation: an unexpected token, unbalanced
// parentheses, a chained comparison, or trailing tokens after a complete
// expression.
type SyntaxError struct {
	Pos      ast.Pos
	Expected string
	Found    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: expected %s, found %s", e.Pos, e.Expected, e.Found)
}
