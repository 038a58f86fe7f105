// Package lexer converts a raw condition string into a stream of typed
// tokens for pkg/rulelang/parser.
package lexer

import (
	"fmt"

	"cascadia-hq/halcyon/pkg/rulelang/ast"
)

// Kind identifies the lexical class of a token.
type Kind int

const (
	// EOF marks the end of the token stream. Tokenize always appends
	// exactly one EOF token, so the parser never special-cases exhaustion.
	EOF Kind = iota
	Identifier
	Number
	String
	Boolean
	Operator
	LParen
	RParen
)

// String returns the kind name used in error messages.
func (k Kind) String() string {
	switch k {
	case EOF:
		return "end of expression"
	case Identifier:
		return "identifier"
	case Number:
		return "number"
	case String:
		return "string"
	case Boolean:
		return "boolean"
	case Operator:
		return "operator"
	case LParen:
		return "'('"
	case RParen:
		return "')'"
	default:
		return "unknown"
	}
}

// Token is a single lexical token. Tokens are immutable: created once by
// Tokenize and consumed by the parser.
//
// Lexeme is normalized for keyword operators: the symbolic spellings
// "&&", "||" and "!" are stored as "and", "or" and "not", and boolean
// literals are lowercased, so the parser matches a single spelling.
type Token struct {
	Kind   Kind
	Lexeme string
	Pos    ast.Pos
}

// Error reports the first character of the source that matches no token
// rule. Lexing stops at the first offending character.
type Error struct {
	Pos  ast.Pos
	Char rune

	// Unterminated is set when a string literal is opened (Char holds the
	// quote) but never closed.
	Unterminated bool
}

func (e *Error) Error() string {
	if e.Unterminated {
		return fmt.Sprintf("unterminated string literal starting at offset %d", e.Pos)
	}
	return fmt.Sprintf("unexpected character %q at offset %d", e.Char, e.Pos)
}
