// Package parser builds condition syntax trees from token streams.
//
// The grammar, lowest to highest precedence:
//
//	expr       := or_expr ( '?' expr ':' expr )?     right-associative
//	or_expr    := and_expr ( 'or' and_expr )*        left-associative
//	and_expr   := not_expr ( 'and' not_expr )*       left-associative
//	not_expr   := 'not' not_expr | comparison
//	comparison := additive ( cmp_op additive )?      non-chaining
//	additive   := multiplicative ( ('+'|'-') multiplicative )*
//	multiplicative := unary ( ('*'|'/') unary )*
//	unary      := '-' unary | primary
//	primary    := NUMBER | STRING | BOOLEAN | IDENTIFIER | '(' expr ')'
//
// The parser performs no type checking; the same tree is valid for any
// evaluation context.
package parser

import (
	"fmt"
	"strconv"

	"cascadia-hq/halcyon/pkg/rulelang/ast"
	"cascadia-hq/halcyon/pkg/rulelang/lexer"
)

// Parse consumes tokens through EOF and returns the tree root. Tokens left
// over after a complete expression are a syntax error.
func Parse(tokens []lexer.Token) (ast.Node, error) {
	p := &parser{tokens: tokens}

	node, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if tok := p.current(); tok.Kind != lexer.EOF {
		return nil, &SyntaxError{Pos: tok.Pos, Expected: "end of expression", Found: describe(tok)}
	}

	return node, nil
}

// ParseString tokenizes and parses a condition string in one step.
func ParseString(source string) (ast.Node, error) {
	tokens, err := lexer.Tokenize(source)
	if err != nil {
		return nil, err
	}
	return Parse(tokens)
}

type parser struct {
	tokens []lexer.Token
	pos    int
}

func (p *parser) current() lexer.Token {
	if p.pos >= len(p.tokens) {
		// Tokenize always emits EOF, so this is unreachable for its output.
		return lexer.Token{Kind: lexer.EOF}
	}
	return p.tokens[p.pos]
}

func (p *parser) advance() lexer.Token {
	tok := p.current()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// matchOperator consumes and returns true if the current token is an
// operator with one of the given lexemes.
func (p *parser) matchOperator(lexemes ...string) (lexer.Token, bool) {
	tok := p.current()
	if tok.Kind != lexer.Operator {
		return lexer.Token{}, false
	}
	for _, l := range lexemes {
		if tok.Lexeme == l {
			p.advance()
			return tok, true
		}
	}
	return lexer.Token{}, false
}

// parseExpr handles the ternary level: cond ? then : else.
// Branches recurse at the expression level, making ?: right-associative.
func (p *parser) parseExpr() (ast.Node, error) {
	cond, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	tok, ok := p.matchOperator("?")
	if !ok {
		return cond, nil
	}

	then, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if _, ok := p.matchOperator(":"); !ok {
		cur := p.current()
		return nil, &SyntaxError{Pos: cur.Pos, Expected: "':' in conditional expression", Found: describe(cur)}
	}

	els, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	return &ast.ConditionalExpr{Cond: cond, Then: then, Else: els, At: tok.Pos}, nil
}

func (p *parser) parseOr() (ast.Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for {
		tok, ok := p.matchOperator("or")
		if !ok {
			return left, nil
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: ast.OpOr, Left: left, Right: right, At: tok.Pos}
	}
}

func (p *parser) parseAnd() (ast.Node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}

	for {
		tok, ok := p.matchOperator("and")
		if !ok {
			return left, nil
		}
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: ast.OpAnd, Left: left, Right: right, At: tok.Pos}
	}
}

func (p *parser) parseNot() (ast.Node, error) {
	if tok, ok := p.matchOperator("not"); ok {
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Op: ast.OpNot, Operand: operand, At: tok.Pos}, nil
	}
	return p.parseComparison()
}

var comparisonOps = map[string]ast.BinaryOp{
	"==": ast.OpEq,
	"!=": ast.OpNe,
	"<":  ast.OpLt,
	"<=": ast.OpLe,
	">":  ast.OpGt,
	">=": ast.OpGe,
}

// parseComparison permits at most one comparison operator: "a < b < c" is a
// syntax error, never a transitive chain.
func (p *parser) parseComparison() (ast.Node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	tok := p.current()
	if tok.Kind != lexer.Operator {
		return left, nil
	}
	op, ok := comparisonOps[tok.Lexeme]
	if !ok {
		return left, nil
	}
	p.advance()

	right, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	if next := p.current(); next.Kind == lexer.Operator {
		if _, chained := comparisonOps[next.Lexeme]; chained {
			return nil, &SyntaxError{Pos: next.Pos, Expected: "a single comparison", Found: describe(next)}
		}
	}

	return &ast.BinaryExpr{Op: op, Left: left, Right: right, At: tok.Pos}, nil
}

func (p *parser) parseAdditive() (ast.Node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}

	for {
		tok, ok := p.matchOperator("+", "-")
		if !ok {
			return left, nil
		}
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		op := ast.OpAdd
		if tok.Lexeme == "-" {
			op = ast.OpSub
		}
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right, At: tok.Pos}
	}
}

func (p *parser) parseMultiplicative() (ast.Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		tok, ok := p.matchOperator("*", "/")
		if !ok {
			return left, nil
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		op := ast.OpMul
		if tok.Lexeme == "/" {
			op = ast.OpDiv
		}
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right, At: tok.Pos}
	}
}

func (p *parser) parseUnary() (ast.Node, error) {
	if tok, ok := p.matchOperator("-"); ok {
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Op: ast.OpNeg, Operand: operand, At: tok.Pos}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (ast.Node, error) {
	tok := p.advance()

	switch tok.Kind {
	case lexer.Number:
		n, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			// The lexer only emits digit sequences, so this is defensive.
			return nil, &SyntaxError{Pos: tok.Pos, Expected: "a numeric literal", Found: fmt.Sprintf("%q", tok.Lexeme)}
		}
		return &ast.Literal{Value: ast.NumberValue(n), At: tok.Pos}, nil

	case lexer.String:
		return &ast.Literal{Value: ast.StringValue(tok.Lexeme), At: tok.Pos}, nil

	case lexer.Boolean:
		return &ast.Literal{Value: ast.BoolValue(tok.Lexeme == "true"), At: tok.Pos}, nil

	case lexer.Identifier:
		return &ast.VariableRef{Name: tok.Lexeme, At: tok.Pos}, nil

	case lexer.LParen:
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if closing := p.advance(); closing.Kind != lexer.RParen {
			return nil, &SyntaxError{Pos: closing.Pos, Expected: "')'", Found: describe(closing)}
		}
		return &ast.Grouping{Inner: inner, At: tok.Pos}, nil

	default:
		return nil, &SyntaxError{Pos: tok.Pos, Expected: "a literal, variable, or '('", Found: describe(tok)}
	}
}

// describe renders a token for error messages.
func describe(tok lexer.Token) string {
	if tok.Kind == lexer.EOF {
		return "end of expression"
	}
	return fmt.Sprintf("%q", tok.Lexeme)
}
