package lexer

import (
	"strings"
	"unicode/utf8"

	"cascadia-hq/halcyon/pkg/rulelang/ast"
)

// Tokenize converts source into a token sequence terminated by one EOF
// token. It returns a *Error for the first character that matches no token
// rule; the error is not exhaustive over the remainder of the input.
func Tokenize(source string) ([]Token, error) {
	s := &scanner{src: source}
	var tokens []Token

	for {
		s.skipWhitespace()
		if s.eof() {
			tokens = append(tokens, Token{Kind: EOF, Lexeme: "", Pos: ast.Pos(len(source))})
			return tokens, nil
		}

		tok, err := s.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}
}

type scanner struct {
	src string
	off int
}

func (s *scanner) eof() bool {
	return s.off >= len(s.src)
}

func (s *scanner) peek() byte {
	return s.src[s.off]
}

// peekAt returns the byte at offset+n, or 0 past the end.
func (s *scanner) peekAt(n int) byte {
	if s.off+n >= len(s.src) {
		return 0
	}
	return s.src[s.off+n]
}

func (s *scanner) skipWhitespace() {
	for !s.eof() {
		switch s.peek() {
		case ' ', '\t', '\r', '\n':
			s.off++
		default:
			return
		}
	}
}

// next scans a single token starting at a non-space character.
func (s *scanner) next() (Token, error) {
	start := ast.Pos(s.off)
	c := s.peek()

	switch {
	case c == '(':
		s.off++
		return Token{Kind: LParen, Lexeme: "(", Pos: start}, nil

	case c == ')':
		s.off++
		return Token{Kind: RParen, Lexeme: ")", Pos: start}, nil

	case c == '\'' || c == '"':
		return s.scanString()

	case isDigit(c):
		return s.scanNumber(), nil

	case isIdentStart(c):
		return s.scanIdentifier(), nil

	default:
		return s.scanOperator()
	}
}

// scanOperator handles the comparison, arithmetic, logical, and ternary
// operators, including two-character forms.
func (s *scanner) scanOperator() (Token, error) {
	start := ast.Pos(s.off)

	two := ""
	if s.off+2 <= len(s.src) {
		two = s.src[s.off : s.off+2]
	}

	switch two {
	case "==", "!=", "<=", ">=":
		s.off += 2
		return Token{Kind: Operator, Lexeme: two, Pos: start}, nil
	case "&&":
		s.off += 2
		return Token{Kind: Operator, Lexeme: "and", Pos: start}, nil
	case "||":
		s.off += 2
		return Token{Kind: Operator, Lexeme: "or", Pos: start}, nil
	}

	switch s.peek() {
	case '<', '>', '+', '-', '*', '/', '?', ':':
		lex := string(s.peek())
		s.off++
		return Token{Kind: Operator, Lexeme: lex, Pos: start}, nil
	case '!':
		s.off++
		return Token{Kind: Operator, Lexeme: "not", Pos: start}, nil
	}

	r, _ := utf8.DecodeRuneInString(s.src[s.off:])
	return Token{}, &Error{Pos: start, Char: r}
}

// scanString scans a single- or double-quoted string literal. The quote
// character that opened the literal must close it; there are no escapes in
// the rule language.
func (s *scanner) scanString() (Token, error) {
	start := ast.Pos(s.off)
	quote := s.peek()
	s.off++

	begin := s.off
	for !s.eof() {
		if s.peek() == quote {
			lexeme := s.src[begin:s.off]
			s.off++
			return Token{Kind: String, Lexeme: lexeme, Pos: start}, nil
		}
		s.off++
	}

	return Token{}, &Error{Pos: start, Char: rune(quote), Unterminated: true}
}

// scanNumber scans an integer or decimal literal. A leading '-' is not part
// of the literal; negation is bound during parsing.
func (s *scanner) scanNumber() Token {
	start := s.off
	for !s.eof() && isDigit(s.peek()) {
		s.off++
	}
	if !s.eof() && s.peek() == '.' && isDigit(s.peekAt(1)) {
		s.off++
		for !s.eof() && isDigit(s.peek()) {
			s.off++
		}
	}
	return Token{Kind: Number, Lexeme: s.src[start:s.off], Pos: ast.Pos(start)}
}

// scanIdentifier scans an identifier and classifies the keyword forms:
// boolean literals and the word operators and/or/not, all case-insensitive.
func (s *scanner) scanIdentifier() Token {
	start := s.off
	s.off++
	for !s.eof() && isIdentPart(s.peek()) {
		s.off++
	}

	lexeme := s.src[start:s.off]
	pos := ast.Pos(start)

	switch strings.ToLower(lexeme) {
	case "true", "false":
		return Token{Kind: Boolean, Lexeme: strings.ToLower(lexeme), Pos: pos}
	case "and", "or", "not":
		return Token{Kind: Operator, Lexeme: strings.ToLower(lexeme), Pos: pos}
	}

	return Token{Kind: Identifier, Lexeme: lexeme, Pos: pos}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// isIdentPart permits '-' inside identifiers: climate variable names such
// as "temp_djf-iamean" are single tokens, so subtraction needs spaces.
func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c) || c == '-'
}
