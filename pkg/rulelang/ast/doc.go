// Package ast defines the abstract syntax tree for Halcyon rule conditions.
//
// A condition string such as "tasmean < 0 and prsn > 0" is tokenized by
// pkg/rulelang/lexer, parsed into an ast.Node tree by pkg/rulelang/parser,
// and evaluated against a variable context by pkg/rulelang/eval. Trees are
// immutable once built: each node owns its children exclusively and nothing
// in the pipeline mutates them, so a parsed tree may be cached and evaluated
// against any number of contexts.
package ast
