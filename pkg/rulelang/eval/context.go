package eval

import "cascadia-hq/halcyon/pkg/rulelang/ast"

// Context supplies variable values during evaluation. Implementations must
// be read-only with respect to evaluation: the evaluator never mutates the
// context, and identical contexts must yield identical lookups.
type Context interface {
	// Lookup returns the value bound to name, and whether it exists.
	Lookup(name string) (ast.Value, bool)
}

// MapContext adapts a plain map to the Context interface.
type MapContext map[string]ast.Value

// Lookup implements Context.
func (m MapContext) Lookup(name string) (ast.Value, bool) {
	v, ok := m[name]
	return v, ok
}

// ChainContext consults each context in order and returns the first hit.
// The resolver uses it to place already-resolved rule outcomes in front of
// the caller's variable context without mutating either.
type ChainContext []Context

// Lookup implements Context.
func (c ChainContext) Lookup(name string) (ast.Value, bool) {
	for _, ctx := range c {
		if v, ok := ctx.Lookup(name); ok {
			return v, true
		}
	}
	return ast.Value{}, false
}
