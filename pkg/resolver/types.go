package resolver

import (
	"time"

	"cascadia-hq/halcyon/pkg/rulelang/ast"
)

// Rule pairs an opaque rule id with its raw condition text. Ids need not be
// unique; duplicates each produce a result.
type Rule struct {
	// ID names the rule (e.g. "rule_snow").
	ID string

	// Condition is the raw expression to resolve.
	Condition string
}

// RuleResult is the outcome of resolving a single rule: exactly one of
// Value and Err is meaningful. Results preserve the input ordering of the
// rule set — insertion order is the contract, not id sort order.
type RuleResult struct {
	// ID is the rule id, copied from the input.
	ID string

	// Value is the resolved outcome when Err is nil. It may be a boolean,
	// a number, or a string.
	Value ast.Value

	// Err is the lex, syntax, or evaluation error that failed this rule.
	Err error
}

// Options configures a Resolver.
type Options struct {
	// Workers is the number of concurrent evaluation workers. Values <= 1
	// resolve serially. Parallel resolution is an optimization only: output
	// ordering and values are identical to serial execution. Rule sets
	// containing cross-rule references always resolve serially.
	Workers int

	// CacheSize is the maximum number of parsed conditions retained.
	// Zero disables the parse cache.
	CacheSize int

	// CacheTTL expires cached parse trees. Zero means no expiry.
	CacheTTL time.Duration

	// Metrics receives per-run observations. Nil disables metrics.
	Metrics *Metrics
}

// DefaultOptions returns the default resolver options: serial execution
// with a modest parse cache.
func DefaultOptions() *Options {
	return &Options{
		Workers:   1,
		CacheSize: 1024,
		CacheTTL:  0,
	}
}
