package resolver

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"cascadia-hq/halcyon/pkg/rulelang/ast"
	"cascadia-hq/halcyon/pkg/rulelang/eval"
	"cascadia-hq/halcyon/pkg/rulelang/lexer"
	"cascadia-hq/halcyon/pkg/rulelang/parser"
)

// Resolver resolves rule sets against variable contexts.
type Resolver struct {
	logger *slog.Logger
	opts   *Options
	cache  *parseCache
}

// New creates a Resolver.
func New(logger *slog.Logger, opts *Options) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	if opts == nil {
		opts = DefaultOptions()
	}

	var cache *parseCache
	if opts.CacheSize > 0 {
		cache = newParseCache(opts.CacheTTL, opts.CacheSize)
	}

	return &Resolver{
		logger: logger,
		opts:   opts,
		cache:  cache,
	}
}

// Resolve resolves each rule independently against vars, returning one
// result per rule in input order. Per-rule failures are recorded in the
// result; the returned error is reserved for context cancellation.
func (r *Resolver) Resolve(ctx context.Context, rules []Rule, vars eval.Context) ([]RuleResult, error) {
	runID := uuid.NewString()
	start := time.Now()

	if vars == nil {
		vars = eval.MapContext{}
	}

	// Parse phase: every condition is parsed (or fetched from the cache)
	// up front so cross-rule reference detection sees the whole set.
	trees := make([]ast.Node, len(rules))
	parseErrs := make([]error, len(rules))
	for i, rule := range rules {
		trees[i], parseErrs[i] = r.parseCondition(rule.Condition)
	}

	var results []RuleResult
	if r.opts.Workers > 1 && !hasRuleReferences(rules, trees) {
		results = r.resolveParallel(ctx, rules, trees, parseErrs, vars)
	} else {
		results = r.resolveSerial(ctx, rules, trees, parseErrs, vars)
	}

	if err := ctx.Err(); err != nil {
		r.logger.Warn("resolution run cancelled",
			"run_id", runID,
			"rule_count", len(rules),
		)
		return nil, err
	}

	elapsed := time.Since(start)
	failed := 0
	for _, res := range results {
		r.opts.Metrics.RecordRule(outcomeKind(res))
		if res.Err != nil {
			failed++
		}
	}
	r.opts.Metrics.RecordRun(elapsed)

	r.logger.Info("resolution run completed",
		"run_id", runID,
		"rule_count", len(rules),
		"failed_count", failed,
		"duration", elapsed,
	)

	return results, nil
}

// resolveSerial evaluates rules in input order. Outcomes of already
// resolved rules are chained in front of the caller's context so later
// rules may reference earlier ones by id; the caller's context is never
// mutated. Forward or failed references miss the chain and surface as
// undefined variables.
func (r *Resolver) resolveSerial(ctx context.Context, rules []Rule, trees []ast.Node, parseErrs []error, vars eval.Context) []RuleResult {
	resolved := eval.MapContext{}
	lookup := eval.ChainContext{resolved, vars}

	results := make([]RuleResult, 0, len(rules))
	for i, rule := range rules {
		if ctx.Err() != nil {
			return results
		}

		result := RuleResult{ID: rule.ID}
		if parseErrs[i] != nil {
			result.Err = parseErrs[i]
		} else {
			result.Value, result.Err = eval.Evaluate(trees[i], lookup)
		}

		if result.Err == nil {
			// Duplicate ids: the later outcome wins for reference purposes,
			// matching last-write semantics of the source rule table.
			resolved[rule.ID] = result.Value
		}

		results = append(results, result)
	}

	return results
}

// resolveParallel fans rule evaluation out to a worker pool. Results are
// written to index-addressed slots, so output ordering and values are
// identical to serial execution. Only legal for rule sets without
// cross-rule references.
func (r *Resolver) resolveParallel(ctx context.Context, rules []Rule, trees []ast.Node, parseErrs []error, vars eval.Context) []RuleResult {
	results := make([]RuleResult, len(rules))

	indexes := make(chan int)
	var wg sync.WaitGroup

	workers := r.opts.Workers
	if workers > len(rules) {
		workers = len(rules)
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				result := RuleResult{ID: rules[i].ID}
				if parseErrs[i] != nil {
					result.Err = parseErrs[i]
				} else {
					result.Value, result.Err = eval.Evaluate(trees[i], vars)
				}
				results[i] = result
			}
		}()
	}

	for i := range rules {
		if ctx.Err() != nil {
			break
		}
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	return results
}

// parseCondition tokenizes and parses one condition, consulting the parse
// cache when configured.
func (r *Resolver) parseCondition(condition string) (ast.Node, error) {
	if r.cache != nil {
		if node, ok := r.cache.Get(condition); ok {
			r.opts.Metrics.RecordCacheHit()
			return node, nil
		}
		r.opts.Metrics.RecordCacheMiss()
	}

	node, err := parser.ParseString(condition)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		r.cache.Set(condition, node)
	}
	return node, nil
}

// hasRuleReferences reports whether any condition references another rule
// in the same set by id.
func hasRuleReferences(rules []Rule, trees []ast.Node) bool {
	ids := make(map[string]struct{}, len(rules))
	for _, rule := range rules {
		ids[rule.ID] = struct{}{}
	}

	for _, tree := range trees {
		if tree == nil {
			continue
		}
		found := false
		ast.Inspect(tree, func(n ast.Node) bool {
			if ref, ok := n.(*ast.VariableRef); ok {
				if _, isRule := ids[ref.Name]; isRule {
					found = true
					return false
				}
			}
			return true
		})
		if found {
			return true
		}
	}
	return false
}

// outcomeKind classifies a result for metrics labels.
func outcomeKind(res RuleResult) string {
	if res.Err == nil {
		return string(res.Value.Kind)
	}

	var lexErr *lexer.Error
	var syntaxErr *parser.SyntaxError
	var undefErr *eval.UndefinedVariableError
	var typeErr *eval.TypeError
	var divErr *eval.DivisionByZeroError

	switch {
	case errors.As(res.Err, &lexErr):
		return "lex_error"
	case errors.As(res.Err, &syntaxErr):
		return "syntax_error"
	case errors.As(res.Err, &undefErr):
		return "undefined_variable"
	case errors.As(res.Err, &typeErr):
		return "type_error"
	case errors.As(res.Err, &divErr):
		return "division_by_zero"
	default:
		return "error"
	}
}
