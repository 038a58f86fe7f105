package resolver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"cascadia-hq/halcyon/pkg/rulelang/ast"
	"cascadia-hq/halcyon/pkg/rulelang/eval"
	"cascadia-hq/halcyon/pkg/rulelang/parser"
)

func testResolver(t *testing.T, opts *Options) *Resolver {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(logger, opts)
}

func climateVars() eval.MapContext {
	return eval.MapContext{
		"tasmean": ast.NumberValue(-2.5),
		"prsn":    ast.NumberValue(12.0),
		"gdd":     ast.NumberValue(250),
		"model":   ast.StringValue("CanESM2"),
	}
}

func TestResolve_OrderAndValues(t *testing.T) {
	rules := []Rule{
		{ID: "rule_snow", Condition: "tasmean < 0 and prsn > 0"},
		{ID: "rule_gdd_margin", Condition: "gdd - 100"},
		{ID: "rule_model", Condition: "model == 'CanESM2'"},
	}

	r := testResolver(t, nil)
	results, err := r.Resolve(context.Background(), rules, climateVars())
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}

	if len(results) != len(rules) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(rules))
	}
	for i, res := range results {
		if res.ID != rules[i].ID {
			t.Errorf("result %d id = %q, want %q (input order must be preserved)", i, res.ID, rules[i].ID)
		}
		if res.Err != nil {
			t.Errorf("result %d error = %v, want nil", i, res.Err)
		}
	}

	if !results[0].Value.Equal(ast.BoolValue(true)) {
		t.Errorf("rule_snow = %v, want true", results[0].Value)
	}
	if !results[1].Value.Equal(ast.NumberValue(150)) {
		t.Errorf("rule_gdd_margin = %v, want 150", results[1].Value)
	}
	if !results[2].Value.Equal(ast.BoolValue(true)) {
		t.Errorf("rule_model = %v, want true", results[2].Value)
	}
}

func TestResolve_Deterministic(t *testing.T) {
	rules := []Rule{
		{ID: "rule_a", Condition: "tasmean < 0"},
		{ID: "rule_b", Condition: "gdd / 5"},
		{ID: "rule_c", Condition: "model != 'HadGEM'"},
	}

	r := testResolver(t, nil)
	first, err := r.Resolve(context.Background(), rules, climateVars())
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}

	for run := 0; run < 5; run++ {
		again, err := r.Resolve(context.Background(), rules, climateVars())
		if err != nil {
			t.Fatalf("Resolve() run %d failed: %v", run, err)
		}
		for i := range first {
			if again[i].ID != first[i].ID || !again[i].Value.Equal(first[i].Value) {
				t.Fatalf("run %d result %d = %+v, want %+v", run, i, again[i], first[i])
			}
		}
	}
}

func TestResolve_FailureIsolation(t *testing.T) {
	rules := []Rule{
		{ID: "rule_ok", Condition: "tasmean < 0"},
		{ID: "rule_div", Condition: "1 / 0"},
		{ID: "rule_also_ok", Condition: "prsn > 100"},
	}

	r := testResolver(t, nil)
	results, err := r.Resolve(context.Background(), rules, climateVars())
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}

	if results[0].Err != nil || !results[0].Value.Equal(ast.BoolValue(true)) {
		t.Errorf("rule_ok = %+v, want true", results[0])
	}

	var divErr *eval.DivisionByZeroError
	if results[1].Err == nil || !errors.As(results[1].Err, &divErr) {
		t.Errorf("rule_div error = %v, want DivisionByZeroError", results[1].Err)
	}

	if results[2].Err != nil || !results[2].Value.Equal(ast.BoolValue(false)) {
		t.Errorf("rule_also_ok = %+v, want false", results[2])
	}
}

func TestResolve_PerRuleErrorKinds(t *testing.T) {
	rules := []Rule{
		{ID: "rule_lex", Condition: "a @ b"},
		{ID: "rule_syntax", Condition: "tasmean <"},
		{ID: "rule_undef", Condition: "snowfall > 0"},
		{ID: "rule_type", Condition: "1 == 'a'"},
	}

	r := testResolver(t, nil)
	results, err := r.Resolve(context.Background(), rules, climateVars())
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}

	for i, res := range results {
		if res.Err == nil {
			t.Errorf("result %d (%s) succeeded, want error", i, res.ID)
		}
	}

	var syntaxErr *parser.SyntaxError
	if !errors.As(results[1].Err, &syntaxErr) {
		t.Errorf("rule_syntax error type = %T, want *parser.SyntaxError", results[1].Err)
	}
	var undefErr *eval.UndefinedVariableError
	if !errors.As(results[2].Err, &undefErr) {
		t.Errorf("rule_undef error type = %T, want *eval.UndefinedVariableError", results[2].Err)
	}
	if undefErr != nil && undefErr.Name != "snowfall" {
		t.Errorf("undefined variable = %q, want %q", undefErr.Name, "snowfall")
	}
	var typeErr *eval.TypeError
	if !errors.As(results[3].Err, &typeErr) {
		t.Errorf("rule_type error type = %T, want *eval.TypeError", results[3].Err)
	}
}

func TestResolve_CrossRuleReferences(t *testing.T) {
	rules := []Rule{
		{ID: "rule_snow", Condition: "tasmean < 0 and prsn > 0"},
		{ID: "rule_margin", Condition: "gdd - 100"},
		{ID: "rule_combined", Condition: "rule_snow and rule_margin > 0"},
	}

	r := testResolver(t, nil)
	results, err := r.Resolve(context.Background(), rules, climateVars())
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}

	if results[2].Err != nil {
		t.Fatalf("rule_combined error = %v, want nil", results[2].Err)
	}
	if !results[2].Value.Equal(ast.BoolValue(true)) {
		t.Errorf("rule_combined = %v, want true", results[2].Value)
	}
}

func TestResolve_ForwardReferenceIsUndefined(t *testing.T) {
	rules := []Rule{
		{ID: "rule_early", Condition: "rule_late"},
		{ID: "rule_late", Condition: "true"},
	}

	r := testResolver(t, nil)
	results, err := r.Resolve(context.Background(), rules, climateVars())
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}

	var undefErr *eval.UndefinedVariableError
	if !errors.As(results[0].Err, &undefErr) {
		t.Fatalf("rule_early error = %v, want UndefinedVariableError", results[0].Err)
	}
	if results[1].Err != nil {
		t.Errorf("rule_late error = %v, want nil", results[1].Err)
	}
}

func TestResolve_FailedReferenceIsUndefined(t *testing.T) {
	rules := []Rule{
		{ID: "rule_broken", Condition: "1 / 0"},
		{ID: "rule_dependent", Condition: "rule_broken"},
	}

	r := testResolver(t, nil)
	results, err := r.Resolve(context.Background(), rules, climateVars())
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}

	var undefErr *eval.UndefinedVariableError
	if !errors.As(results[1].Err, &undefErr) {
		t.Errorf("rule_dependent error = %v, want UndefinedVariableError", results[1].Err)
	}
}

func TestResolve_DuplicateIDs(t *testing.T) {
	rules := []Rule{
		{ID: "rule_dup", Condition: "1"},
		{ID: "rule_dup", Condition: "2"},
		{ID: "rule_ref", Condition: "rule_dup"},
	}

	r := testResolver(t, nil)
	results, err := r.Resolve(context.Background(), rules, climateVars())
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}

	// Both occurrences emit a result with their own value.
	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}
	if !results[0].Value.Equal(ast.NumberValue(1)) {
		t.Errorf("first rule_dup = %v, want 1", results[0].Value)
	}
	if !results[1].Value.Equal(ast.NumberValue(2)) {
		t.Errorf("second rule_dup = %v, want 2", results[1].Value)
	}

	// References see the most recent outcome.
	if results[2].Err != nil || !results[2].Value.Equal(ast.NumberValue(2)) {
		t.Errorf("rule_ref = %+v, want 2", results[2])
	}
}

func TestResolve_CallerContextNotMutated(t *testing.T) {
	vars := climateVars()
	before := len(vars)

	rules := []Rule{
		{ID: "rule_a", Condition: "tasmean < 0"},
		{ID: "rule_b", Condition: "rule_a"},
	}

	r := testResolver(t, nil)
	if _, err := r.Resolve(context.Background(), rules, vars); err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}

	if len(vars) != before {
		t.Errorf("caller context size changed: %d -> %d", before, len(vars))
	}
	if _, ok := vars["rule_a"]; ok {
		t.Error("rule outcome leaked into caller context")
	}
}

func TestResolve_EmptyRuleSet(t *testing.T) {
	r := testResolver(t, nil)
	results, err := r.Resolve(context.Background(), nil, climateVars())
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("len(results) = %d, want 0", len(results))
	}
}

func TestResolve_NilVars(t *testing.T) {
	rules := []Rule{
		{ID: "rule_const", Condition: "1 + 1"},
		{ID: "rule_var", Condition: "tasmean"},
	}

	r := testResolver(t, nil)
	results, err := r.Resolve(context.Background(), rules, nil)
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}

	if results[0].Err != nil || !results[0].Value.Equal(ast.NumberValue(2)) {
		t.Errorf("rule_const = %+v, want 2", results[0])
	}
	var undefErr *eval.UndefinedVariableError
	if !errors.As(results[1].Err, &undefErr) {
		t.Errorf("rule_var error = %v, want UndefinedVariableError", results[1].Err)
	}
}

func TestResolve_ParallelMatchesSerial(t *testing.T) {
	rules := []Rule{
		{ID: "rule_a", Condition: "tasmean < 0 and prsn > 0"},
		{ID: "rule_b", Condition: "gdd - 100"},
		{ID: "rule_c", Condition: "model == 'CanESM2'"},
		{ID: "rule_d", Condition: "1 / 0"},
		{ID: "rule_e", Condition: "not (gdd > 300)"},
		{ID: "rule_f", Condition: "missing"},
	}

	serial := testResolver(t, &Options{Workers: 1, CacheSize: 0})
	parallel := testResolver(t, &Options{Workers: 4, CacheSize: 0})

	want, err := serial.Resolve(context.Background(), rules, climateVars())
	if err != nil {
		t.Fatalf("serial Resolve() failed: %v", err)
	}
	got, err := parallel.Resolve(context.Background(), rules, climateVars())
	if err != nil {
		t.Fatalf("parallel Resolve() failed: %v", err)
	}

	if len(got) != len(want) {
		t.Fatalf("len(parallel) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i].ID {
			t.Errorf("result %d id = %q, want %q", i, got[i].ID, want[i].ID)
		}
		if !got[i].Value.Equal(want[i].Value) {
			t.Errorf("result %d value = %v, want %v", i, got[i].Value, want[i].Value)
		}
		if (got[i].Err == nil) != (want[i].Err == nil) {
			t.Errorf("result %d err = %v, want %v", i, got[i].Err, want[i].Err)
		}
	}
}

func TestResolve_ParallelFallsBackOnRuleReferences(t *testing.T) {
	// Cross-rule references force serial evaluation even with workers
	// configured; the reference must resolve instead of failing as racy.
	rules := []Rule{
		{ID: "rule_base", Condition: "gdd - 100"},
		{ID: "rule_ref", Condition: "rule_base > 0"},
	}

	r := testResolver(t, &Options{Workers: 8, CacheSize: 0})
	results, err := r.Resolve(context.Background(), rules, climateVars())
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}

	if results[1].Err != nil {
		t.Fatalf("rule_ref error = %v, want nil", results[1].Err)
	}
	if !results[1].Value.Equal(ast.BoolValue(true)) {
		t.Errorf("rule_ref = %v, want true", results[1].Value)
	}
}

func TestResolve_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rules := []Rule{
		{ID: "rule_a", Condition: "1 + 1"},
	}

	r := testResolver(t, nil)
	results, err := r.Resolve(ctx, rules, climateVars())
	if err == nil {
		t.Fatal("Resolve() succeeded, want context error")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if results != nil {
		t.Errorf("results = %v, want nil on cancellation", results)
	}
}

func TestResolve_ParseCacheReuse(t *testing.T) {
	rules := []Rule{
		{ID: "rule_a", Condition: "tasmean < 0"},
		{ID: "rule_b", Condition: "tasmean < 0"}, // same condition text
	}

	r := testResolver(t, &Options{Workers: 1, CacheSize: 16})
	if _, err := r.Resolve(context.Background(), rules, climateVars()); err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}

	if size := r.cache.Size(); size != 1 {
		t.Errorf("cache size = %d, want 1 (identical conditions share an entry)", size)
	}

	// A second run hits the cache; results must be identical.
	results, err := r.Resolve(context.Background(), rules, climateVars())
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	for i, res := range results {
		if res.Err != nil || !res.Value.Equal(ast.BoolValue(true)) {
			t.Errorf("result %d = %+v, want true", i, res)
		}
	}
}

func TestOutcomeKind(t *testing.T) {
	tests := []struct {
		name string
		res  RuleResult
		want string
	}{
		{name: "bool value", res: RuleResult{Value: ast.BoolValue(true)}, want: "bool"},
		{name: "number value", res: RuleResult{Value: ast.NumberValue(1)}, want: "number"},
		{name: "string value", res: RuleResult{Value: ast.StringValue("x")}, want: "string"},
		{name: "syntax error", res: RuleResult{Err: &parser.SyntaxError{}}, want: "syntax_error"},
		{name: "undefined variable", res: RuleResult{Err: &eval.UndefinedVariableError{Name: "x"}}, want: "undefined_variable"},
		{name: "type error", res: RuleResult{Err: &eval.TypeError{}}, want: "type_error"},
		{name: "division by zero", res: RuleResult{Err: &eval.DivisionByZeroError{}}, want: "division_by_zero"},
		{name: "other error", res: RuleResult{Err: errors.New("boom")}, want: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outcomeKind(tt.res); got != tt.want {
				t.Errorf("outcomeKind() = %q, want %q", got, tt.want)
			}
		})
	}
}
