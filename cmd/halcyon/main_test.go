package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

func TestRunLint_RejectsMultiCharDelimiter(t *testing.T) {
	defer func() { lintFlags.rules, lintFlags.delimiter = "", "" }()
	lintFlags.rules = writeFixture(t, "rules.csv", "snow;prsn > 0\n")
	lintFlags.delimiter = ";;"

	err := runLint(nil, nil)
	if err == nil {
		t.Fatal("runLint() accepted a multi-character delimiter")
	}
	if !strings.Contains(err.Error(), "delimiter") {
		t.Errorf("error = %q, want delimiter named", err.Error())
	}
}

func TestRunResolve_RejectsMultiCharDelimiter(t *testing.T) {
	defer func() {
		resolveFlags.rules, resolveFlags.vars, resolveFlags.delimiter = "", "", ""
	}()
	resolveFlags.rules = writeFixture(t, "rules.csv", "snow;prsn > 0\n")
	resolveFlags.vars = writeFixture(t, "vars.json", `{"prsn": 1}`)
	resolveFlags.delimiter = "€"

	err := runResolve(nil, nil)
	if err == nil {
		t.Fatal("runResolve() accepted a multi-byte delimiter")
	}
	if !strings.Contains(err.Error(), "delimiter") {
		t.Errorf("error = %q, want delimiter named", err.Error())
	}
}

func TestRunLint_RequiresRules(t *testing.T) {
	err := runLint(nil, nil)
	if err == nil {
		t.Fatal("runLint() succeeded without a rule table")
	}
	if !strings.Contains(err.Error(), "--rules") {
		t.Errorf("error = %q, want --rules named", err.Error())
	}
}
