package rulesource

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"cascadia-hq/halcyon/pkg/resolver"
)

// RulePrefix marks an identifier as a rule reference. Ids from the source
// table are normalized to carry it, so conditions can reference other rules
// by their prefixed id.
const RulePrefix = "rule_"

// DefaultDelimiter separates columns in rule tables. Conditions routinely
// contain commas-free expressions with comparison operators, and the
// upstream tables are semicolon-delimited.
const DefaultDelimiter = ';'

// LoadRulesCSV reads an ordered rule set from a delimited text file. The
// first column is the rule id and the second the condition text; a leading
// header row naming those columns is skipped. Ids are prefixed with
// RulePrefix when they do not already carry it.
func LoadRulesCSV(path string, delimiter rune) ([]resolver.Rule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open rules file %q: %w", path, err)
	}
	defer f.Close()

	if delimiter == 0 {
		delimiter = DefaultDelimiter
	}

	reader := csv.NewReader(f)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1 // validated per record below
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse rules file %q: %w", path, err)
	}

	var rules []resolver.Rule
	for i, record := range records {
		if i == 0 && isHeaderRow(record) {
			continue
		}
		if len(record) < 2 {
			return nil, fmt.Errorf("rules file %q row %d: need id and condition columns, got %d column(s)", path, i+1, len(record))
		}

		id := strings.TrimSpace(record[0])
		if id == "" {
			return nil, fmt.Errorf("rules file %q row %d: empty rule id", path, i+1)
		}
		if !strings.HasPrefix(id, RulePrefix) {
			id = RulePrefix + id
		}

		rules = append(rules, resolver.Rule{
			ID:        id,
			Condition: strings.TrimSpace(record[1]),
		})
	}

	return rules, nil
}

// isHeaderRow reports whether the first record names the id and condition
// columns rather than carrying data.
func isHeaderRow(record []string) bool {
	if len(record) < 2 {
		return false
	}
	first := strings.ToLower(strings.TrimSpace(record[0]))
	second := strings.ToLower(strings.TrimSpace(record[1]))
	return (first == "id" || first == "rule_id" || first == "rule") &&
		(second == "condition" || second == "expression")
}
