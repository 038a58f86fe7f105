package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cascadia-hq/halcyon/pkg/cli"
	"cascadia-hq/halcyon/pkg/config"
	"cascadia-hq/halcyon/pkg/rulelang/parser"
	"cascadia-hq/halcyon/pkg/rulesource"
)

var lintFlags struct {
	rules     string
	delimiter string
	format    string
}

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Validate rule syntax without evaluating",
	Long: `Lint tokenizes and parses every condition in a rule table, reporting
syntax problems with byte offsets. No variable file is needed; conditions
are never evaluated, so undefined variables are not reported here.

Examples:
  # Validate a rule table
  halcyon lint --rules rules.csv

  # Machine-readable report
  halcyon lint --rules rules.csv --format json`,
	RunE: runLint,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVarP(&lintFlags.rules, "rules", "r", "", "rule table file (id and condition columns)")
	lintCmd.Flags().StringVar(&lintFlags.delimiter, "delimiter", "", "rule table column delimiter (default \";\")")
	lintCmd.Flags().StringVar(&lintFlags.format, "format", "text", "output format: text, json")
}

// lintResult is one rule's validation outcome.
type lintResult struct {
	ID        string `json:"id"`
	Valid     bool   `json:"valid"`
	Error     string `json:"error,omitempty"`
	Condition string `json:"condition,omitempty"`
}

func runLint(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if lintFlags.rules != "" {
		cfg.Source.RulesPath = lintFlags.rules
	}
	if lintFlags.delimiter != "" {
		cfg.Source.Delimiter = lintFlags.delimiter
	}

	// Flag overrides bypass Load's validation, so re-validate the result.
	if err := config.Validate(cfg); err != nil {
		return err
	}

	if cfg.Source.RulesPath == "" {
		return cli.NewFlagError("source.rules_path", "--rules", "no rule table specified")
	}

	rules, err := rulesource.LoadRulesCSV(cfg.Source.RulesPath, rune(cfg.Source.Delimiter[0]))
	if err != nil {
		return cli.NewCommandError("lint", err)
	}

	results := make([]lintResult, 0, len(rules))
	invalid := 0
	for _, rule := range rules {
		res := lintResult{ID: rule.ID, Valid: true}
		if _, err := parser.ParseString(rule.Condition); err != nil {
			res.Valid = false
			res.Error = err.Error()
			res.Condition = rule.Condition
			invalid++
		}
		results = append(results, res)
	}

	if err := writeLintResults(results, invalid); err != nil {
		return err
	}

	if invalid > 0 {
		return cli.NewCommandError("lint", fmt.Errorf("%d of %d rule(s) failed validation", invalid, len(rules)))
	}
	return nil
}

func writeLintResults(results []lintResult, invalid int) error {
	switch cli.OutputFormat(lintFlags.format) {
	case cli.FormatJSON:
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(results)

	case cli.FormatText, "":
		for _, res := range results {
			if res.Valid {
				fmt.Printf("%s: ok\n", res.ID)
			} else {
				fmt.Printf("%s: %s\n", res.ID, res.Error)
				fmt.Printf("  condition: %s\n", res.Condition)
			}
		}
		fmt.Printf("\n%d rule(s) checked, %d invalid\n", len(results), invalid)
		return nil

	default:
		return fmt.Errorf("unknown output format %q", lintFlags.format)
	}
}
