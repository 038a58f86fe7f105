package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"cascadia-hq/halcyon/pkg/resolver"
)

// OutputFormat represents the output format for command results.
type OutputFormat string

const (
	// FormatText is plain text output (default).
	FormatText OutputFormat = "text"
	// FormatJSON is JSON output.
	FormatJSON OutputFormat = "json"
	// FormatCSV is CSV output.
	FormatCSV OutputFormat = "csv"
)

// ResultRow is the serializable form of one rule outcome.
type ResultRow struct {
	ID    string      `json:"id"`
	Value interface{} `json:"value,omitempty"`
	Error string      `json:"error,omitempty"`
}

// Rows converts resolver results into serializable rows.
func Rows(results []resolver.RuleResult) []ResultRow {
	rows := make([]ResultRow, 0, len(results))
	for _, res := range results {
		row := ResultRow{ID: res.ID}
		if res.Err != nil {
			row.Error = res.Err.Error()
		} else {
			row.Value = res.Value.Interface()
		}
		rows = append(rows, row)
	}
	return rows
}

// WriteResults writes resolver results to w in the requested format.
func WriteResults(w io.Writer, format OutputFormat, results []resolver.RuleResult) error {
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(Rows(results))

	case FormatCSV:
		return writeCSV(w, results)

	case FormatText, "":
		return writeText(w, results)

	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func writeText(w io.Writer, results []resolver.RuleResult) error {
	for _, res := range results {
		var err error
		if res.Err != nil {
			_, err = fmt.Fprintf(w, "%s: error: %v\n", res.ID, res.Err)
		} else {
			_, err = fmt.Fprintf(w, "%s = %s\n", res.ID, res.Value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func writeCSV(w io.Writer, results []resolver.RuleResult) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"id", "value", "error"}); err != nil {
		return err
	}

	for _, res := range results {
		record := []string{res.ID, "", ""}
		if res.Err != nil {
			record[2] = res.Err.Error()
		} else {
			record[1] = res.Value.String()
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
