// Package cli provides CLI utilities for testgen.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/testgen/internal/export"
	"github.com/hyperjump/testgen/internal/models"
)

// OutputFormat is the format for generated test case output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputCSV is the same CSV served by the web export.
	OutputCSV OutputFormat = "csv"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
	// OutputXLSX is a spreadsheet workbook.
	OutputXLSX OutputFormat = "xlsx"
)

// ParseOutputFormat validates a --output flag value. Empty means text.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return OutputText, nil
	case OutputText, OutputCSV, OutputJSON, OutputXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, csv, json or xlsx)", s)
	}
}

type tableJSON struct {
	Source    string               `json:"source,omitempty"`
	Count     int                  `json:"count"`
	TestCases models.TestCaseTable `json:"test_cases"`
}

// WriteTable writes table to w in the given format. source names the input document.
func WriteTable(w io.Writer, table models.TestCaseTable, source string, format OutputFormat) error {
	if table == nil {
		table = models.TestCaseTable{}
	}
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(tableJSON{Source: source, Count: len(table), TestCases: table})
	case OutputCSV:
		return export.WriteCSV(w, table)
	case OutputXLSX:
		return export.WriteXLSX(w, table)
	default:
		writeTableText(w, table, source)
		return nil
	}
}

func writeTableText(w io.Writer, table models.TestCaseTable, source string) {
	if source != "" {
		fmt.Fprintf(w, "\n%d test case(s) for %s\n\n", len(table), source)
	} else {
		fmt.Fprintf(w, "\n%d test case(s)\n\n", len(table))
	}
	for i, tc := range table {
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		fmt.Fprintf(w, "Test Case %d: %s\n", i+1, tc.Description)
		fmt.Fprintf(w, "  %s: %s\n", models.Columns[1], tc.Steps)
		fmt.Fprintf(w, "  %s: %s\n", models.Columns[2], tc.ExpectedResult)
	}
	if len(table) > 0 {
		fmt.Fprintln(w)
	}
}
