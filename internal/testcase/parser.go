// Package testcase parses delimited model replies into test case tables.
package testcase

import (
	"regexp"
	"strings"

	"github.com/hyperjump/testgen/internal/models"
)

// Delimiter separates the fields of one record in a model reply.
const Delimiter = "||"

// fieldCount is the number of fields a line must split into to become a record.
const fieldCount = 3

// labelPrefix matches a leading "Test Case 7 ||" label, including its delimiter.
var labelPrefix = regexp.MustCompile(`(?i)^\s*test case\s*\d+\s*\|\|`)

// Parse turns a model reply into a table. Lines without the delimiter are dropped,
// leading "test case N ||" labels are stripped, and only lines that split into
// exactly three non-empty trimmed fields become records, in reply order.
// The result is never nil; zero records is a valid outcome.
func Parse(reply string) models.TestCaseTable {
	table := models.TestCaseTable{}
	for _, line := range strings.Split(reply, "\n") {
		if tc, ok := ParseLine(line); ok {
			table = append(table, tc)
		}
	}
	return table
}

// ParseLine parses a single reply line. ok is false when the line carries no record.
func ParseLine(line string) (tc models.TestCase, ok bool) {
	if !strings.Contains(line, Delimiter) {
		return models.TestCase{}, false
	}
	// Stacked labels are all stripped so no record starts with a label.
	for labelPrefix.MatchString(line) {
		line = labelPrefix.ReplaceAllString(line, "")
	}
	fields := strings.Split(line, Delimiter)
	if len(fields) != fieldCount {
		return models.TestCase{}, false
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
		if fields[i] == "" {
			return models.TestCase{}, false
		}
	}
	return models.TestCase{Description: fields[0], Steps: fields[1], ExpectedResult: fields[2]}, true
}

// Join serializes a record back into reply form.
func Join(tc models.TestCase) string {
	return strings.Join(tc.Fields(), " "+Delimiter+" ")
}

// JoinTable serializes every record of table, one per line.
func JoinTable(table models.TestCaseTable) string {
	lines := make([]string, 0, len(table))
	for _, tc := range table {
		lines = append(lines, Join(tc))
	}
	return strings.Join(lines, "\n")
}
