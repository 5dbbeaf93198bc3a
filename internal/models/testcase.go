package models

// Columns is the fixed header of a test case table, in field order.
var Columns = []string{"Test Description", "Steps to be followed", "Expected Results"}

// TestCase is one generated row. All three fields are non-empty after trimming.
type TestCase struct {
	Description    string `json:"description"`
	Steps          string `json:"steps"`
	ExpectedResult string `json:"expected_result"`
}

// Fields returns the three fields in column order.
func (tc TestCase) Fields() []string {
	return []string{tc.Description, tc.Steps, tc.ExpectedResult}
}

// TestCaseTable is an ordered list of test cases, in the order they appeared in the reply.
type TestCaseTable []TestCase
