package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hyperjump/testgen/internal/export"
	"github.com/hyperjump/testgen/internal/models"
)

func sampleTable() models.TestCaseTable {
	return models.TestCaseTable{
		{Description: "Login works", Steps: "Enter credentials", ExpectedResult: "Dashboard shown"},
		{Description: "Logout", Steps: "Click logout", ExpectedResult: "Login page shown"},
	}
}

func TestWriteTable_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTable(&buf, sampleTable(), "req.pdf", OutputJSON); err != nil {
		t.Fatalf("WriteTable(json): %v", err)
	}
	var decoded struct {
		Source    string            `json:"source"`
		Count     int               `json:"count"`
		TestCases []models.TestCase `json:"test_cases"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if decoded.Source != "req.pdf" || decoded.Count != 2 {
		t.Errorf("decoded source=%q count=%d", decoded.Source, decoded.Count)
	}
	if len(decoded.TestCases) != 2 || decoded.TestCases[1].ExpectedResult != "Login page shown" {
		t.Errorf("decoded test_cases = %+v", decoded.TestCases)
	}
}

func TestWriteTable_JSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTable(&buf, nil, "", OutputJSON); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"test_cases": []`) {
		t.Errorf("expected empty array, got %s", buf.String())
	}
}

func TestWriteTable_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTable(&buf, sampleTable(), "req.pdf", OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"2 test case(s) for req.pdf", "Test Case 1: Login works", "Steps to be followed: Click logout", "Expected Results: Dashboard shown"} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteTable_CSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTable(&buf, sampleTable(), "", OutputCSV); err != nil {
		t.Fatal(err)
	}
	table, err := export.ReadCSV(&buf)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(table) != 2 || table[0] != sampleTable()[0] {
		t.Errorf("round trip = %+v", table)
	}
}

func TestWriteTable_XLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTable(&buf, sampleTable(), "", OutputXLSX); err != nil {
		t.Fatal(err)
	}
	// xlsx is a zip archive.
	if !bytes.HasPrefix(buf.Bytes(), []byte("PK")) {
		t.Error("expected zip signature")
	}
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", OutputText, false},
		{"text", OutputText, false},
		{"CSV", OutputCSV, false},
		{" json ", OutputJSON, false},
		{"xlsx", OutputXLSX, false},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOutputFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseOutputFormat(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseOutputFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
