package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/testgen/internal/models"
	"github.com/hyperjump/testgen/internal/testcase"
)

func sampleTable() models.TestCaseTable {
	return models.TestCaseTable{
		{Description: "Login works", Steps: "Enter valid creds, click login", ExpectedResult: "User is logged in"},
		{Description: `Quote "handling"`, Steps: "Line one\nLine two", ExpectedResult: "Shown as-is"},
	}
}

func TestWriteCSV_header(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"Test Description", "Steps to be followed", "Expected Results"}, rows[0])
}

func TestWriteCSV_rows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleTable()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Enter valid creds, click login", rows[1][1])
	assert.Equal(t, `Quote "handling"`, rows[2][0])
	assert.Equal(t, "Line one\nLine two", rows[2][1])
}

func TestReadCSV_roundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleTable()))

	got, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, sampleTable(), got)
}

func TestReadCSV_bom(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)
	require.NoError(t, WriteCSV(&buf, sampleTable()[:1]))

	got, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestReadCSV_badHeader(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("a,b,c\n1,2,3\n"))
	assert.True(t, errors.Is(err, ErrBadHeader), "got %v", err)

	_, err = ReadCSV(strings.NewReader("Test Description,Steps to be followed\n"))
	assert.Error(t, err)
}

func TestCSV_parserIdempotence(t *testing.T) {
	reply := "Test Case 1 || Valid login || Enter creds || Dashboard\nnoise\nLogout || Click logout || Login page shown"
	table := testcase.Parse(reply)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, table))
	exported, err := ReadCSV(&buf)
	require.NoError(t, err)

	var lines []string
	for _, tc := range exported {
		lines = append(lines, testcase.Join(tc))
	}
	assert.Equal(t, table, testcase.Parse(strings.Join(lines, "\n")))
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleTable()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, models.Columns, rows[0])
	assert.Equal(t, "Login works", rows[1][0])
	assert.Equal(t, "Shown as-is", rows[2][2])

	styleID, err := f.GetCellStyle(SheetName, "B1")
	require.NoError(t, err)
	assert.NotZero(t, styleID, "header cells should carry the bold style")
}
