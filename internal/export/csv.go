// Package export writes test case tables as CSV and XLSX downloads.
package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/testgen/internal/models"
)

// Download file names and content types.
const (
	CSVFilename     = "test_cases.csv"
	CSVContentType  = "text/csv"
	XLSXFilename    = "test_cases.xlsx"
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// utf8BOM is stripped from the start of files read back by ReadCSV.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ErrBadHeader is returned by ReadCSV when the first row is not the test case header.
var ErrBadHeader = errors.New("unexpected CSV header")

// Writer wraps csv.Writer for exporting test cases.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the three-column header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(models.Columns)
}

// WriteTable writes one row per test case.
func (w *Writer) WriteTable(table models.TestCaseTable) error {
	for _, tc := range table {
		if err := w.csv.Write(tc.Fields()); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// WriteCSV writes the header and every row of table to w.
func WriteCSV(w io.Writer, table models.TestCaseTable) error {
	cw := NewWriter(w)
	if err := cw.WriteHeader(); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteTable(table); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads a table previously written by WriteCSV.
func ReadCSV(r io.Reader) (models.TestCaseTable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	cr := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	cr.FieldsPerRecord = len(models.Columns)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, col := range models.Columns {
		if strings.TrimSpace(header[i]) != col {
			return nil, fmt.Errorf("%w: column %d is %q, want %q", ErrBadHeader, i+1, header[i], col)
		}
	}

	table := models.TestCaseTable{}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(table)+2, err)
		}
		table = append(table, models.TestCase{Description: row[0], Steps: row[1], ExpectedResult: row[2]})
	}
	return table, nil
}
