package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Table is a header-keyed view over tabular input. Header names are matched
// case-insensitively.
type Table struct {
	Headers []string
	Rows    [][]string

	columns map[string]int
}

// NewTable indexes the header row.
func NewTable(headers []string, rows [][]string) *Table {
	t := &Table{Headers: headers, Rows: rows, columns: make(map[string]int, len(headers))}
	for i, h := range headers {
		key := normalizeHeader(h)
		if _, exists := t.columns[key]; !exists {
			t.columns[key] = i
		}
	}
	return t
}

// Has reports whether any of the named columns exist.
func (t *Table) Has(names ...string) bool {
	_, ok := t.index(names...)
	return ok
}

// Value returns the trimmed cell of row for the first matching column name.
func (t *Table) Value(row []string, names ...string) string {
	idx, ok := t.index(names...)
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func (t *Table) index(names ...string) (int, bool) {
	for _, name := range names {
		if idx, ok := t.columns[normalizeHeader(name)]; ok {
			return idx, true
		}
	}
	return 0, false
}

func normalizeHeader(header string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header, "\ufeff")))
}

// ReadCSV reads a CSV document whose first record is the header.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return fromRecords(records)
}

// ReadXLSX reads a worksheet. An empty sheet name selects the first sheet.
func ReadXLSX(r io.Reader, sheet string) (*Table, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = file.Close() }()

	if sheet == "" {
		sheet = file.GetSheetName(0)
	}
	if sheet == "" {
		return nil, errors.New("no worksheet found")
	}

	rows, err := file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read worksheet %s: %w", sheet, err)
	}
	return fromRecords(rows)
}

// ReadFile dispatches on the file extension.
func ReadFile(name string, r io.Reader) (*Table, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		return ReadXLSX(bytes.NewReader(data), "")
	case ".csv", ".txt", "":
		return ReadCSV(r)
	default:
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(name))
	}
}

func fromRecords(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, errors.New("input is empty")
	}
	body := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		body = append(body, rec)
	}
	return NewTable(records[0], body), nil
}

func blank(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
