// Package sheet reads and writes single-sheet XLSX tables with a header
// row.
package sheet

import (
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// DefaultSheet is the sheet read and written.
const DefaultSheet = "Sheet1"

// ErrEmpty is returned for a sheet without a header row.
var ErrEmpty = errors.New("sheet has no header row")

// Table is a header row plus data rows. Rows may be shorter than Header.
type Table struct {
	Header []string
	Rows   [][]string
}

// Column returns the index of the header name, or -1.
func (t *Table) Column(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// EnsureColumn returns the index of name, appending it to the header when
// missing.
func (t *Table) EnsureColumn(name string) int {
	if i := t.Column(name); i >= 0 {
		return i
	}
	t.Header = append(t.Header, name)
	return len(t.Header) - 1
}

// Get returns the cell of row in column col, or "".
func (t *Table) Get(row, col int) string {
	if col < 0 || row < 0 || row >= len(t.Rows) || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// Set writes the cell of row in column col, growing the row as needed.
func (t *Table) Set(row, col int, value string) {
	for len(t.Rows[row]) <= col {
		t.Rows[row] = append(t.Rows[row], "")
	}
	t.Rows[row][col] = value
}

// Read loads the first sheet of the workbook at path.
func Read(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	name := f.GetSheetName(0)
	if name == "" {
		name = DefaultSheet
	}
	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if len(rows) == 0 {
		return nil, ErrEmpty
	}
	return &Table{Header: rows[0], Rows: rows[1:]}, nil
}

// Write saves t as DefaultSheet of a new workbook at path.
func Write(path string, t *Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := setRow(f, 1, t.Header); err != nil {
		return err
	}
	for i, row := range t.Rows {
		if err := setRow(f, i+2, row); err != nil {
			return err
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

func setRow(f *excelize.File, rowIdx int, values []string) error {
	if len(values) == 0 {
		return nil
	}
	cell, err := excelize.CoordinatesToCellName(1, rowIdx)
	if err != nil {
		return err
	}
	row := make([]any, len(values))
	for i, v := range values {
		row[i] = v
	}
	return f.SetSheetRow(DefaultSheet, cell, &row)
}
