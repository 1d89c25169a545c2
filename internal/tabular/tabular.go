// Package tabular reads and writes the small header-addressed CSV tables the
// assistant works with.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

var ErrMissingColumn = errors.New("missing column")

// Table is a parsed CSV file with a header row.
type Table struct {
	Header []string
	Rows   [][]string
	lines  []int
	index  map[string]int
}

// Read parses CSV data whose first record is the header.
func Read(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty csv: no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var rows [][]string
	var lines []int
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		line, _ := cr.FieldPos(0)
		rows = append(rows, rec)
		lines = append(lines, line)
	}
	return build(header, rows, lines), nil
}

// New builds a table from a header and data rows, numbering the rows as if
// the header were line 1. Blank rows are dropped.
func New(header []string, rows [][]string) *Table {
	lines := make([]int, len(rows))
	for i := range rows {
		lines[i] = i + 2
	}
	return build(header, rows, lines)
}

func build(header []string, rows [][]string, lines []int) *Table {
	t := &Table{Header: header, index: make(map[string]int, len(header))}
	for i, h := range header {
		key := normalize(h)
		if _, dup := t.index[key]; !dup {
			t.index[key] = i
		}
	}
	for i, r := range rows {
		if isBlank(r) {
			continue
		}
		t.Rows = append(t.Rows, r)
		t.lines = append(t.lines, lines[i])
	}
	return t
}

// Line is the 1-based source line on which row i starts.
func (t *Table) Line(i int) int {
	if i < 0 || i >= len(t.lines) {
		return 0
	}
	return t.lines[i]
}

// Has reports whether the header carries the named column.
func (t *Table) Has(column string) bool {
	_, ok := t.index[normalize(column)]
	return ok
}

// Require returns the positions of the named columns or an error naming the
// first one that is absent.
func (t *Table) Require(columns ...string) (map[string]int, error) {
	out := make(map[string]int, len(columns))
	for _, c := range columns {
		i, ok := t.index[normalize(c)]
		if !ok {
			return nil, fmt.Errorf("%w %q", ErrMissingColumn, c)
		}
		out[c] = i
	}
	return out, nil
}

// Cell returns the trimmed value at the given position, or "" for short rows.
func Cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// Write emits header and rows as CSV.
func Write(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
