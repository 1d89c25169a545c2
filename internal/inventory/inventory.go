// Package inventory holds the medicine table and the structured queries that
// are answered from it without the language model.
package inventory

import (
	"fmt"
	"io"
	"strings"
	"time"

	"pharmacy-assistant/internal/tabular"
)

// Inventory is an ordered, append-only list of medicines.
type Inventory struct {
	items []Medicine
}

func New(items ...Medicine) *Inventory {
	return &Inventory{items: append([]Medicine(nil), items...)}
}

// Load reads an inventory CSV. All seven columns are required; cell values
// other than the name are not validated.
func Load(r io.Reader) (*Inventory, error) {
	tbl, err := tabular.Read(r)
	if err != nil {
		return nil, err
	}
	return FromTable(tbl)
}

// FromTable converts a parsed table into an inventory.
func FromTable(tbl *tabular.Table) (*Inventory, error) {
	cols, err := tbl.Require(Columns...)
	if err != nil {
		return nil, fmt.Errorf("inventory: %w", err)
	}
	inv := &Inventory{items: make([]Medicine, 0, len(tbl.Rows))}
	cells := make([]string, len(Columns))
	for i, row := range tbl.Rows {
		for j, col := range Columns {
			cells[j] = tabular.Cell(row, cols[col])
		}
		m, err := FromRecord(cells)
		if err != nil {
			return nil, fmt.Errorf("inventory line %d: %w", tbl.Line(i), err)
		}
		inv.items = append(inv.items, m)
	}
	return inv, nil
}

// LooksLike reports whether a table has the inventory header.
func LooksLike(tbl *tabular.Table) bool {
	_, err := tbl.Require(Columns...)
	return err == nil
}

func (inv *Inventory) Len() int {
	if inv == nil {
		return 0
	}
	return len(inv.items)
}

// Items returns a copy of the rows.
func (inv *Inventory) Items() []Medicine {
	if inv == nil {
		return nil
	}
	return append([]Medicine(nil), inv.items...)
}

func (inv *Inventory) Clone() *Inventory {
	return New(inv.Items()...)
}

// Add appends a medicine. Names and batches are not required to be unique.
func (inv *Inventory) Add(m Medicine) {
	inv.items = append(inv.items, m)
}

// Names returns distinct medicine names in first-appearance order.
func (inv *Inventory) Names() []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range inv.Items() {
		key := strings.ToLower(m.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, m.Name)
	}
	return out
}

// FindMedicine looks for a medicine name inside a free-text query. When more
// than one name occurs in the query the longest wins; equal lengths go to the
// name that appears first in the table.
func (inv *Inventory) FindMedicine(query string) (Medicine, bool) {
	q := strings.ToLower(query)
	best := ""
	for _, name := range inv.Names() {
		lower := strings.ToLower(name)
		if lower == "" || !strings.Contains(q, lower) {
			continue
		}
		if len(lower) > len(best) {
			best = lower
		}
	}
	if best == "" {
		return Medicine{}, false
	}
	for _, m := range inv.items {
		if strings.ToLower(m.Name) == best {
			return m, true
		}
	}
	return Medicine{}, false
}

// Answer returns the formatted details block for a query, if any medicine
// matches.
func (inv *Inventory) Answer(query string) (string, bool) {
	m, ok := inv.FindMedicine(query)
	if !ok {
		return "", false
	}
	return m.Details(), true
}

// Expired returns rows whose expiration date is before today, compared as ISO
// date strings.
func (inv *Inventory) Expired(today time.Time) []Medicine {
	cutoff := today.Format(isoDate)
	var out []Medicine
	for _, m := range inv.Items() {
		if key, _ := m.dateKey(); key < cutoff {
			out = append(out, m)
		}
	}
	return out
}

// InvalidDates returns rows whose expiration date is not in a recognised date
// layout. Expired still compares those as plain text.
func (inv *Inventory) InvalidDates() []Medicine {
	var out []Medicine
	for _, m := range inv.Items() {
		if _, ok := m.dateKey(); !ok {
			out = append(out, m)
		}
	}
	return out
}

// WriteCSV exports the inventory with the canonical header.
func (inv *Inventory) WriteCSV(w io.Writer) error {
	rows := make([][]string, 0, inv.Len())
	for _, m := range inv.Items() {
		rows = append(rows, m.Record())
	}
	return tabular.Write(w, Columns, rows)
}

// FormatList renders rows as a short bulleted list.
func FormatList(items []Medicine) string {
	var b strings.Builder
	for i, m := range items {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "- %s (batch %s), expired %s, qty %s", m.Name, m.Batch, m.ExpirationDate, m.QuantityText())
	}
	return b.String()
}

// ExpiredReport is the user-facing text for the expiration check.
func (inv *Inventory) ExpiredReport(today time.Time) string {
	expired := inv.Expired(today)
	if len(expired) == 0 {
		return "No expired medicines."
	}
	report := "The following medicines have expired:\n" + FormatList(expired)
	if invalid := inv.InvalidDates(); len(invalid) > 0 {
		names := make([]string, 0, len(invalid))
		for _, m := range invalid {
			names = append(names, m.Name)
		}
		report += "\n\nWarning: unrecognised expiration dates for " + strings.Join(names, ", ")
	}
	return report
}
