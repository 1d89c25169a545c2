// Package purchases holds the customer purchase history and its frequency
// analysis.
package purchases

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"pharmacy-assistant/internal/tabular"
)

const (
	ColCustomer = "Customer Name"
	ColMedicine = "Medicine Name"
	ColDate     = "Purchase Date"
	ColQuantity = "Quantity"
)

// TopN is how many medicines the analysis lists.
const TopN = 5

type Purchase struct {
	Customer string `json:"customer_name"`
	Medicine string `json:"medicine_name"`
	Date     string `json:"purchase_date,omitempty"`
	Quantity string `json:"quantity,omitempty"`
}

// Count is one ranked line of the analysis.
type Count struct {
	Medicine string `json:"medicine_name"`
	Times    int    `json:"times"`
}

type History struct {
	rows []Purchase
}

func New(rows ...Purchase) *History {
	return &History{rows: append([]Purchase(nil), rows...)}
}

// Load reads a purchase-history CSV. Customer Name and Medicine Name are
// required; Purchase Date and Quantity are kept as text when present.
func Load(r io.Reader) (*History, error) {
	tbl, err := tabular.Read(r)
	if err != nil {
		return nil, err
	}
	return FromTable(tbl)
}

func FromTable(tbl *tabular.Table) (*History, error) {
	cols, err := tbl.Require(ColCustomer, ColMedicine)
	if err != nil {
		return nil, fmt.Errorf("purchase history: %w", err)
	}
	dateCol, qtyCol := -1, -1
	if tbl.Has(ColDate) {
		c, _ := tbl.Require(ColDate)
		dateCol = c[ColDate]
	}
	if tbl.Has(ColQuantity) {
		c, _ := tbl.Require(ColQuantity)
		qtyCol = c[ColQuantity]
	}

	h := &History{rows: make([]Purchase, 0, len(tbl.Rows))}
	for _, row := range tbl.Rows {
		p := Purchase{
			Customer: tabular.Cell(row, cols[ColCustomer]),
			Medicine: tabular.Cell(row, cols[ColMedicine]),
			Date:     tabular.Cell(row, dateCol),
			Quantity: tabular.Cell(row, qtyCol),
		}
		h.rows = append(h.rows, p)
	}
	return h, nil
}

// LooksLike reports whether a table has the purchase-history header.
func LooksLike(tbl *tabular.Table) bool {
	return tbl.Has(ColCustomer) && tbl.Has(ColMedicine)
}

func (h *History) Len() int {
	if h == nil {
		return 0
	}
	return len(h.rows)
}

func (h *History) Rows() []Purchase {
	if h == nil {
		return nil
	}
	return append([]Purchase(nil), h.rows...)
}

func (h *History) Clone() *History {
	return New(h.Rows()...)
}

// ForCustomer returns the purchases of a customer, matching the name
// case-insensitively.
func (h *History) ForCustomer(name string) []Purchase {
	key := strings.ToLower(strings.TrimSpace(name))
	var out []Purchase
	for _, p := range h.Rows() {
		if strings.ToLower(p.Customer) == key {
			out = append(out, p)
		}
	}
	return out
}

// TopPurchases counts purchases per medicine for a customer and returns the
// most frequent ones. Ties keep the order of first purchase.
func (h *History) TopPurchases(customer string) []Count {
	var counts []Count
	pos := make(map[string]int)
	for _, p := range h.ForCustomer(customer) {
		i, ok := pos[p.Medicine]
		if !ok {
			pos[p.Medicine] = len(counts)
			counts = append(counts, Count{Medicine: p.Medicine, Times: 1})
			continue
		}
		counts[i].Times++
	}
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Times > counts[j].Times })
	if len(counts) > TopN {
		counts = counts[:TopN]
	}
	return counts
}

// Analyze returns the user-facing purchase summary for a customer.
func (h *History) Analyze(customer string) string {
	top := h.TopPurchases(customer)
	if len(top) == 0 {
		return fmt.Sprintf("No purchase history found for %s.", customer)
	}
	lines := make([]string, 0, len(top))
	for _, c := range top {
		lines = append(lines, fmt.Sprintf("%s: %d times", c.Medicine, c.Times))
	}
	return fmt.Sprintf("Top purchases for %s: \n", customer) + strings.Join(lines, "\n")
}

// NoHistoryMessage is shown when analysis is requested before any purchase
// history was loaded.
const NoHistoryMessage = "Please upload the customer purchase history file first."

// AnalyzeLoaded is Analyze with the missing-table case folded in.
func AnalyzeLoaded(h *History, customer string) string {
	if h == nil {
		return NoHistoryMessage
	}
	return h.Analyze(customer)
}
