package inventory

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Column names of the inventory CSV, in export order.
const (
	ColName         = "Medicine Name"
	ColBatch        = "Batch Number"
	ColExpiration   = "Expiration Date"
	ColQuantity     = "Quantity"
	ColDosage       = "Dosage"
	ColPrescription = "Prescription Required"
	ColPrice        = "Price"
)

var Columns = []string{ColName, ColBatch, ColExpiration, ColQuantity, ColDosage, ColPrescription, ColPrice}

const isoDate = "2006-01-02"

// Medicine is one inventory row.
type Medicine struct {
	Name                 string  `json:"medicine_name"`
	Batch                string  `json:"batch_number"`
	ExpirationDate       string  `json:"expiration_date"`
	Quantity             int     `json:"quantity"`
	Dosage               string  `json:"dosage"`
	PrescriptionRequired bool    `json:"prescription_required"`
	Price                float64 `json:"price"`

	// cells is the source text in Columns order for rows read from a file.
	cells []string
}

// FromRecord builds a row read from a file. Only the name is required; cells
// that do not parse leave the typed field zero and are kept as text.
func FromRecord(cells []string) (Medicine, error) {
	if len(cells) != len(Columns) {
		return Medicine{}, fmt.Errorf("expected %d cells, got %d", len(Columns), len(cells))
	}
	text := make([]string, len(cells))
	for i, c := range cells {
		text[i] = strings.TrimSpace(c)
	}
	if text[0] == "" {
		return Medicine{}, fmt.Errorf("medicine name is empty")
	}
	m := Medicine{
		Name:           text[0],
		Batch:          text[1],
		ExpirationDate: text[2],
		Dosage:         text[4],
		cells:          text,
	}
	m.Quantity, _ = parseQuantity(text[3])
	m.PrescriptionRequired, _ = ParseFlag(text[5])
	m.Price, _ = parsePrice(text[6])
	return m, nil
}

// NewMedicine validates raw field values and builds a row.
func NewMedicine(name, batch, expiration, quantity, dosage, prescription, price string) (Medicine, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Medicine{}, fmt.Errorf("medicine name is empty")
	}
	qty, err := parseQuantity(quantity)
	if err != nil {
		return Medicine{}, err
	}
	if qty < 0 {
		return Medicine{}, fmt.Errorf("quantity must not be negative: %d", qty)
	}
	rx, err := ParseFlag(prescription)
	if err != nil {
		return Medicine{}, err
	}
	p, err := parsePrice(price)
	if err != nil {
		return Medicine{}, err
	}
	return Medicine{
		Name:                 name,
		Batch:                strings.TrimSpace(batch),
		ExpirationDate:       strings.TrimSpace(expiration),
		Quantity:             qty,
		Dosage:               strings.TrimSpace(dosage),
		PrescriptionRequired: rx,
		Price:                p,
	}, nil
}

// ParseFlag accepts the usual spreadsheet spellings of a yes/no value.
func ParseFlag(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true", "1":
		return true, nil
	case "no", "n", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid prescription flag %q", s)
}

// parseQuantity accepts whole numbers, also when written as "100.0".
func parseQuantity(s string) (int, error) {
	s = strings.TrimSpace(s)
	if q, err := strconv.Atoi(s); err == nil {
		return q, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("invalid quantity %q", s)
	}
	return int(f), nil
}

func parsePrice(s string) (float64, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "$")
	p, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", s, err)
	}
	if p < 0 {
		return 0, fmt.Errorf("price must not be negative: %v", p)
	}
	return p, nil
}

func (m Medicine) cell(i int) (string, bool) {
	if len(m.cells) != len(Columns) {
		return "", false
	}
	return m.cells[i], true
}

// QuantityText renders the quantity as it was given.
func (m Medicine) QuantityText() string {
	if c, ok := m.cell(3); ok {
		return c
	}
	return strconv.Itoa(m.Quantity)
}

// FlagText renders the prescription flag.
func (m Medicine) FlagText() string {
	if c, ok := m.cell(5); ok {
		return c
	}
	if m.PrescriptionRequired {
		return "Yes"
	}
	return "No"
}

// PriceText renders the price, without trailing zeros unless the source had
// them.
func (m Medicine) PriceText() string {
	if c, ok := m.cell(6); ok {
		return c
	}
	return strconv.FormatFloat(m.Price, 'f', -1, 64)
}

// Record returns the row in Columns order. Rows read from a file come back
// with their original text.
func (m Medicine) Record() []string {
	if len(m.cells) == len(Columns) {
		return append([]string(nil), m.cells...)
	}
	return []string{
		m.Name,
		m.Batch,
		m.ExpirationDate,
		strconv.Itoa(m.Quantity),
		m.Dosage,
		m.FlagText(),
		m.PriceText(),
	}
}

// Details formats the answer block for a medicine lookup.
func (m Medicine) Details() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Here are the details for %s:\n", m.Name)
	fmt.Fprintf(&b, "- Dosage: %s\n", m.Dosage)
	fmt.Fprintf(&b, "- Quantity: %s\n", m.QuantityText())
	fmt.Fprintf(&b, "- Expiration Date: %s\n", m.ExpirationDate)
	fmt.Fprintf(&b, "- Prescription Required: %s\n", m.FlagText())
	fmt.Fprintf(&b, "- Price: %s", m.PriceText())
	return b.String()
}

var dateLayouts = []string{isoDate, "2006/01/02", "02.01.2006", time.RFC3339, "2006-01-02 15:04:05"}

// dateKey returns the ISO form of the expiration date and whether it could be
// parsed. Unparsed values are returned verbatim.
func (m Medicine) dateKey() (string, bool) {
	raw := strings.TrimSpace(m.ExpirationDate)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(isoDate), true
		}
	}
	return raw, false
}
