package dataset

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Type tags a column as categorical, numeric, or date.
type Type string

const (
	TypeCategorical Type = "categorical"
	TypeNumeric     Type = "numeric"
	TypeDate        Type = "date"
)

// Column describes one named column of a Dataset.
type Column struct {
	Name     string
	Type     Type
	Distinct int

	// Filterable marks categorical columns eligible for the filter panel
	// (distinct value count within the configured cap). Options holds the
	// sorted distinct values for those columns.
	Filterable bool
	Options    []string

	// MinDate/MaxDate bound date columns for range pickers.
	MinDate time.Time
	MaxDate time.Time
}

// Dataset is the parsed tabular data: ordered named columns plus raw cell
// values kept as trimmed strings. It is replaced wholesale on re-upload and
// never partially mutated.
type Dataset struct {
	Columns []Column
	Rows    [][]string
}

// NumRows returns the number of data rows (excluding the header).
func (d *Dataset) NumRows() int { return len(d.Rows) }

// NumCols returns the number of columns.
func (d *Dataset) NumCols() int { return len(d.Columns) }

// ColumnIndex resolves a normalized column name to its position.
func (d *Dataset) ColumnIndex(name string) (int, bool) {
	for i, c := range d.Columns {
		if c.Name == name {
			return i, true
		}
	}
	return 0, false
}

// Column returns the column metadata for a normalized name.
func (d *Dataset) Column(name string) (Column, bool) {
	if i, ok := d.ColumnIndex(name); ok {
		return d.Columns[i], true
	}
	return Column{}, false
}

// ColumnsOfType lists columns carrying the given type tag, in dataset order.
func (d *Dataset) ColumnsOfType(t Type) []Column {
	var out []Column
	for _, c := range d.Columns {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out
}

// Cell returns the raw cell value at (row, col), empty when out of bounds.
func (d *Dataset) Cell(row, col int) string {
	if row < 0 || row >= len(d.Rows) {
		return ""
	}
	r := d.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// renameMap normalizes a handful of vendor-specific header spellings.
var renameMap = map[string]string{
	"subcategory": "sub_category",
	"customer":    "customer_name",
	"orderid":     "order_id",
}

// NormalizeHeader canonicalizes a raw header cell: trim, lowercase,
// spaces and hyphens to underscores, plus the rename map.
func NormalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	if renamed, ok := renameMap[s]; ok {
		return renamed
	}
	return s
}

// normalizeHeaders applies NormalizeHeader across a header row. Empty
// headers become col_N (by position); a repeated name takes the first free
// name_N suffix, skipping suffixes an existing header already occupies.
func normalizeHeaders(raw []string) []string {
	out := make([]string, len(raw))
	seen := map[string]struct{}{}
	for i, h := range raw {
		name := NormalizeHeader(h)
		if name == "" {
			name = fmt.Sprintf("col_%d", i+1)
		}
		if _, dup := seen[name]; dup {
			base := name
			for n := 2; ; n++ {
				name = fmt.Sprintf("%s_%d", base, n)
				if _, dup := seen[name]; !dup {
					break
				}
			}
		}
		seen[name] = struct{}{}
		out[i] = name
	}
	return out
}

// ParseNumber coerces a cell to a float, stripping common formatting
// ($, thousands separators, trailing %). Percent values are scaled to
// fractions to match spreadsheet semantics.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ',', '$':
			return -1
		default:
			return r
		}
	}, s)
	clean = strings.TrimSpace(clean)
	if strings.HasSuffix(clean, "%") {
		v := strings.TrimSpace(strings.TrimSuffix(clean, "%"))
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f / 100.0, true
		}
		return 0, false
	}
	if f, err := strconv.ParseFloat(clean, 64); err == nil {
		return f, true
	}
	return 0, false
}

// dateLayouts are the accepted cell formats for date columns.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"1/2/06",
	"2006-01-02 15:04:05",
}

// ParseDate coerces a cell to a timestamp using the accepted layouts.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
