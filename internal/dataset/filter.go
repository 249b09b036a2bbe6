package dataset

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/skalyan/tabdash/pkg/apperr"
)

// Predicate restricts one column: an allow-set of categorical values or an
// inclusive date range. A zero predicate matches everything.
type Predicate struct {
	Values map[string]struct{}
	From   *time.Time
	To     *time.Time
}

// Active reports whether the predicate restricts anything.
func (p Predicate) Active() bool {
	return len(p.Values) > 0 || p.From != nil || p.To != nil
}

// matches evaluates the predicate against a raw cell value.
func (p Predicate) matches(cell string) bool {
	if len(p.Values) > 0 {
		if _, ok := p.Values[cell]; !ok {
			return false
		}
	}
	if p.From != nil || p.To != nil {
		t, ok := ParseDate(cell)
		if !ok {
			return false
		}
		if p.From != nil && t.Before(*p.From) {
			return false
		}
		if p.To != nil && t.After(*p.To) {
			return false
		}
	}
	return true
}

// FilterState maps column names to predicates. Columns without an entry
// (or with an empty predicate) are unfiltered.
type FilterState map[string]Predicate

// Fingerprint returns a short stable hash of the active predicates, used to
// invalidate preview cursors when filters change.
func (fs FilterState) Fingerprint() string {
	names := make([]string, 0, len(fs))
	for name, p := range fs {
		if p.Active() {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		p := fs[name]
		b.WriteString(name)
		b.WriteByte('=')
		if len(p.Values) > 0 {
			vals := make([]string, 0, len(p.Values))
			for v := range p.Values {
				vals = append(vals, v)
			}
			sort.Strings(vals)
			b.WriteString(strings.Join(vals, ","))
		}
		if p.From != nil {
			fmt.Fprintf(&b, "|from=%s", p.From.Format("2006-01-02"))
		}
		if p.To != nil {
			fmt.Fprintf(&b, "|to=%s", p.To.Format("2006-01-02"))
		}
		b.WriteByte(';')
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:8])
}

// View is a Dataset with FilterState predicates applied: the same column
// set and a subset of row indices. It is recomputed per interaction and
// never mutated in place.
type View struct {
	ds   *Dataset
	rows []int
}

// Apply evaluates fs against ds (logical AND across active predicates).
// Predicates naming unknown columns are rejected.
func Apply(ds *Dataset, fs FilterState) (*View, error) {
	type boundPred struct {
		col  int
		pred Predicate
	}
	var bound []boundPred
	for name, p := range fs {
		if !p.Active() {
			continue
		}
		ci, ok := ds.ColumnIndex(name)
		if !ok {
			return nil, apperr.Wrapf(apperr.ColumnUnknown, "filter references unknown column %q", name)
		}
		bound = append(bound, boundPred{col: ci, pred: p})
	}

	v := &View{ds: ds, rows: make([]int, 0, ds.NumRows())}
	for ri := range ds.Rows {
		keep := true
		for _, bp := range bound {
			if !bp.pred.matches(ds.Cell(ri, bp.col)) {
				keep = false
				break
			}
		}
		if keep {
			v.rows = append(v.rows, ri)
		}
	}
	return v, nil
}

// NumRows returns the filtered row count.
func (v *View) NumRows() int { return len(v.rows) }

// Dataset exposes the underlying dataset (columns are shared, not copied).
func (v *View) Dataset() *Dataset { return v.ds }

// Columns returns the view's column set, identical to the dataset's.
func (v *View) Columns() []Column { return v.ds.Columns }

// Cell returns the raw cell at filtered-row index row and column col.
func (v *View) Cell(row, col int) string {
	if row < 0 || row >= len(v.rows) {
		return ""
	}
	return v.ds.Cell(v.rows[row], col)
}

// Row materializes one filtered row.
func (v *View) Row(row int) []string {
	if row < 0 || row >= len(v.rows) {
		return nil
	}
	src := v.ds.Rows[v.rows[row]]
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// ParseForm builds a FilterState from dashboard form values. Categorical
// selections arrive as repeated "f_<column>" fields; date bounds as
// "from_<column>" / "to_<column>" in YYYY-MM-DD. Empty selections impose no
// filter; selecting every option of a column is equivalent to none.
func ParseForm(values url.Values, ds *Dataset) (FilterState, error) {
	fs := FilterState{}
	for key, vals := range values {
		switch {
		case strings.HasPrefix(key, "f_"):
			name := strings.TrimPrefix(key, "f_")
			col, ok := ds.Column(name)
			if !ok {
				return nil, apperr.Wrapf(apperr.ColumnUnknown, "unknown filter column %q", name)
			}
			if !col.Filterable {
				continue
			}
			set := make(map[string]struct{}, len(vals))
			for _, v := range vals {
				v = strings.TrimSpace(v)
				if v != "" {
					set[v] = struct{}{}
				}
			}
			if len(set) == 0 || len(set) >= col.Distinct {
				continue // no restriction
			}
			p := fs[name]
			p.Values = set
			fs[name] = p
		case strings.HasPrefix(key, "from_"), strings.HasPrefix(key, "to_"):
			isFrom := strings.HasPrefix(key, "from_")
			name := strings.TrimPrefix(key, "to_")
			if isFrom {
				name = strings.TrimPrefix(key, "from_")
			}
			col, ok := ds.Column(name)
			if !ok {
				return nil, apperr.Wrapf(apperr.ColumnUnknown, "unknown filter column %q", name)
			}
			if col.Type != TypeDate {
				continue
			}
			raw := strings.TrimSpace(values.Get(key))
			if raw == "" {
				continue
			}
			t, err := time.Parse("2006-01-02", raw)
			if err != nil {
				return nil, apperr.Wrapf(apperr.Validation, "invalid date %q for %s", raw, name)
			}
			p := fs[name]
			if isFrom {
				p.From = &t
			} else {
				// Inclusive upper bound: extend to end of day.
				end := t.Add(24*time.Hour - time.Nanosecond)
				p.To = &end
			}
			fs[name] = p
		}
	}
	return fs, nil
}
