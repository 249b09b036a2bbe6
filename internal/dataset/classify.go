package dataset

import (
	"sort"
	"strings"
	"time"

	"github.com/skalyan/tabdash/config"
)

// typeCounter tracks observed value categories for a column.
type typeCounter struct {
	numCount  int
	dateCount int
	textCount int
	nonEmpty  int
}

func (t *typeCounter) observe(s string) {
	if s == "" {
		return
	}
	t.nonEmpty++
	if _, ok := ParseNumber(s); ok {
		t.numCount++
		return
	}
	if _, ok := ParseDate(s); ok {
		t.dateCount++
		return
	}
	t.textCount++
}

// Classify infers each column's type tag and fills distinct-value metadata.
// Rules, in order:
//   - a column whose name contains "date" is tagged date when at least half
//     of its non-empty cells parse as dates;
//   - a column where every non-empty cell parses as a number is numeric;
//   - a column where every non-empty cell parses as a date is date;
//   - anything else, including mixed content, falls back to categorical.
//
// Categorical columns are Filterable (options exposed in the filter panel)
// only while their distinct count stays within MaxFilterOptions.
func Classify(ds *Dataset, opts Options) error {
	maxOptions := opts.MaxFilterOptions
	if maxOptions <= 0 {
		maxOptions = config.DefaultMaxFilterOptions
	}

	for ci := range ds.Columns {
		col := &ds.Columns[ci]

		var counts typeCounter
		distinct := map[string]struct{}{}
		var minDate, maxDate time.Time

		for ri := range ds.Rows {
			cell := ds.Cell(ri, ci)
			counts.observe(cell)
			if cell != "" {
				distinct[cell] = struct{}{}
			}
		}
		col.Distinct = len(distinct)

		nameHintsDate := strings.Contains(col.Name, "date")
		switch {
		case nameHintsDate && counts.dateCount*2 >= counts.nonEmpty && counts.dateCount > 0:
			col.Type = TypeDate
		case counts.nonEmpty > 0 && counts.numCount == counts.nonEmpty:
			col.Type = TypeNumeric
		case counts.nonEmpty > 0 && counts.dateCount == counts.nonEmpty:
			col.Type = TypeDate
		default:
			col.Type = TypeCategorical
		}

		switch col.Type {
		case TypeDate:
			for ri := range ds.Rows {
				if t, ok := ParseDate(ds.Cell(ri, ci)); ok {
					if minDate.IsZero() || t.Before(minDate) {
						minDate = t
					}
					if maxDate.IsZero() || t.After(maxDate) {
						maxDate = t
					}
				}
			}
			col.MinDate = minDate
			col.MaxDate = maxDate
		case TypeCategorical:
			if col.Distinct <= maxOptions {
				col.Filterable = true
				col.Options = make([]string, 0, len(distinct))
				for v := range distinct {
					col.Options = append(col.Options, v)
				}
				sort.Strings(col.Options)
			}
		}
	}
	return nil
}
