package analysis

import (
	"sort"

	"github.com/skalyan/tabdash/internal/dataset"
	"github.com/skalyan/tabdash/pkg/apperr"
)

// TopNRow is one ranked group with its aggregated metric.
type TopNRow struct {
	Group string  `json:"group"`
	Value float64 `json:"value"`
}

// TopN groups v by a categorical column, sums the metric per group, and
// returns at most n groups ordered descending by the aggregate. Ties keep
// first-encountered row order. Empty group cells aggregate under "(empty)";
// a group whose metric cells never parse still appears with a zero sum.
func TopN(v *dataset.View, groupCol, metricCol string, n int) ([]TopNRow, error) {
	if n <= 0 {
		return nil, apperr.Wrapf(apperr.Validation, "top-n size must be positive, got %d", n)
	}

	ds := v.Dataset()
	gi, ok := ds.ColumnIndex(groupCol)
	if !ok {
		return nil, apperr.Wrapf(apperr.ColumnUnknown, "group column %q not found", groupCol)
	}
	if ds.Columns[gi].Type != dataset.TypeCategorical {
		return nil, apperr.Wrapf(apperr.ColumnIncompatible, "group column %q is %s, need categorical", groupCol, ds.Columns[gi].Type)
	}
	mi, ok := ds.ColumnIndex(metricCol)
	if !ok {
		return nil, apperr.Wrapf(apperr.ColumnUnknown, "metric column %q not found", metricCol)
	}
	if ds.Columns[mi].Type != dataset.TypeNumeric {
		return nil, apperr.Wrapf(apperr.ColumnIncompatible, "metric column %q is %s, need numeric", metricCol, ds.Columns[mi].Type)
	}

	sums := map[string]float64{}
	firstSeen := map[string]int{}
	order := 0
	for ri := 0; ri < v.NumRows(); ri++ {
		group := v.Cell(ri, gi)
		if group == "" {
			group = "(empty)"
		}
		if _, seen := firstSeen[group]; !seen {
			firstSeen[group] = order
			order++
			sums[group] = 0
		}
		if mv, ok := dataset.ParseNumber(v.Cell(ri, mi)); ok {
			sums[group] += mv
		}
	}

	rows := make([]TopNRow, 0, len(sums))
	for g, sum := range sums {
		rows = append(rows, TopNRow{Group: g, Value: sum})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Value == rows[j].Value {
			return firstSeen[rows[i].Group] < firstSeen[rows[j].Group]
		}
		return rows[i].Value > rows[j].Value
	})

	if n < len(rows) {
		rows = rows[:n]
	}
	return rows, nil
}
