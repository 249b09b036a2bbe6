package analysis

import (
	"github.com/skalyan/tabdash/internal/dataset"
	"github.com/skalyan/tabdash/pkg/apperr"
)

// KPIResult reports summary statistics for a metric column over a filtered
// view. Count is the filtered record count; Sum and Mean cover the cells
// that parsed as numbers. HasMean is false for an empty view, where the
// mean is undefined and rendered as N/A.
type KPIResult struct {
	Metric  string  `json:"metric"`
	Sum     float64 `json:"sum"`
	Mean    float64 `json:"mean"`
	Count   int     `json:"count"`
	HasMean bool    `json:"has_mean"`
}

// KPIs computes {sum, mean, count} for the metric column of v.
func KPIs(v *dataset.View, metric string) (KPIResult, error) {
	out := KPIResult{Metric: metric}

	ci, ok := v.Dataset().ColumnIndex(metric)
	if !ok {
		return out, apperr.Wrapf(apperr.ColumnUnknown, "metric column %q not found", metric)
	}
	col := v.Columns()[ci]
	if col.Type != dataset.TypeNumeric {
		return out, apperr.Wrapf(apperr.ColumnIncompatible, "metric column %q is %s, need numeric", metric, col.Type)
	}

	out.Count = v.NumRows()
	parsed := 0
	for ri := 0; ri < v.NumRows(); ri++ {
		if f, ok := dataset.ParseNumber(v.Cell(ri, ci)); ok {
			out.Sum += f
			parsed++
		}
	}
	if parsed > 0 {
		out.Mean = out.Sum / float64(parsed)
		out.HasMean = true
	}
	return out, nil
}
