package charts

import (
	"math/rand"
	"sort"
	"time"

	"github.com/skalyan/tabdash/config"
	"github.com/skalyan/tabdash/internal/dataset"
	"github.com/skalyan/tabdash/pkg/apperr"
)

// Kind selects the chart type.
type Kind string

const (
	KindLine    Kind = "line"
	KindScatter Kind = "scatter"
	KindBar     Kind = "bar"
)

// sampleSeed keeps scatter downsampling deterministic across renders so the
// same filtered view always draws the same points.
const sampleSeed = 1

// Spec describes one chart request against a filtered view.
type Spec struct {
	Kind Kind
	// X is the independent column: a date column for line charts, a numeric
	// column for scatter, a categorical column for bar.
	X string
	// Y is the numeric metric column.
	Y string
	// Hue optionally names a categorical column used to label scatter points.
	Hue string
	// SampleSize caps scatter point count; <= 0 uses the default.
	SampleSize int
}

// MonthPoint is one aggregated bucket of a time series.
type MonthPoint struct {
	Month time.Time
	Value float64
}

// ScatterPoint is one sampled (x, y) observation with an optional hue label.
type ScatterPoint struct {
	X, Y float64
	Hue  string
}

// BarGroup is one category with its summed metric value.
type BarGroup struct {
	Label string
	Value float64
}

// columnOfType resolves name in v and checks it has the wanted type.
func columnOfType(v *dataset.View, name string, want dataset.Type) (int, error) {
	idx, ok := v.Dataset().ColumnIndex(name)
	if !ok {
		return 0, apperr.Wrapf(apperr.ColumnUnknown, "column %q not found", name)
	}
	if v.Columns()[idx].Type != want {
		return 0, apperr.Wrapf(apperr.ChartIncompatible,
			"column %q is %s, need %s", name, v.Columns()[idx].Type, want)
	}
	return idx, nil
}

// LinePoints aggregates the metric by calendar month of the date column,
// summing values per month and returning buckets in chronological order.
func LinePoints(v *dataset.View, dateCol, metricCol string) ([]MonthPoint, error) {
	di, err := columnOfType(v, dateCol, dataset.TypeDate)
	if err != nil {
		return nil, err
	}
	mi, err := columnOfType(v, metricCol, dataset.TypeNumeric)
	if err != nil {
		return nil, err
	}

	sums := make(map[time.Time]float64)
	for r := 0; r < v.NumRows(); r++ {
		t, ok := dataset.ParseDate(v.Cell(r, di))
		if !ok {
			continue
		}
		val, ok := dataset.ParseNumber(v.Cell(r, mi))
		if !ok {
			continue
		}
		month := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
		sums[month] += val
	}

	points := make([]MonthPoint, 0, len(sums))
	for m, s := range sums {
		points = append(points, MonthPoint{Month: m, Value: s})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Month.Before(points[j].Month) })
	return points, nil
}

// ScatterPoints collects (x, y) pairs where both cells parse as numbers,
// downsampling to sampleSize with a fixed seed when the view is larger.
func ScatterPoints(v *dataset.View, xCol, yCol, hueCol string, sampleSize int) ([]ScatterPoint, error) {
	xi, err := columnOfType(v, xCol, dataset.TypeNumeric)
	if err != nil {
		return nil, err
	}
	yi, err := columnOfType(v, yCol, dataset.TypeNumeric)
	if err != nil {
		return nil, err
	}
	hi := -1
	if hueCol != "" {
		hi, err = columnOfType(v, hueCol, dataset.TypeCategorical)
		if err != nil {
			return nil, err
		}
	}
	if sampleSize <= 0 {
		sampleSize = config.DefaultScatterSampleSize
	}

	var points []ScatterPoint
	for r := 0; r < v.NumRows(); r++ {
		x, ok := dataset.ParseNumber(v.Cell(r, xi))
		if !ok {
			continue
		}
		y, ok := dataset.ParseNumber(v.Cell(r, yi))
		if !ok {
			continue
		}
		p := ScatterPoint{X: x, Y: y}
		if hi >= 0 {
			p.Hue = v.Cell(r, hi)
		}
		points = append(points, p)
	}

	if len(points) > sampleSize {
		rng := rand.New(rand.NewSource(sampleSeed))
		rng.Shuffle(len(points), func(i, j int) { points[i], points[j] = points[j], points[i] })
		points = points[:sampleSize]
	}
	return points, nil
}

// BarGroups sums the metric per category and returns groups sorted by value
// ascending, matching the dashboard's bar ordering.
func BarGroups(v *dataset.View, catCol, metricCol string) ([]BarGroup, error) {
	ci, err := columnOfType(v, catCol, dataset.TypeCategorical)
	if err != nil {
		return nil, err
	}
	mi, err := columnOfType(v, metricCol, dataset.TypeNumeric)
	if err != nil {
		return nil, err
	}

	sums := make(map[string]float64)
	for r := 0; r < v.NumRows(); r++ {
		val, ok := dataset.ParseNumber(v.Cell(r, mi))
		if !ok {
			continue
		}
		label := v.Cell(r, ci)
		if label == "" {
			label = "(empty)"
		}
		sums[label] += val
	}

	groups := make([]BarGroup, 0, len(sums))
	for label, s := range sums {
		groups = append(groups, BarGroup{Label: label, Value: s})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Value != groups[j].Value {
			return groups[i].Value < groups[j].Value
		}
		return groups[i].Label < groups[j].Label
	})
	return groups, nil
}
