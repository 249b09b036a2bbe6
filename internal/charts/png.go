package charts

import (
	"io"
	"time"

	"github.com/skalyan/tabdash/internal/dataset"
	"github.com/skalyan/tabdash/pkg/apperr"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// RenderPNG renders the chart described by spec against v as a PNG image
// written to w. Used by the image endpoint for embedding outside a browser.
func RenderPNG(w io.Writer, v *dataset.View, spec Spec) error {
	switch spec.Kind {
	case KindLine:
		return linePNG(w, v, spec)
	case KindScatter:
		return scatterPNG(w, v, spec)
	case KindBar:
		return barPNG(w, v, spec)
	default:
		return apperr.Wrapf(apperr.Validation, "unknown chart kind %q", spec.Kind)
	}
}

func dotStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    4,
		DotColor:    col,
	}
}

func linePNG(w io.Writer, v *dataset.View, spec Spec) error {
	points, err := LinePoints(v, spec.X, spec.Y)
	if err != nil {
		return err
	}
	if len(points) == 0 {
		return apperr.New(apperr.Validation, "no rows to chart")
	}

	times := make([]time.Time, len(points))
	values := make([]float64, len(points))
	for i, p := range points {
		times[i] = p.Month
		values[i] = p.Value
	}
	// go-chart cannot compute a range from a single point.
	if len(times) == 1 {
		times = append(times, times[0].AddDate(0, 1, 0))
		values = append(values, values[0])
	}

	ch := chart.Chart{
		Title:  spec.Y + " over time (monthly)",
		Width:  900,
		Height: 450,
		XAxis:  chart.XAxis{Name: spec.X},
		YAxis:  chart.YAxis{Name: spec.Y},
		Series: []chart.Series{
			chart.TimeSeries{Name: spec.Y, XValues: times, YValues: values},
		},
	}
	if err := ch.Render(chart.PNG, w); err != nil {
		return apperr.Wrapf(apperr.Internal, "render line png: %v", err)
	}
	return nil
}

func scatterPNG(w io.Writer, v *dataset.View, spec Spec) error {
	points, err := ScatterPoints(v, spec.X, spec.Y, "", spec.SampleSize)
	if err != nil {
		return err
	}
	if len(points) == 0 {
		return apperr.New(apperr.Validation, "no rows to chart")
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.X
		ys[i] = p.Y
	}
	if len(xs) == 1 {
		xs = append(xs, xs[0]+1)
		ys = append(ys, ys[0])
	}

	ch := chart.Chart{
		Title:  spec.Y + " vs " + spec.X,
		Width:  900,
		Height: 450,
		XAxis:  chart.XAxis{Name: spec.X},
		YAxis:  chart.YAxis{Name: spec.Y},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    spec.Y,
				XValues: xs,
				YValues: ys,
				Style:   dotStyle(chart.ColorBlue),
			},
		},
	}
	if err := ch.Render(chart.PNG, w); err != nil {
		return apperr.Wrapf(apperr.Internal, "render scatter png: %v", err)
	}
	return nil
}

func barPNG(w io.Writer, v *dataset.View, spec Spec) error {
	groups, err := BarGroups(v, spec.X, spec.Y)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		return apperr.New(apperr.Validation, "no rows to chart")
	}

	bars := make([]chart.Value, len(groups))
	for i, g := range groups {
		bars[i] = chart.Value{Label: g.Label, Value: g.Value}
	}

	ch := chart.BarChart{
		Title:    spec.Y + " by " + spec.X,
		Width:    900,
		Height:   450,
		BarWidth: 40,
		Bars:     bars,
	}
	if err := ch.Render(chart.PNG, w); err != nil {
		return apperr.Wrapf(apperr.Internal, "render bar png: %v", err)
	}
	return nil
}
