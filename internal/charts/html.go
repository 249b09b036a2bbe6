package charts

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/skalyan/tabdash/internal/analysis"
	"github.com/skalyan/tabdash/internal/dataset"
	"github.com/skalyan/tabdash/pkg/apperr"
)

// RenderHTML renders the chart described by spec against v as a standalone
// HTML page written to w.
func RenderHTML(w io.Writer, v *dataset.View, spec Spec) error {
	var chart components.Charter
	var err error

	switch spec.Kind {
	case KindLine:
		chart, err = lineChart(v, spec)
	case KindScatter:
		chart, err = scatterChart(v, spec)
	case KindBar:
		chart, err = barChart(v, spec)
	default:
		return apperr.Wrapf(apperr.Validation, "unknown chart kind %q", spec.Kind)
	}
	if err != nil {
		return err
	}

	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("%s: %s by %s", spec.Kind, spec.Y, spec.X)
	page.AddCharts(chart)
	if err := page.Render(w); err != nil {
		return apperr.Wrapf(apperr.Internal, "render chart page: %v", err)
	}
	return nil
}

// RenderTopNHTML renders the Top-N ranking as a horizontal bar page.
func RenderTopNHTML(w io.Writer, rows []analysis.TopNRow, groupCol, metricCol string) error {
	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("top %s by %s", groupCol, metricCol)
	page.AddCharts(topNBar(rows, groupCol, metricCol))
	if err := page.Render(w); err != nil {
		return apperr.Wrapf(apperr.Internal, "render top-n page: %v", err)
	}
	return nil
}

func baseOptions(title, xName, yName string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithXAxisOpts(opts.XAxis{Name: xName}),
		charts.WithYAxisOpts(opts.YAxis{Name: yName}),
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "450px"}),
	}
}

func lineChart(v *dataset.View, spec Spec) (components.Charter, error) {
	points, err := LinePoints(v, spec.X, spec.Y)
	if err != nil {
		return nil, err
	}

	line := charts.NewLine()
	line.SetGlobalOptions(baseOptions(
		fmt.Sprintf("%s over time (monthly)", spec.Y), spec.X, spec.Y)...)

	xLabels := make([]string, len(points))
	data := make([]opts.LineData, len(points))
	for i, p := range points {
		xLabels[i] = p.Month.Format("2006-01")
		data[i] = opts.LineData{Value: p.Value}
	}
	line.SetXAxis(xLabels)
	line.AddSeries(spec.Y, data,
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true), ShowSymbol: opts.Bool(true)}))
	return line, nil
}

func scatterChart(v *dataset.View, spec Spec) (components.Charter, error) {
	points, err := ScatterPoints(v, spec.X, spec.Y, spec.Hue, spec.SampleSize)
	if err != nil {
		return nil, err
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("%s vs %s", spec.Y, spec.X)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithXAxisOpts(opts.XAxis{Name: spec.X, Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: spec.Y, Type: "value"}),
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "450px"}),
	)

	data := make([]opts.ScatterData, len(points))
	for i, p := range points {
		data[i] = opts.ScatterData{
			Name:       p.Hue,
			Value:      []interface{}{p.X, p.Y},
			SymbolSize: 8,
		}
	}
	scatter.AddSeries(spec.Y, data)
	return scatter, nil
}

func barChart(v *dataset.View, spec Spec) (components.Charter, error) {
	groups, err := BarGroups(v, spec.X, spec.Y)
	if err != nil {
		return nil, err
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(baseOptions(
		fmt.Sprintf("%s by %s", spec.Y, spec.X), spec.X, spec.Y)...)

	xLabels := make([]string, len(groups))
	data := make([]opts.BarData, len(groups))
	for i, g := range groups {
		xLabels[i] = g.Label
		data[i] = opts.BarData{Value: g.Value}
	}
	bar.SetXAxis(xLabels)
	bar.AddSeries(spec.Y, data,
		charts.WithBarChartOpts(opts.BarChart{BarGap: "10%"}))
	return bar, nil
}

// topNBar renders rows as a horizontal bar chart, largest at the top. Rows
// arrive ranked descending, so the axis order is reversed to keep rank 1 on top.
func topNBar(rows []analysis.TopNRow, groupCol, metricCol string) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("top %d %s by %s", len(rows), groupCol, metricCol)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "400px"}),
	)

	xLabels := make([]string, len(rows))
	data := make([]opts.BarData, len(rows))
	for i, r := range rows {
		ri := len(rows) - 1 - i
		xLabels[ri] = r.Group
		data[ri] = opts.BarData{Value: r.Value}
	}
	bar.SetXAxis(xLabels)
	bar.AddSeries(metricCol, data)
	bar.XYReversal()
	return bar
}
