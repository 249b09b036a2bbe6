package charts

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/skalyan/tabdash/internal/analysis"
	"github.com/skalyan/tabdash/internal/dataset"
	"github.com/skalyan/tabdash/pkg/apperr"
	"github.com/stretchr/testify/require"
)

const ordersCSV = "Category,Order Date,Quantity,Amount\n" +
	"A,2024-01-05,2,100.50\n" +
	"A,2024-01-20,1,50\n" +
	"B,2024-02-10,3,20\n" +
	"A,2024-03-15,4,30\n"

func loadView(t *testing.T, csv string) *dataset.View {
	t.Helper()
	ds, err := dataset.DecodeCSV(strings.NewReader(csv), dataset.Options{})
	require.NoError(t, err)
	v, err := dataset.Apply(ds, dataset.FilterState{})
	require.NoError(t, err)
	return v
}

func TestLinePointsMonthlySum(t *testing.T) {
	v := loadView(t, ordersCSV)

	points, err := LinePoints(v, "order_date", "amount")
	require.NoError(t, err)
	require.Len(t, points, 3)

	require.Equal(t, "2024-01", points[0].Month.Format("2006-01"))
	require.InDelta(t, 150.50, points[0].Value, 1e-9)
	require.Equal(t, "2024-02", points[1].Month.Format("2006-01"))
	require.InDelta(t, 20, points[1].Value, 1e-9)
	require.Equal(t, "2024-03", points[2].Month.Format("2006-01"))
	require.InDelta(t, 30, points[2].Value, 1e-9)
}

func TestLinePointsRequiresDateColumn(t *testing.T) {
	v := loadView(t, ordersCSV)

	_, err := LinePoints(v, "category", "amount")
	require.Equal(t, apperr.ChartIncompatible, apperr.CodeOf(err))

	_, err = LinePoints(v, "nope", "amount")
	require.Equal(t, apperr.ColumnUnknown, apperr.CodeOf(err))
}

func TestScatterPointsWithHue(t *testing.T) {
	v := loadView(t, ordersCSV)

	points, err := ScatterPoints(v, "quantity", "amount", "category", 0)
	require.NoError(t, err)
	require.Len(t, points, 4)
	require.Equal(t, "A", points[0].Hue)
	require.InDelta(t, 2, points[0].X, 1e-9)
	require.InDelta(t, 100.50, points[0].Y, 1e-9)
}

func TestScatterSamplingDeterministic(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("x,y\n")
	for i := 0; i < 50; i++ {
		fmt.Fprintf(&sb, "%d,%d\n", i, i*2)
	}
	v := loadView(t, sb.String())

	first, err := ScatterPoints(v, "x", "y", "", 10)
	require.NoError(t, err)
	require.Len(t, first, 10)

	second, err := ScatterPoints(v, "x", "y", "", 10)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestBarGroupsAscending(t *testing.T) {
	v := loadView(t, ordersCSV)

	groups, err := BarGroups(v, "category", "amount")
	require.NoError(t, err)
	require.Equal(t, []BarGroup{
		{Label: "B", Value: 20},
		{Label: "A", Value: 180.50},
	}, groups)
}

func TestBarGroupsRequiresCategorical(t *testing.T) {
	v := loadView(t, ordersCSV)
	_, err := BarGroups(v, "amount", "quantity")
	require.Equal(t, apperr.ChartIncompatible, apperr.CodeOf(err))
}

func TestRenderHTMLAllKinds(t *testing.T) {
	v := loadView(t, ordersCSV)

	specs := []Spec{
		{Kind: KindLine, X: "order_date", Y: "amount"},
		{Kind: KindScatter, X: "quantity", Y: "amount", Hue: "category"},
		{Kind: KindBar, X: "category", Y: "amount"},
	}
	for _, spec := range specs {
		var buf bytes.Buffer
		require.NoError(t, RenderHTML(&buf, v, spec), "kind %s", spec.Kind)
		require.Contains(t, buf.String(), "echarts")
	}

	var buf bytes.Buffer
	err := RenderHTML(&buf, v, Spec{Kind: "pie", X: "category", Y: "amount"})
	require.Equal(t, apperr.Validation, apperr.CodeOf(err))
}

func TestRenderTopNHTML(t *testing.T) {
	v := loadView(t, ordersCSV)
	rows, err := analysis.TopN(v, "category", "amount", 5)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, RenderTopNHTML(&buf, rows, "category", "amount"))
	require.Contains(t, buf.String(), "echarts")
}

func TestRenderPNGAllKinds(t *testing.T) {
	v := loadView(t, ordersCSV)

	specs := []Spec{
		{Kind: KindLine, X: "order_date", Y: "amount"},
		{Kind: KindScatter, X: "quantity", Y: "amount"},
		{Kind: KindBar, X: "category", Y: "amount"},
	}
	for _, spec := range specs {
		var buf bytes.Buffer
		require.NoError(t, RenderPNG(&buf, v, spec), "kind %s", spec.Kind)
		// PNG magic bytes
		require.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")), "kind %s", spec.Kind)
	}
}

func TestRenderPNGEmptyView(t *testing.T) {
	ds, err := dataset.DecodeCSV(strings.NewReader(ordersCSV), dataset.Options{})
	require.NoError(t, err)
	v, err := dataset.Apply(ds, dataset.FilterState{
		"category": {Values: map[string]struct{}{"none": {}}},
	})
	require.NoError(t, err)
	require.Zero(t, v.NumRows())

	var buf bytes.Buffer
	err = RenderPNG(&buf, v, Spec{Kind: KindBar, X: "category", Y: "amount"})
	require.Equal(t, apperr.Validation, apperr.CodeOf(err))
}
