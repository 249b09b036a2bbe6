package dataset

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyMixedFallsBackToCategorical(t *testing.T) {
	body := "code\n12\nabc\n34\n"
	ds, err := DecodeCSV(strings.NewReader(body), Options{})
	require.NoError(t, err)
	require.Equal(t, TypeCategorical, ds.Columns[0].Type)
}

func TestClassifyDateByNameHint(t *testing.T) {
	// Name contains "date" and most cells parse; one stray value does not
	// flip the tag.
	body := "ship_date\n2024-01-01\n2024-01-02\nunknown\n2024-01-04\n"
	ds, err := DecodeCSV(strings.NewReader(body), Options{})
	require.NoError(t, err)
	require.Equal(t, TypeDate, ds.Columns[0].Type)
	require.Equal(t, "2024-01-01", ds.Columns[0].MinDate.Format("2006-01-02"))
	require.Equal(t, "2024-01-04", ds.Columns[0].MaxDate.Format("2006-01-02"))
}

func TestClassifyDateWithoutNameHint(t *testing.T) {
	body := "shipped\n2024-01-01\n2024-01-02\n"
	ds, err := DecodeCSV(strings.NewReader(body), Options{})
	require.NoError(t, err)
	require.Equal(t, TypeDate, ds.Columns[0].Type)
}

func TestClassifyNumericWithFormatting(t *testing.T) {
	body := "revenue\n\"$1,200.50\"\n300\n-42\n"
	ds, err := DecodeCSV(strings.NewReader(body), Options{})
	require.NoError(t, err)
	require.Equal(t, TypeNumeric, ds.Columns[0].Type)
}

func TestClassifyFilterableCap(t *testing.T) {
	var b strings.Builder
	b.WriteString("city\n")
	for i := 0; i < 6; i++ {
		fmt.Fprintf(&b, "city-%d\n", i)
	}
	ds, err := DecodeCSV(strings.NewReader(b.String()), Options{MaxFilterOptions: 5})
	require.NoError(t, err)

	col := ds.Columns[0]
	require.Equal(t, TypeCategorical, col.Type)
	require.Equal(t, 6, col.Distinct)
	require.False(t, col.Filterable)
	require.Empty(t, col.Options)
}

func TestClassifyOptionsSorted(t *testing.T) {
	body := "region\nwest\neast\nwest\nnorth\n"
	ds, err := DecodeCSV(strings.NewReader(body), Options{})
	require.NoError(t, err)

	col := ds.Columns[0]
	require.True(t, col.Filterable)
	require.Equal(t, []string{"east", "north", "west"}, col.Options)
	require.Equal(t, 3, col.Distinct)
}

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"100.5", 100.5, true},
		{"$1,200", 1200, true},
		{"50%", 0.5, true},
		{"-3", -3, true},
		{"abc", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseNumber(tc.in)
		require.Equal(t, tc.ok, ok, tc.in)
		if ok {
			require.InDelta(t, tc.want, got, 1e-9, tc.in)
		}
	}
}

func TestParseDateLayouts(t *testing.T) {
	for _, in := range []string{"2024-03-15", "2024/03/15", "03/15/2024", "3/15/2024", "2024-03-15 10:30:00"} {
		ts, ok := ParseDate(in)
		require.True(t, ok, in)
		require.Equal(t, 15, ts.Day(), in)
	}
	_, ok := ParseDate("15th of March")
	require.False(t, ok)
}
