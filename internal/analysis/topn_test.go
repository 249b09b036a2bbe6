package analysis

import (
	"strings"
	"testing"

	"github.com/skalyan/tabdash/internal/dataset"
	"github.com/stretchr/testify/require"
)

func TestTopNOrdersDescendingAndTruncates(t *testing.T) {
	body := "region,sales\n" +
		"west,10\n" +
		"east,50\n" +
		"north,30\n" +
		"west,15\n"
	ds, err := dataset.DecodeCSV(strings.NewReader(body), dataset.Options{})
	require.NoError(t, err)
	v := filteredView(t, ds, dataset.FilterState{})

	top, err := TopN(v, "region", "sales", 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	require.Equal(t, "east", top[0].Group)
	require.InDelta(t, 50, top[0].Value, 1e-9)
	require.Equal(t, "north", top[1].Group)
}

func TestTopNLengthIsMinOfNAndGroups(t *testing.T) {
	ds := loadOrders(t)
	v := filteredView(t, ds, dataset.FilterState{})

	top, err := TopN(v, "category", "amount", 5)
	require.NoError(t, err)
	require.Len(t, top, 3) // only 3 distinct groups
}

func TestTopNTiesKeepFirstEncounteredOrder(t *testing.T) {
	body := "team,points\n" +
		"beta,10\n" +
		"alpha,10\n" +
		"gamma,10\n"
	ds, err := dataset.DecodeCSV(strings.NewReader(body), dataset.Options{})
	require.NoError(t, err)
	v := filteredView(t, ds, dataset.FilterState{})

	top, err := TopN(v, "team", "points", 3)
	require.NoError(t, err)
	require.Equal(t, []string{"beta", "alpha", "gamma"}, []string{top[0].Group, top[1].Group, top[2].Group})
}

func TestTopNEmptyGroupBucket(t *testing.T) {
	body := "cat,amt\n,5\nA,3\n"
	ds, err := dataset.DecodeCSV(strings.NewReader(body), dataset.Options{})
	require.NoError(t, err)
	v := filteredView(t, ds, dataset.FilterState{})

	top, err := TopN(v, "cat", "amt", 5)
	require.NoError(t, err)
	require.Equal(t, "(empty)", top[0].Group)
}

func TestTopNReportsGroupsWithNoNumericCells(t *testing.T) {
	body := "cat,amt\nA,\nB,1\n"
	ds, err := dataset.DecodeCSV(strings.NewReader(body), dataset.Options{})
	require.NoError(t, err)
	v := filteredView(t, ds, dataset.FilterState{})

	// A's only metric cell is blank; the group still ranks, with sum 0.
	top, err := TopN(v, "cat", "amt", 5)
	require.NoError(t, err)
	require.Len(t, top, 2)
	require.Equal(t, "B", top[0].Group)
	require.Equal(t, "A", top[1].Group)
	require.Zero(t, top[1].Value)
}

func TestTopNValidation(t *testing.T) {
	ds := loadOrders(t)
	v := filteredView(t, ds, dataset.FilterState{})

	_, err := TopN(v, "category", "amount", 0)
	require.Error(t, err)

	_, err = TopN(v, "amount", "amount", 5)
	require.Error(t, err)

	_, err = TopN(v, "category", "category", 5)
	require.Error(t, err)

	_, err = TopN(v, "nope", "amount", 5)
	require.Error(t, err)
}

func TestTopNEmptyView(t *testing.T) {
	ds := loadOrders(t)
	v := filteredView(t, ds, dataset.FilterState{"category": {Values: map[string]struct{}{"zz": {}}}})

	top, err := TopN(v, "category", "amount", 5)
	require.NoError(t, err)
	require.Empty(t, top)
}
