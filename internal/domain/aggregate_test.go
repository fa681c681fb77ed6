package domain

import (
	"math"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinAndAggregate(t *testing.T) {
	years := []string{"2020", "2021"}
	joined := []JoinedRecord{
		{Lat: 40.1, Lon: -73.9, Values: []float64{10, 1}},
		{Lat: 40.9, Lon: -73.1, Values: []float64{20, 3}},  // same 1-degree cell
		{Lat: 41.5, Lon: -73.5, Values: []float64{100, 5}}, // different cell
	}

	table, err := BinAndAggregate(years, joined, 1.0)
	require.NoError(t, err)

	want := AggregatedTable{
		BinSize: 1.0,
		Years:   years,
		Records: []AggregatedRecord{
			{Cell: GridCell{LatBin: 40.0, LonBin: -74.0}, Means: []float64{15, 2}, Count: 2},
			{Cell: GridCell{LatBin: 41.0, LonBin: -74.0}, Means: []float64{100, 5}, Count: 1},
		},
	}
	if diff := cmp.Diff(want, table, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("aggregated table mismatch (-want +got):\n%s", diff)
	}
}

func TestBinAndAggregate_SkipsMissingValues(t *testing.T) {
	years := []string{"2020"}
	joined := []JoinedRecord{
		{Lat: 40.1, Lon: -73.9, Values: []float64{10}},
		{Lat: 40.2, Lon: -73.8, Values: []float64{math.NaN()}},
		{Lat: 40.3, Lon: -73.7, Values: []float64{20}},
	}

	table, err := BinAndAggregate(years, joined, 1.0)
	require.NoError(t, err)
	require.Len(t, table.Records, 1)

	// [10, missing, 20] averages to 15, not 10: missing is excluded, not zero.
	assert.Equal(t, 15.0, table.Records[0].Means[0])
	assert.Equal(t, 3, table.Records[0].Count)
}

func TestBinAndAggregate_AllMissingYieldsMissing(t *testing.T) {
	years := []string{"2020", "2021"}
	joined := []JoinedRecord{
		{Lat: 40.1, Lon: -73.9, Values: []float64{math.NaN(), 7}},
		{Lat: 40.2, Lon: -73.8, Values: []float64{math.NaN(), 9}},
	}

	table, err := BinAndAggregate(years, joined, 1.0)
	require.NoError(t, err)
	require.Len(t, table.Records, 1)

	assert.True(t, math.IsNaN(table.Records[0].Means[0]))
	assert.Equal(t, 8.0, table.Records[0].Means[1])
}

func TestBinAndAggregate_SortedByCell(t *testing.T) {
	years := []string{"2020"}
	joined := []JoinedRecord{
		{Lat: 45.5, Lon: -100.5, Values: []float64{1}},
		{Lat: 30.5, Lon: -80.5, Values: []float64{2}},
		{Lat: 30.5, Lon: -90.5, Values: []float64{3}},
	}

	table, err := BinAndAggregate(years, joined, 1.0)
	require.NoError(t, err)
	require.Len(t, table.Records, 3)

	sorted := sort.SliceIsSorted(table.Records, func(i, j int) bool {
		a, b := table.Records[i].Cell, table.Records[j].Cell
		if a.LatBin != b.LatBin {
			return a.LatBin < b.LatBin
		}
		return a.LonBin < b.LonBin
	})
	assert.True(t, sorted, "records must be sorted by (lat_bin, lon_bin)")
}

func TestBinAndAggregate_GroupSizesSumToInput(t *testing.T) {
	years := []string{"2020"}
	joined := []JoinedRecord{
		{Lat: 40.1, Lon: -73.9, Values: []float64{1}},
		{Lat: 40.2, Lon: -73.8, Values: []float64{2}},
		{Lat: 41.1, Lon: -73.9, Values: []float64{3}},
		{Lat: 41.2, Lon: -72.9, Values: []float64{4}},
		{Lat: 41.2, Lon: -72.8, Values: []float64{5}},
	}

	table, err := BinAndAggregate(years, joined, 0.5)
	require.NoError(t, err)

	total := 0
	for _, rec := range table.Records {
		total += rec.Count
	}
	assert.Equal(t, len(joined), total)
}

func TestBinAndAggregate_RejectsDegenerateBinSize(t *testing.T) {
	_, err := BinAndAggregate([]string{"2020"}, nil, 0)
	require.Error(t, err)

	_, err = BinAndAggregate([]string{"2020"}, nil, -0.5)
	require.Error(t, err)
}
