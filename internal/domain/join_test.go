package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func yearlyRow(zip string, values ...float64) YearlyRecord {
	return YearlyRecord{RegionName: zip, StateName: "New York", State: "NY", Values: values}
}

func TestJoin(t *testing.T) {
	coords := []CoordinateRecord{
		{ZIP: "00501", Lat: 40.81, Lon: -73.04},
		{ZIP: "10001", Lat: 40.75, Lon: -73.99},
	}
	yearly := YearlyTable{
		Years: []string{"2020", "2021"},
		Records: []YearlyRecord{
			yearlyRow("00501", 100, 110),
			yearlyRow("10001", 200, 210),
			yearlyRow("99999", 300, 310), // no coordinates for this ZIP
		},
	}

	joined, unmatched := Join(yearly, coords)

	require.Len(t, joined, 2)
	assert.Equal(t, 1, unmatched)

	// Yearly-table order is preserved.
	assert.Equal(t, 40.81, joined[0].Lat)
	assert.Equal(t, []float64{100, 110}, joined[0].Values)
	assert.Equal(t, -73.99, joined[1].Lon)
}

func TestJoin_LeadingZeroZIPsMatch(t *testing.T) {
	coords := []CoordinateRecord{{ZIP: "00501", Lat: 40.0, Lon: -73.0}}
	yearly := YearlyTable{
		Years:   []string{"2020"},
		Records: []YearlyRecord{yearlyRow("00501", 1)},
	}

	joined, unmatched := Join(yearly, coords)
	assert.Len(t, joined, 1)
	assert.Zero(t, unmatched)
}

func TestJoin_DuplicateCoordinateZIPsMultiplyRows(t *testing.T) {
	// True inner-join semantics: a yearly row joins against every
	// coordinate row sharing its ZIP.
	coords := []CoordinateRecord{
		{ZIP: "10001", Lat: 40.75, Lon: -73.99},
		{ZIP: "10001", Lat: 40.76, Lon: -74.00},
	}
	yearly := YearlyTable{
		Years:   []string{"2020"},
		Records: []YearlyRecord{yearlyRow("10001", 5)},
	}

	joined, unmatched := Join(yearly, coords)
	assert.Len(t, joined, 2)
	assert.Zero(t, unmatched)
}

func TestJoin_EmptyInputs(t *testing.T) {
	joined, unmatched := Join(YearlyTable{}, nil)
	assert.Empty(t, joined)
	assert.Zero(t, unmatched)

	joined, unmatched = Join(YearlyTable{Records: []YearlyRecord{yearlyRow("10001", 1)}}, nil)
	assert.Empty(t, joined)
	assert.Equal(t, 1, unmatched)
}
