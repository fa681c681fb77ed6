package domain

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// BinAndAggregate snaps every joined record onto the lattice at the given
// resolution, groups by cell, and averages each year column within the
// group. Missing values (NaN) are excluded from the mean rather than
// treated as zero; a cell where every member is missing a year yields NaN
// for that year. Records come back sorted ascending by (lat_bin, lon_bin).
func BinAndAggregate(years []string, joined []JoinedRecord, binSize float64) (AggregatedTable, error) {
	if err := ValidateBinSize(binSize); err != nil {
		return AggregatedTable{}, err
	}

	groups := make(map[GridCell][]JoinedRecord)
	for _, rec := range joined {
		cell := SnapToGrid(rec.Lat, rec.Lon, binSize)
		groups[cell] = append(groups[cell], rec)
	}

	records := make([]AggregatedRecord, 0, len(groups))
	for cell, members := range groups {
		records = append(records, AggregatedRecord{
			Cell:  cell,
			Means: meanByYear(len(years), members),
			Count: len(members),
		})
	}

	sort.Slice(records, func(i, j int) bool {
		a, b := records[i].Cell, records[j].Cell
		if a.LatBin != b.LatBin {
			return a.LatBin < b.LatBin
		}
		return a.LonBin < b.LonBin
	})

	return AggregatedTable{BinSize: binSize, Years: years, Records: records}, nil
}

// meanByYear computes the skip-missing mean of each year column across the
// group members.
func meanByYear(yearCount int, members []JoinedRecord) []float64 {
	means := make([]float64, yearCount)
	observed := make([]float64, 0, len(members))

	for i := 0; i < yearCount; i++ {
		observed = observed[:0]
		for _, m := range members {
			if i < len(m.Values) && !math.IsNaN(m.Values[i]) {
				observed = append(observed, m.Values[i])
			}
		}
		if len(observed) == 0 {
			means[i] = math.NaN()
			continue
		}
		means[i] = stat.Mean(observed, nil)
	}
	return means
}
