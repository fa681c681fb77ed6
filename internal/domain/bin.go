package domain

import (
	"fmt"
	"math"
)

// binPrecision collapses floating-point representation noise (e.g.
// 36.999999999997 vs 37.0) so equal logical bins compare as equal keys.
const binPrecision = 6

// ValidateBinSize rejects resolutions the lattice math cannot support.
func ValidateBinSize(binSize float64) error {
	if math.IsNaN(binSize) || math.IsInf(binSize, 0) || binSize <= 0 {
		return fmt.Errorf("bin size must be a positive finite number, got %v", binSize)
	}
	return nil
}

// SnapToGrid maps a coordinate pair onto the lattice cell containing it.
// Floor division (not truncation) keeps bins contiguous across the sign
// boundary: with binSize=1, both -0.5 and -0.99 land in bin -1, not 0.
func SnapToGrid(lat, lon, binSize float64) GridCell {
	return GridCell{
		LatBin: snap(lat, binSize),
		LonBin: snap(lon, binSize),
	}
}

func snap(v, binSize float64) float64 {
	return roundTo(math.Floor(v/binSize)*binSize, binPrecision)
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
