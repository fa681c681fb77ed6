package domain

// CoordinateRecord is one row of the ZIP-to-coordinate lookup table.
// ZIP stays a string so identifiers like "00501" keep their leading zeros.
type CoordinateRecord struct {
	ZIP string
	Lat float64
	Lon float64
}

// YearlyRecord is one row of the yearly-averages table. Values is indexed
// by the owning table's Years slice; a missing or unparsable cell is NaN.
type YearlyRecord struct {
	RegionName string // ZIP-valued join key
	StateName  string
	State      string
	Values     []float64
}

// YearlyTable pairs the yearly rows with their inferred schema: the ordered
// list of year-column names (headers consisting solely of digits).
type YearlyTable struct {
	Years   []string
	Records []YearlyRecord
}

// JoinedRecord is a yearly row placed in space. The join-key columns are
// gone; only the coordinates and the year values survive the merge.
type JoinedRecord struct {
	Lat    float64
	Lon    float64
	Values []float64
}

// GridCell identifies one cell of the regular lat/lon lattice. The fields
// are the cell's low corner, snapped and rounded so that equal logical
// cells compare equal as map keys.
type GridCell struct {
	LatBin float64 `json:"lat_bin"`
	LonBin float64 `json:"lon_bin"`
}

// AggregatedRecord is one occupied grid cell with the per-year means of
// every joined record that fell into it. Means is indexed like Values on
// YearlyRecord; a year with no observed values in the cell is NaN.
type AggregatedRecord struct {
	Cell  GridCell
	Means []float64
	Count int // joined records that fell into this cell
}

// AggregatedTable is the output of one binning pass, sorted ascending by
// (lat_bin, lon_bin).
type AggregatedTable struct {
	BinSize float64
	Years   []string
	Records []AggregatedRecord
}
