// Package domain models the ZIP-level yearly-average data and its spatial
// aggregation onto a regular latitude/longitude grid.
//
// # Data Sources
//
// Two tables feed the pipeline:
//
//	map.csv            headerless: ZIP, lat, lon. ZIPs are identifiers, not
//	                   numbers; they keep leading zeros ("00501"). Rows with
//	                   unparsable coordinates are dropped.
//	year_averages.csv  header-driven: RegionName (ZIP-valued), StateName,
//	                   State, plus year columns. A year column is any column
//	                   whose header consists solely of digits ("2000" ...
//	                   "2025"); the schema is inferred from the header, not
//	                   fixed.
//
// # Grid Binning
//
// A grid cell is identified by the low corner of the lattice square that
// contains a coordinate:
//
//	lat_bin = round6(floor(lat / binSize) * binSize)
//	lon_bin = round6(floor(lon / binSize) * binSize)
//
// Floor division keeps cells contiguous and consistently sized across the
// equator and prime meridian: at binSize=1, -0.5 and -0.99 both map to -1.
// Rounding to six decimals exists only to collapse float representation
// noise so that equal logical cells hash to the same map key.
//
// # Aggregation
//
// Yearly rows are inner-joined to coordinates on RegionName == ZIP, snapped
// to cells, and averaged per year column within each cell. Missing values
// are NaN throughout and are skipped by the mean: a group of [10, NaN, 20]
// averages to 15, and an all-NaN column yields NaN, never an error.
package domain
