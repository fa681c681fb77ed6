// Command genfixtures generates synthetic map.csv / year_averages.csv input
// pairs for local runs and tests. Coordinates fall in a continental-US
// bounding box, ZIPs keep their leading zeros, and a configurable fraction
// of year cells is left empty to exercise the skip-missing mean.
//
// Usage:
//
//	go run ./cmd/genfixtures \
//	  -zips 5000 -start-year 2000 -end-year 2025 \
//	  -missing-rate 0.05 -malformed-rows 10 \
//	  -map-out map.csv -year-out year_averages.csv
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
)

// Continental US bounding box, generous at the edges.
const (
	minLat = 24.5
	maxLat = 49.0
	minLon = -124.8
	maxLon = -66.9
)

var states = []struct {
	name string
	abbr string
}{
	{"New York", "NY"},
	{"Texas", "TX"},
	{"California", "CA"},
	{"Illinois", "IL"},
	{"Florida", "FL"},
	{"Oklahoma", "OK"},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	zips := flag.Int("zips", 1000, "number of ZIP codes to generate")
	startYear := flag.Int("start-year", 2000, "first year column")
	endYear := flag.Int("end-year", 2025, "last year column")
	missingRate := flag.Float64("missing-rate", 0.05, "fraction of year cells left empty")
	malformedRows := flag.Int("malformed-rows", 0, "extra map.csv rows with unparsable coordinates")
	mapOut := flag.String("map-out", "map.csv", "output path for the coordinate table")
	yearOut := flag.String("year-out", "year_averages.csv", "output path for the yearly-averages table")
	seed := flag.Int64("seed", 1, "PRNG seed for reproducible fixtures")
	flag.Parse()

	if *zips <= 0 || *endYear < *startYear {
		flag.Usage()
		return fmt.Errorf("need -zips > 0 and -end-year >= -start-year")
	}
	if *missingRate < 0 || *missingRate >= 1 {
		return fmt.Errorf("-missing-rate must be in [0, 1)")
	}

	rng := rand.New(rand.NewSource(*seed))

	zipCodes := generateZIPs(rng, *zips)

	if err := writeMapCSV(*mapOut, rng, zipCodes, *malformedRows); err != nil {
		return err
	}
	if err := writeYearCSV(*yearOut, rng, zipCodes, *startYear, *endYear, *missingRate); err != nil {
		return err
	}

	log.Printf("wrote %s (%d rows, %d malformed) and %s (%d rows, years %d-%d)",
		*mapOut, len(zipCodes)+*malformedRows, *malformedRows,
		*yearOut, len(zipCodes), *startYear, *endYear)
	return nil
}

// generateZIPs produces n distinct 5-digit ZIP strings, leading zeros kept.
func generateZIPs(rng *rand.Rand, n int) []string {
	seen := make(map[string]bool, n)
	zips := make([]string, 0, n)
	for len(zips) < n {
		z := fmt.Sprintf("%05d", rng.Intn(100000))
		if seen[z] {
			continue
		}
		seen[z] = true
		zips = append(zips, z)
	}
	return zips
}

func writeMapCSV(path string, rng *rand.Rand, zips []string, malformed int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	for _, z := range zips {
		lat := minLat + rng.Float64()*(maxLat-minLat)
		lon := minLon + rng.Float64()*(maxLon-minLon)
		if err := w.Write([]string{
			z,
			strconv.FormatFloat(lat, 'f', 6, 64),
			strconv.FormatFloat(lon, 'f', 6, 64),
		}); err != nil {
			return err
		}
	}
	for i := 0; i < malformed; i++ {
		if err := w.Write([]string{fmt.Sprintf("%05d", rng.Intn(100000)), "not-a-lat", "not-a-lon"}); err != nil {
			return err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func writeYearCSV(path string, rng *rand.Rand, zips []string, startYear, endYear int, missingRate float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := []string{"RegionName", "StateName", "State"}
	for y := startYear; y <= endYear; y++ {
		header = append(header, strconv.Itoa(y))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for _, z := range zips {
		st := states[rng.Intn(len(states))]
		row[0], row[1], row[2] = z, st.name, st.abbr

		// Per-ZIP baseline with small year-over-year drift, so binned means
		// look like real regional averages rather than white noise.
		base := 50 + rng.Float64()*150
		for i := 0; i <= endYear-startYear; i++ {
			if rng.Float64() < missingRate {
				row[3+i] = ""
				continue
			}
			v := base + float64(i)*0.8 + rng.NormFloat64()*5
			row[3+i] = strconv.FormatFloat(v, 'f', 2, 64)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
