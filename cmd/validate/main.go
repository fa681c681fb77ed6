// Command validate performs end-to-end integrity checks on a binned output
// file: it re-derives the join and aggregation from the two input tables
// and verifies that the output's cells, row counts, and means are exactly
// what the pipeline should have produced.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -map map.csv \
//	  -year-averages year_averages.csv \
//	  -output binned_year_averages_0_125deg.csv \
//	  -bin-size 0.125
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/couchcryptid/zip-grid-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/zip-grid-etl/internal/domain"
)

const meanTolerance = 1e-9

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	mapPath := flag.String("map", "", "path to the ZIP-to-coordinate table")
	yearPath := flag.String("year-averages", "", "path to the yearly-averages table")
	outputPath := flag.String("output", "", "path to the binned output file to validate")
	binSize := flag.Float64("bin-size", 0, "bin size in degrees the output was produced with")
	flag.Parse()

	if *mapPath == "" || *yearPath == "" || *outputPath == "" {
		flag.Usage()
		os.Exit(1)
	}
	if err := domain.ValidateBinSize(*binSize); err != nil {
		fmt.Fprintf(os.Stderr, "invalid -bin-size: %v\n", err)
		os.Exit(1)
	}

	if code := run(*mapPath, *yearPath, *outputPath, *binSize); code != 0 {
		os.Exit(code)
	}
}

func run(mapPath, yearPath, outputPath string, binSize float64) int {
	ctx := context.Background()
	logger := slog.New(slog.DiscardHandler)

	coords, dropped, err := csvfile.NewCoordinateReader(mapPath, logger).ReadCoordinates(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load coordinates: %v\n", err)
		return 1
	}
	yearly, err := csvfile.NewYearlyReader(yearPath, logger).ReadYearly(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load yearly averages: %v\n", err)
		return 1
	}

	joined, unmatched := domain.Join(yearly, coords)
	want, err := domain.BinAndAggregate(yearly.Years, joined, binSize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "aggregate: %v\n", err)
		return 1
	}

	fmt.Printf("inputs: %d coordinate rows (%d dropped), %d yearly rows (%d unmatched), %d joined\n",
		len(coords), dropped, len(yearly.Records), unmatched, len(joined))

	header, rows, err := readOutput(outputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read output: %v\n", err)
		return 1
	}

	phases := []*phase{
		checkFilename(outputPath, binSize),
		checkHeader(header, yearly.Years),
		checkCells(rows, want, binSize),
		checkCounts(rows, want, joined),
	}

	failed := 0
	for _, p := range phases {
		if p.passed() {
			fmt.Printf("PASS %s\n", p.name)
			continue
		}
		failed++
		fmt.Printf("FAIL %s\n", p.name)
		for _, e := range p.errors {
			fmt.Printf("  - %s\n", e)
		}
	}

	if failed > 0 {
		fmt.Printf("%d of %d phases failed\n", failed, len(phases))
		return 1
	}
	fmt.Printf("all %d phases passed\n", len(phases))
	return 0
}

func readOutput(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	all, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("%s is empty", path)
	}
	return all[0], all[1:], nil
}

func checkFilename(outputPath string, binSize float64) *phase {
	p := &phase{name: "filename derivation"}
	want := csvfile.OutputFileName(binSize)
	if got := filepath.Base(outputPath); got != want {
		p.errorf("filename %q does not match bin size %v (want %q)", got, binSize, want)
	}
	return p
}

func checkHeader(header []string, years []string) *phase {
	p := &phase{name: "header schema"}
	want := append([]string{"lat_bin", "lon_bin"}, years...)
	if len(header) != len(want) {
		p.errorf("header has %d columns, want %d", len(header), len(want))
		return p
	}
	for i := range want {
		if header[i] != want[i] {
			p.errorf("header column %d is %q, want %q", i, header[i], want[i])
		}
	}
	return p
}

// checkCells verifies every output row names a cell the recomputed
// aggregation also produced, that its coordinates are properly snapped, and
// that every year mean matches within tolerance.
func checkCells(rows [][]string, want domain.AggregatedTable, binSize float64) *phase {
	p := &phase{name: "cell membership and means"}

	wantByCell := make(map[domain.GridCell]domain.AggregatedRecord, len(want.Records))
	for _, rec := range want.Records {
		wantByCell[rec.Cell] = rec
	}

	for i, row := range rows {
		cell, means, err := parseOutputRow(row, len(want.Years))
		if err != nil {
			p.errorf("row %d: %v", i+1, err)
			continue
		}

		if snapped := domain.SnapToGrid(cell.LatBin, cell.LonBin, binSize); snapped != cell {
			p.errorf("row %d: cell (%v, %v) is not on the %v-degree lattice", i+1, cell.LatBin, cell.LonBin, binSize)
			continue
		}

		wantRec, ok := wantByCell[cell]
		if !ok {
			p.errorf("row %d: cell (%v, %v) has no joined input records", i+1, cell.LatBin, cell.LonBin)
			continue
		}

		for j, got := range means {
			exp := wantRec.Means[j]
			switch {
			case math.IsNaN(exp) != math.IsNaN(got):
				p.errorf("row %d year %s: missing/present mismatch", i+1, want.Years[j])
			case !math.IsNaN(exp) && math.Abs(exp-got) > meanTolerance:
				p.errorf("row %d year %s: mean %v, want %v", i+1, want.Years[j], got, exp)
			}
		}
	}
	return p
}

// checkCounts verifies the row-count invariants: one output row per
// recomputed cell, and group sizes summing to the joined record count.
func checkCounts(rows [][]string, want domain.AggregatedTable, joined []domain.JoinedRecord) *phase {
	p := &phase{name: "row counts"}

	if len(rows) != len(want.Records) {
		p.errorf("output has %d rows, want %d occupied cells", len(rows), len(want.Records))
	}

	total := 0
	for _, rec := range want.Records {
		total += rec.Count
	}
	if total != len(joined) {
		p.errorf("group sizes sum to %d, want %d joined records", total, len(joined))
	}
	return p
}

func parseOutputRow(row []string, yearCount int) (domain.GridCell, []float64, error) {
	if len(row) != 2+yearCount {
		return domain.GridCell{}, nil, fmt.Errorf("has %d fields, want %d", len(row), 2+yearCount)
	}
	latBin, err := strconv.ParseFloat(row[0], 64)
	if err != nil {
		return domain.GridCell{}, nil, fmt.Errorf("bad lat_bin %q", row[0])
	}
	lonBin, err := strconv.ParseFloat(row[1], 64)
	if err != nil {
		return domain.GridCell{}, nil, fmt.Errorf("bad lon_bin %q", row[1])
	}

	means := make([]float64, yearCount)
	for i := 0; i < yearCount; i++ {
		cell := row[2+i]
		if cell == "" {
			means[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return domain.GridCell{}, nil, fmt.Errorf("bad mean %q in year column %d", cell, i)
		}
		means[i] = v
	}
	return domain.GridCell{LatBin: latBin, LonBin: lonBin}, means, nil
}
