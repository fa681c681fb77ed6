package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/couchcryptid/zip-grid-etl/internal/domain"
)

// Writer serializes aggregated tables to CSV files in a directory, one file
// per resolution. It implements pipeline.CellSink.
type Writer struct {
	dir    string
	logger *slog.Logger
}

// NewWriter creates a CSV cell sink writing into dir.
func NewWriter(dir string, logger *slog.Logger) *Writer {
	return &Writer{dir: dir, logger: logger}
}

// WriteCells writes one row per occupied grid cell, header
// "lat_bin,lon_bin,<year columns>". Missing means render as empty cells.
// The filename is derived from the bin size; see OutputFileName.
func (w *Writer) WriteCells(ctx context.Context, table domain.AggregatedTable) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := filepath.Join(w.dir, OutputFileName(table.BinSize))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)

	header := append([]string{"lat_bin", "lon_bin"}, table.Years...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write output header: %w", err)
	}

	row := make([]string, len(header))
	for _, rec := range table.Records {
		row[0] = formatValue(rec.Cell.LatBin)
		row[1] = formatValue(rec.Cell.LonBin)
		for i, mean := range rec.Means {
			row[2+i] = formatValue(mean)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write output row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush output file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output file: %w", err)
	}

	w.logger.Info("wrote binned output",
		"path", path,
		"rows", len(table.Records),
		"bin_size", table.BinSize,
	)
	return nil
}

// OutputFileName derives the output filename from the bin size, replacing
// the decimal point with an underscore: 0.125 → binned_year_averages_0_125deg.csv,
// 1.0 → binned_year_averages_1_0deg.csv.
func OutputFileName(binSize float64) string {
	s := strconv.FormatFloat(binSize, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return fmt.Sprintf("binned_year_averages_%sdeg.csv", strings.ReplaceAll(s, ".", "_"))
}

// formatValue renders a float with Go's shortest round-trip representation.
// NaN marks a missing mean and renders as an empty cell.
func formatValue(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
