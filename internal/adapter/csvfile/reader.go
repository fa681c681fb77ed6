// Package csvfile adapts the pipeline's sources and sinks to delimited
// files on disk.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/zip-grid-etl/internal/domain"
)

// CoordinateReader loads the headerless ZIP-to-coordinate table.
// It implements pipeline.CoordinateSource.
type CoordinateReader struct {
	path   string
	logger *slog.Logger
}

// NewCoordinateReader creates a reader for a map.csv-style file: three
// positional columns ZIP, lat, lon with no header row.
func NewCoordinateReader(path string, logger *slog.Logger) *CoordinateReader {
	return &CoordinateReader{path: path, logger: logger}
}

// ReadCoordinates reads the whole table into memory. ZIPs are kept as
// strings so leading zeros survive. Rows where lat or lon fails to parse,
// or that don't have exactly three fields, are dropped and counted.
func (r *CoordinateReader) ReadCoordinates(ctx context.Context) ([]domain.CoordinateRecord, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	f, err := os.Open(r.path)
	if err != nil {
		return nil, 0, fmt.Errorf("open coordinate table: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1 // malformed rows are dropped, not fatal

	var records []domain.CoordinateRecord
	dropped := 0
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("read coordinate table: %w", err)
		}

		rec, ok := parseCoordinateRow(row)
		if !ok {
			dropped++
			r.logger.Debug("dropping malformed coordinate row", "row", strings.Join(row, ","))
			continue
		}
		records = append(records, rec)
	}

	return records, dropped, nil
}

func parseCoordinateRow(row []string) (domain.CoordinateRecord, bool) {
	if len(row) != 3 {
		return domain.CoordinateRecord{}, false
	}
	lat, errLat := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
	lon, errLon := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
	if errLat != nil || errLon != nil {
		return domain.CoordinateRecord{}, false
	}
	return domain.CoordinateRecord{
		ZIP: strings.TrimSpace(row[0]),
		Lat: lat,
		Lon: lon,
	}, true
}

// YearlyReader loads the header-driven yearly-averages table.
// It implements pipeline.YearlySource.
type YearlyReader struct {
	path   string
	logger *slog.Logger
}

// NewYearlyReader creates a reader for a year_averages.csv-style file:
// a header row with RegionName plus zero or more digit-only year columns.
func NewYearlyReader(path string, logger *slog.Logger) *YearlyReader {
	return &YearlyReader{path: path, logger: logger}
}

// ReadYearly parses the header once to infer the year-column schema, then
// reads every row. RegionName is required; StateName and State are carried
// if present. A year cell that is empty or non-numeric is missing (NaN).
func (r *YearlyReader) ReadYearly(ctx context.Context) (domain.YearlyTable, error) {
	if err := ctx.Err(); err != nil {
		return domain.YearlyTable{}, err
	}

	f, err := os.Open(r.path)
	if err != nil {
		return domain.YearlyTable{}, fmt.Errorf("open yearly table: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)

	header, err := cr.Read()
	if err != nil {
		return domain.YearlyTable{}, fmt.Errorf("read yearly table header: %w", err)
	}

	cols, err := mapColumns(header)
	if err != nil {
		return domain.YearlyTable{}, err
	}

	table := domain.YearlyTable{Years: cols.years}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.YearlyTable{}, fmt.Errorf("read yearly table: %w", err)
		}
		table.Records = append(table.Records, cols.parseRow(row))
	}

	return table, nil
}

// columnMap resolves header names to field indices so each row is parsed
// against the schema inferred once from the header.
type columnMap struct {
	regionName int
	stateName  int // -1 when absent
	state      int // -1 when absent
	years      []string
	yearIdx    []int
}

func mapColumns(header []string) (columnMap, error) {
	cols := columnMap{regionName: -1, stateName: -1, state: -1}
	for i, name := range header {
		name = strings.TrimSpace(name)
		switch {
		case name == "RegionName":
			cols.regionName = i
		case name == "StateName":
			cols.stateName = i
		case name == "State":
			cols.state = i
		case domain.IsYearColumn(name):
			cols.years = append(cols.years, name)
			cols.yearIdx = append(cols.yearIdx, i)
		}
	}
	if cols.regionName < 0 {
		return columnMap{}, errors.New("yearly table header is missing the RegionName column")
	}
	return cols, nil
}

func (c columnMap) parseRow(row []string) domain.YearlyRecord {
	rec := domain.YearlyRecord{
		RegionName: strings.TrimSpace(field(row, c.regionName)),
		StateName:  field(row, c.stateName),
		State:      field(row, c.state),
		Values:     make([]float64, len(c.yearIdx)),
	}
	for i, idx := range c.yearIdx {
		v, err := strconv.ParseFloat(strings.TrimSpace(field(row, idx)), 64)
		if err != nil {
			v = math.NaN()
		}
		rec.Values[i] = v
	}
	return rec
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
