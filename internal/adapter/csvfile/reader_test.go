package csvfile

import (
	"context"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/zip-grid-etl/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCoordinateReader(t *testing.T) {
	path := writeFixture(t, "map.csv",
		"00501,40.81,-73.04\n"+
			"10001,40.75,-73.99\n"+
			"99950,55.54,-131.64\n")

	records, dropped, err := NewCoordinateReader(path, discardLogger()).ReadCoordinates(context.Background())
	require.NoError(t, err)

	assert.Zero(t, dropped)
	require.Len(t, records, 3)
	assert.Equal(t, domain.CoordinateRecord{ZIP: "00501", Lat: 40.81, Lon: -73.04}, records[0])
	assert.Equal(t, "99950", records[2].ZIP, "leading-zero-capable ZIPs stay strings")
}

func TestCoordinateReader_DropsMalformedRows(t *testing.T) {
	path := writeFixture(t, "map.csv",
		"00501,40.81,-73.04\n"+
			"10001,not-a-lat,-73.99\n"+ // unparsable lat
			"10002,40.71,east\n"+ // unparsable lon
			"10003,40.72\n"+ // short row
			"10004,40.73,-74.00\n")

	records, dropped, err := NewCoordinateReader(path, discardLogger()).ReadCoordinates(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, dropped)
	require.Len(t, records, 2)
	assert.Equal(t, "00501", records[0].ZIP)
	assert.Equal(t, "10004", records[1].ZIP)
}

func TestCoordinateReader_MissingFile(t *testing.T) {
	_, _, err := NewCoordinateReader(filepath.Join(t.TempDir(), "nope.csv"), discardLogger()).
		ReadCoordinates(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open coordinate table")
}

func TestYearlyReader(t *testing.T) {
	path := writeFixture(t, "year_averages.csv",
		"RegionName,StateName,State,2020,2021\n"+
			"00501,New York,NY,100.5,110.25\n"+
			"10001,New York,NY,200,\n")

	table, err := NewYearlyReader(path, discardLogger()).ReadYearly(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"2020", "2021"}, table.Years)
	require.Len(t, table.Records, 2)

	assert.Equal(t, "00501", table.Records[0].RegionName)
	assert.Equal(t, "New York", table.Records[0].StateName)
	assert.Equal(t, "NY", table.Records[0].State)
	assert.Equal(t, []float64{100.5, 110.25}, table.Records[0].Values)

	// Empty year cell is missing, not zero.
	assert.Equal(t, 200.0, table.Records[1].Values[0])
	assert.True(t, math.IsNaN(table.Records[1].Values[1]))
}

func TestYearlyReader_SchemaFromHeader(t *testing.T) {
	// Year columns are whatever digit-only headers exist, in header order.
	path := writeFixture(t, "year_averages.csv",
		"2019,RegionName,Notes,2021\n"+
			"55.0,00501,ignored,77.0\n")

	table, err := NewYearlyReader(path, discardLogger()).ReadYearly(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"2019", "2021"}, table.Years)
	require.Len(t, table.Records, 1)
	assert.Equal(t, []float64{55.0, 77.0}, table.Records[0].Values)
	assert.Empty(t, table.Records[0].StateName)
}

func TestYearlyReader_NonNumericYearValueIsMissing(t *testing.T) {
	path := writeFixture(t, "year_averages.csv",
		"RegionName,2020\n"+
			"00501,n/a\n")

	table, err := NewYearlyReader(path, discardLogger()).ReadYearly(context.Background())
	require.NoError(t, err)
	require.Len(t, table.Records, 1)
	assert.True(t, math.IsNaN(table.Records[0].Values[0]))
}

func TestYearlyReader_MissingRegionName(t *testing.T) {
	path := writeFixture(t, "year_averages.csv",
		"Zip,StateName,State,2020\n"+
			"00501,New York,NY,1\n")

	_, err := NewYearlyReader(path, discardLogger()).ReadYearly(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RegionName")
}

func TestYearlyReader_MissingFile(t *testing.T) {
	_, err := NewYearlyReader(filepath.Join(t.TempDir(), "nope.csv"), discardLogger()).
		ReadYearly(context.Background())
	require.Error(t, err)
}
