package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/zip-grid-etl/internal/domain"
	"github.com/couchcryptid/zip-grid-etl/internal/observability"
)

// CoordinateSource loads the ZIP-to-coordinate table. dropped counts rows
// excluded because lat or lon failed to parse.
type CoordinateSource interface {
	ReadCoordinates(ctx context.Context) (records []domain.CoordinateRecord, dropped int, err error)
}

// YearlySource loads the yearly-averages table together with its inferred
// year-column schema.
type YearlySource interface {
	ReadYearly(ctx context.Context) (domain.YearlyTable, error)
}

// CellSink writes one aggregated table at one resolution.
type CellSink interface {
	WriteCells(ctx context.Context, table domain.AggregatedTable) error
}

// Pipeline orchestrates the load-join-aggregate-write batch run.
type Pipeline struct {
	coords  CoordinateSource
	yearly  YearlySource
	sinks   []CellSink
	logger  *slog.Logger
	metrics *observability.Metrics
	clock   clockwork.Clock
	ready   atomic.Bool
}

// New creates a Pipeline with the given stages and observability. A nil
// clock falls back to the real clock.
func New(coords CoordinateSource, yearly YearlySource, sinks []CellSink, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock) *Pipeline {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Pipeline{
		coords:  coords,
		yearly:  yearly,
		sinks:   sinks,
		logger:  logger,
		metrics: metrics,
		clock:   clock,
	}
}

// CheckReadiness returns nil once at least one resolution has been written,
// or an error describing why the run is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not written any resolution yet")
	}
	return nil
}

// Run executes the batch transform once: load both tables, join them, then
// bin, aggregate, and write one output per requested resolution. The joined
// table is computed once and shared across resolutions. Any failure is
// fatal for the run; there are no retries and no partial-output recovery.
func (p *Pipeline) Run(ctx context.Context, binSizes []float64) error {
	if len(binSizes) == 0 {
		return errors.New("no bin sizes configured")
	}
	for _, b := range binSizes {
		if err := domain.ValidateBinSize(b); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
	}

	start := p.clock.Now()
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	joined, years, err := p.loadAndJoin(ctx)
	if err != nil {
		return err
	}

	for _, binSize := range binSizes {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("run cancelled: %w", err)
		}

		table, err := domain.BinAndAggregate(years, joined, binSize)
		if err != nil {
			return err
		}

		for _, sink := range p.sinks {
			if err := sink.WriteCells(ctx, table); err != nil {
				return fmt.Errorf("write cells at bin size %v: %w", binSize, err)
			}
		}

		p.metrics.CellsWritten.WithLabelValues(resolutionLabel(binSize)).Add(float64(len(table.Records)))
		p.logger.Info("resolution complete",
			"bin_size", binSize,
			"cells", len(table.Records),
		)
		p.ready.Store(true)
	}

	p.metrics.RunDuration.Observe(p.clock.Since(start).Seconds())
	p.logger.Info("run complete",
		"resolutions", len(binSizes),
		"duration", p.clock.Since(start),
	)
	return nil
}

// loadAndJoin reads both input tables and inner-joins them. Dropped and
// unmatched row counts are surfaced in logs and metrics without changing
// the silent-drop output semantics.
func (p *Pipeline) loadAndJoin(ctx context.Context) ([]domain.JoinedRecord, []string, error) {
	coords, dropped, err := p.coords.ReadCoordinates(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load coordinates: %w", err)
	}
	p.metrics.CoordinateRowsLoaded.Add(float64(len(coords)))
	p.metrics.CoordinateRowsDropped.Add(float64(dropped))
	if dropped > 0 {
		p.logger.Warn("dropped coordinate rows with unparsable lat/lon", "dropped", dropped)
	}

	yearly, err := p.yearly.ReadYearly(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load yearly averages: %w", err)
	}
	p.metrics.YearlyRowsLoaded.Add(float64(len(yearly.Records)))
	p.logger.Info("inputs loaded",
		"coordinate_rows", len(coords),
		"yearly_rows", len(yearly.Records),
		"year_columns", len(yearly.Years),
	)

	joined, unmatched := domain.Join(yearly, coords)
	p.metrics.RecordsJoined.Add(float64(len(joined)))
	p.metrics.YearlyRowsUnmatched.Add(float64(unmatched))
	if unmatched > 0 {
		p.logger.Warn("excluded yearly rows with no matching ZIP coordinates", "unmatched", unmatched)
	}
	if len(joined) == 0 {
		// Outputs still get written (header only), matching the batch
		// contract: an empty join is data loss, not a failure.
		p.logger.Warn("join produced no records; outputs will be empty")
	}

	return joined, yearly.Years, nil
}

func resolutionLabel(binSize float64) string {
	return strconv.FormatFloat(binSize, 'g', -1, 64)
}
