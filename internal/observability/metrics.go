package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// binning pipeline.
type Metrics struct {
	CoordinateRowsLoaded  prometheus.Counter
	CoordinateRowsDropped prometheus.Counter
	YearlyRowsLoaded      prometheus.Counter
	YearlyRowsUnmatched   prometheus.Counter
	RecordsJoined         prometheus.Counter
	CellsWritten          *prometheus.CounterVec // label: resolution (bin size in degrees)
	RunDuration           prometheus.Histogram
	PipelineRunning       prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		CoordinateRowsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "zip_grid_etl",
			Name:      "coordinate_rows_loaded_total",
			Help:      "Coordinate rows read from the ZIP map table.",
		}),
		CoordinateRowsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "zip_grid_etl",
			Name:      "coordinate_rows_dropped_total",
			Help:      "Coordinate rows dropped because lat or lon failed to parse.",
		}),
		YearlyRowsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "zip_grid_etl",
			Name:      "yearly_rows_loaded_total",
			Help:      "Rows read from the yearly-averages table.",
		}),
		YearlyRowsUnmatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "zip_grid_etl",
			Name:      "yearly_rows_unmatched_total",
			Help:      "Yearly rows excluded by the join because their ZIP has no coordinates.",
		}),
		RecordsJoined: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "zip_grid_etl",
			Name:      "records_joined_total",
			Help:      "Records surviving the inner join of yearly rows to coordinates.",
		}),
		CellsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zip_grid_etl",
			Name:      "cells_written_total",
			Help:      "Occupied grid cells written, by resolution.",
		}, []string{"resolution"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "zip_grid_etl",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete load-join-aggregate-write run.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "zip_grid_etl",
			Name:      "pipeline_running",
			Help:      "1 while a run is active, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.CoordinateRowsLoaded,
		m.CoordinateRowsDropped,
		m.YearlyRowsLoaded,
		m.YearlyRowsUnmatched,
		m.RecordsJoined,
		m.CellsWritten,
		m.RunDuration,
		m.PipelineRunning,
	)

	return m
}

// NewMetricsForTesting creates Metrics with no registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		CoordinateRowsLoaded:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "zip_grid_etl", Name: "coordinate_rows_loaded_total"}),
		CoordinateRowsDropped: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "zip_grid_etl", Name: "coordinate_rows_dropped_total"}),
		YearlyRowsLoaded:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "zip_grid_etl", Name: "yearly_rows_loaded_total"}),
		YearlyRowsUnmatched:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "zip_grid_etl", Name: "yearly_rows_unmatched_total"}),
		RecordsJoined:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "zip_grid_etl", Name: "records_joined_total"}),
		CellsWritten:          prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "zip_grid_etl", Name: "cells_written_total"}, []string{"resolution"}),
		RunDuration:           prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "zip_grid_etl", Name: "run_duration_seconds"}),
		PipelineRunning:       prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "zip_grid_etl", Name: "pipeline_running"}),
	}
}
