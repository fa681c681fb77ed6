// Package kafka publishes aggregated grid cells to a Kafka topic. The sink
// is optional and feature-flagged off by default; a plain batch run writes
// CSV only.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/zip-grid-etl/internal/config"
	"github.com/couchcryptid/zip-grid-etl/internal/domain"
)

// Writer produces one message per occupied grid cell to the sink topic.
// It implements pipeline.CellSink.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
	clock  clockwork.Clock
}

// NewWriter creates a Kafka producer for the configured sink topic. A nil
// clock falls back to the real clock.
func NewWriter(cfg *config.Config, logger *slog.Logger, clock clockwork.Clock) *Writer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger, clock: clock}
}

// WriteCells serializes and publishes every cell of one resolution in a
// single WriteMessages call.
func (w *Writer) WriteCells(ctx context.Context, table domain.AggregatedTable) error {
	if len(table.Records) == 0 {
		return nil
	}
	producedAt := w.clock.Now()
	msgs := make([]kafkago.Message, len(table.Records))
	for i, rec := range table.Records {
		msg, err := serializeToMessage(table, rec, producedAt)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish grid cells: %w", err)
	}
	w.logger.Info("published grid cells",
		"topic", w.writer.Topic,
		"cells", len(msgs),
		"bin_size", table.BinSize,
	)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// cellMessage is the wire form of one aggregated cell. Years holds only the
// observed means; a year missing across the whole cell is omitted because
// JSON has no NaN.
type cellMessage struct {
	LatBin  float64            `json:"lat_bin"`
	LonBin  float64            `json:"lon_bin"`
	BinSize float64            `json:"bin_size"`
	Count   int                `json:"count"`
	Years   map[string]float64 `json:"years"`
}

// serializeToMessage marshals an aggregated cell into a Kafka message keyed
// by cell and resolution, so a compacted topic retains one message per cell.
func serializeToMessage(table domain.AggregatedTable, rec domain.AggregatedRecord, producedAt time.Time) (kafkago.Message, error) {
	years := make(map[string]float64, len(rec.Means))
	for i, mean := range rec.Means {
		if !math.IsNaN(mean) {
			years[table.Years[i]] = mean
		}
	}

	data, err := json.Marshal(cellMessage{
		LatBin:  rec.Cell.LatBin,
		LonBin:  rec.Cell.LonBin,
		BinSize: table.BinSize,
		Count:   rec.Count,
		Years:   years,
	})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize grid cell: %w", err)
	}

	binToken := strconv.FormatFloat(table.BinSize, 'g', -1, 64)
	key := fmt.Sprintf("%s,%s@%s",
		strconv.FormatFloat(rec.Cell.LatBin, 'g', -1, 64),
		strconv.FormatFloat(rec.Cell.LonBin, 'g', -1, 64),
		binToken,
	)

	return kafkago.Message{
		Key:   []byte(key),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "bin_size", Value: []byte(binToken)},
			{Key: "produced_at", Value: []byte(producedAt.Format(time.RFC3339))},
		},
	}, nil
}
