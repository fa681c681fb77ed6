package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/zip-grid-etl/internal/adapter/csvfile"
	httpadapter "github.com/couchcryptid/zip-grid-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/zip-grid-etl/internal/adapter/kafka"
	"github.com/couchcryptid/zip-grid-etl/internal/config"
	"github.com/couchcryptid/zip-grid-etl/internal/observability"
	"github.com/couchcryptid/zip-grid-etl/internal/pipeline"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	coords := csvfile.NewCoordinateReader(cfg.MapCSVPath, logger)
	yearly := csvfile.NewYearlyReader(cfg.YearAveragesCSVPath, logger)

	sinks := []pipeline.CellSink{csvfile.NewWriter(cfg.OutputDir, logger)}

	// Kafka publishing is feature-flagged via KAFKA_ENABLED.
	var kafkaWriter *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		kafkaWriter = kafkaadapter.NewWriter(cfg, logger, clock)
		sinks = append(sinks, kafkaWriter)
		logger.Info("kafka cell sink enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaSinkTopic)
	}

	p := pipeline.New(coords, yearly, sinks, logger, metrics, clock)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Metrics/health endpoint is feature-flagged via METRICS_ADDR.
	var srv *httpadapter.Server
	if cfg.MetricsAddr != "" {
		srv = httpadapter.NewServer(cfg.MetricsAddr, p, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server error", "error", err)
			}
		}()
	}

	runErr := p.Run(ctx, cfg.BinSizes)
	if runErr != nil {
		logger.Error("run failed", "error", runErr)
	}

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", "error", err)
		}
	}
	if kafkaWriter != nil {
		if err := kafkaWriter.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	if runErr != nil {
		os.Exit(1)
	}
}
