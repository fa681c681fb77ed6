package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/zip-grid-etl/internal/domain"
)

// Config holds all run settings, populated from environment variables.
type Config struct {
	MapCSVPath          string
	YearAveragesCSVPath string
	OutputDir           string
	BinSizes            []float64

	LogLevel  string
	LogFormat string

	// Optional metrics/health endpoint, disabled when MetricsAddr is empty.
	MetricsAddr     string
	ShutdownTimeout time.Duration

	// Optional Kafka sink configuration.
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string
}

// Load reads configuration from environment variables, applying defaults
// where unset. Degenerate bin sizes (zero, negative, non-numeric) are an
// invalid-configuration error rather than a runtime surprise.
func Load() (*Config, error) {
	binSizes, err := parseBinSizes(envOrDefault("BIN_SIZES", "0.125"))
	if err != nil {
		return nil, err
	}

	shutdownTimeout, err := parseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	kafkaEnabled := false
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		MapCSVPath:          envOrDefault("MAP_CSV_PATH", "map.csv"),
		YearAveragesCSVPath: envOrDefault("YEAR_AVERAGES_CSV_PATH", "year_averages.csv"),
		OutputDir:           envOrDefault("OUTPUT_DIR", "."),
		BinSizes:            binSizes,
		LogLevel:            envOrDefault("LOG_LEVEL", "info"),
		LogFormat:           envOrDefault("LOG_FORMAT", "json"),
		MetricsAddr:         os.Getenv("METRICS_ADDR"),
		ShutdownTimeout:     shutdownTimeout,
		KafkaEnabled:        kafkaEnabled,
		KafkaBrokers:        parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic:      envOrDefault("KAFKA_SINK_TOPIC", "binned-year-averages"),
	}

	if cfg.MapCSVPath == "" {
		return nil, errors.New("MAP_CSV_PATH is required")
	}
	if cfg.YearAveragesCSVPath == "" {
		return nil, errors.New("YEAR_AVERAGES_CSV_PATH is required")
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
		}
		if cfg.KafkaSinkTopic == "" {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_SINK_TOPIC is empty")
		}
	}

	return cfg, nil
}

// envOrDefault returns the value of the environment variable or the default
// when unset or empty.
func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// parseBinSizes parses a comma-separated list of grid resolutions in
// degrees. Every entry must be a positive finite number.
func parseBinSizes(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	sizes := make([]float64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid BIN_SIZES entry %q: %w", part, err)
		}
		if err := domain.ValidateBinSize(v); err != nil {
			return nil, fmt.Errorf("invalid BIN_SIZES entry %q: %w", part, err)
		}
		sizes = append(sizes, v)
	}
	if len(sizes) == 0 {
		return nil, errors.New("BIN_SIZES must list at least one resolution")
	}
	return sizes, nil
}

// parseBrokers splits a comma-separated broker list, dropping empty entries.
func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func parseShutdownTimeout() (time.Duration, error) {
	s := envOrDefault("SHUTDOWN_TIMEOUT", "10s")
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, errors.New("invalid SHUTDOWN_TIMEOUT")
	}
	return d, nil
}
