package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Source and sink transports selectable via SOURCE_KIND / SINK_KIND.
const (
	SourceKafka = "kafka"
	SourceMQTT  = "mqtt"

	SinkKafka  = "kafka"
	SinkSQLite = "sqlite"
)

// Log output formats.
const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string

	SourceKind string
	SinkKind   string

	MQTTBrokerURL string
	MQTTTopic     string
	MQTTClientID  string

	SQLitePath string

	// CoeffsPath overrides the embedded coefficient set when non-empty.
	CoeffsPath string

	HTTPAddr        string
	LogLevel        slog.Level
	LogFormat       string
	ShutdownTimeout time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// Station directory configuration.
	DirectoryURL       string
	DirectoryToken     string
	DirectoryEnabled   bool
	DirectoryTimeout   time.Duration
	DirectoryCacheSize int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	logLevel, err := parseLogLevel(envOrDefault("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}

	batchSize, err := parseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := parseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	directoryTimeout, err := parseDirectoryTimeout()
	if err != nil {
		return nil, err
	}

	directoryURL := os.Getenv("DIRECTORY_URL")
	directoryEnabled := directoryURL != ""
	if v := os.Getenv("DIRECTORY_ENABLED"); v != "" {
		directoryEnabled = v == "true"
	}

	cfg := &Config{
		KafkaBrokers:     parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic: envOrDefault("KAFKA_SOURCE_TOPIC", "station-readings"),
		KafkaSinkTopic:   envOrDefault("KAFKA_SINK_TOPIC", "humidity-observations"),
		KafkaGroupID:     envOrDefault("KAFKA_GROUP_ID", "humidity-etl"),

		SourceKind: envOrDefault("SOURCE_KIND", SourceKafka),
		SinkKind:   envOrDefault("SINK_KIND", SinkKafka),

		MQTTBrokerURL: envOrDefault("MQTT_BROKER_URL", "tcp://localhost:1883"),
		MQTTTopic:     envOrDefault("MQTT_TOPIC", "stations/+/readings"),
		MQTTClientID:  envOrDefault("MQTT_CLIENT_ID", "humidity-etl"),

		SQLitePath: envOrDefault("SQLITE_PATH", "humidity.db"),

		CoeffsPath: os.Getenv("COEFFS_PATH"),

		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        logLevel,
		LogFormat:       envOrDefault("LOG_FORMAT", LogFormatJSON),
		ShutdownTimeout: shutdownTimeout,

		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		DirectoryURL:       directoryURL,
		DirectoryToken:     os.Getenv("DIRECTORY_TOKEN"),
		DirectoryEnabled:   directoryEnabled,
		DirectoryTimeout:   directoryTimeout,
		DirectoryCacheSize: parseDirectoryCacheSize(),
	}

	switch cfg.SourceKind {
	case SourceKafka, SourceMQTT:
	default:
		return nil, fmt.Errorf("invalid SOURCE_KIND %q (allowed: kafka, mqtt)", cfg.SourceKind)
	}
	switch cfg.SinkKind {
	case SinkKafka, SinkSQLite:
	default:
		return nil, fmt.Errorf("invalid SINK_KIND %q (allowed: kafka, sqlite)", cfg.SinkKind)
	}

	if (cfg.SourceKind == SourceKafka || cfg.SinkKind == SinkKafka) && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.SourceKind == SourceKafka && cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.SinkKind == SinkKafka && cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.SourceKind == SourceMQTT && cfg.MQTTBrokerURL == "" {
		return nil, errors.New("MQTT_BROKER_URL is required")
	}
	if cfg.SinkKind == SinkSQLite && cfg.SQLitePath == "" {
		return nil, errors.New("SQLITE_PATH is required")
	}
	if cfg.DirectoryEnabled && cfg.DirectoryURL == "" {
		return nil, errors.New("DIRECTORY_ENABLED is true but DIRECTORY_URL is not set")
	}

	return cfg, nil
}

func parseDirectoryTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault("DIRECTORY_TIMEOUT", "5s"))
	if err != nil || d <= 0 {
		return 0, errors.New("invalid DIRECTORY_TIMEOUT: must be a positive duration")
	}
	return d, nil
}

func parseDirectoryCacheSize() int {
	if s := os.Getenv("DIRECTORY_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
