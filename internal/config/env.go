package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const maxBatchSize = 5000

// envOrDefault returns the value of the environment variable key, or def
// when unset or empty.
func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// parseBrokers splits a comma-separated broker list, trimming whitespace
// and dropping empty entries.
func parseBrokers(s string) []string {
	parts := strings.Split(s, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if b := strings.TrimSpace(p); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func parseShutdownTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault("SHUTDOWN_TIMEOUT", "10s"))
	if err != nil || d <= 0 {
		return 0, errors.New("invalid SHUTDOWN_TIMEOUT: must be a positive duration")
	}
	return d, nil
}

func parseBatchSize() (int, error) {
	n, err := strconv.Atoi(envOrDefault("BATCH_SIZE", "50"))
	if err != nil || n < 1 || n > maxBatchSize {
		return 0, fmt.Errorf("invalid BATCH_SIZE: must be between 1 and %d", maxBatchSize)
	}
	return n, nil
}

func parseBatchFlushInterval() (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault("BATCH_FLUSH_INTERVAL", "500ms"))
	if err != nil || d <= 0 {
		return 0, errors.New("invalid BATCH_FLUSH_INTERVAL: must be a positive duration")
	}
	return d, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
