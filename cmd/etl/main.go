package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/multierr"

	httpadapter "github.com/wxpipe/humidity-etl/internal/adapter/http"
	kafkaadapter "github.com/wxpipe/humidity-etl/internal/adapter/kafka"
	mqttadapter "github.com/wxpipe/humidity-etl/internal/adapter/mqtt"
	"github.com/wxpipe/humidity-etl/internal/adapter/sqlite"
	"github.com/wxpipe/humidity-etl/internal/adapter/stationapi"
	"github.com/wxpipe/humidity-etl/internal/config"
	"github.com/wxpipe/humidity-etl/internal/domain"
	"github.com/wxpipe/humidity-etl/internal/esat"
	"github.com/wxpipe/humidity-etl/internal/observability"
	"github.com/wxpipe/humidity-etl/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	coeffs, err := loadCoefficients(cfg, logger)
	if err != nil {
		logger.Error("failed to load coefficients", "error", err)
		os.Exit(1)
	}

	// Station directory (feature-flagged via DIRECTORY_ENABLED / DIRECTORY_URL).
	var directory domain.StationDirectory
	if cfg.DirectoryEnabled {
		client := stationapi.NewClient(cfg.DirectoryURL, cfg.DirectoryToken, cfg.DirectoryTimeout, metrics, logger)
		directory = stationapi.NewCachedDirectory(client, cfg.DirectoryCacheSize, metrics)
		metrics.DirectoryEnabled.Set(1)
		logger.Info("station directory enabled",
			"url", cfg.DirectoryURL, "cache_size", cfg.DirectoryCacheSize, "timeout", cfg.DirectoryTimeout)
	} else {
		logger.Info("station directory disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	extractor, closeExtractor, err := newExtractor(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize source", "source", cfg.SourceKind, "error", err)
		os.Exit(1)
	}

	loader, closeLoader, err := newLoader(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize sink", "sink", cfg.SinkKind, "error", err)
		os.Exit(1)
	}

	transformer := pipeline.NewTransformer(coeffs, directory, logger, cfg.SourceKind)
	p := pipeline.New(extractor, transformer, loader, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start ETL pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	var shutdownErr error
	shutdownErr = multierr.Append(shutdownErr, srv.Shutdown(shutdownCtx))
	shutdownErr = multierr.Append(shutdownErr, closeExtractor())
	shutdownErr = multierr.Append(shutdownErr, closeLoader())
	if shutdownErr != nil {
		logger.Error("shutdown finished with errors", "error", shutdownErr)
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}

// loadCoefficients returns the embedded coefficient set unless COEFFS_PATH
// points at an override file.
func loadCoefficients(cfg *config.Config, logger *slog.Logger) (esat.Coefficients, error) {
	if cfg.CoeffsPath == "" {
		return esat.Default(), nil
	}
	data, err := os.ReadFile(cfg.CoeffsPath)
	if err != nil {
		return esat.Coefficients{}, fmt.Errorf("read %s: %w", cfg.CoeffsPath, err)
	}
	coeffs, err := esat.Parse(data)
	if err != nil {
		return esat.Coefficients{}, fmt.Errorf("parse %s: %w", cfg.CoeffsPath, err)
	}
	logger.Info("loaded coefficient override", "path", cfg.CoeffsPath)
	return coeffs, nil
}

func newExtractor(ctx context.Context, cfg *config.Config, logger *slog.Logger) (pipeline.BatchExtractor, func() error, error) {
	switch cfg.SourceKind {
	case config.SourceKafka:
		reader := kafkaadapter.NewReader(cfg, logger)
		return reader, reader.Close, nil
	case config.SourceMQTT:
		sub := mqttadapter.NewSubscriber(cfg, logger)
		if err := sub.Connect(ctx); err != nil {
			return nil, nil, fmt.Errorf("connect mqtt: %w", err)
		}
		return sub, func() error { sub.Disconnect(); return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported SOURCE_KIND %q", cfg.SourceKind)
	}
}

func newLoader(cfg *config.Config, logger *slog.Logger) (pipeline.BatchLoader, func() error, error) {
	switch cfg.SinkKind {
	case config.SinkKafka:
		writer := kafkaadapter.NewWriter(cfg, logger)
		return writer, writer.Close, nil
	case config.SinkSQLite:
		sink, err := sqlite.Open(cfg.SQLitePath, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite sink: %w", err)
		}
		return sink, sink.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported SINK_KIND %q", cfg.SinkKind)
	}
}
