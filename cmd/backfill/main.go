// Command backfill imports archived station telemetry from a CSV export
// into the SQLite observation archive, applying the same enrichment the
// live pipeline applies. Re-running an import is safe: observation IDs
// are deterministic and duplicate rows are skipped by the sink.
//
// Usage:
//
//	go run ./cmd/backfill --csv data/mock/station_readings.csv --db humidity.db
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/spf13/pflag"

	"github.com/wxpipe/humidity-etl/internal/adapter/sqlite"
	"github.com/wxpipe/humidity-etl/internal/domain"
	"github.com/wxpipe/humidity-etl/internal/esat"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	csvPath := pflag.String("csv", "", "path to the archived telemetry CSV (required)")
	dbPath := pflag.String("db", "humidity.db", "path to the SQLite archive")
	coeffsPath := pflag.String("coeffs", "", "path to a coefficients JSON resource (default: embedded set)")
	batchSize := pflag.Int("batch-size", 500, "rows per insert transaction")
	maxErrors := pflag.Int("max-errors", 100, "abort after this many invalid rows (0 = unlimited)")
	pflag.Parse()

	if *csvPath == "" {
		pflag.Usage()
		return fmt.Errorf("missing required flag: --csv")
	}
	if *batchSize < 1 {
		return fmt.Errorf("--batch-size must be positive")
	}

	coeffs, err := loadCoefficients(*coeffsPath)
	if err != nil {
		return err
	}

	f, err := os.Open(*csvPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", *csvPath, err)
	}
	defer f.Close()

	var rows []*domain.CSVReading
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return fmt.Errorf("parse %s: %w", *csvPath, err)
	}
	log.Printf("read %d rows from %s", len(rows), *csvPath)

	sink, err := sqlite.Open(*dbPath, slog.Default())
	if err != nil {
		return err
	}
	defer sink.Close()

	ctx := context.Background()
	imported, skipped := 0, 0
	batch := make([]domain.Observation, 0, *batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := sink.LoadBatch(ctx, batch); err != nil {
			return fmt.Errorf("insert batch: %w", err)
		}
		imported += len(batch)
		batch = batch[:0]
		return nil
	}

	for i, row := range rows {
		sr := row.Reading()
		if err := domain.ValidateReading(sr, coeffs); err != nil {
			skipped++
			// +2 accounts for the header line and 1-based numbering.
			log.Printf("row %d: skipping: %v", i+2, err)
			if *maxErrors > 0 && skipped >= *maxErrors {
				return fmt.Errorf("aborting after %d invalid rows", skipped)
			}
			continue
		}

		obs := domain.Enrich(sr, coeffs)
		obs.Source = "backfill"
		batch = append(batch, obs)

		if len(batch) >= *batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}

	log.Printf("backfill complete: %d imported, %d skipped, %d total", imported, skipped, len(rows))
	return nil
}

func loadCoefficients(path string) (esat.Coefficients, error) {
	if path == "" {
		return esat.Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return esat.Coefficients{}, fmt.Errorf("read %s: %w", path, err)
	}
	coeffs, err := esat.Parse(data)
	if err != nil {
		return esat.Coefficients{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return coeffs, nil
}
