// Package sqlite persists derived observations into a local SQLite
// database. It is the sink of choice for single-node deployments where
// running a broker for the output side is overkill.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/wxpipe/humidity-etl/internal/domain"
)

//go:embed sql/schema.sql
var schemaSQL string

//go:embed sql/insert-observation.sql
var insertObservationSQL string

// Sink writes observation batches to SQLite. It implements
// pipeline.BatchLoader.
//
// Observation IDs are deterministic, so replayed messages collapse into
// ON CONFLICT DO NOTHING instead of duplicating rows.
type Sink struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if necessary) the database at path and applies
// the schema.
func Open(path string, logger *slog.Logger) (*Sink, error) {
	db, err := sql.Open("sqlite3", buildDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// SQLite takes a database-wide write lock; a single connection
	// avoids SQLITE_BUSY churn between batches.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Sink{db: db, logger: logger}, nil
}

func buildDSN(path string) string {
	// Ensure the parent directory exists for file-backed databases.
	if dir := filepath.Dir(path); dir != "." {
		_ = os.MkdirAll(dir, 0o755)
	}

	params := []string{
		"_foreign_keys=on",
		"_busy_timeout=5000",
		"_journal_mode=WAL",
	}

	if strings.HasPrefix(path, "file:") {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return path + sep + strings.Join(params, "&")
	}
	return fmt.Sprintf("file:%s?%s", path, strings.Join(params, "&"))
}

// LoadBatch inserts the batch inside a single transaction. Rows whose ID
// already exists are skipped.
func (s *Sink) LoadBatch(ctx context.Context, observations []domain.Observation) error {
	if len(observations) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, insertObservationSQL)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, obs := range observations {
		res, err := stmt.ExecContext(ctx,
			obs.ID,
			obs.StationID,
			obs.ObservedAt.UTC().Format(time.RFC3339Nano),
			obs.TimeBucket.UTC().Format(time.RFC3339Nano),
			obs.TemperatureC,
			obs.SaturationHPa,
			obs.VaporPressureHPa,
			obs.RelativeHumidity,
			obs.DewpointC,
			obs.SaturationSlope,
			obs.SpecificHumidity,
			obs.StationPressure,
			obs.SeaLevelPressure,
			obs.BatteryV,
			obs.Comfort,
			obs.StationName,
			obs.ElevationM,
			obs.MetaSource,
			obs.Source,
			obs.ProcessedAt.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("insert observation %s: %w", obs.ID, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	s.logger.Debug("persisted observation batch",
		"batch_size", len(observations),
		"inserted", inserted,
		"duplicates", len(observations)-inserted)
	return nil
}

// Close closes the underlying database.
func (s *Sink) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
