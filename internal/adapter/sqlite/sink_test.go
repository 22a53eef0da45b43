package sqlite

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wxpipe/humidity-etl/internal/domain"
)

func fptr(v float64) *float64 { return &v }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openTestSink(t *testing.T) *Sink {
	t.Helper()
	path := filepath.Join(t.TempDir(), "humidity.db")
	sink, err := Open(path, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, sink.Close()) })
	return sink
}

func sampleObservation(id, stationID string) domain.Observation {
	observedAt := time.Date(2025, 6, 14, 17, 42, 10, 0, time.UTC)
	return domain.Observation{
		ID:               id,
		StationID:        stationID,
		ObservedAt:       observedAt,
		TimeBucket:       observedAt.Truncate(time.Hour),
		TemperatureC:     21.5,
		SaturationHPa:    25.657338729303255,
		VaporPressureHPa: 15.907550012168018,
		RelativeHumidity: 62,
		DewpointC:        fptr(13.920540370349153),
		SaturationSlope:  1.5710896856190262,
		SpecificHumidity: fptr(0.009872040209726075),
		StationPressure:  fptr(1008.2),
		BatteryV:         fptr(3.91),
		Comfort:          domain.ComfortComfortable,
		Source:           "kafka",
		ProcessedAt:      observedAt.Add(5 * time.Minute),
	}
}

func countObservations(t *testing.T, sink *Sink) int {
	t.Helper()
	var n int
	require.NoError(t, sink.db.QueryRow(`SELECT COUNT(*) FROM observations`).Scan(&n))
	return n
}

func TestOpen_CreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "humidity.db")
	sink, err := Open(path, discardLogger())
	require.NoError(t, err)
	defer sink.Close()

	err = sink.LoadBatch(context.Background(), []domain.Observation{
		sampleObservation("wxs-austin-01-a1b2c3d4e5f60718", "wxs-austin-01"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, countObservations(t, sink))
}

func TestBuildDSN(t *testing.T) {
	assert.Equal(t,
		"file:humidity.db?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL",
		buildDSN("humidity.db"))
	assert.Equal(t,
		"file:humidity.db?cache=shared&_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL",
		buildDSN("file:humidity.db?cache=shared"))
}

func TestLoadBatch_InsertsObservations(t *testing.T) {
	sink := openTestSink(t)

	batch := []domain.Observation{
		sampleObservation("wxs-austin-01-0000000000000001", "wxs-austin-01"),
		sampleObservation("wxs-austin-01-0000000000000002", "wxs-austin-01"),
		sampleObservation("wxs-tromso-02-0000000000000003", "wxs-tromso-02"),
	}
	require.NoError(t, sink.LoadBatch(context.Background(), batch))
	assert.Equal(t, 3, countObservations(t, sink))

	var (
		stationID  string
		observedAt string
		tempC      float64
		rhPct      float64
		dewpoint   sql.NullFloat64
		comfort    string
	)
	err := sink.db.QueryRow(`
		SELECT station_id, observed_at, temperature_c, relative_humidity_pct, dewpoint_c, comfort
		FROM observations WHERE id = ?`,
		"wxs-tromso-02-0000000000000003",
	).Scan(&stationID, &observedAt, &tempC, &rhPct, &dewpoint, &comfort)
	require.NoError(t, err)

	assert.Equal(t, "wxs-tromso-02", stationID)
	assert.Equal(t, 21.5, tempC)
	assert.Equal(t, 62.0, rhPct)
	require.True(t, dewpoint.Valid)
	assert.InDelta(t, 13.920540370349153, dewpoint.Float64, 1e-9)
	assert.Equal(t, domain.ComfortComfortable, comfort)

	parsed, err := time.Parse(time.RFC3339Nano, observedAt)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(time.Date(2025, 6, 14, 17, 42, 10, 0, time.UTC)))
}

func TestLoadBatch_ReplayIsIdempotent(t *testing.T) {
	sink := openTestSink(t)

	batch := []domain.Observation{
		sampleObservation("wxs-austin-01-0000000000000001", "wxs-austin-01"),
		sampleObservation("wxs-austin-01-0000000000000002", "wxs-austin-01"),
	}
	require.NoError(t, sink.LoadBatch(context.Background(), batch))
	require.NoError(t, sink.LoadBatch(context.Background(), batch))

	assert.Equal(t, 2, countObservations(t, sink))
}

func TestLoadBatch_EmptyBatch(t *testing.T) {
	sink := openTestSink(t)
	require.NoError(t, sink.LoadBatch(context.Background(), nil))
	assert.Equal(t, 0, countObservations(t, sink))
}

func TestLoadBatch_AbsentChannelsStoredAsNull(t *testing.T) {
	sink := openTestSink(t)

	obs := sampleObservation("wxs-lisbon-03-0000000000000009", "wxs-lisbon-03")
	obs.DewpointC = nil
	obs.SpecificHumidity = nil
	obs.StationPressure = nil
	obs.SeaLevelPressure = nil
	obs.BatteryV = nil
	require.NoError(t, sink.LoadBatch(context.Background(), []domain.Observation{obs}))

	var dewpoint, q, pressure, slp, battery sql.NullFloat64
	err := sink.db.QueryRow(`
		SELECT dewpoint_c, specific_humidity_kg_kg, station_pressure_hpa, sea_level_pressure_hpa, battery_v
		FROM observations WHERE id = ?`,
		obs.ID,
	).Scan(&dewpoint, &q, &pressure, &slp, &battery)
	require.NoError(t, err)

	assert.False(t, dewpoint.Valid)
	assert.False(t, q.Valid)
	assert.False(t, pressure.Valid)
	assert.False(t, slp.Valid)
	assert.False(t, battery.Valid)
}
