package domain

import (
	"context"
	"time"
)

// RawReading is a telemetry message as it arrives from a source
// transport, before parsing.
type RawReading struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time

	// Commit acknowledges the message on the source transport. Nil when
	// the source does not track offsets.
	Commit func(ctx context.Context) error
}

// StationReading is the parsed wire form of a single weather-station
// report. Optional instrument channels are pointers so absent and zero
// are distinguishable.
type StationReading struct {
	StationID    string    `json:"station_id"`
	Timestamp    time.Time `json:"timestamp"`
	TemperatureC *float64  `json:"temperature_c,omitempty"`
	HumidityPct  *float64  `json:"humidity_pct,omitempty"`
	DewpointC    *float64  `json:"dewpoint_c,omitempty"`
	PressureHPa  *float64  `json:"pressure_hpa,omitempty"`
	BatteryV     *float64  `json:"battery_v,omitempty"`
	Sequence     *int      `json:"sequence,omitempty"`
}

// Metadata provenance for directory enrichment.
const (
	MetaSourceDirectory = "directory"
	MetaSourceFailed    = "failed"
	MetaSourceNone      = "none"
)

// Comfort bands derived from dewpoint.
const (
	ComfortDry         = "dry"
	ComfortComfortable = "comfortable"
	ComfortMuggy       = "muggy"
	ComfortOppressive  = "oppressive"
)

// Observation is the enriched record published downstream: the reading's
// measured channels plus every humidity quantity derivable from them.
type Observation struct {
	ID         string    `json:"id"`
	StationID  string    `json:"station_id"`
	ObservedAt time.Time `json:"observed_at"`
	TimeBucket time.Time `json:"time_bucket"`

	TemperatureC     float64  `json:"temperature_c"`
	SaturationHPa    float64  `json:"saturation_hpa"`
	VaporPressureHPa float64  `json:"vapor_pressure_hpa"`
	RelativeHumidity float64  `json:"relative_humidity_pct"`
	DewpointC        *float64 `json:"dewpoint_c,omitempty"`
	SaturationSlope  float64  `json:"saturation_slope_hpa_per_c"`
	SpecificHumidity *float64 `json:"specific_humidity_kg_kg,omitempty"`
	StationPressure  *float64 `json:"station_pressure_hpa,omitempty"`
	SeaLevelPressure *float64 `json:"sea_level_pressure_hpa,omitempty"`
	BatteryV         *float64 `json:"battery_v,omitempty"`

	Comfort string `json:"comfort"`

	StationName string   `json:"station_name,omitempty"`
	ElevationM  *float64 `json:"elevation_m,omitempty"`
	MetaSource  string   `json:"meta_source,omitempty"`

	Source      string    `json:"source,omitempty"`
	ProcessedAt time.Time `json:"processed_at"`
}
