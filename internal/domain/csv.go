package domain

import "time"

// CSVReading is one row of the archived-telemetry CSV format shared by
// the mock generator and the backfill importer. Empty cells are absent
// channels.
type CSVReading struct {
	StationID    string    `csv:"station_id"`
	Timestamp    time.Time `csv:"timestamp"`
	TemperatureC float64   `csv:"temperature_c"`
	HumidityPct  *float64  `csv:"humidity_pct,omitempty"`
	DewpointC    *float64  `csv:"dewpoint_c,omitempty"`
	PressureHPa  *float64  `csv:"pressure_hpa,omitempty"`
	BatteryV     *float64  `csv:"battery_v,omitempty"`
	Sequence     *int      `csv:"sequence,omitempty"`
}

// Reading converts the row to the wire form the pipeline consumes.
func (r CSVReading) Reading() StationReading {
	return StationReading{
		StationID:    r.StationID,
		Timestamp:    r.Timestamp,
		TemperatureC: &r.TemperatureC,
		HumidityPct:  r.HumidityPct,
		DewpointC:    r.DewpointC,
		PressureHPa:  r.PressureHPa,
		BatteryV:     r.BatteryV,
		Sequence:     r.Sequence,
	}
}

// NewCSVReading flattens a reading into its archived row form.
func NewCSVReading(sr StationReading) CSVReading {
	row := CSVReading{
		StationID:   sr.StationID,
		Timestamp:   sr.Timestamp,
		HumidityPct: sr.HumidityPct,
		DewpointC:   sr.DewpointC,
		PressureHPa: sr.PressureHPa,
		BatteryV:    sr.BatteryV,
		Sequence:    sr.Sequence,
	}
	if sr.TemperatureC != nil {
		row.TemperatureC = *sr.TemperatureC
	}
	return row
}
