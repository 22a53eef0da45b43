package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/wxpipe/humidity-etl/internal/esat"
)

// ParseReading deserializes a RawReading's value into a StationReading.
// It expects the telemetry JSON published by the station firmware.
func ParseReading(raw RawReading) (StationReading, error) {
	var rec StationReading
	if err := json.Unmarshal(raw.Value, &rec); err != nil {
		return StationReading{}, fmt.Errorf("parse station reading: %w", err)
	}
	return rec, nil
}

// ValidateReading checks a parsed reading against the instrument contract:
// identity and timestamp present, temperature inside the coefficient
// domain, at least one humidity channel, and every present channel inside
// its physical range. Range checks are written so NaN fails them.
func ValidateReading(r StationReading, coeffs esat.Coefficients) error {
	if r.StationID == "" {
		return fmt.Errorf("station_id is required")
	}
	if r.Timestamp.IsZero() {
		return fmt.Errorf("timestamp is required")
	}
	if r.TemperatureC == nil {
		return fmt.Errorf("temperature_c is required")
	}
	if t := *r.TemperatureC; !(t >= coeffs.DomainMinC && t <= coeffs.DomainMaxC) {
		return fmt.Errorf("temperature_c out of range: %g (must be %g to %g)", t, coeffs.DomainMinC, coeffs.DomainMaxC)
	}
	if r.HumidityPct == nil && r.DewpointC == nil {
		return fmt.Errorf("at least one of humidity_pct or dewpoint_c is required")
	}
	if r.HumidityPct != nil {
		if h := *r.HumidityPct; !(h >= 0 && h <= 100) {
			return fmt.Errorf("humidity_pct out of range: %g (must be 0-100)", h)
		}
	}
	if r.DewpointC != nil {
		if td := *r.DewpointC; !(td >= coeffs.DomainMinC && td <= coeffs.DomainMaxC) {
			return fmt.Errorf("dewpoint_c out of range: %g (must be %g to %g)", td, coeffs.DomainMinC, coeffs.DomainMaxC)
		}
	}
	if r.PressureHPa != nil {
		if p := *r.PressureHPa; !(p > 0) {
			return fmt.Errorf("pressure_hpa must be positive: %g", p)
		}
	}
	return nil
}

// generateID produces a deterministic ID from the reading's key fields.
// Deterministic IDs enable idempotent upserts (ON CONFLICT DO NOTHING) and
// replay safety — reprocessing the same reading produces the same ID.
func generateID(stationID string, observedAt time.Time, sequence *int) string {
	seq := ""
	if sequence != nil {
		seq = strconv.Itoa(*sequence)
	}
	input := fmt.Sprintf("%s|%s|%s", stationID, observedAt.UTC().Format(time.RFC3339Nano), seq)
	hash := sha256.Sum256([]byte(input))
	short := hex.EncodeToString(hash[:8])
	if stationID == "" {
		return short
	}
	return stationID + "-" + short
}

// Enrich derives every humidity quantity the coefficient set supports
// from a validated reading: saturation pressure, ambient vapor pressure,
// relative humidity, dewpoint, the saturation slope, and (when station
// pressure is reported) specific humidity, plus the comfort band and an
// hourly time bucket.
//
// When both humidity_pct and dewpoint_c are reported, relative humidity
// is treated as the primary channel and the dewpoint is recomputed from
// it so the published quantities stay mutually consistent.
//
// The reading must have passed ValidateReading; Enrich itself never
// panics on a hole, but unvalidated input can surface as NaN.
func Enrich(r StationReading, coeffs esat.Coefficients) Observation {
	tempC := math.NaN()
	if r.TemperatureC != nil {
		tempC = *r.TemperatureC
	}

	es := coeffs.Esat(tempC)

	var (
		vaporHPa float64
		rhPct    float64
		dewC     = math.NaN()
	)
	switch {
	case r.HumidityPct != nil:
		rhPct = *r.HumidityPct
		vaporHPa = es * (rhPct / 100)
		dewC = coeffs.DewpointC(tempC, rhPct)
	case r.DewpointC != nil:
		dewC = *r.DewpointC
		vaporHPa = coeffs.Esat(dewC)
		rhPct = coeffs.RHPercent(tempC, vaporHPa)
	}

	var dewPtr *float64
	if !math.IsNaN(dewC) {
		dewPtr = &dewC
	}

	var specificHumidity *float64
	if r.PressureHPa != nil {
		q := coeffs.SpecificHumidity(tempC, rhPct, *r.PressureHPa)
		specificHumidity = &q
	}

	return Observation{
		ID:         generateID(r.StationID, r.Timestamp, r.Sequence),
		StationID:  r.StationID,
		ObservedAt: r.Timestamp.UTC(),
		TimeBucket: deriveTimeBucket(r.Timestamp),

		TemperatureC:     tempC,
		SaturationHPa:    es,
		VaporPressureHPa: vaporHPa,
		RelativeHumidity: rhPct,
		DewpointC:        dewPtr,
		SaturationSlope:  es * coeffs.DLnEsatDT(tempC),
		SpecificHumidity: specificHumidity,
		StationPressure:  r.PressureHPa,
		BatteryV:         r.BatteryV,

		Comfort:     classifyComfort(dewC),
		ProcessedAt: clock.Now().UTC(),
	}
}

// classifyComfort buckets a dewpoint into the comfort bands used by
// downstream dashboards: below 10 °C dry, 10-16 comfortable, 16-21
// muggy, 21 and above oppressive. A reading with no finite dewpoint
// (zero humidity) counts as dry.
func classifyComfort(dewpointC float64) string {
	switch {
	case math.IsNaN(dewpointC):
		return ComfortDry
	case dewpointC < 10:
		return ComfortDry
	case dewpointC < 16:
		return ComfortComfortable
	case dewpointC < 21:
		return ComfortMuggy
	default:
		return ComfortOppressive
	}
}

// deriveTimeBucket truncates the observation time to the hour in UTC.
// Returns zero time if the input is zero.
func deriveTimeBucket(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}

	return t.UTC().Truncate(time.Hour)
}
