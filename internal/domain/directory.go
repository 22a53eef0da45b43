package domain

import "context"

// StationInfo describes a station as known to the fleet directory.
type StationInfo struct {
	StationID  string  `json:"station_id"`
	Name       string  `json:"name"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	ElevationM float64 `json:"elevation_m"`
}

// StationDirectory resolves station metadata from the fleet registry.
type StationDirectory interface {
	// Lookup returns metadata for a station ID. A zero StationInfo with a
	// nil error means the directory does not know the station.
	Lookup(ctx context.Context, stationID string) (StationInfo, error)
}
