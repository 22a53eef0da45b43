package domain

import (
	"context"
	"log/slog"
	"math"

	"github.com/wxpipe/humidity-etl/internal/esat"
)

// rOverG is the specific gas constant of dry air divided by standard
// gravity, in m/K. Scale height at temperature T (K) is rOverG*T.
const rOverG = 29.27

// EnrichWithStationMeta attempts to attach fleet-directory metadata to an
// observation: station name, elevation, and — when the station reported
// pressure — the sea-level reduced pressure. If directory is nil or the
// lookup fails, the observation is returned with MetaSource set
// accordingly (graceful degradation).
func EnrichWithStationMeta(ctx context.Context, obs Observation, directory StationDirectory, logger *slog.Logger) Observation {
	if directory == nil {
		return obs
	}

	info, err := directory.Lookup(ctx, obs.StationID)
	if err != nil {
		logger.Warn("station directory lookup failed",
			"observation_id", obs.ID,
			"station_id", obs.StationID,
			"error", err,
		)
		obs.MetaSource = MetaSourceFailed
		return obs
	}
	if info.StationID == "" {
		obs.MetaSource = MetaSourceNone
		return obs
	}

	obs.StationName = info.Name
	elev := info.ElevationM
	obs.ElevationM = &elev
	if obs.StationPressure != nil {
		slp := seaLevelPressure(*obs.StationPressure, elev, obs.TemperatureC)
		obs.SeaLevelPressure = &slp
	}
	obs.MetaSource = MetaSourceDirectory
	return obs
}

// seaLevelPressure reduces a station pressure (hPa) to sea level with the
// hypsometric relation, using the station air temperature for the column.
func seaLevelPressure(pHPa, elevationM, tempC float64) float64 {
	tK := esat.CelsiusToKelvin(tempC)
	return pHPa * math.Exp(elevationM/(rOverG*tK))
}
