package esat

import "math"

// RHPercent returns relative humidity in percent from temperature (°C)
// and ambient vapor pressure (hPa), clipped to [0, 100]. Supersaturated
// or negative pressures clip silently rather than error; where the
// saturation pressure underflows to zero the result is 0.
func (c Coefficients) RHPercent(tC, eHPa float64) float64 {
	es := c.Esat(tC)
	rh := 0.0
	if es > 0 {
		rh = eHPa / es * 100
	}
	return clip(rh, 0, 100)
}

// DewpointC returns the dewpoint (°C) from temperature (°C) and relative
// humidity in percent. RH is clipped to [0, 100] first; RH of zero maps
// to zero vapor pressure and therefore NaN.
func (c Coefficients) DewpointC(tC, rhPct float64) float64 {
	rh := clip(rhPct, 0, 100)
	e := c.Esat(tC) * (rh / 100)
	return c.TFromE(e)
}

// SpecificHumidity returns the specific humidity (kg water vapor per kg
// moist air) from temperature (°C), relative humidity in percent, and
// station pressure (hPa). RH is clipped to [0, 100], pressure floored at
// 1 hPa to avoid division blow-up, and the result clipped non-negative.
func (c Coefficients) SpecificHumidity(tC, rhPct, pHPa float64) float64 {
	rh := clip(rhPct, 0, 100)
	p := math.Max(pHPa, 1)
	e := c.Esat(tC) * (rh / 100)
	q := EpsRatio * e / (p - (1-EpsRatio)*e)
	return math.Max(q, 0)
}
