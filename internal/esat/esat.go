package esat

import "math"

// Esat returns the saturation vapor pressure over liquid or supercooled
// water in hPa at temperature tC (°C). The input is not clipped: the
// function is defined for any temperature, with accuracy guaranteed only
// inside [DomainMinC, DomainMaxC], and is strictly increasing over that
// domain. NaN propagates.
func (c Coefficients) Esat(tC float64) float64 {
	lnEs := c.E0 + c.A*tC/(c.B+tC) + c.C*tC/(c.D+tC)
	// enforce positivity against underflow
	return math.Max(math.Exp(lnEs), 0)
}

// DLnEsatDT returns d(ln Es)/dT in 1/°C, the analytic slope of the
// log-pressure curve at tC. Same domain caveat as Esat.
func (c Coefficients) DLnEsatDT(tC float64) float64 {
	denB := c.B + tC
	denD := c.D + tC
	return c.A*c.B/(denB*denB) + c.C*c.D/(denD*denD)
}

// TFromE returns the temperature (°C) at which Esat equals eHPa, solved
// in closed form. Non-finite or non-positive pressures yield NaN.
// Solutions outside the coefficient domain are clipped to the boundary.
func (c Coefficients) TFromE(eHPa float64) float64 {
	if !isFinite(eHPa) || eHPa <= 0 {
		return math.NaN()
	}
	y := math.Log(eHPa) - c.E0
	return c.clipToDomain(c.solveQuadratic(y))
}

// solveQuadratic inverts y = a*T/(b+T) + c*T/(d+T) by clearing the
// denominators into qa*T² + qb*T + qc = 0 and taking the root qc/q,
// where q folds the sign of qb into the discriminant term so the
// subtraction never cancels. That root is the physical branch for the
// coefficient signs of this formulation.
func (c Coefficients) solveQuadratic(y float64) float64 {
	qa := y - (c.A + c.C)
	qb := y*(c.B+c.D) - (c.A*c.D + c.C*c.B)
	qc := y * c.B * c.D

	// Tiny negative discriminants are floating-point noise.
	disc := math.Max(qb*qb-4*qa*qc, 0)
	signB := 1.0
	if qb < 0 {
		signB = -1.0
	}
	q := -0.5 * (qb + signB*math.Sqrt(disc))

	return qc / q
}

// clipToDomain saturates tC at the coefficient domain bounds. NaN passes
// through unchanged.
func (c Coefficients) clipToDomain(tC float64) float64 {
	return clip(tC, c.DomainMinC, c.DomainMaxC)
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
