// Package esat computes saturation vapor pressure over liquid water and
// the humidity quantities derived from it, using a two-pole empirical
// fit with a closed-form inverse.
//
// # Formulation
//
// The forward model is
//
//	ln Es(T) = E0 + a*T/(b+T) + c*T/(d+T)
//
// with T in degrees Celsius and Es in hectopascals. The two rational
// terms place both poles far below the valid temperature domain, which
// keeps the curve smooth through 0 °C: only the liquid/supercooled
// branch is modeled, so there is no discontinuity at freezing. Below
// typical ice-nucleation temperatures the same curve is extrapolated
// rather than switched to an ice-phase formulation.
//
// # Inverse
//
// Because ln Es is a ratio of quadratics in T, temperature can be
// recovered from a vapor pressure without iteration: [Coefficients.TFromE]
// rearranges the forward equation into a quadratic and selects the
// physical root with a cancellation-safe formula. Non-positive or
// non-finite pressures yield NaN rather than an error, and solutions
// outside the coefficient domain saturate at the domain boundary.
//
// # Coefficients
//
// All entry points are methods on an immutable [Coefficients] value.
// [Default] returns the set compiled into the binary; [Parse] and [Load]
// read the same JSON schema from an external resource, failing with
// [MissingKeyError] or [TypeConsistencyError] when the resource is
// malformed. A Coefficients value is safe for concurrent use.
package esat
