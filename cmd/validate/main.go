// Command validate checks a saturation vapor pressure coefficient set for
// internal consistency: the resource parses, the curve round-trips through
// its inverse, stays strictly monotonic, agrees with its analytic
// derivative, and crosses the freezing point without a kink.
//
// Usage:
//
//	go run ./cmd/validate --coeffs internal/esat/coeffs.json
//	go run ./cmd/validate                # validates the embedded set
package main

import (
	"fmt"
	"math"
	"os"

	"github.com/spf13/pflag"
	"gonum.org/v1/gonum/floats"

	"github.com/wxpipe/humidity-etl/internal/esat"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	coeffsPath := pflag.String("coeffs", "", "path to a coefficients JSON resource (default: embedded set)")
	gridPoints := pflag.Int("grid-points", 513, "evaluation points across the temperature domain")
	pflag.Parse()

	if *gridPoints < 2 {
		fmt.Fprintln(os.Stderr, "FATAL: --grid-points must be at least 2")
		os.Exit(1)
	}

	if code := run(*coeffsPath, *gridPoints); code != 0 {
		os.Exit(code)
	}
}

func run(coeffsPath string, gridPoints int) int {
	fmt.Println("=== Saturation Curve Validation ===")
	fmt.Println()

	coeffs, parsePhase := loadCoefficients(coeffsPath)

	phases := []*phase{parsePhase}
	if parsePhase.passed() {
		grid := make([]float64, gridPoints)
		floats.Span(grid, coeffs.DomainMinC, coeffs.DomainMaxC)

		phases = append(phases,
			validateRoundTrip(coeffs, grid),
			validateMonotonicity(coeffs, grid),
			validateDerivative(coeffs, grid),
			validateFreezingContinuity(coeffs),
		)
	}

	// ── Report results ──
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	if parsePhase.passed() {
		fmt.Println()
		fmt.Printf("Grid: %d points over [%g, %g] degC\n", gridPoints, coeffs.DomainMinC, coeffs.DomainMaxC)
	}

	// Print detailed errors.
	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phase 1: Resource Parse ──

func loadCoefficients(path string) (esat.Coefficients, *phase) {
	p := &phase{name: "Phase 1: Resource Parse"}
	if path == "" {
		return esat.Default(), p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		p.errorf("read %s: %v", path, err)
		return esat.Coefficients{}, p
	}
	coeffs, err := esat.Parse(data)
	if err != nil {
		p.errorf("parse %s: %v", path, err)
		return esat.Coefficients{}, p
	}
	return coeffs, p
}

// ── Phase 2: Round Trip ──
// Inverting the curve at each grid point must recover the temperature.

func validateRoundTrip(c esat.Coefficients, grid []float64) *phase {
	p := &phase{name: "Phase 2: Round Trip (T -> Es -> T)"}
	for _, tC := range grid {
		es := c.Esat(tC)
		back := c.TFromE(es)
		if diff := math.Abs(back - tC); diff > 1e-6 {
			p.errorf("T=%.4f: recovered %.10f (off by %.3g)", tC, back, diff)
		}
	}
	return p
}

// ── Phase 3: Monotonicity ──
// Saturation pressure must strictly increase with temperature.

func validateMonotonicity(c esat.Coefficients, grid []float64) *phase {
	p := &phase{name: "Phase 3: Monotonicity"}

	es := esat.Map(grid, c.Esat)
	for i := 1; i < len(es); i++ {
		if !(es[i] > es[i-1]) {
			p.errorf("Es(%.4f)=%.6g not above Es(%.4f)=%.6g", grid[i], es[i], grid[i-1], es[i-1])
		}
	}

	for _, tC := range grid {
		if slope := c.DLnEsatDT(tC); !(slope > 0) {
			p.errorf("dlnEs/dT(%.4f)=%.6g is not positive", tC, slope)
		}
	}
	return p
}

// ── Phase 4: Analytic vs Finite Difference ──

func validateDerivative(c esat.Coefficients, grid []float64) *phase {
	p := &phase{name: "Phase 4: Analytic vs Finite Difference"}

	const h = 1e-3
	for _, tC := range grid {
		// Domain clipping would bias the centered difference at the edges.
		if tC-h < c.DomainMinC || tC+h > c.DomainMaxC {
			continue
		}
		analytic := c.DLnEsatDT(tC)
		numeric := (math.Log(c.Esat(tC+h)) - math.Log(c.Esat(tC-h))) / (2 * h)
		if diff := math.Abs(analytic - numeric); diff > 1e-7 {
			p.errorf("T=%.4f: analytic %.10g vs numeric %.10g (off by %.3g)", tC, analytic, numeric, diff)
		}
	}
	return p
}

// ── Phase 5: Freezing Continuity ──
// Split ice/water formulas kink at 0 degC; a single two-pole fit must not.
// Adjacent ln-space steps on a dense grid should shrink or grow smoothly.

func validateFreezingContinuity(c esat.Coefficients) *phase {
	p := &phase{name: "Phase 5: Freezing Continuity"}

	lo := math.Max(-5, c.DomainMinC)
	hi := math.Min(5, c.DomainMaxC)
	if !(lo < hi) {
		p.errorf("domain [%g, %g] does not cover the freezing point", c.DomainMinC, c.DomainMaxC)
		return p
	}

	grid := make([]float64, 2001)
	floats.Span(grid, lo, hi)
	lnEs := esat.Map(grid, func(tC float64) float64 { return math.Log(c.Esat(tC)) })

	for i := 2; i < len(lnEs); i++ {
		prev := lnEs[i-1] - lnEs[i-2]
		cur := lnEs[i] - lnEs[i-1]
		if prev <= 0 || cur <= 0 {
			continue // monotonicity phase reports these
		}
		if r := cur / prev; r < 0.99 || r > 1.01 {
			p.errorf("slope jump near T=%.3f: adjacent ln-step ratio %.4f", grid[i-1], r)
		}
	}
	return p
}
