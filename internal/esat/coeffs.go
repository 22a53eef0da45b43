package esat

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
)

//go:embed coeffs.json
var defaultCoeffsJSON []byte

// scalarKeys are the five fit parameters every coefficient resource must carry.
var scalarKeys = []string{"E0", "a", "b", "c", "d"}

// Coefficients is an immutable two-pole fit parameter set together with
// the temperature domain (°C) the fit is valid over.
type Coefficients struct {
	E0 float64
	A  float64
	B  float64
	C  float64
	D  float64

	DomainMinC float64
	DomainMaxC float64
}

// MissingKeyError reports required keys absent from a coefficient resource.
type MissingKeyError struct {
	Keys []string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("coefficients resource missing required keys: %s", strings.Join(e.Keys, ", "))
}

// TypeConsistencyError reports a coefficient key whose value is not numeric.
type TypeConsistencyError struct {
	Key string
}

func (e *TypeConsistencyError) Error() string {
	return fmt.Sprintf("coefficient %q must be numeric", e.Key)
}

// Parse reads a coefficient resource of the form
//
//	{"E0": ..., "a": ..., "b": ..., "c": ..., "d": ...,
//	 "domain_c": {"min": ..., "max": ...}}
//
// and returns the validated set. Missing keys produce a *MissingKeyError
// listing every absent key, non-numeric values a *TypeConsistencyError
// naming the first offending key.
func Parse(data []byte) (Coefficients, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Coefficients{}, fmt.Errorf("parse coefficients resource: %w", err)
	}

	var missing []string
	for _, key := range scalarKeys {
		if _, ok := raw[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return Coefficients{}, &MissingKeyError{Keys: missing}
	}

	scalars := make(map[string]float64, len(scalarKeys))
	for _, key := range scalarKeys {
		v, err := parseNumber(raw[key])
		if err != nil {
			return Coefficients{}, &TypeConsistencyError{Key: key}
		}
		scalars[key] = v
	}

	domMin, domMax, err := parseDomain(raw["domain_c"])
	if err != nil {
		return Coefficients{}, err
	}

	c := Coefficients{
		E0:         scalars["E0"],
		A:          scalars["a"],
		B:          scalars["b"],
		C:          scalars["c"],
		D:          scalars["d"],
		DomainMinC: domMin,
		DomainMaxC: domMax,
	}
	if err := c.Validate(); err != nil {
		return Coefficients{}, err
	}
	return c, nil
}

// Load reads and parses a coefficient resource from r.
func Load(r io.Reader) (Coefficients, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Coefficients{}, fmt.Errorf("read coefficients resource: %w", err)
	}
	return Parse(data)
}

// Default returns the coefficient set compiled into the binary.
// It panics only if the embedded resource is corrupt, which a build
// cannot normally produce.
func Default() Coefficients {
	c, err := Parse(defaultCoeffsJSON)
	if err != nil {
		panic("esat: embedded coeffs.json invalid: " + err.Error())
	}
	return c
}

// Validate checks the numeric invariants: all five fit parameters finite
// and the domain non-empty.
func (c Coefficients) Validate() error {
	for _, s := range []struct {
		key string
		v   float64
	}{
		{"E0", c.E0}, {"a", c.A}, {"b", c.B}, {"c", c.C}, {"d", c.D},
	} {
		if math.IsNaN(s.v) || math.IsInf(s.v, 0) {
			return fmt.Errorf("coefficient %q is not finite", s.key)
		}
	}
	if !(c.DomainMinC < c.DomainMaxC) {
		return fmt.Errorf("coefficient domain is empty: min %v, max %v", c.DomainMinC, c.DomainMaxC)
	}
	return nil
}

func parseNumber(raw json.RawMessage) (float64, error) {
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, err
	}
	return v, nil
}

func parseDomain(raw json.RawMessage) (minC, maxC float64, err error) {
	if raw == nil {
		return 0, 0, &MissingKeyError{Keys: []string{"domain_c"}}
	}
	var dom map[string]json.RawMessage
	if err := json.Unmarshal(raw, &dom); err != nil {
		return 0, 0, &MissingKeyError{Keys: []string{"domain_c"}}
	}

	var missing []string
	for _, key := range []string{"max", "min"} {
		if _, ok := dom[key]; !ok {
			missing = append(missing, "domain_c."+key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return 0, 0, &MissingKeyError{Keys: missing}
	}

	if minC, err = parseNumber(dom["min"]); err != nil {
		return 0, 0, &TypeConsistencyError{Key: "domain_c.min"}
	}
	if maxC, err = parseNumber(dom["max"]); err != nil {
		return 0, 0, &TypeConsistencyError{Key: "domain_c.max"}
	}
	return minC, maxC, nil
}
