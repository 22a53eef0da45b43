// Command genmock generates synthetic weather-station telemetry fixtures
// for the ETL test suites. It runs the actual domain transformation on
// every generated reading so enriched fixtures match real pipeline
// behavior.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  --stations 3 --readings 8 \
//	  --readings-out data/mock/station_readings.json \
//	  --csv-out data/mock/station_readings.csv \
//	  --observations-out data/mock/observations.json
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/pflag"

	"github.com/wxpipe/humidity-etl/internal/domain"
	"github.com/wxpipe/humidity-etl/internal/esat"
)

var cities = []string{"austin", "tromso", "lisbon", "nairobi", "sapporo", "denver", "perth", "reykjavik"}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	stations := pflag.Int("stations", 3, "number of stations to simulate")
	readings := pflag.Int("readings", 8, "readings per station")
	start := pflag.String("start", "2025-06-14T00:00:00Z", "timestamp of the first reading (RFC3339)")
	interval := pflag.Duration("interval", 10*time.Minute, "spacing between readings")
	seed := pflag.Int64("seed", 1, "random walk seed")
	readingsOut := pflag.String("readings-out", "data/mock/station_readings.json", "output path for the raw readings JSON fixture")
	csvOut := pflag.String("csv-out", "", "optional output path for a CSV export of the readings")
	obsOut := pflag.String("observations-out", "", "optional output path for the enriched observations fixture")
	pflag.Parse()

	startAt, err := time.Parse(time.RFC3339, *start)
	if err != nil {
		return fmt.Errorf("invalid --start: %w", err)
	}
	if *stations < 1 || *readings < 1 {
		return fmt.Errorf("--stations and --readings must be positive")
	}

	// Fix the clock so ProcessedAt and observation IDs are reproducible.
	domain.SetClock(clockwork.NewFakeClockAt(startAt.Add(24 * time.Hour)))
	defer domain.SetClock(nil)

	rng := rand.New(rand.NewSource(*seed))
	coeffs := esat.Default()

	allReadings := generate(rng, *stations, *readings, startAt, *interval)
	log.Printf("generated %d readings across %d stations", len(allReadings), *stations)

	observations, err := enrichAll(allReadings, coeffs)
	if err != nil {
		return err
	}

	if err := writeJSON(*readingsOut, allReadings); err != nil {
		return fmt.Errorf("writing readings fixture: %w", err)
	}
	log.Printf("wrote readings fixture: %s", *readingsOut)

	if *csvOut != "" {
		if err := writeCSV(*csvOut, allReadings); err != nil {
			return fmt.Errorf("writing CSV export: %w", err)
		}
		log.Printf("wrote CSV export: %s", *csvOut)
	}

	if *obsOut != "" {
		if err := writeJSON(*obsOut, observations); err != nil {
			return fmt.Errorf("writing observations fixture: %w", err)
		}
		log.Printf("wrote observations fixture: %s", *obsOut)
	}

	printStats(allReadings, observations)
	return nil
}

// ── Telemetry synthesis ──

// stationState carries the random-walk state of one simulated station.
type stationState struct {
	id       string
	channels int // 0: humidity only, 1: dewpoint only, 2: both
	temp     float64
	rh       float64
	depress  float64 // dewpoint depression below air temperature
	pressure float64
	battery  float64
	seq      int

	hasPressure bool
	hasBattery  bool
}

func newStation(rng *rand.Rand, index int) *stationState {
	return &stationState{
		id:          fmt.Sprintf("wxs-%s-%02d", cities[index%len(cities)], index+1),
		channels:    index % 3,
		temp:        12 + rng.Float64()*14,
		rh:          40 + rng.Float64()*40,
		depress:     2 + rng.Float64()*6,
		pressure:    1000 + rng.Float64()*20,
		battery:     3.7 + rng.Float64()*0.4,
		seq:         rng.Intn(1000),
		hasPressure: index%4 != 3,
		hasBattery:  index%5 != 4,
	}
}

func (s *stationState) step(rng *rand.Rand) {
	s.temp += (rng.Float64() - 0.5) * 0.8
	s.rh = clamp(s.rh+(rng.Float64()-0.5)*4, 5, 100)
	s.depress = clamp(s.depress+(rng.Float64()-0.5)*0.6, 0.5, 12)
	s.pressure += (rng.Float64() - 0.5) * 1.2
	s.battery -= rng.Float64() * 0.004
	s.seq++
}

func (s *stationState) reading(at time.Time) domain.StationReading {
	r := domain.StationReading{
		StationID:    s.id,
		Timestamp:    at,
		TemperatureC: ptr(round2(s.temp)),
		Sequence:     iptr(s.seq),
	}
	if s.channels == 0 || s.channels == 2 {
		r.HumidityPct = ptr(round2(s.rh))
	}
	if s.channels == 1 || s.channels == 2 {
		r.DewpointC = ptr(round2(s.temp - s.depress))
	}
	if s.hasPressure {
		r.PressureHPa = ptr(round2(s.pressure))
	}
	if s.hasBattery {
		r.BatteryV = ptr(math.Round(s.battery*100) / 100)
	}
	return r
}

func generate(rng *rand.Rand, stations, perStation int, startAt time.Time, interval time.Duration) []domain.StationReading {
	out := make([]domain.StationReading, 0, stations*perStation)
	for i := 0; i < stations; i++ {
		st := newStation(rng, i)
		at := startAt
		for j := 0; j < perStation; j++ {
			out = append(out, st.reading(at))
			st.step(rng)
			at = at.Add(interval)
		}
	}
	return out
}

// enrichAll runs the real pipeline transformation on each reading.
func enrichAll(readings []domain.StationReading, coeffs esat.Coefficients) ([]domain.Observation, error) {
	out := make([]domain.Observation, 0, len(readings))
	for i, sr := range readings {
		if err := domain.ValidateReading(sr, coeffs); err != nil {
			return nil, fmt.Errorf("generated reading %d is invalid: %w", i, err)
		}
		obs := domain.Enrich(sr, coeffs)
		obs.Source = "mock"
		out = append(out, obs)
	}
	return out, nil
}

// ── Output ──

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func writeCSV(path string, readings []domain.StationReading) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	rows := make([]*domain.CSVReading, 0, len(readings))
	for _, sr := range readings {
		row := domain.NewCSVReading(sr)
		rows = append(rows, &row)
	}
	data, err := gocsv.MarshalString(&rows)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(data), 0o600)
}

// ── Stats ──

func printStats(readings []domain.StationReading, observations []domain.Observation) {
	humidityOnly, dewpointOnly, both := 0, 0, 0
	for _, r := range readings {
		switch {
		case r.HumidityPct != nil && r.DewpointC != nil:
			both++
		case r.HumidityPct != nil:
			humidityOnly++
		case r.DewpointC != nil:
			dewpointOnly++
		}
	}

	comfort := map[string]int{}
	minDew, maxDew := math.Inf(1), math.Inf(-1)
	withQ := 0
	for i := range observations {
		o := &observations[i]
		comfort[o.Comfort]++
		if o.DewpointC != nil {
			minDew = math.Min(minDew, *o.DewpointC)
			maxDew = math.Max(maxDew, *o.DewpointC)
		}
		if o.SpecificHumidity != nil {
			withQ++
		}
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total: %d readings, %d observations\n", len(readings), len(observations))
	fmt.Printf("Channels: humidity-only=%d, dewpoint-only=%d, both=%d\n", humidityOnly, dewpointOnly, both)
	fmt.Printf("Comfort: dry=%d, comfortable=%d, muggy=%d, oppressive=%d\n",
		comfort[domain.ComfortDry], comfort[domain.ComfortComfortable],
		comfort[domain.ComfortMuggy], comfort[domain.ComfortOppressive])
	fmt.Printf("Dewpoint range: %.2f .. %.2f degC\n", minDew, maxDew)
	fmt.Printf("With specific humidity: %d\n", withQ)

	if len(observations) > 0 {
		o := &observations[0]
		fmt.Println("\nFirst observation:")
		fmt.Printf("  ID: %s\n", o.ID)
		fmt.Printf("  StationID: %s\n", o.StationID)
		fmt.Printf("  TemperatureC: %g, RH: %g%%\n", o.TemperatureC, o.RelativeHumidity)
		if o.DewpointC != nil {
			fmt.Printf("  DewpointC: %g\n", *o.DewpointC)
		}
		fmt.Printf("  Comfort: %s\n", o.Comfort)
		fmt.Printf("  TimeBucket: %s\n", o.TimeBucket.Format(time.RFC3339))
	}
}

// ── Helpers ──

func ptr(v float64) *float64 { return &v }
func iptr(v int) *int        { return &v }

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
