package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wxpipe/humidity-etl/internal/domain"
	"github.com/wxpipe/humidity-etl/internal/esat"
)

// ReadingTransformer implements Transformer using the domain transform
// functions with optional station directory enrichment.
type ReadingTransformer struct {
	coeffs    esat.Coefficients
	directory domain.StationDirectory
	logger    *slog.Logger
	source    string
}

// NewTransformer creates a ReadingTransformer. Pass a nil directory to
// disable station metadata enrichment. The source name is stamped on every
// observation so downstream consumers can tell transports apart.
func NewTransformer(coeffs esat.Coefficients, directory domain.StationDirectory, logger *slog.Logger, source string) *ReadingTransformer {
	return &ReadingTransformer{
		coeffs:    coeffs,
		directory: directory,
		logger:    logger,
		source:    source,
	}
}

func (t *ReadingTransformer) Transform(ctx context.Context, raw domain.RawReading) (domain.Observation, error) {
	rec, err := domain.ParseReading(raw)
	if err != nil {
		return domain.Observation{}, err
	}
	if err := domain.ValidateReading(rec, t.coeffs); err != nil {
		return domain.Observation{}, fmt.Errorf("validate station reading: %w", err)
	}

	obs := domain.Enrich(rec, t.coeffs)
	obs = domain.EnrichWithStationMeta(ctx, obs, t.directory, t.logger)
	obs.Source = t.source

	return obs, nil
}
