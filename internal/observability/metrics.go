package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the ETL pipeline.
type Metrics struct {
	ReadingsConsumed      prometheus.Counter
	ObservationsPublished prometheus.Counter
	TransformErrors       prometheus.Counter
	PipelineRunning       prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Station directory metrics.
	DirectoryLookups     *prometheus.CounterVec // labels: outcome={success,error,empty}
	DirectoryCache       *prometheus.CounterVec // labels: result={hit,miss}
	DirectoryAPIDuration prometheus.Histogram
	DirectoryEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		ReadingsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "humidity_etl",
			Name:      "readings_consumed_total",
			Help:      "Total station readings read from the source transport.",
		}),
		ObservationsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "humidity_etl",
			Name:      "observations_published_total",
			Help:      "Total enriched observations written to the sink.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "humidity_etl",
			Name:      "transform_errors_total",
			Help:      "Total transformation failures.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "humidity_etl",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "humidity_etl",
			Name:      "batch_size",
			Help:      "Number of readings per batch extracted from the source.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "humidity_etl",
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-transform-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		DirectoryLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "humidity_etl",
			Name:      "directory_lookups_total",
			Help:      "Station directory lookups by outcome.",
		}, []string{"outcome"}),
		DirectoryCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "humidity_etl",
			Name:      "directory_cache_total",
			Help:      "Station directory cache lookups by result.",
		}, []string{"result"}),
		DirectoryAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "humidity_etl",
			Name:      "directory_api_duration_seconds",
			Help:      "Station registry request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		DirectoryEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "humidity_etl",
			Name:      "directory_enabled",
			Help:      "1 when station directory enrichment is enabled, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.ReadingsConsumed,
		m.ObservationsPublished,
		m.TransformErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.DirectoryLookups,
		m.DirectoryCache,
		m.DirectoryAPIDuration,
		m.DirectoryEnabled,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		ReadingsConsumed:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "humidity_etl", Name: "readings_consumed_total"}),
		ObservationsPublished:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "humidity_etl", Name: "observations_published_total"}),
		TransformErrors:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "humidity_etl", Name: "transform_errors_total"}),
		PipelineRunning:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "humidity_etl", Name: "pipeline_running"}),
		BatchSize:               prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "humidity_etl", Name: "batch_size"}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "humidity_etl", Name: "batch_processing_duration_seconds"}),
		DirectoryLookups:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "humidity_etl", Name: "directory_lookups_total"}, []string{"outcome"}),
		DirectoryCache:          prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "humidity_etl", Name: "directory_cache_total"}, []string{"result"}),
		DirectoryAPIDuration:    prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "humidity_etl", Name: "directory_api_duration_seconds"}),
		DirectoryEnabled:        prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "humidity_etl", Name: "directory_enabled"}),
	}
}
