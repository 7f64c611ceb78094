// Package metrics records per-run extraction metrics in Prometheus form.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/reglet-dev/scatslx/internal/domain/extraction"
)

// Recorder holds the collectors for extraction runs on its own registry.
type Recorder struct {
	registry     *prometheus.Registry
	records      *prometheus.CounterVec
	errorEntries *prometheus.CounterVec
	plans        prometheus.Counter
	duration     prometheus.Histogram
}

// NewRecorder creates a recorder with a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		records: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scatslx_records_total",
			Help: "Records extracted from LX files by kind (site, subsystem, row, edge).",
		}, []string{"kind"}),
		errorEntries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scatslx_error_entries_total",
			Help: "Error entries reported by kind.",
		}, []string{"kind"}),
		plans: factory.NewCounter(prometheus.CounterOpts{
			Name: "scatslx_degraded_plans_total",
			Help: "Plan slots that decoded to a fallback offset.",
		}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "scatslx_extraction_duration_seconds",
			Help:    "Wall time of one extraction run.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		}),
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// RecordExtraction adds one finalized run to the collectors.
func (r *Recorder) RecordExtraction(result *extraction.Result) error {
	if result == nil {
		return fmt.Errorf("nil extraction result")
	}

	s := result.Summary
	r.records.WithLabelValues("site").Add(float64(s.Sites))
	r.records.WithLabelValues("subsystem").Add(float64(s.Subsystems))
	r.records.WithLabelValues("row").Add(float64(s.Rows))
	r.records.WithLabelValues("edge").Add(float64(s.Edges))

	for kind, n := range result.ErrorsByKind {
		r.errorEntries.WithLabelValues(kind.String()).Add(float64(n))
	}
	r.plans.Add(float64(s.DegradedPlans))
	r.duration.Observe(result.Duration.Seconds())
	return nil
}

// WriteToTextfile writes the registry in text exposition format for the
// node_exporter textfile collector.
func (r *Recorder) WriteToTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}
