// Package metrics exposes the Prometheus instrumentation for uploads and
// pipeline runs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the registered collectors. One instance is created at
// startup and shared by the services layer.
type Metrics struct {
	UploadsTotal     *prometheus.CounterVec
	PipelineRuns     *prometheus.CounterVec
	RowsCleaned      prometheus.Counter
	OutliersFlagged  prometheus.Counter
	PipelineDuration prometheus.Histogram
}

// New registers the collectors on the given registerer and returns them.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		UploadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tabcleaner_uploads_total",
			Help: "Uploads received, by outcome.",
		}, []string{"outcome"}),
		PipelineRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tabcleaner_pipeline_runs_total",
			Help: "Cleaning pipeline runs, by outcome.",
		}, []string{"outcome"}),
		RowsCleaned: factory.NewCounter(prometheus.CounterOpts{
			Name: "tabcleaner_rows_cleaned_total",
			Help: "Rows in tables produced by successful pipeline runs.",
		}),
		OutliersFlagged: factory.NewCounter(prometheus.CounterOpts{
			Name: "tabcleaner_outliers_flagged_total",
			Help: "Rows flagged as outliers across all runs.",
		}),
		PipelineDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "tabcleaner_pipeline_duration_seconds",
			Help:    "Wall time of one cleaning pipeline run.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
