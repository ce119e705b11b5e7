package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain repository.Metrics using Prometheus.
type Recorder struct {
	fetches     *prometheus.CounterVec
	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec
	extractions *prometheus.HistogramVec
	errorsTotal *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		fetches: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "factpull_upstream_fetches_total",
				Help: "Upstream EDGAR fetches by resource and outcome",
			},
			[]string{"resource", "outcome"},
		),
		cacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "factpull_cache_hits_total",
				Help: "Cache hits by resource",
			},
			[]string{"resource"},
		),
		cacheMisses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "factpull_cache_misses_total",
				Help: "Cache misses by resource",
			},
			[]string{"resource"},
		),
		extractions: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "factpull_extraction_duration_seconds",
				Help:    "Duration of series extraction pipeline runs",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"metric"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "factpull_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
	}
}

// RecordFetch records an upstream fetch attempt.
func (r *Recorder) RecordFetch(resource, outcome string) {
	r.fetches.WithLabelValues(resource, outcome).Inc()
}

// RecordCacheHit records a cache hit for a resource class.
func (r *Recorder) RecordCacheHit(resource string) {
	r.cacheHits.WithLabelValues(resource).Inc()
}

// RecordCacheMiss records a cache miss for a resource class.
func (r *Recorder) RecordCacheMiss(resource string) {
	r.cacheMisses.WithLabelValues(resource).Inc()
}

// RecordExtraction records one pipeline run duration.
func (r *Recorder) RecordExtraction(metric string, seconds float64) {
	r.extractions.WithLabelValues(metric).Observe(seconds)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}
