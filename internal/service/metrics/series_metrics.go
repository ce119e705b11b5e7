package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	SeriesLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "factpull",
			Subsystem: "series",
			Name:      "latency_seconds",
			Help:      "Latency of series endpoints",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	SeriesErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "factpull",
			Subsystem: "series",
			Name:      "errors_total",
			Help:      "Errors by series endpoint",
		},
		[]string{"endpoint"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(SeriesLatency, SeriesErrors)
	})
}
