package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds submission gateway Prometheus metrics.
type Metrics struct {
	Submissions    *prometheus.CounterVec
	SubmitDuration prometheus.Histogram
}

// New creates and registers gateway metrics.
func New() *Metrics {
	return &Metrics{
		Submissions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ctfbot_submissions_total",
			Help: "Total flag submissions by outcome",
		}, []string{"outcome"}),
		SubmitDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ctfbot_submit_duration_seconds",
			Help:    "End-to-end submission processing time",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
