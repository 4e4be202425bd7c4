package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds rate limiter Prometheus metrics.
type Metrics struct {
	Denials   prometheus.Counter
	FailOpens prometheus.Counter
	Resets    prometheus.Counter
}

// New creates and registers rate limiter metrics.
func New() *Metrics {
	return &Metrics{
		Denials: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ctfbot_ratelimit_denials_total",
			Help: "Total number of submissions denied by the per-team rate limit",
		}),
		FailOpens: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ctfbot_ratelimit_fail_opens_total",
			Help: "Total number of checks allowed because the bucket store was unavailable",
		}),
		Resets: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ctfbot_ratelimit_resets_total",
			Help: "Total number of admin-triggered bucket resets",
		}),
	}
}
