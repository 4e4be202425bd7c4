package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds leaderboard Prometheus metrics.
type Metrics struct {
	Rebuilds        prometheus.Counter
	Inconsistencies prometheus.Counter
}

// New creates and registers leaderboard metrics.
func New() *Metrics {
	return &Metrics{
		Rebuilds: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ctfbot_leaderboard_rebuilds_total",
			Help: "Total number of full leaderboard rebuilds from the ledger",
		}),
		Inconsistencies: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ctfbot_leaderboard_inconsistencies_total",
			Help: "Total number of detected cache-vs-ledger score divergences",
		}),
	}
}
