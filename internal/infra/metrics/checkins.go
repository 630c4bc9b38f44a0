package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(checkinsTotal) }

var checkinsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "checkins_total",
		Help: "Check-in submissions by outcome (activated/already_activated/token_not_found/token_invalid/decode_failed).",
	},
	[]string{"outcome"},
)

func IncCheckin(outcome string) {
	checkinsTotal.WithLabelValues(outcome).Inc()
}
