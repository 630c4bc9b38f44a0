package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(decodeLatencyMs) }

var decodeLatencyMs = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "qr_decode_latency_ms",
		Help:    "QR decode latency distribution in milliseconds.",
		Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000},
	},
	[]string{"found"},
)

func ObserveDecode(d time.Duration, found bool) {
	decodeLatencyMs.WithLabelValues(strconv.FormatBool(found)).
		Observe(float64(d.Milliseconds()))
}
