package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(adminCommandsTotal) }

var adminCommandsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "admin_commands_total",
		Help: "Admin command invocations by command and authorization result.",
	},
	[]string{"command", "result"},
)

func IncAdminCommand(command, result string) {
	adminCommandsTotal.WithLabelValues(command, result).Inc()
}
