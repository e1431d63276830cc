package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	GatewayRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "maibpay",
			Name:      "gateway_requests_total",
			Help:      "Outbound MAIB ECOMM requests by command and result",
		},
		[]string{"command", "result"},
	)

	PaymentsRegisteredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "maibpay",
			Name:      "payments_registered_total",
			Help:      "Transactions successfully registered with the gateway",
		},
	)

	ReconciliationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "maibpay",
			Name:      "reconciliations_total",
			Help:      "Status-check outcomes per sweep item",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(GatewayRequestsTotal, PaymentsRegisteredTotal, ReconciliationsTotal)
}

// Helpers keep call sites terse.
func IncGatewayRequest(command, result string) {
	GatewayRequestsTotal.WithLabelValues(command, result).Inc()
}

func IncReconciliation(outcome string) {
	ReconciliationsTotal.WithLabelValues(outcome).Inc()
}
