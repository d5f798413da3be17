// Package metrics exposes the Prometheus instruments for the HTTP layer
// and the transaction lifecycle.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var histogramRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "fintrack",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
	},
	[]string{"method", "status"},
)

var counterTransactionOps = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "fintrack",
		Subsystem: "transactions",
		Name:      "operations_total",
	},
	[]string{"operation"},
)

// ObserveRequest records one completed HTTP request.
func ObserveRequest(method string, status int, elapsed time.Duration) {
	histogramRequestDuration.
		WithLabelValues(method, statusClass(status)).
		Observe(elapsed.Seconds())
}

// CountTransactionOp bumps the counter for a successful lifecycle
// operation (create, update, delete).
func CountTransactionOp(operation string) {
	counterTransactionOps.WithLabelValues(operation).Inc()
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
