// Package metrics exposes the Prometheus collectors of the bridge.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Webhook delivery metrics
	DeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netbox_catalyst_bridge_deliveries_total",
			Help: "Total number of webhook deliveries by outcome",
		},
		[]string{"outcome", "status"},
	)

	DeliveryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "netbox_catalyst_bridge_delivery_duration_seconds",
			Help:    "Duration of webhook delivery handling in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Controller metrics
	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netbox_catalyst_bridge_controller_logins_total",
			Help: "Total number of Catalyst Center login exchanges by result",
		},
		[]string{"result"},
	)

	ControllerRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netbox_catalyst_bridge_controller_requests_total",
			Help: "Total number of Catalyst Center API calls by operation and status code",
		},
		[]string{"operation", "code"},
	)

	ControllerRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "netbox_catalyst_bridge_controller_request_duration_seconds",
			Help:    "Duration of Catalyst Center API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// ObserveDelivery records the outcome of one webhook delivery.
func ObserveDelivery(outcome string, status int, elapsed time.Duration) {
	DeliveriesTotal.WithLabelValues(outcome, strconv.Itoa(status)).Inc()
	DeliveryDuration.Observe(elapsed.Seconds())
}

// ObserveControllerRequest records one controller call. A zero code stands for a transport failure.
func ObserveControllerRequest(operation string, code int, elapsed time.Duration) {
	label := "error"
	if code > 0 {
		label = strconv.Itoa(code)
	}
	ControllerRequestsTotal.WithLabelValues(operation, label).Inc()
	ControllerRequestDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}
