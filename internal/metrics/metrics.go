package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "riparo_orders_created_total",
		Help: "Number of repair orders created.",
	})

	OrderTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "riparo_order_transitions_total",
		Help: "Accepted order status transitions by from/to status.",
	}, []string{"from", "to"})

	QuoteRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "riparo_quote_requests_total",
		Help: "Number of public quote requests served.",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "riparo_http_request_duration_seconds",
		Help:    "HTTP request latency by method, route and status code.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)
