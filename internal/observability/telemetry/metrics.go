package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Business metrics
	FulfillmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fulfiller_fulfillments_total",
		Help: "Total dialog turns dispatched to a fulfiller",
	}, []string{"state", "intent", "status"})

	FulfillmentLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fulfiller_fulfillment_latency_seconds",
		Help:    "Fulfiller strategy latency",
		Buckets: prometheus.DefBuckets,
	})

	// Transport metrics
	WebhookRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fulfiller_webhook_requests_total",
		Help: "Total webhook requests by outcome",
	}, []string{"status"})
)
