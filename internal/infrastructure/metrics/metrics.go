package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Channel-API Metrics
var (
	// Webhook deliveries by channel and outcome (stored, empty, error)
	WebhooksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agenthub",
			Subsystem: "channel_api",
			Name:      "webhooks_total",
			Help:      "Total inbound webhook deliveries",
		},
		[]string{"channel", "outcome"},
	)

	// Inbound processor outcomes
	ProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agenthub",
			Subsystem: "channel_api",
			Name:      "inbound_processed_total",
			Help:      "Inbound messages processed by outcome",
		},
		[]string{"outcome"},
	)

	// Dispatch outcomes by channel
	DispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agenthub",
			Subsystem: "channel_api",
			Name:      "dispatch_total",
			Help:      "Outbound dispatch attempts by outcome",
		},
		[]string{"channel", "outcome"},
	)

	// Reply generation duration
	GenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "agenthub",
			Subsystem: "channel_api",
			Name:      "generation_duration_seconds",
			Help:      "Reply generation duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	// Transport send duration
	SendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "agenthub",
			Subsystem: "channel_api",
			Name:      "send_duration_seconds",
			Help:      "Channel transport send duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 15},
		},
		[]string{"channel"},
	)
)

// RecordWebhook records one webhook delivery.
func RecordWebhook(channel, outcome string) {
	WebhooksTotal.WithLabelValues(channel, outcome).Inc()
}

// RecordProcessed records an inbound processor outcome.
func RecordProcessed(outcome string) {
	ProcessedTotal.WithLabelValues(outcome).Inc()
}

// RecordDispatch records an outbound dispatch outcome.
func RecordDispatch(channel, outcome string) {
	DispatchTotal.WithLabelValues(channel, outcome).Inc()
}
