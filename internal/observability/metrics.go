// Package observability holds the Prometheus collectors shared across the service.
package observability

import "github.com/prometheus/client_golang/prometheus"

var (
	WebhookEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "inbox_webhook_events_total", Help: "Provider callbacks by outcome"},
		[]string{"outcome"},
	)
	IngestedMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "inbox_ingested_messages_total", Help: "Persisted messages"},
		[]string{"kind", "direction"},
	)
	StreamSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "inbox_stream_subscribers", Help: "Open realtime subscriptions"},
	)
	StreamDrops = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "inbox_stream_dropped_total", Help: "Subscribers removed after a failed delivery"},
	)
	QRAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "inbox_qr_attempts_total", Help: "QR fetch attempts per strategy"},
		[]string{"strategy", "result"},
	)
	AuditWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "inbox_audit_writes_total", Help: "Raw payload audit writes"},
		[]string{"result"},
	)
	OutboundSends = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "inbox_outbound_sends_total", Help: "Outbound provider sends"},
		[]string{"result"},
	)
	// ProviderBreakerState follows gobreaker.State: 0 closed, 1 half-open, 2 open.
	ProviderBreakerState = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "inbox_provider_breaker_state", Help: "Provider circuit breaker state"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inbox_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		WebhookEvents, IngestedMessages, StreamSubscribers, StreamDrops, QRAttempts, AuditWrites, OutboundSends,
		ProviderBreakerState, HTTPDuration)
}
