package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WebhookEventUnverified labels deliveries that failed signature verification.
const WebhookEventUnverified = "unverified"

const webhookEventOther = "other"

var knownWebhookEvents = map[string]struct{}{
	"payment.captured":     {},
	"payment.failed":       {},
	WebhookEventUnverified: {},
}

// WebhookMetrics records gateway webhook outcomes and handling latency.
type WebhookMetrics struct {
	outcomes *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewWebhookMetrics registers the webhook metrics on the provided registerer.
func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	if reg == nil {
		return &WebhookMetrics{}
	}
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_webhook_events_total",
		Help: "Payment webhook deliveries by event type and outcome.",
	}, []string{"event", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "payment_webhook_duration_seconds",
		Help:    "Time spent applying a payment webhook.",
		Buckets: prometheus.DefBuckets,
	}, []string{"event"})
	reg.MustRegister(outcomes, duration)
	return &WebhookMetrics{outcomes: outcomes, duration: duration}
}

// Observe records one handled delivery.
func (m *WebhookMetrics) Observe(event, outcome string, took time.Duration) {
	if m == nil || m.outcomes == nil {
		return
	}
	event = webhookEventLabel(event)
	m.outcomes.WithLabelValues(event, normalizeLabel(outcome)).Inc()
	m.duration.WithLabelValues(event).Observe(took.Seconds())
}

// RatingMetrics counts product rating recomputes.
type RatingMetrics struct {
	recomputes *prometheus.CounterVec
}

// NewRatingMetrics registers the rating metrics on the provided registerer.
func NewRatingMetrics(reg prometheus.Registerer) *RatingMetrics {
	if reg == nil {
		return &RatingMetrics{}
	}
	recomputes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "product_rating_recomputes_total",
		Help: "Product rating recomputes by trigger and result.",
	}, []string{"trigger", "result"})
	reg.MustRegister(recomputes)
	return &RatingMetrics{recomputes: recomputes}
}

// IncRecompute counts one recompute attempt.
func (m *RatingMetrics) IncRecompute(trigger string, err error) {
	if m == nil || m.recomputes == nil {
		return
	}
	m.recomputes.WithLabelValues(normalizeLabel(trigger), resultLabel(err)).Inc()
}

// OutboxMetrics counts publish attempts by event type.
type OutboxMetrics struct {
	published *prometheus.CounterVec
}

// NewOutboxMetrics registers the outbox metrics on the provided registerer.
func NewOutboxMetrics(reg prometheus.Registerer) *OutboxMetrics {
	if reg == nil {
		return &OutboxMetrics{}
	}
	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_publish_total",
		Help: "Outbox publish attempts by event type and result.",
	}, []string{"event_type", "result"})
	reg.MustRegister(published)
	return &OutboxMetrics{published: published}
}

// IncPublish counts one publish attempt; result is "ok", "retry" or "terminal".
func (m *OutboxMetrics) IncPublish(eventType, result string) {
	if m == nil || m.published == nil {
		return
	}
	m.published.WithLabelValues(normalizeLabel(eventType), normalizeLabel(result)).Inc()
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// webhookEventLabel bounds the event label to a fixed set of series.
func webhookEventLabel(event string) string {
	if event == "" {
		return "unknown"
	}
	if _, ok := knownWebhookEvents[event]; ok {
		return event
	}
	return webhookEventOther
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
