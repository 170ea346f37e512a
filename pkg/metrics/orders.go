package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics records checkout, webhook and notification outcomes.
type OrderMetrics struct {
	checkoutDuration *prometheus.HistogramVec
	webhookOutcome   *prometheus.CounterVec
	notifyDelivery   *prometheus.CounterVec
	ordersCreated    *prometheus.CounterVec
}

// NewOrderMetrics registers the order pipeline metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	checkoutDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of checkout transactions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"payment_method"})
	webhookOutcome := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_webhook_total",
		Help: "Payment webhook deliveries by outcome.",
	}, []string{"outcome"})
	notifyDelivery := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_delivery_total",
		Help: "Notification deliveries by channel and outcome.",
	}, []string{"channel", "outcome"})
	ordersCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders materialized at checkout by payment method.",
	}, []string{"payment_method"})
	reg.MustRegister(checkoutDuration, webhookOutcome, notifyDelivery, ordersCreated)
	return &OrderMetrics{
		checkoutDuration: checkoutDuration,
		webhookOutcome:   webhookOutcome,
		notifyDelivery:   notifyDelivery,
		ordersCreated:    ordersCreated,
	}
}

// ObserveCheckout records the duration of one checkout transaction.
func (m *OrderMetrics) ObserveCheckout(paymentMethod string, duration time.Duration) {
	if m == nil || m.checkoutDuration == nil {
		return
	}
	m.checkoutDuration.WithLabelValues(normalizeLabel(paymentMethod)).Observe(duration.Seconds())
}

// IncWebhook increments the webhook counter for the given outcome
// (applied, duplicate, stale, invalid_signature, error).
func (m *OrderMetrics) IncWebhook(outcome string) {
	if m == nil || m.webhookOutcome == nil {
		return
	}
	m.webhookOutcome.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncNotification increments the delivery counter for a channel/outcome pair.
func (m *OrderMetrics) IncNotification(channel, outcome string) {
	if m == nil || m.notifyDelivery == nil {
		return
	}
	m.notifyDelivery.WithLabelValues(normalizeLabel(channel), normalizeLabel(outcome)).Inc()
}

// IncOrderCreated increments the created-order counter.
func (m *OrderMetrics) IncOrderCreated(paymentMethod string) {
	if m == nil || m.ordersCreated == nil {
		return
	}
	m.ordersCreated.WithLabelValues(normalizeLabel(paymentMethod)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
