package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes application-level instruments on the default registry.
type Metrics struct {
	chargesCreated *prometheus.CounterVec
	webhookEvents  *prometheus.CounterVec
	payoutAttempts *prometheus.CounterVec
	payoutDuration prometheus.Histogram
	queueDepth     prometheus.Gauge
}

func New() *Metrics {
	return &Metrics{
		chargesCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fiado_charges_created_total",
			Help: "Charges created against the payment gateway.",
		}, []string{"result"}),
		webhookEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fiado_webhook_events_total",
			Help: "Webhook payment events by processing outcome.",
		}, []string{"outcome"}),
		payoutAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fiado_payout_attempts_total",
			Help: "Payout attempts by outcome.",
		}, []string{"outcome"}),
		payoutDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "fiado_payout_attempt_duration_seconds",
			Help:    "Duration of payout attempts including gateway calls.",
			Buckets: prometheus.DefBuckets,
		}),
		queueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "fiado_payout_queue_depth",
			Help: "Payout jobs waiting to be claimed.",
		}),
	}
}

func (m *Metrics) RecordChargeCreated(result string) {
	if m == nil {
		return
	}
	m.chargesCreated.WithLabelValues(result).Inc()
}

// RecordWebhookEvent counts one processed event. Outcome is one of
// completed, duplicate, unknown_txid, error.
func (m *Metrics) RecordWebhookEvent(outcome string) {
	if m == nil {
		return
	}
	m.webhookEvents.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordPayoutAttempt(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.payoutAttempts.WithLabelValues(outcome).Inc()
	m.payoutDuration.Observe(seconds)
}

func (m *Metrics) SetQueueDepth(n int64) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(n))
}
