// Package metrics provides observability for the verification gateway.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the gateway's Prometheus metrics.
type Metrics struct {
	// Verification outcomes by result: accepted, invalid, replay,
	// config_mismatch, error.
	VerificationsTotal *prometheus.CounterVec

	// Latency of the external verifier capability call.
	VerifierLatency prometheus.Histogram

	// Configs created via the companion endpoint.
	ConfigsCreated prometheus.Counter
}

// New creates and registers the gateway metrics.
func New() *Metrics {
	return &Metrics{
		VerificationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "seatswap_verifications_total",
			Help: "Total proof verifications by outcome",
		}, []string{"outcome"}),

		VerifierLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "seatswap_verifier_call_duration_seconds",
			Help:    "Duration of external verifier capability calls",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),

		ConfigsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "seatswap_verification_configs_created_total",
			Help: "Total verification configs created",
		}),
	}
}

// IncrementOutcome records one verification outcome.
func (m *Metrics) IncrementOutcome(outcome string) {
	if m != nil {
		m.VerificationsTotal.WithLabelValues(outcome).Inc()
	}
}

// ObserveVerifierLatency records one external capability call.
func (m *Metrics) ObserveVerifierLatency(d time.Duration) {
	if m != nil {
		m.VerifierLatency.Observe(d.Seconds())
	}
}

// IncrementConfigsCreated records one created config.
func (m *Metrics) IncrementConfigsCreated() {
	if m != nil {
		m.ConfigsCreated.Inc()
	}
}
