package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bizlink/digest-engine/internal/digest"
	"github.com/bizlink/digest-engine/internal/domain"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	DigestsSent       *prometheus.CounterVec
	IndividualSent    *prometheus.CounterVec
	GroupsSkipped     *prometheus.CounterVec
	RecipientFailures prometheus.Counter
	EventsIngested    *prometheus.CounterVec
	RunDuration       prometheus.Histogram
}

// New registers all instruments with the given Prometheus registerer and
// returns the populated Metrics struct.
// Using a custom registry (instead of prometheus.DefaultRegisterer) keeps
// tests isolated and avoids global state.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DigestsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "digests_sent_total",
			Help: "Total number of digest messages dispatched.",
		}, []string{"kind"}),

		IndividualSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "individual_notifications_sent_total",
			Help: "Total number of events dispatched via the individual path.",
		}, []string{"kind"}),

		GroupsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "groups_skipped_total",
			Help: "Total number of groups skipped, by reason (unrouted_kind, no_recipients, render_failed).",
		}, []string{"reason"}),

		RecipientFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recipient_failures_total",
			Help: "Total number of per-recipient delivery failures.",
		}),

		EventsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "events_ingested_total",
			Help: "Total number of events accepted into the queue, by source (http, kafka).",
		}, []string{"source"}),

		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "run_duration_seconds",
			Help:    "Wall-clock duration of one complete engine run.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		m.DigestsSent,
		m.IndividualSent,
		m.GroupsSkipped,
		m.RecipientFailures,
		m.EventsIngested,
		m.RunDuration,
	)

	return m
}

// EngineHooks returns the metric callbacks expected by digest.MetricHooks.
// Centralises the prometheus observation calls so the engine package stays
// import-free.
func (m *Metrics) EngineHooks() digest.MetricHooks {
	return digest.MetricHooks{
		OnDigestSent: func(kind domain.Kind) {
			m.DigestsSent.WithLabelValues(string(kind)).Inc()
		},
		OnIndividualSent: func(kind domain.Kind) {
			m.IndividualSent.WithLabelValues(string(kind)).Inc()
		},
		OnRecipientFailure: func(n int) {
			if n > 0 {
				m.RecipientFailures.Add(float64(n))
			}
		},
		OnGroupSkipped: func(reason string) {
			m.GroupsSkipped.WithLabelValues(reason).Inc()
		},
		OnRunCompleted: func(elapsed time.Duration) {
			m.RunDuration.Observe(elapsed.Seconds())
		},
	}
}
