package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors of the compose service. Collectors are
// registered on the Registerer given to New so tests can use a private
// registry.
type Metrics struct {
	Composed           *prometheus.CounterVec
	ValidationFailures *prometheus.CounterVec
	Drafts             prometheus.Gauge
	DraftsEvicted      prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Composed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chatmsg",
			Name:      "messages_composed_total",
			Help:      "Messages projected for hand-off, by source (compose or draft).",
		}, []string{"source"}),
		ValidationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chatmsg",
			Name:      "validation_failures_total",
			Help:      "Rejected builder calls and recipe steps, by error kind.",
		}, []string{"kind"}),
		Drafts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "chatmsg",
			Name:      "drafts",
			Help:      "Drafts currently held in memory.",
		}),
		DraftsEvicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chatmsg",
			Name:      "drafts_evicted_total",
			Help:      "Drafts dropped after being idle too long.",
		}),
	}
	reg.MustRegister(m.Composed, m.ValidationFailures, m.Drafts, m.DraftsEvicted)
	return m
}
