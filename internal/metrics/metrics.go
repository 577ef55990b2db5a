package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/gokatarajesh/survey-builder/internal/survey"
)

// Metrics holds the Prometheus collectors for survey sessions.
type Metrics struct {
	Commands           *prometheus.CounterVec
	LivePreviewChanges *prometheus.CounterVec
	ActiveSessions     prometheus.Gauge
	SessionsEvicted    prometheus.Counter
	SnapshotErrors     *prometheus.CounterVec
}

// New registers all collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Commands: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "survey_commands_total",
				Help: "Dispatched survey commands by kind and outcome",
			},
			[]string{"command", "outcome"},
		),
		LivePreviewChanges: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "survey_live_preview_transitions_total",
				Help: "Live preview status transitions",
			},
			[]string{"from", "to"},
		),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "survey_sessions_active",
			Help: "Authoring sessions currently held in memory",
		}),
		SessionsEvicted: factory.NewCounter(prometheus.CounterOpts{
			Name: "survey_sessions_evicted_total",
			Help: "Sessions evicted after sitting idle",
		}),
		SnapshotErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "survey_snapshot_errors_total",
				Help: "Snapshot cache failures by operation",
			},
			[]string{"op"},
		),
	}
}

// Observe records one dispatched command. It matches survey.Listener.
func (m *Metrics) Observe(change survey.Change) {
	outcome := "applied"
	if !change.Applied {
		outcome = "noop"
	}
	m.Commands.WithLabelValues(string(change.Command.Kind()), outcome).Inc()

	from, to := change.Previous.LivePreview.Status, change.Current.LivePreview.Status
	if from != to {
		m.LivePreviewChanges.WithLabelValues(string(from), string(to)).Inc()
	}
}
