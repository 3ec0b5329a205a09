package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus instruments of the turn engine. Construct
// with New and pass to the engine via espalier.WithMetrics; ObserveConflict
// additionally satisfies controls.ConflictObserver for hosts that want
// handler conflicts counted.
type Metrics struct {
	turns            prometheus.Counter
	turnErrors       prometheus.Counter
	handlerConflicts *prometheus.CounterVec
	acts             *prometheus.CounterVec
	turnDuration     prometheus.Histogram
}

// New creates the metric set and registers it on reg (nil skips
// registration, which is handy in tests).
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		turns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "espalier",
			Name:      "turns_total",
			Help:      "Turns processed.",
		}),
		turnErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "espalier",
			Name:      "turn_errors_total",
			Help:      "Turns that ended in the error containment path.",
		}),
		handlerConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "espalier",
			Name:      "handler_conflicts_total",
			Help:      "Inputs matched by more than one handler on a control.",
		}, []string{"control"}),
		acts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "espalier",
			Name:      "acts_emitted_total",
			Help:      "System acts emitted, by act name.",
		}, []string{"act"}),
		turnDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "espalier",
			Name:      "turn_duration_seconds",
			Help:      "End-to-end turn processing time.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(m.turns, m.turnErrors, m.handlerConflicts, m.acts, m.turnDuration)
	}
	return m
}

// ObserveTurn records a completed turn.
func (m *Metrics) ObserveTurn(d time.Duration) {
	m.turns.Inc()
	m.turnDuration.Observe(d.Seconds())
}

// ObserveTurnError records a turn that hit the containment path.
func (m *Metrics) ObserveTurnError() {
	m.turnErrors.Inc()
}

// ObserveAct records one emitted system act.
func (m *Metrics) ObserveAct(name string) {
	m.acts.WithLabelValues(name).Inc()
}

// ObserveConflict records a handler conflict. The handler names are already
// logged by the control; the metric only tracks volume per control.
func (m *Metrics) ObserveConflict(controlID string, handlers []string) {
	m.handlerConflicts.WithLabelValues(controlID).Inc()
}
