// Package metrics provides opt-in Prometheus observability for a drone.
// Counters are registered on a private registry the caller may mount behind
// promhttp.Handler() themselves; this package never starts an HTTP listener,
// mirroring the opt-in MetricsAddr pattern of the pack's churn telemetry
// module (etalazz-vsa/internal/ratelimiter/telemetry/churn).
package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dronecore/drone/core/packet"
)

// Metrics holds the Prometheus collectors for one drone instance, plus a
// parallel set of atomic counters so callers (tests included) can read
// current values without depending on the Prometheus client's internal
// representation.
type Metrics struct {
	registry *prometheus.Registry

	forwardedTotal       prometheus.Counter
	droppedTotal         prometheus.Counter
	nackedTotal          *prometheus.CounterVec
	controllerShortcuts  prometheus.Counter
	floodPropagatedTotal prometheus.Counter
	floodAbsorbedTotal   prometheus.Counter
	neighbourCount       prometheus.Gauge

	forwarded       atomic.Uint64
	dropped         atomic.Uint64
	nacked          atomic.Uint64
	shortcuts       atomic.Uint64
	floodPropagated atomic.Uint64
	floodAbsorbed   atomic.Uint64
}

// New creates a Metrics instance with its own private registry, so that
// running multiple drones in one process (as the test harness does) never
// collides on the default global registry.
func New(id string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		forwardedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "drone_packets_forwarded_total",
			Help:        "Total packets forwarded to a neighbour.",
			ConstLabels: prometheus.Labels{"drone_id": id},
		}),
		droppedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "drone_packets_dropped_total",
			Help:        "Total MsgFragments dropped by the probabilistic drop coin.",
			ConstLabels: prometheus.Labels{"drone_id": id},
		}),
		nackedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "drone_nacks_sent_total",
			Help:        "Total nacks emitted, by nack kind.",
			ConstLabels: prometheus.Labels{"drone_id": id},
		}, []string{"kind"}),
		controllerShortcuts: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "drone_controller_shortcuts_total",
			Help:        "Total control-plane packets rescued via the controller.",
			ConstLabels: prometheus.Labels{"drone_id": id},
		}),
		floodPropagatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "drone_flood_propagated_total",
			Help:        "Total flood-request forwards to neighbours.",
			ConstLabels: prometheus.Labels{"drone_id": id},
		}),
		floodAbsorbedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "drone_flood_absorbed_total",
			Help:        "Total flood requests already seen, answered with a response instead of re-propagating.",
			ConstLabels: prometheus.Labels{"drone_id": id},
		}),
		neighbourCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "drone_neighbours",
			Help:        "Current number of installed neighbour senders.",
			ConstLabels: prometheus.Labels{"drone_id": id},
		}),
	}
	m.registry.MustRegister(
		m.forwardedTotal,
		m.droppedTotal,
		m.nackedTotal,
		m.controllerShortcuts,
		m.floodPropagatedTotal,
		m.floodAbsorbedTotal,
		m.neighbourCount,
	)
	return m
}

// Registry exposes the private Prometheus registry, e.g. for mounting
// behind promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{}).
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) IncForwarded() {
	m.forwardedTotal.Inc()
	m.forwarded.Add(1)
}

func (m *Metrics) IncDropped() {
	m.droppedTotal.Inc()
	m.dropped.Add(1)
}

func (m *Metrics) IncNacked(kind packet.NackKind) {
	m.nackedTotal.WithLabelValues(kind.String()).Inc()
	m.nacked.Add(1)
}

func (m *Metrics) IncControllerShortcut() {
	m.controllerShortcuts.Inc()
	m.shortcuts.Add(1)
}

func (m *Metrics) IncFloodPropagated() {
	m.floodPropagatedTotal.Inc()
	m.floodPropagated.Add(1)
}

func (m *Metrics) IncFloodAbsorbed() {
	m.floodAbsorbedTotal.Inc()
	m.floodAbsorbed.Add(1)
}

func (m *Metrics) SetNeighbourCount(n int) {
	m.neighbourCount.Set(float64(n))
}

// Snapshot is a plain-value, point-in-time copy of the atomic counters,
// in the style of the teacher's RouterCounters.Snapshot.
type Snapshot struct {
	Forwarded       uint64
	Dropped         uint64
	Nacked          uint64
	ControllerShort uint64
	FloodPropagated uint64
	FloodAbsorbed   uint64
}

func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		Forwarded:       m.forwarded.Load(),
		Dropped:         m.dropped.Load(),
		Nacked:          m.nacked.Load(),
		ControllerShort: m.shortcuts.Load(),
		FloodPropagated: m.floodPropagated.Load(),
		FloodAbsorbed:   m.floodAbsorbed.Load(),
	}
}
