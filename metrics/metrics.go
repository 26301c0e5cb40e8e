// Package metrics exposes Prometheus instrumentation for graph collections,
// triple collections and demand loads. Metrics attach to collections through
// their events, so instrumented code needs no changes.
package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/geoknoesis/rdfstore/graph"
	"github.com/geoknoesis/rdfstore/loader"
	"github.com/geoknoesis/rdfstore/triples"
)

// Load results used as the "result" label of the load counter.
const (
	ResultOK      = "ok"
	ResultFailed  = "failed"
	ResultTimeout = "timeout"
)

// Metrics holds the registered collectors.
type Metrics struct {
	triplesAdded   prometheus.Counter
	triplesRemoved prometheus.Counter
	graphsAdded    prometheus.Counter
	graphsRemoved  prometheus.Counter
	graphs         prometheus.Gauge

	loads        *prometheus.CounterVec // By policy and result
	loadDuration *prometheus.HistogramVec
}

var _ loader.Recorder = (*Metrics)(nil)

// New creates the collectors under namespace and registers them with reg.
func New(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	m := &Metrics{
		triplesAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "triples",
			Name:      "added_total",
			Help:      "Total number of triples inserted into observed collections",
		}),
		triplesRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "triples",
			Name:      "removed_total",
			Help:      "Total number of triples removed from observed collections",
		}),
		graphsAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "graphs",
			Name:      "added_total",
			Help:      "Total number of graphs added to observed collections",
		}),
		graphsRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "graphs",
			Name:      "removed_total",
			Help:      "Total number of graphs removed from observed collections",
		}),
		graphs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "graphs",
			Name:      "current",
			Help:      "Number of graphs held by observed collections",
		}),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "loader",
			Name:      "attempts_total",
			Help:      "Total number of demand loads by policy and result",
		}, []string{"policy", "result"}),
		loadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "loader",
			Name:      "duration_seconds",
			Help:      "Demand load duration in seconds",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		}, []string{"policy"}),
	}

	for _, c := range []prometheus.Collector{
		m.triplesAdded, m.triplesRemoved,
		m.graphsAdded, m.graphsRemoved, m.graphs,
		m.loads, m.loadDuration,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveGraphs counts graph additions and removals on v and tracks the
// number of graphs it holds. The returned function detaches.
func (m *Metrics) ObserveGraphs(v graph.View) (detach func()) {
	m.graphs.Add(float64(v.Count()))
	tok := v.Subscribe(func(ev graph.Event) {
		switch ev.Kind {
		case graph.GraphAdded:
			m.graphsAdded.Inc()
			m.graphs.Inc()
		case graph.GraphRemoved:
			m.graphsRemoved.Inc()
			m.graphs.Dec()
		}
	})
	return func() { v.Unsubscribe(tok) }
}

// ObserveTriples counts triple insertions and removals on v. The returned
// function detaches.
func (m *Metrics) ObserveTriples(v triples.View) (detach func()) {
	tok := v.Subscribe(func(ev triples.Event) {
		switch ev.Kind {
		case triples.Added:
			m.triplesAdded.Inc()
		case triples.Removed:
			m.triplesRemoved.Inc()
		}
	})
	return func() { v.Unsubscribe(tok) }
}

// ObserveLoad records one demand load.
func (m *Metrics) ObserveLoad(policy string, elapsed time.Duration, err error) {
	m.loads.WithLabelValues(policy, result(err)).Inc()
	m.loadDuration.WithLabelValues(policy).Observe(elapsed.Seconds())
}

func result(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, context.DeadlineExceeded):
		return ResultTimeout
	default:
		return ResultFailed
	}
}
