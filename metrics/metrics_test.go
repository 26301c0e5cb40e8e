package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoknoesis/rdfstore/graph"
	"github.com/geoknoesis/rdfstore/loader"
	"github.com/geoknoesis/rdfstore/rdf"
	"github.com/geoknoesis/rdfstore/triples"
)

var (
	ex    = rdf.NewNamespace("http://example.org/")
	alice = ex.Expand("alice")
	bob   = ex.Expand("bob")
	knows = ex.Expand("knows")
)

func newMetrics(t *testing.T) *Metrics {
	t.Helper()
	m, err := New(prometheus.NewRegistry(), "rdfstore")
	require.NoError(t, err)
	return m
}

func TestNewRejectsDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg, "rdfstore")
	require.NoError(t, err)
	_, err = New(reg, "rdfstore")
	assert.Error(t, err)
}

func TestObserveTriples(t *testing.T) {
	m := newMetrics(t)
	c := triples.New()
	detach := m.ObserveTriples(c)

	c.Add(rdf.NewTriple(alice, knows, bob))
	c.Add(rdf.NewTriple(alice, knows, bob))
	c.Add(rdf.NewTriple(bob, knows, alice))
	c.Delete(rdf.NewTriple(bob, knows, alice))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.triplesAdded))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.triplesRemoved))

	detach()
	c.Delete(rdf.NewTriple(alice, knows, bob))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.triplesRemoved))
}

func TestObserveGraphs(t *testing.T) {
	m := newMetrics(t)
	coll := graph.NewMemory()
	_, err := coll.Add(graph.New(graph.WithName(ex.Expand("existing"))), false)
	require.NoError(t, err)

	detach := m.ObserveGraphs(coll)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.graphs))

	_, err = coll.Add(graph.New(graph.WithName(ex.Expand("a"))), false)
	require.NoError(t, err)
	_, err = coll.Add(graph.New(graph.WithName(ex.Expand("b"))), false)
	require.NoError(t, err)
	coll.Remove(ex.Expand("a"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.graphsAdded))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.graphsRemoved))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.graphs))

	detach()
	coll.Remove(ex.Expand("b"))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.graphs))
}

func TestObserveLoad(t *testing.T) {
	m := newMetrics(t)
	m.ObserveLoad("web", 20*time.Millisecond, nil)
	m.ObserveLoad("web", time.Second, rdf.NewLoadError("web", ex.Expand("x"), errors.New("404")))
	m.ObserveLoad("disk", time.Second, fmt.Errorf("read: %w", context.DeadlineExceeded))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.loads.WithLabelValues("web", ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.loads.WithLabelValues("web", ResultFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.loads.WithLabelValues("disk", ResultTimeout)))
	assert.Equal(t, 2, testutil.CollectAndCount(m.loadDuration))
}

func TestRecorderWiredIntoDemandCollection(t *testing.T) {
	m := newMetrics(t)
	known := ex.Expand("known")
	policy := loader.PolicyFunc(func(_ context.Context, name rdf.IRI) (*graph.Graph, error) {
		if name != known {
			return nil, rdf.NewLoadError("func", name, nil)
		}
		g := graph.New()
		g.Assert(rdf.NewTriple(alice, knows, bob))
		return g, nil
	})
	c, err := loader.NewDemandCollection(graph.NewMemory(), policy, loader.WithRecorder(m))
	require.NoError(t, err)
	m.ObserveGraphs(c)

	assert.True(t, c.Contains(known))
	assert.False(t, c.Contains(ex.Expand("unknown")))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.loads.WithLabelValues("custom", ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.loads.WithLabelValues("custom", ResultFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.graphs))
}
