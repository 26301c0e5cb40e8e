package graph

import (
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoknoesis/rdfstore/rdf"
)

func named(name string, ts ...rdf.Triple) *Graph {
	g := New(WithName(ex.Expand(name)))
	g.Assert(ts...)
	return g
}

func record(v View) *[]Event {
	var got []Event
	v.Subscribe(func(ev Event) { got = append(got, ev) })
	return &got
}

func TestMemoryAddGetRemove(t *testing.T) {
	m := NewMemory()
	events := record(m)
	g := named("g1", rdf.NewTriple(alice, knows, bob))

	added, err := m.Add(g, false)
	require.NoError(t, err)
	assert.True(t, added)
	assert.True(t, m.Contains(g.Name()))
	assert.Equal(t, 1, m.Count())

	got, err := m.Get(g.Name())
	require.NoError(t, err)
	assert.Same(t, g, got)

	assert.True(t, m.Remove(g.Name()))
	assert.False(t, m.Remove(g.Name()))
	assert.Zero(t, m.Count())

	require.Len(t, *events, 2)
	assert.Equal(t, GraphAdded, (*events)[0].Kind)
	assert.Equal(t, GraphRemoved, (*events)[1].Kind)
	assert.Same(t, g, (*events)[1].Graph)
}

func TestMemoryGetMissing(t *testing.T) {
	_, err := NewMemory().Get(ex.Expand("missing"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, rdf.ErrNotFound))
}

func TestMemoryAddConflict(t *testing.T) {
	m := NewMemory()
	first := named("g", rdf.NewTriple(alice, knows, bob))
	_, err := m.Add(first, false)
	require.NoError(t, err)
	events := record(m)

	second := named("g", rdf.NewTriple(bob, knows, alice))
	added, err := m.Add(second, false)
	assert.False(t, added)
	assert.True(t, errors.Is(err, rdf.ErrInvalidArgument))
	assert.Equal(t, 1, first.Count(), "a rejected add changes nothing")

	added, err = m.Add(second, true)
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, 2, first.Count())
	assert.Empty(t, *events, "merge fires no GraphAdded")
}

func TestMemoryDefaultGraph(t *testing.T) {
	m := NewMemory()
	_, err := m.Add(named("z"), false)
	require.NoError(t, err)
	_, err = m.Add(New(), false)
	require.NoError(t, err)
	_, err = m.Add(named("a"), false)
	require.NoError(t, err)

	_, err = m.Add(New(), false)
	assert.True(t, errors.Is(err, rdf.ErrInvalidArgument), "at most one default graph")

	assert.True(t, m.Contains(rdf.IRI{}))
	names := slices.Collect(m.Names())
	assert.Equal(t, []rdf.IRI{{}, ex.Expand("a"), ex.Expand("z")}, names)

	var order []rdf.IRI
	for g := range m.All() {
		order = append(order, g.Name())
	}
	assert.Equal(t, names, order)
}

func TestMemoryAddNil(t *testing.T) {
	_, err := NewMemory().Add(nil, false)
	assert.True(t, errors.Is(err, rdf.ErrInvalidArgument))
}

func TestMemoryClose(t *testing.T) {
	m := NewMemory()
	g := named("g", rdf.NewTriple(alice, knows, bob))
	_, err := m.Add(g, false)
	require.NoError(t, err)

	require.NoError(t, m.Close())
	assert.Zero(t, m.Count())
	assert.Zero(t, g.Count(), "owned graphs are disposed")
}

func TestWrapperRelaysGraphEvents(t *testing.T) {
	inner := NewMemory()
	w := NewWrapper(inner)
	events := record(w)

	_, err := w.Add(named("g"), false)
	require.NoError(t, err)
	assert.True(t, inner.Contains(ex.Expand("g")))
	assert.Equal(t, 1, w.Count())
	assert.Equal(t, []rdf.IRI{ex.Expand("g")}, slices.Collect(w.Names()))

	require.Len(t, *events, 1)
	assert.Same(t, w, (*events)[0].Source)

	require.NoError(t, w.Close())
	assert.Zero(t, inner.Count())
}

func TestSharedWrapperLeavesInner(t *testing.T) {
	inner := NewMemory()
	_, err := inner.Add(named("g"), false)
	require.NoError(t, err)

	w := NewSharedWrapper(inner)
	require.NoError(t, w.Close())
	assert.Equal(t, 1, inner.Count())
}

func TestUnionGraphCollection(t *testing.T) {
	base := NewMemory()
	other := NewMemory()
	shared := named("shared", rdf.NewTriple(alice, knows, bob))
	_, err := other.Add(shared, false)
	require.NoError(t, err)
	_, err = base.Add(named("shared"), false)
	require.NoError(t, err)

	u, err := NewUnion(base, other)
	require.NoError(t, err)
	events := record(u)

	added, err := u.Add(named("new"), false)
	require.NoError(t, err)
	assert.True(t, added)
	assert.True(t, base.Contains(ex.Expand("new")))
	assert.False(t, other.Contains(ex.Expand("new")))

	assert.Equal(t, base.Count()+other.Count(), u.Count())
	assert.Len(t, slices.Collect(u.Names()), 3)

	got, err := u.Get(ex.Expand("shared"))
	require.NoError(t, err)
	assert.Zero(t, got.Count(), "first member wins")

	assert.False(t, u.Remove(ex.Expand("missing")))
	_, err = u.Get(ex.Expand("missing"))
	assert.True(t, errors.Is(err, rdf.ErrNotFound))

	require.Len(t, *events, 1)
	assert.Same(t, u, (*events)[0].Source)

	require.NoError(t, u.Close())
	assert.Equal(t, 2, base.Count())
	assert.Equal(t, 1, other.Count())
	assert.Equal(t, 1, shared.Count())
}

func TestUnionRelaysMemberEvents(t *testing.T) {
	base := NewMemory()
	other := NewMemory()
	u, err := NewUnion(base, other)
	require.NoError(t, err)
	events := record(u)

	_, err = other.Add(named("remote"), false)
	require.NoError(t, err)
	assert.True(t, other.Remove(ex.Expand("remote")))

	require.Len(t, *events, 2)
	assert.Equal(t, GraphAdded, (*events)[0].Kind)
	assert.Equal(t, GraphRemoved, (*events)[1].Kind)
	assert.Same(t, u, (*events)[1].Source)

	require.NoError(t, u.Close())
	_, err = other.Add(named("later"), false)
	require.NoError(t, err)
	assert.Len(t, *events, 2)
}

func TestNewUnionNeedsTwoMembers(t *testing.T) {
	_, err := NewUnion(NewMemory())
	assert.True(t, errors.Is(err, rdf.ErrInvalidArgument))
	_, err = NewUnion(nil, NewMemory())
	assert.True(t, errors.Is(err, rdf.ErrInvalidArgument))
}

func TestEventKindString(t *testing.T) {
	assert.Equal(t, "graph_added", GraphAdded.String())
	assert.Equal(t, "graph_removed", GraphRemoved.String())
}
