package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoknoesis/rdfstore/rdf"
	"github.com/geoknoesis/rdfstore/triples"
)

var (
	ex    = rdf.NewNamespace("http://example.org/")
	alice = ex.Expand("alice")
	bob   = ex.Expand("bob")
	knows = ex.Expand("knows")
)

func TestGraphAssertRetract(t *testing.T) {
	g := New(WithName(ex.Expand("g")))
	var events []triples.Event
	g.Subscribe(func(ev triples.Event) { events = append(events, ev) })

	tr := rdf.NewTriple(alice, knows, bob)
	assert.Equal(t, 1, g.Assert(tr, tr))
	assert.True(t, g.Contains(tr))
	assert.Equal(t, 1, g.Count())
	assert.Equal(t, 1, g.Retract(tr))
	assert.Equal(t, 0, g.Retract(tr))
	assert.True(t, g.IsEmpty())
	assert.Len(t, events, 2)
}

func TestGraphNames(t *testing.T) {
	g := New()
	assert.True(t, g.IsDefault())

	g.SetName(ex.Expand("named"))
	assert.Equal(t, ex.Expand("named"), g.Name())
	assert.False(t, g.IsDefault())
}

func TestGraphBlankNodes(t *testing.T) {
	g := New(WithBlankNodeMapper(NewBlankNodeMapper("g")))
	fresh := g.CreateBlankNode()
	assert.Equal(t, "g1", fresh.ID)

	assert.Equal(t, rdf.BlankNode{ID: "user"}, g.BlankNode("user"))
	assert.NotEqual(t, fresh, g.BlankNode(fresh.ID))
}

func TestGraphMergeRemapsBlankNodes(t *testing.T) {
	dst := New(WithBlankNodeMapper(NewBlankNodeMapper("d")))
	dst.Assert(rdf.NewTriple(rdf.BlankNode{ID: "b1"}, knows, alice))

	src := New()
	b := rdf.BlankNode{ID: "b1"}
	src.Assert(
		rdf.NewTriple(b, knows, bob),
		rdf.NewTriple(alice, knows, b),
		rdf.NewTriple(alice, knows, bob),
	)

	require.NoError(t, dst.Merge(src))
	assert.Equal(t, 4, dst.Count())
	assert.True(t, dst.Contains(rdf.NewTriple(alice, knows, bob)))
	assert.False(t, dst.Contains(rdf.NewTriple(b, knows, bob)), "source blank node must not leak into the destination")

	var mapped rdf.Term
	for tr := range dst.Triples().WithObject(bob) {
		if _, ok := tr.S.(rdf.BlankNode); ok {
			mapped = tr.S
		}
	}
	require.NotNil(t, mapped)
	assert.True(t, dst.Contains(rdf.NewTriple(alice, knows, mapped)), "one source node maps to one destination node")
}

func TestGraphMergeIntoEmptyKeepsIDs(t *testing.T) {
	dst := New()
	src := New()
	b := rdf.BlankNode{ID: "keep"}
	src.Assert(rdf.NewTriple(b, knows, bob))

	require.NoError(t, dst.Merge(src))
	assert.True(t, dst.Contains(rdf.NewTriple(b, knows, bob)))
}

func TestGraphMergeQuotedTriples(t *testing.T) {
	dst := New()
	dst.Assert(rdf.NewTriple(alice, knows, bob))
	src := New()
	quoted := rdf.TripleTerm{S: rdf.BlankNode{ID: "q"}, P: knows, O: bob}
	src.Assert(rdf.NewTriple(quoted, knows, alice))

	require.NoError(t, dst.Merge(src))
	assert.False(t, dst.Contains(rdf.NewTriple(quoted, knows, alice)))
	assert.Equal(t, 2, dst.Count())
}

func TestGraphMergeRejectsSelfAndNil(t *testing.T) {
	g := New()
	assert.True(t, errors.Is(g.Merge(g), rdf.ErrInvalidArgument))
	assert.True(t, errors.Is(g.Merge(nil), rdf.ErrInvalidArgument))
}

func TestGraphClear(t *testing.T) {
	g := New()
	g.Assert(rdf.NewTriple(alice, knows, bob), rdf.NewTriple(bob, knows, alice))
	g.Clear()
	assert.True(t, g.IsEmpty())
}

func TestGraphWithTriplesBacking(t *testing.T) {
	backing := triples.New(triples.WithIndexes(triples.IndexNone))
	g := New(WithTriples(backing))
	g.Assert(rdf.NewTriple(alice, knows, bob))
	assert.Equal(t, 1, backing.Count())
	assert.Len(t, triples.Collect(g.Triples().WithSubject(alice)), 1)
}
