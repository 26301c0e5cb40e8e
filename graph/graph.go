// Package graph holds named graphs and collections of them: the Graph type
// with its blank node scope, the in-memory graph collection, and the wrapper
// and union layers built over any collection.
package graph

import (
	"fmt"
	"iter"
	"log/slog"

	"github.com/geoknoesis/rdfstore/event"
	"github.com/geoknoesis/rdfstore/rdf"
	"github.com/geoknoesis/rdfstore/triples"
)

// Graph is a named set of triples with its own blank node scope.
//
// The zero name denotes the default graph. A collection keys a graph by the
// name it had when it was added; renaming a graph held by a collection does
// not move it.
type Graph struct {
	name    rdf.IRI
	triples triples.Collection
	mapper  *BlankNodeMapper
	logger  *slog.Logger
}

// Option configures a Graph.
type Option func(*Graph)

// WithName sets the graph name.
func WithName(name rdf.IRI) Option {
	return func(g *Graph) { g.name = name }
}

// WithTriples sets the collection backing the graph. The graph owns it.
func WithTriples(c triples.Collection) Option {
	return func(g *Graph) {
		if c != nil {
			g.triples = c
		}
	}
}

// WithBlankNodeMapper sets the mapper used for blank node IDs.
func WithBlankNodeMapper(m *BlankNodeMapper) Option {
	return func(g *Graph) {
		if m != nil {
			g.mapper = m
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Graph) {
		if l != nil {
			g.logger = l
		}
	}
}

// New returns an empty graph backed by an indexed triples.Store.
func New(opts ...Option) *Graph {
	g := &Graph{}
	for _, opt := range opts {
		opt(g)
	}
	if g.triples == nil {
		g.triples = triples.New()
	}
	if g.mapper == nil {
		g.mapper = NewBlankNodeMapper("")
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	return g
}

// Name returns the graph name; the zero IRI for the default graph.
func (g *Graph) Name() rdf.IRI { return g.name }

// SetName renames the graph.
func (g *Graph) SetName(name rdf.IRI) { g.name = name }

// IsDefault reports whether g is the default graph.
func (g *Graph) IsDefault() bool { return g.name.IsZero() }

// Triples returns the read side of the graph's triples. Mutations go
// through Assert and Retract.
func (g *Graph) Triples() triples.View { return g.triples }

// Count returns the number of triples.
func (g *Graph) Count() int { return g.triples.Count() }

// IsEmpty reports whether the graph holds no triples.
func (g *Graph) IsEmpty() bool { return g.triples.Count() == 0 }

// Contains reports whether t is in the graph.
func (g *Graph) Contains(t rdf.Triple) bool { return g.triples.Contains(t) }

// Assert adds ts and returns how many were actually inserted.
func (g *Graph) Assert(ts ...rdf.Triple) int {
	n := 0
	for _, t := range ts {
		if g.triples.Add(t) {
			n++
		}
	}
	return n
}

// AssertAll adds every triple of seq and returns how many were inserted.
func (g *Graph) AssertAll(seq iter.Seq[rdf.Triple]) int {
	n := 0
	for t := range seq {
		if g.triples.Add(t) {
			n++
		}
	}
	return n
}

// Retract removes ts and returns how many were actually removed.
func (g *Graph) Retract(ts ...rdf.Triple) int {
	n := 0
	for _, t := range ts {
		if g.triples.Delete(t) {
			n++
		}
	}
	return n
}

// Clear retracts every triple, firing Removed for each.
func (g *Graph) Clear() {
	g.Retract(triples.Collect(g.triples.All())...)
}

// CreateBlankNode returns a blank node with a fresh ID.
func (g *Graph) CreateBlankNode() rdf.BlankNode {
	return rdf.BlankNode{ID: g.mapper.NextID()}
}

// BlankNode returns the blank node for a user-supplied ID, remapping it if it
// clashes with an ID the graph issued.
func (g *Graph) BlankNode(id string) rdf.BlankNode {
	return rdf.BlankNode{ID: g.mapper.CheckID(id)}
}

// BlankNodes returns the graph's mapper.
func (g *Graph) BlankNodes() *BlankNodeMapper { return g.mapper }

// Merge copies the triples of other into g. Blank nodes of other are given
// fresh IDs in g, consistently across the whole merge, unless g is empty, in
// which case their IDs are kept where they do not clash.
func (g *Graph) Merge(other *Graph) error {
	if other == nil {
		return fmt.Errorf("merge nil graph: %w", rdf.ErrInvalidArgument)
	}
	if other == g {
		return fmt.Errorf("merge graph %q with itself: %w", g.name.Value, rdf.ErrInvalidArgument)
	}

	mapping := make(map[rdf.BlankNode]rdf.BlankNode)
	fresh := g.CreateBlankNode
	if g.IsEmpty() {
		fresh = nil
	}
	m := &merger{g: g, mapping: mapping, fresh: fresh}

	added := 0
	for t := range other.Triples().All() {
		if t.HasBlankNodes() {
			t = m.triple(t)
		}
		if g.triples.Add(t) {
			added++
		}
	}
	g.logger.Debug("merged graph",
		slog.String("graph", g.name.Value),
		slog.String("from", other.name.Value),
		slog.Int("added", added),
		slog.Int("blank_nodes", len(mapping)))
	return nil
}

type merger struct {
	g       *Graph
	mapping map[rdf.BlankNode]rdf.BlankNode
	// fresh issues a replacement node; nil keeps IDs through the mapper.
	fresh func() rdf.BlankNode
}

func (m *merger) triple(t rdf.Triple) rdf.Triple {
	return rdf.Triple{S: m.term(t.S), P: t.P, O: m.term(t.O)}
}

func (m *merger) term(term rdf.Term) rdf.Term {
	switch v := term.(type) {
	case rdf.BlankNode:
		if mapped, ok := m.mapping[v]; ok {
			return mapped
		}
		var mapped rdf.BlankNode
		if m.fresh != nil {
			mapped = m.fresh()
		} else {
			mapped = m.g.BlankNode(v.ID)
		}
		m.mapping[v] = mapped
		return mapped
	case rdf.TripleTerm:
		return rdf.TripleTerm{S: m.term(v.S), P: v.P, O: m.term(v.O)}
	default:
		return term
	}
}

// Subscribe registers h for triple events of the graph.
func (g *Graph) Subscribe(h event.Handler[triples.Event]) event.Token {
	return g.triples.Subscribe(h)
}

// Unsubscribe removes a handler.
func (g *Graph) Unsubscribe(tok event.Token) bool { return g.triples.Unsubscribe(tok) }

// Close releases the graph's triple collection.
func (g *Graph) Close() error { return g.triples.Close() }
