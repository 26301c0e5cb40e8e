package graph

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"strings"

	"github.com/geoknoesis/rdfstore/event"
	"github.com/geoknoesis/rdfstore/rdf"
)

// EventKind distinguishes graph additions from removals.
type EventKind uint8

const (
	// GraphAdded is fired after a new graph entry was created.
	GraphAdded EventKind = iota + 1
	// GraphRemoved is fired after a graph entry was removed.
	GraphRemoved
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case GraphAdded:
		return "graph_added"
	case GraphRemoved:
		return "graph_removed"
	default:
		return "unknown"
	}
}

// Event describes one change to a graph collection.
type Event struct {
	Kind  EventKind
	Graph *Graph
	// Source is the collection the handler subscribed to.
	Source View
}

// View is the read side of a graph collection. Names are graph IRIs; the
// zero IRI is the default graph.
type View interface {
	Contains(name rdf.IRI) bool
	// Get returns the graph, or an error wrapping rdf.ErrNotFound.
	Get(name rdf.IRI) (*Graph, error)
	Count() int
	// Names enumerates the names present, default graph first, then in
	// lexical order.
	Names() iter.Seq[rdf.IRI]
	// All enumerates the graphs in the order of Names.
	All() iter.Seq[*Graph]

	Subscribe(h event.Handler[Event]) event.Token
	Unsubscribe(tok event.Token) bool
}

// Collection adds the mutation primitives to View.
type Collection interface {
	View
	// Add inserts g under g.Name() and reports whether a new entry was
	// created. If the name is taken, Add merges g into the existing graph
	// when merge is true (returning false, firing nothing) and otherwise
	// fails with rdf.ErrInvalidArgument without changing anything.
	Add(g *Graph, merge bool) (bool, error)
	// Remove deletes the entry and reports whether it was present.
	Remove(name rdf.IRI) bool
	// Close disposes every graph the collection owns.
	Close() error
}

// Memory is the in-memory Collection. It owns the graphs added to it.
// A Memory is not safe for concurrent use.
type Memory struct {
	graphs map[rdf.IRI]*Graph
	events event.Dispatcher[Event]
	logger *slog.Logger
}

var _ Collection = (*Memory)(nil)

// MemoryOption configures a Memory.
type MemoryOption func(*Memory)

// WithCollectionLogger sets the logger.
func WithCollectionLogger(l *slog.Logger) MemoryOption {
	return func(m *Memory) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewMemory returns an empty collection.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{graphs: make(map[rdf.IRI]*Graph), logger: slog.Default()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) Contains(name rdf.IRI) bool {
	_, ok := m.graphs[name]
	return ok
}

func (m *Memory) Get(name rdf.IRI) (*Graph, error) {
	g, ok := m.graphs[name]
	if !ok {
		return nil, notFound(name)
	}
	return g, nil
}

func (m *Memory) Count() int { return len(m.graphs) }

func (m *Memory) Names() iter.Seq[rdf.IRI] {
	return func(yield func(rdf.IRI) bool) {
		for _, name := range sortedNames(m.graphs) {
			if !yield(name) {
				return
			}
		}
	}
}

func (m *Memory) All() iter.Seq[*Graph] {
	return func(yield func(*Graph) bool) {
		for _, name := range sortedNames(m.graphs) {
			g, ok := m.graphs[name]
			if !ok {
				continue
			}
			if !yield(g) {
				return
			}
		}
	}
}

func (m *Memory) Add(g *Graph, merge bool) (bool, error) {
	if g == nil {
		return false, fmt.Errorf("add nil graph: %w", rdf.ErrInvalidArgument)
	}
	name := g.Name()
	existing, ok := m.graphs[name]
	if ok {
		if !merge {
			return false, fmt.Errorf("graph %s already present: %w", displayName(name), rdf.ErrInvalidArgument)
		}
		if existing == g {
			return false, nil
		}
		if err := existing.Merge(g); err != nil {
			return false, err
		}
		m.logger.Debug("merged into existing graph", slog.String("graph", name.Value))
		return false, nil
	}
	m.graphs[name] = g
	m.events.Fire(Event{Kind: GraphAdded, Graph: g, Source: m})
	return true, nil
}

func (m *Memory) Remove(name rdf.IRI) bool {
	g, ok := m.graphs[name]
	if !ok {
		return false
	}
	delete(m.graphs, name)
	m.events.Fire(Event{Kind: GraphRemoved, Graph: g, Source: m})
	return true
}

func (m *Memory) Subscribe(h event.Handler[Event]) event.Token { return m.events.Subscribe(h) }

func (m *Memory) Unsubscribe(tok event.Token) bool { return m.events.Unsubscribe(tok) }

// Close closes every graph and empties the collection without firing events.
func (m *Memory) Close() error {
	var errs []error
	for name, g := range m.graphs {
		if err := g.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close graph %s: %w", displayName(name), err))
		}
	}
	m.graphs = make(map[rdf.IRI]*Graph)
	m.events.Reset()
	return errors.Join(errs...)
}

func sortedNames(graphs map[rdf.IRI]*Graph) []rdf.IRI {
	names := make([]rdf.IRI, 0, len(graphs))
	for name := range graphs {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b rdf.IRI) int { return strings.Compare(a.Value, b.Value) })
	return names
}

func displayName(name rdf.IRI) string {
	if name.IsZero() {
		return "(default)"
	}
	return "<" + name.Value + ">"
}

func notFound(name rdf.IRI) error {
	return fmt.Errorf("graph %s: %w", displayName(name), rdf.ErrNotFound)
}
