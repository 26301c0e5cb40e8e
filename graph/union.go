package graph

import (
	"fmt"
	"iter"

	"github.com/geoknoesis/rdfstore/event"
	"github.com/geoknoesis/rdfstore/rdf"
)

// Union presents several graph collections as one. Add and Remove go to the
// base; reads fan out in member order. Names and All concatenate member
// results, so a name held by two members appears twice and Count sums.
//
// Close leaves members untouched.
type Union struct {
	base    Collection
	members []View
	events  event.Dispatcher[Event]
	relays  []event.Token
}

var _ Collection = (*Union)(nil)

// NewUnion combines base with at least one other view.
func NewUnion(base Collection, others ...View) (*Union, error) {
	if base == nil {
		return nil, fmt.Errorf("union base: %w", rdf.ErrInvalidArgument)
	}
	if len(others) == 0 {
		return nil, fmt.Errorf("union needs at least two members: %w", rdf.ErrInvalidArgument)
	}
	members := append([]View{base}, others...)
	for i, v := range members {
		if v == nil {
			return nil, fmt.Errorf("union member %d is nil: %w", i, rdf.ErrInvalidArgument)
		}
	}
	u := &Union{base: base, members: members}
	for _, m := range members {
		u.relays = append(u.relays, m.Subscribe(u.forward))
	}
	return u, nil
}

func (u *Union) forward(ev Event) {
	ev.Source = u
	u.events.Fire(ev)
}

// Base returns the collection receiving mutations.
func (u *Union) Base() Collection { return u.base }

func (u *Union) Contains(name rdf.IRI) bool {
	for _, m := range u.members {
		if m.Contains(name) {
			return true
		}
	}
	return false
}

// Get returns the first member's graph with the given name.
func (u *Union) Get(name rdf.IRI) (*Graph, error) {
	for _, m := range u.members {
		if m.Contains(name) {
			return m.Get(name)
		}
	}
	return nil, notFound(name)
}

func (u *Union) Count() int {
	n := 0
	for _, m := range u.members {
		n += m.Count()
	}
	return n
}

func (u *Union) Names() iter.Seq[rdf.IRI] {
	return func(yield func(rdf.IRI) bool) {
		for _, m := range u.members {
			for name := range m.Names() {
				if !yield(name) {
					return
				}
			}
		}
	}
}

func (u *Union) All() iter.Seq[*Graph] {
	return func(yield func(*Graph) bool) {
		for _, m := range u.members {
			for g := range m.All() {
				if !yield(g) {
					return
				}
			}
		}
	}
}

func (u *Union) Add(g *Graph, merge bool) (bool, error) { return u.base.Add(g, merge) }

func (u *Union) Remove(name rdf.IRI) bool { return u.base.Remove(name) }

func (u *Union) Subscribe(h event.Handler[Event]) event.Token { return u.events.Subscribe(h) }

func (u *Union) Unsubscribe(tok event.Token) bool { return u.events.Unsubscribe(tok) }

// Close detaches the union from its members.
func (u *Union) Close() error {
	for i, tok := range u.relays {
		u.members[i].Unsubscribe(tok)
	}
	u.relays = nil
	u.events.Reset()
	return nil
}
