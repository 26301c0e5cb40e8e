package triples

import (
	"fmt"
	"iter"

	"github.com/geoknoesis/rdfstore/event"
	"github.com/geoknoesis/rdfstore/rdf"
)

// Union presents several collections as one. Add and Delete go to the base
// collection only; reads fan out over every member in order.
//
// Triple enumeration and lookups concatenate member results without removing
// duplicates, so Count is the sum of member counts. Subjects, Predicates and
// Objects still yield distinct terms.
//
// The union does not own its members: Close detaches it and leaves them open.
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
	u := &Union{base: base, members: make([]View, 0, len(others)+1)}
	u.members = append(u.members, base)
	for i, v := range others {
		if v == nil {
			return nil, fmt.Errorf("union member %d is nil: %w", i+1, rdf.ErrInvalidArgument)
		}
		u.members = append(u.members, v)
	}
	for _, m := range u.members {
		u.relays = append(u.relays, m.Subscribe(u.forward))
	}
	return u, nil
}

func (u *Union) forward(ev Event) {
	ev.Source = u
	u.events.Fire(ev)
}

// Base returns the collection that receives mutations.
func (u *Union) Base() Collection { return u.base }

// Members returns the base followed by the other members.
func (u *Union) Members() []View {
	return append([]View(nil), u.members...)
}

// Add inserts t into the base collection.
func (u *Union) Add(t rdf.Triple) bool { return u.base.Add(t) }

// Delete removes t from the base collection. Copies held by other members
// are not affected.
func (u *Union) Delete(t rdf.Triple) bool { return u.base.Delete(t) }

// Contains reports whether any member stores t.
func (u *Union) Contains(t rdf.Triple) bool {
	for _, m := range u.members {
		if m.Contains(t) {
			return true
		}
	}
	return false
}

// Get returns the first member's match for t.
func (u *Union) Get(t rdf.Triple) (rdf.Triple, error) {
	for _, m := range u.members {
		if m.Contains(t) {
			return m.Get(t)
		}
	}
	return rdf.Triple{}, notFound(t)
}

// Count sums the member counts.
func (u *Union) Count() int {
	n := 0
	for _, m := range u.members {
		n += m.Count()
	}
	return n
}

func (u *Union) All() iter.Seq[rdf.Triple] {
	return u.concat(func(m View) iter.Seq[rdf.Triple] { return m.All() })
}

func (u *Union) Subjects() iter.Seq[rdf.Term] {
	return u.distinct(func(m View) iter.Seq[rdf.Term] { return m.Subjects() })
}

func (u *Union) Predicates() iter.Seq[rdf.Term] {
	return u.distinct(func(m View) iter.Seq[rdf.Term] { return m.Predicates() })
}

func (u *Union) Objects() iter.Seq[rdf.Term] {
	return u.distinct(func(m View) iter.Seq[rdf.Term] { return m.Objects() })
}

func (u *Union) WithSubject(s rdf.Term) iter.Seq[rdf.Triple] {
	return u.concat(func(m View) iter.Seq[rdf.Triple] { return m.WithSubject(s) })
}

func (u *Union) WithPredicate(p rdf.Term) iter.Seq[rdf.Triple] {
	return u.concat(func(m View) iter.Seq[rdf.Triple] { return m.WithPredicate(p) })
}

func (u *Union) WithObject(o rdf.Term) iter.Seq[rdf.Triple] {
	return u.concat(func(m View) iter.Seq[rdf.Triple] { return m.WithObject(o) })
}

func (u *Union) WithSubjectPredicate(s, p rdf.Term) iter.Seq[rdf.Triple] {
	return u.concat(func(m View) iter.Seq[rdf.Triple] { return m.WithSubjectPredicate(s, p) })
}

func (u *Union) WithPredicateObject(p, o rdf.Term) iter.Seq[rdf.Triple] {
	return u.concat(func(m View) iter.Seq[rdf.Triple] { return m.WithPredicateObject(p, o) })
}

func (u *Union) WithSubjectObject(s, o rdf.Term) iter.Seq[rdf.Triple] {
	return u.concat(func(m View) iter.Seq[rdf.Triple] { return m.WithSubjectObject(s, o) })
}

// Subscribe registers h for events raised by any member.
func (u *Union) Subscribe(h event.Handler[Event]) event.Token { return u.events.Subscribe(h) }

// Unsubscribe removes a handler.
func (u *Union) Unsubscribe(tok event.Token) bool { return u.events.Unsubscribe(tok) }

// Close detaches the union from its members without closing them.
func (u *Union) Close() error {
	for i, tok := range u.relays {
		u.members[i].Unsubscribe(tok)
	}
	u.relays = nil
	u.events.Reset()
	return nil
}

func (u *Union) concat(get func(View) iter.Seq[rdf.Triple]) iter.Seq[rdf.Triple] {
	return func(yield func(rdf.Triple) bool) {
		for _, m := range u.members {
			for t := range get(m) {
				if !yield(t) {
					return
				}
			}
		}
	}
}

func (u *Union) distinct(get func(View) iter.Seq[rdf.Term]) iter.Seq[rdf.Term] {
	return func(yield func(rdf.Term) bool) {
		seen := make(map[rdf.Term]struct{})
		for _, m := range u.members {
			for term := range get(m) {
				if _, ok := seen[term]; ok {
					continue
				}
				seen[term] = struct{}{}
				if !yield(term) {
					return
				}
			}
		}
	}
}
