// Package triples defines the triple collection contract and its
// implementations: an indexed in-memory store, a pass-through wrapper for
// layering behaviour, a read-combining union view, and a mutex-guarded
// wrapper for shared use.
//
// Every sequence returned by a collection is an iter.Seq: lazy, and
// restartable by ranging over it again. Sequences are not safe against
// mutation of the same collection while they are being consumed.
package triples

import (
	"iter"

	"github.com/geoknoesis/rdfstore/event"
	"github.com/geoknoesis/rdfstore/rdf"
)

// EventKind distinguishes additions from removals.
type EventKind uint8

const (
	// Added is fired after a triple was actually inserted.
	Added EventKind = iota + 1
	// Removed is fired after a triple was actually removed.
	Removed
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	default:
		return "unknown"
	}
}

// Event describes one change to a collection.
type Event struct {
	Kind   EventKind
	Triple rdf.Triple
	// Source is the collection the handler subscribed to.
	Source View
}

// View is the read side of a triple collection.
type View interface {
	// Contains reports whether t is stored. It never mutates the collection.
	Contains(t rdf.Triple) bool
	// Get returns the stored triple equal to t, or an error wrapping
	// rdf.ErrNotFound.
	Get(t rdf.Triple) (rdf.Triple, error)
	// Count returns the number of stored triples.
	Count() int
	// All enumerates every stored triple.
	All() iter.Seq[rdf.Triple]

	// Subjects, Predicates and Objects enumerate the distinct terms used in
	// each position.
	Subjects() iter.Seq[rdf.Term]
	Predicates() iter.Seq[rdf.Term]
	Objects() iter.Seq[rdf.Term]

	WithSubject(s rdf.Term) iter.Seq[rdf.Triple]
	WithPredicate(p rdf.Term) iter.Seq[rdf.Triple]
	WithObject(o rdf.Term) iter.Seq[rdf.Triple]
	WithSubjectPredicate(s, p rdf.Term) iter.Seq[rdf.Triple]
	WithPredicateObject(p, o rdf.Term) iter.Seq[rdf.Triple]
	WithSubjectObject(s, o rdf.Term) iter.Seq[rdf.Triple]

	// Subscribe registers a handler for Added and Removed events.
	Subscribe(h event.Handler[Event]) event.Token
	// Unsubscribe removes a handler registered with Subscribe.
	Unsubscribe(tok event.Token) bool
}

// Collection is a View plus the mutation primitives. Graphs hand out only
// the View of their collection; Add and Delete are for the owning graph and
// for wrappers.
type Collection interface {
	View
	// Add inserts t if absent and reports whether it was inserted. Only an
	// actual insertion fires Added. Triples with a nil component are never
	// stored.
	Add(t rdf.Triple) bool
	// Delete removes t if present and reports whether it was removed. Only an
	// actual removal fires Removed.
	Delete(t rdf.Triple) bool
	// Close releases the collection's internal structures. Terms are values
	// and are not affected.
	Close() error
}
