package triples

import (
	"iter"

	"github.com/geoknoesis/rdfstore/event"
	"github.com/geoknoesis/rdfstore/rdf"
)

// Wrapper forwards every operation to the collection it was built over and
// re-fires that collection's events to its own subscribers. Types that add
// behaviour embed *Wrapper and override only the methods they change.
//
// The inner collection is bound at construction and never replaced.
type Wrapper struct {
	inner  Collection
	owned  bool
	source View
	events event.Dispatcher[Event]
	relay  event.Token
}

var _ Collection = (*Wrapper)(nil)

// NewWrapper wraps inner and takes ownership of it: closing the wrapper
// closes inner.
func NewWrapper(inner Collection) *Wrapper {
	return newWrapper(inner, true)
}

// NewSharedWrapper wraps inner without taking ownership: closing the wrapper
// only detaches it, and inner stays usable by its other holders.
func NewSharedWrapper(inner Collection) *Wrapper {
	return newWrapper(inner, false)
}

func newWrapper(inner Collection, owned bool) *Wrapper {
	if inner == nil {
		inner = New()
		owned = true
	}
	w := &Wrapper{inner: inner, owned: owned}
	w.source = w
	w.relay = inner.Subscribe(w.forward)
	return w
}

func (w *Wrapper) forward(ev Event) {
	ev.Source = w.source
	w.events.Fire(ev)
}

// SetSource sets the collection reported as Event.Source. Types embedding
// *Wrapper call it with themselves.
func (w *Wrapper) SetSource(v View) {
	if v != nil {
		w.source = v
	}
}

// Inner returns the wrapped collection.
func (w *Wrapper) Inner() Collection { return w.inner }

// Owned reports whether closing the wrapper closes the inner collection.
func (w *Wrapper) Owned() bool { return w.owned }

func (w *Wrapper) Add(t rdf.Triple) bool { return w.inner.Add(t) }
func (w *Wrapper) Delete(t rdf.Triple) bool { return w.inner.Delete(t) }
func (w *Wrapper) Contains(t rdf.Triple) bool { return w.inner.Contains(t) }
func (w *Wrapper) Get(t rdf.Triple) (rdf.Triple, error) { return w.inner.Get(t) }
func (w *Wrapper) Count() int { return w.inner.Count() }
func (w *Wrapper) All() iter.Seq[rdf.Triple] { return w.inner.All() }
func (w *Wrapper) Subjects() iter.Seq[rdf.Term] { return w.inner.Subjects() }
func (w *Wrapper) Predicates() iter.Seq[rdf.Term] { return w.inner.Predicates() }
func (w *Wrapper) Objects() iter.Seq[rdf.Term] { return w.inner.Objects() }
func (w *Wrapper) WithSubject(s rdf.Term) iter.Seq[rdf.Triple] { return w.inner.WithSubject(s) }
func (w *Wrapper) WithPredicate(p rdf.Term) iter.Seq[rdf.Triple] { return w.inner.WithPredicate(p) }
func (w *Wrapper) WithObject(o rdf.Term) iter.Seq[rdf.Triple] { return w.inner.WithObject(o) }

func (w *Wrapper) WithSubjectPredicate(s, p rdf.Term) iter.Seq[rdf.Triple] {
	return w.inner.WithSubjectPredicate(s, p)
}

func (w *Wrapper) WithPredicateObject(p, o rdf.Term) iter.Seq[rdf.Triple] {
	return w.inner.WithPredicateObject(p, o)
}

func (w *Wrapper) WithSubjectObject(s, o rdf.Term) iter.Seq[rdf.Triple] {
	return w.inner.WithSubjectObject(s, o)
}

// Subscribe registers h for events relayed from the inner collection.
func (w *Wrapper) Subscribe(h event.Handler[Event]) event.Token { return w.events.Subscribe(h) }

// Unsubscribe removes a handler.
func (w *Wrapper) Unsubscribe(tok event.Token) bool { return w.events.Unsubscribe(tok) }

// Close detaches the wrapper from the inner collection and, if the wrapper
// owns it, closes the inner collection.
func (w *Wrapper) Close() error {
	w.inner.Unsubscribe(w.relay)
	w.events.Reset()
	if w.owned {
		return w.inner.Close()
	}
	return nil
}
