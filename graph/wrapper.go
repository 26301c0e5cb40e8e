package graph

import (
	"iter"

	"github.com/geoknoesis/rdfstore/event"
	"github.com/geoknoesis/rdfstore/rdf"
)

// Wrapper forwards every operation to the graph collection it was built over
// and re-fires that collection's events. Collections that add behaviour, such
// as demand loading, embed *Wrapper and override the methods they change.
type Wrapper struct {
	inner  Collection
	owned  bool
	source View
	events event.Dispatcher[Event]
	relay  event.Token
}

var _ Collection = (*Wrapper)(nil)

// NewWrapper wraps inner and owns it: Close closes inner. A nil inner is
// replaced by a new Memory.
func NewWrapper(inner Collection) *Wrapper {
	return newWrapper(inner, true)
}

// NewSharedWrapper wraps inner without owning it: Close only detaches.
func NewSharedWrapper(inner Collection) *Wrapper {
	return newWrapper(inner, false)
}

func newWrapper(inner Collection, owned bool) *Wrapper {
	if inner == nil {
		inner, owned = NewMemory(), true
	}
	w := &Wrapper{inner: inner, owned: owned}
	w.source = w
	w.relay = inner.Subscribe(func(ev Event) {
		ev.Source = w.source
		w.events.Fire(ev)
	})
	return w
}

// SetSource sets the collection reported as Event.Source.
func (w *Wrapper) SetSource(v View) {
	if v != nil {
		w.source = v
	}
}

// Inner returns the wrapped collection.
func (w *Wrapper) Inner() Collection { return w.inner }

func (w *Wrapper) Contains(name rdf.IRI) bool { return w.inner.Contains(name) }

func (w *Wrapper) Get(name rdf.IRI) (*Graph, error) { return w.inner.Get(name) }

func (w *Wrapper) Count() int { return w.inner.Count() }

func (w *Wrapper) Names() iter.Seq[rdf.IRI] { return w.inner.Names() }

func (w *Wrapper) All() iter.Seq[*Graph] { return w.inner.All() }

func (w *Wrapper) Add(g *Graph, merge bool) (bool, error) { return w.inner.Add(g, merge) }

func (w *Wrapper) Remove(name rdf.IRI) bool { return w.inner.Remove(name) }

func (w *Wrapper) Subscribe(h event.Handler[Event]) event.Token { return w.events.Subscribe(h) }

func (w *Wrapper) Unsubscribe(tok event.Token) bool { return w.events.Unsubscribe(tok) }

// Close detaches from the inner collection and closes it if owned.
func (w *Wrapper) Close() error {
	w.inner.Unsubscribe(w.relay)
	w.events.Reset()
	if w.owned {
		return w.inner.Close()
	}
	return nil
}
