package triples

import (
	"iter"
	"slices"
	"sync"

	"github.com/geoknoesis/rdfstore/event"
	"github.com/geoknoesis/rdfstore/rdf"
)

// Synchronized guards a collection with a read/write lock so it can be shared
// between goroutines.
//
// Sequences returned by Synchronized are drained under the read lock when
// ranging starts and then yield from that snapshot, so the caller may mutate
// the collection while ranging. Events raised by a mutation are delivered after
// the lock is released; handlers may call back into the collection.
type Synchronized struct {
	mu      sync.RWMutex
	inner   Collection
	pending []Event
	events  event.Dispatcher[Event]
	relay   event.Token
}

var _ Collection = (*Synchronized)(nil)

// NewSynchronized wraps inner. The wrapper owns inner: Close closes it.
func NewSynchronized(inner Collection) *Synchronized {
	if inner == nil {
		inner = New()
	}
	s := &Synchronized{inner: inner}
	s.relay = inner.Subscribe(s.queue)
	return s
}

// queue runs while mu is held for writing.
func (s *Synchronized) queue(ev Event) {
	ev.Source = s
	s.pending = append(s.pending, ev)
}

func (s *Synchronized) mutate(fn func() bool) bool {
	s.mu.Lock()
	ok := fn()
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	for _, ev := range pending {
		s.events.Fire(ev)
	}
	return ok
}

func (s *Synchronized) Add(t rdf.Triple) bool {
	return s.mutate(func() bool { return s.inner.Add(t) })
}

func (s *Synchronized) Delete(t rdf.Triple) bool {
	return s.mutate(func() bool { return s.inner.Delete(t) })
}

func (s *Synchronized) Contains(t rdf.Triple) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inner.Contains(t)
}

func (s *Synchronized) Get(t rdf.Triple) (rdf.Triple, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inner.Get(t)
}

func (s *Synchronized) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inner.Count()
}

func (s *Synchronized) All() iter.Seq[rdf.Triple] {
	return snapshot(&s.mu, func() iter.Seq[rdf.Triple] { return s.inner.All() })
}

func (s *Synchronized) Subjects() iter.Seq[rdf.Term] {
	return snapshot(&s.mu, func() iter.Seq[rdf.Term] { return s.inner.Subjects() })
}

func (s *Synchronized) Predicates() iter.Seq[rdf.Term] {
	return snapshot(&s.mu, func() iter.Seq[rdf.Term] { return s.inner.Predicates() })
}

func (s *Synchronized) Objects() iter.Seq[rdf.Term] {
	return snapshot(&s.mu, func() iter.Seq[rdf.Term] { return s.inner.Objects() })
}

func (s *Synchronized) WithSubject(subj rdf.Term) iter.Seq[rdf.Triple] {
	return snapshot(&s.mu, func() iter.Seq[rdf.Triple] { return s.inner.WithSubject(subj) })
}

func (s *Synchronized) WithPredicate(pred rdf.Term) iter.Seq[rdf.Triple] {
	return snapshot(&s.mu, func() iter.Seq[rdf.Triple] { return s.inner.WithPredicate(pred) })
}

func (s *Synchronized) WithObject(obj rdf.Term) iter.Seq[rdf.Triple] {
	return snapshot(&s.mu, func() iter.Seq[rdf.Triple] { return s.inner.WithObject(obj) })
}

func (s *Synchronized) WithSubjectPredicate(subj, pred rdf.Term) iter.Seq[rdf.Triple] {
	return snapshot(&s.mu, func() iter.Seq[rdf.Triple] { return s.inner.WithSubjectPredicate(subj, pred) })
}

func (s *Synchronized) WithPredicateObject(pred, obj rdf.Term) iter.Seq[rdf.Triple] {
	return snapshot(&s.mu, func() iter.Seq[rdf.Triple] { return s.inner.WithPredicateObject(pred, obj) })
}

func (s *Synchronized) WithSubjectObject(subj, obj rdf.Term) iter.Seq[rdf.Triple] {
	return snapshot(&s.mu, func() iter.Seq[rdf.Triple] { return s.inner.WithSubjectObject(subj, obj) })
}

func (s *Synchronized) Subscribe(h event.Handler[Event]) event.Token { return s.events.Subscribe(h) }

func (s *Synchronized) Unsubscribe(tok event.Token) bool { return s.events.Unsubscribe(tok) }

// Close closes the inner collection and drops all subscriptions.
func (s *Synchronized) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inner.Unsubscribe(s.relay)
	s.events.Reset()
	s.pending = nil
	return s.inner.Close()
}

func snapshot[T any](mu *sync.RWMutex, get func() iter.Seq[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		mu.RLock()
		items := slices.Collect(get())
		mu.RUnlock()
		for _, item := range items {
			if !yield(item) {
				return
			}
		}
	}
}
