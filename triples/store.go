package triples

import (
	"iter"

	"github.com/geoknoesis/rdfstore/event"
	"github.com/geoknoesis/rdfstore/rdf"
)

// Index selects which secondary indexes a Store maintains.
type Index uint8

const (
	IndexSubject Index = 1 << iota
	IndexPredicate
	IndexObject
	IndexSubjectPredicate
	IndexPredicateObject
	IndexSubjectObject

	// IndexNone keeps only the primary set; every lookup is a linear scan.
	IndexNone Index = 0
	// IndexSingle maintains the three single-position indexes.
	IndexSingle = IndexSubject | IndexPredicate | IndexObject
	// IndexAll maintains every index.
	IndexAll = IndexSingle | IndexSubjectPredicate | IndexPredicateObject | IndexSubjectObject
)

// Has reports whether ix includes every index in other.
func (ix Index) Has(other Index) bool { return ix&other == other }

// Option configures a Store.
type Option func(*options)

type options struct {
	indexes  Index
	capacity int
}

// WithIndexes selects the secondary indexes to maintain. The default is IndexAll.
func WithIndexes(ix Index) Option {
	return func(o *options) { o.indexes = ix }
}

// WithCapacity pre-sizes the primary set.
func WithCapacity(n int) Option {
	return func(o *options) { o.capacity = n }
}

type set = map[rdf.Triple]struct{}

type pairKey struct {
	a, b rdf.Term
}

// Store is the in-memory Collection. Triples are held in a hash set; each
// enabled index maps a term (or pair of terms) to the set of triples using it.
//
// A Store is not safe for concurrent use; see Synchronized.
type Store struct {
	triples set
	indexes Index

	bySubject   map[rdf.Term]set
	byPredicate map[rdf.Term]set
	byObject    map[rdf.Term]set
	bySP        map[pairKey]set
	byPO        map[pairKey]set
	bySO        map[pairKey]set

	events event.Dispatcher[Event]
}

var _ Collection = (*Store)(nil)

// New returns an empty Store.
func New(opts ...Option) *Store {
	o := options{indexes: IndexAll}
	for _, opt := range opts {
		opt(&o)
	}
	s := &Store{indexes: o.indexes}
	s.reset(o.capacity)
	return s
}

// NewFrom returns a Store holding ts. No events are fired.
func NewFrom(ts []rdf.Triple, opts ...Option) *Store {
	s := New(append([]Option{WithCapacity(len(ts))}, opts...)...)
	for _, t := range ts {
		s.insert(t)
	}
	return s
}

func (s *Store) reset(capacity int) {
	s.triples = make(set, capacity)
	s.bySubject, s.byPredicate, s.byObject = nil, nil, nil
	s.bySP, s.byPO, s.bySO = nil, nil, nil
	if s.indexes.Has(IndexSubject) {
		s.bySubject = make(map[rdf.Term]set)
	}
	if s.indexes.Has(IndexPredicate) {
		s.byPredicate = make(map[rdf.Term]set)
	}
	if s.indexes.Has(IndexObject) {
		s.byObject = make(map[rdf.Term]set)
	}
	if s.indexes.Has(IndexSubjectPredicate) {
		s.bySP = make(map[pairKey]set)
	}
	if s.indexes.Has(IndexPredicateObject) {
		s.byPO = make(map[pairKey]set)
	}
	if s.indexes.Has(IndexSubjectObject) {
		s.bySO = make(map[pairKey]set)
	}
}

// Indexes returns the secondary indexes the store maintains.
func (s *Store) Indexes() Index { return s.indexes }

// Add inserts t and fires Added if it was not already stored.
func (s *Store) Add(t rdf.Triple) bool {
	if !s.insert(t) {
		return false
	}
	s.events.Fire(Event{Kind: Added, Triple: t, Source: s})
	return true
}

// Delete removes t and fires Removed if it was stored.
func (s *Store) Delete(t rdf.Triple) bool {
	if _, ok := s.triples[t]; !ok {
		return false
	}
	delete(s.triples, t)
	unindex(s.bySubject, t.S, t)
	unindex(s.byPredicate, t.P, t)
	unindex(s.byObject, t.O, t)
	unindex(s.bySP, pairKey{t.S, t.P}, t)
	unindex(s.byPO, pairKey{t.P, t.O}, t)
	unindex(s.bySO, pairKey{t.S, t.O}, t)
	s.events.Fire(Event{Kind: Removed, Triple: t, Source: s})
	return true
}

func (s *Store) insert(t rdf.Triple) bool {
	if !t.Valid() {
		return false
	}
	if _, ok := s.triples[t]; ok {
		return false
	}
	s.triples[t] = struct{}{}
	index(s.bySubject, t.S, t)
	index(s.byPredicate, t.P, t)
	index(s.byObject, t.O, t)
	index(s.bySP, pairKey{t.S, t.P}, t)
	index(s.byPO, pairKey{t.P, t.O}, t)
	index(s.bySO, pairKey{t.S, t.O}, t)
	return true
}

func index[K comparable](m map[K]set, key K, t rdf.Triple) {
	if m == nil {
		return
	}
	bucket, ok := m[key]
	if !ok {
		bucket = make(set)
		m[key] = bucket
	}
	bucket[t] = struct{}{}
}

func unindex[K comparable](m map[K]set, key K, t rdf.Triple) {
	if m == nil {
		return
	}
	bucket, ok := m[key]
	if !ok {
		return
	}
	delete(bucket, t)
	if len(bucket) == 0 {
		delete(m, key)
	}
}

// Contains reports whether t is stored.
func (s *Store) Contains(t rdf.Triple) bool {
	_, ok := s.triples[t]
	return ok
}

// Get returns t if it is stored.
func (s *Store) Get(t rdf.Triple) (rdf.Triple, error) {
	if !s.Contains(t) {
		return rdf.Triple{}, notFound(t)
	}
	return t, nil
}

// Count returns the number of stored triples.
func (s *Store) Count() int { return len(s.triples) }

// All enumerates every stored triple in unspecified order.
func (s *Store) All() iter.Seq[rdf.Triple] {
	return func(yield func(rdf.Triple) bool) {
		for t := range s.triples {
			if !yield(t) {
				return
			}
		}
	}
}

// Subjects enumerates the distinct subjects.
func (s *Store) Subjects() iter.Seq[rdf.Term] {
	if s.bySubject != nil {
		return keys(s.bySubject)
	}
	return DistinctTerms(s.All(), SubjectPosition)
}

// Predicates enumerates the distinct predicates.
func (s *Store) Predicates() iter.Seq[rdf.Term] {
	if s.byPredicate != nil {
		return keys(s.byPredicate)
	}
	return DistinctTerms(s.All(), PredicatePosition)
}

// Objects enumerates the distinct objects.
func (s *Store) Objects() iter.Seq[rdf.Term] {
	if s.byObject != nil {
		return keys(s.byObject)
	}
	return DistinctTerms(s.All(), ObjectPosition)
}

// WithSubject enumerates the triples whose subject is subj.
func (s *Store) WithSubject(subj rdf.Term) iter.Seq[rdf.Triple] {
	if s.bySubject != nil {
		return lookup(s.bySubject, subj)
	}
	return MatchSubject(s.All(), subj)
}

// WithPredicate enumerates the triples whose predicate is pred.
func (s *Store) WithPredicate(pred rdf.Term) iter.Seq[rdf.Triple] {
	if s.byPredicate != nil {
		return lookup(s.byPredicate, pred)
	}
	return MatchPredicate(s.All(), pred)
}

// WithObject enumerates the triples whose object is obj.
func (s *Store) WithObject(obj rdf.Term) iter.Seq[rdf.Triple] {
	if s.byObject != nil {
		return lookup(s.byObject, obj)
	}
	return MatchObject(s.All(), obj)
}

// WithSubjectPredicate enumerates the triples with the given subject and predicate.
// Without the pair index it narrows through whichever single index exists.
func (s *Store) WithSubjectPredicate(subj, pred rdf.Term) iter.Seq[rdf.Triple] {
	switch {
	case s.bySP != nil:
		return lookup(s.bySP, pairKey{subj, pred})
	case s.bySubject != nil:
		return MatchPredicate(lookup(s.bySubject, subj), pred)
	case s.byPredicate != nil:
		return MatchSubject(lookup(s.byPredicate, pred), subj)
	}
	return MatchSubjectPredicate(s.All(), subj, pred)
}

// WithPredicateObject enumerates the triples with the given predicate and object.
func (s *Store) WithPredicateObject(pred, obj rdf.Term) iter.Seq[rdf.Triple] {
	switch {
	case s.byPO != nil:
		return lookup(s.byPO, pairKey{pred, obj})
	case s.byObject != nil:
		return MatchPredicate(lookup(s.byObject, obj), pred)
	case s.byPredicate != nil:
		return MatchObject(lookup(s.byPredicate, pred), obj)
	}
	return MatchPredicateObject(s.All(), pred, obj)
}

// WithSubjectObject enumerates the triples with the given subject and object.
func (s *Store) WithSubjectObject(subj, obj rdf.Term) iter.Seq[rdf.Triple] {
	switch {
	case s.bySO != nil:
		return lookup(s.bySO, pairKey{subj, obj})
	case s.bySubject != nil:
		return MatchObject(lookup(s.bySubject, subj), obj)
	case s.byObject != nil:
		return MatchSubject(lookup(s.byObject, obj), subj)
	}
	return MatchSubjectObject(s.All(), subj, obj)
}

// Subscribe registers h for Added and Removed events.
func (s *Store) Subscribe(h event.Handler[Event]) event.Token { return s.events.Subscribe(h) }

// Unsubscribe removes a handler.
func (s *Store) Unsubscribe(tok event.Token) bool { return s.events.Unsubscribe(tok) }

// Close drops every triple and index without firing events, and removes all
// subscriptions. The store remains usable and empty afterwards.
func (s *Store) Close() error {
	s.reset(0)
	s.events.Reset()
	return nil
}

func keys[K comparable](m map[K]set) iter.Seq[K] {
	return func(yield func(K) bool) {
		for k := range m {
			if !yield(k) {
				return
			}
		}
	}
}

// lookup resolves the bucket when the sequence is consumed, so a sequence
// obtained before later additions still reflects them.
func lookup[K comparable](m map[K]set, key K) iter.Seq[rdf.Triple] {
	return func(yield func(rdf.Triple) bool) {
		for t := range m[key] {
			if !yield(t) {
				return
			}
		}
	}
}
