package triples

import (
	"fmt"
	"iter"

	"github.com/geoknoesis/rdfstore/rdf"
)

// The functions in this file are the linear-scan implementations of the
// lookup contract. Store falls back to them for positions it does not index;
// other implementations can use them directly.

// Filter yields the triples of seq for which keep returns true.
func Filter(seq iter.Seq[rdf.Triple], keep func(rdf.Triple) bool) iter.Seq[rdf.Triple] {
	return func(yield func(rdf.Triple) bool) {
		for t := range seq {
			if keep(t) && !yield(t) {
				return
			}
		}
	}
}

// MatchSubject filters seq to triples with subject s.
func MatchSubject(seq iter.Seq[rdf.Triple], s rdf.Term) iter.Seq[rdf.Triple] {
	return Filter(seq, func(t rdf.Triple) bool { return t.S == s })
}

// MatchPredicate filters seq to triples with predicate p.
func MatchPredicate(seq iter.Seq[rdf.Triple], p rdf.Term) iter.Seq[rdf.Triple] {
	return Filter(seq, func(t rdf.Triple) bool { return t.P == p })
}

// MatchObject filters seq to triples with object o.
func MatchObject(seq iter.Seq[rdf.Triple], o rdf.Term) iter.Seq[rdf.Triple] {
	return Filter(seq, func(t rdf.Triple) bool { return t.O == o })
}

// MatchSubjectPredicate filters seq to triples with subject s and predicate p.
func MatchSubjectPredicate(seq iter.Seq[rdf.Triple], s, p rdf.Term) iter.Seq[rdf.Triple] {
	return Filter(seq, func(t rdf.Triple) bool { return t.S == s && t.P == p })
}

// MatchPredicateObject filters seq to triples with predicate p and object o.
func MatchPredicateObject(seq iter.Seq[rdf.Triple], p, o rdf.Term) iter.Seq[rdf.Triple] {
	return Filter(seq, func(t rdf.Triple) bool { return t.P == p && t.O == o })
}

// MatchSubjectObject filters seq to triples with subject s and object o.
func MatchSubjectObject(seq iter.Seq[rdf.Triple], s, o rdf.Term) iter.Seq[rdf.Triple] {
	return Filter(seq, func(t rdf.Triple) bool { return t.S == s && t.O == o })
}

// Position selects one component of a triple.
type Position uint8

const (
	SubjectPosition Position = iota
	PredicatePosition
	ObjectPosition
)

// Term returns the component of t at pos.
func (pos Position) Term(t rdf.Triple) rdf.Term {
	switch pos {
	case SubjectPosition:
		return t.S
	case PredicatePosition:
		return t.P
	default:
		return t.O
	}
}

// DistinctTerms yields each distinct term found at pos across seq, in order
// of first appearance.
func DistinctTerms(seq iter.Seq[rdf.Triple], pos Position) iter.Seq[rdf.Term] {
	return func(yield func(rdf.Term) bool) {
		seen := make(map[rdf.Term]struct{})
		for t := range seq {
			term := pos.Term(t)
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

// Collect drains seq into a slice.
func Collect(seq iter.Seq[rdf.Triple]) []rdf.Triple {
	var out []rdf.Triple
	for t := range seq {
		out = append(out, t)
	}
	return out
}

func notFound(t rdf.Triple) error {
	return fmt.Errorf("triple %s: %w", t, rdf.ErrNotFound)
}
