package triples

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoknoesis/rdfstore/rdf"
)

var (
	ex     = rdf.NewNamespace("http://example.org/")
	alice  = ex.Expand("alice")
	bob    = ex.Expand("bob")
	carol  = ex.Expand("carol")
	knows  = ex.Expand("knows")
	name   = ex.Expand("name")
	aliceN = rdf.Literal{Lexical: "Alice"}
)

func sample() []rdf.Triple {
	return []rdf.Triple{
		rdf.NewTriple(alice, knows, bob),
		rdf.NewTriple(alice, knows, carol),
		rdf.NewTriple(bob, knows, carol),
		rdf.NewTriple(alice, name, aliceN),
	}
}

func recorder(v View) *[]Event {
	var got []Event
	v.Subscribe(func(ev Event) { got = append(got, ev) })
	return &got
}

func allIndexConfigs() map[string]Index {
	return map[string]Index{
		"all":       IndexAll,
		"single":    IndexSingle,
		"none":      IndexNone,
		"subject":   IndexSubject,
		"object":    IndexObject,
		"predicate": IndexPredicate,
	}
}

func TestStoreAddTwiceFiresOnce(t *testing.T) {
	s := New()
	events := recorder(s)
	tr := rdf.NewTriple(alice, knows, bob)

	assert.True(t, s.Add(tr))
	assert.False(t, s.Add(tr))
	assert.True(t, s.Contains(tr))
	assert.Equal(t, 1, s.Count())

	require.Len(t, *events, 1)
	assert.Equal(t, Added, (*events)[0].Kind)
	assert.Equal(t, tr, (*events)[0].Triple)
	assert.Same(t, s, (*events)[0].Source)
}

func TestStoreDeleteAbsentIsSilent(t *testing.T) {
	s := NewFrom(sample())
	events := recorder(s)

	assert.False(t, s.Delete(rdf.NewTriple(carol, knows, alice)))
	assert.Empty(t, *events)
	assert.Equal(t, 4, s.Count())
}

func TestStoreRoundTrip(t *testing.T) {
	s := NewFrom(sample())
	before := s.Count()
	tr := rdf.NewTriple(carol, knows, alice)
	events := recorder(s)

	require.True(t, s.Add(tr))
	require.True(t, s.Delete(tr))

	assert.False(t, s.Contains(tr))
	assert.Equal(t, before, s.Count())
	require.Len(t, *events, 2)
	assert.Equal(t, Added, (*events)[0].Kind)
	assert.Equal(t, Removed, (*events)[1].Kind)
}

func TestStoreRejectsIncompleteTriples(t *testing.T) {
	s := New()
	events := recorder(s)

	assert.False(t, s.Add(rdf.Triple{S: alice, P: knows}))
	assert.False(t, s.Add(rdf.Triple{}))
	assert.Zero(t, s.Count())
	assert.Empty(t, *events)
}

func TestStoreGet(t *testing.T) {
	s := NewFrom(sample())

	got, err := s.Get(rdf.NewTriple(alice, knows, bob))
	require.NoError(t, err)
	assert.Equal(t, rdf.NewTriple(alice, knows, bob), got)

	_, err = s.Get(rdf.NewTriple(bob, knows, alice))
	require.Error(t, err)
	assert.True(t, errors.Is(err, rdf.ErrNotFound))
	assert.Equal(t, rdf.ErrCodeNotFound, rdf.Code(err))
}

func TestStoreLookupsAcrossIndexConfigs(t *testing.T) {
	for label, ix := range allIndexConfigs() {
		t.Run(label, func(t *testing.T) {
			s := NewFrom(sample(), WithIndexes(ix))
			assert.Equal(t, ix, s.Indexes())

			assert.ElementsMatch(t, []rdf.Triple{
				rdf.NewTriple(alice, knows, bob),
				rdf.NewTriple(alice, knows, carol),
				rdf.NewTriple(alice, name, aliceN),
			}, Collect(s.WithSubject(alice)))

			assert.ElementsMatch(t, []rdf.Triple{
				rdf.NewTriple(alice, name, aliceN),
			}, Collect(s.WithPredicate(name)))

			assert.ElementsMatch(t, []rdf.Triple{
				rdf.NewTriple(alice, knows, carol),
				rdf.NewTriple(bob, knows, carol),
			}, Collect(s.WithObject(carol)))

			assert.ElementsMatch(t, []rdf.Triple{
				rdf.NewTriple(alice, knows, bob),
				rdf.NewTriple(alice, knows, carol),
			}, Collect(s.WithSubjectPredicate(alice, knows)))

			assert.ElementsMatch(t, []rdf.Triple{
				rdf.NewTriple(alice, knows, carol),
				rdf.NewTriple(bob, knows, carol),
			}, Collect(s.WithPredicateObject(knows, carol)))

			assert.ElementsMatch(t, []rdf.Triple{
				rdf.NewTriple(bob, knows, carol),
			}, Collect(s.WithSubjectObject(bob, carol)))

			assert.Empty(t, Collect(s.WithSubject(ex.Expand("nobody"))))
			assert.Empty(t, Collect(s.WithSubjectPredicate(carol, knows)))
		})
	}
}

func TestStoreWithSubjectMatchesScan(t *testing.T) {
	s := NewFrom(sample())
	for _, subj := range []rdf.Term{alice, bob, carol, ex.Expand("nobody"), aliceN} {
		want := Collect(MatchSubject(s.All(), subj))
		assert.ElementsMatch(t, want, Collect(s.WithSubject(subj)), "subject %s", subj)
	}
}

func TestStoreDistinctTerms(t *testing.T) {
	for label, ix := range allIndexConfigs() {
		t.Run(label, func(t *testing.T) {
			s := NewFrom(sample(), WithIndexes(ix))
			assert.ElementsMatch(t, []rdf.Term{alice, bob}, collectTerms(s.Subjects()))
			assert.ElementsMatch(t, []rdf.Term{knows, name}, collectTerms(s.Predicates()))
			assert.ElementsMatch(t, []rdf.Term{bob, carol, aliceN}, collectTerms(s.Objects()))
		})
	}
}

func TestStoreIndexesFollowDeletes(t *testing.T) {
	s := NewFrom(sample())
	require.True(t, s.Delete(rdf.NewTriple(alice, name, aliceN)))

	assert.Empty(t, Collect(s.WithPredicate(name)))
	assert.NotContains(t, collectTerms(s.Predicates()), rdf.Term(name))
	assert.NotContains(t, collectTerms(s.Objects()), rdf.Term(aliceN))
}

func TestStoreEnumerationIsRestartable(t *testing.T) {
	s := NewFrom(sample())
	all := s.All()
	assert.Len(t, Collect(all), 4)
	assert.Len(t, Collect(all), 4)

	for range s.All() {
		break
	}
	assert.Equal(t, 4, s.Count())
}

func TestStoreClose(t *testing.T) {
	s := NewFrom(sample())
	events := recorder(s)

	require.NoError(t, s.Close())
	assert.Zero(t, s.Count())
	assert.Empty(t, *events)

	s.Add(rdf.NewTriple(alice, knows, bob))
	assert.Empty(t, *events, "subscriptions are dropped on Close")
	assert.Equal(t, 1, s.Count())
}

func TestEventKindString(t *testing.T) {
	assert.Equal(t, "added", Added.String())
	assert.Equal(t, "removed", Removed.String())
	assert.Equal(t, "unknown", EventKind(0).String())
}

func collectTerms(seq func(func(rdf.Term) bool)) []rdf.Term {
	var out []rdf.Term
	for term := range seq {
		out = append(out, term)
	}
	return out
}
