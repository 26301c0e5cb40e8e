package rdf

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareOrdersKinds(t *testing.T) {
	ordered := []Term{
		nil,
		Variable{Name: "x"},
		BlankNode{ID: "a"},
		BlankNode{ID: "b"},
		Literal{Lexical: "a"},
		Literal{Lexical: "a", Lang: "en"},
		Literal{Lexical: "a", Datatype: XSDNamespace.Expand("string")},
		Literal{Lexical: "b"},
		GraphLiteral{Statements: "x"},
		NewIRI("http://example.org/a"),
		NewIRI("http://example.org/b"),
		TripleTerm{S: NewIRI("s"), P: NewIRI("p"), O: NewIRI("o")},
	}
	for i := range ordered {
		for j := range ordered {
			got := Compare(ordered[i], ordered[j])
			switch {
			case i < j:
				assert.Negative(t, got, "%v < %v", ordered[i], ordered[j])
			case i > j:
				assert.Positive(t, got, "%v > %v", ordered[i], ordered[j])
			default:
				assert.Zero(t, got)
			}
		}
	}
}

func TestCompareLiteralTieBreaks(t *testing.T) {
	// Lexical form first, then datatype, then language.
	plain := Literal{Lexical: "a"}
	tagged := Literal{Lexical: "a", Lang: "en"}
	typed := Literal{Lexical: "a", Datatype: NewIRI("http://example.org/dt")}
	assert.Negative(t, Compare(plain, tagged))
	assert.Negative(t, Compare(tagged, typed))
	assert.True(t, Equal(typed, Literal{Lexical: "a", Datatype: NewIRI("http://example.org/dt")}))
}

func TestCompareTriples(t *testing.T) {
	s1, s2 := NewIRI("http://example.org/1"), NewIRI("http://example.org/2")
	p := NewIRI("http://example.org/p")
	ts := []Triple{
		NewTriple(s2, p, s1),
		NewTriple(s1, p, s2),
		NewTriple(s1, p, s1),
	}
	slices.SortFunc(ts, CompareTriples)
	assert.Equal(t, []Triple{
		NewTriple(s1, p, s1),
		NewTriple(s1, p, s2),
		NewTriple(s2, p, s1),
	}, ts)
}
