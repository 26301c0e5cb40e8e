package rdf

import "strings"

// Compare returns an integer comparing two terms. Terms of different kinds are
// ordered by kind (Variable < BlankNode < Literal < GraphLiteral < IRI < TripleTerm);
// terms of the same kind are ordered lexically. A nil term sorts first.
//
// Compare is a plain total order for indexing and stable output. It does not
// implement SPARQL value comparison of typed literals.
func Compare(a, b Term) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if ka, kb := a.Kind(), b.Kind(); ka != kb {
		if ka < kb {
			return -1
		}
		return 1
	}
	switch x := a.(type) {
	case IRI:
		return strings.Compare(x.Value, b.(IRI).Value)
	case BlankNode:
		return strings.Compare(x.ID, b.(BlankNode).ID)
	case Variable:
		return strings.Compare(x.Name, b.(Variable).Name)
	case GraphLiteral:
		return strings.Compare(x.Statements, b.(GraphLiteral).Statements)
	case Literal:
		y := b.(Literal)
		if c := strings.Compare(x.Lexical, y.Lexical); c != 0 {
			return c
		}
		if c := strings.Compare(x.Datatype.Value, y.Datatype.Value); c != 0 {
			return c
		}
		return strings.Compare(x.Lang, y.Lang)
	case TripleTerm:
		y := b.(TripleTerm)
		if c := Compare(x.S, y.S); c != 0 {
			return c
		}
		if c := Compare(x.P, y.P); c != 0 {
			return c
		}
		return Compare(x.O, y.O)
	}
	// Foreign Term implementations fall back to their string form.
	return strings.Compare(a.String(), b.String())
}

// Equal reports whether two terms are the same term.
func Equal(a, b Term) bool {
	return Compare(a, b) == 0
}

// CompareTriples orders triples by subject, then predicate, then object.
func CompareTriples(a, b Triple) int {
	if c := Compare(a.S, b.S); c != 0 {
		return c
	}
	if c := Compare(a.P, b.P); c != 0 {
		return c
	}
	return Compare(a.O, b.O)
}
