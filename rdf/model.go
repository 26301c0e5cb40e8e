package rdf

import (
	"fmt"
	"sort"
	"strings"
)

// TermKind identifies RDF term types.
//
// The numeric order of the kinds is the tie-break order used by Compare.
type TermKind uint8

const (
	// TermVariable represents a query variable.
	TermVariable TermKind = iota
	// TermBlankNode represents a blank node term.
	TermBlankNode
	// TermLiteral represents a literal term.
	TermLiteral
	// TermGraphLiteral represents a quoted formula (a graph used as a node).
	TermGraphLiteral
	// TermIRI represents an IRI term.
	TermIRI
	// TermTriple represents an RDF-star triple term.
	TermTriple
)

// String returns the kind name.
func (k TermKind) String() string {
	switch k {
	case TermVariable:
		return "variable"
	case TermBlankNode:
		return "blank"
	case TermLiteral:
		return "literal"
	case TermGraphLiteral:
		return "graph-literal"
	case TermIRI:
		return "iri"
	case TermTriple:
		return "triple"
	default:
		return "unknown"
	}
}

// Term is a value that can appear in RDF statements.
//
// All implementations in this package are comparable values, so terms and the
// triples built from them can be used directly as map keys.
type Term interface {
	Kind() TermKind
	String() string
}

// IRI represents an RDF IRI.
//
// The zero IRI names the default graph when used as a graph name.
type IRI struct {
	// Value is the IRI string value.
	Value string
}

// Kind returns TermIRI.
func (i IRI) Kind() TermKind { return TermIRI }

// String returns the IRI value.
func (i IRI) String() string { return i.Value }

// IsZero reports whether the IRI is empty.
func (i IRI) IsZero() bool { return i.Value == "" }

// NewIRI returns an IRI for value.
func NewIRI(value string) IRI { return IRI{Value: value} }

// BlankNode represents an RDF blank node.
type BlankNode struct {
	// ID is the blank node identifier, scoped to the owning graph.
	ID string
}

// Kind returns TermBlankNode.
func (b BlankNode) Kind() TermKind { return TermBlankNode }

// String returns the blank node identifier prefixed with "_:".
func (b BlankNode) String() string { return "_:" + b.ID }

// Literal represents an RDF literal.
type Literal struct {
	// Lexical is the lexical form of the literal.
	Lexical string
	// Datatype is the datatype IRI, if any.
	Datatype IRI
	// Lang is the language tag, if any.
	Lang string
}

// Kind returns TermLiteral.
func (l Literal) Kind() TermKind { return TermLiteral }

// String returns a string representation of the literal.
func (l Literal) String() string {
	if l.Lang != "" {
		return fmt.Sprintf("%q@%s", l.Lexical, l.Lang)
	}
	if l.Datatype.Value != "" {
		return fmt.Sprintf("%q^^<%s>", l.Lexical, l.Datatype.Value)
	}
	return fmt.Sprintf("%q", l.Lexical)
}

// Variable represents a query variable such as ?x.
type Variable struct {
	// Name is the variable name without the leading '?'.
	Name string
}

// Kind returns TermVariable.
func (v Variable) Kind() TermKind { return TermVariable }

// String returns the variable with its '?' prefix.
func (v Variable) String() string { return "?" + v.Name }

// GraphLiteral is a formula: a set of triples used as a single node.
//
// Statements holds the canonical N-Triples rendering of the formula so that
// two graph literals over the same triples compare equal.
type GraphLiteral struct {
	Statements string
}

// NewGraphLiteral builds a graph literal from triples. Order and duplicates in
// the input do not affect the result.
func NewGraphLiteral(triples []Triple) GraphLiteral {
	lines := make([]string, 0, len(triples))
	seen := make(map[Triple]struct{}, len(triples))
	for _, t := range triples {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		lines = append(lines, renderTerm(t.S)+" "+renderTerm(t.P)+" "+renderTerm(t.O)+" .")
	}
	sort.Strings(lines)
	return GraphLiteral{Statements: strings.Join(lines, "\n")}
}

// Kind returns TermGraphLiteral.
func (g GraphLiteral) Kind() TermKind { return TermGraphLiteral }

// String returns the formula in braces.
func (g GraphLiteral) String() string { return "{" + g.Statements + "}" }

// TripleTerm is an RDF-star quoted triple term.
type TripleTerm struct {
	// S is the subject of the quoted triple.
	S Term
	// P is the predicate of the quoted triple.
	P IRI
	// O is the object of the quoted triple.
	O Term
}

// Kind returns TermTriple.
func (t TripleTerm) Kind() TermKind { return TermTriple }

// String returns a string representation of the triple term.
func (t TripleTerm) String() string {
	return fmt.Sprintf("<<%s %s %s>>", t.S.String(), t.P.String(), t.O.String())
}

// Triple is an RDF triple. Triples are values: equality is structural over
// the three components.
type Triple struct {
	// S is the subject.
	S Term
	// P is the predicate.
	P Term
	// O is the object.
	O Term
}

// NewTriple returns the triple (s, p, o).
func NewTriple(s, p, o Term) Triple {
	return Triple{S: s, P: p, O: o}
}

// IsZero reports whether the triple has no components.
func (t Triple) IsZero() bool {
	return t.S == nil && t.P == nil && t.O == nil
}

// Valid reports whether all three components are set.
func (t Triple) Valid() bool {
	return t.S != nil && t.P != nil && t.O != nil
}

// String renders the triple in N-Triples syntax without the trailing newline.
func (t Triple) String() string {
	return renderTerm(t.S) + " " + renderTerm(t.P) + " " + renderTerm(t.O) + " ."
}

// HasBlankNodes reports whether any component is, or quotes, a blank node.
func (t Triple) HasBlankNodes() bool {
	return hasBlank(t.S) || hasBlank(t.P) || hasBlank(t.O)
}

func hasBlank(term Term) bool {
	switch v := term.(type) {
	case BlankNode:
		return true
	case TripleTerm:
		return hasBlank(v.S) || hasBlank(v.O)
	}
	return false
}

// Quad is an RDF quad (triple + optional graph name).
type Quad struct {
	// S is the subject.
	S Term
	// P is the predicate.
	P Term
	// O is the object.
	O Term
	// G is the graph name, or nil for the default graph.
	G Term
}

// IsZero reports whether the quad has no subject/predicate/object.
func (q Quad) IsZero() bool {
	return q.S == nil && q.P == nil && q.O == nil && q.G == nil
}

// ToTriple extracts the triple from a quad (ignores graph).
func (q Quad) ToTriple() Triple {
	return Triple{S: q.S, P: q.P, O: q.O}
}

// InDefaultGraph reports whether the quad is in the default graph (no named graph).
func (q Quad) InDefaultGraph() bool {
	return q.G == nil
}

// ToQuad converts a triple to a quad in the default graph.
func (t Triple) ToQuad() Quad {
	return Quad{S: t.S, P: t.P, O: t.O, G: nil}
}

// ToQuadInGraph converts a triple to a quad in a named graph.
func (t Triple) ToQuadInGraph(graph Term) Quad {
	return Quad{S: t.S, P: t.P, O: t.O, G: graph}
}
