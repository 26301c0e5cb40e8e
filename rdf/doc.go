// Package rdf provides the RDF term model shared by the rdfstore packages,
// together with a streaming N-Triples/N-Quads codec.
//
// Copyright 2026 Geoknoesis LLC (www.geoknoesis.com)
//
// Terms are small comparable values: IRI, BlankNode, Literal, Variable,
// GraphLiteral and TripleTerm. Because they are comparable, a Triple can be
// used directly as a map key, which is what the triples package relies on for
// its set semantics. Compare gives a total order over terms
// (Variable < BlankNode < Literal < GraphLiteral < IRI < TripleTerm).
//
// Graph names are IRIs; the zero IRI names the default graph.
//
// Example (decoding N-Triples):
//
//	dec, err := rdf.NewDecoder(strings.NewReader(input), rdf.FormatNTriples, rdf.DefaultDecodeOptions())
//	if err != nil {
//	    // handle error
//	}
//	for {
//	    quad, err := dec.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        // handle error
//	    }
//	    // process quad.S, quad.P, quad.O
//	}
//
// Errors are classified with Code. Lookups of absent items fail with
// ErrNotFound, bad identifiers with ErrInvalidArgument, and every failed
// graph load with a *LoadError that matches ErrGraphNotFound.
package rdf
