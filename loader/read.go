// Package loader fetches graphs that a collection does not hold yet. A Policy
// turns a graph name into a parsed graph; DemandCollection consults its
// policy the first time a missing name is queried.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	ld "github.com/piprate/json-gold/ld"

	"github.com/geoknoesis/rdfstore/graph"
	"github.com/geoknoesis/rdfstore/rdf"
)

// ReadOptions configures ReadGraph.
type ReadOptions struct {
	// Base resolves relative IRIs in JSON-LD documents.
	Base string
	// Decode sets the N-Triples/N-Quads limits.
	Decode rdf.DecodeOptions
	// Documents fetches remote JSON-LD contexts. Nil uses json-gold's
	// default loader over http.DefaultClient.
	Documents ld.DocumentLoader
}

// ReadGraph parses a document in the given format and asserts its statements
// into g. Blank node IDs from the document pass through g's blank node
// mapper. Graph names in N-Quads input are dropped, except that when every
// statement names the same graph, g is renamed to it.
func ReadGraph(ctx context.Context, r io.Reader, format rdf.Format, g *graph.Graph, opts ReadOptions) error {
	if g == nil {
		return fmt.Errorf("read into nil graph: %w", rdf.ErrInvalidArgument)
	}
	switch format {
	case rdf.FormatNTriples, rdf.FormatNQuads:
		return readStatements(ctx, r, format, g, opts.Decode)
	case rdf.FormatJSONLD:
		nquads, err := jsonLDToNQuads(r, opts)
		if err != nil {
			return err
		}
		return readStatements(ctx, strings.NewReader(nquads), rdf.FormatNQuads, g, opts.Decode)
	default:
		return fmt.Errorf("%w: %s", rdf.ErrUnsupportedFormat, format)
	}
}

func readStatements(ctx context.Context, r io.Reader, format rdf.Format, g *graph.Graph, opts rdf.DecodeOptions) error {
	opts.Context = ctx
	dec, err := rdf.NewDecoder(r, format, opts)
	if err != nil {
		return err
	}

	var (
		name    rdf.Term
		oneName = true
		first   = true
	)
	for {
		q, err := dec.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if first {
			name, first = q.G, false
		} else if q.G != name {
			oneName = false
		}
		g.Assert(scopeBlankNodes(g, q.ToTriple()))
	}
	if iri, ok := name.(rdf.IRI); ok && oneName && !first {
		g.SetName(iri)
	}
	return nil
}

func scopeBlankNodes(g *graph.Graph, t rdf.Triple) rdf.Triple {
	if !t.HasBlankNodes() {
		return t
	}
	return rdf.Triple{S: scopeTerm(g, t.S), P: t.P, O: scopeTerm(g, t.O)}
}

func scopeTerm(g *graph.Graph, term rdf.Term) rdf.Term {
	switch v := term.(type) {
	case rdf.BlankNode:
		return g.BlankNode(v.ID)
	case rdf.TripleTerm:
		return rdf.TripleTerm{S: scopeTerm(g, v.S), P: v.P, O: scopeTerm(g, v.O)}
	}
	return term
}

func jsonLDToNQuads(r io.Reader, opts ReadOptions) (string, error) {
	doc, err := ld.DocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("jsonld: %w", err)
	}
	ldOpts := ld.NewJsonLdOptions(opts.Base)
	if opts.Documents != nil {
		ldOpts.DocumentLoader = opts.Documents
	}
	proc := ld.NewJsonLdProcessor()
	result, err := proc.ToRDF(doc, ldOpts)
	if err != nil {
		return "", fmt.Errorf("jsonld: %w", err)
	}
	dataset, ok := result.(*ld.RDFDataset)
	if !ok {
		return "", fmt.Errorf("jsonld: unexpected ToRDF result %T", result)
	}
	serialized, err := (&ld.NQuadRDFSerializer{}).Serialize(dataset)
	if err != nil {
		return "", fmt.Errorf("jsonld: %w", err)
	}
	nquads, ok := serialized.(string)
	if !ok {
		return "", fmt.Errorf("jsonld: unexpected N-Quads result %T", serialized)
	}
	return nquads, nil
}
