// Package store persists graphs. Provider is the storage contract;
// OpenSQLite backs it with an SQLite database. A Syncer keeps a provider in
// step with a graph collection by listening to its events.
package store

import (
	"context"

	"github.com/geoknoesis/rdfstore/graph"
	"github.com/geoknoesis/rdfstore/rdf"
)

// Provider stores whole graphs keyed by name. The zero name is the default
// graph.
type Provider interface {
	HasGraph(ctx context.Context, name rdf.IRI) (bool, error)
	// LoadGraph returns the stored graph, or an error wrapping
	// rdf.ErrNotFound.
	LoadGraph(ctx context.Context, name rdf.IRI) (*graph.Graph, error)
	// SaveGraph replaces the stored copy of g.
	SaveGraph(ctx context.Context, g *graph.Graph) error
	// DeleteGraph removes a graph and reports whether it was stored.
	DeleteGraph(ctx context.Context, name rdf.IRI) (bool, error)
	// ListGraphs returns the stored names in lexical order.
	ListGraphs(ctx context.Context) ([]rdf.IRI, error)
	Close() error
}
