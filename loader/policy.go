package loader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/geoknoesis/rdfstore/graph"
	"github.com/geoknoesis/rdfstore/rdf"
)

// Policy fetches or reads the graph identified by name. Implementations
// report every failure as an error matching rdf.ErrGraphNotFound, normally a
// *rdf.LoadError.
type Policy interface {
	Load(ctx context.Context, name rdf.IRI) (*graph.Graph, error)
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc func(ctx context.Context, name rdf.IRI) (*graph.Graph, error)

// Load calls f.
func (f PolicyFunc) Load(ctx context.Context, name rdf.IRI) (*graph.Graph, error) {
	return f(ctx, name)
}

// Recorder receives the outcome of every load a DemandCollection attempts.
type Recorder interface {
	ObserveLoad(policy string, elapsed time.Duration, err error)
}

type nopRecorder struct{}

func (nopRecorder) ObserveLoad(string, time.Duration, error) {}

// policyLabel names a policy in logs and metrics.
func policyLabel(p Policy) string {
	if s, ok := p.(fmt.Stringer); ok {
		return s.String()
	}
	return "custom"
}

// GraphSource is the read side of a persistent graph store.
type GraphSource interface {
	LoadGraph(ctx context.Context, name rdf.IRI) (*graph.Graph, error)
}

// StorePolicy loads graphs from a persistent store.
type StorePolicy struct {
	source GraphSource
}

var _ Policy = (*StorePolicy)(nil)

// NewStorePolicy returns a policy reading from source.
func NewStorePolicy(source GraphSource) *StorePolicy {
	return &StorePolicy{source: source}
}

func (p *StorePolicy) String() string { return "store" }

// Load reads the graph from the store.
func (p *StorePolicy) Load(ctx context.Context, name rdf.IRI) (*graph.Graph, error) {
	if p.source == nil {
		return nil, rdf.NewLoadError(p.String(), name, fmt.Errorf("no store configured: %w", rdf.ErrInvalidArgument))
	}
	g, err := p.source.LoadGraph(ctx, name)
	if err != nil {
		return nil, rdf.NewLoadError(p.String(), name, err)
	}
	return g, nil
}

// SchemePolicy dispatches on the scheme of the graph name, for example
// "http" and "https" to a WebPolicy and "file" to a DiskPolicy.
type SchemePolicy struct {
	policies map[string]Policy
}

var _ Policy = (*SchemePolicy)(nil)

// NewSchemePolicy returns an empty dispatcher.
func NewSchemePolicy() *SchemePolicy {
	return &SchemePolicy{policies: make(map[string]Policy)}
}

// Handle routes names with any of the given schemes to p.
func (s *SchemePolicy) Handle(p Policy, schemes ...string) *SchemePolicy {
	for _, scheme := range schemes {
		s.policies[scheme] = p
	}
	return s
}

func (s *SchemePolicy) String() string { return "scheme" }

// Load delegates to the policy registered for the name's scheme.
func (s *SchemePolicy) Load(ctx context.Context, name rdf.IRI) (*graph.Graph, error) {
	if name.IsZero() {
		return nil, rdf.NewLoadError(s.String(), name, nil)
	}
	scheme := rdf.Scheme(name)
	p, ok := s.policies[scheme]
	if !ok {
		return nil, rdf.NewLoadError(s.String(), name, fmt.Errorf("scheme %q: %w", scheme, rdf.ErrUnsupported))
	}
	return p.Load(ctx, name)
}

// FallbackPolicy tries each policy in turn and returns the first graph
// loaded. Its label in metrics is "fallback".
type FallbackPolicy struct {
	policies []Policy
}

var _ Policy = (*FallbackPolicy)(nil)

// NewFallbackPolicy returns a policy trying policies in order. Nil entries
// are skipped.
func NewFallbackPolicy(policies ...Policy) *FallbackPolicy {
	f := &FallbackPolicy{}
	for _, p := range policies {
		if p != nil {
			f.policies = append(f.policies, p)
		}
	}
	return f
}

func (f *FallbackPolicy) String() string { return "fallback" }

// Load returns the first successful load. When every policy fails the error
// joins their failures.
func (f *FallbackPolicy) Load(ctx context.Context, name rdf.IRI) (*graph.Graph, error) {
	var errs []error
	for _, p := range f.policies {
		g, err := p.Load(ctx, name)
		if err == nil && g != nil {
			return g, nil
		}
		if err != nil {
			errs = append(errs, err)
		}
		if ctx.Err() != nil {
			break
		}
	}
	return nil, rdf.NewLoadError(f.String(), name, errors.Join(errs...))
}
