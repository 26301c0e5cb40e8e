package rdf

import "sync"

// Namespace builds IRIs from a base IRI and a local suffix.
type Namespace struct {
	Base string
}

// NewNamespace returns a namespace rooted at base.
func NewNamespace(base string) Namespace {
	return Namespace{Base: base}
}

// Expand returns the IRI base+suffix.
func (n Namespace) Expand(suffix string) IRI {
	return IRI{Value: n.Base + suffix}
}

// Contains reports whether iri lies in the namespace.
func (n Namespace) Contains(iri IRI) bool {
	return len(iri.Value) >= len(n.Base) && iri.Value[:len(n.Base)] == n.Base
}

// Common vocabularies.
var (
	RDFNamespace = NewNamespace("http://www.w3.org/1999/02/22-rdf-syntax-ns#")
	XSDNamespace = NewNamespace("http://www.w3.org/2001/XMLSchema#")

	xsdString     = XSDNamespace.Expand("string")
	rdfLangString = RDFNamespace.Expand("langString")
)

// Interner deduplicates IRI strings so that repeated IRIs across loaded
// graphs share one backing string. It is safe for concurrent use.
//
// An Interner is constructed explicitly and passed to the decoders that
// should use it (see DecodeOptions.Interner); there is no package-level one.
type Interner struct {
	mu      sync.RWMutex
	entries map[string]IRI
}

// NewInterner returns an empty interner.
func NewInterner() *Interner {
	return &Interner{entries: make(map[string]IRI)}
}

// Intern returns the canonical IRI for value.
func (in *Interner) Intern(value string) IRI {
	in.mu.RLock()
	iri, ok := in.entries[value]
	in.mu.RUnlock()
	if ok {
		return iri
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	if iri, ok := in.entries[value]; ok {
		return iri
	}
	iri = IRI{Value: value}
	in.entries[value] = iri
	return iri
}

// Len returns the number of interned IRIs.
func (in *Interner) Len() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.entries)
}

// Clear drops every interned IRI.
func (in *Interner) Clear() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.entries = make(map[string]IRI)
}
