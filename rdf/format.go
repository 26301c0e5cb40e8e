package rdf

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies RDF serialization formats understood by the loaders.
type Format string

const (
	FormatNTriples Format = "ntriples"
	FormatNQuads   Format = "nquads"
	FormatJSONLD   Format = "jsonld"
)

// ParseFormat normalizes a format string.
func ParseFormat(value string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "ntriples", "nt":
		return FormatNTriples, true
	case "nquads", "nq":
		return FormatNQuads, true
	case "jsonld", "json-ld", "json":
		return FormatJSONLD, true
	default:
		return "", false
	}
}

// FormatFromPath infers format from a filename or URL path extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".nt":
		return FormatNTriples, nil
	case ".nq":
		return FormatNQuads, nil
	case ".jsonld", ".json":
		return FormatJSONLD, nil
	default:
		return "", fmt.Errorf("%w: no format for path %q", ErrUnsupportedFormat, path)
	}
}

// FormatFromContentType infers format from a content type.
func FormatFromContentType(contentType string) (Format, error) {
	mediaType := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	switch mediaType {
	case "application/n-triples", "text/plain":
		return FormatNTriples, nil
	case "application/n-quads":
		return FormatNQuads, nil
	case "application/ld+json", "application/json":
		return FormatJSONLD, nil
	default:
		return "", fmt.Errorf("%w: content type %q", ErrUnsupportedFormat, contentType)
	}
}

// MediaType returns the preferred media type of the format.
func (f Format) MediaType() string {
	switch f {
	case FormatNTriples:
		return "application/n-triples"
	case FormatNQuads:
		return "application/n-quads"
	case FormatJSONLD:
		return "application/ld+json"
	default:
		return ""
	}
}

// AcceptHeader is the Accept header value used when fetching graphs over HTTP.
const AcceptHeader = "application/n-triples, application/n-quads;q=0.9, application/ld+json;q=0.8, text/plain;q=0.5"
