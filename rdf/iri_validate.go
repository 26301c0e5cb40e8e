package rdf

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidateIRI validates an absolute IRI. It returns an error wrapping
// ErrInvalidIRI if the IRI is empty, relative, or syntactically malformed.
//
// This is a structural check built on url.Parse, not full RFC 3987 validation.
func ValidateIRI(iri string) error {
	if iri == "" {
		return fmt.Errorf("%w: empty IRI", ErrInvalidIRI)
	}
	if strings.ContainsAny(iri, " <>\"{}|^`") {
		return fmt.Errorf("%w: illegal character in %q", ErrInvalidIRI, iri)
	}
	parsed, err := url.Parse(iri)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidIRI, err)
	}
	if parsed.Scheme == "" {
		return fmt.Errorf("%w: relative IRI %q", ErrInvalidIRI, iri)
	}
	for _, r := range parsed.Scheme {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '+' || r == '-' || r == '.') {
			return fmt.Errorf("%w: invalid scheme in %q", ErrInvalidIRI, iri)
		}
	}
	return nil
}

// Scheme returns the lower-cased scheme of an IRI, or "" if it has none.
func Scheme(iri IRI) string {
	i := strings.IndexByte(iri.Value, ':')
	if i <= 0 {
		return ""
	}
	return strings.ToLower(iri.Value[:i])
}

// FilePath returns the local path named by a file: IRI. The second result is
// false when the IRI is not a usable local file reference.
func FilePath(iri IRI) (string, bool) {
	if Scheme(iri) != "file" {
		return "", false
	}
	u, err := url.Parse(iri.Value)
	if err != nil {
		return "", false
	}
	if u.Host != "" && u.Host != "localhost" {
		return "", false
	}
	path := u.Path
	if path == "" {
		// file:relative/path form
		path = u.Opaque
	}
	if path == "" {
		return "", false
	}
	return path, true
}

// FileIRI returns the file: IRI for an absolute local path.
func FileIRI(path string) IRI {
	u := url.URL{Scheme: "file", Path: path}
	return IRI{Value: u.String()}
}
