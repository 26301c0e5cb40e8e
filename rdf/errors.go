package rdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrorCode represents a programmatic error code for error handling.
type ErrorCode string

const (
	// ErrCodeNotFound indicates a lookup for an absent triple or graph.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeInvalidArgument indicates a nil/invalid identifier or a conflicting key.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeGraphNotFound indicates that a graph could not be fetched or parsed.
	ErrCodeGraphNotFound ErrorCode = "GRAPH_NOT_FOUND"
	// ErrCodeUnsupported indicates an optional capability the environment cannot provide.
	ErrCodeUnsupported ErrorCode = "UNSUPPORTED"
	// ErrCodeUnsupportedFormat indicates an unsupported format.
	ErrCodeUnsupportedFormat ErrorCode = "UNSUPPORTED_FORMAT"
	// ErrCodeLineTooLong indicates a line exceeded the configured limit.
	ErrCodeLineTooLong ErrorCode = "LINE_TOO_LONG"
	// ErrCodeTripleLimitExceeded indicates that the maximum number of triples/quads was exceeded.
	ErrCodeTripleLimitExceeded ErrorCode = "TRIPLE_LIMIT_EXCEEDED"
	// ErrCodeParseError indicates a general parse error.
	ErrCodeParseError ErrorCode = "PARSE_ERROR"
	// ErrCodeContextCanceled indicates the context was canceled.
	ErrCodeContextCanceled ErrorCode = "CONTEXT_CANCELED"
	// ErrCodeInvalidIRI indicates an invalid IRI was encountered.
	ErrCodeInvalidIRI ErrorCode = "INVALID_IRI"
)

var (
	// ErrNotFound is returned by Get operations when the key is absent.
	ErrNotFound = errors.New("rdf: not found")
	// ErrInvalidArgument is returned for nil/invalid identifiers and for adding
	// a graph whose name already exists without merging.
	ErrInvalidArgument = errors.New("rdf: invalid argument")
	// ErrGraphNotFound is the failure every load policy reports, whatever went
	// wrong underneath (network, file system, parsing).
	ErrGraphNotFound = errors.New("rdf: graph not found")
	// ErrUnsupported indicates an optional capability that cannot be provided.
	ErrUnsupported = errors.New("rdf: unsupported operation")
	// ErrUnsupportedFormat indicates an unsupported format.
	ErrUnsupportedFormat = errors.New("unsupported RDF format")
	// ErrLineTooLong indicates a line exceeded the configured limit.
	ErrLineTooLong = errors.New("rdf: line exceeds configured limit")
	// ErrTripleLimitExceeded indicates that the maximum number of triples/quads was exceeded.
	ErrTripleLimitExceeded = errors.New("rdf: maximum number of triples/quads exceeded")
	// ErrInvalidIRI indicates an IRI failed validation.
	ErrInvalidIRI = errors.New("rdf: invalid IRI")
)

// Code returns the error code for an error, or ErrCodeParseError if unknown.
// Returns empty string for nil errors or io.EOF (which is not an error condition).
func Code(err error) ErrorCode {
	if err == nil || err == io.EOF {
		return ""
	}

	// LoadError is checked first: it always maps to GRAPH_NOT_FOUND even when
	// the underlying cause is a parse error.
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return ErrCodeGraphNotFound
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return ErrCodeNotFound
	case errors.Is(err, ErrInvalidArgument):
		return ErrCodeInvalidArgument
	case errors.Is(err, ErrGraphNotFound):
		return ErrCodeGraphNotFound
	case errors.Is(err, ErrUnsupported):
		return ErrCodeUnsupported
	case errors.Is(err, ErrUnsupportedFormat):
		return ErrCodeUnsupportedFormat
	case errors.Is(err, ErrLineTooLong):
		return ErrCodeLineTooLong
	case errors.Is(err, ErrTripleLimitExceeded):
		return ErrCodeTripleLimitExceeded
	case errors.Is(err, ErrInvalidIRI):
		return ErrCodeInvalidIRI
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrCodeContextCanceled
	}
	return ErrCodeParseError
}

// ParseError provides structured context for parse failures.
type ParseError struct {
	Format    string // Format name (e.g., "ntriples", "jsonld")
	Statement string // Offending statement or input excerpt
	Line      int    // 1-based line number (0 if unknown)
	Err       error  // Underlying error
}

func (e *ParseError) Error() string {
	var msg strings.Builder
	msg.WriteString(e.Format)
	if e.Line > 0 {
		fmt.Fprintf(&msg, ":%d", e.Line)
	}
	msg.WriteString(": ")
	msg.WriteString(e.Err.Error())
	if e.Statement != "" {
		msg.WriteString("\n  ")
		msg.WriteString(excerpt(e.Statement))
	}
	return msg.String()
}

func (e *ParseError) Unwrap() error { return e.Err }

func excerpt(statement string) string {
	const maxExcerptLen = 80
	if len(statement) > maxExcerptLen {
		return statement[:maxExcerptLen] + "..."
	}
	return statement
}

// wrapParseError adds format/statement/line context to a parse error.
func wrapParseError(format, statement string, line int, err error) error {
	if err == nil {
		return nil
	}
	var parseErr *ParseError
	if errors.As(err, &parseErr) && parseErr.Line > 0 && line == 0 {
		line = parseErr.Line
	}
	return &ParseError{Format: format, Statement: statement, Line: line, Err: err}
}

// LoadError reports a failed attempt to fetch or read a graph. It always
// matches ErrGraphNotFound with errors.Is, and unwraps to the underlying cause.
type LoadError struct {
	Name   IRI    // Graph that was requested
	Source string // Policy that attempted the load (e.g. "web", "disk")
	Err    error  // Underlying cause, may be nil
}

func (e *LoadError) Error() string {
	name := e.Name.Value
	if name == "" {
		name = "(default graph)"
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: graph %s not found", e.Source, name)
	}
	return fmt.Sprintf("%s: graph %s not found: %v", e.Source, name, e.Err)
}

// Is makes every LoadError match ErrGraphNotFound.
func (e *LoadError) Is(target error) bool { return target == ErrGraphNotFound }

func (e *LoadError) Unwrap() error { return e.Err }

// NewLoadError returns a LoadError for name from the given source.
func NewLoadError(source string, name IRI, err error) *LoadError {
	return &LoadError{Name: name, Source: source, Err: err}
}
