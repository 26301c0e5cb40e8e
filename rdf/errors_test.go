package rdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"nil", nil, ""},
		{"eof", io.EOF, ""},
		{"not found", fmt.Errorf("get: %w", ErrNotFound), ErrCodeNotFound},
		{"invalid argument", ErrInvalidArgument, ErrCodeInvalidArgument},
		{"graph not found", ErrGraphNotFound, ErrCodeGraphNotFound},
		{"unsupported", ErrUnsupported, ErrCodeUnsupported},
		{"unsupported format", ErrUnsupportedFormat, ErrCodeUnsupportedFormat},
		{"triple limit", ErrTripleLimitExceeded, ErrCodeTripleLimitExceeded},
		{"invalid iri", ErrInvalidIRI, ErrCodeInvalidIRI},
		{"canceled", context.Canceled, ErrCodeContextCanceled},
		{"deadline", fmt.Errorf("wait: %w", context.DeadlineExceeded), ErrCodeContextCanceled},
		{"unknown", errors.New("boom"), ErrCodeParseError},
		// A load error wins over its cause.
		{"load error", NewLoadError("web", NewIRI("http://example.org/g"), ErrUnsupportedFormat), ErrCodeGraphNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Code(tt.err))
		})
	}
}

func TestLoadError(t *testing.T) {
	cause := errors.New("404 Not Found")
	err := error(NewLoadError("web", NewIRI("http://example.org/g"), cause))

	assert.ErrorIs(t, err, ErrGraphNotFound)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "web: graph http://example.org/g not found: 404 Not Found", err.Error())

	var loadErr *LoadError
	assert.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &loadErr))
	assert.Equal(t, "web", loadErr.Source)

	assert.Equal(t, "disk: graph (default graph) not found", NewLoadError("disk", IRI{}, nil).Error())
	assert.ErrorIs(t, NewLoadError("disk", IRI{}, nil), ErrGraphNotFound)
}

func TestParseErrorMessage(t *testing.T) {
	long := strings.Repeat("x", 100)
	err := wrapParseError("ntriples", long, 3, errors.New("unexpected token"))

	msg := err.Error()
	assert.True(t, strings.HasPrefix(msg, "ntriples:3: unexpected token\n  "))
	assert.True(t, strings.HasSuffix(msg, strings.Repeat("x", 80)+"..."))
	assert.Nil(t, wrapParseError("ntriples", "", 1, nil))

	// An inner line number is kept when the outer one is unknown.
	inner := wrapParseError("ntriples", "", 7, errors.New("bad"))
	var parseErr *ParseError
	assert.True(t, errors.As(wrapParseError("ntriples", "", 0, inner), &parseErr))
	assert.Equal(t, 7, parseErr.Line)
}
