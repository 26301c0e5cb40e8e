package rdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateIRI(t *testing.T) {
	tests := []struct {
		name    string
		iri     string
		wantErr bool
	}{
		{name: "http", iri: "http://example.org/resource"},
		{name: "urn", iri: "urn:example:resource"},
		{name: "query and fragment", iri: "http://example.org/r?x=1#frag"},
		{name: "file", iri: "file:///tmp/data.nt"},
		{name: "empty", iri: "", wantErr: true},
		{name: "relative path", iri: "/path/to/resource", wantErr: true},
		{name: "network path", iri: "//example.org/resource", wantErr: true},
		{name: "space", iri: "http://example.org/a b", wantErr: true},
		{name: "angle bracket", iri: "http://example.org/a<b", wantErr: true},
		{name: "control character", iri: "http://example.org/\x00", wantErr: true},
		{name: "scheme starting with digit", iri: "1http://example.org/", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIRI(tt.iri)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidIRI)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestScheme(t *testing.T) {
	assert.Equal(t, "http", Scheme(NewIRI("HTTP://example.org/")))
	assert.Equal(t, "urn", Scheme(NewIRI("urn:isbn:123")))
	assert.Empty(t, Scheme(NewIRI("/relative")))
	assert.Empty(t, Scheme(NewIRI(":nothing")))
}

func TestFilePath(t *testing.T) {
	tests := []struct {
		iri  string
		want string
		ok   bool
	}{
		{"file:///tmp/data.nt", "/tmp/data.nt", true},
		{"file://localhost/tmp/data.nt", "/tmp/data.nt", true},
		{"file:///tmp/with%20space.nt", "/tmp/with space.nt", true},
		{"file:relative.nt", "relative.nt", true},
		{"file://remote/tmp/data.nt", "", false},
		{"http://example.org/data.nt", "", false},
		{"file://", "", false},
	}
	for _, tt := range tests {
		got, ok := FilePath(NewIRI(tt.iri))
		assert.Equal(t, tt.ok, ok, tt.iri)
		assert.Equal(t, tt.want, got, tt.iri)
	}

	path := "/srv/rdf/people data.nt"
	got, ok := FilePath(FileIRI(path))
	assert.True(t, ok)
	assert.Equal(t, path, got)
}
