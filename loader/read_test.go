package loader

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoknoesis/rdfstore/graph"
	"github.com/geoknoesis/rdfstore/rdf"
)

func TestReadGraphScopesBlankNodes(t *testing.T) {
	g := graph.New(graph.WithBlankNodeMapper(graph.NewBlankNodeMapper("b")))
	issued := g.CreateBlankNode()
	require.Equal(t, "b1", issued.ID)

	doc := "_:b1 <http://example.org/knows> _:other .\n"
	require.NoError(t, ReadGraph(context.Background(), strings.NewReader(doc), rdf.FormatNTriples, g, ReadOptions{}))

	want := rdf.NewTriple(rdf.BlankNode{ID: "remapped1"}, knows, rdf.BlankNode{ID: "other"})
	assert.True(t, g.Contains(want), "a document ID equal to an issued ID is remapped")
}

func TestReadGraphMixedGraphNamesKeepName(t *testing.T) {
	g := graph.New(graph.WithName(rdf.NewIRI("http://example.org/mine")))
	doc := `<http://example.org/alice> <http://example.org/knows> <http://example.org/bob> <http://example.org/g1> .
<http://example.org/bob> <http://example.org/knows> <http://example.org/alice> .
`
	require.NoError(t, ReadGraph(context.Background(), strings.NewReader(doc), rdf.FormatNQuads, g, ReadOptions{}))
	assert.Equal(t, 2, g.Count())
	assert.Equal(t, rdf.NewIRI("http://example.org/mine"), g.Name())
}

func TestReadGraphErrors(t *testing.T) {
	ctx := context.Background()

	err := ReadGraph(ctx, strings.NewReader(peopleNT), rdf.FormatNTriples, nil, ReadOptions{})
	assert.True(t, errors.Is(err, rdf.ErrInvalidArgument))

	err = ReadGraph(ctx, strings.NewReader(""), rdf.Format("turtle"), graph.New(), ReadOptions{})
	assert.True(t, errors.Is(err, rdf.ErrUnsupportedFormat))

	err = ReadGraph(ctx, strings.NewReader("{not json"), rdf.FormatJSONLD, graph.New(), ReadOptions{})
	assert.Error(t, err)

	limited := ReadOptions{Decode: rdf.DecodeOptions{MaxTriples: 1}}
	err = ReadGraph(ctx, strings.NewReader(peopleNT), rdf.FormatNTriples, graph.New(), limited)
	assert.True(t, errors.Is(err, rdf.ErrTripleLimitExceeded))

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	err = ReadGraph(canceled, strings.NewReader(peopleNT), rdf.FormatNTriples, graph.New(), ReadOptions{})
	assert.True(t, errors.Is(err, context.Canceled))
}
