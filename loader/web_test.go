package loader

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoknoesis/rdfstore/rdf"
)

const peopleNT = `<http://example.org/alice> <http://example.org/knows> <http://example.org/bob> .
<http://example.org/bob> <http://example.org/name> "Bob" .
`

var (
	alice = rdf.NewIRI("http://example.org/alice")
	bob   = rdf.NewIRI("http://example.org/bob")
	knows = rdf.NewIRI("http://example.org/knows")
)

type rdfServer struct {
	*httptest.Server
	hits atomic.Int32
}

func newRDFServer(t *testing.T, handler http.HandlerFunc) *rdfServer {
	t.Helper()
	s := &rdfServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(s.Close)
	return s
}

func serve(contentType, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		_, _ = w.Write([]byte(body))
	}
}

func TestWebPolicyLoadsNTriples(t *testing.T) {
	var accept, agent string
	srv := newRDFServer(t, func(w http.ResponseWriter, r *http.Request) {
		accept = r.Header.Get("Accept")
		agent = r.Header.Get("User-Agent")
		serve("application/n-triples", peopleNT)(w, r)
	})
	p, err := NewWebPolicy(WithUserAgent("tests/1"))
	require.NoError(t, err)

	name := rdf.NewIRI(srv.URL + "/people")
	g, err := p.Load(context.Background(), name)
	require.NoError(t, err)

	assert.Equal(t, name, g.Name())
	assert.Equal(t, 2, g.Count())
	assert.True(t, g.Contains(rdf.NewTriple(alice, knows, bob)))
	assert.Equal(t, rdf.AcceptHeader, accept)
	assert.Equal(t, "tests/1", agent)
}

func TestWebPolicyFormatFromExtension(t *testing.T) {
	srv := newRDFServer(t, serve("application/octet-stream",
		"<http://example.org/alice> <http://example.org/knows> <http://example.org/bob> <http://example.org/g> .\n"))
	p, err := NewWebPolicy()
	require.NoError(t, err)

	g, err := p.Load(context.Background(), rdf.NewIRI(srv.URL+"/data.nq"))
	require.NoError(t, err)
	assert.Equal(t, 1, g.Count())
	assert.Equal(t, rdf.NewIRI("http://example.org/g"), g.Name(), "a single graph name in N-Quads input names the graph")
}

func TestWebPolicyJSONLD(t *testing.T) {
	doc := `{
  "@context": {"knows": {"@id": "http://example.org/knows", "@type": "@id"}},
  "@id": "http://example.org/alice",
  "knows": "http://example.org/bob"
}`
	srv := newRDFServer(t, serve("application/ld+json", doc))
	p, err := NewWebPolicy()
	require.NoError(t, err)

	g, err := p.Load(context.Background(), rdf.NewIRI(srv.URL+"/alice"))
	require.NoError(t, err)
	assert.Equal(t, 1, g.Count())
	assert.True(t, g.Contains(rdf.NewTriple(alice, knows, bob)))
}

func TestWebPolicyFailures(t *testing.T) {
	srv := newRDFServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			http.NotFound(w, r)
		case "/broken.nt":
			serve("application/n-triples", "<http://example.org/a> not-a-triple\n")(w, r)
		case "/unknown":
			serve("text/html", "<html></html>")(w, r)
		case "/big.nt":
			serve("application/n-triples", strings.Repeat(peopleNT, 100))(w, r)
		}
	})
	p, err := NewWebPolicy(WithMaxBodyBytes(512))
	require.NoError(t, err)

	for _, target := range []string{
		srv.URL + "/missing",
		srv.URL + "/broken.nt",
		srv.URL + "/unknown",
		srv.URL + "/big.nt",
		"ftp://example.org/data.nt",
		"",
	} {
		t.Run(target, func(t *testing.T) {
			g, err := p.Load(context.Background(), rdf.NewIRI(target))
			assert.Nil(t, g)
			require.Error(t, err)
			assert.True(t, errors.Is(err, rdf.ErrGraphNotFound))
			assert.Equal(t, rdf.ErrCodeGraphNotFound, rdf.Code(err))

			var loadErr *rdf.LoadError
			require.True(t, errors.As(err, &loadErr))
			assert.Equal(t, "web", loadErr.Source)
		})
	}
}

func TestWebPolicyResponseCache(t *testing.T) {
	srv := newRDFServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/fresh.nt" {
			w.Header().Set("Cache-Control", "max-age=300")
		} else {
			w.Header().Set("Cache-Control", "no-store")
		}
		serve("application/n-triples", peopleNT)(w, r)
	})
	p, err := NewWebPolicy(WithResponseCache(8))
	require.NoError(t, err)
	ctx := context.Background()

	for range 3 {
		_, err := p.Load(ctx, rdf.NewIRI(srv.URL+"/fresh.nt"))
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), srv.hits.Load())
	assert.Equal(t, 1, p.cache.size())

	for range 2 {
		_, err := p.Load(ctx, rdf.NewIRI(srv.URL+"/stale.nt"))
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), srv.hits.Load())
}

func TestWebPolicyRateLimitHonoursContext(t *testing.T) {
	srv := newRDFServer(t, serve("application/n-triples", peopleNT))
	p, err := NewWebPolicy(WithRateLimit(100, 1))
	require.NoError(t, err)

	_, err = p.Load(context.Background(), rdf.NewIRI(srv.URL+"/a.nt"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Load(ctx, rdf.NewIRI(srv.URL+"/b.nt"))
	assert.True(t, errors.Is(err, rdf.ErrGraphNotFound))
	assert.Equal(t, int32(1), srv.hits.Load())
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestWebPolicyProxy(t *testing.T) {
	_, err := NewWebPolicy(WithProxy("http://proxy.example:3128"))
	require.NoError(t, err)

	custom := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("unused")
	})}
	_, err = NewWebPolicy(WithHTTPClient(custom), WithProxy("http://proxy.example:3128"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, rdf.ErrUnsupported))
	assert.Equal(t, rdf.ErrCodeUnsupported, rdf.Code(err))
}

func TestWebPolicyRejectsBadOptions(t *testing.T) {
	for _, opt := range []WebOption{
		WithHTTPClient(nil),
		WithMaxBodyBytes(0),
		WithRateLimit(0, 1),
		WithResponseCache(0),
	} {
		_, err := NewWebPolicy(opt)
		assert.True(t, errors.Is(err, rdf.ErrInvalidArgument))
	}
}
