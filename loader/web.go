package loader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/golang/groupcache/lru"
	ld "github.com/piprate/json-gold/ld"
	"github.com/pquerna/cachecontrol"
	"golang.org/x/time/rate"

	"github.com/geoknoesis/rdfstore/graph"
	"github.com/geoknoesis/rdfstore/rdf"
)

const (
	// DefaultMaxBodyBytes caps a fetched document.
	DefaultMaxBodyBytes = 32 << 20
	// DefaultUserAgent is sent with every request.
	DefaultUserAgent = "rdfstore/1.0"
)

// WebPolicy fetches graphs over HTTP(S). The response media type selects the
// parser; when it is missing or unknown the extension of the URL path is used.
type WebPolicy struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
	limiter   *rate.Limiter
	cache     *responseCache
	decode    rdf.DecodeOptions
	documents ld.DocumentLoader
	logger    *slog.Logger
	now       func() time.Time
}

var _ Policy = (*WebPolicy)(nil)

// WebOption configures a WebPolicy.
type WebOption func(*WebPolicy) error

// WithHTTPClient sets the client used for every request.
func WithHTTPClient(c *http.Client) WebOption {
	return func(p *WebPolicy) error {
		if c == nil {
			return fmt.Errorf("nil http client: %w", rdf.ErrInvalidArgument)
		}
		p.client = c
		return nil
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) WebOption {
	return func(p *WebPolicy) error {
		p.userAgent = ua
		return nil
	}
}

// WithMaxBodyBytes caps the size of a fetched document.
func WithMaxBodyBytes(n int64) WebOption {
	return func(p *WebPolicy) error {
		if n <= 0 {
			return fmt.Errorf("max body bytes %d: %w", n, rdf.ErrInvalidArgument)
		}
		p.maxBytes = n
		return nil
	}
}

// WithRateLimit allows at most perSecond requests per second with the given
// burst. Requests wait for a token within their context.
func WithRateLimit(perSecond float64, burst int) WebOption {
	return func(p *WebPolicy) error {
		if perSecond <= 0 || burst <= 0 {
			return fmt.Errorf("rate %v burst %d: %w", perSecond, burst, rdf.ErrInvalidArgument)
		}
		p.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		return nil
	}
}

// WithResponseCache keeps up to entries cacheable responses in memory,
// honouring their Cache-Control and Expires headers.
func WithResponseCache(entries int) WebOption {
	return func(p *WebPolicy) error {
		if entries <= 0 {
			return fmt.Errorf("cache entries %d: %w", entries, rdf.ErrInvalidArgument)
		}
		p.cache = newResponseCache(entries)
		return nil
	}
}

// WithProxy routes requests through proxyURL. It needs a client whose
// transport is an *http.Transport (or nil); other transports yield
// rdf.ErrUnsupported.
func WithProxy(proxyURL string) WebOption {
	return func(p *WebPolicy) error {
		u, err := url.Parse(proxyURL)
		if err != nil {
			return fmt.Errorf("proxy %q: %w", proxyURL, rdf.ErrInvalidArgument)
		}
		var transport *http.Transport
		switch t := p.client.Transport.(type) {
		case nil:
			transport = http.DefaultTransport.(*http.Transport).Clone()
		case *http.Transport:
			transport = t.Clone()
		default:
			return fmt.Errorf("proxy on transport %T: %w", t, rdf.ErrUnsupported)
		}
		transport.Proxy = http.ProxyURL(u)
		client := *p.client
		client.Transport = transport
		p.client = &client
		return nil
	}
}

// WithWebDecodeOptions sets the parser limits.
func WithWebDecodeOptions(opts rdf.DecodeOptions) WebOption {
	return func(p *WebPolicy) error {
		p.decode = opts
		return nil
	}
}

// WithWebLogger sets the logger.
func WithWebLogger(l *slog.Logger) WebOption {
	return func(p *WebPolicy) error {
		if l != nil {
			p.logger = l
		}
		return nil
	}
}

// NewWebPolicy returns a policy fetching with a 30 second client timeout and
// no rate limit or cache unless configured.
func NewWebPolicy(opts ...WebOption) (*WebPolicy, error) {
	p := &WebPolicy{
		client:    &http.Client{Timeout: 30 * time.Second},
		userAgent: DefaultUserAgent,
		maxBytes:  DefaultMaxBodyBytes,
		decode:    rdf.DefaultDecodeOptions(),
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	p.documents = ld.NewDefaultDocumentLoader(p.client)
	return p, nil
}

func (p *WebPolicy) String() string { return "web" }

// Load fetches and parses the document at name.
func (p *WebPolicy) Load(ctx context.Context, name rdf.IRI) (*graph.Graph, error) {
	if name.IsZero() {
		return nil, rdf.NewLoadError(p.String(), name, nil)
	}
	if scheme := rdf.Scheme(name); scheme != "http" && scheme != "https" {
		return nil, rdf.NewLoadError(p.String(), name, fmt.Errorf("scheme %q: %w", scheme, rdf.ErrUnsupported))
	}

	doc, err := p.document(ctx, name.Value)
	if err != nil {
		return nil, rdf.NewLoadError(p.String(), name, err)
	}
	format, err := rdf.FormatFromContentType(doc.contentType)
	if err != nil {
		format, err = formatFromURL(doc.url)
		if err != nil {
			return nil, rdf.NewLoadError(p.String(), name, err)
		}
	}

	g := graph.New(graph.WithName(name), graph.WithLogger(p.logger))
	opts := ReadOptions{Base: doc.url, Decode: p.decode, Documents: p.documents}
	if err := ReadGraph(ctx, bytes.NewReader(doc.body), format, g, opts); err != nil {
		_ = g.Close()
		return nil, rdf.NewLoadError(p.String(), name, err)
	}
	return g, nil
}

type document struct {
	url         string
	contentType string
	body        []byte
	expires     time.Time
}

func (p *WebPolicy) document(ctx context.Context, target string) (*document, error) {
	if p.cache != nil {
		if doc, ok := p.cache.get(target, p.now()); ok {
			p.logger.Debug("web cache hit", slog.String("url", target))
			return doc, nil
		}
	}
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", rdf.AcceptHeader)
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, p.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > p.maxBytes {
		return nil, fmt.Errorf("content too large (exceeds %d bytes)", p.maxBytes)
	}

	doc := &document{
		url:         resp.Request.URL.String(),
		contentType: resp.Header.Get("Content-Type"),
		body:        body,
	}
	if p.cache != nil {
		reasons, expires, err := cachecontrol.CachableResponse(req, resp, cachecontrol.Options{PrivateCache: true})
		if err == nil && len(reasons) == 0 && expires.After(p.now()) {
			doc.expires = expires
			p.cache.add(target, doc)
		}
	}
	return doc, nil
}

func formatFromURL(raw string) (rdf.Format, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", rdf.ErrUnsupportedFormat, err)
	}
	return rdf.FormatFromPath(u.Path)
}

// responseCache is an LRU of fetched documents keyed by request URL.
type responseCache struct {
	mu    sync.Mutex
	items *lru.Cache
}

func newResponseCache(entries int) *responseCache {
	return &responseCache{items: lru.New(entries)}
}

func (c *responseCache) get(key string, now time.Time) (*document, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items.Get(key)
	if !ok {
		return nil, false
	}
	doc := v.(*document)
	if !now.Before(doc.expires) {
		c.items.Remove(key)
		return nil, false
	}
	return doc, true
}

func (c *responseCache) add(key string, doc *document) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items.Add(key, doc)
}

func (c *responseCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items.Len()
}
