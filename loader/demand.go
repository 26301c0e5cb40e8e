package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/geoknoesis/rdfstore/event"
	"github.com/geoknoesis/rdfstore/graph"
	"github.com/geoknoesis/rdfstore/rdf"
)

// DefaultTimeout bounds the load started by Contains.
const DefaultTimeout = 30 * time.Second

var errNoGraph = errors.New("policy returned no graph")

// DemandCollection is a graph collection that loads missing graphs through a
// Policy the first time they are queried. Count, Names and All are inherited
// from the wrapped collection.
//
// Contains never reports load failures: a graph that cannot be loaded is
// indistinguishable from one that does not exist.
//
// Contains, ContainsContext and Get may be called from several goroutines;
// concurrent queries for the same missing name share one load. Collection
// events are fired after the collection is unlocked, so handlers may query it.
type DemandCollection struct {
	*graph.Wrapper

	policy   Policy
	label    string
	timeout  time.Duration
	logger   *slog.Logger
	recorder Recorder

	mu       sync.Mutex
	mutating bool
	pending  []graph.Event
	events   event.Dispatcher[graph.Event]
	relay    event.Token
	loads    singleflight.Group
}

var _ graph.Collection = (*DemandCollection)(nil)

// DemandOption configures a DemandCollection.
type DemandOption func(*DemandCollection)

// WithTimeout bounds the load started by Contains and Get. Zero or negative
// disables the bound.
func WithTimeout(d time.Duration) DemandOption {
	return func(c *DemandCollection) { c.timeout = d }
}

// WithLogger sets the logger. Load failures are logged at debug level.
func WithLogger(l *slog.Logger) DemandOption {
	return func(c *DemandCollection) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRecorder reports load outcomes to r.
func WithRecorder(r Recorder) DemandOption {
	return func(c *DemandCollection) {
		if r != nil {
			c.recorder = r
		}
	}
}

// NewDemandCollection wraps inner, taking ownership of it, and loads missing
// graphs through policy. A nil inner is replaced by a new graph.Memory.
func NewDemandCollection(inner graph.Collection, policy Policy, opts ...DemandOption) (*DemandCollection, error) {
	if policy == nil {
		return nil, fmt.Errorf("demand collection without policy: %w", rdf.ErrInvalidArgument)
	}
	c := &DemandCollection{
		Wrapper:  graph.NewWrapper(inner),
		policy:   policy,
		label:    policyLabel(policy),
		timeout:  DefaultTimeout,
		logger:   slog.Default(),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.SetSource(c)
	c.relay = c.Wrapper.Subscribe(c.queue)
	return c, nil
}

// Policy returns the load policy.
func (c *DemandCollection) Policy() Policy { return c.policy }

// Contains reports whether the graph is present, loading it if needed.
func (c *DemandCollection) Contains(name rdf.IRI) bool {
	return c.ContainsContext(context.Background(), name)
}

// ContainsContext is Contains for callers that may give up early. A load
// shared by several callers keeps running when one of them is canceled; it is
// bounded by the collection timeout only.
func (c *DemandCollection) ContainsContext(ctx context.Context, name rdf.IRI) bool {
	if c.has(name) {
		return true
	}
	if ctx.Err() != nil {
		return false
	}
	ch := c.loads.DoChan(name.Value, func() (any, error) {
		loadCtx, cancel := c.loadContext(ctx)
		defer cancel()
		return nil, c.load(loadCtx, name)
	})
	select {
	case res := <-ch:
		return res.Err == nil
	case <-ctx.Done():
		return false
	}
}

// Get returns the graph, loading it if needed.
func (c *DemandCollection) Get(name rdf.IRI) (*graph.Graph, error) {
	if !c.Contains(name) {
		return nil, fmt.Errorf("graph <%s>: %w", name.Value, rdf.ErrNotFound)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Wrapper.Get(name)
}

// Add adds g to the wrapped collection.
func (c *DemandCollection) Add(g *graph.Graph, merge bool) (bool, error) {
	return c.mutate(func() (bool, error) { return c.Wrapper.Add(g, merge) })
}

// Remove removes the named graph from the wrapped collection.
func (c *DemandCollection) Remove(name rdf.IRI) bool {
	ok, _ := c.mutate(func() (bool, error) { return c.Wrapper.Remove(name), nil })
	return ok
}

// Subscribe registers h for graph events.
func (c *DemandCollection) Subscribe(h event.Handler[graph.Event]) event.Token {
	return c.events.Subscribe(h)
}

// Unsubscribe removes a handler.
func (c *DemandCollection) Unsubscribe(tok event.Token) bool { return c.events.Unsubscribe(tok) }

// Close drops the subscribers and closes the wrapped collection.
func (c *DemandCollection) Close() error {
	c.Wrapper.Unsubscribe(c.relay)
	c.events.Reset()
	return c.Wrapper.Close()
}

func (c *DemandCollection) loadContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = context.WithoutCancel(ctx)
	if c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}
	return ctx, func() {}
}

// queue runs inline with the wrapped collection's events. Events raised
// under mu wait for mutate to release it.
func (c *DemandCollection) queue(ev graph.Event) {
	if c.mutating {
		c.pending = append(c.pending, ev)
		return
	}
	c.events.Fire(ev)
}

func (c *DemandCollection) mutate(fn func() (bool, error)) (bool, error) {
	c.mu.Lock()
	c.mutating = true
	ok, err := fn()
	c.mutating = false
	pending := c.pending
	c.pending = nil
	c.mu.Unlock()

	for _, ev := range pending {
		c.events.Fire(ev)
	}
	return ok, err
}

func (c *DemandCollection) has(name rdf.IRI) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Wrapper.Contains(name)
}

func (c *DemandCollection) load(ctx context.Context, name rdf.IRI) error {
	if c.has(name) {
		return nil
	}

	start := time.Now()
	err := c.fetch(ctx, name)
	c.recorder.ObserveLoad(c.label, time.Since(start), err)
	if err != nil {
		c.logger.Debug("demand load failed",
			slog.String("policy", c.label),
			slog.String("graph", name.Value),
			slog.Any("error", err))
		return err
	}
	c.logger.Debug("demand loaded graph",
		slog.String("policy", c.label),
		slog.String("graph", name.Value),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}

func (c *DemandCollection) fetch(ctx context.Context, name rdf.IRI) error {
	g, err := c.policy.Load(ctx, name)
	if err != nil {
		return err
	}
	if g == nil {
		return rdf.NewLoadError(c.label, name, errNoGraph)
	}
	// The collection key must be the requested name, whatever the document
	// declared.
	g.SetName(name)

	if _, err := c.Add(g, false); err != nil {
		_ = g.Close()
		return err
	}
	return nil
}
