package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/geoknoesis/rdfstore/event"
	"github.com/geoknoesis/rdfstore/graph"
	"github.com/geoknoesis/rdfstore/rdf"
	"github.com/geoknoesis/rdfstore/triples"
)

// Syncer writes a graph collection through to a Provider. A graph added to
// the collection is saved at once and deleted when removed; later changes to
// its triples mark it dirty until the next Flush.
//
// Event handlers cannot return errors, so failures are logged and kept; Err
// reports them.
type Syncer struct {
	provider Provider
	logger   *slog.Logger

	mu       sync.Mutex
	view     graph.View
	token    event.Token
	watching map[rdf.IRI]watch
	dirty    map[rdf.IRI]*graph.Graph
	errs     []error
}

type watch struct {
	g     *graph.Graph
	token event.Token
}

// NewSyncer returns a syncer writing to p.
func NewSyncer(p Provider, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{
		provider: p,
		logger:   logger,
		watching: make(map[rdf.IRI]watch),
		dirty:    make(map[rdf.IRI]*graph.Graph),
	}
}

// Attach starts following v. Graphs already in v are watched for changes but
// not saved until they change or Flush runs. A syncer follows one collection
// at a time; Attach detaches from the previous one.
func (s *Syncer) Attach(v graph.View) {
	s.Detach()
	s.mu.Lock()
	s.view = v
	s.mu.Unlock()

	for g := range v.All() {
		s.watch(g)
	}
	tok := v.Subscribe(s.handle)
	s.mu.Lock()
	s.token = tok
	s.mu.Unlock()
}

// Detach stops following the attached collection.
func (s *Syncer) Detach() {
	s.mu.Lock()
	view, tok := s.view, s.token
	watching := s.watching
	s.view, s.token = nil, 0
	s.watching = make(map[rdf.IRI]watch)
	s.mu.Unlock()

	if view != nil {
		view.Unsubscribe(tok)
	}
	for _, w := range watching {
		w.g.Unsubscribe(w.token)
	}
}

func (s *Syncer) handle(ev graph.Event) {
	ctx := context.Background()
	name := ev.Graph.Name()
	switch ev.Kind {
	case graph.GraphAdded:
		s.watch(ev.Graph)
		if err := s.provider.SaveGraph(ctx, ev.Graph); err != nil {
			s.fail(fmt.Errorf("save graph <%s>: %w", name.Value, err))
			s.markDirty(ev.Graph)
		}
	case graph.GraphRemoved:
		s.unwatch(name)
		if _, err := s.provider.DeleteGraph(ctx, name); err != nil {
			s.fail(fmt.Errorf("delete graph <%s>: %w", name.Value, err))
		}
	}
}

func (s *Syncer) watch(g *graph.Graph) {
	tok := g.Subscribe(func(triples.Event) { s.markDirty(g) })
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watching[g.Name()] = watch{g: g, token: tok}
}

func (s *Syncer) unwatch(name rdf.IRI) {
	s.mu.Lock()
	w, ok := s.watching[name]
	delete(s.watching, name)
	delete(s.dirty, name)
	s.mu.Unlock()
	if ok {
		w.g.Unsubscribe(w.token)
	}
}

func (s *Syncer) markDirty(g *graph.Graph) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty[g.Name()] = g
}

func (s *Syncer) fail(err error) {
	s.logger.Warn("graph store write failed", slog.Any("error", err))
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, err)
}

// Dirty returns the number of graphs changed since they were last saved.
func (s *Syncer) Dirty() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.dirty)
}

// Flush saves every dirty graph. With all set it saves every graph of the
// attached collection instead.
func (s *Syncer) Flush(ctx context.Context, all bool) error {
	s.mu.Lock()
	var pending []*graph.Graph
	if all && s.view != nil {
		view := s.view
		s.mu.Unlock()
		for g := range view.All() {
			pending = append(pending, g)
		}
		s.mu.Lock()
	} else {
		for _, g := range s.dirty {
			pending = append(pending, g)
		}
	}
	s.dirty = make(map[rdf.IRI]*graph.Graph)
	s.mu.Unlock()

	var errs []error
	for _, g := range pending {
		if err := s.provider.SaveGraph(ctx, g); err != nil {
			errs = append(errs, fmt.Errorf("save graph <%s>: %w", g.Name().Value, err))
			s.markDirty(g)
		}
	}
	s.logger.Debug("flushed graph store", slog.Int("graphs", len(pending)), slog.Int("failed", len(errs)))
	return errors.Join(errs...)
}

// Err returns the failures recorded by event handlers, joined.
func (s *Syncer) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return errors.Join(s.errs...)
}
