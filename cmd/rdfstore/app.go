package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/geoknoesis/rdfstore/config"
	"github.com/geoknoesis/rdfstore/graph"
	"github.com/geoknoesis/rdfstore/loader"
	"github.com/geoknoesis/rdfstore/metrics"
	"github.com/geoknoesis/rdfstore/rdf"
	"github.com/geoknoesis/rdfstore/store"
)

type appOptions struct {
	configPath  string
	logLevel    string
	storePath   string
	showMetrics bool
}

// app holds what every command shares: configuration, logging and metrics.
type app struct {
	cfg         *config.Config
	logger      *slog.Logger
	registry    *prometheus.Registry
	metrics     *metrics.Metrics
	showMetrics bool
	out, errOut io.Writer
}

func newApp(opts appOptions, out, errOut io.Writer) (*app, error) {
	cfg := config.DefaultConfig()
	if opts.configPath != "" {
		loaded, err := config.LoadFromFile(opts.configPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.storePath != "" {
		cfg.Store.Path = opts.storePath
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	registry := prometheus.NewRegistry()
	m, err := metrics.New(registry, cfg.Metrics.Namespace)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}
	return &app{
		cfg:         cfg,
		logger:      cfg.NewLogger(errOut),
		registry:    registry,
		metrics:     m,
		showMetrics: opts.showMetrics,
		out:         out,
		errOut:      errOut,
	}, nil
}

func (a *app) openStore(ctx context.Context) (*store.SQLite, error) {
	s, err := store.OpenSQLite(ctx, a.cfg.Store.Path, a.logger)
	if err != nil {
		return nil, fmt.Errorf("open graph store: %w", err)
	}
	return s, nil
}

// schemePolicy loads http(s): IRIs from the web and file: IRIs from disk.
// A remote policy reads files only below the configured disk.roots and
// leaves file: IRIs unhandled when there are none.
func (a *app) schemePolicy(remote bool) (*loader.SchemePolicy, error) {
	web, err := loader.NewWebPolicy(a.cfg.WebOptions(a.logger)...)
	if err != nil {
		return nil, fmt.Errorf("web policy: %w", err)
	}
	p := loader.NewSchemePolicy().Handle(web, "http", "https")
	if remote && len(a.cfg.Disk.Roots) == 0 {
		a.logger.Info("file: graphs disabled, no disk.roots configured")
		return p, nil
	}
	return p.Handle(loader.NewDiskPolicy(a.cfg.DiskOptions(a.logger)...), "file"), nil
}

// collection returns an instrumented demand-loading collection.
func (a *app) collection(policy loader.Policy) (*loader.DemandCollection, error) {
	c, err := loader.NewDemandCollection(graph.NewMemory(graph.WithCollectionLogger(a.logger)),
		policy, a.cfg.DemandOptions(a.logger, a.metrics)...)
	if err != nil {
		return nil, err
	}
	a.metrics.ObserveGraphs(c)
	c.Subscribe(func(ev graph.Event) {
		if ev.Kind == graph.GraphAdded {
			a.metrics.ObserveTriples(ev.Graph.Triples())
		}
	})
	return c, nil
}

// get loads name through c. Contains hides the reason for a failed load, so
// the error points at the debug log.
func (a *app) get(c *loader.DemandCollection, name rdf.IRI) (*graph.Graph, error) {
	g, err := c.Get(name)
	if err != nil {
		return nil, fmt.Errorf("graph <%s> could not be loaded (see --log-level debug): %w", name.Value, err)
	}
	return g, nil
}

func (a *app) printMetrics() error {
	if !a.showMetrics {
		return nil
	}
	families, err := a.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			slices.Sort(labels)
			var value float64
			switch {
			case m.GetCounter() != nil:
				value = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				value = m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				value = float64(m.GetHistogram().GetSampleCount())
			}
			fmt.Fprintf(a.errOut, "%s{%s} %g\n", mf.GetName(), strings.Join(labels, ","), value)
		}
	}
	return nil
}
