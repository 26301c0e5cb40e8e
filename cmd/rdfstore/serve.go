package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/geoknoesis/rdfstore/loader"
	"github.com/geoknoesis/rdfstore/rdf"
	"github.com/geoknoesis/rdfstore/store"
)

func serveCmd(appRef func() *app) *cobra.Command {
	var (
		addr    string
		persist bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve graphs and metrics over HTTP",
		Long: `serve answers GET /graph?name=<iri> with the graph as N-Triples, loading
it on first request from the graph store or the web. file: graphs are read
only below the configured disk.roots and are not served without them. The optional
subject, predicate and object query parameters filter the triples.
Prometheus metrics are served on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appRef()
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()
			policy, err := a.servePolicy(st)
			if err != nil {
				return err
			}
			c, err := a.collection(policy)
			if err != nil {
				return err
			}
			defer c.Close()
			if persist {
				syncer := store.NewSyncer(st, a.logger)
				syncer.Attach(c)
				defer func() {
					syncer.Detach()
					flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
					defer cancel()
					if err := syncer.Flush(flushCtx, false); err != nil {
						a.logger.Warn("final flush failed", "error", err)
					}
				}()
			}

			srv := &http.Server{
				Addr:              addr,
				Handler:           a.serveMux(c),
				ReadHeaderTimeout: 10 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("serving graphs", "addr", addr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "Listen address")
	cmd.Flags().BoolVar(&persist, "persist", true, "Save loaded graphs to the graph store")
	return cmd
}

// servePolicy loads from the graph store first, then by IRI scheme.
func (a *app) servePolicy(st *store.SQLite) (loader.Policy, error) {
	scheme, err := a.schemePolicy(true)
	if err != nil {
		return nil, err
	}
	return loader.NewFallbackPolicy(loader.NewStorePolicy(st), scheme), nil
}

// serveMux routes /graph to c and /metrics to the app's registry. Demand
// loads run under the request context.
func (a *app) serveMux(c *loader.DemandCollection) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /graph", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		raw := q.Get("name")
		if err := rdf.ValidateIRI(raw); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		name := rdf.NewIRI(raw)
		if !c.ContainsContext(r.Context(), name) {
			http.Error(w, fmt.Sprintf("graph <%s> not found", raw), http.StatusNotFound)
			return
		}
		g, err := c.Get(name)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		filter := tripleFilter{subject: q.Get("subject"), predicate: q.Get("predicate"), object: q.Get("object")}
		seq, err := filter.apply(g.Triples())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", rdf.FormatNTriples.MediaType())
		if _, err := writeNTriples(w, seq); err != nil {
			a.logger.Debug("write response failed", "graph", raw, "error", err)
		}
	})
	return mux
}
