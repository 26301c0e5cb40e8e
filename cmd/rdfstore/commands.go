package main

import (
	"context"
	"fmt"
	"io"
	"iter"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/geoknoesis/rdfstore/loader"
	"github.com/geoknoesis/rdfstore/rdf"
	"github.com/geoknoesis/rdfstore/store"
	"github.com/geoknoesis/rdfstore/triples"
)

func loadCmd(appRef func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "load <file>...",
		Short: "Load RDF files and print their triple counts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := importFiles(cmd.Context(), appRef(), args, nil)
			return err
		},
	}
}

// importFiles demand-loads each file through the disk policy and prints one
// line per graph. With a syncer attached every loaded graph is saved.
func importFiles(ctx context.Context, a *app, files []string, syncer *store.Syncer) (int, error) {
	disk := loader.NewDiskPolicy(a.cfg.DiskOptions(a.logger)...)
	c, err := a.collection(disk)
	if err != nil {
		return 0, err
	}
	defer c.Close()
	if syncer != nil {
		syncer.Attach(c)
		defer syncer.Detach()
	}

	total := 0
	for _, file := range files {
		abs, err := filepath.Abs(file)
		if err != nil {
			return 0, fmt.Errorf("resolve %s: %w", file, err)
		}
		g, err := a.get(c, rdf.FileIRI(abs))
		if err != nil {
			return 0, err
		}
		fmt.Fprintf(a.out, "%s\t%d\n", g.Name().Value, g.Count())
		total += g.Count()
	}
	fmt.Fprintf(a.out, "%d graphs, %d triples\n", c.Count(), total)

	if syncer != nil {
		if err := syncer.Err(); err != nil {
			return 0, err
		}
		if err := syncer.Flush(ctx, false); err != nil {
			return 0, err
		}
	}
	return c.Count(), nil
}

type tripleFilter struct {
	subject, predicate, object string
}

func (f *tripleFilter) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.subject, "subject", "s", "", "Only triples with this subject (IRI or N-Triples term)")
	cmd.Flags().StringVarP(&f.predicate, "predicate", "p", "", "Only triples with this predicate")
	cmd.Flags().StringVarP(&f.object, "object", "o", "", "Only triples with this object")
}

func (f *tripleFilter) apply(v triples.View) (iter.Seq[rdf.Triple], error) {
	s, err := parseTermFlag(f.subject)
	if err != nil {
		return nil, fmt.Errorf("--subject: %w", err)
	}
	p, err := parseTermFlag(f.predicate)
	if err != nil {
		return nil, fmt.Errorf("--predicate: %w", err)
	}
	o, err := parseTermFlag(f.object)
	if err != nil {
		return nil, fmt.Errorf("--object: %w", err)
	}
	return selectTriples(v, s, p, o), nil
}

// parseTermFlag accepts an N-Triples term or a bare IRI. Empty means any.
func parseTermFlag(s string) (rdf.Term, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if strings.HasPrefix(s, "<") || strings.HasPrefix(s, "_:") || strings.HasPrefix(s, `"`) {
		return rdf.ParseTerm(s)
	}
	if err := rdf.ValidateIRI(s); err != nil {
		return nil, err
	}
	return rdf.NewIRI(s), nil
}

// selectTriples uses the most specific lookup the bound positions allow.
func selectTriples(v triples.View, s, p, o rdf.Term) iter.Seq[rdf.Triple] {
	switch {
	case s != nil && p != nil && o != nil:
		return triples.MatchObject(v.WithSubjectPredicate(s, p), o)
	case s != nil && p != nil:
		return v.WithSubjectPredicate(s, p)
	case p != nil && o != nil:
		return v.WithPredicateObject(p, o)
	case s != nil && o != nil:
		return v.WithSubjectObject(s, o)
	case s != nil:
		return v.WithSubject(s)
	case p != nil:
		return v.WithPredicate(p)
	case o != nil:
		return v.WithObject(o)
	default:
		return v.All()
	}
}

// writeNTriples writes seq sorted, so output is stable across runs.
func writeNTriples(w io.Writer, seq iter.Seq[rdf.Triple]) (int, error) {
	ts := triples.Collect(seq)
	slices.SortFunc(ts, rdf.CompareTriples)
	enc, err := rdf.NewEncoder(w, rdf.FormatNTriples)
	if err != nil {
		return 0, err
	}
	for _, t := range ts {
		if err := enc.WriteTriple(t); err != nil {
			return 0, err
		}
	}
	return len(ts), enc.Close()
}

func getCmd(appRef func() *app) *cobra.Command {
	var (
		filter    tripleFilter
		fromStore bool
		save      bool
	)
	cmd := &cobra.Command{
		Use:   "get <iri>",
		Short: "Load a graph by IRI and print its triples as N-Triples",
		Long: `get loads the graph named by an http:, https: or file: IRI and writes
its triples to stdout as N-Triples. With --from-store the graph store is
consulted first; with --save the loaded graph is written to it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appRef()
			ctx := cmd.Context()
			name, err := parseGraphName(args[0])
			if err != nil {
				return err
			}

			scheme, err := a.schemePolicy(false)
			if err != nil {
				return err
			}
			var policy loader.Policy = scheme
			var st *store.SQLite
			if fromStore || save {
				if st, err = a.openStore(ctx); err != nil {
					return err
				}
				defer st.Close()
			}
			if fromStore {
				policy = loader.NewFallbackPolicy(loader.NewStorePolicy(st), scheme)
			}

			c, err := a.collection(policy)
			if err != nil {
				return err
			}
			defer c.Close()
			var syncer *store.Syncer
			if save {
				syncer = store.NewSyncer(st, a.logger)
				syncer.Attach(c)
				defer syncer.Detach()
			}

			g, err := a.get(c, name)
			if err != nil {
				return err
			}
			seq, err := filter.apply(g.Triples())
			if err != nil {
				return err
			}
			n, err := writeNTriples(a.out, seq)
			if err != nil {
				return err
			}
			a.logger.Debug("wrote triples", "graph", name.Value, "triples", n)
			if syncer != nil {
				return syncer.Err()
			}
			return nil
		},
	}
	filter.register(cmd)
	cmd.Flags().BoolVar(&fromStore, "from-store", false, "Look in the graph store before loading")
	cmd.Flags().BoolVar(&save, "save", false, "Save the loaded graph to the graph store")
	return cmd
}

// parseGraphName accepts an absolute IRI or a local path, which becomes a
// file: IRI.
func parseGraphName(arg string) (rdf.IRI, error) {
	if rdf.ValidateIRI(arg) == nil {
		return rdf.NewIRI(arg), nil
	}
	abs, err := filepath.Abs(arg)
	if err != nil {
		return rdf.IRI{}, fmt.Errorf("resolve %s: %w", arg, err)
	}
	return rdf.FileIRI(abs), nil
}

func storeCmd(appRef func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage the graph store",
	}

	withStore := func(run func(ctx context.Context, a *app, st *store.SQLite, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			a := appRef()
			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()
			return run(cmd.Context(), a, st, args)
		}
	}

	var filter tripleFilter
	export := &cobra.Command{
		Use:   "export <iri>",
		Short: "Print a stored graph as N-Triples",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(ctx context.Context, a *app, st *store.SQLite, args []string) error {
			g, err := st.LoadGraph(ctx, rdf.NewIRI(args[0]))
			if err != nil {
				return err
			}
			defer g.Close()
			seq, err := filter.apply(g.Triples())
			if err != nil {
				return err
			}
			_, err = writeNTriples(a.out, seq)
			return err
		}),
	}
	filter.register(export)

	cmd.AddCommand(
		&cobra.Command{
			Use:   "import <file>...",
			Short: "Load RDF files and save them to the graph store",
			Args:  cobra.MinimumNArgs(1),
			RunE: withStore(func(ctx context.Context, a *app, st *store.SQLite, args []string) error {
				_, err := importFiles(ctx, a, args, store.NewSyncer(st, a.logger))
				return err
			}),
		},
		&cobra.Command{
			Use:   "list",
			Short: "List stored graphs",
			Args:  cobra.NoArgs,
			RunE: withStore(func(ctx context.Context, a *app, st *store.SQLite, _ []string) error {
				names, err := st.ListGraphs(ctx)
				if err != nil {
					return err
				}
				for _, name := range names {
					if name.IsZero() {
						fmt.Fprintln(a.out, "(default graph)")
						continue
					}
					fmt.Fprintln(a.out, name.Value)
				}
				return nil
			}),
		},
		&cobra.Command{
			Use:   "delete <iri>",
			Short: "Remove a graph from the graph store",
			Args:  cobra.ExactArgs(1),
			RunE: withStore(func(ctx context.Context, a *app, st *store.SQLite, args []string) error {
				deleted, err := st.DeleteGraph(ctx, rdf.NewIRI(args[0]))
				if err != nil {
					return err
				}
				if !deleted {
					return fmt.Errorf("graph <%s>: %w", args[0], rdf.ErrNotFound)
				}
				return nil
			}),
		},
		export,
	)
	return cmd
}
