// Package main provides the rdfstore binary: it loads RDF graphs from files
// and the web, queries them, and keeps them in an SQLite graph store.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const (
	Version = "0.1.0"
	appName = "rdfstore"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		opts appOptions
		a    *app
	)

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Load, query and store RDF graphs",
		Long: `rdfstore loads RDF graphs on demand from local files (file: IRIs) and
the web (http: and https: IRIs), prints their triples as N-Triples and keeps
copies in an SQLite graph store.

Supported formats are N-Triples, N-Quads and JSON-LD.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			a, err = newApp(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a == nil {
				return nil
			}
			return a.printMetrics()
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the config file")
	cmd.PersistentFlags().StringVar(&opts.storePath, "store", "", "Graph store database path; overrides the config file")
	cmd.PersistentFlags().BoolVar(&opts.showMetrics, "metrics", false, "Print collected metrics to stderr on exit")

	appRef := func() *app { return a }
	cmd.AddCommand(
		loadCmd(appRef),
		getCmd(appRef),
		storeCmd(appRef),
		serveCmd(appRef),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
			},
		},
	)
	return cmd
}
