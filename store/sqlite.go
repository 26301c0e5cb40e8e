package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/geoknoesis/rdfstore/graph"
	"github.com/geoknoesis/rdfstore/rdf"
)

//go:embed schema.sql
var schemaSQL string

// SQLite is a Provider backed by an SQLite database. Terms are stored in
// N-Triples syntax, so blank node IDs survive a round trip.
type SQLite struct {
	db     *sql.DB
	mu     sync.RWMutex
	path   string
	logger *slog.Logger
}

var _ Provider = (*SQLite)(nil)

// OpenSQLite opens or creates the database at path. An empty path opens a
// private in-memory database.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*SQLite, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dsn := "file::memory:"
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		dsn = "file:" + path
	}
	dsn += "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)"

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection keeps an in-memory database alive and serialises writers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	logger.Debug("opened graph store", slog.String("path", path))
	return &SQLite{db: db, path: path, logger: logger}, nil
}

// Path returns the database file path; empty for an in-memory database.
func (s *SQLite) Path() string { return s.path }

func (s *SQLite) HasGraph(ctx context.Context, name rdf.IRI) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM graphs WHERE name = ?`, name.Value).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query graph: %w", err)
	}
	return true, nil
}

func (s *SQLite) LoadGraph(ctx context.Context, name rdf.IRI) (*graph.Graph, error) {
	ok, err := s.HasGraph(ctx, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("stored graph <%s>: %w", name.Value, rdf.ErrNotFound)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx,
		`SELECT subject, predicate, object FROM triples WHERE graph = ?`, name.Value)
	if err != nil {
		return nil, fmt.Errorf("query triples: %w", err)
	}
	defer rows.Close()

	g := graph.New(graph.WithName(name), graph.WithLogger(s.logger))
	for rows.Next() {
		var subj, pred, obj string
		if err := rows.Scan(&subj, &pred, &obj); err != nil {
			return nil, fmt.Errorf("scan triple: %w", err)
		}
		t, err := decodeTriple(g, subj, pred, obj)
		if err != nil {
			return nil, err
		}
		g.Assert(t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate triples: %w", err)
	}
	return g, nil
}

func (s *SQLite) SaveGraph(ctx context.Context, g *graph.Graph) error {
	if g == nil {
		return fmt.Errorf("save nil graph: %w", rdf.ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	name := g.Name().Value
	if _, err := tx.ExecContext(ctx, `DELETE FROM triples WHERE graph = ?`, name); err != nil {
		return fmt.Errorf("clear graph: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO graphs (name, updated_at) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET updated_at = excluded.updated_at`,
		name, time.Now().UTC().Unix()); err != nil {
		return fmt.Errorf("upsert graph: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO triples (graph, subject, predicate, object) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	n := 0
	for t := range g.Triples().All() {
		if _, err := stmt.ExecContext(ctx, name,
			rdf.FormatTerm(t.S), rdf.FormatTerm(t.P), rdf.FormatTerm(t.O)); err != nil {
			return fmt.Errorf("insert triple: %w", err)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.logger.Debug("saved graph", slog.String("graph", name), slog.Int("triples", n))
	return nil
}

func (s *SQLite) DeleteGraph(ctx context.Context, name rdf.IRI) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.ExecContext(ctx, `DELETE FROM graphs WHERE name = ?`, name.Value)
	if err != nil {
		return false, fmt.Errorf("delete graph: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete graph: %w", err)
	}
	return n > 0, nil
}

func (s *SQLite) ListGraphs(ctx context.Context) ([]rdf.IRI, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM graphs ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list graphs: %w", err)
	}
	defer rows.Close()

	var names []rdf.IRI
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan graph name: %w", err)
		}
		names = append(names, rdf.IRI{Value: name})
	}
	return names, rows.Err()
}

func (s *SQLite) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// decodeTriple parses a stored row. Blank node IDs are registered with g's
// mapper so IDs it issues later cannot collide with them.
func decodeTriple(g *graph.Graph, subj, pred, obj string) (rdf.Triple, error) {
	var terms [3]rdf.Term
	for i, text := range [3]string{subj, pred, obj} {
		term, err := rdf.ParseTerm(text)
		if err != nil {
			return rdf.Triple{}, fmt.Errorf("stored triple: %w", err)
		}
		if b, ok := term.(rdf.BlankNode); ok {
			term = g.BlankNode(b.ID)
		}
		terms[i] = term
	}
	return rdf.NewTriple(terms[0], terms[1], terms[2]), nil
}
