package loader

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/geoknoesis/rdfstore/graph"
	"github.com/geoknoesis/rdfstore/rdf"
)

// DiskPolicy reads graphs named by file: IRIs. The file extension selects
// the parser (.nt, .nq, .jsonld, .json).
type DiskPolicy struct {
	roots  []string
	decode rdf.DecodeOptions
	logger *slog.Logger
}

var _ Policy = (*DiskPolicy)(nil)

// DiskOption configures a DiskPolicy.
type DiskOption func(*DiskPolicy)

// WithRoots restricts loading to files below the given directories. Roots
// and requested files are compared after symlinks are resolved.
func WithRoots(dirs ...string) DiskOption {
	return func(p *DiskPolicy) {
		for _, dir := range dirs {
			abs, err := filepath.Abs(dir)
			if err != nil {
				continue
			}
			if resolved, err := filepath.EvalSymlinks(abs); err == nil {
				abs = resolved
			}
			p.roots = append(p.roots, abs)
		}
	}
}

// WithDiskDecodeOptions sets the parser limits.
func WithDiskDecodeOptions(opts rdf.DecodeOptions) DiskOption {
	return func(p *DiskPolicy) { p.decode = opts }
}

// WithDiskLogger sets the logger.
func WithDiskLogger(l *slog.Logger) DiskOption {
	return func(p *DiskPolicy) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewDiskPolicy returns a policy reading any local file unless restricted
// with WithRoots.
func NewDiskPolicy(opts ...DiskOption) *DiskPolicy {
	p := &DiskPolicy{decode: rdf.DefaultDecodeOptions(), logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *DiskPolicy) String() string { return "disk" }

// Load reads and parses the file named by name.
func (p *DiskPolicy) Load(ctx context.Context, name rdf.IRI) (*graph.Graph, error) {
	if name.IsZero() {
		return nil, rdf.NewLoadError(p.String(), name, nil)
	}
	path, ok := rdf.FilePath(name)
	if !ok {
		return nil, rdf.NewLoadError(p.String(), name, fmt.Errorf("not a local file reference: %w", rdf.ErrUnsupported))
	}
	path = filepath.Clean(filepath.FromSlash(path))
	format, err := rdf.FormatFromPath(path)
	if err != nil {
		return nil, rdf.NewLoadError(p.String(), name, err)
	}
	file, err := p.resolve(path)
	if err != nil {
		return nil, rdf.NewLoadError(p.String(), name, err)
	}

	f, err := os.Open(file)
	if err != nil {
		return nil, rdf.NewLoadError(p.String(), name, err)
	}
	defer f.Close()

	g := graph.New(graph.WithName(name), graph.WithLogger(p.logger))
	opts := ReadOptions{Base: name.Value, Decode: p.decode}
	if err := ReadGraph(ctx, f, format, g, opts); err != nil {
		_ = g.Close()
		return nil, rdf.NewLoadError(p.String(), name, fmt.Errorf("%s: %w", path, err))
	}
	p.logger.Debug("read graph from disk", slog.String("path", path), slog.Int("triples", g.Count()))
	return g, nil
}

// resolve returns the file to open for path. With roots configured the path
// is resolved through symlinks and must lie below one of them.
func (p *DiskPolicy) resolve(path string) (string, error) {
	if len(p.roots) == 0 {
		return path, nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	if !p.within(resolved) {
		return "", fmt.Errorf("%s is outside the allowed roots: %w", path, rdf.ErrInvalidArgument)
	}
	return resolved, nil
}

func (p *DiskPolicy) within(path string) bool {
	for _, root := range p.roots {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			continue
		}
		if rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
