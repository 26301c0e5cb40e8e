// Package config loads rdfstore settings from YAML and turns them into
// loggers and load policy options.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/geoknoesis/rdfstore/loader"
	"github.com/geoknoesis/rdfstore/rdf"
)

// Config is the complete rdfstore configuration.
type Config struct {
	Log     LogConfig     `yaml:"log"`
	Web     WebConfig     `yaml:"web"`
	Disk    DiskConfig    `yaml:"disk"`
	Store   StoreConfig   `yaml:"store"`
	Metrics MetricsConfig `yaml:"metrics"`
	Demand  DemandConfig  `yaml:"demand"`
	Parse   ParseConfig   `yaml:"parse"`

	interner *rdf.Interner
}

// LogConfig configures the logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is text or json.
	Format string `yaml:"format"`
}

// WebConfig configures the web load policy.
type WebConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
	// Rate is the number of requests per second; zero disables limiting.
	Rate         float64 `yaml:"rate"`
	Burst        int     `yaml:"burst"`
	CacheEntries int     `yaml:"cache_entries"`
	MaxBytes     int64   `yaml:"max_bytes"`
	// Proxy is an http(s) proxy URL; empty uses the environment.
	Proxy string `yaml:"proxy"`
}

// DiskConfig configures the disk load policy.
type DiskConfig struct {
	// Roots restricts readable files to these directories; empty allows any.
	Roots []string `yaml:"roots"`
}

// StoreConfig configures the SQLite graph store.
type StoreConfig struct {
	// Path is the database file; empty means in memory.
	Path string `yaml:"path"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Namespace string `yaml:"namespace"`
}

// DemandConfig configures demand loading.
type DemandConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// ParseConfig configures the document parsers of the web and disk policies.
type ParseConfig struct {
	// MaxLineBytes bounds one statement; negative disables the bound.
	MaxLineBytes int `yaml:"max_line_bytes"`
	// MaxTriples bounds one document; zero means no bound.
	MaxTriples int64 `yaml:"max_triples"`
	StrictIRIs bool  `yaml:"strict_iris"`
	// Intern makes every loaded graph share one IRI table.
	Intern bool `yaml:"intern"`
}

// DefaultConfig returns a Config with the defaults used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{Level: "info", Format: "text"},
		Web: WebConfig{
			Timeout:      loader.DefaultTimeout,
			UserAgent:    loader.DefaultUserAgent,
			Burst:        1,
			CacheEntries: 128,
			MaxBytes:     loader.DefaultMaxBodyBytes,
		},
		Store:   StoreConfig{Path: "rdfstore.db"},
		Metrics: MetricsConfig{Namespace: "rdfstore"},
		Demand:  DemandConfig{Timeout: loader.DefaultTimeout},
		Parse:   ParseConfig{MaxLineBytes: rdf.DefaultMaxLineBytes, Intern: true},
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if _, ok := parseLevel(c.Log.Level); !ok {
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format %q is not text or json", c.Log.Format)
	}
	if c.Web.Timeout < 0 {
		return fmt.Errorf("web.timeout must not be negative")
	}
	if c.Web.Rate < 0 {
		return fmt.Errorf("web.rate must not be negative")
	}
	if c.Web.Rate > 0 && c.Web.Burst < 1 {
		return fmt.Errorf("web.burst must be at least 1 when web.rate is set")
	}
	if c.Web.CacheEntries < 0 {
		return fmt.Errorf("web.cache_entries must not be negative")
	}
	if c.Web.MaxBytes <= 0 {
		return fmt.Errorf("web.max_bytes must be positive")
	}
	if c.Web.Proxy != "" {
		u, err := url.Parse(c.Web.Proxy)
		if err != nil || u.Host == "" {
			return fmt.Errorf("web.proxy %q is not a valid URL", c.Web.Proxy)
		}
	}
	if c.Demand.Timeout < 0 {
		return fmt.Errorf("demand.timeout must not be negative")
	}
	if c.Parse.MaxTriples < 0 {
		return fmt.Errorf("parse.max_triples must not be negative")
	}
	if c.Metrics.Namespace == "" {
		return fmt.Errorf("metrics.namespace is required")
	}
	return nil
}

// LoadFromFile reads a YAML file over the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// NewLogger builds a logger writing to w at the configured level and format.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.Log.Level)
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(c.Log.Format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// WebOptions returns the web policy options for this configuration.
func (c *Config) WebOptions(logger *slog.Logger) []loader.WebOption {
	opts := []loader.WebOption{
		loader.WithUserAgent(c.Web.UserAgent),
		loader.WithMaxBodyBytes(c.Web.MaxBytes),
		loader.WithWebLogger(logger),
		loader.WithWebDecodeOptions(c.DecodeOptions()),
	}
	if c.Web.Timeout > 0 {
		opts = append(opts, loader.WithHTTPClient(&http.Client{Timeout: c.Web.Timeout}))
	}
	if c.Web.Rate > 0 {
		opts = append(opts, loader.WithRateLimit(c.Web.Rate, c.Web.Burst))
	}
	if c.Web.CacheEntries > 0 {
		opts = append(opts, loader.WithResponseCache(c.Web.CacheEntries))
	}
	if c.Web.Proxy != "" {
		opts = append(opts, loader.WithProxy(c.Web.Proxy))
	}
	return opts
}

// DiskOptions returns the disk policy options for this configuration.
func (c *Config) DiskOptions(logger *slog.Logger) []loader.DiskOption {
	opts := []loader.DiskOption{
		loader.WithDiskLogger(logger),
		loader.WithDiskDecodeOptions(c.DecodeOptions()),
	}
	if len(c.Disk.Roots) > 0 {
		opts = append(opts, loader.WithRoots(c.Disk.Roots...))
	}
	return opts
}

// DecodeOptions returns the parser options for this configuration. With
// parse.intern set, every call on c returns the same Interner.
func (c *Config) DecodeOptions() rdf.DecodeOptions {
	opts := rdf.DefaultDecodeOptions()
	if c.Parse.MaxLineBytes != 0 {
		opts.MaxLineBytes = c.Parse.MaxLineBytes
	}
	opts.MaxTriples = c.Parse.MaxTriples
	opts.StrictIRIValidation = c.Parse.StrictIRIs
	if c.Parse.Intern {
		if c.interner == nil {
			c.interner = rdf.NewInterner()
		}
		opts.Interner = c.interner
	}
	return opts
}

// DemandOptions returns the demand collection options for this configuration.
func (c *Config) DemandOptions(logger *slog.Logger, rec loader.Recorder) []loader.DemandOption {
	opts := []loader.DemandOption{
		loader.WithTimeout(c.Demand.Timeout),
		loader.WithLogger(logger),
	}
	if rec != nil {
		opts = append(opts, loader.WithRecorder(rec))
	}
	return opts
}
