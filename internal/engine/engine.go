// Package engine compiles a workspace of schema documents.
// It discovers files, skips unchanged ones by content hash, and parses the
// rest concurrently.
package engine

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/leapstack-labs/leapdbml/pkg/core"
	"github.com/leapstack-labs/leapdbml/pkg/parser"
)

// DefaultInclude is the file glob used when Config.Include is empty.
const DefaultInclude = "*.dbml"

// Engine compiles schema documents and caches the results by content hash.
type Engine struct {
	// Structured logger
	logger *slog.Logger

	parser      *parser.Parser
	schemaDir   string
	include     string
	concurrency int

	mu    sync.Mutex
	cache map[string]*FileResult
}

// Config holds engine configuration.
type Config struct {
	// SchemaDir is the directory scanned when no paths are given
	SchemaDir string
	// Include is the file name glob matched during directory walks
	Include string
	// Concurrency limits parallel parses (defaults to the number of CPUs)
	Concurrency int
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// New creates a new engine.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	include := cfg.Include
	if include == "" {
		include = DefaultInclude
	}
	if _, err := filepath.Match(include, ""); err != nil {
		return nil, fmt.Errorf("invalid include pattern %q: %w", include, err)
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}

	schemaDir := cfg.SchemaDir
	if schemaDir == "" {
		schemaDir = "."
	}

	logger.Debug("initializing engine", "schema_dir", schemaDir, "include", include, "concurrency", concurrency)

	return &Engine{
		logger:      logger,
		parser:      parser.New(parser.WithLogger(logger)),
		schemaDir:   schemaDir,
		include:     include,
		concurrency: concurrency,
		cache:       make(map[string]*FileResult),
	}, nil
}

// SchemaDir returns the directory scanned by default.
func (e *Engine) SchemaDir() string {
	return e.schemaDir
}

// Include returns the file glob.
func (e *Engine) Include() string {
	return e.include
}

// Matches reports whether path has a file name matched by the include glob.
func (e *Engine) Matches(path string) bool {
	ok, _ := filepath.Match(e.include, filepath.Base(path))
	return ok
}

// CompileFile parses a single document without touching the cache.
func (e *Engine) CompileFile(ctx context.Context, path string) (*core.Database, error) {
	src, err := os.ReadFile(path) //nolint:gosec // G304: path is supplied by the user
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return e.CompileSource(ctx, path, src)
}

// CompileSource parses src, naming it path in errors.
func (e *Engine) CompileSource(ctx context.Context, path string, src []byte) (*core.Database, error) {
	e.logger.Debug("compiling file", "path", path)
	db, err := e.parser.Parse(ctx, bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return db, nil
}

// Reset drops every cached result so the next discovery parses everything.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	clear(e.cache)
}

// Cached returns the cached result for path, if any.
func (e *Engine) Cached(path string) (*FileResult, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	r, ok := e.cache[abs]
	return r, ok
}
