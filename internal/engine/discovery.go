package engine

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/leapdbml/pkg/core"
	"github.com/leapstack-labs/leapdbml/pkg/parser"
	"github.com/leapstack-labs/leapdbml/pkg/token"
)

// DiscoveryOptions configures the discovery process.
type DiscoveryOptions struct {
	ForceFullRefresh bool     // Ignore content hashes, re-parse everything
	Paths            []string // Files or directories; empty means the schema dir
}

// FileResult is the outcome of compiling one document.
type FileResult struct {
	Path     string
	Hash     string
	Database *core.Database
	Err      error
	Cached   bool
	Duration time.Duration
}

// OK reports whether the file compiled.
func (r *FileResult) OK() bool {
	return r.Err == nil
}

// DiscoveryResult contains statistics about the discovery run.
type DiscoveryResult struct {
	Files []*FileResult

	Total   int
	Changed int
	Skipped int
	Deleted int

	// Errors (non-fatal)
	Errors []DiscoveryError

	// Timing
	Duration time.Duration
}

// DiscoveryError represents a non-fatal error during discovery.
type DiscoveryError struct {
	Path    string
	Type    string // "read", "parse"
	Message string
	Pos     token.Position
}

// HasErrors returns true if any errors occurred.
func (r *DiscoveryResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// Stats sums the entity counts of every compiled file.
func (r *DiscoveryResult) Stats() core.Stats {
	var total core.Stats
	for _, f := range r.Files {
		if f.Database == nil {
			continue
		}
		st := f.Database.Stats()
		total.Schemas += st.Schemas
		total.Tables += st.Tables
		total.Partials += st.Partials
		total.Columns += st.Columns
		total.Indexes += st.Indexes
		total.Enums += st.Enums
		total.Relationships += st.Relationships
		total.TableGroups += st.TableGroups
		total.NamedNotes += st.NamedNotes
	}
	return total
}

// Summary returns a human-readable summary.
func (r *DiscoveryResult) Summary() string {
	st := r.Stats()
	return fmt.Sprintf(
		"Files: %d total (%d changed, %d skipped, %d deleted, %d failed) | "+
			"Tables: %d | Relationships: %d | Duration: %s",
		r.Total, r.Changed, r.Skipped, r.Deleted, len(r.Errors),
		st.Tables, st.Relationships,
		r.Duration.Round(time.Millisecond),
	)
}

// Discover finds documents, parses the changed ones concurrently and reuses
// cached results for the rest. Parse failures are collected, not returned;
// the error result is reserved for walk failures and cancellation.
func (e *Engine) Discover(ctx context.Context, opts DiscoveryOptions) (*DiscoveryResult, error) {
	start := time.Now()
	result := &DiscoveryResult{}

	e.logger.Info("starting discovery")

	paths, err := e.collect(opts.Paths)
	if err != nil {
		return result, fmt.Errorf("file discovery failed: %w", err)
	}
	result.Total = len(paths)
	result.Files = make([]*FileResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result.Files[i] = e.compile(gctx, path, opts.ForceFullRefresh)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, err
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	for _, f := range result.Files {
		if f.Cached {
			result.Skipped++
		} else {
			result.Changed++
		}
		if f.Err != nil {
			result.Errors = append(result.Errors, newDiscoveryError(f))
		}
	}
	if len(opts.Paths) == 0 {
		result.Deleted = e.prune(paths)
	}

	result.Duration = time.Since(start)

	e.logger.Info("discovery completed",
		"files_total", result.Total,
		"files_changed", result.Changed,
		"files_skipped", result.Skipped,
		"files_deleted", result.Deleted,
		"errors", len(result.Errors),
		"duration_ms", result.Duration.Milliseconds())

	return result, nil
}

func newDiscoveryError(f *FileResult) DiscoveryError {
	de := DiscoveryError{Path: f.Path, Type: "read", Message: f.Err.Error()}
	var pe *parser.ParseError
	var le *parser.LexError
	switch {
	case errors.As(f.Err, &pe):
		de.Type, de.Message, de.Pos = "parse", pe.Message, pe.Pos
	case errors.As(f.Err, &le):
		de.Type, de.Message, de.Pos = "parse", le.Message, le.Pos
	}
	return de
}

// compile parses path unless its content hash matches the cached result.
func (e *Engine) compile(ctx context.Context, path string, forceRefresh bool) *FileResult {
	needsParse, hash, content, err := e.shouldParseFile(path, forceRefresh)
	if err != nil {
		return &FileResult{Path: path, Err: err}
	}
	if !needsParse {
		e.logger.Debug("skipping unchanged file", "path", path)
		e.mu.Lock()
		prev, ok := e.cache[path]
		e.mu.Unlock()
		if ok {
			cached := *prev
			cached.Cached = true
			return &cached
		}
	}

	start := time.Now()
	db, parseErr := e.parser.Parse(ctx, bytes.NewReader(content))
	res := &FileResult{Path: path, Hash: hash, Database: db, Err: parseErr, Duration: time.Since(start)}
	if parseErr != nil {
		e.logger.Debug("parse error", "path", path, "error", parseErr.Error())
	} else {
		e.logger.Debug("parsed file", "path", path, "duration_ms", res.Duration.Milliseconds())
	}

	// A cancelled parse says nothing about the file.
	if ctx.Err() == nil {
		e.mu.Lock()
		e.cache[path] = res
		e.mu.Unlock()
	}
	return res
}

// shouldParseFile checks if a file needs re-parsing based on content hash.
func (e *Engine) shouldParseFile(path string, forceRefresh bool) (needsParse bool, newHash string, content []byte, err error) {
	content, err = os.ReadFile(path) //nolint:gosec // G304: path comes from collect
	if err != nil {
		return false, "", nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	newHash = computeHash(content)

	if forceRefresh {
		return true, newHash, content, nil
	}

	e.mu.Lock()
	existing, ok := e.cache[path]
	e.mu.Unlock()
	if !ok {
		return true, newHash, content, nil
	}
	return existing.Hash != newHash, newHash, content, nil
}

// collect resolves the requested paths to a sorted, duplicate-free list of
// absolute file paths. Directories are walked with the include glob; files
// named explicitly are taken as they are.
func (e *Engine) collect(paths []string) ([]string, error) {
	if len(paths) == 0 {
		paths = []string{e.schemaDir}
	}

	seen := make(map[string]bool)
	var files []string
	add := func(p string) error {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		if !seen[abs] {
			seen[abs] = true
			files = append(files, abs)
		}
		return nil
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if err := add(p); err != nil {
				return nil, err
			}
			continue
		}

		e.logger.Debug("walking directory", "dir", p)
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() || !e.Matches(path) {
				return nil
			}
			return add(path)
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}

// prune drops cache entries for files that no longer exist in the workspace.
func (e *Engine) prune(current []string) int {
	keep := make(map[string]bool, len(current))
	for _, p := range current {
		keep[p] = true
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	deleted := 0
	for path := range e.cache {
		if !keep[path] {
			e.logger.Debug("removing deleted file", "path", path)
			delete(e.cache, path)
			deleted++
		}
	}
	return deleted
}

// computeHash computes SHA256 hash of content.
func computeHash(content []byte) string {
	h := sha256.Sum256(content)
	return hex.EncodeToString(h[:])
}
