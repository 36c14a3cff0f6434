// Package collect discovers source files inside an extracted repository.
package collect

import (
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/src-d/enry/v2"
)

// DefaultExtensions are the file suffixes collected when none are configured.
var DefaultExtensions = []string{".py"}

// Config configures a Collector.
type Config struct {
	// Extensions are matched case-sensitively against the file name suffix.
	Extensions []string
	// SkipVendor drops vendored trees (site-packages, node_modules, ...).
	SkipVendor bool
}

// Collector walks a directory tree and yields matching files.
type Collector struct {
	extensions []string
	skipVendor bool
	logger     *slog.Logger
}

// Option configures a Collector.
type Option func(*Collector)

// WithLogger sets the logger used for skipped entries.
func WithLogger(l *slog.Logger) Option {
	return func(c *Collector) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCollector creates a Collector.
func NewCollector(cfg Config, opts ...Option) *Collector {
	exts := slices.Clone(cfg.Extensions)
	if len(exts) == 0 {
		exts = slices.Clone(DefaultExtensions)
	}

	c := &Collector{extensions: exts, skipVendor: cfg.SkipVendor, logger: slog.Default()}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Collect yields the matching files under root in lexical order. Each range
// over the sequence walks the tree again.
func (c *Collector) Collect(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, entry os.DirEntry, walkErr error) error {
			skip, err := c.skip(root, path, entry, walkErr)
			if skip || err != nil {
				return err
			}

			if !yield(path) {
				return filepath.SkipAll
			}

			return nil
		})
	}
}

// Files returns every file Collect would yield.
func (c *Collector) Files(root string) []string {
	return slices.Collect(c.Collect(root))
}

func (c *Collector) skip(root, path string, entry os.DirEntry, walkErr error) (bool, error) {
	if walkErr != nil {
		c.logger.Debug("skipping unreadable entry", "path", path, "error", walkErr)

		if entry != nil && entry.IsDir() && path != root {
			return true, filepath.SkipDir
		}

		return true, nil
	}

	if entry == nil {
		return true, nil
	}

	if entry.IsDir() {
		if path == root {
			return true, nil
		}

		if entry.Name() == ".git" || c.vendored(root, path, true) {
			return true, filepath.SkipDir
		}

		return true, nil
	}

	if !c.matches(entry.Name()) || c.vendored(root, path, false) {
		return true, nil
	}

	return false, nil
}

func (c *Collector) matches(name string) bool {
	for _, ext := range c.extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}

	return false
}

func (c *Collector) vendored(root, path string, dir bool) bool {
	if !c.skipVendor {
		return false
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}

	rel = filepath.ToSlash(rel)
	if dir {
		rel += "/"
	}

	return enry.IsVendor(rel)
}
