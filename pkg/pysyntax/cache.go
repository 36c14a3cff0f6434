package pysyntax

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of parsed files kept per repository.
const DefaultCacheSize = 256

// CachedParser memoizes parsed trees by file path. A repository analysis
// parses each file for both the metric and the vocabulary passes, so the
// second pass hits the cache. Purge between repositories.
type CachedParser struct {
	parser FileParser
	cache  *lru.Cache[string, *Tree]
}

// NewCachedParser wraps parser with an LRU cache holding up to size trees.
func NewCachedParser(parser FileParser, size int) (*CachedParser, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}

	cache, err := lru.New[string, *Tree](size)
	if err != nil {
		return nil, fmt.Errorf("create parse cache: %w", err)
	}

	return &CachedParser{parser: parser, cache: cache}, nil
}

// ParseFile returns the cached tree for path or parses content and caches it.
// Failed parses are not cached.
func (c *CachedParser) ParseFile(ctx context.Context, path string, content []byte) (*Tree, error) {
	if tree, ok := c.cache.Get(path); ok {
		return tree, nil
	}

	tree, err := c.parser.ParseFile(ctx, path, content)
	if err != nil {
		return nil, err
	}

	c.cache.Add(path, tree)

	return tree, nil
}

// Len returns the number of cached trees.
func (c *CachedParser) Len() int {
	return c.cache.Len()
}

// Purge drops every cached tree.
func (c *CachedParser) Purge() {
	c.cache.Purge()
}
