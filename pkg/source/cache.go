/*
Copyright © 2025 VectorWeight Authors
SPDX-License-Identifier: Apache-2.0
*/

package source

import (
	"context"
	"sync"

	"github.com/vectorweight/vectorweight/pkg/config"
)

// Cache dedupes resolution across clusters sharing a descriptor. At most one
// resolution per descriptor key is in flight; later callers get the cached
// tree or the cached failure.
type Cache struct {
	mu      sync.Mutex
	opts    Options
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	once sync.Once
	tree *ResolvedTree
	err  error
}

// NewCache returns a Cache resolving with the given options.
func NewCache(opts Options) *Cache {
	return &Cache{
		opts:    opts.withDefaults(),
		entries: map[string]*cacheEntry{},
	}
}

// Resolve returns the resolved tree for the descriptor, resolving on first
// use. Concurrent callers with the same descriptor key block on the single
// in-flight resolution.
func (c *Cache) Resolve(ctx context.Context, desc *config.SourceDescriptor) (*ResolvedTree, error) {
	key := desc.Key()

	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		e = &cacheEntry{}
		c.entries[key] = e
	}
	c.mu.Unlock()

	e.once.Do(func() {
		var r Resolver
		r, e.err = New(desc, c.opts)
		if e.err != nil {
			return
		}
		e.tree, e.err = r.Resolve(ctx)
	})
	return e.tree, e.err
}

// Len reports how many distinct descriptors have been resolved or attempted.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
