package jselect

import "sync"

// Cache memoizes compiled patterns by source text. It is safe for concurrent
// use; the patterns it hands out are shared and immutable.
type Cache struct {
	mu       sync.RWMutex
	patterns map[string]*Pattern
	limit    int
}

// NewCache returns an unbounded cache.
func NewCache() *Cache {
	return &Cache{patterns: make(map[string]*Pattern)}
}

// NewCacheSize returns a cache holding at most limit patterns. When it is
// full the cache is cleared before the next pattern is stored. A limit below
// one means unbounded.
func NewCacheSize(limit int) *Cache {
	c := NewCache()
	c.limit = limit
	return c
}

// DefaultCacheSize bounds DefaultCache.
const DefaultCacheSize = 1024

// DefaultCache is used by the package level Select.
var DefaultCache = NewCacheSize(DefaultCacheSize)

// Compile returns the cached pattern for text, compiling and storing it on
// first use. Syntax errors are not cached.
func (c *Cache) Compile(text string) (*Pattern, error) {
	c.mu.RLock()
	p, ok := c.patterns[text]
	c.mu.RUnlock()
	if ok {
		return p, nil
	}

	p, err := Compile(text)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.patterns[text]; ok {
		return existing, nil
	}
	if c.limit > 0 && len(c.patterns) >= c.limit {
		clear(c.patterns)
	}
	c.patterns[text] = p
	return p, nil
}

// Len returns the number of cached patterns.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.patterns)
}

// Reset drops every cached pattern.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.patterns = make(map[string]*Pattern)
}
