package cache

import (
	"context"
	"sync"
	"time"

	"github.com/BaSui01/ragflow/types"
)

// Memory is an in-process result cache with per-entry TTL. It is the
// default when no redis address is configured, and is safe for concurrent
// use. Expired entries are dropped lazily on read.
type Memory struct {
	mu         sync.RWMutex
	entries    map[string]memoryEntry
	defaultTTL time.Duration
	now        func() time.Time
}

type memoryEntry struct {
	resp      types.RAGResponse
	expiresAt time.Time
}

// NewMemory creates an in-memory result cache.
func NewMemory(defaultTTL time.Duration) *Memory {
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	return &Memory{
		entries:    make(map[string]memoryEntry),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

// Get returns the cached response for key, or (nil, false) on miss or past
// TTL.
func (c *Memory) Get(_ context.Context, key string) (*types.RAGResponse, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}

	resp := entry.resp
	return &resp, true
}

// Set stores the response under key. Last write wins; entries are
// content-addressed so concurrent writers store the same value.
func (c *Memory) Set(_ context.Context, key string, resp *types.RAGResponse, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{
		resp:      *resp,
		expiresAt: c.now().Add(ttl),
	}
}

// Len returns the number of stored entries, including not-yet-swept expired
// ones.
func (c *Memory) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
