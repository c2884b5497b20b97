// Package memory provides the in-memory response cache. Expiry is
// checked lazily at read time; there is no background sweep, which is
// sufficient given the bounded key space of club queries.
package memory

import (
	"sync"
	"time"

	"github.com/pavilion-labs/clubby/internal/core/domain"
	"github.com/pavilion-labs/clubby/internal/core/ports/driven"
)

// Ensure Cache implements the interface.
var _ driven.AnswerCache = (*Cache)(nil)

// DefaultTTL is the single fixed entry lifetime.
const DefaultTTL = 60 * time.Second

// Cache is a mutex-guarded map of cache entries with one fixed TTL.
type Cache struct {
	mu      sync.Mutex
	entries map[string]domain.CacheEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewCache creates a cache with the given TTL; ttl <= 0 uses DefaultTTL.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		entries: make(map[string]domain.CacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// SetClock overrides the time source. Useful for testing expiry.
func (c *Cache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Get returns the entry for key if present and unexpired. Expired
// entries are evicted on access.
func (c *Cache) Get(key string) (*domain.CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if entry.Expired(c.now()) {
		delete(c.entries, key)
		return nil, false
	}
	return &entry, true
}

// Put stores an answer under key with the fixed TTL.
func (c *Cache) Put(key, answer string, meta domain.Meta) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = domain.CacheEntry{
		Key:       key,
		Answer:    answer,
		Meta:      meta,
		ExpiresAt: c.now().Add(c.ttl),
	}
}

// Len returns the number of stored entries, including expired ones not
// yet evicted.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
