package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavilion-labs/clubby/internal/core/domain"
)

func TestCachePutGet(t *testing.T) {
	cache := NewCache(time.Minute)

	cache.Put("k1", "answer one", domain.Meta{Intent: domain.IntentGeneralQuery})

	entry, ok := cache.Get("k1")
	require.True(t, ok)
	assert.Equal(t, "answer one", entry.Answer)
	assert.Equal(t, domain.IntentGeneralQuery, entry.Meta.Intent)
}

func TestCacheMiss(t *testing.T) {
	cache := NewCache(time.Minute)

	_, ok := cache.Get("absent")
	assert.False(t, ok)
}

func TestCacheExpiry(t *testing.T) {
	cache := NewCache(60 * time.Second)

	current := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	cache.SetClock(func() time.Time { return current })

	cache.Put("k1", "answer", domain.Meta{})

	// Just inside the TTL.
	current = current.Add(59 * time.Second)
	_, ok := cache.Get("k1")
	assert.True(t, ok)

	// At the TTL boundary the entry is expired and evicted.
	current = current.Add(time.Second)
	_, ok = cache.Get("k1")
	assert.False(t, ok)
	assert.Equal(t, 0, cache.Len())
}

func TestCacheOverwrite(t *testing.T) {
	cache := NewCache(time.Minute)

	cache.Put("k1", "old", domain.Meta{})
	cache.Put("k1", "new", domain.Meta{})

	entry, ok := cache.Get("k1")
	require.True(t, ok)
	assert.Equal(t, "new", entry.Answer)
	assert.Equal(t, 1, cache.Len())
}

func TestCacheDefaultTTL(t *testing.T) {
	cache := NewCache(0)
	assert.Equal(t, DefaultTTL, cache.ttl)
}
