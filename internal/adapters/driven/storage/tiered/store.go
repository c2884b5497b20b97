// Package tiered composes an ordered list of durable storage backends
// into a single document store with automatic fallthrough, plus an
// optional volatile read cache in front of them. On every operation
// the first healthy durable tier is authoritative; lower tiers are
// strictly fallback, never replicas queried in parallel. The read
// cache never has write authority, so durability cannot silently
// degrade to process memory.
package tiered

import (
	"context"

	"github.com/pavilion-labs/clubby/internal/core/domain"
	"github.com/pavilion-labs/clubby/internal/core/ports/driven"
	"github.com/pavilion-labs/clubby/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.DocumentStore = (*Store)(nil)

// Store iterates durable backends in priority order.
type Store struct {
	cache    driven.StorageBackend
	backends []driven.StorageBackend
	lock     *writeLock
}

// NewStore creates a tiered store over the given durable backends,
// fastest first. At least one backend is required.
func NewStore(backends ...driven.StorageBackend) *Store {
	return &Store{
		backends: backends,
		lock:     newWriteLock(),
	}
}

// SetReadCache installs a volatile tier that serves warm reads. The
// cache is populated as a side effect of writes and read fallthrough;
// every write still lands in the durable chain first.
func (s *Store) SetReadCache(cache driven.StorageBackend) {
	s.cache = cache
}

// Store writes documents to the first durable tier whose health check
// passes, then refreshes the read cache. Batch writes serialise
// through a timeout-bounded lock; if the lock cannot be acquired in
// time the write proceeds best-effort without it. Per-document upserts
// are idempotent by ID, so interleaved unlocked writers cannot corrupt
// a batch.
func (s *Store) Store(ctx context.Context, docs []domain.Document) error {
	if len(docs) == 0 {
		return nil
	}

	release, locked := s.lock.acquire(ctx)
	if locked {
		defer release()
	} else {
		logger.Warn("Store lock timeout, writing without lock")
	}

	for _, backend := range s.backends {
		if err := backend.Health(ctx); err != nil {
			logger.Warn("Tier %s unhealthy, trying next: %v", backend.Name(), err)
			continue
		}
		if err := backend.Store(ctx, docs); err != nil {
			logger.Warn("Tier %s write failed, trying next: %v", backend.Name(), err)
			continue
		}
		logger.Debug("Stored %d documents in tier %s", len(docs), backend.Name())

		// Keep the read cache coherent with what was just persisted.
		if s.cache != nil {
			if err := s.cache.Store(ctx, docs); err != nil {
				logger.Warn("Cache tier %s refresh failed: %v", s.cache.Name(), err)
			}
		}
		return nil
	}

	return domain.ErrStorageUnavailable
}

// Load reads from the warm cache when it has documents, otherwise from
// the first durable tier holding any. When a lower tier serves the
// read, the documents are hydrated into the cache and the faster
// durable tiers above it, so a temporary primary outage degrades read
// latency but not correctness. Reads never take the write lock.
func (s *Store) Load(ctx context.Context) ([]domain.Document, error) {
	if s.cache != nil {
		docs, err := s.cache.Load(ctx)
		if err == nil && len(docs) > 0 {
			logger.Debug("Loaded %d documents from cache tier %s", len(docs), s.cache.Name())
			return docs, nil
		}
	}

	for i, backend := range s.backends {
		if err := backend.Health(ctx); err != nil {
			logger.Warn("Tier %s unhealthy on read, trying next: %v", backend.Name(), err)
			continue
		}
		docs, err := backend.Load(ctx)
		if err != nil {
			logger.Warn("Tier %s read failed, trying next: %v", backend.Name(), err)
			continue
		}
		if len(docs) == 0 {
			continue
		}
		logger.Debug("Loaded %d documents from tier %s", len(docs), backend.Name())
		s.hydrate(ctx, i, docs)
		return docs, nil
	}

	// Every tier empty or unavailable: an empty result set, not an
	// error. The router turns this into an "insufficient information"
	// answer.
	return nil, nil
}

// hydrate copies documents into the read cache and the durable tiers
// above the one that served a read. Failures are logged and ignored.
func (s *Store) hydrate(ctx context.Context, servedBy int, docs []domain.Document) {
	if s.cache != nil {
		if err := s.cache.Store(ctx, docs); err != nil {
			logger.Warn("Hydrating cache tier %s failed: %v", s.cache.Name(), err)
		}
	}
	for i := 0; i < servedBy; i++ {
		if err := s.backends[i].Store(ctx, docs); err != nil {
			logger.Warn("Hydrating tier %s failed: %v", s.backends[i].Name(), err)
			continue
		}
		logger.Debug("Hydrated tier %s with %d documents", s.backends[i].Name(), len(docs))
	}
}

// Health returns per-tier status, the read cache first, then the
// durable chain in priority order.
func (s *Store) Health(ctx context.Context) []driven.TierStatus {
	statuses := make([]driven.TierStatus, 0, len(s.backends)+1)
	tiers := s.backends
	if s.cache != nil {
		tiers = append([]driven.StorageBackend{s.cache}, tiers...)
	}
	for _, backend := range tiers {
		status := driven.TierStatus{Name: backend.Name(), Healthy: true}
		if err := backend.Health(ctx); err != nil {
			status.Healthy = false
			status.Error = err.Error()
		}
		statuses = append(statuses, status)
	}
	return statuses
}

// Close closes every tier, returning the first error encountered.
func (s *Store) Close() error {
	var firstErr error
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			firstErr = err
		}
	}
	for _, backend := range s.backends {
		if err := backend.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
