// Package memory provides an in-memory storage tier. It is the fastest
// tier in the fallback chain and loses its contents on restart.
package memory

import (
	"context"
	"sync"

	"github.com/pavilion-labs/clubby/internal/core/domain"
	"github.com/pavilion-labs/clubby/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.StorageBackend = (*Store)(nil)

// Store is an in-memory implementation of driven.StorageBackend.
type Store struct {
	mu    sync.RWMutex
	docs  map[string]domain.Document
	order []string
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		docs: make(map[string]domain.Document),
	}
}

// Name identifies the tier.
func (s *Store) Name() string {
	return "memory"
}

// Store merges documents by ID, preserving first-insertion order.
func (s *Store) Store(_ context.Context, docs []domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, doc := range docs {
		if _, ok := s.docs[doc.ID]; !ok {
			s.order = append(s.order, doc.ID)
		}
		s.docs[doc.ID] = doc
	}
	return nil
}

// Load returns all documents in insertion order.
func (s *Store) Load(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Document, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.docs[id])
	}
	return out, nil
}

// Health always succeeds for the in-memory tier.
func (s *Store) Health(_ context.Context) error {
	return nil
}

// Close releases resources.
func (s *Store) Close() error {
	return nil
}
