// Package disk provides a local-disk storage tier backed by a single
// JSON file. It is the last tier in the fallback chain and survives
// every other tier being unavailable.
package disk

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pavilion-labs/clubby/internal/core/domain"
	"github.com/pavilion-labs/clubby/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.StorageBackend = (*Store)(nil)

// Store persists documents as a JSON file on local disk.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a disk store writing to dir/documents.json.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &Store{path: filepath.Join(dir, "documents.json")}, nil
}

// Name identifies the tier.
func (s *Store) Name() string {
	return "disk"
}

// Store merges documents by ID and rewrites the file atomically
// (write to a temp file, then rename).
func (s *Store) Store(ctx context.Context, docs []domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.load()
	if err != nil {
		return err
	}

	index := make(map[string]int, len(existing))
	for i := range existing {
		index[existing[i].ID] = i
	}
	for _, doc := range docs {
		if i, ok := index[doc.ID]; ok {
			existing[i] = doc
		} else {
			index[doc.ID] = len(existing)
			existing = append(existing, doc)
		}
	}

	data, err := json.Marshal(existing)
	if err != nil {
		return fmt.Errorf("marshal documents: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write documents: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace documents: %w", err)
	}
	return nil
}

// Load returns all persisted documents.
func (s *Store) Load(_ context.Context) ([]domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() ([]domain.Document, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read documents: %w", err)
	}
	var docs []domain.Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("decode documents: %w", err)
	}
	return docs, nil
}

// Health checks that the data directory is writable.
func (s *Store) Health(_ context.Context) error {
	dir := filepath.Dir(s.path)
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("disk tier: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("disk tier: %s is not a directory", dir)
	}
	return nil
}

// Close releases resources.
func (s *Store) Close() error {
	return nil
}
