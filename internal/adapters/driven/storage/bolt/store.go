// Package bolt provides a storage tier backed by bbolt, a single-file
// key/value store. It sits between the durable SQL tier and the plain
// disk tier in the fallback chain.
package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/pavilion-labs/clubby/internal/core/domain"
	"github.com/pavilion-labs/clubby/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.StorageBackend = (*Store)(nil)

var bucketDocs = []byte("documents")

// Store persists documents in a bbolt bucket keyed by document ID.
type Store struct {
	db *bbolt.DB
}

// NewStore opens (or creates) the bbolt database at path.
// The open timeout bounds waiting on another process's file lock.
func NewStore(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt store: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketDocs)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// Name identifies the tier.
func (s *Store) Name() string {
	return "bolt"
}

// Store writes all documents in a single transaction.
func (s *Store) Store(_ context.Context, docs []domain.Document) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketDocs)
		for _, doc := range docs {
			data, err := json.Marshal(doc)
			if err != nil {
				return fmt.Errorf("marshal document %s: %w", doc.ID, err)
			}
			if err := b.Put([]byte(doc.ID), data); err != nil {
				return fmt.Errorf("put document %s: %w", doc.ID, err)
			}
		}
		return nil
	})
}

// Load returns all documents in key order.
func (s *Store) Load(_ context.Context) ([]domain.Document, error) {
	var docs []domain.Document
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketDocs)
		return b.ForEach(func(_, v []byte) error {
			var doc domain.Document
			if err := json.Unmarshal(v, &doc); err != nil {
				return fmt.Errorf("decode document: %w", err)
			}
			docs = append(docs, doc)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// Health verifies the documents bucket is reachable.
func (s *Store) Health(_ context.Context) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketDocs) == nil {
			return fmt.Errorf("bolt tier: documents bucket missing")
		}
		return nil
	})
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
