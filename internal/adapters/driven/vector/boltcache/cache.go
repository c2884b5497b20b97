// Package boltcache persists computed embeddings in a bbolt file so
// that index hydration at startup reloads vectors instead of paying
// one embedding request per stored document on every invocation.
package boltcache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/pavilion-labs/clubby/internal/core/domain"
	"github.com/pavilion-labs/clubby/internal/core/ports/driven"
)

// Ensure Cache implements the interface.
var _ driven.VectorCache = (*Cache)(nil)

var bucketVectors = []byte("embeddings")

// Cache stores embeddings in a bbolt bucket keyed by document ID.
type Cache struct {
	db *bbolt.DB
}

// NewCache opens (or creates) the bbolt database at path.
// The open timeout bounds waiting on another process's file lock.
func NewCache(path string) (*Cache, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open embedding cache: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketVectors)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}

	return &Cache{db: db}, nil
}

// Get returns the cached embedding for a document.
func (c *Cache) Get(_ context.Context, id string) (*driven.CachedVector, error) {
	var cached *driven.CachedVector
	err := c.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketVectors).Get([]byte(id))
		if data == nil {
			return nil
		}
		var v driven.CachedVector
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("decode embedding %s: %w", id, err)
		}
		cached = &v
		return nil
	})
	if err != nil {
		return nil, err
	}
	if cached == nil {
		return nil, domain.ErrNotFound
	}
	return cached, nil
}

// Put stores a batch of embeddings in a single transaction.
func (c *Cache) Put(_ context.Context, vectors map[string]driven.CachedVector) error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketVectors)
		for id, v := range vectors {
			data, err := json.Marshal(v)
			if err != nil {
				return fmt.Errorf("marshal embedding %s: %w", id, err)
			}
			if err := b.Put([]byte(id), data); err != nil {
				return fmt.Errorf("put embedding %s: %w", id, err)
			}
		}
		return nil
	})
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}
