package services

import (
	"context"
	"fmt"

	"github.com/pavilion-labs/clubby/internal/core/domain"
	"github.com/pavilion-labs/clubby/internal/core/ports/driven"
	"github.com/pavilion-labs/clubby/internal/core/ports/driving"
	"github.com/pavilion-labs/clubby/internal/logger"
)

// Ensure IndexService implements the interface.
var _ driving.Indexer = (*IndexService)(nil)

// IndexService is the upsert surface consumed by the external sync job
// and webhook-driven updates. Documents are read-only from the router's
// perspective; this service is the only write path into the index.
type IndexService struct {
	vector driven.VectorIndex
}

// NewIndexService creates an index service over the vector index.
func NewIndexService(vector driven.VectorIndex) *IndexService {
	return &IndexService{vector: vector}
}

// Index upserts documents. Delta detection inside the vector index
// makes repeated indexing of unchanged source data idempotent.
func (s *IndexService) Index(ctx context.Context, docs []domain.Document) error {
	if s.vector == nil {
		return domain.ErrVectorIndexUnavailable
	}
	if len(docs) == 0 {
		return nil
	}
	for _, doc := range docs {
		if doc.ID == "" {
			return fmt.Errorf("%w: document with empty id", domain.ErrInvalidInput)
		}
	}
	logger.Info("Indexing %d documents", len(docs))
	return s.vector.Upsert(ctx, docs)
}

// Stats returns index counters.
func (s *IndexService) Stats(ctx context.Context) (driven.IndexStats, error) {
	if s.vector == nil {
		return driven.IndexStats{}, domain.ErrVectorIndexUnavailable
	}
	return s.vector.Stats(ctx)
}
