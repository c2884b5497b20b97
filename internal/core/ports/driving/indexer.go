package driving

import (
	"context"

	"github.com/pavilion-labs/clubby/internal/core/domain"
	"github.com/pavilion-labs/clubby/internal/core/ports/driven"
)

// Indexer is the upsert surface consumed by the external sync job and
// webhook-driven updates. The transport is out of scope; this contract
// is what it calls.
type Indexer interface {
	// Index upserts documents into the semantic store.
	Index(ctx context.Context, docs []domain.Document) error

	// Stats returns index counters.
	Stats(ctx context.Context) (driven.IndexStats, error)
}
