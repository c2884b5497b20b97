package driven

import (
	"context"

	"github.com/pavilion-labs/clubby/internal/core/domain"
)

// VectorIndex provides delta-aware semantic retrieval over indexed
// documents. Upserts skip documents whose content fingerprint is
// unchanged since the last successful write.
type VectorIndex interface {
	// Upsert indexes documents, embedding them in bounded batches and
	// skipping fingerprint-unchanged documents.
	Upsert(ctx context.Context, docs []domain.Document) error

	// Query embeds text, runs nearest-neighbour search, then applies an
	// exact-match post-filter over metadata. Returns at most k document
	// IDs ranked by similarity, ties broken by insertion order.
	Query(ctx context.Context, text string, filters map[string]string, k int) ([]string, error)

	// Stats returns index counters for observability.
	Stats(ctx context.Context) (IndexStats, error)

	// Close releases resources.
	Close() error
}

// DocumentLookup resolves document IDs returned by a VectorIndex query
// back to full documents for answer rendering.
type DocumentLookup interface {
	// Get retrieves a document by ID, or domain.ErrNotFound.
	Get(ctx context.Context, id string) (*domain.Document, error)
}

// CachedVector is a durably cached embedding together with the
// provenance needed to decide whether it can be reused: the content
// fingerprint of the document it was computed from and the model that
// produced it. A mismatch on either means the document must be
// re-embedded.
type CachedVector struct {
	Fingerprint uint64    `json:"fingerprint"`
	Model       string    `json:"model"`
	Vector      []float32 `json:"vector"`
}

// VectorCache persists computed embeddings keyed by document ID, so
// rebuilding the in-process index at startup is a load rather than a
// re-embed of the whole corpus.
type VectorCache interface {
	// Get returns the cached embedding for a document, or
	// domain.ErrNotFound.
	Get(ctx context.Context, id string) (*CachedVector, error)

	// Put stores embeddings for a batch of documents.
	Put(ctx context.Context, vectors map[string]CachedVector) error

	// Close releases resources.
	Close() error
}

// IndexStats are the vector index's observability counters.
type IndexStats struct {
	// TotalDocuments is the number of documents currently indexed.
	TotalDocuments int `json:"total_documents"`

	// Writes counts effective document writes (embed + store).
	Writes int `json:"writes"`

	// SkippedWrites counts upserts skipped by delta detection.
	SkippedWrites int `json:"skipped_writes"`
}
