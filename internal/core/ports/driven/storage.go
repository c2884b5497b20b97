package driven

import (
	"context"

	"github.com/pavilion-labs/clubby/internal/core/domain"
)

// StorageBackend is one tier in the document persistence fallback chain.
// Backends are tried in priority order; the first healthy tier is
// authoritative for an operation, lower tiers are strictly fallback.
type StorageBackend interface {
	// Name identifies the tier in logs and health output.
	Name() string

	// Store persists documents, merging by document ID.
	Store(ctx context.Context, docs []domain.Document) error

	// Load returns all documents held by this tier.
	Load(ctx context.Context) ([]domain.Document, error)

	// Health reports whether the tier can currently serve operations.
	Health(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// TierStatus describes one tier's health for observability.
type TierStatus struct {
	// Name is the tier name.
	Name string

	// Healthy is true when the tier's health check passed.
	Healthy bool

	// Error is the health check failure, if any.
	Error string
}

// DocumentStore is the composite store the rest of the system reads
// and writes documents through. Reads are lock-free and eventually
// consistent with respect to concurrent writes.
type DocumentStore interface {
	// Store writes documents to the first healthy tier.
	Store(ctx context.Context, docs []domain.Document) error

	// Load reads documents from the first tier that has any,
	// hydrating faster tiers as a side effect.
	Load(ctx context.Context) ([]domain.Document, error)

	// Health returns per-tier status in priority order.
	Health(ctx context.Context) []TierStatus

	// Close releases all tiers.
	Close() error
}
