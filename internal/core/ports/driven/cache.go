package driven

import "github.com/pavilion-labs/clubby/internal/core/domain"

// AnswerCache is a short-TTL cache of fully-formed answers keyed by
// normalised query. A single fixed TTL keeps behaviour predictable;
// expiry is checked lazily at read time. Implementations must be safe
// for concurrent use.
type AnswerCache interface {
	// Get returns the entry for key if present and unexpired.
	Get(key string) (*domain.CacheEntry, bool)

	// Put stores an answer under key with the cache's fixed TTL.
	Put(key, answer string, meta domain.Meta)
}
