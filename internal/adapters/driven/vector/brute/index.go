// Package brute provides an in-process vector index using exhaustive
// cosine similarity over normalised embeddings. Exhaustive scan is fast
// enough for a club-sized corpus and keeps the index dependency-free;
// the contract stays approximate-search shaped so a backend with a real
// ANN structure can replace it.
package brute

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/pavilion-labs/clubby/internal/core/domain"
	"github.com/pavilion-labs/clubby/internal/core/ports/driven"
	"github.com/pavilion-labs/clubby/internal/logger"
)

// Ensure Index implements the interfaces.
var (
	_ driven.VectorIndex    = (*Index)(nil)
	_ driven.DocumentLookup = (*Index)(nil)
)

// DefaultBatchSize bounds how many documents are embedded per request.
const DefaultBatchSize = 32

// entry is one indexed document with its embedding.
type entry struct {
	doc    domain.Document
	vector []float32
	// seq is the insertion sequence number, used for stable tie-breaks.
	seq int
}

// Index is a delta-aware vector index. Fingerprints live only in
// process memory; losing them costs at most one redundant upsert per
// document, never data.
type Index struct {
	embedder  driven.EmbeddingService
	store     driven.DocumentStore
	cache     driven.VectorCache
	batchSize int

	mu           sync.RWMutex
	entries      map[string]*entry
	fingerprints map[string]uint64
	nextSeq      int
	writes       int
	skipped      int
}

// NewIndex creates a vector index over the given embedding service and
// document store. The store persists document content; embeddings are
// held in memory and rebuilt by Hydrate, from the vector cache when one
// is installed.
func NewIndex(embedder driven.EmbeddingService, store driven.DocumentStore) *Index {
	return &Index{
		embedder:     embedder,
		store:        store,
		batchSize:    DefaultBatchSize,
		entries:      make(map[string]*entry),
		fingerprints: make(map[string]uint64),
	}
}

// SetBatchSize overrides the embedding batch size. Values < 1 are ignored.
func (x *Index) SetBatchSize(n int) {
	if n >= 1 {
		x.batchSize = n
	}
}

// SetVectorCache installs a durable embedding cache. Upserts write
// computed vectors through to it, and Hydrate loads from it instead of
// re-embedding documents whose fingerprint and model still match.
func (x *Index) SetVectorCache(cache driven.VectorCache) {
	x.cache = cache
}

// Hydrate rebuilds the in-memory index from the document store, called
// once at startup. Documents with a matching cached embedding are
// installed directly; only the remainder is re-embedded.
func (x *Index) Hydrate(ctx context.Context) error {
	if x.store == nil {
		return nil
	}
	docs, err := x.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load documents: %w", err)
	}
	if len(docs) == 0 {
		return nil
	}

	misses := docs
	if x.cache != nil && x.embedder != nil {
		misses = x.installCached(ctx, docs)
	}
	if len(misses) == 0 {
		logger.Info("Hydrated vector index with %d cached embeddings", len(docs))
		return nil
	}
	logger.Info("Hydrating vector index: %d documents, %d need embedding", len(docs), len(misses))
	return x.index(ctx, misses, false)
}

// installCached installs every document whose cached embedding still
// matches its current fingerprint and the active model, and returns the
// remainder for re-embedding. Cache loads do not count as writes.
func (x *Index) installCached(ctx context.Context, docs []domain.Document) []domain.Document {
	model := x.embedder.ModelName()
	var misses []domain.Document

	x.mu.Lock()
	defer x.mu.Unlock()
	for _, doc := range docs {
		cached, err := x.cache.Get(ctx, doc.ID)
		if err != nil || cached.Model != model || cached.Fingerprint != doc.Fingerprint() {
			misses = append(misses, doc)
			continue
		}
		e, ok := x.entries[doc.ID]
		if !ok {
			e = &entry{seq: x.nextSeq}
			x.nextSeq++
			x.entries[doc.ID] = e
		}
		e.doc = doc
		e.vector = cached.Vector
		x.fingerprints[doc.ID] = cached.Fingerprint
	}
	return misses
}

// Upsert indexes documents, skipping any whose fingerprint is unchanged
// since the last successful write, and persists changed documents to
// the document store.
func (x *Index) Upsert(ctx context.Context, docs []domain.Document) error {
	return x.index(ctx, docs, true)
}

// index embeds and stores changed documents. persist controls whether
// the document store write happens (hydration skips it).
func (x *Index) index(ctx context.Context, docs []domain.Document, persist bool) error {
	if x.embedder == nil {
		return domain.ErrEmbeddingUnavailable
	}

	// Delta detection: keep only documents whose content changed.
	changed := make([]domain.Document, 0, len(docs))
	x.mu.Lock()
	for _, doc := range docs {
		fp := doc.Fingerprint()
		if prev, ok := x.fingerprints[doc.ID]; ok && prev == fp {
			x.skipped++
			continue
		}
		changed = append(changed, doc)
	}
	x.mu.Unlock()

	if len(changed) == 0 {
		logger.Debug("Upsert: all %d documents unchanged, nothing to do", len(docs))
		return nil
	}
	logger.Debug("Upsert: %d of %d documents changed", len(changed), len(docs))

	// Embed in bounded batches to control memory and request size.
	vectors := make([][]float32, 0, len(changed))
	for start := 0; start < len(changed); start += x.batchSize {
		end := start + x.batchSize
		if end > len(changed) {
			end = len(changed)
		}
		texts := make([]string, 0, end-start)
		for _, doc := range changed[start:end] {
			texts = append(texts, doc.Text)
		}
		batch, err := x.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed batch: %w", err)
		}
		vectors = append(vectors, batch...)
	}

	for i := range vectors {
		vectors[i] = normalise(vectors[i])
	}

	if persist && x.store != nil {
		if err := x.store.Store(ctx, changed); err != nil {
			return fmt.Errorf("persist documents: %w", err)
		}
	}

	// Write-through to the embedding cache. Best-effort: a failed cache
	// write only costs a re-embed on the next hydrate.
	if x.cache != nil {
		payload := make(map[string]driven.CachedVector, len(changed))
		for i, doc := range changed {
			payload[doc.ID] = driven.CachedVector{
				Fingerprint: doc.Fingerprint(),
				Model:       x.embedder.ModelName(),
				Vector:      vectors[i],
			}
		}
		if err := x.cache.Put(ctx, payload); err != nil {
			logger.Warn("Caching %d embeddings failed: %v", len(payload), err)
		}
	}

	// Commit to the in-memory index only after embedding and
	// persistence succeed, so a failed batch leaves fingerprints
	// untouched and the next upsert retries it.
	x.mu.Lock()
	defer x.mu.Unlock()
	for i, doc := range changed {
		e, ok := x.entries[doc.ID]
		if !ok {
			e = &entry{seq: x.nextSeq}
			x.nextSeq++
			x.entries[doc.ID] = e
		}
		e.doc = doc
		e.vector = vectors[i]
		x.fingerprints[doc.ID] = doc.Fingerprint()
		x.writes++
	}
	return nil
}

// Query embeds text, ranks all candidates by cosine similarity, applies
// an exact-match post-filter over metadata, and returns at most k
// document IDs. Ranking is monotonic in embedding distance; ties break
// by insertion order (stable sort).
func (x *Index) Query(ctx context.Context, text string, filters map[string]string, k int) ([]string, error) {
	if x.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if k <= 0 {
		return nil, nil
	}

	qv, err := x.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	qv = normalise(qv)

	type scored struct {
		id    string
		score float32
		seq   int
	}

	x.mu.RLock()
	candidates := make([]scored, 0, len(x.entries))
	for id, e := range x.entries {
		if !e.doc.Metadata.Matches(filters) {
			continue
		}
		candidates = append(candidates, scored{id: id, score: dot(qv, e.vector), seq: e.seq})
	}
	x.mu.RUnlock()

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].seq < candidates[j].seq
	})

	if len(candidates) > k {
		candidates = candidates[:k]
	}

	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.id
	}
	logger.Debug("Vector query: %d candidates, returning %d", len(x.entries), len(ids))
	return ids, nil
}

// Get retrieves an indexed document by ID.
func (x *Index) Get(_ context.Context, id string) (*domain.Document, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	e, ok := x.entries[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	doc := e.doc
	return &doc, nil
}

// Stats returns index counters.
func (x *Index) Stats(_ context.Context) (driven.IndexStats, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return driven.IndexStats{
		TotalDocuments: len(x.entries),
		Writes:         x.writes,
		SkippedWrites:  x.skipped,
	}, nil
}

// Close releases resources, including the embedding cache if one is
// installed.
func (x *Index) Close() error {
	if x.cache != nil {
		return x.cache.Close()
	}
	return nil
}

// normalise scales a vector to unit length so dot product equals
// cosine similarity.
func normalise(v []float32) []float32 {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	if sum == 0 {
		return v
	}
	norm := float32(1 / math.Sqrt(sum))
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = f * norm
	}
	return out
}

// dot computes the inner product of two equal-length vectors.
func dot(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float32
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
