package brute

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavilion-labs/clubby/internal/adapters/driven/embedding/local"
	"github.com/pavilion-labs/clubby/internal/adapters/driven/storage/disk"
	storagememory "github.com/pavilion-labs/clubby/internal/adapters/driven/storage/memory"
	"github.com/pavilion-labs/clubby/internal/adapters/driven/storage/tiered"
	"github.com/pavilion-labs/clubby/internal/adapters/driven/vector/boltcache"
	"github.com/pavilion-labs/clubby/internal/core/domain"
	"github.com/pavilion-labs/clubby/internal/core/ports/driven"
)

// countingEmbedder tracks how many texts are embedded.
type countingEmbedder struct {
	driven.EmbeddingService
	embeds int
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.embeds++
	return c.EmbeddingService.Embed(ctx, text)
}

func (c *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	c.embeds += len(texts)
	return c.EmbeddingService.EmbedBatch(ctx, texts)
}

func newTestIndex() (*Index, driven.DocumentStore) {
	store := tiered.NewStore(storagememory.NewStore())
	return NewIndex(local.NewEmbeddingService(), store), store
}

func testDocs() []domain.Document {
	return []domain.Document{
		{ID: "f1", Text: "fixture against Rivergum at Memorial Oval on Saturday",
			Metadata: domain.Metadata{Type: domain.DocTypeFixture, TeamID: "team-1", Date: "2026-09-05"}},
		{ID: "r1", Text: "roster for the second eleven with twelve players",
			Metadata: domain.Metadata{Type: domain.DocTypeRoster, TeamID: "team-2"}},
		{ID: "l1", Text: "ladder standings after round eight",
			Metadata: domain.Metadata{Type: domain.DocTypeLadder, TeamID: "team-1"}},
	}
}

func TestUpsertAndStats(t *testing.T) {
	index, _ := newTestIndex()

	require.NoError(t, index.Upsert(context.Background(), testDocs()))

	stats, err := index.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalDocuments)
	assert.Equal(t, 3, stats.Writes)
	assert.Equal(t, 0, stats.SkippedWrites)
}

func TestUpsertSkipsUnchangedDocuments(t *testing.T) {
	index, _ := newTestIndex()
	docs := testDocs()

	require.NoError(t, index.Upsert(context.Background(), docs))
	require.NoError(t, index.Upsert(context.Background(), docs))

	stats, err := index.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalDocuments)
	assert.Equal(t, 3, stats.Writes, "unchanged documents must not be re-embedded")
	assert.Equal(t, 3, stats.SkippedWrites)
}

func TestUpsertReindexesChangedText(t *testing.T) {
	index, _ := newTestIndex()
	docs := testDocs()

	require.NoError(t, index.Upsert(context.Background(), docs))

	docs[0].Text = "fixture against Rivergum moved to Sunday"
	require.NoError(t, index.Upsert(context.Background(), docs[:1]))

	stats, err := index.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalDocuments, "changed document must replace, not duplicate")
	assert.Equal(t, 4, stats.Writes)

	doc, err := index.Get(context.Background(), "f1")
	require.NoError(t, err)
	assert.Contains(t, doc.Text, "Sunday")
}

func TestUpsertMetadataChangeIsAWrite(t *testing.T) {
	index, _ := newTestIndex()
	docs := testDocs()

	require.NoError(t, index.Upsert(context.Background(), docs))

	docs[0].Metadata.Date = "2026-09-06"
	require.NoError(t, index.Upsert(context.Background(), docs[:1]))

	stats, err := index.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Writes)
}

func TestQueryRanksByLexicalSimilarity(t *testing.T) {
	index, _ := newTestIndex()
	require.NoError(t, index.Upsert(context.Background(), testDocs()))

	ids, err := index.Query(context.Background(), "ladder standings after round eight", nil, 3)
	require.NoError(t, err)
	require.NotEmpty(t, ids)
	assert.Equal(t, "l1", ids[0], "exact text overlap must rank first")
}

func TestQueryAppliesMetadataFilter(t *testing.T) {
	index, _ := newTestIndex()
	require.NoError(t, index.Upsert(context.Background(), testDocs()))

	ids, err := index.Query(context.Background(), "anything about the club",
		map[string]string{domain.FilterType: domain.DocTypeRoster}, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, ids)
}

func TestQueryFilterMismatchReturnsEmpty(t *testing.T) {
	index, _ := newTestIndex()
	require.NoError(t, index.Upsert(context.Background(), testDocs()))

	ids, err := index.Query(context.Background(), "fixtures",
		map[string]string{domain.FilterType: domain.DocTypeFixture, domain.FilterTeamID: "team-9"}, 5)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestQueryRespectsK(t *testing.T) {
	index, _ := newTestIndex()
	require.NoError(t, index.Upsert(context.Background(), testDocs()))

	ids, err := index.Query(context.Background(), "club", nil, 2)
	require.NoError(t, err)
	assert.Len(t, ids, 2)

	ids, err = index.Query(context.Background(), "club", nil, 0)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestGetUnknownID(t *testing.T) {
	index, _ := newTestIndex()

	_, err := index.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHydrateRebuildsFromStore(t *testing.T) {
	first, store := newTestIndex()
	require.NoError(t, first.Upsert(context.Background(), testDocs()))

	// A fresh index over the same store starts empty and rebuilds.
	second := NewIndex(local.NewEmbeddingService(), store)
	require.NoError(t, second.Hydrate(context.Background()))

	stats, err := second.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalDocuments)

	ids, err := second.Query(context.Background(), "ladder standings after round eight", nil, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"l1"}, ids)
}

// durableGraph builds an index over a disk tier and a persistent
// embedding cache rooted at dir, as the CLI wires it per invocation.
func durableGraph(t *testing.T, dir string) (*Index, *countingEmbedder, driven.DocumentStore) {
	t.Helper()
	diskStore, err := disk.NewStore(dir)
	require.NoError(t, err)
	store := tiered.NewStore(diskStore)
	store.SetReadCache(storagememory.NewStore())

	vecCache, err := boltcache.NewCache(filepath.Join(dir, "embeddings.bolt"))
	require.NoError(t, err)

	embedder := &countingEmbedder{EmbeddingService: local.NewEmbeddingService()}
	index := NewIndex(embedder, store)
	index.SetVectorCache(vecCache)
	return index, embedder, store
}

func TestIndexedDocumentsSurviveRestart(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, firstEmbedder, _ := durableGraph(t, dir)
	require.NoError(t, first.Upsert(ctx, testDocs()))
	assert.Equal(t, 3, firstEmbedder.embeds)
	require.NoError(t, first.Close())

	// A fresh component graph over the same data dir, as after a
	// process restart.
	second, secondEmbedder, _ := durableGraph(t, dir)
	require.NoError(t, second.Hydrate(ctx))

	stats, err := second.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalDocuments, "indexed documents must survive a restart")
	assert.Equal(t, 0, secondEmbedder.embeds, "hydration must reload cached embeddings, not re-embed")

	ids, err := second.Query(ctx, "ladder standings after round eight", nil, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"l1"}, ids)
	require.NoError(t, second.Close())
}

func TestHydrateReembedsWhenCachedVectorIsStale(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, _, store := durableGraph(t, dir)
	require.NoError(t, first.Upsert(ctx, testDocs()))

	// Change one document behind the index's back, so its cached
	// embedding no longer matches the stored content.
	changed := testDocs()[0]
	changed.Text = "fixture against Rivergum moved to Sunday"
	require.NoError(t, store.Store(ctx, []domain.Document{changed}))
	require.NoError(t, first.Close())

	second, secondEmbedder, _ := durableGraph(t, dir)
	require.NoError(t, second.Hydrate(ctx))

	assert.Equal(t, 1, secondEmbedder.embeds, "only the changed document is re-embedded")
	doc, err := second.Get(ctx, "f1")
	require.NoError(t, err)
	assert.Contains(t, doc.Text, "Sunday")
	require.NoError(t, second.Close())
}

func TestUpsertSmallBatches(t *testing.T) {
	index, _ := newTestIndex()
	index.SetBatchSize(1)

	require.NoError(t, index.Upsert(context.Background(), testDocs()))

	stats, err := index.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Writes)
}
