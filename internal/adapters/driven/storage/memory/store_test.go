package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavilion-labs/clubby/internal/core/domain"
)

func TestStoreMergesByID(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.Store(ctx, []domain.Document{
		{ID: "d1", Text: "one"},
		{ID: "d2", Text: "two"},
	}))
	require.NoError(t, store.Store(ctx, []domain.Document{
		{ID: "d1", Text: "one updated"},
	}))

	docs, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "one updated", docs[0].Text)
	assert.Equal(t, "d2", docs[1].ID)
}

func TestLoadPreservesInsertionOrder(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.Store(ctx, []domain.Document{
		{ID: "c"}, {ID: "a"}, {ID: "b"},
	}))

	docs, err := store.Load(ctx)
	require.NoError(t, err)
	ids := make([]string, len(docs))
	for i, doc := range docs {
		ids[i] = doc.ID
	}
	assert.Equal(t, []string{"c", "a", "b"}, ids)
}

func TestEmptyStore(t *testing.T) {
	store := NewStore()

	docs, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, docs)
	assert.NoError(t, store.Health(context.Background()))
}
