package bolt

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavilion-labs/clubby/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "documents.bolt"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreAndLoad(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	docs := []domain.Document{
		{ID: "d1", Text: "fixture text", Metadata: domain.Metadata{Type: domain.DocTypeFixture, TeamID: "team-1"}},
		{ID: "d2", Text: "ladder text", Metadata: domain.Metadata{Type: domain.DocTypeLadder}},
	}
	require.NoError(t, store.Store(ctx, docs))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "d1", loaded[0].ID)
	assert.Equal(t, domain.DocTypeFixture, loaded[0].Metadata.Type)
}

func TestStoreUpsertsByID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Store(ctx, []domain.Document{{ID: "d1", Text: "old"}}))
	require.NoError(t, store.Store(ctx, []domain.Document{{ID: "d1", Text: "new"}}))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "new", loaded[0].Text)
}

func TestReopenSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "documents.bolt")
	ctx := context.Background()

	first, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, first.Store(ctx, []domain.Document{{ID: "d1", Text: "persisted"}}))
	require.NoError(t, first.Close())

	second, err := NewStore(path)
	require.NoError(t, err)
	defer second.Close()

	loaded, err := second.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "persisted", loaded[0].Text)
}

func TestHealth(t *testing.T) {
	store := newTestStore(t)
	assert.NoError(t, store.Health(context.Background()))
}
