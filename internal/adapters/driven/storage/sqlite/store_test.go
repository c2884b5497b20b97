package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavilion-labs/clubby/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreAndLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	docs := []domain.Document{
		{ID: "d1", Text: "fixture against Rivergum",
			Metadata: domain.Metadata{Type: domain.DocTypeFixture, TeamID: "team-1", SeasonID: "s1", GradeID: "g1", Date: "2026-09-05"}},
		{ID: "d2", Text: "roster entry",
			Metadata: domain.Metadata{Type: domain.DocTypeRoster, TeamID: "team-2"}},
	}
	require.NoError(t, store.Store(ctx, docs))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, docs, loaded)
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

func TestLoadPreservesInsertionOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Store(ctx, []domain.Document{
		{ID: "c"}, {ID: "a"}, {ID: "b"},
	}))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	ids := make([]string, len(loaded))
	for i, doc := range loaded {
		ids[i] = doc.ID
	}
	assert.Equal(t, []string{"c", "a", "b"}, ids)
}

func TestReopenSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.Store(ctx, []domain.Document{{ID: "d1", Text: "persisted"}}))
	require.NoError(t, first.Close())

	second, err := NewStore(dir)
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
