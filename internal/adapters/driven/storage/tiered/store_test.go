package tiered

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavilion-labs/clubby/internal/core/domain"
)

// fakeBackend is a scriptable in-memory tier.
type fakeBackend struct {
	name       string
	docs       []domain.Document
	healthErr  error
	storeErr   error
	loadErr    error
	storeCalls int
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Store(_ context.Context, docs []domain.Document) error {
	f.storeCalls++
	if f.storeErr != nil {
		return f.storeErr
	}
	for _, doc := range docs {
		replaced := false
		for i := range f.docs {
			if f.docs[i].ID == doc.ID {
				f.docs[i] = doc
				replaced = true
				break
			}
		}
		if !replaced {
			f.docs = append(f.docs, doc)
		}
	}
	return nil
}

func (f *fakeBackend) Load(context.Context) ([]domain.Document, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.docs, nil
}

func (f *fakeBackend) Health(context.Context) error { return f.healthErr }
func (f *fakeBackend) Close() error                 { return nil }

func doc(id string) domain.Document {
	return domain.Document{ID: id, Text: "doc " + id}
}

func TestStoreWritesFirstHealthyTier(t *testing.T) {
	primary := &fakeBackend{name: "sqlite"}
	secondary := &fakeBackend{name: "disk"}
	store := NewStore(primary, secondary)

	require.NoError(t, store.Store(context.Background(), []domain.Document{doc("d1")}))

	assert.Len(t, primary.docs, 1)
	assert.Empty(t, secondary.docs, "lower tiers are fallback, not replicas")
}

func TestStoreFallsThroughUnhealthyTier(t *testing.T) {
	primary := &fakeBackend{name: "sqlite", healthErr: errors.New("down")}
	secondary := &fakeBackend{name: "disk"}
	store := NewStore(primary, secondary)

	require.NoError(t, store.Store(context.Background(), []domain.Document{doc("d1")}))

	assert.Equal(t, 0, primary.storeCalls)
	assert.Len(t, secondary.docs, 1)
}

func TestStoreFallsThroughFailedWrite(t *testing.T) {
	primary := &fakeBackend{name: "sqlite", storeErr: errors.New("full")}
	secondary := &fakeBackend{name: "disk"}
	store := NewStore(primary, secondary)

	require.NoError(t, store.Store(context.Background(), []domain.Document{doc("d1")}))
	assert.Len(t, secondary.docs, 1)
}

func TestStoreAllTiersUnavailable(t *testing.T) {
	store := NewStore(
		&fakeBackend{name: "sqlite", healthErr: errors.New("down")},
		&fakeBackend{name: "disk", storeErr: errors.New("full")},
	)

	err := store.Store(context.Background(), []domain.Document{doc("d1")})
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
}

func TestStoreEmptyBatchIsNoop(t *testing.T) {
	primary := &fakeBackend{name: "sqlite"}
	store := NewStore(primary)

	require.NoError(t, store.Store(context.Background(), nil))
	assert.Equal(t, 0, primary.storeCalls)
}

func TestLoadFallsThroughAndHydrates(t *testing.T) {
	primary := &fakeBackend{name: "sqlite"}
	secondary := &fakeBackend{name: "disk", docs: []domain.Document{doc("d1"), doc("d2")}}
	store := NewStore(primary, secondary)

	docs, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	// The slower tier's documents are copied up into the faster tier.
	assert.Len(t, primary.docs, 2)
}

func TestLoadSkipsFailingTier(t *testing.T) {
	primary := &fakeBackend{name: "sqlite", loadErr: errors.New("corrupt")}
	secondary := &fakeBackend{name: "disk", docs: []domain.Document{doc("d1")}}
	store := NewStore(primary, secondary)

	docs, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestLoadAllTiersEmpty(t *testing.T) {
	store := NewStore(&fakeBackend{name: "sqlite"}, &fakeBackend{name: "disk"})

	docs, err := store.Load(context.Background())
	assert.NoError(t, err, "empty stores are an empty result, not an error")
	assert.Empty(t, docs)
}

func TestReadCacheHasNoWriteAuthority(t *testing.T) {
	cache := &fakeBackend{name: "memory"}
	durable := &fakeBackend{name: "sqlite"}
	store := NewStore(durable)
	store.SetReadCache(cache)

	require.NoError(t, store.Store(context.Background(), []domain.Document{doc("d1")}))

	assert.Len(t, durable.docs, 1, "every write must land on a durable tier")
	assert.Len(t, cache.docs, 1, "cache is refreshed as a side effect")
}

func TestDocumentsOutliveTheReadCache(t *testing.T) {
	durable := &fakeBackend{name: "disk"}

	first := NewStore(durable)
	first.SetReadCache(&fakeBackend{name: "memory"})
	require.NoError(t, first.Store(context.Background(), []domain.Document{doc("d1")}))

	// A fresh store with an empty cache over the same durable backend,
	// as after a process restart.
	second := NewStore(durable)
	second.SetReadCache(&fakeBackend{name: "memory"})
	docs, err := second.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestLoadServesWarmCache(t *testing.T) {
	cache := &fakeBackend{name: "memory", docs: []domain.Document{doc("d1")}}
	durable := &fakeBackend{name: "sqlite", loadErr: errors.New("corrupt")}
	store := NewStore(durable)
	store.SetReadCache(cache)

	docs, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, docs, 1, "a warm cache serves reads without touching durable tiers")
}

func TestLoadFallthroughRefreshesCache(t *testing.T) {
	cache := &fakeBackend{name: "memory"}
	durable := &fakeBackend{name: "disk", docs: []domain.Document{doc("d1"), doc("d2")}}
	store := NewStore(durable)
	store.SetReadCache(cache)

	docs, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, docs, 2)
	assert.Len(t, cache.docs, 2, "served documents are copied into the cache")
}

func TestHealthIncludesReadCache(t *testing.T) {
	store := NewStore(&fakeBackend{name: "sqlite"})
	store.SetReadCache(&fakeBackend{name: "memory"})

	statuses := store.Health(context.Background())
	require.Len(t, statuses, 2)
	assert.Equal(t, "memory", statuses[0].Name)
	assert.Equal(t, "sqlite", statuses[1].Name)
}

func TestHealthReportsPerTier(t *testing.T) {
	store := NewStore(
		&fakeBackend{name: "sqlite"},
		&fakeBackend{name: "disk", healthErr: errors.New("disk full")},
	)

	statuses := store.Health(context.Background())
	require.Len(t, statuses, 2)
	assert.Equal(t, "sqlite", statuses[0].Name)
	assert.True(t, statuses[0].Healthy)
	assert.Equal(t, "disk", statuses[1].Name)
	assert.False(t, statuses[1].Healthy)
	assert.Equal(t, "disk full", statuses[1].Error)
}

func TestWriteLockAcquireRelease(t *testing.T) {
	lock := newWriteLock()

	release, ok := lock.acquire(context.Background())
	require.True(t, ok)
	release()

	// Released lock can be re-acquired immediately.
	release, ok = lock.acquire(context.Background())
	require.True(t, ok)
	release()
}

func TestWriteLockCancelledContext(t *testing.T) {
	lock := newWriteLock()

	release, ok := lock.acquire(context.Background())
	require.True(t, ok)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok = lock.acquire(ctx)
	assert.False(t, ok, "held lock with cancelled context must not block")
}

func TestStoreProceedsWhenLockHeld(t *testing.T) {
	primary := &fakeBackend{name: "sqlite"}
	store := NewStore(primary)

	// Hold the store lock so the write cannot acquire it, then cancel to
	// trigger the best-effort unlocked path immediately.
	release, ok := store.lock.acquire(context.Background())
	require.True(t, ok)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, store.Store(ctx, []domain.Document{doc("d1")}))
	assert.Len(t, primary.docs, 1, "write must proceed best-effort without the lock")
}
