package file

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regulaware/dossier-cli/internal/core/domain"
)

func entry(id string, category domain.Category, embedding []float32) domain.VectorEntry {
	return domain.VectorEntry{
		ID:          id,
		FileName:    id + ".txt",
		FilePath:    "/docs/" + id + ".txt",
		Category:    category,
		Content:     "content of " + id,
		ContentHash: domain.HashContent("content of " + id),
		Embedding:   embedding,
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "store.json"), "test-model", 3)
}

func TestStore_AddEntries(t *testing.T) {
	store := newTestStore(t)

	err := store.AddEntries([]domain.VectorEntry{
		entry("a", domain.CategoryProcedure, []float32{1, 0, 0}),
		entry("b", domain.CategoryContext, []float32{0, 1, 0}),
	})

	require.NoError(t, err)
	assert.Equal(t, 2, store.Len())
}

func TestStore_AddEntries_DimensionMismatch(t *testing.T) {
	store := newTestStore(t)

	err := store.AddEntries([]domain.VectorEntry{
		entry("a", domain.CategoryProcedure, []float32{1, 0, 0}),
		entry("bad", domain.CategoryProcedure, []float32{1, 0}),
	})

	require.ErrorIs(t, err, domain.ErrDimensionMismatch)
	assert.Equal(t, 0, store.Len(), "no entry should be added when any entry fails validation")
}

func TestStore_Search_OrdersBySimilarity(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.AddEntries([]domain.VectorEntry{
		entry("far", domain.CategoryContext, []float32{0, 1, 0}),
		entry("close", domain.CategoryContext, []float32{0.9, 0.1, 0}),
		entry("exact", domain.CategoryContext, []float32{1, 0, 0}),
	}))

	matches, err := store.Search(context.Background(), []float32{1, 0, 0}, 2, "")

	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "exact", matches[0].Entry.ID)
	assert.Equal(t, "close", matches[1].Entry.ID)
	assert.Greater(t, matches[0].Similarity, matches[1].Similarity)
	assert.InDelta(t, 1.0, matches[0].Similarity, 1e-9)
}

func TestStore_Search_TiesKeepInsertionOrder(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.AddEntries([]domain.VectorEntry{
		entry("first", domain.CategoryContext, []float32{1, 0, 0}),
		entry("second", domain.CategoryContext, []float32{2, 0, 0}),
	}))

	matches, err := store.Search(context.Background(), []float32{1, 0, 0}, 10, "")

	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "first", matches[0].Entry.ID)
	assert.Equal(t, "second", matches[1].Entry.ID)
}

func TestStore_Search_CategoryFilter(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.AddEntries([]domain.VectorEntry{
		entry("sop", domain.CategoryProcedure, []float32{1, 0, 0}),
		entry("spec", domain.CategoryContext, []float32{1, 0, 0}),
	}))

	matches, err := store.Search(context.Background(), []float32{1, 0, 0}, 10, domain.CategoryProcedure)

	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "sop", matches[0].Entry.ID)
}

func TestStore_Search_ZeroVectorScoresZero(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.AddEntry(entry("zero", domain.CategoryContext, []float32{0, 0, 0})))

	matches, err := store.Search(context.Background(), []float32{1, 0, 0}, 10, "")

	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 0.0, matches[0].Similarity)
}

func TestStore_Search_QueryDimensionMismatch(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Search(context.Background(), []float32{1, 0}, 10, "")

	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestStore_Search_CancelledContext(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Search(ctx, []float32{1, 0, 0}, 10, "")

	assert.ErrorIs(t, err, context.Canceled)
}

func TestStore_Search_ZeroTopK(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.AddEntry(entry("a", domain.CategoryContext, []float32{1, 0, 0})))

	matches, err := store.Search(context.Background(), []float32{1, 0, 0}, 0, "")

	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestStore_RemoveEntriesByFile(t *testing.T) {
	store := newTestStore(t)
	a1 := entry("a", domain.CategoryContext, []float32{1, 0, 0})
	a2 := entry("a", domain.CategoryContext, []float32{0, 1, 0})
	a2.ID = "a2"
	b := entry("b", domain.CategoryContext, []float32{0, 0, 1})
	require.NoError(t, store.AddEntries([]domain.VectorEntry{a1, a2, b}))

	removed := store.RemoveEntriesByFile("/docs/a.txt")

	assert.Equal(t, 2, removed)
	require.Equal(t, 1, store.Len())
	assert.Equal(t, "b", store.Entries()[0].ID)

	assert.Equal(t, 0, store.RemoveEntriesByFile("/docs/missing.txt"))
}

func TestStore_Fingerprint_OrderIndependent(t *testing.T) {
	a := entry("a", domain.CategoryContext, []float32{1, 0, 0})
	b := entry("b", domain.CategoryContext, []float32{0, 1, 0})

	s1 := newTestStore(t)
	require.NoError(t, s1.AddEntries([]domain.VectorEntry{a, b}))
	s2 := newTestStore(t)
	require.NoError(t, s2.AddEntries([]domain.VectorEntry{b, a}))

	assert.Equal(t, s1.Fingerprint(), s2.Fingerprint())
}

func TestStore_Fingerprint_RestoredAfterAddRemove(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.AddEntry(entry("a", domain.CategoryContext, []float32{1, 0, 0})))
	before := store.Fingerprint()

	require.NoError(t, store.AddEntry(entry("b", domain.CategoryContext, []float32{0, 1, 0})))
	assert.NotEqual(t, before, store.Fingerprint())

	store.RemoveEntriesByFile("/docs/b.txt")
	assert.Equal(t, before, store.Fingerprint())
}

func TestStore_SaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	store := New(path, "test-model", 3)
	require.NoError(t, store.AddEntries([]domain.VectorEntry{
		entry("a", domain.CategoryProcedure, []float32{1, 0, 0}),
		entry("b", domain.CategoryContext, []float32{0, 1, 0}),
	}))
	require.NoError(t, store.Save())

	loaded := New(path, "test-model", 3)
	require.NoError(t, loaded.Load())

	assert.Equal(t, store.Fingerprint(), loaded.Fingerprint())
	require.Equal(t, 2, loaded.Len())
	assert.Equal(t, store.Entries(), loaded.Entries())
}

func TestStore_ConcurrentSavesNeverCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")

	one := New(path, "test-model", 3)
	require.NoError(t, one.AddEntry(entry("a", domain.CategoryProcedure, []float32{1, 0, 0})))
	two := New(path, "test-model", 3)
	require.NoError(t, two.AddEntries([]domain.VectorEntry{
		entry("b", domain.CategoryContext, []float32{0, 1, 0}),
		entry("c", domain.CategoryContext, []float32{0, 0, 1}),
	}))

	for i := 0; i < 20; i++ {
		var wg sync.WaitGroup
		for _, s := range []*Store{one, two} {
			wg.Add(1)
			go func(s *Store) {
				defer wg.Done()
				assert.NoError(t, s.Save())
			}(s)
		}
		wg.Wait()

		loaded := New(path, "test-model", 3)
		require.NoError(t, loaded.Load())
		assert.Contains(t, []int{1, 2}, loaded.Len())
	}
}

func TestStore_Load_MissingFile(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "absent.json"), "test-model", 3)

	assert.ErrorIs(t, store.Load(), domain.ErrNotFound)
}

func TestStore_Load_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store := New(path, "test-model", 3)

	assert.ErrorIs(t, store.Load(), domain.ErrStoreCorrupt)
	assert.Equal(t, 0, store.Len())
}

func TestStore_Load_ModelMismatchLeavesStoreUnchanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	writer := New(path, "old-model", 3)
	require.NoError(t, writer.AddEntry(entry("a", domain.CategoryContext, []float32{1, 0, 0})))
	require.NoError(t, writer.Save())

	store := New(path, "new-model", 3)
	require.NoError(t, store.AddEntry(entry("mine", domain.CategoryContext, []float32{0, 1, 0})))

	err := store.Load()

	require.ErrorIs(t, err, domain.ErrModelMismatch)
	require.Equal(t, 1, store.Len())
	assert.Equal(t, "mine", store.Entries()[0].ID)
}

func TestStore_Load_DimensionInconsistencyIsCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	writer := New(path, "test-model", 2)
	require.NoError(t, writer.AddEntry(entry("a", domain.CategoryContext, []float32{1, 0})))
	require.NoError(t, writer.Save())

	store := New(path, "test-model", 3)

	assert.ErrorIs(t, store.Load(), domain.ErrStoreCorrupt)
}

func TestFactory_StorePathStableAndDistinct(t *testing.T) {
	factory, err := NewFactory(t.TempDir(), "test-model", 3)
	require.NoError(t, err)

	a := factory.storePath("/projects/alpha")
	b := factory.storePath("/projects/beta")

	assert.Equal(t, a, factory.storePath("/projects/alpha"))
	assert.NotEqual(t, a, b)
	assert.Equal(t, ".json", filepath.Ext(a))
}

func TestFactory_StoreForSavesUnderCacheDir(t *testing.T) {
	cacheDir := t.TempDir()
	factory, err := NewFactory(cacheDir, "test-model", 3)
	require.NoError(t, err)

	store := factory.StoreFor("/projects/alpha")
	require.NoError(t, store.AddEntry(entry("a", domain.CategoryContext, []float32{1, 0, 0})))
	require.NoError(t, store.Save())

	files, err := os.ReadDir(cacheDir)
	require.NoError(t, err)
	require.Len(t, files, 1)
}

func TestFactory_Remove(t *testing.T) {
	cacheDir := t.TempDir()
	factory, err := NewFactory(cacheDir, "test-model", 3)
	require.NoError(t, err)

	store := factory.StoreFor("/projects/alpha")
	require.NoError(t, store.AddEntry(entry("a", domain.CategoryContext, []float32{1, 0, 0})))
	require.NoError(t, store.Save())

	require.NoError(t, factory.Remove("/projects/alpha"))
	files, err := os.ReadDir(cacheDir)
	require.NoError(t, err)
	assert.Empty(t, files)

	assert.NoError(t, factory.Remove("/projects/never-ingested"))
}
