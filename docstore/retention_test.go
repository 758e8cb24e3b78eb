package docstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/becomeliminal/docmem/docstore"
)

func TestCleanupRemovesOnlyExpiredDocuments(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	fake := newFakeIndex()
	fake.put("old", "old doc", map[string]any{
		docstore.MetaCreatedAt: now.AddDate(0, 0, -10).Format(time.RFC3339),
	})
	fake.put("recent", "recent doc", map[string]any{
		docstore.MetaCreatedAt: now.Format(time.RFC3339),
	})
	fake.put("no-timestamp", "doc without created_at", map[string]any{"source": "rss"})
	fake.put("malformed", "doc with bad created_at", map[string]any{
		docstore.MetaCreatedAt: "yesterday-ish",
	})
	fake.put("non-string", "doc with numeric created_at", map[string]any{
		docstore.MetaCreatedAt: 12345,
	})

	mgr := docstore.NewRetentionManager(readyStore(t, fake))
	res, err := mgr.Cleanup(ctx, 7)
	require.NoError(t, err)

	assert.Empty(t, res.Err)
	assert.Equal(t, 1, res.Removed)
	assert.Equal(t, 7, res.MaxAgeDays)
	_, perr := time.Parse(time.RFC3339, res.CutoffDate)
	require.NoError(t, perr)

	// Expired doc is gone; ambiguous ages are always retained.
	assert.NotContains(t, fake.docs, "old")
	assert.Contains(t, fake.docs, "recent")
	assert.Contains(t, fake.docs, "no-timestamp")
	assert.Contains(t, fake.docs, "malformed")
	assert.Contains(t, fake.docs, "non-string")
}

func TestCleanupZeroMaxAgeBoundary(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

	fake := newFakeIndex()
	store := readyStore(t, fake)
	docstore.SetClock(store, func() time.Time { return fixed })

	// One document created "now" (same second as the cutoff), one
	// backdated five days.
	res, err := store.Store(ctx, "fresh doc", docstore.WithID("fresh"))
	require.NoError(t, err)
	require.True(t, res.Stored)
	fake.put("stale", "stale doc", map[string]any{
		docstore.MetaCreatedAt: fixed.AddDate(0, 0, -5).Format(time.RFC3339),
	})

	clean, err := docstore.NewRetentionManager(store).Cleanup(ctx, 0)
	require.NoError(t, err)

	assert.Equal(t, 1, clean.Removed)
	assert.Equal(t, fixed.Format(time.RFC3339), clean.CutoffDate)
	assert.Contains(t, fake.docs, "fresh")
	assert.NotContains(t, fake.docs, "stale")
}

func TestCleanupIsExactlyOnce(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	fake := newFakeIndex()
	fake.put("old", "old doc", map[string]any{
		docstore.MetaCreatedAt: now.AddDate(0, 0, -30).Format(time.RFC3339),
	})
	mgr := docstore.NewRetentionManager(readyStore(t, fake))

	first, err := mgr.Cleanup(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Removed)

	second, err := mgr.Cleanup(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Removed)
}

func TestCleanupBackendFailureIsDataNotError(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	fake := newFakeIndex()
	fake.scanErr = errors.New("scan failed")
	mgr := docstore.NewRetentionManager(readyStore(t, fake))

	res, err := mgr.Cleanup(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Removed)
	assert.Contains(t, res.Err, "scan failed")

	fake.scanErr = nil
	fake.deleteErr = errors.New("delete failed")
	fake.put("old", "old doc", map[string]any{
		docstore.MetaCreatedAt: now.AddDate(0, 0, -30).Format(time.RFC3339),
	})

	res, err = mgr.Cleanup(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Removed)
	assert.Contains(t, res.Err, "delete failed")
}

func TestCleanupRequiresInitializedStore(t *testing.T) {
	store := docstore.New(testConfig(t), newFakeIndex().opener())
	mgr := docstore.NewRetentionManager(store)

	_, err := mgr.Cleanup(context.Background(), 7)
	require.ErrorIs(t, err, docstore.ErrUninitialized)
}
