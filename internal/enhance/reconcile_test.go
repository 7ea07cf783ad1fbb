package enhance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moodboard/internal/adapter/memory"
	"moodboard/internal/domain"
)

func seededStore() *memory.Store {
	store := memory.NewStore()
	store.PutItem(domain.MoodboardItem{ID: "item-1", MoodboardID: "mb-1", Source: domain.SourcePexels, URL: originalURL})
	return store
}

func TestReconcileCompleteWritesItemAndLog(t *testing.T) {
	store := seededStore()
	r := NewReconciler(store, store)
	fixed := time.Date(2026, 3, 1, 9, 0, 0, 0, time.FixedZone("WIB", 7*3600))
	r.now = func() time.Time { return fixed }

	item, err := r.Complete(context.Background(), Completion{
		ItemID:    "item-1",
		TaskID:    "t1",
		ResultURL: "https://cdn.example.com/y.jpg",
		Type:      domain.EnhancementBackground,
		Provider:  builtinProviders[domain.ProviderNanoBanana],
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/y.jpg", item.EnhancedURL)
	assert.Equal(t, originalURL, item.OriginalURL)
	assert.Equal(t, originalURL, item.URL)
	assert.False(t, item.ShowingOriginal)

	entries := store.Entries("mb-1")
	require.Len(t, entries, 1, "moodboard id falls back to the item's")
	e := entries[0]
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "AI Enhanced - Background", e.Attribution)
	assert.Equal(t, 1, e.Cost)
	assert.Equal(t, fixed.UTC(), e.Timestamp)
}

func TestReconcileCompleteClearsRevertFlag(t *testing.T) {
	store := seededStore()
	r := NewReconciler(store, store)
	ctx := context.Background()
	showing := true
	_, err := store.UpdateItem(ctx, "item-1", domain.ItemPatch{ShowingOriginal: &showing})
	require.NoError(t, err)

	item, err := r.Complete(ctx, Completion{ItemID: "item-1", ResultURL: "https://cdn.example.com/y.jpg", Type: domain.EnhancementMood, Provider: builtinProviders[domain.ProviderSeedream]})
	require.NoError(t, err)
	assert.False(t, item.ShowingOriginal)
}

func TestReconcileCompleteRestoresItemWhenLogFails(t *testing.T) {
	store := seededStore()
	r := NewReconciler(store, failingLog{store})

	_, err := r.Complete(context.Background(), Completion{
		ItemID:    "item-1",
		TaskID:    "t1",
		ResultURL: "https://cdn.example.com/y.jpg",
		Type:      domain.EnhancementLighting,
		Provider:  builtinProviders[domain.ProviderNanoBanana],
	})
	require.Error(t, err)

	item, err := store.GetItem(context.Background(), "item-1")
	require.NoError(t, err)
	assert.Empty(t, item.EnhancedURL)
	assert.Empty(t, item.OriginalURL)
	assert.Equal(t, domain.SourcePexels, item.Source)
	assert.Equal(t, originalURL, item.DisplayURL())
	assert.Empty(t, store.Entries("mb-1"))
}

func TestReconcileFailLeavesURLs(t *testing.T) {
	store := seededStore()
	r := NewReconciler(store, store)
	require.NoError(t, r.Fail(context.Background(), "item-1"))

	item, err := store.GetItem(context.Background(), "item-1")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskFailed, item.EnhancementStatus)
	assert.Equal(t, originalURL, item.URL)
	assert.Empty(t, item.EnhancedURL)
	assert.Empty(t, store.Entries("mb-1"))

	require.ErrorIs(t, r.Fail(context.Background(), "missing"), domain.ErrNotFound)
}

func TestToggleOriginalIsIdempotentPair(t *testing.T) {
	store := seededStore()
	r := NewReconciler(store, store)
	ctx := context.Background()
	_, err := r.Complete(ctx, Completion{ItemID: "item-1", ResultURL: "https://cdn.example.com/y.jpg", Type: domain.EnhancementStyle, Provider: builtinProviders[domain.ProviderSeedream]})
	require.NoError(t, err)

	before, err := store.GetItem(ctx, "item-1")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/y.jpg", before.DisplayURL())

	once, err := r.ToggleOriginal(ctx, "item-1")
	require.NoError(t, err)
	assert.Equal(t, originalURL, once.DisplayURL())

	twice, err := r.ToggleOriginal(ctx, "item-1")
	require.NoError(t, err)
	assert.Equal(t, before.DisplayURL(), twice.DisplayURL())
	assert.Equal(t, before.OriginalURL, twice.OriginalURL)
	assert.Equal(t, before.EnhancedURL, twice.EnhancedURL)
	assert.Len(t, store.Entries("mb-1"), 1)
}

func TestAttribution(t *testing.T) {
	assert.Equal(t, "AI Enhanced - Lighting", Attribution(domain.EnhancementLighting))
	assert.Equal(t, "AI Enhanced - Custom", Attribution(domain.EnhancementCustom))
}
