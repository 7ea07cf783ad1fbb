package enhance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moodboard/internal/domain"
)

func TestInflightReserveRejectsActiveItem(t *testing.T) {
	r := newInflight()
	gen, ok := r.reserve("item-1", domain.ProviderNanoBanana)
	require.True(t, ok)

	_, ok = r.reserve("item-1", domain.ProviderSeedream)
	assert.False(t, ok, "idle reservation still owns the item")

	r.update(gen, domain.EnhancementTask{ItemID: "item-1", Status: domain.TaskPolling})
	_, ok = r.reserve("item-1", domain.ProviderSeedream)
	assert.False(t, ok)

	_, ok = r.reserve("item-2", domain.ProviderSeedream)
	assert.True(t, ok, "other items are independent")
}

func TestInflightStaleCleanupKeepsNewerTask(t *testing.T) {
	r := newInflight()
	first, ok := r.reserve("item-1", domain.ProviderNanoBanana)
	require.True(t, ok)
	r.update(first, domain.EnhancementTask{ItemID: "item-1", Status: domain.TaskCompleted})

	second, ok := r.reserve("item-1", domain.ProviderSeedream)
	require.True(t, ok, "terminal entry awaiting cleanup is replaced")
	assert.NotEqual(t, first, second)

	assert.False(t, r.release("item-1", first))
	assert.False(t, r.update(first, domain.EnhancementTask{ItemID: "item-1", Status: domain.TaskFailed}))

	task, ok := r.get("item-1")
	require.True(t, ok)
	assert.Equal(t, domain.TaskIdle, task.Status)
	assert.Equal(t, domain.ProviderSeedream, task.Provider)

	assert.True(t, r.release("item-1", second))
	_, ok = r.get("item-1")
	assert.False(t, ok)
}

func TestInflightSnapshotIsSorted(t *testing.T) {
	r := newInflight()
	for _, id := range []string{"c", "a", "b"} {
		_, ok := r.reserve(id, domain.ProviderSeedream)
		require.True(t, ok)
	}
	snap := r.snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{snap[0].ItemID, snap[1].ItemID, snap[2].ItemID})
}
