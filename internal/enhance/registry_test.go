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

func TestRegistryBuiltins(t *testing.T) {
	r, err := NewRegistry(" NanoBanana ")
	require.NoError(t, err)
	assert.Equal(t, domain.ProviderNanoBanana, r.Default().ID)

	nano, err := r.Lookup(domain.ProviderNanoBanana)
	require.NoError(t, err)
	assert.Equal(t, 1, nano.Cost)
	assert.Equal(t, domain.CompletionAsynchronous, nano.Mode)
	assert.Equal(t, "Nanobanana (Fast)", nano.DisplayName)

	seed, err := r.Resolve(domain.ProviderSeedream)
	require.NoError(t, err)
	assert.Equal(t, 2, seed.Cost)
	assert.Equal(t, domain.CompletionSynchronous, seed.Mode)
	assert.Equal(t, 5*time.Second, seed.EstimatedDuration)

	def, err := r.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, domain.ProviderNanoBanana, def.ID)

	all := r.All()
	require.Len(t, all, 2)
	assert.Equal(t, domain.ProviderNanoBanana, all[0].ID)
	assert.Equal(t, domain.ProviderSeedream, all[1].ID)
}

func TestRegistryMustLookup(t *testing.T) {
	reg, err := NewRegistry("nanobanana")
	require.NoError(t, err)

	assert.Equal(t, 2, reg.MustLookup(domain.ProviderSeedream).Cost)
	assert.Panics(t, func() { reg.MustLookup(domain.ProviderID("dalle")) })
}

func TestRegistryUnknownDefaultFailsStartup(t *testing.T) {
	_, err := NewRegistry("midjourney")
	require.ErrorIs(t, err, domain.ErrUnknownProvider)

	_, err = NewRegistry("")
	require.ErrorIs(t, err, domain.ErrUnknownProvider)
}

func TestRegistryRejectsBadTable(t *testing.T) {
	_, err := newRegistry(map[domain.ProviderID]ProviderInfo{
		domain.ProviderNanoBanana: {ID: domain.ProviderNanoBanana, Cost: -1, Mode: domain.CompletionAsynchronous},
	}, "nanobanana")
	require.Error(t, err)

	_, err = newRegistry(map[domain.ProviderID]ProviderInfo{
		domain.ProviderNanoBanana: {ID: domain.ProviderNanoBanana, Cost: 1, Mode: "eventually"},
	}, "nanobanana")
	require.Error(t, err)

	_, err = newRegistry(map[domain.ProviderID]ProviderInfo{
		domain.ProviderSeedream: builtinProviders[domain.ProviderSeedream],
	}, "nanobanana")
	require.ErrorIs(t, err, domain.ErrUnknownProvider)
}

func TestCreditGate(t *testing.T) {
	store := memory.NewStore()
	store.SetBalance(domain.CreditBalance{UserID: "user-1", Current: 1, Monthly: 10, Tier: domain.CreditTierPlus})
	gate := NewCreditGate(store)

	_, ok := gate.Snapshot("user-1")
	assert.False(t, ok)

	balance, err := gate.Refresh(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, gate.CanAfford(balance, builtinProviders[domain.ProviderNanoBanana]))
	assert.False(t, gate.CanAfford(balance, builtinProviders[domain.ProviderSeedream]))

	store.Debit("user-1", 1)
	stale, _ := gate.Snapshot("user-1")
	assert.Equal(t, 1, stale.Current, "snapshot is never adjusted locally")

	fresh, err := gate.Refresh(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 0, fresh.Current)

	_, err = NewCreditGate(failingLedger{}).Refresh(context.Background(), "user-1")
	require.ErrorContains(t, err, "credits: get balance")
}
