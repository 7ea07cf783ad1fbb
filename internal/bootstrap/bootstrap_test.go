package bootstrap

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moodboard/internal/adapter/memory"
	"moodboard/internal/domain"
	"moodboard/internal/infra"
)

type mapKeys struct {
	keys map[domain.ProviderID]string
	err  error
	seen []string
}

func (m *mapKeys) Resolve(_ context.Context, provider domain.ProviderID, explicit string) (string, error) {
	m.seen = append(m.seen, explicit)
	if m.err != nil {
		return "", m.err
	}
	if explicit != "" {
		return explicit, nil
	}
	return m.keys[provider], nil
}

func testConfig() *infra.Config {
	return &infra.Config{
		AppEnv:                     "development",
		NanoBananaAPIKey:           "nb-env",
		DefaultEnhancementProvider: "nanobanana",
		EnhancementPollInterval:    10 * time.Millisecond,
		EnhancementMaxPollAttempts: 3,
		ProviderTimeout:            time.Second,
	}
}

func TestTransportsUsesStoredKeyFallback(t *testing.T) {
	keys := &mapKeys{keys: map[domain.ProviderID]string{domain.ProviderSeedream: "ws-db"}}
	transports, err := Transports(context.Background(), testConfig(), keys, nil, zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, transports, 2)
	assert.ElementsMatch(t, []string{"nb-env", ""}, keys.seen)
}

func TestTransportsPropagatesKeyErrors(t *testing.T) {
	_, err := Transports(context.Background(), testConfig(), &mapKeys{err: errors.New("db down")}, nil, zerolog.Nop())
	require.ErrorContains(t, err, "db down")
}

func TestOrchestratorFromMemoryStores(t *testing.T) {
	store := memory.NewStore()
	transports, err := Transports(context.Background(), testConfig(), nil, nil, zerolog.Nop())
	require.NoError(t, err)

	orch, gate, err := Orchestrator(testConfig(), MemoryStores(store), transports, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(orch.Close)
	require.NotNil(t, gate)
	assert.Equal(t, domain.ProviderNanoBanana, orch.Registry().Default().ID)
}

func TestOrchestratorRejectsUnknownDefault(t *testing.T) {
	cfg := testConfig()
	cfg.DefaultEnhancementProvider = "dalle"
	transports, err := Transports(context.Background(), cfg, nil, nil, zerolog.Nop())
	require.NoError(t, err)

	_, _, err = Orchestrator(cfg, MemoryStores(memory.NewStore()), transports, zerolog.Nop())
	require.Error(t, err)
}

func TestPostgresStoresShareTaskRepo(t *testing.T) {
	s := PostgresStores(nil)
	assert.Same(t, s.Tasks, s.Queue)
}
