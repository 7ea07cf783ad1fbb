// Package bootstrap assembles the enhancement orchestrator from Config for
// the api and worker processes.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"moodboard/internal/adapter/memory"
	"moodboard/internal/adapter/repo"
	"moodboard/internal/domain"
	"moodboard/internal/enhance"
	"moodboard/internal/infra"
	"moodboard/internal/infra/credentials"
	"moodboard/internal/providers/image"
)

// Stores groups the capabilities the orchestrator and HTTP layer need.
type Stores struct {
	Items  domain.ItemStore
	Log    domain.EnhancementLog
	Ledger domain.CreditLedger
	Tasks  domain.TaskRecorder
	Queue  domain.TaskQueue
}

// PostgresStores backs every capability with the pg repositories.
func PostgresStores(sql infra.SQLExecutor) Stores {
	tasks := repo.NewTaskRepo(sql)
	return Stores{
		Items:  repo.NewItemRepo(sql),
		Log:    repo.NewEnhancementRepo(sql),
		Ledger: repo.NewCreditRepo(sql),
		Tasks:  tasks,
		Queue:  tasks,
	}
}

// MemoryStores backs every capability with one in-process store.
func MemoryStores(store *memory.Store) Stores {
	return Stores{Items: store, Log: store, Ledger: store, Tasks: store, Queue: store}
}

// KeySource resolves a provider key when the environment does not carry one.
type KeySource interface {
	Resolve(ctx context.Context, provider domain.ProviderID, explicit string) (string, error)
}

// Transports builds one HTTP transport per provider. Keys come from the
// environment first, then from keys when it is non-nil. A provider without a
// key is still wired; its submissions are rejected.
func Transports(ctx context.Context, cfg *infra.Config, keys KeySource, httpClient *http.Client, logger zerolog.Logger) (map[domain.ProviderID]domain.ProviderTransport, error) {
	nanoKey, err := resolveKey(ctx, keys, domain.ProviderNanoBanana, cfg.NanoBananaAPIKey)
	if err != nil {
		return nil, err
	}
	waveKey, err := resolveKey(ctx, keys, domain.ProviderSeedream, cfg.WaveSpeedAPIKey)
	if err != nil {
		return nil, err
	}
	for id, key := range map[domain.ProviderID]string{domain.ProviderNanoBanana: nanoKey, domain.ProviderSeedream: waveKey} {
		if key == "" {
			logger.Warn().Str("provider", string(id)).Msg("bootstrap: no api key, submissions will be rejected")
		}
	}

	return map[domain.ProviderID]domain.ProviderTransport{
		domain.ProviderNanoBanana: image.NewNanoBanana(image.Options{
			APIKey:         nanoKey,
			BaseURL:        cfg.NanoBananaBaseURL,
			CallbackURL:    cfg.NanoBananaCallbackURL,
			HTTPClient:     httpClient,
			Logger:         infra.Component(logger, "nanobanana"),
			RequestTimeout: cfg.ProviderTimeout,
		}),
		domain.ProviderSeedream: image.NewSeedream(image.Options{
			APIKey:         waveKey,
			BaseURL:        cfg.WaveSpeedBaseURL,
			HTTPClient:     httpClient,
			Logger:         infra.Component(logger, "seedream"),
			RequestTimeout: cfg.ProviderTimeout,
		}),
	}, nil
}

func resolveKey(ctx context.Context, keys KeySource, provider domain.ProviderID, explicit string) (string, error) {
	if keys == nil {
		return explicit, nil
	}
	key, err := keys.Resolve(ctx, provider, explicit)
	if err != nil {
		return "", fmt.Errorf("bootstrap: %s api key: %w", provider, err)
	}
	return key, nil
}

// Orchestrator builds the registry, credit gate and orchestrator.
func Orchestrator(cfg *infra.Config, stores Stores, transports map[domain.ProviderID]domain.ProviderTransport, logger zerolog.Logger) (*enhance.Orchestrator, *enhance.CreditGate, error) {
	reg, err := enhance.NewRegistry(cfg.DefaultEnhancementProvider)
	if err != nil {
		return nil, nil, fmt.Errorf("bootstrap: %w", err)
	}
	gate := enhance.NewCreditGate(stores.Ledger)
	orch, err := enhance.New(enhance.Options{
		Registry:   reg,
		Gate:       gate,
		Transports: transports,
		Items:      stores.Items,
		Log:        stores.Log,
		Tasks:      stores.Tasks,
		Poll: enhance.PollConfig{
			Interval:    cfg.EnhancementPollInterval,
			MaxAttempts: cfg.EnhancementMaxPollAttempts,
		},
		CompletedGrace:      cfg.EnhancementCompletedGrace,
		FailedGrace:         cfg.EnhancementFailedGrace,
		AllowPrivateSources: cfg.ImageSourceAllowPrivate,
		Logger:              infra.Component(logger, "enhance"),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("bootstrap: %w", err)
	}
	return orch, gate, nil
}

var _ KeySource = (*credentials.Store)(nil)
