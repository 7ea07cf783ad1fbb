package credentials

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"moodboard/internal/domain"
	"moodboard/internal/infra"
	"moodboard/internal/sqlinline"
)

// Token names in integration_tokens. Seedream runs on a WaveSpeed account.
const (
	ProviderNanoBanana = "nanobanana"
	ProviderWaveSpeed  = "wavespeed"
)

// Store reads and writes provider API keys kept in the database.
type Store struct {
	sql infra.SQLExecutor
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

// TokenName maps an enhancement provider to the account its key belongs to.
func TokenName(provider domain.ProviderID) (string, error) {
	switch provider {
	case domain.ProviderNanoBanana:
		return ProviderNanoBanana, nil
	case domain.ProviderSeedream:
		return ProviderWaveSpeed, nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownProvider, provider)
	}
}

// Token returns the stored key, or "" when none is stored.
func (s *Store) Token(ctx context.Context, name string) (string, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QSelectIntegrationToken, name)
	var token string
	if err := row.Scan(&token); err != nil {
		if infra.IsNoRows(err) {
			return "", nil
		}
		return "", fmt.Errorf("credentials: load %s: %w", name, err)
	}
	return strings.TrimSpace(token), nil
}

// Resolve prefers an explicit key (usually from the environment) and falls
// back to the stored one.
func (s *Store) Resolve(ctx context.Context, provider domain.ProviderID, explicit string) (string, error) {
	if key := strings.TrimSpace(explicit); key != "" {
		return key, nil
	}
	name, err := TokenName(provider)
	if err != nil {
		return "", err
	}
	return s.Token(ctx, name)
}

// SetToken upserts the key for a provider account.
func (s *Store) SetToken(ctx context.Context, name, token string, props map[string]any) error {
	name = strings.TrimSpace(strings.ToLower(name))
	if name != ProviderNanoBanana && name != ProviderWaveSpeed {
		return fmt.Errorf("%w: token %q", domain.ErrUnknownProvider, name)
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("%s api key is required", name)
	}
	if props == nil {
		props = map[string]any{}
	}
	raw, err := json.Marshal(props)
	if err != nil {
		return err
	}
	if _, err := s.sql.Exec(ctx, sqlinline.QUpsertIntegrationToken, name, token, raw); err != nil {
		return fmt.Errorf("credentials: store %s: %w", name, err)
	}
	return nil
}
