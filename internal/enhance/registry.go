package enhance

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"moodboard/internal/domain"
)

// ProviderInfo is the static profile of an enhancement backend.
type ProviderInfo struct {
	ID                domain.ProviderID
	DisplayName       string
	Cost              int
	EstimatedDuration time.Duration
	Mode              domain.CompletionMode
}

var builtinProviders = map[domain.ProviderID]ProviderInfo{
	domain.ProviderNanoBanana: {
		ID:                domain.ProviderNanoBanana,
		DisplayName:       "Nanobanana (Fast)",
		Cost:              1,
		EstimatedDuration: 60 * time.Second,
		Mode:              domain.CompletionAsynchronous,
	},
	domain.ProviderSeedream: {
		ID:                domain.ProviderSeedream,
		DisplayName:       "Seedream (High Quality)",
		Cost:              2,
		EstimatedDuration: 5 * time.Second,
		Mode:              domain.CompletionSynchronous,
	},
}

// Registry is the read-only provider table.
type Registry struct {
	providers map[domain.ProviderID]ProviderInfo
	def       domain.ProviderID
}

// NewRegistry builds the registry with the given default provider. An unknown
// default is a configuration error and callers should abort startup on it.
func NewRegistry(defaultProvider string) (*Registry, error) {
	return newRegistry(builtinProviders, defaultProvider)
}

func newRegistry(table map[domain.ProviderID]ProviderInfo, defaultProvider string) (*Registry, error) {
	providers := make(map[domain.ProviderID]ProviderInfo, len(table))
	for id, info := range table {
		if info.Cost < 0 {
			return nil, fmt.Errorf("registry: provider %q has negative cost", id)
		}
		if info.Mode != domain.CompletionSynchronous && info.Mode != domain.CompletionAsynchronous {
			return nil, fmt.Errorf("registry: provider %q has invalid completion mode %q", id, info.Mode)
		}
		providers[id] = info
	}
	id, err := ParseProvider(defaultProvider)
	if err != nil {
		return nil, fmt.Errorf("registry: default provider: %w", err)
	}
	if _, ok := providers[id]; !ok {
		return nil, fmt.Errorf("registry: default provider %q: %w", id, domain.ErrUnknownProvider)
	}
	return &Registry{providers: providers, def: id}, nil
}

// ParseProvider converts loosely typed input into a provider id.
func ParseProvider(raw string) (domain.ProviderID, error) {
	id := domain.ProviderID(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := builtinProviders[id]; !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownProvider, raw)
	}
	return id, nil
}

// Default returns the process-wide default provider.
func (r *Registry) Default() ProviderInfo {
	return r.providers[r.def]
}

// Lookup returns the provider profile for id.
func (r *Registry) Lookup(id domain.ProviderID) (ProviderInfo, error) {
	info, ok := r.providers[id]
	if !ok {
		return ProviderInfo{}, fmt.Errorf("%w: %q", domain.ErrUnknownProvider, id)
	}
	return info, nil
}

// MustLookup is Lookup for ids known at compile time.
func (r *Registry) MustLookup(id domain.ProviderID) ProviderInfo {
	info, err := r.Lookup(id)
	if err != nil {
		panic(err)
	}
	return info
}

// Resolve picks the explicit provider, or the default when id is empty.
func (r *Registry) Resolve(id domain.ProviderID) (ProviderInfo, error) {
	if id == "" {
		return r.Default(), nil
	}
	return r.Lookup(id)
}

// All returns every provider sorted by id.
func (r *Registry) All() []ProviderInfo {
	out := make([]ProviderInfo, 0, len(r.providers))
	for _, info := range r.providers {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
