package providers

import (
	"fmt"
	"time"

	"gatherhub/guestsync/internal/common"
	"gatherhub/guestsync/internal/constants"
)

// configuredProvidersCacheTTL bounds how stale the best-effort
// enumeration may be; GetProvider always checks live.
const configuredProvidersCacheTTL = 30 * time.Second

// ProviderRegistry maps provider-type tags to live GuestProvider
// instances. Built once at process start; providers are stateless behind
// the shared interface, so the registry is safe for concurrent readers.
type ProviderRegistry struct {
	providers map[string]GuestProvider
	cache     common.CacheInterface
}

// NewProviderRegistry creates a registry over the given providers
func NewProviderRegistry(cache common.CacheInterface, providers ...GuestProvider) *ProviderRegistry {
	m := make(map[string]GuestProvider, len(providers))
	for _, p := range providers {
		m[p.ProviderType()] = p
	}
	return &ProviderRegistry{providers: m, cache: cache}
}

// GetProvider resolves a provider-type tag to a configured client.
// Unknown types and unconfigured clients both fail fast.
func (r *ProviderRegistry) GetProvider(providerType string) (GuestProvider, error) {
	p, ok := r.providers[providerType]
	if !ok {
		return nil, &ProviderError{
			Code:    constants.ErrCodeProviderNotConfigured,
			Message: fmt.Sprintf("unknown provider type %q", providerType),
		}
	}

	if !p.IsConfigured() {
		return nil, &ProviderError{
			Code:    constants.ErrCodeProviderNotConfigured,
			Message: fmt.Sprintf("provider %q is missing credentials", providerType),
		}
	}

	return p, nil
}

// ListConfiguredProviders returns every type that currently resolves,
// swallowing per-type failures. Best-effort enumeration for the
// scheduler's eligibility query and the ops API, not the hot path.
func (r *ProviderRegistry) ListConfiguredProviders() []string {
	load := func() (any, error) {
		var types []string
		for providerType := range r.providers {
			if _, err := r.GetProvider(providerType); err != nil {
				continue
			}
			types = append(types, providerType)
		}
		return types, nil
	}

	if r.cache == nil {
		types, _ := load()
		return types.([]string)
	}

	val, err := r.cache.GetOrSet(constants.ConfiguredProvidersCacheKey, configuredProvidersCacheTTL, load)
	if err != nil || val == nil {
		return nil
	}
	return val.([]string)
}
