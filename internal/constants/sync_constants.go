package constants

// Provider type identifiers
const (
	ProviderTypeLuma = "luma"
)

// Queue identifiers for the guest sync stream
const (
	GuestSyncStream        = "guest:sync"
	GuestSyncConsumerGroup = "guest-sync-workers"
)

// Cache key for the memoized configured-provider list
const ConfiguredProvidersCacheKey = "providers:configured"
