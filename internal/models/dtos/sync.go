package dtos

import "time"

// SyncableEvent is the ephemeral projection of an event that passed all
// eligibility predicates. Recomputed each scheduler run.
type SyncableEvent struct {
	EventID         string
	LocationID      string
	ExternalEventID string
	ProviderType    string
}

// SyncJob is the queue payload for one event guest sync. Created once per
// eligible event per scheduler run; consumed at least once; immutable.
type SyncJob struct {
	EventID         string `json:"event_id"`
	ExternalEventID string `json:"external_event_id"`
	LocationID      string `json:"location_id"`
	ProviderType    string `json:"provider_type"`
}

// ExternalGuest is one entry from a provider's guest list, normalized to
// the fields the pipeline cares about. Guests without a usable email are
// dropped before matching.
type ExternalGuest struct {
	ExternalGuestID string
	Email           string
	Name            string
	RegisteredAt    *time.Time
	Metadata        map[string]interface{}
}

// MatchedGuest pairs an external guest with the directory member it
// resolved to. Guests with no directory match never become MatchedGuests.
type MatchedGuest struct {
	Guest    ExternalGuest
	MemberID string
	TeamID   *string
}

// SyncResult summarizes one completed event sync. Not persisted.
type SyncResult struct {
	EventID            string `json:"event_id"`
	ProviderType       string `json:"provider_type"`
	TotalGuestsFetched int    `json:"total_guests_fetched"`
	ProcessedCount     int    `json:"processed_count"`
}
