package providers

import (
	"context"
	"fmt"

	"gatherhub/guestsync/internal/models/dtos"
)

// GuestPageFunc receives one normalized page of guests. Returning an
// error aborts the fetch; the provider never buffers the full list.
type GuestPageFunc func(guests []dtos.ExternalGuest) error

// GuestProvider defines the interface for external RSVP platforms.
// Adding a platform means implementing this and registering it with the
// ProviderRegistry; no caller changes.
type GuestProvider interface {
	// ProviderType returns the provider type identifier
	ProviderType() string

	// IsConfigured reports whether the provider has usable credentials
	IsConfigured() bool

	// FetchGuestPages streams all guests for one external event id, page
	// by page, calling fn for each page before fetching the next.
	// Returns the total number of entries fetched across all pages,
	// including entries later filtered out for missing emails.
	FetchGuestPages(ctx context.Context, externalEventID string, fn GuestPageFunc) (int, error)
}

// ProviderError represents a provider-specific error
type ProviderError struct {
	Code    string
	Message string
	Details string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
