package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gatherhub/guestsync/internal/config"
	"gatherhub/guestsync/internal/constants"
	"gatherhub/guestsync/internal/models/dtos"

	"golang.org/x/time/rate"
)

// LumaProvider implements GuestProvider for the Luma guest-list API
type LumaProvider struct {
	BaseURL string
	APIKey  string
	Client  *http.Client

	PageSize       int
	MaxPageRetries int
	RetryBackoff   time.Duration

	limiter *rate.Limiter
}

// NewLumaProvider creates a new Luma provider from config
func NewLumaProvider(cfg *config.Config) *LumaProvider {
	return &LumaProvider{
		BaseURL: cfg.LumaBaseURL,
		APIKey:  cfg.LumaAPIKey,
		Client: &http.Client{
			Timeout: cfg.LumaHTTPTimeout,
		},
		PageSize:       cfg.LumaPageSize,
		MaxPageRetries: cfg.LumaMaxPageRetries,
		RetryBackoff:   cfg.LumaRateLimitBackoff,
		// Luma allows ~5 requests per second per key
		limiter: rate.NewLimiter(rate.Limit(5), 5),
	}
}

// ProviderType returns the provider type identifier
func (p *LumaProvider) ProviderType() string {
	return constants.ProviderTypeLuma
}

// IsConfigured reports whether the provider has usable credentials
func (p *LumaProvider) IsConfigured() bool {
	return p.APIKey != ""
}

// FetchGuestPages streams all approved guests for one external event id.
// Each page is normalized and handed to fn before the next cursor is
// fetched, so memory stays bounded by page size. There is no mid-fetch
// checkpoint: a retried sync starts again from the first page.
func (p *LumaProvider) FetchGuestPages(ctx context.Context, externalEventID string, fn GuestPageFunc) (int, error) {
	if !p.IsConfigured() {
		return 0, &ProviderError{
			Code:    constants.ErrCodeProviderNotConfigured,
			Message: constants.GetErrorMessage(constants.ErrCodeProviderNotConfigured),
		}
	}

	totalFetched := 0
	cursor := ""

	for {
		page, err := p.fetchPage(ctx, externalEventID, cursor)
		if err != nil {
			return totalFetched, err
		}

		totalFetched += len(page.Entries)

		if err := fn(p.normalizeEntries(page.Entries)); err != nil {
			return totalFetched, err
		}

		if !page.HasMore {
			break
		}
		cursor = page.NextCursor
	}

	return totalFetched, nil
}

// fetchPage fetches a single page, retrying the same cursor with a fixed
// backoff when rate-limited, up to MaxPageRetries retries.
func (p *LumaProvider) fetchPage(ctx context.Context, externalEventID, cursor string) (*lumaGuestListResponse, error) {
	retries := 0

	for {
		page, err := p.doGetGuests(ctx, externalEventID, cursor)
		if err == nil {
			return page, nil
		}

		var provErr *ProviderError
		if !errors.As(err, &provErr) || provErr.Code != constants.ErrCodeRateLimited {
			return nil, err
		}

		if retries >= p.MaxPageRetries {
			return nil, err
		}
		retries++

		select {
		case <-time.After(p.RetryBackoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (p *LumaProvider) doGetGuests(ctx context.Context, externalEventID, cursor string) (*lumaGuestListResponse, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("event_api_id", externalEventID)
	q.Set("approval_status", "approved")
	if p.PageSize > 0 {
		q.Set("pagination_limit", fmt.Sprintf("%d", p.PageSize))
	}
	if cursor != "" {
		q.Set("pagination_cursor", cursor)
	}

	endpoint := fmt.Sprintf("%s/event/get-guests?%s", p.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: "Failed to create request",
			Err:     err,
		}
	}

	req.Header.Set("x-luma-api-key", p.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: constants.GetErrorMessage(constants.ErrCodeNetworkError),
			Err:     err,
		}
	}
	defer resp.Body.Close()

	if err := p.buildHTTPError(resp); err != nil {
		return nil, err
	}

	var page lumaGuestListResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeInvalidDataFormat,
			Message: "Failed to decode guest list response",
			Err:     err,
		}
	}

	return &page, nil
}

// buildHTTPError creates the appropriate error for non-2xx responses
func (p *LumaProvider) buildHTTPError(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	bodyBytes, _ := io.ReadAll(resp.Body)
	body := string(bodyBytes)

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return &ProviderError{
			Code:    constants.ErrCodeRateLimited,
			Message: constants.GetErrorMessage(constants.ErrCodeRateLimited),
			Details: body,
		}
	case http.StatusUnauthorized, http.StatusForbidden:
		return &ProviderError{
			Code:    constants.ErrCodeInvalidAPIKey,
			Message: constants.GetErrorMessage(constants.ErrCodeInvalidAPIKey),
			Details: body,
		}
	default:
		return &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: fmt.Sprintf("HTTP %d from Luma guest list", resp.StatusCode),
			Details: body,
		}
	}
}

// normalizeEntries maps raw Luma entries to ExternalGuests, silently
// dropping entries without a usable email.
func (p *LumaProvider) normalizeEntries(entries []lumaGuestEntry) []dtos.ExternalGuest {
	guests := make([]dtos.ExternalGuest, 0, len(entries))
	for _, e := range entries {
		email := strings.TrimSpace(e.Guest.Email)
		if email == "" {
			continue
		}

		guest := dtos.ExternalGuest{
			ExternalGuestID: e.Guest.APIID,
			Email:           email,
			Name:            e.Guest.Name,
			Metadata: map[string]interface{}{
				"approval_status": e.Guest.ApprovalStatus,
			},
		}
		if e.Guest.RegisteredAt != "" {
			if t, err := time.Parse(time.RFC3339, e.Guest.RegisteredAt); err == nil {
				guest.RegisteredAt = &t
			}
		}

		guests = append(guests, guest)
	}
	return guests
}

// Luma API response structures

type lumaGuestEntry struct {
	APIID string    `json:"api_id"`
	Guest lumaGuest `json:"guest"`
}

type lumaGuest struct {
	APIID          string `json:"api_id"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	ApprovalStatus string `json:"approval_status"`
	RegisteredAt   string `json:"registered_at"`
}

type lumaGuestListResponse struct {
	Entries    []lumaGuestEntry `json:"entries"`
	NextCursor string           `json:"next_cursor,omitempty"`
	HasMore    bool             `json:"has_more"`
}
