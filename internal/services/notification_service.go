package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"gatherhub/guestsync/internal/logging"
)

// NotificationRefresher recomputes downstream notification candidates
// for events whose guest lists changed.
type NotificationRefresher interface {
	RefreshCandidatesForEvents(ctx context.Context, eventIDs []string) error
}

// NotificationService calls the internal notifications service to
// refresh candidates after a successful sync. The refresh is best-effort
// from the pipeline's point of view: the caller decides whether failures
// fail the sync (they do not, see the orchestrator).
type NotificationService struct {
	RefreshURL string
	Client     *http.Client
}

var _ NotificationRefresher = (*NotificationService)(nil)

// NewNotificationService creates a new notification refresher client
func NewNotificationService(refreshURL string) *NotificationService {
	return &NotificationService{
		RefreshURL: refreshURL,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type refreshRequest struct {
	EventIDs []string `json:"event_ids"`
}

// RefreshCandidatesForEvents posts the changed event ids to the
// notifications service. An unconfigured URL is a logged no-op so local
// and test environments work without the downstream service.
func (s *NotificationService) RefreshCandidatesForEvents(ctx context.Context, eventIDs []string) error {
	if len(eventIDs) == 0 {
		return nil
	}

	if s.RefreshURL == "" {
		logging.Debug("Notification refresh skipped, no URL configured", "event_count", len(eventIDs))
		return nil
	}

	payload, err := json.Marshal(refreshRequest{EventIDs: eventIDs})
	if err != nil {
		return fmt.Errorf("failed to marshal refresh request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.RefreshURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call notification refresh: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("notification refresh returned HTTP %d: %s", resp.StatusCode, string(body))
	}

	return nil
}
