package jobs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gatherhub/guestsync/internal/constants"
	"gatherhub/guestsync/internal/metrics"
	"gatherhub/guestsync/internal/models/dtos"
	"gatherhub/guestsync/internal/models/entities"
	gormModels "gatherhub/guestsync/internal/models/gorm"
	"gatherhub/guestsync/internal/providers"
	"gatherhub/guestsync/internal/services"
)

// GuestStore is the narrow persistence surface the orchestrator writes to
type GuestStore interface {
	FindExistingGuestMemberIDs(ctx context.Context, eventID, locationID string, memberIDs []string) (map[string]bool, error)
	InsertGuestsSkipDuplicates(ctx context.Context, guests []entities.EventGuest) (int, error)
}

// EventStore is the event-side persistence surface
type EventStore interface {
	FindEligibleEventsForSync(ctx context.Context, configuredProviders []string) ([]dtos.SyncableEvent, error)
	FindByID(ctx context.Context, eventID string) (*gormModels.Event, error)
	UpdateLastGuestsSyncedAt(ctx context.Context, eventID string, syncedAt time.Time) error
}

// GuestMatcher resolves one page of external guests to directory members
type GuestMatcher interface {
	MatchGuests(ctx context.Context, guests []dtos.ExternalGuest) ([]dtos.MatchedGuest, error)
}

// ProviderResolver resolves provider-type tags to live clients
type ProviderResolver interface {
	GetProvider(providerType string) (providers.GuestProvider, error)
	ListConfiguredProviders() []string
}

// GuestSyncJob orchestrates one full event guest sync: provider fetch,
// matching, and idempotent persistence, page by page.
type GuestSyncJob struct {
	registry  ProviderResolver
	matcher   GuestMatcher
	guestRepo GuestStore
	eventRepo EventStore
	notifier  services.NotificationRefresher
	metrics   *metrics.MetricsRegistry
}

// NewGuestSyncJob creates a new guest sync orchestrator
func NewGuestSyncJob(
	registry ProviderResolver,
	matcher GuestMatcher,
	guestRepo GuestStore,
	eventRepo EventStore,
	notifier services.NotificationRefresher,
	metricsReg *metrics.MetricsRegistry,
) *GuestSyncJob {
	return &GuestSyncJob{
		registry:  registry,
		matcher:   matcher,
		guestRepo: guestRepo,
		eventRepo: eventRepo,
		notifier:  notifier,
		metrics:   metricsReg,
	}
}

// SyncEvent runs one event sync to completion. Any provider or
// persistence error aborts the whole sync and propagates to the caller;
// the last-synced timestamp is only written after every page succeeded,
// so a retried run re-fetches from page one and relies on the idempotent
// insert to avoid duplicates. Re-running against an unchanged guest list
// reports ProcessedCount 0.
func (j *GuestSyncJob) SyncEvent(ctx context.Context, job *dtos.SyncJob) (*dtos.SyncResult, error) {
	start := time.Now()
	log.Printf("[GuestSyncJob] Syncing guests for event %s (external: %s, provider: %s)",
		job.EventID, job.ExternalEventID, job.ProviderType)

	// The event may have vanished between enqueue and processing
	event, err := j.eventRepo.FindByID(ctx, job.EventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load event %s: %w", job.EventID, err)
	}
	if event == nil {
		return nil, &providers.ProviderError{
			Code:    constants.ErrCodeEventNotFound,
			Message: fmt.Sprintf("event %s no longer exists", job.EventID),
		}
	}

	provider, err := j.registry.GetProvider(job.ProviderType)
	if err != nil {
		return nil, err
	}

	processedCount := 0
	pageNum := 0

	totalFetched, err := provider.FetchGuestPages(ctx, job.ExternalEventID, func(guests []dtos.ExternalGuest) error {
		pageNum++
		inserted, err := j.processPage(ctx, job, guests)
		if err != nil {
			return fmt.Errorf("failed to process page %d: %w", pageNum, err)
		}
		processedCount += inserted
		return nil
	})
	if err != nil {
		j.observeFailure(job.ProviderType, err)
		return nil, err
	}

	if j.metrics != nil {
		j.metrics.GuestsFetchedTotal.WithLabelValues(job.ProviderType).Add(float64(totalFetched))
		j.metrics.SyncDuration.WithLabelValues(job.ProviderType).Observe(time.Since(start).Seconds())
	}

	// All pages persisted; now the sync counts as done
	if err := j.eventRepo.UpdateLastGuestsSyncedAt(ctx, job.EventID, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to update last-synced timestamp: %w", err)
	}

	// Best-effort: a missed refresh heals on the next successful sync
	if err := j.notifier.RefreshCandidatesForEvents(ctx, []string{job.EventID}); err != nil {
		log.Printf("[GuestSyncJob] Warning - notification refresh failed for event %s: %v", job.EventID, err)
	}

	log.Printf("[GuestSyncJob] Event %s completed in %s. Fetched: %d, Processed: %d",
		job.EventID, time.Since(start).Truncate(time.Millisecond), totalFetched, processedCount)

	return &dtos.SyncResult{
		EventID:            job.EventID,
		ProviderType:       job.ProviderType,
		TotalGuestsFetched: totalFetched,
		ProcessedCount:     processedCount,
	}, nil
}

// processPage matches one page and persists the not-yet-known guests.
// Returns the number of rows actually inserted.
func (j *GuestSyncJob) processPage(ctx context.Context, job *dtos.SyncJob, guests []dtos.ExternalGuest) (int, error) {
	matched, err := j.matcher.MatchGuests(ctx, guests)
	if err != nil {
		return 0, err
	}
	if len(matched) == 0 {
		return 0, nil
	}

	if j.metrics != nil {
		j.metrics.GuestsMatchedTotal.WithLabelValues(job.ProviderType).Add(float64(len(matched)))
	}

	memberIDs := make([]string, 0, len(matched))
	for _, m := range matched {
		memberIDs = append(memberIDs, m.MemberID)
	}

	existing, err := j.guestRepo.FindExistingGuestMemberIDs(ctx, job.EventID, job.LocationID, memberIDs)
	if err != nil {
		return 0, err
	}

	var rows []entities.EventGuest
	for _, m := range matched {
		if existing[m.MemberID] {
			continue
		}
		// Synced guests never carry host/speaker/sponsor roles
		rows = append(rows, entities.EventGuest{
			EventID:         job.EventID,
			LocationID:      job.LocationID,
			MemberID:        m.MemberID,
			TeamID:          m.TeamID,
			ExternalGuestID: m.Guest.ExternalGuestID,
		})
	}

	if len(rows) == 0 {
		return 0, nil
	}

	// The ON CONFLICT DO NOTHING insert covers the race where a second
	// sync run for the same event interleaved since the read above
	inserted, err := j.guestRepo.InsertGuestsSkipDuplicates(ctx, rows)
	if err != nil {
		return 0, err
	}

	if j.metrics != nil && inserted > 0 {
		j.metrics.GuestsInsertedTotal.WithLabelValues(job.ProviderType).Add(float64(inserted))
	}
	return inserted, nil
}

func (j *GuestSyncJob) observeFailure(providerType string, err error) {
	if j.metrics == nil {
		return
	}
	var provErr *providers.ProviderError
	if errors.As(err, &provErr) && provErr.Code == constants.ErrCodeRateLimited {
		j.metrics.RateLimitHitsTotal.WithLabelValues(providerType).Inc()
	}
}
