package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"gatherhub/guestsync/internal/metrics"
	"gatherhub/guestsync/internal/models/dtos"
)

// SyncQueue is the enqueue side of the queue transport
type SyncQueue interface {
	EnqueueSyncJob(ctx context.Context, streamName string, job *dtos.SyncJob, dedupWindow time.Duration) (bool, error)
}

// SyncScheduler periodically discovers syncable events and enqueues one
// sync job per event. Delivery is at-least-once: a failed enqueue is
// simply re-discovered on the next run, since eligibility is recomputed
// from persisted event state every time.
type SyncScheduler struct {
	enabled     bool
	eventRepo   EventStore
	registry    ProviderResolver
	queue       SyncQueue
	streamName  string
	dedupWindow time.Duration
	metrics     *metrics.MetricsRegistry
}

// NewSyncScheduler creates a new sync scheduler
func NewSyncScheduler(
	enabled bool,
	eventRepo EventStore,
	registry ProviderResolver,
	queue SyncQueue,
	streamName string,
	dedupWindow time.Duration,
	metricsReg *metrics.MetricsRegistry,
) *SyncScheduler {
	return &SyncScheduler{
		enabled:     enabled,
		eventRepo:   eventRepo,
		registry:    registry,
		queue:       queue,
		streamName:  streamName,
		dedupWindow: dedupWindow,
		metrics:     metricsReg,
	}
}

// Run executes one scheduling pass. A failure querying eligible events
// aborts the pass; a failure enqueuing one event is logged and the loop
// continues, so one bad event cannot starve the rest.
func (s *SyncScheduler) Run(ctx context.Context) error {
	if !s.enabled {
		log.Printf("[SyncScheduler] Guest sync disabled, skipping run")
		return nil
	}

	start := time.Now()

	configured := s.registry.ListConfiguredProviders()
	if len(configured) == 0 {
		log.Printf("[SyncScheduler] No providers configured, nothing to schedule")
		return nil
	}

	events, err := s.eventRepo.FindEligibleEventsForSync(ctx, configured)
	if err != nil {
		log.Printf("[SyncScheduler] Error fetching eligible events: %v", err)
		return fmt.Errorf("failed to fetch eligible events: %w", err)
	}

	if len(events) == 0 {
		log.Printf("[SyncScheduler] No eligible events found")
		return nil
	}

	enqueued := 0
	skipped := 0
	for _, event := range events {
		job := &dtos.SyncJob{
			EventID:         event.EventID,
			ExternalEventID: event.ExternalEventID,
			LocationID:      event.LocationID,
			ProviderType:    event.ProviderType,
		}

		sent, err := s.queue.EnqueueSyncJob(ctx, s.streamName, job, s.dedupWindow)
		if err != nil {
			log.Printf("[SyncScheduler] Error enqueuing event %s: %v", event.EventID, err)
			// Next run re-discovers the event, so keep going
			continue
		}
		if !sent {
			skipped++
			continue
		}

		if s.metrics != nil {
			s.metrics.SyncJobsEnqueuedTotal.WithLabelValues(event.ProviderType).Inc()
		}
		enqueued++
	}

	log.Printf("[SyncScheduler] Completed in %s. Eligible: %d, Enqueued: %d, Deduped: %d",
		time.Since(start).Truncate(time.Millisecond), len(events), enqueued, skipped)

	return nil
}

// RunScheduled runs scheduling passes on a fixed interval until the
// context is cancelled. The first pass runs immediately.
func (s *SyncScheduler) RunScheduled(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := s.Run(ctx); err != nil {
		log.Printf("[SyncScheduler] Error in initial run: %v", err)
	}

	for {
		select {
		case <-ticker.C:
			if err := s.Run(ctx); err != nil {
				log.Printf("[SyncScheduler] Error in scheduled run: %v", err)
			}
		case <-ctx.Done():
			log.Printf("[SyncScheduler] Shutting down scheduler")
			return
		}
	}
}
