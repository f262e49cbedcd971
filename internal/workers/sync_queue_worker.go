package workers

import (
	"context"
	"fmt"
	"log"
	"time"

	"gatherhub/guestsync/internal/metrics"
	"gatherhub/guestsync/internal/models/dtos"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// EventSyncer runs one event guest sync to completion
type EventSyncer interface {
	SyncEvent(ctx context.Context, job *dtos.SyncJob) (*dtos.SyncResult, error)
}

// SyncQueue is the consume side of the queue transport
type SyncQueue interface {
	CreateConsumerGroup(ctx context.Context, streamName, groupName string) error
	DequeueSyncJob(ctx context.Context, streamName, groupName, consumerName string, blockTime time.Duration) (*dtos.SyncJob, string, error)
	AckSyncJob(ctx context.Context, streamName, groupName, messageID string) error
	ClaimStaleSyncJobs(ctx context.Context, streamName, groupName, consumerName string, minIdleTime time.Duration) ([]*dtos.SyncJob, []string, error)
}

// SyncQueueWorker consumes sync jobs from the stream and delegates each
// to the orchestrator. A job that errors is NOT acknowledged: it stays
// pending until its idle time passes the visibility timeout and the
// claim loop redelivers it. Correctness under that redelivery rests
// entirely on the orchestrator's idempotent persistence.
type SyncQueueWorker struct {
	workerID          string
	queue             SyncQueue
	syncer            EventSyncer
	streamName        string
	groupName         string
	visibilityTimeout time.Duration
	metrics           *metrics.MetricsRegistry
}

// NewSyncQueueWorker creates a new sync queue worker pool
func NewSyncQueueWorker(
	queue SyncQueue,
	syncer EventSyncer,
	streamName string,
	groupName string,
	visibilityTimeout time.Duration,
	metricsReg *metrics.MetricsRegistry,
) *SyncQueueWorker {
	return &SyncQueueWorker{
		workerID:          uuid.NewString()[:8],
		queue:             queue,
		syncer:            syncer,
		streamName:        streamName,
		groupName:         groupName,
		visibilityTimeout: visibilityTimeout,
		metrics:           metricsReg,
	}
}

// Start runs numWorkers consumer loops plus the stale-claim loop and
// blocks until the context is cancelled.
func (w *SyncQueueWorker) Start(ctx context.Context, numWorkers int) error {
	log.Printf("[SyncQueueWorker] Starting %d workers with ID prefix: %s", numWorkers, w.workerID)

	if err := w.queue.CreateConsumerGroup(ctx, w.streamName, w.groupName); err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	for i := 0; i < numWorkers; i++ {
		consumerName := fmt.Sprintf("%s-worker-%d", w.workerID, i)
		g.Go(func() error {
			w.consumeLoop(ctx, consumerName)
			return nil
		})
	}

	g.Go(func() error {
		w.claimLoop(ctx)
		return nil
	})

	err := g.Wait()
	log.Printf("[SyncQueueWorker] All workers stopped")
	return err
}

// consumeLoop continuously processes sync jobs for one consumer name
func (w *SyncQueueWorker) consumeLoop(ctx context.Context, consumerName string) {
	log.Printf("[%s] Started processing queue: %s", consumerName, w.streamName)

	for {
		select {
		case <-ctx.Done():
			log.Printf("[%s] Shutting down", consumerName)
			return
		default:
			job, messageID, err := w.queue.DequeueSyncJob(ctx, w.streamName, w.groupName, consumerName, 5*time.Second)
			if err != nil {
				if job == nil && messageID != "" {
					// Malformed payload: ack it away so it cannot poison the queue
					log.Printf("[%s] Dropping unparseable message %s: %v", consumerName, messageID, err)
					w.ack(ctx, consumerName, messageID)
					continue
				}
				log.Printf("[%s] Error dequeuing: %v", consumerName, err)
				time.Sleep(1 * time.Second) // Back off on transport errors
				continue
			}

			if job == nil {
				// No messages available (timeout)
				continue
			}

			w.handleJob(ctx, consumerName, job, messageID)
		}
	}
}

// handleJob runs one sync job and acks only on success, so the queue's
// redelivery mechanism retries failures.
func (w *SyncQueueWorker) handleJob(ctx context.Context, consumerName string, job *dtos.SyncJob, messageID string) {
	result, err := w.syncer.SyncEvent(ctx, job)
	if err != nil {
		log.Printf("[%s] Error syncing event %s: %v", consumerName, job.EventID, err)
		if w.metrics != nil {
			w.metrics.SyncJobsFailedTotal.WithLabelValues(job.ProviderType).Inc()
		}
		// No ack: the message stays pending and is redelivered once its
		// idle time exceeds the visibility timeout
		return
	}

	log.Printf("[%s] Synced event %s: fetched=%d processed=%d",
		consumerName, result.EventID, result.TotalGuestsFetched, result.ProcessedCount)
	if w.metrics != nil {
		w.metrics.SyncJobsSucceededTotal.Inc()
	}

	w.ack(ctx, consumerName, messageID)
}

// claimLoop periodically claims messages abandoned by dead or stuck
// consumers and reprocesses them.
func (w *SyncQueueWorker) claimLoop(ctx context.Context) {
	consumerName := fmt.Sprintf("%s-claimer", w.workerID)
	ticker := time.NewTicker(w.visibilityTimeout)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			jobs, messageIDs, err := w.queue.ClaimStaleSyncJobs(ctx, w.streamName, w.groupName, consumerName, w.visibilityTimeout)
			if err != nil {
				log.Printf("[%s] Error claiming stale messages: %v", consumerName, err)
				continue
			}
			if len(jobs) > 0 {
				log.Printf("[%s] Claimed %d stale sync jobs", consumerName, len(jobs))
			}
			for i, job := range jobs {
				w.handleJob(ctx, consumerName, job, messageIDs[i])
			}
		}
	}
}

func (w *SyncQueueWorker) ack(ctx context.Context, consumerName, messageID string) {
	if err := w.queue.AckSyncJob(ctx, w.streamName, w.groupName, messageID); err != nil {
		log.Printf("[%s] Error acknowledging message %s: %v", consumerName, messageID, err)
	}
}
