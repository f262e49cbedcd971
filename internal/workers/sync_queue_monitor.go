package workers

import (
	"context"
	"log"
	"time"

	"gatherhub/guestsync/internal/common"
	"gatherhub/guestsync/internal/metrics"
)

// SyncQueueMonitor periodically exports queue depth gauges so operators
// can see backlog and stuck messages without touching Redis directly.
type SyncQueueMonitor struct {
	queue      *common.SyncQueueService
	streamName string
	groupName  string
	metrics    *metrics.MetricsRegistry
}

// NewSyncQueueMonitor creates a new queue monitor
func NewSyncQueueMonitor(queue *common.SyncQueueService, streamName, groupName string, metricsReg *metrics.MetricsRegistry) *SyncQueueMonitor {
	return &SyncQueueMonitor{
		queue:      queue,
		streamName: streamName,
		groupName:  groupName,
		metrics:    metricsReg,
	}
}

// Start polls queue stats on the given interval until ctx is cancelled
func (m *SyncQueueMonitor) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[SyncQueueMonitor] Shutting down")
			return
		case <-ticker.C:
			m.report(ctx)
		}
	}
}

func (m *SyncQueueMonitor) report(ctx context.Context) {
	length, err := m.queue.QueueLength(ctx, m.streamName)
	if err != nil {
		log.Printf("[SyncQueueMonitor] Error reading queue length: %v", err)
		return
	}

	pending, err := m.queue.PendingCount(ctx, m.streamName, m.groupName)
	if err != nil {
		log.Printf("[SyncQueueMonitor] Error reading pending count: %v", err)
		return
	}

	if m.metrics != nil {
		m.metrics.QueueLength.Set(float64(length))
		m.metrics.QueuePending.Set(float64(pending))
	}

	if pending > 0 {
		log.Printf("[SyncQueueMonitor] Queue %s: length=%d pending=%d", m.streamName, length, pending)
	}
}
