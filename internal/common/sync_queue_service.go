package common

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gatherhub/guestsync/internal/models/dtos"

	"github.com/redis/go-redis/v9"
)

// SyncQueueService provides the guest-sync work queue on Redis Streams.
// Delivery is at-least-once: messages the scheduler enqueues are consumed
// through a consumer group, acked on success, and reclaimed by another
// consumer once their pending idle time exceeds the visibility timeout.
type SyncQueueService struct {
	client *redis.Client
}

// NewSyncQueueService creates a new sync queue service
func NewSyncQueueService(client *redis.Client) *SyncQueueService {
	return &SyncQueueService{client: client}
}

// EnqueueSyncJob adds one sync job to the stream. The dedup key collapses
// near-simultaneous duplicate sends for the same event inside the window;
// it deliberately includes the window bucket so each scheduler run still
// produces a distinct message. Returns false when the job was suppressed
// as a duplicate.
func (s *SyncQueueService) EnqueueSyncJob(ctx context.Context, streamName string, job *dtos.SyncJob, dedupWindow time.Duration) (bool, error) {
	if dedupWindow > 0 {
		bucket := time.Now().UnixNano() / int64(dedupWindow)
		dedupKey := fmt.Sprintf("%s:dedup:%s:%d", streamName, job.EventID, bucket)

		set, err := s.client.SetNX(ctx, dedupKey, "1", dedupWindow).Result()
		if err != nil {
			return false, fmt.Errorf("failed to set dedup key: %w", err)
		}
		if !set {
			return false, nil
		}
	}

	data, err := json.Marshal(job)
	if err != nil {
		return false, fmt.Errorf("failed to marshal sync job: %w", err)
	}

	// XADD stream * data <json>
	args := &redis.XAddArgs{
		Stream: streamName,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}

	if _, err := s.client.XAdd(ctx, args).Result(); err != nil {
		return false, fmt.Errorf("failed to add to stream: %w", err)
	}

	return true, nil
}

// DequeueSyncJob reads one sync job via the consumer group.
// Returns (nil, "", nil) when no message arrived within blockTime.
func (s *SyncQueueService) DequeueSyncJob(ctx context.Context, streamName, groupName, consumerName string, blockTime time.Duration) (*dtos.SyncJob, string, error) {
	// XREADGROUP GROUP group consumer BLOCK ms COUNT 1 STREAMS stream >
	args := &redis.XReadGroupArgs{
		Group:    groupName,
		Consumer: consumerName,
		Streams:  []string{streamName, ">"},
		Count:    1,
		Block:    blockTime,
	}

	streams, err := s.client.XReadGroup(ctx, args).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, "", nil
		}
		return nil, "", fmt.Errorf("failed to read from stream: %w", err)
	}

	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return nil, "", nil
	}

	msg := streams[0].Messages[0]
	job, err := parseJobMessage(msg)
	if err != nil {
		return nil, msg.ID, err
	}
	return job, msg.ID, nil
}

// AckSyncJob acknowledges successful processing of a message
func (s *SyncQueueService) AckSyncJob(ctx context.Context, streamName, groupName, messageID string) error {
	return s.client.XAck(ctx, streamName, groupName, messageID).Err()
}

// CreateConsumerGroup creates a consumer group for the stream if it doesn't exist
func (s *SyncQueueService) CreateConsumerGroup(ctx context.Context, streamName, groupName string) error {
	// XGROUP CREATE stream group 0 MKSTREAM
	err := s.client.XGroupCreateMkStream(ctx, streamName, groupName, "0").Err()
	if err != nil && err.Error() == "BUSYGROUP Consumer Group name already exists" {
		return nil
	}
	return err
}

// ClaimStaleSyncJobs claims messages whose pending idle time exceeds
// minIdleTime — the redelivery half of the visibility-timeout contract.
// An event sync that outlives the timeout may therefore run concurrently
// with its redelivered copy; the idempotent persistence layer tolerates
// that.
func (s *SyncQueueService) ClaimStaleSyncJobs(ctx context.Context, streamName, groupName, consumerName string, minIdleTime time.Duration) ([]*dtos.SyncJob, []string, error) {
	pending, err := s.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: streamName,
		Group:  groupName,
		Start:  "-",
		End:    "+",
		Count:  100,
	}).Result()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get pending messages: %w", err)
	}

	var staleIDs []string
	for _, p := range pending {
		if p.Idle >= minIdleTime {
			staleIDs = append(staleIDs, p.ID)
		}
	}

	if len(staleIDs) == 0 {
		return nil, nil, nil
	}

	messages, err := s.client.XClaim(ctx, &redis.XClaimArgs{
		Stream:   streamName,
		Group:    groupName,
		Consumer: consumerName,
		MinIdle:  minIdleTime,
		Messages: staleIDs,
	}).Result()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to claim stale messages: %w", err)
	}

	var jobs []*dtos.SyncJob
	var messageIDs []string
	for _, msg := range messages {
		job, err := parseJobMessage(msg)
		if err != nil {
			// Unparseable claimed message: ack it away so it cannot wedge the queue
			s.client.XAck(ctx, streamName, groupName, msg.ID)
			continue
		}
		jobs = append(jobs, job)
		messageIDs = append(messageIDs, msg.ID)
	}

	return jobs, messageIDs, nil
}

// QueueLength returns the number of messages in the stream
func (s *SyncQueueService) QueueLength(ctx context.Context, streamName string) (int64, error) {
	length, err := s.client.XLen(ctx, streamName).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get queue length: %w", err)
	}
	return length, nil
}

// PendingCount returns the number of delivered-but-unacked messages
func (s *SyncQueueService) PendingCount(ctx context.Context, streamName, groupName string) (int64, error) {
	pending, err := s.client.XPending(ctx, streamName, groupName).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get pending count: %w", err)
	}
	return pending.Count, nil
}

// TrimStream keeps only the most recent maxLen messages
func (s *SyncQueueService) TrimStream(ctx context.Context, streamName string, maxLen int64) error {
	return s.client.XTrimMaxLen(ctx, streamName, maxLen).Err()
}

func parseJobMessage(msg redis.XMessage) (*dtos.SyncJob, error) {
	dataStr, ok := msg.Values["data"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid message format: data field missing")
	}

	var job dtos.SyncJob
	if err := json.Unmarshal([]byte(dataStr), &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sync job: %w", err)
	}
	return &job, nil
}
