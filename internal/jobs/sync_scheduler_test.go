package jobs

import (
	"context"
	"fmt"
	"testing"
	"time"

	"gatherhub/guestsync/internal/models/dtos"
	gormModels "gatherhub/guestsync/internal/models/gorm"
)

// fakeEligibleStore serves a fixed eligible-event list
type fakeEligibleStore struct {
	events  []dtos.SyncableEvent
	listErr error

	// records which provider list the query saw
	queriedProviders []string
}

func (f *fakeEligibleStore) FindEligibleEventsForSync(ctx context.Context, configuredProviders []string) ([]dtos.SyncableEvent, error) {
	f.queriedProviders = configuredProviders
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.events, nil
}

func (f *fakeEligibleStore) FindByID(ctx context.Context, eventID string) (*gormModels.Event, error) {
	return nil, nil
}

func (f *fakeEligibleStore) UpdateLastGuestsSyncedAt(ctx context.Context, eventID string, syncedAt time.Time) error {
	return nil
}

// fakeEnqueueQueue records enqueued jobs and can fail or dedup per event
type fakeEnqueueQueue struct {
	enqueued   []*dtos.SyncJob
	failFor    map[string]error
	dedupFor   map[string]bool
	seenStream string
}

func (f *fakeEnqueueQueue) EnqueueSyncJob(ctx context.Context, streamName string, job *dtos.SyncJob, dedupWindow time.Duration) (bool, error) {
	f.seenStream = streamName
	if err, ok := f.failFor[job.EventID]; ok {
		return false, err
	}
	if f.dedupFor[job.EventID] {
		return false, nil
	}
	f.enqueued = append(f.enqueued, job)
	return true, nil
}

func eligible(id string) dtos.SyncableEvent {
	return dtos.SyncableEvent{
		EventID:         id,
		LocationID:      "loc-1",
		ExternalEventID: "ext-" + id,
		ProviderType:    "luma",
	}
}

func TestSyncScheduler_Run_EnqueuesEligibleEvents(t *testing.T) {
	store := &fakeEligibleStore{events: []dtos.SyncableEvent{eligible("evt-1"), eligible("evt-2")}}
	queue := &fakeEnqueueQueue{}
	resolver := &fakeResolver{provider: &fakeSyncProvider{providerType: "luma"}}

	scheduler := NewSyncScheduler(true, store, resolver, queue, "guest:sync", 5*time.Minute, nil)

	if err := scheduler.Run(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(queue.enqueued) != 2 {
		t.Fatalf("Expected 2 jobs enqueued, got %d", len(queue.enqueued))
	}
	if queue.seenStream != "guest:sync" {
		t.Errorf("Expected stream guest:sync, got %s", queue.seenStream)
	}
	if queue.enqueued[0].ExternalEventID != "ext-evt-1" {
		t.Errorf("Expected job to carry external id, got %s", queue.enqueued[0].ExternalEventID)
	}
	if len(store.queriedProviders) != 1 || store.queriedProviders[0] != "luma" {
		t.Errorf("Expected eligibility query scoped to configured providers, got %v", store.queriedProviders)
	}
}

func TestSyncScheduler_Run_DisabledIsNoOp(t *testing.T) {
	store := &fakeEligibleStore{events: []dtos.SyncableEvent{eligible("evt-1")}}
	queue := &fakeEnqueueQueue{}
	resolver := &fakeResolver{provider: &fakeSyncProvider{providerType: "luma"}}

	scheduler := NewSyncScheduler(false, store, resolver, queue, "guest:sync", 5*time.Minute, nil)

	if err := scheduler.Run(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(queue.enqueued) != 0 {
		t.Errorf("Expected no jobs when disabled, got %d", len(queue.enqueued))
	}
	if store.queriedProviders != nil {
		t.Error("Expected no eligibility query when disabled")
	}
}

func TestSyncScheduler_Run_NoConfiguredProviders(t *testing.T) {
	store := &fakeEligibleStore{events: []dtos.SyncableEvent{eligible("evt-1")}}
	queue := &fakeEnqueueQueue{}

	scheduler := NewSyncScheduler(true, store, &fakeResolver{}, queue, "guest:sync", 5*time.Minute, nil)

	if err := scheduler.Run(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(queue.enqueued) != 0 {
		t.Errorf("Expected no jobs without configured providers, got %d", len(queue.enqueued))
	}
}

func TestSyncScheduler_Run_ContinuesPastEnqueueFailure(t *testing.T) {
	store := &fakeEligibleStore{events: []dtos.SyncableEvent{
		eligible("evt-1"), eligible("evt-2"), eligible("evt-3"),
	}}
	queue := &fakeEnqueueQueue{failFor: map[string]error{"evt-2": fmt.Errorf("redis down")}}
	resolver := &fakeResolver{provider: &fakeSyncProvider{providerType: "luma"}}

	scheduler := NewSyncScheduler(true, store, resolver, queue, "guest:sync", 5*time.Minute, nil)

	if err := scheduler.Run(context.Background()); err != nil {
		t.Fatalf("Expected pass to survive a per-event failure, got %v", err)
	}
	if len(queue.enqueued) != 2 {
		t.Fatalf("Expected 2 jobs enqueued, got %d", len(queue.enqueued))
	}
	if queue.enqueued[0].EventID != "evt-1" || queue.enqueued[1].EventID != "evt-3" {
		t.Errorf("Expected evt-1 and evt-3, got %s and %s",
			queue.enqueued[0].EventID, queue.enqueued[1].EventID)
	}
}

func TestSyncScheduler_Run_DedupedJobsNotCounted(t *testing.T) {
	store := &fakeEligibleStore{events: []dtos.SyncableEvent{eligible("evt-1"), eligible("evt-2")}}
	queue := &fakeEnqueueQueue{dedupFor: map[string]bool{"evt-1": true}}
	resolver := &fakeResolver{provider: &fakeSyncProvider{providerType: "luma"}}

	scheduler := NewSyncScheduler(true, store, resolver, queue, "guest:sync", 5*time.Minute, nil)

	if err := scheduler.Run(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(queue.enqueued) != 1 || queue.enqueued[0].EventID != "evt-2" {
		t.Errorf("Expected only evt-2 enqueued, got %v", queue.enqueued)
	}
}

func TestSyncScheduler_Run_EligibilityQueryFailureAborts(t *testing.T) {
	store := &fakeEligibleStore{listErr: fmt.Errorf("database unavailable")}
	queue := &fakeEnqueueQueue{}
	resolver := &fakeResolver{provider: &fakeSyncProvider{providerType: "luma"}}

	scheduler := NewSyncScheduler(true, store, resolver, queue, "guest:sync", 5*time.Minute, nil)

	if err := scheduler.Run(context.Background()); err == nil {
		t.Fatal("Expected eligibility query failure to abort the pass")
	}
	if len(queue.enqueued) != 0 {
		t.Errorf("Expected no jobs after aborted pass, got %d", len(queue.enqueued))
	}
}
