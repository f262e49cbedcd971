package repositories

import (
	"context"
	"testing"
	"time"

	gormModels "gatherhub/guestsync/internal/models/gorm"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Setup test database
func setupEventTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&gormModels.Event{}); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	return db
}

func strPtr(s string) *string        { return &s }
func timePtr(t time.Time) *time.Time { return &t }

func seedEvent(t *testing.T, db *gorm.DB, event *gormModels.Event) {
	t.Helper()
	if err := db.Create(event).Error; err != nil {
		t.Fatalf("Failed to seed event: %v", err)
	}
}

func TestEventRepository_FindEligibleEventsForSync(t *testing.T) {
	db := setupEventTestDB(t)
	repo := NewEventRepository(db)
	ctx := context.Background()

	future := timePtr(time.Now().Add(24 * time.Hour))
	past := timePtr(time.Now().Add(-24 * time.Hour))

	seedEvent(t, db, &gormModels.Event{
		ID: "eligible", Name: "Eligible",
		ProviderType: strPtr("luma"), ExternalEventID: strPtr("ext-1"),
		LocationID: strPtr("loc-1"), EndDate: future,
	})
	seedEvent(t, db, &gormModels.Event{
		ID: "past", Name: "Already over",
		ProviderType: strPtr("luma"), ExternalEventID: strPtr("ext-2"),
		LocationID: strPtr("loc-1"), EndDate: past,
	})
	seedEvent(t, db, &gormModels.Event{
		ID: "no-external-id", Name: "Manual event",
		ProviderType: strPtr("luma"), ExternalEventID: strPtr(""),
		LocationID: strPtr("loc-1"), EndDate: future,
	})
	seedEvent(t, db, &gormModels.Event{
		ID: "no-location", Name: "Virtual event",
		ProviderType: strPtr("luma"), ExternalEventID: strPtr("ext-3"),
		EndDate: future,
	})
	seedEvent(t, db, &gormModels.Event{
		ID: "wrong-provider", Name: "Eventbrite event",
		ProviderType: strPtr("eventbrite"), ExternalEventID: strPtr("ext-4"),
		LocationID: strPtr("loc-1"), EndDate: future,
	})
	seedEvent(t, db, &gormModels.Event{
		ID: "deleted", Name: "Deleted",
		ProviderType: strPtr("luma"), ExternalEventID: strPtr("ext-5"),
		LocationID: strPtr("loc-1"), EndDate: future,
		DeletedAt: timePtr(time.Now()),
	})

	events, err := repo.FindEligibleEventsForSync(ctx, []string{"luma"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(events) != 1 {
		t.Fatalf("Expected 1 eligible event, got %d: %+v", len(events), events)
	}
	if events[0].EventID != "eligible" {
		t.Errorf("Expected event 'eligible', got %s", events[0].EventID)
	}
	if events[0].ExternalEventID != "ext-1" || events[0].LocationID != "loc-1" || events[0].ProviderType != "luma" {
		t.Errorf("Unexpected projection: %+v", events[0])
	}
}

func TestEventRepository_FindEligibleEventsForSync_NoConfiguredProviders(t *testing.T) {
	db := setupEventTestDB(t)
	repo := NewEventRepository(db)

	events, err := repo.FindEligibleEventsForSync(context.Background(), nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if events != nil {
		t.Errorf("Expected nil without configured providers, got %v", events)
	}
}

func TestEventRepository_FindByID(t *testing.T) {
	db := setupEventTestDB(t)
	repo := NewEventRepository(db)
	ctx := context.Background()

	seedEvent(t, db, &gormModels.Event{
		ID: "evt-1", Name: "Meetup",
		ProviderType: strPtr("luma"), ExternalEventID: strPtr("ext-1"),
		LocationID: strPtr("loc-1"),
	})

	event, err := repo.FindByID(ctx, "evt-1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if event == nil {
		t.Fatal("Expected event, got nil")
	}
	if event.Name != "Meetup" {
		t.Errorf("Expected name Meetup, got %s", event.Name)
	}
}

func TestEventRepository_FindByID_Missing(t *testing.T) {
	db := setupEventTestDB(t)
	repo := NewEventRepository(db)

	event, err := repo.FindByID(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Expected missing event to be a clean nil, got %v", err)
	}
	if event != nil {
		t.Errorf("Expected nil, got %+v", event)
	}
}

func TestEventRepository_FindByID_SoftDeleted(t *testing.T) {
	db := setupEventTestDB(t)
	repo := NewEventRepository(db)
	ctx := context.Background()

	seedEvent(t, db, &gormModels.Event{
		ID: "evt-1", Name: "Gone",
		DeletedAt: timePtr(time.Now()),
	})

	event, err := repo.FindByID(ctx, "evt-1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if event != nil {
		t.Error("Expected soft-deleted event to be invisible")
	}
}

func TestEventRepository_UpdateLastGuestsSyncedAt(t *testing.T) {
	db := setupEventTestDB(t)
	repo := NewEventRepository(db)
	ctx := context.Background()

	seedEvent(t, db, &gormModels.Event{ID: "evt-1", Name: "Meetup"})

	syncedAt := time.Now().Truncate(time.Second)
	if err := repo.UpdateLastGuestsSyncedAt(ctx, "evt-1", syncedAt); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	event, err := repo.FindByID(ctx, "evt-1")
	if err != nil || event == nil {
		t.Fatalf("Failed to reload event: %v", err)
	}
	if event.LastGuestsSyncedAt == nil {
		t.Fatal("Expected last-synced timestamp to be set")
	}
	if !event.LastGuestsSyncedAt.Equal(syncedAt) {
		t.Errorf("Expected %v, got %v", syncedAt, event.LastGuestsSyncedAt)
	}
}
