package repositories

import (
	"context"
	"time"

	"gatherhub/guestsync/internal/models/dtos"
	gormModels "gatherhub/guestsync/internal/models/gorm"

	gormlib "gorm.io/gorm"
)

// EventRepository handles the event-side operations of the guest sync
// pipeline: eligibility discovery and the last-synced timestamp.
type EventRepository struct {
	db *gormlib.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *gormlib.DB) *EventRepository {
	return &EventRepository{db: db}
}

// FindEligibleEventsForSync returns every event that should be enqueued
// for a guest sync this run. Eligibility: provider type is one of the
// configured providers, external id present, location present, end date
// in the future, not soft-deleted.
func (r *EventRepository) FindEligibleEventsForSync(ctx context.Context, configuredProviders []string) ([]dtos.SyncableEvent, error) {
	if len(configuredProviders) == 0 {
		return nil, nil
	}

	var events []gormModels.Event
	err := r.db.WithContext(ctx).
		Where("provider_type IN ?", configuredProviders).
		Where("external_event_id IS NOT NULL AND external_event_id <> ''").
		Where("location_id IS NOT NULL").
		Where("end_date > ?", time.Now()).
		Where("deleted_at IS NULL").
		Find(&events).Error
	if err != nil {
		return nil, err
	}

	syncable := make([]dtos.SyncableEvent, 0, len(events))
	for _, e := range events {
		syncable = append(syncable, dtos.SyncableEvent{
			EventID:         e.ID,
			LocationID:      *e.LocationID,
			ExternalEventID: *e.ExternalEventID,
			ProviderType:    *e.ProviderType,
		})
	}
	return syncable, nil
}

// FindByID returns an event by id, or nil when it no longer exists
func (r *EventRepository) FindByID(ctx context.Context, eventID string) (*gormModels.Event, error) {
	var event gormModels.Event

	err := r.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", eventID).
		First(&event).Error
	if err != nil {
		if err == gormlib.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	return &event, nil
}

// UpdateLastGuestsSyncedAt records the completion time of a full,
// successful guest sync. Only called after every page has been persisted.
func (r *EventRepository) UpdateLastGuestsSyncedAt(ctx context.Context, eventID string, syncedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&gormModels.Event{}).
		Where("id = ?", eventID).
		Update("last_guests_synced_at", syncedAt).Error
}
