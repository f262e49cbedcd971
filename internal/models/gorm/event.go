package gorm

import "time"

// Event is the persisted event state the sync pipeline reads, plus the
// last-synced timestamp it owns.
type Event struct {
	ID                 string     `gorm:"column:id;primaryKey;type:uuid"`
	LocationID         *string    `gorm:"column:location_id;type:uuid"`
	ExternalEventID    *string    `gorm:"column:external_event_id"`
	ProviderType       *string    `gorm:"column:provider_type"`
	Name               string     `gorm:"column:name"`
	EndDate            *time.Time `gorm:"column:end_date"`
	LastGuestsSyncedAt *time.Time `gorm:"column:last_guests_synced_at"`
	CreatedAt          time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time  `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt          *time.Time `gorm:"column:deleted_at"`
}

// TableName specifies the table name for GORM
func (Event) TableName() string {
	return "events"
}
