package entities

import "time"

// EventGuest is a persisted guest row, uniquely keyed by
// (event_id, location_id, member_id). The sync pipeline never sets the
// role flags; they stay false unless an admin flips them elsewhere.
type EventGuest struct {
	ID              string    `db:"id"`
	EventID         string    `db:"event_id"`
	LocationID      string    `db:"location_id"`
	MemberID        string    `db:"member_id"`
	TeamID          *string   `db:"team_id"`
	ExternalGuestID string    `db:"external_guest_id"`
	IsHost          bool      `db:"is_host"`
	IsSpeaker       bool      `db:"is_speaker"`
	IsSponsor       bool      `db:"is_sponsor"`
	IsFeatured      bool      `db:"is_featured"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}
