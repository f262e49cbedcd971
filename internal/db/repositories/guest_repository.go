package repositories

import (
	"context"
	"fmt"
	"strings"

	"gatherhub/guestsync/internal/models/entities"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// GuestRepository handles event_guests table operations
type GuestRepository struct {
	db *sqlx.DB
}

// NewGuestRepository creates a new guest repository
func NewGuestRepository(db *sqlx.DB) *GuestRepository {
	return &GuestRepository{db: db}
}

// FindExistingGuestMemberIDs returns the subset of memberIDs that already
// have a guest row for this (event, location) pair. Single query
// regardless of page size.
func (r *GuestRepository) FindExistingGuestMemberIDs(ctx context.Context, eventID, locationID string, memberIDs []string) (map[string]bool, error) {
	existing := make(map[string]bool)
	if len(memberIDs) == 0 {
		return existing, nil
	}

	query, args, err := sqlx.In(`
		SELECT member_id
		FROM event_guests
		WHERE event_id = ? AND location_id = ? AND member_id IN (?);
	`, eventID, locationID, memberIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build existing-guests query: %w", err)
	}

	var ids []string
	if err := r.db.SelectContext(ctx, &ids, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to query existing guests: %w", err)
	}

	for _, id := range ids {
		existing[id] = true
	}
	return existing, nil
}

// InsertGuestsSkipDuplicates bulk-inserts guest rows, silently skipping
// any row whose (event_id, location_id, member_id) key already exists.
// Returns the number of rows actually inserted. The ON CONFLICT clause is
// the second idempotency layer: it covers two sync runs for the same
// event racing between the existence pre-check and this write.
func (r *GuestRepository) InsertGuestsSkipDuplicates(ctx context.Context, guests []entities.EventGuest) (int, error) {
	if len(guests) == 0 {
		return 0, nil
	}

	var (
		placeholders []string
		args         []interface{}
	)
	for _, g := range guests {
		id := g.ID
		if id == "" {
			id = uuid.NewString()
		}
		placeholders = append(placeholders, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			id,
			g.EventID,
			g.LocationID,
			g.MemberID,
			g.TeamID,
			g.ExternalGuestID,
			g.IsHost,
			g.IsSpeaker,
			g.IsSponsor,
			g.IsFeatured,
		)
	}

	query := fmt.Sprintf(`
		INSERT INTO event_guests (
			id, event_id, location_id, member_id, team_id,
			external_guest_id, is_host, is_speaker, is_sponsor, is_featured
		)
		VALUES %s
		ON CONFLICT (event_id, location_id, member_id) DO NOTHING;
	`, strings.Join(placeholders, ", "))

	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert guests: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted row count: %w", err)
	}
	return int(inserted), nil
}

// CountGuestsForEvent returns the number of guest rows for an event
func (r *GuestRepository) CountGuestsForEvent(ctx context.Context, eventID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		r.db.Rebind(`SELECT COUNT(*) FROM event_guests WHERE event_id = ?;`), eventID)
	if err != nil {
		return 0, fmt.Errorf("failed to count guests: %w", err)
	}
	return count, nil
}
