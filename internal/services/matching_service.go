package services

import (
	"context"
	"fmt"
	"strings"

	"gatherhub/guestsync/internal/models/dtos"
	"gatherhub/guestsync/internal/models/entities"
)

// MemberDirectory is the member-directory collaborator the matcher
// queries. Both lookups are bulk and case-insensitive on email.
type MemberDirectory interface {
	FindMembersByEmails(ctx context.Context, emails []string) (map[string]entities.Member, error)
	FindPrimaryTeamsByMemberIDs(ctx context.Context, memberIDs []string) (map[string]string, error)
}

// MatchingService resolves external guests to directory members
type MatchingService struct {
	directory MemberDirectory
}

// NewMatchingService creates a new matching service
func NewMatchingService(directory MemberDirectory) *MatchingService {
	return &MatchingService{directory: directory}
}

// MatchGuests resolves one page of external guests against the member
// directory in exactly two round-trips: one bulk email lookup, one bulk
// primary-team lookup. Guests with no match are dropped; that is an
// expected branch, not an error. Output preserves the relative order of
// the matched guests.
func (s *MatchingService) MatchGuests(ctx context.Context, guests []dtos.ExternalGuest) ([]dtos.MatchedGuest, error) {
	emails := make([]string, 0, len(guests))
	for _, g := range guests {
		email := NormalizeEmail(g.Email)
		if email == "" {
			continue
		}
		emails = append(emails, email)
	}

	if len(emails) == 0 {
		return nil, nil
	}

	members, err := s.directory.FindMembersByEmails(ctx, emails)
	if err != nil {
		return nil, fmt.Errorf("failed to look up members by email: %w", err)
	}

	memberIDs := make([]string, 0, len(members))
	for _, m := range members {
		memberIDs = append(memberIDs, m.ID)
	}

	teams, err := s.directory.FindPrimaryTeamsByMemberIDs(ctx, memberIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to look up primary teams: %w", err)
	}

	// Re-walk the original page so matched guests keep their order
	matched := make([]dtos.MatchedGuest, 0, len(members))
	for _, g := range guests {
		email := NormalizeEmail(g.Email)
		if email == "" {
			continue
		}

		member, ok := members[email]
		if !ok {
			continue
		}

		mg := dtos.MatchedGuest{
			Guest:    g,
			MemberID: member.ID,
		}
		if teamID, ok := teams[member.ID]; ok {
			mg.TeamID = &teamID
		}
		matched = append(matched, mg)
	}

	return matched, nil
}

// NormalizeEmail lower-cases and trims an email for matching; returns ""
// for unusable values.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
