package repositories

import (
	"context"
	"fmt"
	"strings"

	"gatherhub/guestsync/internal/models/entities"

	"github.com/jmoiron/sqlx"
)

// MemberRepository is the member-directory lookup used by guest matching.
// Both lookups are bulk: one query per sync page, never one per guest.
type MemberRepository struct {
	db *sqlx.DB
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(db *sqlx.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// FindMembersByEmails resolves normalized emails to members. Matching is
// case-insensitive; the returned map is keyed by lower-cased email.
func (r *MemberRepository) FindMembersByEmails(ctx context.Context, emails []string) (map[string]entities.Member, error) {
	members := make(map[string]entities.Member)
	if len(emails) == 0 {
		return members, nil
	}

	lowered := make([]string, 0, len(emails))
	for _, e := range emails {
		lowered = append(lowered, strings.ToLower(strings.TrimSpace(e)))
	}

	query, args, err := sqlx.In(`
		SELECT id, email
		FROM members
		WHERE LOWER(email) IN (?);
	`, lowered)
	if err != nil {
		return nil, fmt.Errorf("failed to build member lookup query: %w", err)
	}

	var rows []entities.Member
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to query members by email: %w", err)
	}

	for _, m := range rows {
		members[strings.ToLower(m.Email)] = m
	}
	return members, nil
}

// FindPrimaryTeamsByMemberIDs returns each member's primary team, keyed
// by member id. Members without a primary team are simply absent.
func (r *MemberRepository) FindPrimaryTeamsByMemberIDs(ctx context.Context, memberIDs []string) (map[string]string, error) {
	teams := make(map[string]string)
	if len(memberIDs) == 0 {
		return teams, nil
	}

	query, args, err := sqlx.In(`
		SELECT member_id, team_id
		FROM team_members
		WHERE is_primary = ? AND member_id IN (?);
	`, true, memberIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build primary-team query: %w", err)
	}

	var rows []entities.MemberTeam
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to query primary teams: %w", err)
	}

	for _, t := range rows {
		teams[t.MemberID] = t.TeamID
	}
	return teams, nil
}
