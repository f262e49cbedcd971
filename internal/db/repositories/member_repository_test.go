package repositories

import (
	"context"
	"testing"
)

func TestMemberRepository_FindMembersByEmails(t *testing.T) {
	db := setupGuestTestDB(t)
	repo := NewMemberRepository(db)
	ctx := context.Background()

	db.MustExec(`INSERT INTO members (id, email) VALUES
		('m1', 'Jane@X.com'),
		('m2', 'bob@y.com')`)

	members, err := repo.FindMembersByEmails(ctx, []string{"jane@x.com", "missing@z.com"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(members) != 1 {
		t.Fatalf("Expected 1 member, got %d", len(members))
	}

	member, ok := members["jane@x.com"]
	if !ok {
		t.Fatalf("Expected map keyed by lower-cased email, got %v", members)
	}
	if member.ID != "m1" {
		t.Errorf("Expected m1, got %s", member.ID)
	}
}

func TestMemberRepository_FindMembersByEmails_EmptyInput(t *testing.T) {
	db := setupGuestTestDB(t)
	repo := NewMemberRepository(db)

	members, err := repo.FindMembersByEmails(context.Background(), nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(members) != 0 {
		t.Errorf("Expected empty map, got %v", members)
	}
}

func TestMemberRepository_FindPrimaryTeamsByMemberIDs(t *testing.T) {
	db := setupGuestTestDB(t)
	repo := NewMemberRepository(db)
	ctx := context.Background()

	db.MustExec(`INSERT INTO team_members (member_id, team_id, is_primary) VALUES
		('m1', 't1', TRUE),
		('m1', 't2', FALSE),
		('m2', 't3', FALSE)`)

	teams, err := repo.FindPrimaryTeamsByMemberIDs(ctx, []string{"m1", "m2", "m3"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(teams) != 1 {
		t.Fatalf("Expected 1 primary team, got %d: %v", len(teams), teams)
	}
	if teams["m1"] != "t1" {
		t.Errorf("Expected t1 for m1, got %s", teams["m1"])
	}
	if _, ok := teams["m2"]; ok {
		t.Error("Expected no primary team for m2")
	}
}
