package entities

// Member is the slice of a directory member the matcher needs
type Member struct {
	ID    string `db:"id"`
	Email string `db:"email"`
}

// MemberTeam maps a member to their primary team
type MemberTeam struct {
	MemberID string `db:"member_id"`
	TeamID   string `db:"team_id"`
}
