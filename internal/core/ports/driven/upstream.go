package driven

import "context"

// SportsDataClient is the resilient client for the live third-party
// sports-data API. All endpoints are read-only; implementations follow
// pagination transparently, retry transient failures with bounded
// backoff, and never retry indefinitely.
type SportsDataClient interface {
	// Seasons lists the organisation's seasons.
	Seasons(ctx context.Context) ([]Season, error)

	// Grades lists grades (divisions) for a season.
	Grades(ctx context.Context, seasonID string) ([]Grade, error)

	// Teams lists teams registered in a season.
	Teams(ctx context.Context, seasonID string) ([]TeamEntry, error)

	// Fixtures lists fixtures for a team.
	Fixtures(ctx context.Context, teamID string) ([]Fixture, error)

	// Ladder returns the ladder for a grade.
	Ladder(ctx context.Context, gradeID string) ([]LadderEntry, error)

	// Roster returns the player roster for a team.
	Roster(ctx context.Context, teamID string) ([]RosterMember, error)

	// SearchPlayers finds players by name across the organisation.
	SearchPlayers(ctx context.Context, name string) ([]Player, error)

	// PlayerStats returns recent performance for a player.
	PlayerStats(ctx context.Context, playerID string) (*PlayerStats, error)
}

// Season is a competition season.
type Season struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// Grade is a division within a season.
type Grade struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	SeasonID string `json:"seasonId"`
}

// TeamEntry is a team as registered upstream.
type TeamEntry struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	GradeID string `json:"gradeId"`
}

// Fixture is a scheduled or completed match.
type Fixture struct {
	ID       string `json:"id"`
	TeamID   string `json:"teamId"`
	Opponent string `json:"opponent"`
	Venue    string `json:"venue"`
	// Date is the match date in YYYY-MM-DD form.
	Date   string `json:"date"`
	Status string `json:"status"`
	Result string `json:"result,omitempty"`
}

// LadderEntry is one team's row on a grade ladder.
type LadderEntry struct {
	Position int    `json:"position"`
	TeamID   string `json:"teamId"`
	TeamName string `json:"teamName"`
	Played   int    `json:"played"`
	Won      int    `json:"won"`
	Lost     int    `json:"lost"`
	Points   int    `json:"points"`
}

// RosterMember is one player on a team roster. Email, Phone and Role
// are personally identifying and subject to privacy-mode redaction.
type RosterMember struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Role     string `json:"role,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// Player is a player search hit.
type Player struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	TeamID   string `json:"teamId"`
	TeamName string `json:"teamName"`
}

// PlayerStats is a player's recent performance summary.
type PlayerStats struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	// LastRuns is the runs scored in the most recent innings.
	LastRuns int `json:"lastRuns"`
	// LastMatchDate is the date of that innings in YYYY-MM-DD form.
	LastMatchDate string `json:"lastMatchDate"`
	SeasonRuns    int    `json:"seasonRuns"`
	Innings       int    `json:"innings"`
}
