package services

import (
	"strings"

	"github.com/pavilion-labs/clubby/internal/core/domain"
)

// TeamResolver normalises free-text team mentions against the known
// roster of club teams. Matching is pure and case-insensitive over a
// static alias table loaded once at startup.
type TeamResolver struct {
	teams []domain.Team
}

// NewTeamResolver creates a resolver over the configured teams.
func NewTeamResolver(teams []domain.Team) *TeamResolver {
	return &TeamResolver{teams: teams}
}

// ResolveTeam maps a raw team mention to a canonical team ID.
// Unknown input returns ok=false, never an error; callers treat that
// as "ask upstream by name" rather than a failure.
func (r *TeamResolver) ResolveTeam(raw string) (string, bool) {
	needle := normaliseName(raw)
	if needle == "" {
		return "", false
	}

	for _, team := range r.teams {
		if normaliseName(team.Name) == needle {
			return team.ID, true
		}
		for _, alias := range team.Aliases {
			if normaliseName(alias) == needle {
				return team.ID, true
			}
		}
	}
	return "", false
}

// TeamName returns the canonical display name for a team ID.
func (r *TeamResolver) TeamName(id string) (string, bool) {
	for _, team := range r.teams {
		if team.ID == id {
			return team.Name, true
		}
	}
	return "", false
}

// Teams returns the configured team table.
func (r *TeamResolver) Teams() []domain.Team {
	return r.teams
}

// normaliseName lowercases and collapses whitespace for comparison.
func normaliseName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
