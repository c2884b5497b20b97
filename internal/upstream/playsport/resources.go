package playsport

import (
	"context"
	"fmt"
	"net/url"

	"github.com/pavilion-labs/clubby/internal/core/ports/driven"
)

// Seasons lists the organisation's seasons.
func (c *Client) Seasons(ctx context.Context) ([]driven.Season, error) {
	return listAll[driven.Season](ctx, c, "/seasons", nil)
}

// Grades lists grades (divisions) for a season.
func (c *Client) Grades(ctx context.Context, seasonID string) ([]driven.Grade, error) {
	path := fmt.Sprintf("/seasons/%s/grades", url.PathEscape(seasonID))
	return listAll[driven.Grade](ctx, c, path, nil)
}

// Teams lists teams registered in a season.
func (c *Client) Teams(ctx context.Context, seasonID string) ([]driven.TeamEntry, error) {
	path := fmt.Sprintf("/seasons/%s/teams", url.PathEscape(seasonID))
	return listAll[driven.TeamEntry](ctx, c, path, nil)
}

// Fixtures lists fixtures for a team.
func (c *Client) Fixtures(ctx context.Context, teamID string) ([]driven.Fixture, error) {
	path := fmt.Sprintf("/teams/%s/fixtures", url.PathEscape(teamID))
	return listAll[driven.Fixture](ctx, c, path, nil)
}

// Ladder returns the ladder for a grade.
func (c *Client) Ladder(ctx context.Context, gradeID string) ([]driven.LadderEntry, error) {
	path := fmt.Sprintf("/grades/%s/ladder", url.PathEscape(gradeID))
	return listAll[driven.LadderEntry](ctx, c, path, nil)
}

// Roster returns the player roster for a team.
func (c *Client) Roster(ctx context.Context, teamID string) ([]driven.RosterMember, error) {
	path := fmt.Sprintf("/teams/%s/roster", url.PathEscape(teamID))
	return listAll[driven.RosterMember](ctx, c, path, nil)
}

// SearchPlayers finds players by name across the organisation.
func (c *Client) SearchPlayers(ctx context.Context, name string) ([]driven.Player, error) {
	params := url.Values{}
	params.Set("name", name)
	return listAll[driven.Player](ctx, c, "/players", params)
}

// PlayerStats returns recent performance for a player.
func (c *Client) PlayerStats(ctx context.Context, playerID string) (*driven.PlayerStats, error) {
	path := fmt.Sprintf("/players/%s/stats", url.PathEscape(playerID))

	var envelope struct {
		Data driven.PlayerStats `json:"data"`
	}
	if err := c.get(ctx, path, nil, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Data, nil
}
