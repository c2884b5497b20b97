package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pavilion-labs/clubby/internal/core/domain"
	"github.com/pavilion-labs/clubby/internal/core/ports/driven"
	"github.com/pavilion-labs/clubby/internal/logger"
)

// retrievalK is how many candidates each handler asks the index for.
const retrievalK = 5

// handleGeneralQuery queries the index with the raw text and no filter,
// then summarises retrieved snippets. Zero results short-circuit to the
// fixed insufficient-information answer without an LLM call.
func (r *Router) handleGeneralQuery(ctx context.Context, text string) (string, bool, error) {
	docs := r.queryDocs(ctx, text, nil, retrievalK)
	if len(docs) == 0 {
		return insufficientAnswer, false, nil
	}

	snippets := make([]string, len(docs))
	for i, doc := range docs {
		snippets[i] = doc.Text
	}

	if r.llm != nil {
		summary, err := r.llm.Summarise(ctx, text, snippets)
		if err == nil && summary != "" {
			return summary, true, nil
		}
		// Quota exhaustion or any other LLM failure degrades to the
		// template rendering below, not to an error.
		logger.Warn("Summarise failed, using template answer: %v", err)
	}

	return "Here's what I found:\n" + strings.Join(snippets, "\n"), true, nil
}

// handlePlayerTeam answers "which team does X play for".
func (r *Router) handlePlayerTeam(ctx context.Context, entities *domain.EntityMap) (string, bool, error) {
	player, ok := entities.Get(domain.EntityPlayerName)
	if !ok || player == "" {
		// Required entity missing is a handled state, not a failure.
		return "Which player did you mean? Try asking with their full name.", false, nil
	}

	docs := r.queryDocs(ctx, player, map[string]string{domain.FilterType: domain.DocTypeRoster}, retrievalK)
	for _, doc := range docs {
		if !containsFold(doc.Text, player) {
			continue
		}
		teamName, _ := r.resolver.TeamName(doc.Metadata.TeamID)
		if teamName == "" {
			teamName = doc.Metadata.TeamID
		}
		return fmt.Sprintf("%s plays for %s.", player, teamName), true, nil
	}

	// Not in the index: ask the live API by name.
	if r.upstream == nil {
		return insufficientAnswer, false, nil
	}
	players, err := r.upstream.SearchPlayers(ctx, player)
	if err != nil {
		return "", false, fmt.Errorf("player search: %w", err)
	}
	if len(players) == 0 {
		return fmt.Sprintf("I couldn't find a player named %s.", player), false, nil
	}
	return fmt.Sprintf("%s plays for %s.", players[0].Name, players[0].TeamName), false, nil
}

// handlePlayerLastRuns answers "how many runs did X score".
func (r *Router) handlePlayerLastRuns(ctx context.Context, entities *domain.EntityMap) (string, bool, error) {
	player, ok := entities.Get(domain.EntityPlayerName)
	if !ok || player == "" {
		return "Which player did you mean? Try asking with their full name.", false, nil
	}

	docs := r.queryDocs(ctx, player, map[string]string{domain.FilterType: domain.DocTypeStats}, retrievalK)
	for _, doc := range docs {
		if containsFold(doc.Text, player) && r.fresh(doc.Metadata.Date) {
			return doc.Text, true, nil
		}
	}

	if r.upstream == nil {
		return insufficientAnswer, false, nil
	}
	players, err := r.upstream.SearchPlayers(ctx, player)
	if err != nil {
		return "", false, fmt.Errorf("player search: %w", err)
	}
	if len(players) == 0 {
		return fmt.Sprintf("I couldn't find a player named %s.", player), false, nil
	}
	stats, err := r.upstream.PlayerStats(ctx, players[0].ID)
	if err != nil {
		return "", false, fmt.Errorf("player stats: %w", err)
	}
	return fmt.Sprintf("%s scored %d runs in their last innings (%s).",
		stats.Name, stats.LastRuns, stats.LastMatchDate), false, nil
}

// handleFixturesList answers "fixtures for X".
func (r *Router) handleFixturesList(
	ctx context.Context, entities *domain.EntityMap, query domain.Query,
) (string, bool, error) {
	teamID, teamName, err := r.resolveTeam(ctx, entities, query)
	if err != nil {
		return "", false, err
	}
	if teamID == "" {
		return "Which team did you mean? I don't recognise that team name.", false, nil
	}

	filters := map[string]string{
		domain.FilterType:   domain.DocTypeFixture,
		domain.FilterTeamID: teamID,
	}
	docs := r.queryDocs(ctx, query.Text, filters, retrievalK)
	if len(docs) > 0 && r.anyFresh(docs) {
		lines := make([]string, len(docs))
		for i, doc := range docs {
			lines[i] = doc.Text
		}
		return fmt.Sprintf("Fixtures for %s:\n%s", teamName, strings.Join(lines, "\n")), true, nil
	}

	// Empty or stale: build the answer from the live API instead. No
	// upstream configured is a quiet deployment state, not a fault.
	if r.upstream == nil {
		return insufficientAnswer, false, nil
	}
	fixtures, err := r.upstreamFixtures(ctx, teamID)
	if err != nil {
		return "", false, err
	}
	if len(fixtures) == 0 {
		return fmt.Sprintf("No fixtures found for %s.", teamName), false, nil
	}
	lines := make([]string, len(fixtures))
	for i, f := range fixtures {
		lines[i] = formatFixture(f)
	}
	return fmt.Sprintf("Fixtures for %s:\n%s", teamName, strings.Join(lines, "\n")), false, nil
}

// handleNextFixture answers "when is the next game".
func (r *Router) handleNextFixture(
	ctx context.Context, entities *domain.EntityMap, query domain.Query,
) (string, bool, error) {
	teamID, teamName, err := r.resolveTeam(ctx, entities, query)
	if err != nil {
		return "", false, err
	}
	if teamID == "" {
		return "Which team did you mean? I don't recognise that team name.", false, nil
	}

	today := r.now().Format("2006-01-02")

	filters := map[string]string{
		domain.FilterType:   domain.DocTypeFixture,
		domain.FilterTeamID: teamID,
	}
	docs := r.queryDocs(ctx, query.Text, filters, retrievalK)
	if len(docs) > 0 && r.anyFresh(docs) {
		// Earliest upcoming fixture by metadata date.
		sort.SliceStable(docs, func(i, j int) bool {
			return docs[i].Metadata.Date < docs[j].Metadata.Date
		})
		for _, doc := range docs {
			if doc.Metadata.Date >= today {
				return fmt.Sprintf("Next game for %s: %s", teamName, doc.Text), true, nil
			}
		}
	}

	if r.upstream == nil {
		return insufficientAnswer, false, nil
	}
	fixtures, err := r.upstreamFixtures(ctx, teamID)
	if err != nil {
		return "", false, err
	}
	sort.SliceStable(fixtures, func(i, j int) bool { return fixtures[i].Date < fixtures[j].Date })
	for _, f := range fixtures {
		if f.Date >= today {
			return fmt.Sprintf("Next game for %s: %s", teamName, formatFixture(f)), false, nil
		}
	}
	return fmt.Sprintf("No upcoming games found for %s.", teamName), false, nil
}

// handleLadderPosition answers "where are X on the ladder".
func (r *Router) handleLadderPosition(
	ctx context.Context, entities *domain.EntityMap, query domain.Query,
) (string, bool, error) {
	teamID, teamName, err := r.resolveTeam(ctx, entities, query)
	if err != nil {
		return "", false, err
	}

	filters := map[string]string{domain.FilterType: domain.DocTypeLadder}
	if teamID != "" {
		filters[domain.FilterTeamID] = teamID
	}
	docs := r.queryDocs(ctx, query.Text, filters, retrievalK)
	if len(docs) > 0 && r.anyFresh(docs) {
		lines := make([]string, len(docs))
		for i, doc := range docs {
			lines[i] = doc.Text
		}
		return strings.Join(lines, "\n"), true, nil
	}

	if teamID == "" {
		return "Which team did you mean? I don't recognise that team name.", false, nil
	}
	if r.upstream == nil {
		return insufficientAnswer, false, nil
	}
	entry, err := r.upstreamLadderEntry(ctx, teamID)
	if err != nil {
		return "", false, err
	}
	if entry == nil {
		return fmt.Sprintf("%s is not on a ladder right now.", teamName), false, nil
	}
	return fmt.Sprintf("%s is in position %d (%d points from %d games).",
		teamName, entry.Position, entry.Points, entry.Played), false, nil
}

// handleRosterList answers "who is on the roster for X".
func (r *Router) handleRosterList(
	ctx context.Context, entities *domain.EntityMap, query domain.Query,
) (string, bool, error) {
	teamID, teamName, err := r.resolveTeam(ctx, entities, query)
	if err != nil {
		return "", false, err
	}
	if teamID == "" {
		return "Which team did you mean? I don't recognise that team name.", false, nil
	}

	filters := map[string]string{
		domain.FilterType:   domain.DocTypeRoster,
		domain.FilterTeamID: teamID,
	}
	docs := r.queryDocs(ctx, query.Text, filters, retrievalK)
	if len(docs) > 0 {
		lines := make([]string, len(docs))
		for i, doc := range docs {
			lines[i] = doc.Text
		}
		return fmt.Sprintf("Roster for %s:\n%s", teamName, strings.Join(lines, "\n")), true, nil
	}

	if r.upstream == nil {
		return insufficientAnswer, false, nil
	}
	members, err := r.upstream.Roster(ctx, teamID)
	if err != nil {
		return "", false, fmt.Errorf("roster: %w", err)
	}
	if len(members) == 0 {
		return fmt.Sprintf("No roster found for %s.", teamName), false, nil
	}
	lines := make([]string, len(members))
	for i, m := range members {
		lines[i] = r.redactor.FormatRosterMember(RosterLine{
			Name: m.Name, Role: m.Role, Email: m.Email, Phone: m.Phone,
		})
	}
	return fmt.Sprintf("Roster for %s:\n%s", teamName, strings.Join(lines, "\n")), false, nil
}

// --- shared retrieval helpers ---

// queryDocs runs a vector query and hydrates the resulting IDs.
// Retrieval failures are logged and surface as an empty result set;
// the caller decides whether to fall back or answer "insufficient".
func (r *Router) queryDocs(ctx context.Context, text string, filters map[string]string, k int) []domain.Document {
	if r.vector == nil {
		return nil
	}
	ids, err := r.vector.Query(ctx, text, filters, k)
	if err != nil {
		logger.Warn("Vector query failed: %v", err)
		return nil
	}
	docs := make([]domain.Document, 0, len(ids))
	for _, id := range ids {
		doc, err := r.lookup.Get(ctx, id)
		if err != nil {
			// Document removed between query and hydration, skip it.
			continue
		}
		docs = append(docs, *doc)
	}
	return docs
}

// resolveTeam maps the team_name entity (or the query hint) to a team
// ID and display name, trying the static alias table first and the
// live API second. An unknown team returns empty values, not an error.
func (r *Router) resolveTeam(
	ctx context.Context, entities *domain.EntityMap, query domain.Query,
) (string, string, error) {
	raw, _ := entities.Get(domain.EntityTeamName)
	if raw == "" {
		raw = query.TeamHint
	}
	if raw == "" {
		return "", "", nil
	}

	if id, ok := r.resolver.ResolveTeam(raw); ok {
		name, _ := r.resolver.TeamName(id)
		return id, name, nil
	}

	// Unknown locally: ask upstream by name.
	if r.upstream == nil {
		return "", "", nil
	}
	seasons, err := r.upstream.Seasons(ctx)
	if err != nil {
		return "", "", fmt.Errorf("seasons: %w", err)
	}
	for _, season := range seasons {
		teams, err := r.upstream.Teams(ctx, season.ID)
		if err != nil {
			return "", "", fmt.Errorf("teams for season %s: %w", season.ID, err)
		}
		for _, team := range teams {
			if normaliseName(team.Name) == normaliseName(raw) {
				return team.ID, team.Name, nil
			}
		}
	}
	return "", "", nil
}

// upstreamFixtures fetches fixtures from the live API.
func (r *Router) upstreamFixtures(ctx context.Context, teamID string) ([]driven.Fixture, error) {
	if r.upstream == nil {
		return nil, domain.ErrUpstreamUnavailable
	}
	fixtures, err := r.upstream.Fixtures(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("fixtures: %w", err)
	}
	return fixtures, nil
}

// upstreamLadderEntry finds the team's ladder row via its grade.
func (r *Router) upstreamLadderEntry(ctx context.Context, teamID string) (*driven.LadderEntry, error) {
	if r.upstream == nil {
		return nil, domain.ErrUpstreamUnavailable
	}
	seasons, err := r.upstream.Seasons(ctx)
	if err != nil {
		return nil, fmt.Errorf("seasons: %w", err)
	}
	for _, season := range seasons {
		teams, err := r.upstream.Teams(ctx, season.ID)
		if err != nil {
			return nil, fmt.Errorf("teams for season %s: %w", season.ID, err)
		}
		for _, team := range teams {
			if team.ID != teamID {
				continue
			}
			ladder, err := r.upstream.Ladder(ctx, team.GradeID)
			if err != nil {
				return nil, fmt.Errorf("ladder for grade %s: %w", team.GradeID, err)
			}
			for i := range ladder {
				if ladder[i].TeamID == teamID {
					return &ladder[i], nil
				}
			}
		}
	}
	return nil, nil
}

// fresh reports whether a YYYY-MM-DD date falls within the freshness
// window. Missing or unparseable dates count as fresh, so sparsely
// tagged documents do not trigger spurious upstream calls.
func (r *Router) fresh(date string) bool {
	if date == "" {
		return true
	}
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return true
	}
	return t.After(r.now().Add(-r.freshness))
}

// anyFresh reports whether at least one document is fresh.
func (r *Router) anyFresh(docs []domain.Document) bool {
	for _, doc := range docs {
		if r.fresh(doc.Metadata.Date) {
			return true
		}
	}
	return false
}

// formatFixture renders one fixture line.
func formatFixture(f driven.Fixture) string {
	line := fmt.Sprintf("%s vs %s at %s", f.Date, f.Opponent, f.Venue)
	if f.Result != "" {
		line += " (" + f.Result + ")"
	}
	return line
}

// containsFold reports whether s contains substr, ignoring case.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
