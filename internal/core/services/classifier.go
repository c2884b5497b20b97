package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/pavilion-labs/clubby/internal/core/domain"
	"github.com/pavilion-labs/clubby/internal/core/ports/driven"
	"github.com/pavilion-labs/clubby/internal/logger"
)

// intentRule detects one canonical intent and extracts its entities via
// named capture groups. Rules are evaluated in order; the first match
// wins, so earlier rules have higher priority.
type intentRule struct {
	intent  domain.Intent
	pattern *regexp.Regexp
}

// teamScoped lists intents whose handlers are narrowed by a team.
var teamScoped = map[domain.Intent]bool{
	domain.IntentFixturesList:   true,
	domain.IntentNextFixture:    true,
	domain.IntentLadderPosition: true,
	domain.IntentRosterList:     true,
}

// defaultRules is the ordered rule table. next_fixture precedes
// fixtures_list so "next game" questions are not swallowed by the
// broader fixtures pattern.
var defaultRules = []intentRule{
	{
		intent: domain.IntentPlayerTeam,
		pattern: regexp.MustCompile(
			`(?i)(?:which|what)\s+team\s+does\s+(?P<player_name>[\w'. -]+?)\s+play\b`),
	},
	{
		intent: domain.IntentPlayerLastRuns,
		pattern: regexp.MustCompile(
			`(?i)how\s+many\s+runs\s+did\s+(?P<player_name>[\w'. -]+?)\s+(?:score|make|get)\b`),
	},
	{
		intent: domain.IntentNextFixture,
		pattern: regexp.MustCompile(
			`(?i)\bnext\s+(?:game|match|fixture)\b(?:\s+(?:for|of)\s+(?P<team_name>[\w'. -]+?))?\s*\??$`),
	},
	{
		intent: domain.IntentFixturesList,
		pattern: regexp.MustCompile(
			`(?i)\b(?:fixtures?|schedule|upcoming\s+(?:games|matches))\b(?:\s+(?:for|of)\s+(?P<team_name>[\w'. -]+?))?\s*\??$`),
	},
	{
		intent: domain.IntentLadderPosition,
		pattern: regexp.MustCompile(
			`(?i)(?:where\s+(?:are|is)\s+(?P<team_name>[\w'. -]+?)\s+on\s+the\s+)?\b(?:ladder|standings)\b`),
	},
	{
		intent: domain.IntentRosterList,
		pattern: regexp.MustCompile(
			`(?i)\b(?:roster|squad|team\s+list|player\s+list)\b(?:\s+(?:for|of)\s+(?P<team_name>[\w'. -]+?))?\s*\??$`),
	},
}

// classifyPrompt asks the model for a compact structured payload
// restricted to the canonical intents.
const classifyPrompt = `Classify this sports-club question into exactly one intent from:
player_team, player_last_runs, fixtures_list, ladder_position, next_fixture, roster_list, general_query.

Return ONLY compact JSON of the form {"intent":"...","entities":{"player_name":"...","team_name":"..."}}.
Omit entity keys you cannot extract. No other text.

Question: %s`

// IntentClassifier is the hybrid rule-based + model-based classifier.
// Regex rules keep latency and cost near zero for the common case; the
// model is a controlled-vocabulary fallback, never a source of
// unbounded intents. Classify never returns an error.
type IntentClassifier struct {
	rules []intentRule
	llm   driven.LLMService
}

// NewIntentClassifier creates a classifier. The LLM service is
// optional; when nil, unmatched input maps straight to general_query.
func NewIntentClassifier(llm driven.LLMService) *IntentClassifier {
	return &IntentClassifier{
		rules: defaultRules,
		llm:   llm,
	}
}

// Classify resolves text to a canonical intent and entity map.
// The team hint fills in team_name for team-scoped intents when the
// rule did not capture one.
func (c *IntentClassifier) Classify(ctx context.Context, text, teamHint string) (domain.Intent, *domain.EntityMap) {
	trimmed := strings.TrimSpace(text)

	for _, rule := range c.rules {
		match := rule.pattern.FindStringSubmatch(trimmed)
		if match == nil {
			continue
		}

		entities := domain.NewEntityMap()
		for i, name := range rule.pattern.SubexpNames() {
			if name == "" || i >= len(match) || match[i] == "" {
				continue
			}
			entities.Set(name, strings.TrimSpace(match[i]))
		}
		c.applyHint(rule.intent, entities, teamHint)
		logger.Debug("Classifier: rule match intent=%s entities=%v", rule.intent, entities.AsMap())
		return rule.intent, entities
	}

	return c.llmFallback(ctx, trimmed, teamHint)
}

// llmFallback asks the model for a structured classification. Any
// failure (call error, malformed payload, out-of-enum intent) defaults
// to general_query with an empty entity map.
func (c *IntentClassifier) llmFallback(ctx context.Context, text, teamHint string) (domain.Intent, *domain.EntityMap) {
	if c.llm == nil {
		logger.Debug("Classifier: no rule match, LLM unavailable, defaulting to general_query")
		return domain.IntentGeneralQuery, domain.NewEntityMap()
	}

	raw, err := c.llm.Generate(ctx, fmt.Sprintf(classifyPrompt, text), driven.GenerateOptions{
		MaxTokens:   100,
		Temperature: 0.1,
	})
	if err != nil {
		logger.Warn("Classifier: LLM fallback failed: %v", err)
		return domain.IntentGeneralQuery, domain.NewEntityMap()
	}

	var payload struct {
		Intent   string            `json:"intent"`
		Entities map[string]string `json:"entities"`
	}
	if err := json.Unmarshal([]byte(stripFences(raw)), &payload); err != nil {
		logger.Warn("Classifier: unparseable LLM payload %q: %v", raw, err)
		return domain.IntentGeneralQuery, domain.NewEntityMap()
	}

	intent, ok := domain.ParseIntent(payload.Intent)
	if !ok {
		logger.Warn("Classifier: LLM returned out-of-enum intent %q", payload.Intent)
		return domain.IntentGeneralQuery, domain.NewEntityMap()
	}

	entities := domain.NewEntityMap()
	for _, key := range []string{domain.EntityPlayerName, domain.EntityTeamName} {
		if v, found := payload.Entities[key]; found && v != "" {
			entities.Set(key, v)
		}
	}
	c.applyHint(intent, entities, teamHint)
	logger.Debug("Classifier: LLM fallback intent=%s entities=%v", intent, entities.AsMap())
	return intent, entities
}

// applyHint fills team_name from the channel hint for team-scoped
// intents when no team was extracted.
func (c *IntentClassifier) applyHint(intent domain.Intent, entities *domain.EntityMap, teamHint string) {
	if teamHint == "" || !teamScoped[intent] {
		return
	}
	if _, ok := entities.Get(domain.EntityTeamName); !ok {
		entities.Set(domain.EntityTeamName, teamHint)
	}
}

// stripFences removes a markdown code fence wrapper if the model
// added one despite instructions.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
