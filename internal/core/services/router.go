package services

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/google/uuid"

	"github.com/pavilion-labs/clubby/internal/core/domain"
	"github.com/pavilion-labs/clubby/internal/core/ports/driven"
	"github.com/pavilion-labs/clubby/internal/core/ports/driving"
	"github.com/pavilion-labs/clubby/internal/logger"
)

// Ensure Router implements the interface.
var _ driving.QueryService = (*Router)(nil)

// Canned answers for degraded paths.
const (
	// insufficientAnswer is returned when retrieval finds nothing.
	// No LLM call is made from zero context, to avoid hallucination.
	insufficientAnswer = "I don't have enough information to answer that yet."

	// degradedAnswer is returned when a handler fails outright.
	degradedAnswer = "Sorry, I can't answer that right now. Please try again shortly."
)

// DefaultFreshness is the window within which indexed fixture data is
// considered current.
const DefaultFreshness = 7 * 24 * time.Hour

// Router orchestrates the query pipeline: cache lookup, intent
// classification, entity resolution, per-intent dispatch, privacy
// redaction and cache store. It is stateless across queries and is the
// single backstop guaranteeing a well-formed response envelope under
// every failure combination.
type Router struct {
	cache      driven.AnswerCache
	classifier *IntentClassifier
	resolver   *TeamResolver
	vector     driven.VectorIndex
	lookup     driven.DocumentLookup
	upstream   driven.SportsDataClient
	llm        driven.LLMService
	redactor   *Redactor
	freshness  time.Duration
	now        func() time.Time
}

// NewRouter creates a router. upstream and llm are optional (can be
// nil); the affected handlers degrade rather than fail.
func NewRouter(
	cache driven.AnswerCache,
	classifier *IntentClassifier,
	resolver *TeamResolver,
	vector driven.VectorIndex,
	lookup driven.DocumentLookup,
	upstream driven.SportsDataClient,
	llm driven.LLMService,
	redactor *Redactor,
) *Router {
	return &Router{
		cache:      cache,
		classifier: classifier,
		resolver:   resolver,
		vector:     vector,
		lookup:     lookup,
		upstream:   upstream,
		llm:        llm,
		redactor:   redactor,
		freshness:  DefaultFreshness,
		now:        time.Now,
	}
}

// SetFreshness overrides the staleness window for indexed data.
func (r *Router) SetFreshness(window time.Duration) {
	if window > 0 {
		r.freshness = window
	}
}

// SetClock overrides the time source. Useful for testing staleness.
func (r *Router) SetClock(now func() time.Time) {
	r.now = now
}

// RouteQuery answers a free-text question. It is total: every input
// yields a well-formed Answer, and no error or panic escapes to the
// caller.
func (r *Router) RouteQuery(ctx context.Context, query domain.Query) (answer domain.Answer) {
	start := r.now()
	requestID := uuid.NewString()

	// Backstop: a panicking handler becomes a degraded answer.
	defer func() {
		if rec := recover(); rec != nil {
			logger.Warn("Router: recovered from panic: %v", rec)
			answer = domain.Answer{
				Text: degradedAnswer,
				Meta: domain.Meta{
					RequestID: requestID,
					Intent:    domain.IntentGeneralQuery,
					LatencyMS: r.elapsedMS(start),
					Error:     fmt.Sprintf("internal: %v", rec),
				},
			}
		}
	}()

	logger.Stage(requestID, "query routing")
	logger.Debug("Query: %q (source=%s, hint=%q)", query.Text, query.Source, query.TeamHint)

	key := cacheKey(query.Text, query.TeamHint)
	if entry, ok := r.cache.Get(key); ok {
		logger.Info("Cache hit for key %s", key)
		meta := entry.Meta
		meta.RequestID = requestID
		meta.CacheHit = true
		meta.LatencyMS = r.elapsedMS(start)
		return domain.Answer{Text: entry.Answer, Meta: meta}
	}

	intent, entities := r.classifier.Classify(ctx, query.Text, query.TeamHint)
	logger.Info("Intent: %s", intent)

	text, ragHit, err := r.dispatch(ctx, intent, entities, query)

	meta := domain.Meta{
		RequestID: requestID,
		Intent:    intent,
		Entities:  entities.AsMap(),
		RagHit:    ragHit,
	}
	if err != nil {
		logger.Warn("Handler for %s degraded: %v", intent, err)
		if text == "" {
			text = degradedAnswer
		}
		meta.Error = err.Error()
	}
	if text == "" {
		text = insufficientAnswer
	}

	// Redaction is unconditional and runs before caching, so a caching
	// bug can never leak PII that redaction would have removed.
	text = r.redactor.Redact(text)

	meta.LatencyMS = r.elapsedMS(start)

	// Degraded answers are not cached: pinning a failure for a full TTL
	// would hide upstream recovery.
	if meta.Error == "" {
		r.cache.Put(key, text, meta)
	}

	return domain.Answer{Text: text, Meta: meta}
}

// dispatch maps each canonical intent to its handler.
func (r *Router) dispatch(
	ctx context.Context, intent domain.Intent, entities *domain.EntityMap, query domain.Query,
) (string, bool, error) {
	switch intent {
	case domain.IntentPlayerTeam:
		return r.handlePlayerTeam(ctx, entities)
	case domain.IntentPlayerLastRuns:
		return r.handlePlayerLastRuns(ctx, entities)
	case domain.IntentFixturesList:
		return r.handleFixturesList(ctx, entities, query)
	case domain.IntentNextFixture:
		return r.handleNextFixture(ctx, entities, query)
	case domain.IntentLadderPosition:
		return r.handleLadderPosition(ctx, entities, query)
	case domain.IntentRosterList:
		return r.handleRosterList(ctx, entities, query)
	default:
		return r.handleGeneralQuery(ctx, query.Text)
	}
}

// elapsedMS returns wall time since start in milliseconds.
func (r *Router) elapsedMS(start time.Time) int64 {
	return r.now().Sub(start).Milliseconds()
}

// cacheKey hashes the normalised query text and team hint.
func cacheKey(text, teamHint string) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s\x00%s", normaliseName(text), normaliseName(teamHint))
	return fmt.Sprintf("%x", h.Sum64())
}
