package domain

import "time"

// SourceChannel identifies where a query originated.
type SourceChannel string

// Supported inbound channels.
const (
	SourceWeb       SourceChannel = "web"
	SourceMessaging SourceChannel = "messaging"
	SourceCLI       SourceChannel = "cli"
)

// Query is an immutable inbound question. Queries are never persisted.
type Query struct {
	// Text is the raw free-text question.
	Text string

	// Source is the inbound channel the query arrived on.
	Source SourceChannel

	// TeamHint optionally narrows the query to a team, e.g. from
	// channel configuration. Empty means no hint.
	TeamHint string
}

// Meta carries per-answer observability metadata.
type Meta struct {
	// RequestID is a unique id for tracing this query.
	RequestID string `json:"request_id"`

	// Intent is the resolved canonical intent.
	Intent Intent `json:"intent"`

	// Entities are the extracted entities, keyed by entity name.
	Entities map[string]string `json:"entities,omitempty"`

	// CacheHit reports whether the answer came from the response cache.
	CacheHit bool `json:"cache_hit"`

	// RagHit reports whether the semantic index produced usable results,
	// as opposed to falling back to the live upstream API.
	RagHit bool `json:"rag_hit"`

	// LatencyMS is the end-to-end handling time in milliseconds.
	LatencyMS int64 `json:"latency_ms"`

	// Error carries a short description when the answer is degraded.
	// Empty on the happy path.
	Error string `json:"error,omitempty"`
}

// Answer is the router's response envelope. RouteQuery always returns a
// well-formed Answer, whatever the failure combination underneath.
type Answer struct {
	Text string `json:"answer"`
	Meta Meta   `json:"meta"`
}

// CacheEntry is a cached, fully-formed answer.
type CacheEntry struct {
	// Key is the hash of (normalised text, team hint).
	Key string

	// Answer is the rendered answer text, post-redaction.
	Answer string

	// Meta is the metadata captured when the entry was stored.
	Meta Meta

	// ExpiresAt bounds staleness; an entry is never returned after it.
	ExpiresAt time.Time
}

// Expired reports whether the entry has passed its expiry at the given time.
func (e *CacheEntry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}
