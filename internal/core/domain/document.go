package domain

import (
	"fmt"
	"hash/fnv"
)

// Document metadata types. The Type field of Metadata is one of these.
const (
	DocTypeFixture = "fixture"
	DocTypeLadder  = "ladder"
	DocTypeRoster  = "roster"
	DocTypeStats   = "stats"
	DocTypeGeneral = "general"
)

// Metadata filter keys accepted by the vector index.
const (
	FilterType     = "type"
	FilterTeamID   = "team_id"
	FilterSeasonID = "season_id"
	FilterGradeID  = "grade_id"
	FilterDate     = "date"
)

// Metadata is the fixed set of filterable fields attached to a document.
type Metadata struct {
	// Type categorises the document (fixture, ladder, roster, stats, general).
	Type string `json:"type,omitempty"`

	// TeamID is the canonical team identifier.
	TeamID string `json:"team_id,omitempty"`

	// SeasonID is the upstream season identifier.
	SeasonID string `json:"season_id,omitempty"`

	// GradeID is the upstream grade (division) identifier.
	GradeID string `json:"grade_id,omitempty"`

	// Date is the document's reference date in YYYY-MM-DD form.
	Date string `json:"date,omitempty"`
}

// Field returns the metadata value for a filter key.
func (m Metadata) Field(key string) (string, bool) {
	switch key {
	case FilterType:
		return m.Type, true
	case FilterTeamID:
		return m.TeamID, true
	case FilterSeasonID:
		return m.SeasonID, true
	case FilterGradeID:
		return m.GradeID, true
	case FilterDate:
		return m.Date, true
	}
	return "", false
}

// Matches reports whether every supplied filter key equals the
// document's stored value. Unknown filter keys never match.
func (m Metadata) Matches(filters map[string]string) bool {
	for key, want := range filters {
		got, ok := m.Field(key)
		if !ok || got != want {
			return false
		}
	}
	return true
}

// Document is an indexed text document with filterable metadata.
// IDs are derived from a natural key upstream, so re-indexing
// unchanged source data is idempotent.
type Document struct {
	ID       string   `json:"id"`
	Text     string   `json:"text"`
	Metadata Metadata `json:"metadata"`
}

// Fingerprint returns a content hash of (text, metadata) used for delta
// detection during upsert. Fingerprints live only in process memory and
// are rebuilt if lost, at worst causing one redundant upsert.
func (d Document) Fingerprint() uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00%s\x00%s\x00%s",
		d.Text, d.Metadata.Type, d.Metadata.TeamID,
		d.Metadata.SeasonID, d.Metadata.GradeID, d.Metadata.Date)
	return h.Sum64()
}
