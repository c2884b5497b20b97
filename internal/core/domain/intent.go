package domain

// Intent is a canonical query category the router understands.
// Classification always resolves to one of these values; unmatched
// input maps to IntentGeneralQuery, never to an error.
type Intent string

// Canonical intents.
const (
	IntentPlayerTeam     Intent = "player_team"
	IntentPlayerLastRuns Intent = "player_last_runs"
	IntentFixturesList   Intent = "fixtures_list"
	IntentLadderPosition Intent = "ladder_position"
	IntentNextFixture    Intent = "next_fixture"
	IntentRosterList     Intent = "roster_list"
	IntentGeneralQuery   Intent = "general_query"
)

// allIntents is the closed set of valid intents.
var allIntents = map[Intent]bool{
	IntentPlayerTeam:     true,
	IntentPlayerLastRuns: true,
	IntentFixturesList:   true,
	IntentLadderPosition: true,
	IntentNextFixture:    true,
	IntentRosterList:     true,
	IntentGeneralQuery:   true,
}

// ParseIntent validates a raw intent string against the closed enum.
// Returns IntentGeneralQuery and false for anything outside the enum.
func ParseIntent(raw string) (Intent, bool) {
	intent := Intent(raw)
	if allIntents[intent] {
		return intent, true
	}
	return IntentGeneralQuery, false
}

// IsValid reports whether the intent belongs to the closed enum.
func (i Intent) IsValid() bool {
	return allIntents[i]
}

// String returns the wire form of the intent.
func (i Intent) String() string {
	return string(i)
}

// Well-known entity keys extracted by the classifier.
const (
	EntityPlayerName = "player_name"
	EntityTeamName   = "team_name"
)

// entityPair is a single key/value entry in an EntityMap.
type entityPair struct {
	key   string
	value string
}

// EntityMap is an insertion-ordered key to string mapping of extracted
// entities. Keys are intent-specific; absence of a key is a valid,
// handled state rather than an error.
type EntityMap struct {
	pairs []entityPair
}

// NewEntityMap creates an empty entity map.
func NewEntityMap() *EntityMap {
	return &EntityMap{}
}

// Set stores a value for key, preserving first-insertion order.
func (m *EntityMap) Set(key, value string) {
	for i := range m.pairs {
		if m.pairs[i].key == key {
			m.pairs[i].value = value
			return
		}
	}
	m.pairs = append(m.pairs, entityPair{key: key, value: value})
}

// Get returns the value for key and whether it is present.
func (m *EntityMap) Get(key string) (string, bool) {
	if m == nil {
		return "", false
	}
	for i := range m.pairs {
		if m.pairs[i].key == key {
			return m.pairs[i].value, true
		}
	}
	return "", false
}

// Len returns the number of entries.
func (m *EntityMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.pairs)
}

// Keys returns the keys in insertion order.
func (m *EntityMap) Keys() []string {
	if m == nil {
		return nil
	}
	keys := make([]string, len(m.pairs))
	for i := range m.pairs {
		keys[i] = m.pairs[i].key
	}
	return keys
}

// AsMap returns a plain map copy for serialisation.
func (m *EntityMap) AsMap() map[string]string {
	out := make(map[string]string, m.Len())
	if m == nil {
		return out
	}
	for i := range m.pairs {
		out[m.pairs[i].key] = m.pairs[i].value
	}
	return out
}
