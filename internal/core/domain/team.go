package domain

// Team is a known club team with its alias table.
// The alias list includes historical and colloquial variants
// (e.g. "blue 10s" for "Caroline Springs Blue U10").
type Team struct {
	// ID is the canonical team identifier used in document metadata.
	ID string `json:"id" toml:"id"`

	// Name is the canonical display name.
	Name string `json:"name" toml:"name"`

	// Aliases are alternative spellings matched case-insensitively.
	Aliases []string `json:"aliases,omitempty" toml:"aliases"`
}

// PrivacyMode controls whether personally-identifying fields are
// stripped from outputs. It is read once at startup and is not
// user-settable per request.
type PrivacyMode string

// Privacy modes.
const (
	PrivacyPublic  PrivacyMode = "public"
	PrivacyPrivate PrivacyMode = "private"
)

// ParsePrivacyMode maps a raw setting to a mode, defaulting to private.
// Defaulting to the stricter mode means a misconfigured deployment can
// only over-redact, never leak.
func ParsePrivacyMode(raw string) PrivacyMode {
	if PrivacyMode(raw) == PrivacyPublic {
		return PrivacyPublic
	}
	return PrivacyPrivate
}
