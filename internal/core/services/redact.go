package services

import (
	"regexp"
	"strings"

	"github.com/pavilion-labs/clubby/internal/core/domain"
)

// Redaction patterns for personally-identifying substrings.
var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	// phonePattern matches local and international numbers of 8+ digits
	// with optional spacing/dash separators. It also matches ISO dates,
	// which fixture answers carry; those are filtered out by shape before
	// replacement rather than excluded here, since Go regexp has no
	// lookahead.
	phonePattern = regexp.MustCompile(`(?:\+?\d[\d\- ]{6,}\d)`)
	// isoDatePattern recognises a bare YYYY-MM-DD match date.
	isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// redactedPlaceholder replaces stripped PII.
const redactedPlaceholder = "[redacted]"

// Redactor strips personally-identifying fields from answers according
// to the deployment-wide privacy mode. It runs unconditionally as the
// last step before caching, so a caching bug can never leak PII that
// redaction would have removed.
type Redactor struct {
	mode domain.PrivacyMode
}

// NewRedactor creates a redactor for the given mode.
func NewRedactor(mode domain.PrivacyMode) *Redactor {
	return &Redactor{mode: mode}
}

// Mode returns the active privacy mode.
func (r *Redactor) Mode() domain.PrivacyMode {
	return r.mode
}

// Redact removes contact details from an answer in private mode.
// Match dates are left intact: a fixture answer stripped of its date is
// useless. Public mode passes text through unchanged; fields never
// meant for public display are excluded at formatting time instead.
func (r *Redactor) Redact(answer string) string {
	if r.mode != domain.PrivacyPrivate {
		return answer
	}
	answer = emailPattern.ReplaceAllString(answer, redactedPlaceholder)
	answer = phonePattern.ReplaceAllStringFunc(answer, func(m string) string {
		if isoDatePattern.MatchString(m) {
			return m
		}
		return redactedPlaceholder
	})
	return answer
}

// FormatRosterMember renders one roster member respecting the mode.
// Private mode shows the name only. Public mode passes contact details
// through but never internal roles, which are not meant for public
// display in either mode's output.
func (r *Redactor) FormatRosterMember(m RosterLine) string {
	if r.mode == domain.PrivacyPrivate {
		return m.Name
	}
	var b strings.Builder
	b.WriteString(m.Name)
	if m.Email != "" {
		b.WriteString(" " + m.Email)
	}
	if m.Phone != "" {
		b.WriteString(" " + m.Phone)
	}
	return b.String()
}

// RosterLine is the subset of roster fields used for rendering.
type RosterLine struct {
	Name  string
	Role  string
	Email string
	Phone string
}
