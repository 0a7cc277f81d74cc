// Package recurrence evaluates iCal RRULE recurrence rules on a naive UTC
// timeline. The engine only depends on "given a rule and an anchor instant,
// produce the next occurrence strictly after it, or none" plus a stable text
// serialization for persistence.
package recurrence

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// dtStartFormat is the RFC 5545 UTC datetime layout used for DTSTART lines.
const dtStartFormat = "20060102T150405Z"

// Rule is a parsed recurrence rule anchored at an explicit DTSTART.
type Rule struct {
	set     *rrule.Set
	dtstart time.Time
}

// Parse parses a recurrence rule in iCal RRULE format. The rule must carry an
// explicit DTSTART; use Normalize to supply a default anchor. All instants
// are interpreted as UTC.
func Parse(text string) (*Rule, error) {
	if !strings.Contains(strings.ToUpper(text), "DTSTART") {
		return nil, fmt.Errorf("recurrence rule is missing DTSTART: %q", text)
	}

	set, err := rrule.StrToRRuleSet(text)
	if err != nil {
		return nil, fmt.Errorf("invalid recurrence rule %q: %w", text, err)
	}

	dtstart := set.GetDTStart().UTC()

	return &Rule{set: set, dtstart: dtstart}, nil
}

// Normalize prepends a DTSTART line for rules that lack one. The caller picks
// the default anchor (typically today's UTC midnight).
func Normalize(text string, defaultStart time.Time) string {
	if strings.Contains(strings.ToUpper(text), "DTSTART") {
		return text
	}

	return "DTSTART:" + defaultStart.UTC().Format(dtStartFormat) + "\n" + text
}

// String returns the canonical serialization, suitable for persistence and
// re-parsing with Parse.
func (r *Rule) String() string {
	return r.set.String()
}

// First returns the first occurrence of the rule, or false if the rule
// produces none at all.
func (r *Rule) First() (time.Time, bool) {
	occ := r.set.After(r.dtstart.Add(-time.Second), false)
	if occ.IsZero() {
		return time.Time{}, false
	}
	return occ.UTC(), true
}

// NextAfter returns the next occurrence strictly after t, or false if the
// rule is exhausted.
func (r *Rule) NextAfter(t time.Time) (time.Time, bool) {
	occ := r.set.After(t.UTC(), false)
	if occ.IsZero() {
		return time.Time{}, false
	}
	return occ.UTC(), true
}
