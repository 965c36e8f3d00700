package filter

import (
	"strings"

	"github.com/samber/oops"
)

// Outcome is the three-valued result of a filter evaluation. A filter that
// cannot determine relevance abstains with Neutral, leaving the decision to
// whatever invokes it.
type Outcome int

const (
	// Neutral means the filter abstains from the decision.
	Neutral Outcome = iota
	// Accept means the event should be admitted.
	Accept
	// Deny means the event should be rejected.
	Deny
)

// String renders the outcome in uppercase, e.g. "ACCEPT".
func (o Outcome) String() string {
	switch o {
	case Accept:
		return "ACCEPT"
	case Deny:
		return "DENY"
	case Neutral:
		return "NEUTRAL"
	default:
		return "NEUTRAL"
	}
}

// ParseOutcome resolves an outcome token case-insensitively. Unknown
// tokens are a configuration error.
func ParseOutcome(s string) (Outcome, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "accept":
		return Accept, nil
	case "deny":
		return Deny, nil
	case "neutral":
		return Neutral, nil
	default:
		return Neutral, oops.With("token", s).Errorf("unknown outcome token: %s", s)
	}
}
