// Package level defines named severity levels and the ordering that
// threshold filters compare against. Levels are interned by name: parsing
// the same name always yields the same value, and unknown names are
// rejected at parse time rather than silently mapped to a fallback.
package level

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/samber/oops"
)

// Severity values are spaced like slog levels so custom levels can slot
// in between the stock ones.
const (
	SeverityTrace = -8
	SeverityDebug = -4
	SeverityInfo  = 0
	SeverityWarn  = 4
	SeverityError = 8
	SeverityFatal = 12
)

// Level is an immutable severity rank identified by name.
// Higher severity means more specific/severe. The zero value is not a
// valid level; obtain levels via the stock variables, [Parse], or [Register].
type Level struct {
	name     string
	severity int
}

// Stock levels, registered at init.
var (
	Trace = Level{name: "trace", severity: SeverityTrace}
	Debug = Level{name: "debug", severity: SeverityDebug}
	Info  = Level{name: "info", severity: SeverityInfo}
	Warn  = Level{name: "warn", severity: SeverityWarn}
	Error = Level{name: "error", severity: SeverityError}
	Fatal = Level{name: "fatal", severity: SeverityFatal}
)

var registry = struct {
	sync.RWMutex
	byName map[string]Level
}{
	byName: map[string]Level{
		"trace":   Trace,
		"debug":   Debug,
		"info":    Info,
		"warn":    Warn,
		"warning": Warn,
		"error":   Error,
		"fatal":   Fatal,
	},
}

// Register interns a custom level under the given name. Registering an
// already-known name with the same severity returns the existing level;
// a conflicting severity is an error.
func Register(name string, severity int) (Level, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return Level{}, oops.Errorf("level name cannot be empty")
	}

	registry.Lock()
	defer registry.Unlock()

	if existing, ok := registry.byName[normalized]; ok {
		if existing.severity != severity {
			return Level{}, oops.
				With("name", normalized).
				With("existing", existing.severity).
				With("requested", severity).
				Errorf("level already registered with different severity")
		}
		return existing, nil
	}

	l := Level{name: normalized, severity: severity}
	registry.byName[normalized] = l
	return l, nil
}

// Parse resolves a level by name, case-insensitively. Unknown names are an
// error: resolution must be deterministic and fail fast, never guess.
func Parse(name string) (Level, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))

	registry.RLock()
	l, ok := registry.byName[normalized]
	registry.RUnlock()

	if !ok {
		return Level{}, oops.With("name", name).Errorf("unknown level name: %s", name)
	}
	return l, nil
}

// MustParse is Parse for wiring and tests; it panics on unknown names.
func MustParse(name string) Level {
	l, err := Parse(name)
	if err != nil {
		panic(err)
	}
	return l
}

// Name returns the canonical (lowercase) level name.
func (l Level) Name() string {
	return l.name
}

// Severity returns the numeric severity rank.
func (l Level) Severity() int {
	return l.severity
}

// String renders the level in uppercase for diagnostics, e.g. "WARN".
func (l Level) String() string {
	return strings.ToUpper(l.name)
}

// Slog converts the level to its slog equivalent.
func (l Level) Slog() slog.Level {
	return slog.Level(l.severity)
}

// FromSlog maps a slog level onto the nearest stock level at or below it,
// so records produced with custom slog levels still compare sensibly.
func FromSlog(lvl slog.Level) Level {
	switch {
	case lvl >= SeverityFatal:
		return Fatal
	case lvl >= SeverityError:
		return Error
	case lvl >= SeverityWarn:
		return Warn
	case lvl >= SeverityInfo:
		return Info
	case lvl >= SeverityDebug:
		return Debug
	default:
		return Trace
	}
}

// Ordering answers whether a candidate level clears a threshold. It is
// supplied to filters rather than redefined by them; implementations must
// be total, reflexive, and monotonic with severity rank.
type Ordering interface {
	AtLeastAsSevere(candidate Level, threshold Level) bool
}

// StandardOrdering compares levels by severity rank.
type StandardOrdering struct{}

var _ Ordering = StandardOrdering{}

// AtLeastAsSevere reports whether candidate is at least as severe as threshold.
func (StandardOrdering) AtLeastAsSevere(candidate Level, threshold Level) bool {
	return candidate.severity >= threshold.severity
}
