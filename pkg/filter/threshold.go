package filter

import (
	"sort"
	"strings"

	"github.com/Vilsol/dynlevel/pkg/level"
	"github.com/samber/oops"
)

// Pair associates a context value with the name of the minimum level
// required for events carrying that value.
type Pair struct {
	Value string
	Level string
}

// Entry is a resolved threshold table row, used for introspection.
type Entry struct {
	Value     string
	Threshold level.Level
}

// ThresholdTable maps context values to minimum levels, with a single
// default used for values not present in the table. It is built once and
// immutable thereafter; lookups have no side effects.
type ThresholdTable struct {
	thresholds       map[string]level.Level
	defaultThreshold level.Level
}

// NewThresholdTable resolves an ordered sequence of (value, levelName)
// pairs into a table. Duplicate values are last-write-wins. An
// unresolvable level name fails construction; nothing is deferred to
// lookup time. An empty defaultLevelName falls back to error.
func NewThresholdTable(pairs []Pair, defaultLevelName string) (*ThresholdTable, error) {
	defaultThreshold := level.Error
	if strings.TrimSpace(defaultLevelName) != "" {
		resolved, err := level.Parse(defaultLevelName)
		if err != nil {
			return nil, oops.Wrapf(err, "failed to resolve default threshold")
		}
		defaultThreshold = resolved
	}

	thresholds := make(map[string]level.Level, len(pairs))
	for _, pair := range pairs {
		resolved, err := level.Parse(pair.Level)
		if err != nil {
			return nil, oops.
				With("value", pair.Value).
				Wrapf(err, "failed to resolve threshold for value %q", pair.Value)
		}
		thresholds[pair.Value] = resolved
	}

	return &ThresholdTable{
		thresholds:       thresholds,
		defaultThreshold: defaultThreshold,
	}, nil
}

// Lookup returns the threshold mapped to value, or the default threshold
// when the value is not in the table.
func (t *ThresholdTable) Lookup(value string) level.Level {
	if threshold, ok := t.thresholds[value]; ok {
		return threshold
	}
	return t.defaultThreshold
}

// DefaultThreshold returns the level used for unmapped values.
func (t *ThresholdTable) DefaultThreshold() level.Level {
	return t.defaultThreshold
}

// Len returns the number of mapped values, excluding the default.
func (t *ThresholdTable) Len() int {
	return len(t.thresholds)
}

// Entries returns the resolved rows sorted by context value.
func (t *ThresholdTable) Entries() []Entry {
	if len(t.thresholds) == 0 {
		return nil
	}

	entries := make([]Entry, 0, len(t.thresholds))
	for value, threshold := range t.thresholds {
		entries = append(entries, Entry{Value: value, Threshold: threshold})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Value < entries[j].Value
	})
	return entries
}

// Equal reports whether two tables resolve every value identically:
// same default and same contents, regardless of construction order.
func (t *ThresholdTable) Equal(other *ThresholdTable) bool {
	if t == other {
		return true
	}
	if t == nil || other == nil {
		return false
	}
	if t.defaultThreshold != other.defaultThreshold {
		return false
	}
	if len(t.thresholds) != len(other.thresholds) {
		return false
	}
	for value, threshold := range t.thresholds {
		if got, ok := other.thresholds[value]; !ok || got != threshold {
			return false
		}
	}
	return true
}

// String renders the table as "default=<d>{v1=L1, v2=L2}" for diagnostics.
// The output is not meant to be parsed back.
func (t *ThresholdTable) String() string {
	var sb strings.Builder
	sb.WriteString("default=")
	sb.WriteString(t.defaultThreshold.String())

	if len(t.thresholds) > 0 {
		sb.WriteByte('{')
		for i, entry := range t.Entries() {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(entry.Value)
			sb.WriteByte('=')
			sb.WriteString(entry.Threshold.String())
		}
		sb.WriteByte('}')
	}

	return sb.String()
}
