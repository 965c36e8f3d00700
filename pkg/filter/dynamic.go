// Package filter implements dynamic, context-keyed log-level filtering:
// a log event is admitted or rejected by comparing its level against a
// threshold looked up from ambient context data instead of a single
// static minimum.
package filter

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Vilsol/dynlevel/pkg/contextdata"
	"github.com/Vilsol/dynlevel/pkg/level"
	"github.com/samber/oops"
)

// Filter decides whether a single log event should be emitted. Evaluation
// is a pure read: it never fails, never blocks, and is safe for
// unsynchronized concurrent use.
type Filter interface {
	Evaluate(lvl level.Level, snapshot contextdata.Snapshot) Outcome
}

// DynamicThresholdFilter compares an event's level against a threshold
// selected by the value of one context key. Configuration is fixed at
// construction; a filter is create-once, evaluate-many.
type DynamicThresholdFilter struct {
	key        string
	table      *ThresholdTable
	onMatch    Outcome
	onMismatch Outcome
	ordering   level.Ordering
	provider   contextdata.Provider
}

var _ Filter = (*DynamicThresholdFilter)(nil)

// Option configures a DynamicThresholdFilter at construction.
type Option func(f *DynamicThresholdFilter)

// WithOnMatch sets the outcome returned when the event level clears the
// resolved threshold (default: Neutral).
func WithOnMatch(o Outcome) Option {
	return func(f *DynamicThresholdFilter) { f.onMatch = o }
}

// WithOnMismatch sets the outcome returned when the event level falls
// below the resolved threshold (default: Deny).
func WithOnMismatch(o Outcome) Option {
	return func(f *DynamicThresholdFilter) { f.onMismatch = o }
}

// WithOrdering sets the level ordering used for the comparison
// (default: level.StandardOrdering).
func WithOrdering(ordering level.Ordering) Option {
	return func(f *DynamicThresholdFilter) { f.ordering = ordering }
}

// WithProvider sets the snapshot provider used by the context-acquiring
// call shapes (default: contextdata.ContextProvider).
func WithProvider(provider contextdata.Provider) Option {
	return func(f *DynamicThresholdFilter) { f.provider = provider }
}

// New constructs a filter keyed on the given context key. An empty key is
// a configuration error. A nil table behaves as an empty table with the
// error default.
func New(key string, table *ThresholdTable, options ...Option) (*DynamicThresholdFilter, error) {
	if strings.TrimSpace(key) == "" {
		return nil, oops.Errorf("context key cannot be empty")
	}

	if table == nil {
		// Cannot fail: no pairs to resolve, default falls back to error.
		table, _ = NewThresholdTable(nil, "")
	}

	f := &DynamicThresholdFilter{
		key:        key,
		table:      table,
		onMatch:    Neutral,
		onMismatch: Deny,
		ordering:   level.StandardOrdering{},
		provider:   contextdata.ContextProvider{},
	}
	for _, option := range options {
		option(f)
	}

	return f, nil
}

// Evaluate applies the decision to an event at the given level using an
// already-materialized snapshot. If the configured key is absent the
// filter abstains with Neutral; a present-but-unmapped value compares
// against the table's default threshold.
func (f *DynamicThresholdFilter) Evaluate(lvl level.Level, snapshot contextdata.Snapshot) Outcome {
	return f.decide(lvl, snapshot)
}

// EvaluateContext acquires the snapshot from the filter's provider and
// delegates to the same decision as Evaluate.
func (f *DynamicThresholdFilter) EvaluateContext(ctx context.Context, lvl level.Level) Outcome {
	return f.decide(lvl, f.provider.Current(ctx))
}

// EvaluateRecord is the slog front-end call shape: it extracts the
// record's level and acquires the snapshot from the filter's provider,
// then delegates to the same decision as Evaluate.
func (f *DynamicThresholdFilter) EvaluateRecord(ctx context.Context, record slog.Record) Outcome {
	return f.decide(level.FromSlog(record.Level), f.provider.Current(ctx))
}

// decide is the single decision function every call shape funnels into.
func (f *DynamicThresholdFilter) decide(lvl level.Level, snapshot contextdata.Snapshot) Outcome {
	value, ok := snapshot.Get(f.key)
	if !ok {
		return Neutral
	}

	threshold := f.table.Lookup(value)
	if f.ordering.AtLeastAsSevere(lvl, threshold) {
		return f.onMatch
	}
	return f.onMismatch
}

// Key returns the context key the filter discriminates on.
func (f *DynamicThresholdFilter) Key() string {
	return f.key
}

// Table returns the threshold table.
func (f *DynamicThresholdFilter) Table() *ThresholdTable {
	return f.table
}

// OnMatch returns the configured match outcome.
func (f *DynamicThresholdFilter) OnMatch() Outcome {
	return f.onMatch
}

// OnMismatch returns the configured mismatch outcome.
func (f *DynamicThresholdFilter) OnMismatch() Outcome {
	return f.onMismatch
}

// Equal reports whether two filters carry the same resolved configuration:
// same key, same default threshold, and same table contents. Ordering,
// provider, and outcome policies configured via options do not take part.
func (f *DynamicThresholdFilter) Equal(other *DynamicThresholdFilter) bool {
	if f == other {
		return true
	}
	if f == nil || other == nil {
		return false
	}
	return f.key == other.key && f.table.Equal(other.table)
}

// String renders "key=<k>, default=<d>{v1=L1, v2=L2}" for diagnostics.
func (f *DynamicThresholdFilter) String() string {
	return "key=" + f.key + ", " + f.table.String()
}
