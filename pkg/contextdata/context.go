package contextdata

import "context"

type dataKey struct{}

// With returns a context carrying the given key/value pair in addition to
// any pairs already present. Storage is copy-on-extend: the parent's map is
// never mutated, so snapshots taken from sibling contexts stay stable.
func With(ctx context.Context, key string, value string) context.Context {
	return WithMap(ctx, map[string]string{key: value})
}

// WithMap returns a context carrying all pairs from data in addition to any
// pairs already present. Existing keys are overwritten.
func WithMap(ctx context.Context, data map[string]string) context.Context {
	if len(data) == 0 {
		return ctx
	}

	existing, _ := ctx.Value(dataKey{}).(map[string]string)

	merged := make(map[string]string, len(existing)+len(data))
	for k, v := range existing {
		merged[k] = v
	}
	for k, v := range data {
		merged[k] = v
	}

	return context.WithValue(ctx, dataKey{}, merged)
}

// From materializes the ambient data on ctx as a snapshot. It never
// returns a "nil" view; a context without data yields an empty snapshot.
func From(ctx context.Context) Snapshot {
	data, ok := ctx.Value(dataKey{}).(map[string]string)
	if !ok {
		return Empty()
	}
	// Maps stored by WithMap are never mutated after insertion, so the
	// snapshot can alias them without copying.
	return wrap(data)
}

// Provider supplies the current ambient snapshot for an evaluation call.
// Implementations must be callable from any goroutine and must never
// return a view that mutates for the duration of the call.
type Provider interface {
	Current(ctx context.Context) Snapshot
}

// ContextProvider reads ambient data stored on the context via [With] and
// [WithMap]. It is the default provider for filters.
type ContextProvider struct{}

var _ Provider = ContextProvider{}

// Current returns the snapshot carried by ctx.
func (ContextProvider) Current(ctx context.Context) Snapshot {
	return From(ctx)
}
