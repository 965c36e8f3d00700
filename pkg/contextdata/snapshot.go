// Package contextdata carries ambient string key/value data for the
// current execution (request ids, tenant ids, session flags) and exposes
// it to filters as immutable per-call snapshots.
package contextdata

import "sort"

// Snapshot is an immutable string-to-string view captured at the moment of
// a logging call. Callers read through it within the call and must not
// retain it past the call; the backing map is never mutated after capture.
// The zero value is an empty snapshot.
type Snapshot struct {
	data map[string]string
}

// NewSnapshot builds a snapshot from a copy of the given map.
func NewSnapshot(data map[string]string) Snapshot {
	if len(data) == 0 {
		return Snapshot{}
	}

	copied := make(map[string]string, len(data))
	for k, v := range data {
		copied[k] = v
	}
	return Snapshot{data: copied}
}

// Empty returns a snapshot with no entries. Providers return this instead
// of a nil snapshot when no ambient data exists.
func Empty() Snapshot {
	return Snapshot{}
}

// Get returns the value for key and whether it is present.
func (s Snapshot) Get(key string) (string, bool) {
	v, ok := s.data[key]
	return v, ok
}

// Len returns the number of entries.
func (s Snapshot) Len() int {
	return len(s.data)
}

// Keys returns all keys in sorted order.
func (s Snapshot) Keys() []string {
	if len(s.data) == 0 {
		return nil
	}

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// wrap aliases an internally-owned map that is guaranteed never to be
// mutated, skipping the defensive copy on the snapshot hot path.
func wrap(data map[string]string) Snapshot {
	return Snapshot{data: data}
}
