package filter

import (
	"sync/atomic"

	"github.com/Vilsol/dynlevel/pkg/contextdata"
	"github.com/Vilsol/dynlevel/pkg/level"
)

// Handle is a live reference to the current filter. Filters themselves are
// immutable; configuration reloads swap a whole new filter in atomically,
// so an evaluation in flight never observes a half-updated table.
type Handle struct {
	current atomic.Pointer[DynamicThresholdFilter]
}

var _ Filter = (*Handle)(nil)

// NewHandle creates a handle pointing at the given filter.
func NewHandle(f *DynamicThresholdFilter) *Handle {
	h := &Handle{}
	h.current.Store(f)
	return h
}

// Current returns the filter the handle currently points at.
func (h *Handle) Current() *DynamicThresholdFilter {
	return h.current.Load()
}

// Swap replaces the current filter. A nil filter is ignored.
func (h *Handle) Swap(f *DynamicThresholdFilter) {
	if f == nil {
		return
	}
	h.current.Store(f)
}

// Evaluate delegates to the current filter.
func (h *Handle) Evaluate(lvl level.Level, snapshot contextdata.Snapshot) Outcome {
	return h.current.Load().Evaluate(lvl, snapshot)
}
