// Package zap adapts the dynamic threshold filter to zap. Zap entries
// carry no context.Context, so the ambient data is taken from string
// fields accumulated on the logger via With: a request-scoped logger built
// with zap.String("reqId", ...) is filtered exactly like a context-scoped
// slog call.
package zap

import (
	"github.com/Vilsol/dynlevel/pkg/contextdata"
	"github.com/Vilsol/dynlevel/pkg/filter"
	"github.com/Vilsol/dynlevel/pkg/level"
	"go.uber.org/zap/zapcore"
)

var _ zapcore.Core = (*thresholdCore)(nil)

type thresholdCore struct {
	zapcore.Core
	filters  *filter.Handle
	ambient  map[string]string
	snapshot contextdata.Snapshot
}

// NewThresholdCore wraps a zapcore.Core so entries are gated through the
// filter handle. Accept admits the entry even if the wrapped core's own
// level would reject it, Deny drops it, and Neutral defers to the wrapped
// core's level enabler.
func NewThresholdCore(core zapcore.Core, filters *filter.Handle) zapcore.Core {
	return &thresholdCore{
		Core:    core,
		filters: filters,
	}
}

// With accumulates string fields as ambient data and forwards all fields
// to the wrapped core.
func (c *thresholdCore) With(fields []zapcore.Field) zapcore.Core {
	var merged map[string]string
	for _, f := range fields {
		if f.Type != zapcore.StringType {
			continue
		}
		if merged == nil {
			merged = make(map[string]string, len(c.ambient)+1)
			for k, v := range c.ambient {
				merged[k] = v
			}
		}
		merged[f.Key] = f.String
	}

	if merged == nil {
		// No string fields: the parent's ambient data is shared as-is.
		return &thresholdCore{
			Core:     c.Core.With(fields),
			filters:  c.filters,
			ambient:  c.ambient,
			snapshot: c.snapshot,
		}
	}

	return &thresholdCore{
		Core:     c.Core.With(fields),
		filters:  c.filters,
		ambient:  merged,
		snapshot: contextdata.NewSnapshot(merged),
	}
}

// Enabled applies the same decision as Check. The logger consults Enabled
// before constructing an entry, so without this an Accept outcome could
// never admit a level the wrapped core rejects.
func (c *thresholdCore) Enabled(lvl zapcore.Level) bool {
	switch c.filters.Evaluate(fromZap(lvl), c.snapshot) {
	case filter.Accept:
		return true
	case filter.Deny:
		return false
	default:
		return c.Core.Enabled(lvl)
	}
}

// Check gates the entry through the filter before including the core.
func (c *thresholdCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	switch c.filters.Evaluate(fromZap(e.Level), c.snapshot) {
	case filter.Accept:
		return ce.AddCore(e, c)
	case filter.Deny:
		return ce
	default:
		if c.Core.Enabled(e.Level) {
			return ce.AddCore(e, c)
		}
		return ce
	}
}

// fromZap maps a zap level onto the equivalent stock level.
func fromZap(lvl zapcore.Level) level.Level {
	switch {
	case lvl <= zapcore.DebugLevel:
		return level.Debug
	case lvl == zapcore.InfoLevel:
		return level.Info
	case lvl == zapcore.WarnLevel:
		return level.Warn
	case lvl == zapcore.ErrorLevel:
		return level.Error
	default:
		return level.Fatal
	}
}
