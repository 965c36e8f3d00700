package slog

import (
	"context"
	"log/slog"

	"github.com/Vilsol/dynlevel/pkg/filter"
	"github.com/Vilsol/dynlevel/pkg/level"
)

var _ slog.Handler = (*thresholdHandler)(nil)

// thresholdHandler gates records through a dynamic threshold filter before
// forwarding them upstream. An Accept outcome forwards even when the
// upstream handler's own level would reject the record, Deny drops, and
// Neutral falls back to a plain minimum-level check, so a record without
// the discriminating context key behaves like ordinary level filtering.
type thresholdHandler struct {
	upstream slog.Handler
	filters  *filter.Handle
	fallback slog.Level
}

func newThresholdHandler(upstream slog.Handler, filters *filter.Handle, fallback slog.Level) *thresholdHandler {
	return &thresholdHandler{
		upstream: upstream,
		filters:  filters,
		fallback: fallback,
	}
}

// Enabled applies the same decision as Handle so records destined to be
// dropped are skipped before argument processing.
func (h *thresholdHandler) Enabled(ctx context.Context, lvl slog.Level) bool {
	if override, ok := LogLevelFromContext(ctx); ok {
		return lvl >= override && h.upstream.Enabled(ctx, lvl)
	}

	switch h.filters.Current().EvaluateContext(ctx, level.FromSlog(lvl)) {
	case filter.Accept:
		return true
	case filter.Deny:
		return false
	default:
		return lvl >= h.fallback && h.upstream.Enabled(ctx, lvl)
	}
}

func (h *thresholdHandler) Handle(ctx context.Context, record slog.Record) error {
	if override, ok := LogLevelFromContext(ctx); ok {
		if record.Level >= override {
			return h.upstream.Handle(ctx, record) //nolint:wrapcheck
		}
		return nil
	}

	switch h.filters.Current().EvaluateRecord(ctx, record) {
	case filter.Accept:
		return h.upstream.Handle(ctx, record) //nolint:wrapcheck
	case filter.Deny:
		return nil
	default:
		if record.Level < h.fallback {
			return nil
		}
		return h.upstream.Handle(ctx, record) //nolint:wrapcheck
	}
}

func (h *thresholdHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &thresholdHandler{
		upstream: h.upstream.WithAttrs(attrs),
		filters:  h.filters,
		fallback: h.fallback,
	}
}

func (h *thresholdHandler) WithGroup(name string) slog.Handler {
	return &thresholdHandler{
		upstream: h.upstream.WithGroup(name),
		filters:  h.filters,
		fallback: h.fallback,
	}
}
