package slog

import (
	"context"
	"log/slog"
	"testing"

	"github.com/MarvinJWendt/testza"
	"github.com/Vilsol/dynlevel/pkg/contextdata"
	"github.com/Vilsol/dynlevel/pkg/filter"
)

func requestHandle(t *testing.T) *filter.Handle {
	t.Helper()

	table, err := filter.NewThresholdTable([]filter.Pair{
		{Value: "req-42", Level: "debug"},
		{Value: "req-7", Level: "error"},
	}, "error")
	testza.AssertNoError(t, err)

	f, err := filter.New("reqId", table,
		filter.WithOnMatch(filter.Accept),
		filter.WithOnMismatch(filter.Deny),
	)
	testza.AssertNoError(t, err)

	return filter.NewHandle(f)
}

func newRecord(lvl slog.Level, msg string) slog.Record {
	record := slog.Record{}
	record.Level = lvl
	record.Message = msg
	return record
}

func TestThresholdHandler_AcceptForwards(t *testing.T) {
	t.Parallel()

	upstream := &recordingHandler{}
	h := newThresholdHandler(upstream, requestHandle(t), slog.LevelInfo)

	ctx := contextdata.With(context.Background(), "reqId", "req-42")

	err := h.Handle(ctx, newRecord(slog.LevelDebug, "debug for req-42"))
	testza.AssertNil(t, err)
	testza.AssertEqual(t, 1, len(upstream.records))
	testza.AssertEqual(t, "debug for req-42", upstream.records[0].Message)
}

func TestThresholdHandler_DenyDrops(t *testing.T) {
	t.Parallel()

	upstream := &recordingHandler{}
	h := newThresholdHandler(upstream, requestHandle(t), slog.LevelDebug)

	// req-7 requires error; warn is denied even though fallback would allow it
	ctx := contextdata.With(context.Background(), "reqId", "req-7")

	err := h.Handle(ctx, newRecord(slog.LevelWarn, "dropped"))
	testza.AssertNil(t, err)
	testza.AssertEqual(t, 0, len(upstream.records))
}

func TestThresholdHandler_NeutralUsesFallback(t *testing.T) {
	t.Parallel()

	upstream := &recordingHandler{}
	h := newThresholdHandler(upstream, requestHandle(t), slog.LevelInfo)

	// No reqId in context: the filter abstains and the fallback minimum applies
	ctx := context.Background()

	err := h.Handle(ctx, newRecord(slog.LevelDebug, "below fallback"))
	testza.AssertNil(t, err)
	testza.AssertEqual(t, 0, len(upstream.records))

	err = h.Handle(ctx, newRecord(slog.LevelInfo, "at fallback"))
	testza.AssertNil(t, err)
	testza.AssertEqual(t, 1, len(upstream.records))
	testza.AssertEqual(t, "at fallback", upstream.records[0].Message)
}

func TestThresholdHandler_UnmappedValueComparesAgainstDefault(t *testing.T) {
	t.Parallel()

	upstream := &recordingHandler{}
	h := newThresholdHandler(upstream, requestHandle(t), slog.LevelDebug)

	// req-99 is not in the table; the table default (error) applies
	ctx := contextdata.With(context.Background(), "reqId", "req-99")

	err := h.Handle(ctx, newRecord(slog.LevelInfo, "dropped by default threshold"))
	testza.AssertNil(t, err)
	testza.AssertEqual(t, 0, len(upstream.records))

	err = h.Handle(ctx, newRecord(slog.LevelError, "clears default threshold"))
	testza.AssertNil(t, err)
	testza.AssertEqual(t, 1, len(upstream.records))
}

func TestThresholdHandler_ContextOverrideWins(t *testing.T) {
	t.Parallel()

	upstream := &recordingHandler{}
	h := newThresholdHandler(upstream, requestHandle(t), slog.LevelError)

	// Override forces debug even though req-7 maps to error
	ctx := contextdata.With(context.Background(), "reqId", "req-7")
	ctx = WithLogLevel(ctx, slog.LevelDebug)

	err := h.Handle(ctx, newRecord(slog.LevelDebug, "forced by override"))
	testza.AssertNil(t, err)
	testza.AssertEqual(t, 1, len(upstream.records))
}

func TestThresholdHandler_ContextOverrideDropsBelow(t *testing.T) {
	t.Parallel()

	upstream := &recordingHandler{}
	h := newThresholdHandler(upstream, requestHandle(t), slog.LevelDebug)

	ctx := WithLogLevel(context.Background(), slog.LevelWarn)

	err := h.Handle(ctx, newRecord(slog.LevelInfo, "below override"))
	testza.AssertNil(t, err)
	testza.AssertEqual(t, 0, len(upstream.records))
}

func TestThresholdHandler_Enabled(t *testing.T) {
	t.Parallel()

	upstream := &recordingHandler{}
	h := newThresholdHandler(upstream, requestHandle(t), slog.LevelInfo)

	ctx := contextdata.With(context.Background(), "reqId", "req-42")
	testza.AssertTrue(t, h.Enabled(ctx, slog.LevelDebug))

	denied := contextdata.With(context.Background(), "reqId", "req-7")
	testza.AssertFalse(t, h.Enabled(denied, slog.LevelWarn))

	// Abstain path follows the fallback
	testza.AssertFalse(t, h.Enabled(context.Background(), slog.LevelDebug))
	testza.AssertTrue(t, h.Enabled(context.Background(), slog.LevelWarn))
}

func TestThresholdHandler_AcceptBypassesUpstreamLevel(t *testing.T) {
	t.Parallel()

	// The sink only enables info and above, but an Accept outcome must
	// still admit the debug record, same as the zap front-end
	upstream := &leveledHandler{recordingHandler: &recordingHandler{}, min: slog.LevelInfo}
	h := newThresholdHandler(upstream, requestHandle(t), slog.LevelInfo)

	ctx := contextdata.With(context.Background(), "reqId", "req-42")
	testza.AssertTrue(t, h.Enabled(ctx, slog.LevelDebug))

	err := h.Handle(ctx, newRecord(slog.LevelDebug, "admitted past sink level"))
	testza.AssertNil(t, err)
	testza.AssertEqual(t, 1, len(upstream.records))
}

func TestThresholdHandler_SwapTakesEffect(t *testing.T) {
	t.Parallel()

	upstream := &recordingHandler{}
	handle := requestHandle(t)
	h := newThresholdHandler(upstream, handle, slog.LevelInfo)

	ctx := contextdata.With(context.Background(), "reqId", "req-7")
	testza.AssertNil(t, h.Handle(ctx, newRecord(slog.LevelWarn, "before swap")))
	testza.AssertEqual(t, 0, len(upstream.records))

	table, err := filter.NewThresholdTable([]filter.Pair{
		{Value: "req-7", Level: "debug"},
	}, "error")
	testza.AssertNoError(t, err)
	swapped, err := filter.New("reqId", table,
		filter.WithOnMatch(filter.Accept),
		filter.WithOnMismatch(filter.Deny),
	)
	testza.AssertNoError(t, err)
	handle.Swap(swapped)

	testza.AssertNil(t, h.Handle(ctx, newRecord(slog.LevelWarn, "after swap")))
	testza.AssertEqual(t, 1, len(upstream.records))
	testza.AssertEqual(t, "after swap", upstream.records[0].Message)
}

func TestThresholdHandler_WithAttrs(t *testing.T) {
	t.Parallel()

	upstream := &recordingHandler{}
	h := newThresholdHandler(upstream, requestHandle(t), slog.LevelInfo)

	wrapped := h.WithAttrs([]slog.Attr{slog.String("key", "val")})
	clone, ok := wrapped.(*thresholdHandler)
	testza.AssertTrue(t, ok)
	testza.AssertEqual(t, h.filters, clone.filters)
}

func TestThresholdHandler_WithGroup(t *testing.T) {
	t.Parallel()

	upstream := &recordingHandler{}
	h := newThresholdHandler(upstream, requestHandle(t), slog.LevelInfo)

	wrapped := h.WithGroup("grp")
	clone, ok := wrapped.(*thresholdHandler)
	testza.AssertTrue(t, ok)
	testza.AssertEqual(t, h.fallback, clone.fallback)
}

func TestWithLogLevel(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	_, ok := LogLevelFromContext(ctx)
	testza.AssertFalse(t, ok)

	ctx = WithLogLevel(ctx, slog.LevelWarn)
	lvl, ok := LogLevelFromContext(ctx)
	testza.AssertTrue(t, ok)
	testza.AssertEqual(t, slog.LevelWarn, lvl)
}

type leveledHandler struct {
	*recordingHandler
	min slog.Level
}

func (h *leveledHandler) Enabled(_ context.Context, lvl slog.Level) bool {
	return lvl >= h.min
}

type recordingHandler struct {
	records []slog.Record
	attrs   []slog.Attr
	group   string
}

func (h *recordingHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

func (h *recordingHandler) Handle(_ context.Context, record slog.Record) error {
	h.records = append(h.records, record)
	return nil
}

func (h *recordingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &recordingHandler{attrs: attrs}
}

func (h *recordingHandler) WithGroup(name string) slog.Handler {
	return &recordingHandler{group: name}
}
