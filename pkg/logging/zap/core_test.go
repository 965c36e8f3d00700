package zap_test

import (
	"testing"

	"github.com/MarvinJWendt/testza"
	"github.com/Vilsol/dynlevel/pkg/filter"
	dynzap "github.com/Vilsol/dynlevel/pkg/logging/zap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
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

func newLogger(t *testing.T, sinkLevel zapcore.Level) (*zap.Logger, *observer.ObservedLogs) {
	t.Helper()

	sink, observed := observer.New(sinkLevel)
	logger := zap.New(dynzap.NewThresholdCore(sink, requestHandle(t)))
	return logger, observed
}

func TestThresholdCore_AcceptOverridesSinkLevel(t *testing.T) {
	t.Parallel()

	logger, observed := newLogger(t, zapcore.InfoLevel)

	// req-42 maps to debug, so debug is admitted even though the sink is info
	logger.With(zap.String("reqId", "req-42")).Debug("debug for req-42")

	entries := observed.All()
	testza.AssertEqual(t, 1, len(entries))
	testza.AssertEqual(t, "debug for req-42", entries[0].Message)
}

func TestThresholdCore_DenyDrops(t *testing.T) {
	t.Parallel()

	logger, observed := newLogger(t, zapcore.DebugLevel)

	// req-7 requires error; warn is denied even though the sink allows it
	logger.With(zap.String("reqId", "req-7")).Warn("dropped")

	testza.AssertEqual(t, 0, len(observed.All()))
}

func TestThresholdCore_NeutralDefersToSink(t *testing.T) {
	t.Parallel()

	logger, observed := newLogger(t, zapcore.InfoLevel)

	// No reqId field: the filter abstains and the sink level decides
	logger.Debug("below sink level")
	logger.Info("at sink level")

	entries := observed.All()
	testza.AssertEqual(t, 1, len(entries))
	testza.AssertEqual(t, "at sink level", entries[0].Message)
}

func TestThresholdCore_UnmappedValueComparesAgainstDefault(t *testing.T) {
	t.Parallel()

	logger, observed := newLogger(t, zapcore.DebugLevel)

	scoped := logger.With(zap.String("reqId", "req-99"))
	scoped.Info("dropped by default threshold")
	scoped.Error("clears default threshold")

	entries := observed.All()
	testza.AssertEqual(t, 1, len(entries))
	testza.AssertEqual(t, "clears default threshold", entries[0].Message)
}

func TestThresholdCore_LaterWithOverwrites(t *testing.T) {
	t.Parallel()

	logger, observed := newLogger(t, zapcore.InfoLevel)

	scoped := logger.With(zap.String("reqId", "req-7")).With(zap.String("reqId", "req-42"))
	scoped.Debug("rescoped to req-42")

	testza.AssertEqual(t, 1, len(observed.All()))
}

func TestThresholdCore_NonStringFieldsIgnored(t *testing.T) {
	t.Parallel()

	logger, observed := newLogger(t, zapcore.InfoLevel)

	scoped := logger.With(zap.Int("reqId", 42))
	scoped.Debug("int field is not ambient data")

	testza.AssertEqual(t, 0, len(observed.All()))
}
