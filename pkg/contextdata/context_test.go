package contextdata_test

import (
	"context"
	"testing"

	"github.com/MarvinJWendt/testza"
	"github.com/Vilsol/dynlevel/pkg/contextdata"
)

func TestFromEmptyContext(t *testing.T) {
	t.Parallel()

	snap := contextdata.From(context.Background())
	testza.AssertEqual(t, 0, snap.Len())

	_, ok := snap.Get("anything")
	testza.AssertFalse(t, ok)
}

func TestWith(t *testing.T) {
	t.Parallel()

	ctx := contextdata.With(context.Background(), "reqId", "req-42")
	snap := contextdata.From(ctx)

	v, ok := snap.Get("reqId")
	testza.AssertTrue(t, ok)
	testza.AssertEqual(t, "req-42", v)
	testza.AssertEqual(t, 1, snap.Len())
}

func TestWithOverwrites(t *testing.T) {
	t.Parallel()

	ctx := contextdata.With(context.Background(), "tenant", "a")
	ctx = contextdata.With(ctx, "tenant", "b")

	v, _ := contextdata.From(ctx).Get("tenant")
	testza.AssertEqual(t, "b", v)
}

func TestWithMap(t *testing.T) {
	t.Parallel()

	ctx := contextdata.WithMap(context.Background(), map[string]string{
		"reqId":  "req-1",
		"tenant": "acme",
	})
	snap := contextdata.From(ctx)

	testza.AssertEqual(t, 2, snap.Len())
	testza.AssertEqual(t, []string{"reqId", "tenant"}, snap.Keys())
}

func TestWithMapEmptyReturnsSameContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	testza.AssertEqual(t, ctx, contextdata.WithMap(ctx, nil))
}

func TestSiblingContextsDoNotInterfere(t *testing.T) {
	t.Parallel()

	parent := contextdata.With(context.Background(), "reqId", "req-1")
	childA := contextdata.With(parent, "flag", "a")
	childB := contextdata.With(parent, "flag", "b")

	parentSnap := contextdata.From(parent)
	_, ok := parentSnap.Get("flag")
	testza.AssertFalse(t, ok)

	a, _ := contextdata.From(childA).Get("flag")
	b, _ := contextdata.From(childB).Get("flag")
	testza.AssertEqual(t, "a", a)
	testza.AssertEqual(t, "b", b)
}

func TestSnapshotIsStableAgainstSourceMutation(t *testing.T) {
	t.Parallel()

	source := map[string]string{"reqId": "req-1"}
	snap := contextdata.NewSnapshot(source)

	source["reqId"] = "mutated"
	source["extra"] = "added"

	v, _ := snap.Get("reqId")
	testza.AssertEqual(t, "req-1", v)
	testza.AssertEqual(t, 1, snap.Len())
}

func TestContextProvider(t *testing.T) {
	t.Parallel()

	var provider contextdata.ContextProvider

	snap := provider.Current(context.Background())
	testza.AssertEqual(t, 0, snap.Len())

	ctx := contextdata.With(context.Background(), "session", "debug")
	v, ok := provider.Current(ctx).Get("session")
	testza.AssertTrue(t, ok)
	testza.AssertEqual(t, "debug", v)
}
