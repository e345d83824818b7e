package repokit

import (
	"context"
	"testing"
	"time"

	"touchgrass/internal/platform/testkit"
)

type errBoom string

func (e errBoom) Error() string { return string(e) }

// fakePinger records the ctx it was invoked with and returns a preset error
type fakePinger struct {
	lastCtx context.Context
	err     error
}

func (f *fakePinger) Ping(ctx context.Context) error {
	f.lastCtx = ctx
	return f.err
}

func TestMustPingPanicsOnNilDependency(t *testing.T) {
	t.Parallel()
	testkit.MustPanic(t, func() {
		MustPing(context.Background(), "pg", nil)
	})
}

func TestMustPingAddsDefaultTimeoutWhenNone(t *testing.T) {
	t.Parallel()

	fp := &fakePinger{}
	MustPing(context.Background(), "pg", fp) // should not panic

	if fp.lastCtx == nil {
		t.Fatalf("expected fakePinger to receive a context")
	}
	dl, ok := fp.lastCtx.Deadline()
	if !ok {
		t.Fatalf("expected a deadline to be set by MustPing")
	}
	if time.Until(dl) <= 0 {
		t.Fatalf("deadline already expired")
	}
}

func TestMustPingPanicsOnPingError(t *testing.T) {
	t.Parallel()

	fp := &fakePinger{err: errBoom("boom")}
	testkit.MustPanic(t, func() {
		MustPing(context.Background(), "pg", fp)
	})
}

// fakeGuard lets us force Guard() to succeed or fail
type fakeGuard struct{ err error }

func (f fakeGuard) Guard(context.Context) error { return f.err }

func TestMustGuardPanicsOnError(t *testing.T) {
	t.Parallel()
	testkit.MustPanic(t, func() {
		MustGuard(context.Background(), fakeGuard{err: errBoom("boom")})
	})
}

func TestMustGuardNoPanicOnNilError(t *testing.T) {
	t.Parallel()
	testkit.MustNotPanic(t, func() {
		MustGuard(context.Background(), fakeGuard{})
	})
}

type fakeRepo struct{ q Queryer }

func TestMustBindPanicsOnNilQueryer(t *testing.T) {
	t.Parallel()

	b := BindFunc[fakeRepo](func(q Queryer) fakeRepo { return fakeRepo{q: q} })
	testkit.MustPanic(t, func() {
		MustBind[fakeRepo](b, nil)
	})
}

func TestBindFuncRoundTrip(t *testing.T) {
	t.Parallel()

	b := BindFunc[fakeRepo](func(q Queryer) fakeRepo { return fakeRepo{q: q} })
	got := b.Bind(nil)
	if got.q != nil {
		t.Fatalf("expected the queryer to pass through unchanged")
	}
}
