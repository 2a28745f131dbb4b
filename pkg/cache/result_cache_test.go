package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type testResult struct {
	Outcome string   `json:"outcome"`
	Names   []string `json:"names"`
}

func newTestResultCache(t *testing.T) (*ResultCache, *fakeClock) {
	t.Helper()

	clock := newFakeClock()
	store := NewMemoryStore()
	store.SetClock(clock.Now)

	rc := NewResultCache(store, DefaultTTL)
	rc.SetClock(clock.Now)
	return rc, clock
}

func TestNewResultCache_DefaultTTL(t *testing.T) {
	rc := NewResultCache(NewMemoryStore(), 0)
	if rc.TTL() != DefaultTTL {
		t.Errorf("TTL() = %v, want %v", rc.TTL(), DefaultTTL)
	}
}

func TestNewResultCache_NilStorePanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("NewResultCache should panic with nil store")
		}
	}()
	NewResultCache(nil, time.Minute)
}

func TestResultCache_PutGet(t *testing.T) {
	rc, _ := newTestResultCache(t)
	ctx := context.Background()

	want := testResult{Outcome: "ok", Names: []string{"A", "B"}}
	if err := rc.Put(ctx, "token", want); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	var got testResult
	if err := rc.Get(ctx, "token", &got); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Outcome != want.Outcome || len(got.Names) != 2 {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}
}

func TestResultCache_EmptyListIsAValue(t *testing.T) {
	rc, _ := newTestResultCache(t)
	ctx := context.Background()

	if err := rc.Put(ctx, "token", []string{}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got := []string{"sentinel"}
	if err := rc.Get(ctx, "token", &got); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Get() = %v, want empty list", got)
	}
}

func TestResultCache_Expiry(t *testing.T) {
	rc, clock := newTestResultCache(t)
	ctx := context.Background()

	if err := rc.Put(ctx, "token", testResult{Outcome: "ok"}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	clock.Advance(DefaultTTL)

	var got testResult
	if err := rc.Get(ctx, "token", &got); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get after TTL = %v, want ErrCacheMiss", err)
	}
}

func TestResultCache_PutWithTTL(t *testing.T) {
	rc, clock := newTestResultCache(t)
	ctx := context.Background()

	if err := rc.PutWithTTL(ctx, "short", testResult{}, time.Second); err != nil {
		t.Fatalf("PutWithTTL failed: %v", err)
	}
	clock.Advance(2 * time.Second)

	var got testResult
	if err := rc.Get(ctx, "short", &got); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get after custom TTL = %v, want ErrCacheMiss", err)
	}
}

func TestResultCache_Errors(t *testing.T) {
	rc, _ := newTestResultCache(t)
	ctx := context.Background()

	if err := rc.Put(ctx, "", testResult{}); err == nil {
		t.Error("Put with empty token should fail")
	}

	if err := rc.Put(ctx, "bad", make(chan int)); err == nil {
		t.Error("Put with unencodable value should fail")
	}

	var got testResult
	if err := rc.Get(ctx, "missing", &got); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get(missing) = %v, want ErrCacheMiss", err)
	}

	_ = rc.Put(ctx, "shape", []int{1, 2})
	if err := rc.Get(ctx, "shape", &got); !errors.Is(err, ErrInvalidEntry) {
		t.Errorf("Get into wrong shape = %v, want ErrInvalidEntry", err)
	}
}
