package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestClient(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestCacheHelper_SetGet(t *testing.T) {
	ctx := context.Background()
	helper := NewCacheHelper(newTestClient(t), "quiz:")

	type row struct {
		ID   uint   `json:"id"`
		Name string `json:"name"`
	}

	if err := helper.Set(ctx, "id:1", row{ID: 1, Name: "Chapter Quiz"}, time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	var got row
	if err := helper.Get(ctx, "id:1", &got); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.ID != 1 || got.Name != "Chapter Quiz" {
		t.Errorf("unexpected row: %+v", got)
	}

	if err := helper.Get(ctx, "id:2", &got); err != ErrCacheNotFound {
		t.Errorf("expected ErrCacheNotFound, got %v", err)
	}
}

func TestCacheHelper_CacheOrExecute(t *testing.T) {
	ctx := context.Background()
	helper := NewCacheHelper(newTestClient(t), "progress:")

	// Warm the cache directly, then verify the fetch function is skipped.
	if err := helper.Set(ctx, "student:s1", []int{1, 2, 3}, time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	var dest []int
	err := helper.CacheOrExecute(ctx, "student:s1", &dest, time.Minute, func() (interface{}, error) {
		t.Fatal("fetch must not run on a cache hit")
		return nil, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dest) != 3 {
		t.Errorf("expected cached value, got %v", dest)
	}

	// A miss executes the fetch and fills the destination.
	var missed []int
	err = helper.CacheOrExecute(ctx, "student:s2", &missed, time.Minute, func() (interface{}, error) {
		return []int{7}, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(missed) != 1 || missed[0] != 7 {
		t.Errorf("expected fetched value, got %v", missed)
	}
}

func TestCacheHelper_NilClientDegradesGracefully(t *testing.T) {
	ctx := context.Background()
	helper := NewCacheHelper(nil, "")

	if err := helper.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Errorf("set with nil client should be a no-op, got %v", err)
	}

	var dest string
	if err := helper.Get(ctx, "k", &dest); err != ErrCacheNotAvailable {
		t.Errorf("expected ErrCacheNotAvailable, got %v", err)
	}

	executed := false
	err := helper.CacheOrExecute(ctx, "k", &dest, time.Minute, func() (interface{}, error) {
		executed = true
		return "fresh", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !executed || dest != "fresh" {
		t.Errorf("expected fetch to run, executed=%v dest=%q", executed, dest)
	}
}

func TestInvalidateStudentProgress(t *testing.T) {
	ctx := context.Background()
	cm := NewCacheManager(newTestClient(t))

	if err := cm.Progress.Set(ctx, "student:s1", 1, time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := cm.Progress.Set(ctx, "subject:10", 2, time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := cm.Progress.Set(ctx, "student:s2", 3, time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	if err := cm.InvalidateStudentProgress(ctx, "s1"); err != nil {
		t.Fatalf("invalidate failed: %v", err)
	}

	var v int
	if err := cm.Progress.Get(ctx, "student:s1", &v); err != ErrCacheNotFound {
		t.Errorf("expected student:s1 to be invalidated, got %v", err)
	}
	if err := cm.Progress.Get(ctx, "subject:10", &v); err != ErrCacheNotFound {
		t.Errorf("expected subject roll-ups to be invalidated, got %v", err)
	}
	// Other students keep their cached roll-up.
	if err := cm.Progress.Get(ctx, "student:s2", &v); err != nil {
		t.Errorf("expected student:s2 to survive, got %v", err)
	}
}

func TestInvalidateAttemptCache(t *testing.T) {
	ctx := context.Background()
	cm := NewCacheManager(newTestClient(t))

	if err := cm.Fast.Set(ctx, "attempt:1:s1", 1, time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := cm.Progress.Set(ctx, "student:s1", 1, time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := cm.Progress.Set(ctx, "subject:10", 1, time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	InvalidateAttemptCache(ctx, cm, 1, "s1")

	var v int
	if err := cm.Fast.Get(ctx, "attempt:1:s1", &v); err != ErrCacheNotFound {
		t.Errorf("expected attempt key to be dropped, got %v", err)
	}
	if err := cm.Progress.Get(ctx, "student:s1", &v); err != ErrCacheNotFound {
		t.Errorf("expected student progress to be dropped, got %v", err)
	}
	if err := cm.Progress.Get(ctx, "subject:10", &v); err != ErrCacheNotFound {
		t.Errorf("expected subject roll-ups to be dropped, got %v", err)
	}
}
