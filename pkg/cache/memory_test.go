package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryCacheSetGet(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "facts:320193", []byte(`{"cik":320193}`), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := mc.Get(ctx, "facts:320193")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != `{"cik":320193}` {
		t.Fatalf("unexpected value %q", got)
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()

	_, err := mc.Get(context.Background(), "absent")
	if !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "k", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	if _, err := mc.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected expiry miss, got %v", err)
	}
}

func TestMemoryCacheDeleteAndExists(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	_ = mc.Set(ctx, "k", []byte("v"), time.Minute)
	if ok, _ := mc.Exists(ctx, "k"); !ok {
		t.Fatalf("expected key to exist")
	}
	if err := mc.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if ok, _ := mc.Exists(ctx, "k"); ok {
		t.Fatalf("expected key gone")
	}
}

func TestMemoryCacheLRUEviction(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()
	ctx := context.Background()

	_ = mc.Set(ctx, "a", []byte("1"), time.Minute)
	time.Sleep(time.Millisecond)
	_ = mc.Set(ctx, "b", []byte("2"), time.Minute)
	time.Sleep(time.Millisecond)
	_, _ = mc.Get(ctx, "a") // touch a so b is the LRU entry
	time.Sleep(time.Millisecond)
	_ = mc.Set(ctx, "c", []byte("3"), time.Minute)

	if ok, _ := mc.Exists(ctx, "b"); ok {
		t.Fatalf("expected b evicted")
	}
	if ok, _ := mc.Exists(ctx, "a"); !ok {
		t.Fatalf("expected a retained")
	}
}
