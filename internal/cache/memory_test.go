package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	if _, err := c.Get(ctx, "missing"); err != ErrCacheMiss {
		t.Errorf("Get(missing) = %v, want ErrCacheMiss", err)
	}

	if err := c.Set(ctx, "k", []byte("value"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "value" {
		t.Errorf("Get = %q, want value", got)
	}

	// Mutating the returned slice must not affect the cached copy.
	got[0] = 'X'
	again, _ := c.Get(ctx, "k")
	if string(again) != "value" {
		t.Errorf("cached value mutated through returned slice: %q", again)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := c.Get(ctx, "k"); err != ErrCacheMiss {
		t.Errorf("Get after delete = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), -time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := c.Get(ctx, "k"); err != ErrCacheMiss {
		t.Errorf("expired entry should miss, got %v", err)
	}
}

func TestMemoryCacheClear(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, "a", []byte("1"), time.Minute)
	c.Set(ctx, "b", []byte("2"), time.Minute)

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := c.Get(ctx, "a"); err != ErrCacheMiss {
		t.Errorf("Get(a) after clear = %v", err)
	}
}
