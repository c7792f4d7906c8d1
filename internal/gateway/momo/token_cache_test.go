package momo

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) (*RedisTokenCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisTokenCache(rdb), mr
}

func TestRedisTokenCache_MissReturnsEmpty(t *testing.T) {
	cache, _ := newTestCache(t)

	tok, err := cache.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if tok != "" {
		t.Fatalf("cold cache must be empty, got %q", tok)
	}
}

func TestRedisTokenCache_SetGetWithTTL(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	if err := cache.Set(ctx, "tok-abc", 30*time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}
	tok, err := cache.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if tok != "tok-abc" {
		t.Fatalf("want tok-abc, got %q", tok)
	}

	// Token disappears once the TTL elapses.
	mr.FastForward(31 * time.Second)
	tok, err = cache.Get(ctx)
	if err != nil {
		t.Fatalf("Get after expiry: %v", err)
	}
	if tok != "" {
		t.Fatalf("expired token still served: %q", tok)
	}
}
