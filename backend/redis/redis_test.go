package redis

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"
	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/encstore/backend"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	r, err := New(Config{Client: client, CloseClient: true, ScanCount: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = r.Close(context.Background()) })
	return r, mr
}

func TestNewRequiresClient(t *testing.T) {
	if _, err := New(Config{}); err != ErrNilClient {
		t.Fatalf("expected ErrNilClient, got %v", err)
	}
}

func TestRedisRoundTrip(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRedis(t)

	if _, ok, err := r.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("Get miss: ok=%v err=%v", ok, err)
	}
	if err := r.Set(ctx, "p:a", "cipher", backend.SetOptions{}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, ok, err := r.Get(ctx, "p:a")
	if err != nil || !ok || v != "cipher" {
		t.Fatalf("Get: v=%q ok=%v err=%v", v, ok, err)
	}
	if err := r.Remove(ctx, "p:a"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok, _ := r.Get(ctx, "p:a"); ok {
		t.Fatalf("key should be gone after Remove")
	}
}

func TestRedisTTLPassesThrough(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedis(t)

	if err := r.Set(ctx, "ttl", "v", backend.SetOptions{TTL: time.Minute}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := mr.TTL("ttl"); got != time.Minute {
		t.Fatalf("TTL = %v want 1m", got)
	}
	mr.FastForward(2 * time.Minute)
	if _, ok, _ := r.Get(ctx, "ttl"); ok {
		t.Fatalf("entry should have expired")
	}
}

func TestRedisKeysLenClear(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRedis(t)

	want := []string{"a", "b", "c", "d", "e"}
	for _, k := range want {
		if err := r.Set(ctx, k, "v", backend.SetOptions{}); err != nil {
			t.Fatalf("Set %s: %v", k, err)
		}
	}

	keys, err := r.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	sort.Strings(keys)
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	if n, err := r.Len(ctx); err != nil || n != len(want) {
		t.Fatalf("Len = %d err=%v", n, err)
	}

	if err := r.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n, _ := r.Len(ctx); n != 0 {
		t.Fatalf("Len after Clear = %d", n)
	}
}
