package natskv

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/unkn0wn-root/encstore/backend"
)

func runJetStream(t *testing.T) jetstream.JetStream {
	t.Helper()
	ns, err := server.NewServer(&server.Options{
		Host:      "127.0.0.1",
		Port:      -1,
		JetStream: true,
		StoreDir:  t.TempDir(),
		NoLog:     true,
		NoSigs:    true,
	})
	if err != nil {
		t.Fatalf("nats server: %v", err)
	}
	go ns.Start()
	if !ns.ReadyForConnections(5 * time.Second) {
		t.Fatalf("nats server not ready")
	}
	t.Cleanup(ns.Shutdown)

	nc, err := nats.Connect(ns.ClientURL())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(nc.Close)

	js, err := jetstream.New(nc)
	if err != nil {
		t.Fatalf("jetstream: %v", err)
	}
	return js
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(Config{}); err != ErrNilBucket {
		t.Fatalf("expected ErrNilBucket, got %v", err)
	}
}

func TestKeyEscapingRoundTrip(t *testing.T) {
	for _, k := range []string{"plain", "p:a", "user@example.com", "ключ", "a b/c"} {
		enc, err := encodeKey(k)
		if err != nil {
			t.Fatalf("encodeKey(%q): %v", k, err)
		}
		got, err := decodeKey(enc)
		if err != nil || got != k {
			t.Fatalf("round trip %q -> %q (%v)", k, got, err)
		}
	}
}

func TestEmptyKeyRejected(t *testing.T) {
	ctx := context.Background()
	js := runJetStream(t)
	b, err := Open(ctx, js, "encstore_empty")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := b.Set(ctx, "", "v", backend.SetOptions{}); !errors.Is(err, ErrEmptyKey) {
		t.Fatalf("Set(\"\"): expected ErrEmptyKey, got %v", err)
	}
	if _, _, err := b.Get(ctx, ""); !errors.Is(err, ErrEmptyKey) {
		t.Fatalf("Get(\"\"): expected ErrEmptyKey, got %v", err)
	}
	if err := b.Remove(ctx, ""); !errors.Is(err, ErrEmptyKey) {
		t.Fatalf("Remove(\"\"): expected ErrEmptyKey, got %v", err)
	}
}

func TestNatsKVBackend(t *testing.T) {
	ctx := context.Background()
	js := runJetStream(t)

	b, err := Open(ctx, js, "encstore_test")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	b.timeout = 5 * time.Second

	if keys, err := b.Keys(ctx); err != nil || len(keys) != 0 {
		t.Fatalf("empty bucket keys=%v err=%v", keys, err)
	}
	if _, ok, err := b.Get(ctx, "p:missing"); err != nil || ok {
		t.Fatalf("Get miss: ok=%v err=%v", ok, err)
	}

	for _, k := range []string{"p:a", "p:b", "other"} {
		if err := b.Set(ctx, k, "v-"+k, backend.SetOptions{}); err != nil {
			t.Fatalf("Set %s: %v", k, err)
		}
	}
	if v, ok, err := b.Get(ctx, "p:a"); err != nil || !ok || v != "v-p:a" {
		t.Fatalf("Get: v=%q ok=%v err=%v", v, ok, err)
	}

	keys, err := b.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	sort.Strings(keys)
	if diff := cmp.Diff([]string{"other", "p:a", "p:b"}, keys); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}

	if err := b.Remove(ctx, "p:a"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok, _ := b.Get(ctx, "p:a"); ok {
		t.Fatalf("removed key still readable")
	}
	if n, _ := b.Len(ctx); n != 2 {
		t.Fatalf("Len = %d want 2", n)
	}

	if err := b.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n, _ := b.Len(ctx); n != 0 {
		t.Fatalf("Len after Clear = %d", n)
	}
}
