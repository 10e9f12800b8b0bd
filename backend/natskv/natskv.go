// Package natskv stores entries in a NATS JetStream key-value bucket.
//
// NATS KV restricts keys to [-/_=.a-zA-Z0-9], so physical keys (which may
// carry "prefix:" namespaces or arbitrary UTF-8) are stored base64url-encoded
// and decoded again by Keys.
package natskv

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/unkn0wn-root/encstore/backend"
)

var (
	ErrNilBucket = errors.New("natskv backend: nil bucket")
	// ErrEmptyKey is returned for "": NATS KV has no empty subject token.
	ErrEmptyKey = errors.New("natskv backend: empty key")
)

var keyEnc = base64.RawURLEncoding

type Config struct {
	Bucket  jetstream.KeyValue
	Timeout time.Duration // per-operation timeout; 0 disables
}

type Backend struct {
	kv      jetstream.KeyValue
	timeout time.Duration
}

var (
	_ backend.Backend = (*Backend)(nil)
	_ backend.Lister  = (*Backend)(nil)
)

func New(cfg Config) (*Backend, error) {
	if cfg.Bucket == nil {
		return nil, ErrNilBucket
	}
	return &Backend{kv: cfg.Bucket, timeout: cfg.Timeout}, nil
}

// Open creates (or updates) the named bucket on js and wraps it.
func Open(ctx context.Context, js jetstream.JetStream, bucket string) (*Backend, error) {
	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{Bucket: bucket})
	if err != nil {
		return nil, fmt.Errorf("natskv: open bucket %s: %w", bucket, err)
	}
	return New(Config{Bucket: kv})
}

// applyTimeout applies the configured timeout to the context if set
func (b *Backend) applyTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.timeout > 0 {
		return context.WithTimeout(ctx, b.timeout)
	}
	return ctx, func() {}
}

func (b *Backend) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, cancel := b.applyTimeout(ctx)
	defer cancel()

	k, err := encodeKey(key)
	if err != nil {
		return "", false, err
	}
	entry, err := b.kv.Get(ctx, k)
	if errors.Is(err, jetstream.ErrKeyNotFound) || errors.Is(err, jetstream.ErrKeyDeleted) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kv get %s: %w", key, err)
	}
	return string(entry.Value()), true, nil
}

// Set ignores SetOptions: TTL in NATS KV is per bucket.
func (b *Backend) Set(ctx context.Context, key, value string, _ backend.SetOptions) error {
	ctx, cancel := b.applyTimeout(ctx)
	defer cancel()

	k, err := encodeKey(key)
	if err != nil {
		return err
	}
	if _, err := b.kv.PutString(ctx, k, value); err != nil {
		return fmt.Errorf("kv put %s: %w", key, err)
	}
	return nil
}

func (b *Backend) Remove(ctx context.Context, key string) error {
	ctx, cancel := b.applyTimeout(ctx)
	defer cancel()

	k, err := encodeKey(key)
	if err != nil {
		return err
	}
	err = b.kv.Delete(ctx, k)
	if err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("kv delete %s: %w", key, err)
	}
	return nil
}

// Clear purges every live key. History of purged keys is dropped by NATS.
func (b *Backend) Clear(ctx context.Context) error {
	raw, err := b.rawKeys(ctx)
	if err != nil {
		return err
	}
	ctx, cancel := b.applyTimeout(ctx)
	defer cancel()
	for _, k := range raw {
		if err := b.kv.Purge(ctx, k); err != nil {
			return fmt.Errorf("kv purge %s: %w", k, err)
		}
	}
	return nil
}

func (b *Backend) Len(ctx context.Context) (int, error) {
	raw, err := b.rawKeys(ctx)
	return len(raw), err
}

func (b *Backend) Keys(ctx context.Context) ([]string, error) {
	raw, err := b.rawKeys(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(raw))
	for _, k := range raw {
		dk, err := decodeKey(k)
		if err != nil {
			// foreign key written by another client; not ours to report
			continue
		}
		out = append(out, dk)
	}
	return out, nil
}

// Close is a no-op: the bucket handle is owned by the caller's connection.
func (b *Backend) Close(context.Context) error { return nil }

func (b *Backend) rawKeys(ctx context.Context) ([]string, error) {
	ctx, cancel := b.applyTimeout(ctx)
	defer cancel()

	keys, err := b.kv.Keys(ctx)
	if errors.Is(err, jetstream.ErrNoKeysFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("kv keys: %w", err)
	}
	return keys, nil
}

func encodeKey(k string) (string, error) {
	if k == "" {
		return "", ErrEmptyKey
	}
	return keyEnc.EncodeToString([]byte(k)), nil
}

func decodeKey(k string) (string, error) {
	b, err := keyEnc.DecodeString(k)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
