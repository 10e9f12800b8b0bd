package redis

import (
	"context"
	"errors"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/encstore/backend"
)

var ErrNilClient = errors.New("redis backend: nil client")

const defaultScanCount = 512

// Redis stores entries as plain redis strings in the client's selected DB.
// Clear and Len operate on the whole DB, the way Web Storage clear/length
// operate on the whole origin store; give encstore a DB of its own.
type Redis struct {
	rdb         goredis.UniversalClient
	closeClient bool
	scanCount   int64
}

var (
	_ backend.Backend = (*Redis)(nil)
	_ backend.Lister  = (*Redis)(nil)
)

type Config struct {
	Client      goredis.UniversalClient
	CloseClient bool  // set true only if this backend exclusively owns the client
	ScanCount   int64 // SCAN page hint; 0 => 512
}

func New(cfg Config) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	sc := cfg.ScanCount
	if sc <= 0 {
		sc = defaultScanCount
	}
	return &Redis{rdb: cfg.Client, closeClient: cfg.CloseClient, scanCount: sc}, nil
}

func (p *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	s, err := p.rdb.Get(ctx, key).Result()
	if err == goredis.Nil {
		return "", false, nil // miss
	}
	if err != nil {
		return "", false, err // transport/server error
	}
	return s, true, nil
}

func (p *Redis) Set(ctx context.Context, key, value string, opts backend.SetOptions) error {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 0 // treat non-positive TTLs as "no expiry" per backend contract
	}
	return p.rdb.Set(ctx, key, value, ttl).Err()
}

func (p *Redis) Remove(ctx context.Context, key string) error {
	return p.rdb.Del(ctx, key).Err()
}

func (p *Redis) Clear(ctx context.Context) error {
	return p.rdb.FlushDB(ctx).Err()
}

func (p *Redis) Len(ctx context.Context) (int, error) {
	n, err := p.rdb.DBSize(ctx).Result()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Keys walks the DB with SCAN. Order is whatever redis yields.
func (p *Redis) Keys(ctx context.Context) ([]string, error) {
	var (
		out    []string
		cursor uint64
	)
	for {
		keys, next, err := p.rdb.Scan(ctx, cursor, "*", p.scanCount).Result()
		if err != nil {
			return nil, err
		}
		out = append(out, keys...)
		if next == 0 {
			return out, nil
		}
		cursor = next
	}
}

// Close releases the underlying redis client only when this backend owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (p *Redis) Close(context.Context) error {
	if p.closeClient {
		if err := p.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}
