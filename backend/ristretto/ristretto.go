package ristretto

import (
	"context"
	"errors"
	"sort"
	"sync"

	rc "github.com/dgraph-io/ristretto"

	"github.com/unkn0wn-root/encstore/backend"
)

// Backend keeps values in a ristretto cache. Ristretto cannot enumerate its
// keys, so the backend tracks written keys on the side and drops them lazily
// once the cache has evicted or expired the entry.
type Backend struct {
	c *rc.Cache

	mu   sync.Mutex
	keys map[string]struct{}
}

var (
	_ backend.Backend = (*Backend)(nil)
	_ backend.Lister  = (*Backend)(nil)
)

type Config struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
	Metrics     bool
	// Cost in Ristretto is provided by the caller (SetOptions.Cost, default 1).
}

func New(cfg Config) (*Backend, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, errors.New("ristretto: invalid config")
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}
	return &Backend{c: c, keys: make(map[string]struct{})}, nil
}

func (p *Backend) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := p.c.Get(key)
	if !ok {
		p.forget(key)
		return "", false, nil
	}
	s, ok := v.(string)
	if !ok {
		// self-heal: drop unexpected entry shape
		p.c.Del(key)
		p.forget(key)
		return "", false, nil
	}
	return s, true, nil
}

func (p *Backend) Set(_ context.Context, key, value string, opts backend.SetOptions) error {
	cost := opts.Cost
	if cost <= 0 {
		cost = 1
	}
	ttl := opts.TTL
	if ttl < 0 {
		ttl = 0
	}
	if !p.c.SetWithTTL(key, value, cost, ttl) {
		return backend.ErrRejected
	}
	// Sets are buffered; wait so the next Get observes this write.
	p.c.Wait()
	p.mu.Lock()
	p.keys[key] = struct{}{}
	p.mu.Unlock()
	return nil
}

func (p *Backend) Remove(_ context.Context, key string) error {
	p.c.Del(key)
	p.c.Wait()
	p.forget(key)
	return nil
}

func (p *Backend) Clear(_ context.Context) error {
	p.c.Clear()
	p.mu.Lock()
	p.keys = make(map[string]struct{})
	p.mu.Unlock()
	return nil
}

func (p *Backend) Len(ctx context.Context) (int, error) {
	keys, err := p.Keys(ctx)
	return len(keys), err
}

// Keys returns tracked keys still present in the cache, sorted.
func (p *Backend) Keys(_ context.Context) ([]string, error) {
	p.mu.Lock()
	candidates := make([]string, 0, len(p.keys))
	for k := range p.keys {
		candidates = append(candidates, k)
	}
	p.mu.Unlock()

	out := candidates[:0]
	for _, k := range candidates {
		if _, ok := p.c.Get(k); ok {
			out = append(out, k)
		} else {
			p.forget(k)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (p *Backend) Close(_ context.Context) error {
	p.c.Wait()
	p.c.Close()
	return nil
}

// Helper to expose metrics if desired by the application (not part of backend.Backend).
func (p *Backend) Metrics() *rc.Metrics { return p.c.Metrics }

func (p *Backend) forget(key string) {
	p.mu.Lock()
	delete(p.keys, key)
	p.mu.Unlock()
}
