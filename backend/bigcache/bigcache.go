package bigcache

import (
	"context"
	"errors"
	"time"

	bc "github.com/allegro/bigcache/v3"

	"github.com/unkn0wn-root/encstore/backend"
)

type Backend struct {
	c *bc.BigCache
}

var (
	_ backend.Backend = (*Backend)(nil)
	_ backend.Lister  = (*Backend)(nil)
)

type Config struct {
	LifeWindow         time.Duration
	CleanWindow        time.Duration
	MaxEntriesInWindow int
	MaxEntrySize       int
	HardMaxCacheSizeMB int // ~ memory limit; 0 = unlimited
}

func New(ctx context.Context, cfg Config) (*Backend, error) {
	conf := bc.DefaultConfig(cfg.LifeWindow)
	if cfg.CleanWindow > 0 {
		conf.CleanWindow = cfg.CleanWindow
	}
	if cfg.MaxEntriesInWindow > 0 {
		conf.MaxEntriesInWindow = cfg.MaxEntriesInWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	conf.Verbose = false
	c, err := bc.New(ctx, conf)
	if err != nil {
		return nil, err
	}
	return &Backend{c: c}, nil
}

func (p *Backend) Get(_ context.Context, key string) (string, bool, error) {
	b, err := p.c.Get(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(b), true, nil
}

func (p *Backend) Set(_ context.Context, key, value string, _ backend.SetOptions) error {
	// BigCache does not support per-entry TTL; uses global LifeWindow.
	return p.c.Set(key, []byte(value))
}

func (p *Backend) Remove(_ context.Context, key string) error {
	err := p.c.Delete(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return nil
	}
	return err
}

func (p *Backend) Clear(_ context.Context) error {
	return p.c.Reset()
}

func (p *Backend) Len(_ context.Context) (int, error) {
	return p.c.Len(), nil
}

// Keys iterates every shard. Order is unspecified.
func (p *Backend) Keys(_ context.Context) ([]string, error) {
	out := make([]string, 0, p.c.Len())
	it := p.c.Iterator()
	for it.SetNext() {
		e, err := it.Value()
		if err != nil {
			// entry vanished between SetNext and Value
			if errors.Is(err, bc.ErrCannotRetrieveEntry) || errors.Is(err, bc.ErrInvalidIteratorState) {
				continue
			}
			return nil, err
		}
		out = append(out, e.Key())
	}
	return out, nil
}

func (p *Backend) Close(_ context.Context) error {
	return p.c.Close()
}
