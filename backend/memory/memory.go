// Package memory is an in-process backend with Web Storage semantics:
// keys keep their insertion order, so Key(i) and Keys are stable between
// writes. Useful as the ambient store in tests and short-lived tools.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/unkn0wn-root/encstore/backend"
)

type entry struct {
	v   string
	exp time.Time // zero => no TTL
}

// Store keeps entries in memory.
// The zero value is NOT ready to use. Construct with New.
type Store struct {
	mu    sync.RWMutex
	m     map[string]entry
	order []string

	now func() time.Time
}

var (
	_ backend.Backend = (*Store)(nil)
	_ backend.Lister  = (*Store)(nil)
	_ backend.Indexer = (*Store)(nil)
)

func New() *Store {
	return &Store{m: make(map[string]entry), now: time.Now}
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	e, ok := s.m[key]
	s.mu.RUnlock()
	if !ok {
		return "", false, nil
	}
	if s.expired(e) {
		s.mu.Lock()
		// the key may have been rewritten since the read lock was released
		if cur, ok := s.m[key]; ok && s.expired(cur) {
			s.deleteLocked(key)
		}
		s.mu.Unlock()
		return "", false, nil
	}
	return e.v, true, nil
}

func (s *Store) Set(_ context.Context, key, value string, opts backend.SetOptions) error {
	var exp time.Time
	if opts.TTL > 0 {
		exp = s.now().Add(opts.TTL)
	}
	s.mu.Lock()
	if _, ok := s.m[key]; !ok {
		s.order = append(s.order, key)
	}
	s.m[key] = entry{v: value, exp: exp}
	s.mu.Unlock()
	return nil
}

func (s *Store) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	s.deleteLocked(key)
	s.mu.Unlock()
	return nil
}

func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	s.m = make(map[string]entry)
	s.order = nil
	s.mu.Unlock()
	return nil
}

func (s *Store) Len(ctx context.Context) (int, error) {
	keys, err := s.Keys(ctx)
	return len(keys), err
}

// Keys returns live keys in insertion order. Expired entries are pruned.
func (s *Store) Keys(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out, nil
}

func (s *Store) Key(ctx context.Context, index int) (string, bool, error) {
	keys, err := s.Keys(ctx)
	if err != nil {
		return "", false, err
	}
	if index < 0 || index >= len(keys) {
		return "", false, nil
	}
	return keys[index], true, nil
}

func (s *Store) Close(_ context.Context) error { return nil }

func (s *Store) expired(e entry) bool {
	return !e.exp.IsZero() && s.now().After(e.exp)
}

func (s *Store) pruneLocked() {
	for k, e := range s.m {
		if s.expired(e) {
			s.deleteLocked(k)
		}
	}
}

func (s *Store) deleteLocked(key string) {
	if _, ok := s.m[key]; !ok {
		return
	}
	delete(s.m, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}
