package encstore

import (
	"context"
	"fmt"
	"reflect"
	"unicode/utf8"

	"github.com/unkn0wn-root/encstore/backend"
	"github.com/unkn0wn-root/encstore/codec"
	"github.com/unkn0wn-root/encstore/crypt"
	"github.com/unkn0wn-root/encstore/internal/keys"
)

type storage struct {
	secret    string
	ns        keys.Namespacer
	be        backend.Backend // nil => every backend call is a no-op
	enc       crypt.Provider
	codec     codec.Codec
	notify    NotifyHandler
	log       Logger
	noEncrypt bool
	stateMgmt bool
}

// batch is created by each multi-item call and threaded through the
// single-item calls it makes. A non-nil batch suppresses per-item events and
// collects what the aggregate event reports.
type batch struct {
	keys   []string
	values []string // serialized values (setMultiple)
	items  *Items   // results (getMultiple)
}

func newStorage(secret string, opts Options) (*storage, error) {
	if n := utf8.RuneCountInString(secret); n < MinSecretLength {
		return nil, &InvalidSecretError{Length: n}
	}

	alg := coalesce(opts.Algorithm, crypt.AES)
	enc, err := crypt.New(alg, secret, crypt.Params{Iterations: opts.KDFIterations})
	if err != nil {
		return nil, fmt.Errorf("encstore: %w", err)
	}

	s := &storage{
		secret:    secret,
		ns:        keys.New(opts.Prefix),
		be:        resolveBackend(opts),
		enc:       enc,
		notify:    opts.NotifyHandler,
		noEncrypt: opts.DoNotEncryptValues,
		stateMgmt: opts.StateManagement,
	}

	// defaults
	s.log = coalesce[Logger](opts.Logger, NopLogger{})
	s.codec = coalesce[codec.Codec](opts.Codec, codec.JSON{})

	if s.be == nil {
		s.unbound(opts.BackendKind)
	}
	return s, nil
}

// coalesce picks def for an unset option.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}

func (s *storage) Prefix() string             { return s.ns.Prefix() }
func (s *storage) Algorithm() crypt.Algorithm { return s.enc.Algorithm() }
func (s *storage) Bound() bool                { return s.be != nil }

func (s *storage) SetItem(ctx context.Context, key string, value any, opts ...CallOption) error {
	return s.setItem(ctx, nil, key, value, collect(opts))
}

func (s *storage) GetItem(ctx context.Context, key string, opts ...CallOption) (any, bool, error) {
	return s.getItem(ctx, nil, key, collect(opts))
}

func (s *storage) RemoveItem(ctx context.Context, key string) error {
	return s.removeItem(ctx, nil, key)
}

func (s *storage) setItem(ctx context.Context, b *batch, key string, value any, co callOptions) error {
	if s.be == nil {
		s.skipped("set", key)
		return nil
	}
	serialized, err := s.codec.Encode(value)
	if err != nil {
		return fmt.Errorf("encstore: encode %q: %w", key, err)
	}
	payload := serialized
	if !s.noEncrypt && !co.noEncrypt {
		if payload, err = s.enc.Encrypt(serialized); err != nil {
			return fmt.Errorf("encstore: encrypt %q: %w", key, err)
		}
	}
	if err := s.be.Set(ctx, s.ns.Physical(key), payload, co.backendOpt); err != nil {
		return err
	}

	if b != nil {
		b.keys = append(b.keys, key)
		b.values = append(b.values, serialized)
		return nil
	}
	s.emit(ChangeEvent{Type: ChangeSet, Key: key, Value: serialized})
	return nil
}

func (s *storage) getItem(ctx context.Context, b *batch, key string, co callOptions) (any, bool, error) {
	if s.be == nil {
		s.skipped("get", key)
		if b != nil {
			b.items.put(key, nil, false)
		}
		return nil, false, nil
	}
	plain, ok, err := s.fetch(ctx, key, co)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		s.gotItem(b, key, nil, false)
		return nil, false, nil
	}

	var out any
	if s.stateMgmt && b == nil {
		out = plain
	} else {
		out = s.decodeLenient(key, plain)
	}
	s.gotItem(b, key, out, true)
	return out, true, nil
}

func (s *storage) gotItem(b *batch, key string, value any, found bool) {
	if b != nil {
		b.items.put(key, value, found)
		return
	}
	s.emit(ChangeEvent{Type: ChangeGet, Key: key, Value: value})
}

// fetch reads and decrypts one payload. Missing and empty values are both
// reported as not found.
func (s *storage) fetch(ctx context.Context, key string, co callOptions) (string, bool, error) {
	raw, ok, err := s.be.Get(ctx, s.ns.Physical(key))
	if err != nil {
		return "", false, err
	}
	if !ok || raw == "" {
		return "", false, nil
	}
	if s.noEncrypt || co.noDecrypt {
		return raw, true, nil
	}
	plain, err := s.enc.Decrypt(raw)
	if err != nil {
		return "", false, fmt.Errorf("encstore: decrypt %q: %w", key, err)
	}
	return plain, true, nil
}

func (s *storage) decodeLenient(key, plain string) any {
	v, err := s.codec.Decode(plain)
	if err != nil {
		s.undecodable(key, err)
		return plain
	}
	return v
}

func (s *storage) GetItemInto(ctx context.Context, key string, dst any, opts ...CallOption) (bool, error) {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return false, fmt.Errorf("encstore: GetItemInto needs a non-nil pointer, got %T", dst)
	}
	if s.be == nil {
		s.skipped("get", key)
		return false, nil
	}
	plain, ok, err := s.fetch(ctx, key, collect(opts))
	if err != nil {
		return false, err
	}
	if !ok {
		s.emit(ChangeEvent{Type: ChangeGet, Key: key})
		return false, nil
	}

	if err := s.codec.DecodeInto(plain, dst); err != nil {
		// raw strings are stored verbatim; hand them to string-shaped targets
		switch d := dst.(type) {
		case *string:
			*d = plain
		case *any:
			*d = plain
		default:
			return false, fmt.Errorf("encstore: decode %q: %w", key, err)
		}
	}
	s.emit(ChangeEvent{Type: ChangeGet, Key: key, Value: rv.Elem().Interface()})
	return true, nil
}

func (s *storage) removeItem(ctx context.Context, b *batch, key string) error {
	if s.be == nil {
		s.skipped("remove", key)
		return nil
	}
	if err := s.be.Remove(ctx, s.ns.Physical(key)); err != nil {
		return err
	}
	if b != nil {
		b.keys = append(b.keys, key)
		return nil
	}
	s.emit(ChangeEvent{Type: ChangeRemove, Key: key})
	return nil
}

func (s *storage) SetMultipleItems(ctx context.Context, entries []Entry, opts ...CallOption) error {
	if s.be == nil {
		s.skipped("setMultiple", "")
		return nil
	}
	co := collect(opts)
	b := &batch{
		keys:   make([]string, 0, len(entries)),
		values: make([]string, 0, len(entries)),
	}
	for _, e := range entries {
		eo := co
		if e.Options != nil {
			eo.backendOpt = *e.Options
		}
		if err := s.setItem(ctx, b, e.Key, e.Value, eo); err != nil {
			return err
		}
	}
	s.emit(ChangeEvent{Type: ChangeSetMultiple, Keys: b.keys, Value: b.values})
	return nil
}

func (s *storage) GetMultipleItems(ctx context.Context, keys []string, opts ...CallOption) (*Items, error) {
	co := collect(opts)
	b := &batch{items: newItems(len(keys))}
	for _, k := range keys {
		if _, _, err := s.getItem(ctx, b, k, co); err != nil {
			return nil, err
		}
	}
	if s.be != nil {
		s.emit(ChangeEvent{Type: ChangeGetMultiple, Keys: append([]string(nil), keys...), Value: b.items})
	}
	return b.items, nil
}

func (s *storage) RemoveMultipleItems(ctx context.Context, keys []string) error {
	if s.be == nil {
		s.skipped("removeMultiple", "")
		return nil
	}
	b := &batch{keys: make([]string, 0, len(keys))}
	for _, k := range keys {
		if err := s.removeItem(ctx, b, k); err != nil {
			return err
		}
	}
	s.emit(ChangeEvent{Type: ChangeRemoveMultiple, Keys: b.keys})
	return nil
}

func (s *storage) KeysFromPattern(ctx context.Context, p Pattern, opts ...CallOption) ([]string, error) {
	out := []string{}
	if s.be == nil {
		s.skipped("keysFromPattern", p.String())
		return out, nil
	}
	all, err := backend.Keys(ctx, s.be)
	if err != nil {
		return nil, err
	}
	exact := collect(opts).exact
	for _, k := range all {
		if s.selects(p, k, exact) {
			out = append(out, s.ns.Strip(k))
		}
	}
	return out, nil
}

// selects applies the pattern filter to physical key k.
func (s *storage) selects(p Pattern, k string, exact bool) bool {
	if exact {
		lit, ok := p.Literal()
		return ok && k == s.ns.Physical(lit)
	}
	return p.match(k) && s.admits(k)
}

// admits is the namespace predicate of the pattern filter. Keys outside the
// namespace are admitted as well; the prefix only decides what Strip removes.
func (s *storage) admits(k string) bool {
	return (s.ns.Prefix() != "" && s.ns.Includes(k)) || true
}

func (s *storage) GetItemFromPattern(ctx context.Context, p Pattern, opts ...CallOption) (any, bool, error) {
	matched, err := s.KeysFromPattern(ctx, p, opts...)
	if err != nil || len(matched) == 0 {
		return nil, false, err
	}
	co := collect(opts)
	if co.single {
		return s.getItem(ctx, nil, matched[0], co)
	}
	items, err := s.GetMultipleItems(ctx, matched, opts...)
	if err != nil {
		return nil, false, err
	}
	return items, true, nil
}

func (s *storage) RemoveItemFromPattern(ctx context.Context, p Pattern, opts ...CallOption) error {
	matched, err := s.KeysFromPattern(ctx, p, opts...)
	if err != nil {
		return err
	}
	if len(matched) == 1 {
		return s.RemoveItem(ctx, matched[0])
	}
	return s.RemoveMultipleItems(ctx, matched)
}

func (s *storage) Length(ctx context.Context) (int, error) {
	if s.be == nil {
		s.skipped("length", "")
		return 0, nil
	}
	n, err := s.be.Len(ctx)
	if err != nil {
		return 0, err
	}
	s.emit(ChangeEvent{Type: ChangeLength, Value: n})
	return n, nil
}

func (s *storage) Key(ctx context.Context, index int) (string, bool, error) {
	if s.be == nil {
		s.skipped("key", "")
		return "", false, nil
	}
	k, ok, err := s.keyAt(ctx, index)
	if err != nil {
		return "", false, err
	}
	ev := ChangeEvent{Type: ChangeKey, Index: index}
	if ok {
		ev.Value = k
	}
	s.emit(ev)
	return k, ok, nil
}

// keyAt prefers the enumerated key list and falls back to the backend's
// positional primitive when the list has no entry at index.
func (s *storage) keyAt(ctx context.Context, index int) (string, bool, error) {
	if l, ok := s.be.(backend.Lister); ok {
		all, err := l.Keys(ctx)
		if err != nil {
			return "", false, err
		}
		if index >= 0 && index < len(all) {
			return all[index], true, nil
		}
	}
	if ix, ok := s.be.(backend.Indexer); ok {
		return ix.Key(ctx, index)
	}
	return "", false, nil
}

func (s *storage) Clear(ctx context.Context) error {
	if s.be == nil {
		s.skipped("clear", "")
		return nil
	}
	if err := s.be.Clear(ctx); err != nil {
		return err
	}
	s.emit(ChangeEvent{Type: ChangeClear})
	return nil
}

func (s *storage) EncryptValue(v any) (string, error) {
	serialized, err := codec.EncodeValue(s.codec, v)
	if err != nil {
		return "", fmt.Errorf("encstore: encode: %w", err)
	}
	return s.enc.Encrypt(serialized)
}

func (s *storage) DecryptValue(payload string) (any, error) {
	plain, err := s.enc.Decrypt(payload)
	if err != nil {
		return nil, err
	}
	v, err := s.codec.Decode(plain)
	if err != nil {
		return nil, fmt.Errorf("encstore: decode: %w", err)
	}
	return v, nil
}

func (s *storage) DecryptValueInto(payload string, dst any) error {
	plain, err := s.enc.Decrypt(payload)
	if err != nil {
		return err
	}
	if err := s.codec.DecodeInto(plain, dst); err != nil {
		return fmt.Errorf("encstore: decode: %w", err)
	}
	return nil
}

func (s *storage) EncryptString(v string) (string, error) { return s.enc.Encrypt(v) }
func (s *storage) DecryptString(v string) (string, error) { return s.enc.Decrypt(v) }

func (s *storage) Hash(value string) string    { return crypt.Hash(value, s.secret) }
func (s *storage) MD5Hash(value string) string { return crypt.MD5Hash(value, s.secret) }

func (s *storage) emit(ev ChangeEvent) {
	if s.notify != nil {
		s.notify(ev)
	}
}
