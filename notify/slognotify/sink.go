package slognotify

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/encstore"
)

type Options struct {
	// Sampling for read events (get, getMultiple, length, key); 0/1 = log all.
	ReadEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

// Sink logs change events. Values are never logged, only their count.
type Sink struct {
	l    *slog.Logger
	opts Options

	readCtr atomic.Uint64
}

func New(l *slog.Logger, opts Options) *Sink {
	return &Sink{l: l, opts: opts}
}

func (s *Sink) redact(k string) string {
	if s.opts.Redact != nil {
		return s.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

// Handle is an encstore.NotifyHandler.
func (s *Sink) Handle(ev encstore.ChangeEvent) {
	if s.l == nil {
		return
	}
	msg := "encstore." + string(ev.Type)

	switch ev.Type {
	case encstore.ChangeSet, encstore.ChangeRemove:
		s.l.Info(msg, "key", s.redact(ev.Key))
	case encstore.ChangeSetMultiple, encstore.ChangeRemoveMultiple:
		s.l.Info(msg, "count", len(ev.Keys))
	case encstore.ChangeClear:
		s.l.Warn(msg)
	case encstore.ChangeGet:
		if sample(s.opts.ReadEvery, &s.readCtr) {
			s.l.Debug(msg, "key", s.redact(ev.Key), "hit", ev.Value != nil)
		}
	case encstore.ChangeGetMultiple:
		if sample(s.opts.ReadEvery, &s.readCtr) {
			s.l.Debug(msg, "count", len(ev.Keys))
		}
	case encstore.ChangeLength:
		if sample(s.opts.ReadEvery, &s.readCtr) {
			s.l.Debug(msg, "length", ev.Value)
		}
	case encstore.ChangeKey:
		if sample(s.opts.ReadEvery, &s.readCtr) {
			s.l.Debug(msg, "index", ev.Index, "hit", ev.Value != nil)
		}
	default:
		s.l.Warn("encstore.unknown_event", "type", string(ev.Type))
	}
}
