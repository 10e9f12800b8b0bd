// Package asyncnotify moves event delivery off the calling goroutine.
//
// usage:
//
//	raw := slognotify.New(slog.Default(), slognotify.Options{ReadEvery: 10})
//	sink := asyncnotify.New(raw.Handle, 1, 1000) // 1 worker; queue 1000 events
//	defer sink.Close()
//
//	st, _ := encstore.New(secret, encstore.Options{
//	    Backend:       be,
//	    NotifyHandler: sink.Handle, // or raw.Handle if you don't want async
//	})
package asyncnotify

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/encstore"
)

// Sink queues events for a pool of workers. When the queue is full the
// event is dropped and counted.
type Sink struct {
	inner encstore.NotifyHandler
	q     chan encstore.ChangeEvent
	wg    sync.WaitGroup

	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

func New(inner encstore.NotifyHandler, workers, qlen int) *Sink {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	s := &Sink{inner: inner, q: make(chan encstore.ChangeEvent, qlen)}
	s.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer s.wg.Done()
			for ev := range s.q {
				if s.inner != nil {
					s.inner(ev)
				}
			}
		}()
	}
	return s
}

// Handle is an encstore.NotifyHandler. It never blocks.
func (s *Sink) Handle(ev encstore.ChangeEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.dropped.Add(1)
		return
	}
	select {
	case s.q <- ev:
	default: // drop
		s.dropped.Add(1)
	}
}

// Dropped returns how many events were discarded.
func (s *Sink) Dropped() uint64 { return s.dropped.Load() }

// Close stops accepting events and waits for queued ones to be delivered.
func (s *Sink) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.q)
	s.mu.Unlock()
	s.wg.Wait()
}
