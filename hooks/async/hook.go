// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    ExpiredEvery:  10, // sample logs: ~every 10th expiry
//	    ExtendedEvery: 100,
//	})
//
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	cache, _ := sessioncache.New(sessioncache.Options{
//	    Namespace: "web",
//	    Conn:      conn,
//	    Hooks:     hooks, // or `raw` if you don’t want async
//	})
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/sessioncache"
)

// Hooks forwards events to inner on a small worker pool. Events that do not
// fit in the queue are dropped and counted.
type Hooks struct {
	inner   sessioncache.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

var _ sessioncache.Hooks = (*Hooks)(nil)

func New(inner sessioncache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers. Events raised after
// Close are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		close(h.q)
		h.mu.Unlock()
		h.wg.Wait()
	})
}

// Dropped reports how many events were discarded.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		h.dropped.Add(1)
		return
	}
	select {
	case h.q <- f:
	default: // drop
		h.dropped.Add(1)
	}
}

func (h *Hooks) Expired(k string)         { h.try(func() { h.inner.Expired(k) }) }
func (h *Hooks) Stale(k string)           { h.try(func() { h.inner.Stale(k) }) }
func (h *Hooks) SlidingExtended(k string) { h.try(func() { h.inner.SlidingExtended(k) }) }
func (h *Hooks) MalformedRecord(k string, n int) {
	h.try(func() { h.inner.MalformedRecord(k, n) })
}
func (h *Hooks) BackendError(op, k string, err error) {
	h.try(func() { h.inner.BackendError(op, k, err) })
}
