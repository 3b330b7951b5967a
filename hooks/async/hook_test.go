package asynchook

import (
	"sync"
	"testing"

	"github.com/unkn0wn-root/sessioncache"
)

type countHooks struct {
	sessioncache.NopHooks
	mu    sync.Mutex
	calls map[string]int
	block chan struct{}
}

func (h *countHooks) inc(name string) {
	if h.block != nil {
		<-h.block
	}
	h.mu.Lock()
	h.calls[name]++
	h.mu.Unlock()
}

func (h *countHooks) Expired(string)                     { h.inc("expired") }
func (h *countHooks) Stale(string)                       { h.inc("stale") }
func (h *countHooks) SlidingExtended(string)             { h.inc("extended") }
func (h *countHooks) MalformedRecord(string, int)        { h.inc("malformed") }
func (h *countHooks) BackendError(string, string, error) { h.inc("backend") }

func TestForwardsAndDrainsOnClose(t *testing.T) {
	inner := &countHooks{calls: map[string]int{}}
	h := New(inner, 2, 16)

	h.Expired("k")
	h.Stale("k")
	h.SlidingExtended("k")
	h.MalformedRecord("k", 1)
	h.BackendError("get", "k", nil)
	h.Close()

	for _, name := range []string{"expired", "stale", "extended", "malformed", "backend"} {
		if inner.calls[name] != 1 {
			t.Fatalf("%s forwarded %d times", name, inner.calls[name])
		}
	}
}

func TestDropsWhenFullAndAfterClose(t *testing.T) {
	inner := &countHooks{calls: map[string]int{}, block: make(chan struct{})}
	h := New(inner, 1, 1)

	// worker parks on the first event; one more fits the queue; the rest drop
	for i := 0; i < 10; i++ {
		h.Expired("k")
	}
	close(inner.block)
	h.Close()
	h.Expired("after-close")

	forwarded := inner.calls["expired"]
	if forwarded < 1 || forwarded > 2 {
		t.Fatalf("forwarded=%d", forwarded)
	}
	if got := h.Dropped(); got != uint64(11-forwarded) {
		t.Fatalf("dropped=%d forwarded=%d", got, forwarded)
	}
}
