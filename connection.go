package sessioncache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	pr "github.com/unkn0wn-root/sessioncache/provider"
)

// Connection owns the backend provider shared by one or more caches.
// The provider is dialed on first use; the dial runs under a mutex so only one
// caller connects, and callers that see an established provider never lock.
// Close releases the provider.
type Connection struct {
	dial pr.Dialer
	log  Logger

	mu     sync.Mutex
	closed bool
	cur    atomic.Pointer[connected]
}

type connected struct{ p pr.Provider }

var errNilProvider = errors.New("sessioncache: nil provider")

// NewConnection returns a Connection that dials lazily. log may be nil.
func NewConnection(dial pr.Dialer, log Logger) *Connection {
	return &Connection{dial: dial, log: coalesce[Logger](log, NopLogger{})}
}

// Connected wraps an already-built provider.
func Connected(p pr.Provider) *Connection {
	c := &Connection{
		dial: func(context.Context) (pr.Provider, error) { return nil, errNilProvider },
		log:  NopLogger{},
	}
	if p != nil {
		c.cur.Store(&connected{p: p})
	}
	return c
}

// Provider returns the connected provider, dialing it if needed. Failed dials
// are not remembered; the next call tries again.
func (c *Connection) Provider(ctx context.Context) (pr.Provider, error) {
	if cur := c.cur.Load(); cur != nil {
		return cur.p, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	if cur := c.cur.Load(); cur != nil {
		return cur.p, nil
	}
	if c.dial == nil {
		return nil, &DialError{Err: errNilProvider}
	}
	p, err := c.dial(ctx)
	if err != nil {
		c.log.Warn("backend dial failed", Fields{"err": err})
		return nil, &DialError{Err: err}
	}
	if p == nil {
		return nil, &DialError{Err: errNilProvider}
	}
	c.cur.Store(&connected{p: p})
	c.log.Info("backend connected", nil)
	return p, nil
}

// Close releases the provider. Safe to call multiple times.
func (c *Connection) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	cur := c.cur.Swap(nil)
	if cur == nil {
		return nil
	}
	return cur.p.Close(ctx)
}
