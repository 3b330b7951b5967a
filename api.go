package sessioncache

import (
	"context"
	"time"
)

type SetCostFunc func(storageKey string, raw []byte) int64

// Cache is the session-state API. Get reports a miss (ok=false, err=nil) for
// absent, expired and stale keys; only genuine faults use the error channel.
//
// The sliding-window write-back in Get/Refresh is a plain read-modify-write.
// Concurrent readers of the same key may each rewrite it; they converge on an
// equivalent record, so the extension is best-effort and last-writer-wins.
type Cache interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, opts *EntryOptions) error
	Refresh(ctx context.Context, key string) error
	Remove(ctx context.Context, key string) error

	// Async variants run the synchronous call on a worker goroutine.
	// A ctx that is already done prevents dispatch; once started, the call
	// runs to completion regardless of ctx.
	GetAsync(ctx context.Context, key string) *Future[Lookup]
	SetAsync(ctx context.Context, key string, value []byte, opts *EntryOptions) *Future[struct{}]
	RefreshAsync(ctx context.Context, key string) *Future[struct{}]
	RemoveAsync(ctx context.Context, key string) *Future[struct{}]
}

// Lookup is the outcome of an async Get: Found with Value, or not found.
type Lookup struct {
	Value []byte
	Found bool
}

// EntryOptions carries the expiration directives for Set.
// AbsoluteExpirationRelativeToNow wins over AbsoluteExpiration when both are set.
// Zero values mean "not set".
type EntryOptions struct {
	AbsoluteExpiration              time.Time
	AbsoluteExpirationRelativeToNow time.Duration
	SlidingExpiration               time.Duration
}

// Options configure a Cache. Namespace and Conn are required.
type Options struct {
	// Required
	Namespace string // isolates keys of several caches sharing one backend, e.g. "web"
	Conn      *Connection

	Logger         Logger           // if nil, NopLogger is used
	Hooks          Hooks            // if nil, NopHooks is used
	Now            func() time.Time // defaults to time.Now
	AsyncLimit     int64            // max concurrent async calls; 0 => 64
	ComputeSetCost SetCostFunc      // default 1
	// BackendTTL passes the remaining validity of a record as the provider TTL
	// so the backend can reclaim expired sessions on its own.
	BackendTTL bool
}

func New(opts Options) (Cache, error) {
	return newCache(opts)
}
