package sessioncache

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/unkn0wn-root/sessioncache/internal/wire"
	pr "github.com/unkn0wn-root/sessioncache/provider"
)

type cache struct {
	ns             string
	conn           *Connection
	log            Logger
	hooks          Hooks
	clock          func() time.Time
	computeSetCost SetCostFunc
	backendTTL     bool
	async          *semaphore.Weighted
}

func newCache(opts Options) (*cache, error) {
	if opts.Conn == nil {
		return nil, fmt.Errorf("sessioncache: connection is required")
	}
	if opts.Namespace == "" {
		return nil, fmt.Errorf("sessioncache: namespace is required")
	}
	if opts.AsyncLimit < 0 {
		return nil, fmt.Errorf("sessioncache: async limit must not be negative")
	}

	c := &cache{
		ns:         opts.Namespace,
		conn:       opts.Conn,
		backendTTL: opts.BackendTTL,
	}

	// defaults
	c.log = coalesce[Logger](opts.Logger, NopLogger{})
	c.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	c.async = semaphore.NewWeighted(coalesce(opts.AsyncLimit, defaultAsyncLimit))

	if opts.Now != nil {
		c.clock = opts.Now
	} else {
		c.clock = time.Now
	}
	if opts.ComputeSetCost != nil {
		c.computeSetCost = opts.ComputeSetCost
	} else {
		c.computeSetCost = func(_ string, _ []byte) int64 { return 1 }
	}

	return c, nil
}

func (c *cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, argError("key", "must not be empty")
	}
	rec, ok, err := c.load(ctx, "get", key)
	if err != nil || !ok {
		return nil, false, err
	}
	return rec.Payload, true, nil
}

func (c *cache) Set(ctx context.Context, key string, value []byte, opts *EntryOptions) error {
	switch {
	case key == "":
		return argError("key", "must not be empty")
	case value == nil:
		return argError("value", "must not be nil")
	case opts == nil:
		return argError("options", "must not be nil")
	}

	now := c.now()
	rec, err := opts.record(now)
	if err != nil {
		return err
	}
	rec.Payload = value

	p, err := c.conn.Provider(ctx)
	if err != nil {
		return err
	}
	// no read first: a Set always replaces whatever was stored, expired or not
	return c.store(ctx, p, "set", c.storageKey(key), rec, now)
}

func (c *cache) Refresh(ctx context.Context, key string) error {
	if key == "" {
		return argError("key", "must not be empty")
	}
	_, _, err := c.load(ctx, "refresh", key)
	return err
}

func (c *cache) Remove(ctx context.Context, key string) error {
	if key == "" {
		return argError("key", "must not be empty")
	}
	p, err := c.conn.Provider(ctx)
	if err != nil {
		return err
	}
	k := c.storageKey(key)
	if err := p.Del(ctx, k); err != nil {
		c.hooks.BackendError("remove", k, err)
		return err
	}
	c.log.Debug("removed session", Fields{"key": key})
	return nil
}

// load reads, decodes and validates the record at key. A valid record with a
// sliding window is written back with LastAccess=now before it is returned.
func (c *cache) load(ctx context.Context, op, key string) (wire.Record, bool, error) {
	p, err := c.conn.Provider(ctx)
	if err != nil {
		return wire.Record{}, false, err
	}
	k := c.storageKey(key)
	raw, ok, err := p.Get(ctx, k)
	if err != nil {
		c.hooks.BackendError(op, k, err)
		return wire.Record{}, false, err
	}
	if !ok {
		return wire.Record{}, false, nil
	}

	rec, err := wire.Decode(raw)
	if err != nil {
		c.hooks.MalformedRecord(k, len(raw))
		return wire.Record{}, false, &MalformedRecordError{Key: key, Size: len(raw), Err: err}
	}

	now := c.now()
	if !rec.Expires.IsZero() && now.After(rec.Expires) {
		c.hooks.Expired(k)
		c.log.Debug("session expired", Fields{"key": key, "expires": rec.Expires})
		return wire.Record{}, false, nil
	}
	if rec.Sliding > 0 && now.After(rec.LastAccess.Add(rec.Sliding)) {
		c.hooks.Stale(k)
		c.log.Debug("session stale", Fields{"key": key, "lastAccess": rec.LastAccess, "sliding": rec.Sliding})
		return wire.Record{}, false, nil
	}

	if rec.Sliding > 0 {
		// best-effort: concurrent readers race here and the last write wins;
		// every writer stores an equivalent, extended record
		rec.LastAccess = now
		if err := c.store(ctx, p, op, k, rec, now); err != nil {
			return wire.Record{}, false, err
		}
		c.hooks.SlidingExtended(k)
	}
	return rec, true, nil
}

func (c *cache) store(ctx context.Context, p pr.Provider, op, storageKey string, rec wire.Record, now time.Time) error {
	raw := wire.Encode(rec)
	ok, err := p.Set(ctx, storageKey, raw, c.computeSetCost(storageKey, raw), c.ttlHint(rec, now))
	if err != nil {
		c.hooks.BackendError(op, storageKey, err)
		return err
	}
	if !ok {
		c.log.Warn("session write rejected by provider (pressure)", Fields{"key": storageKey, "op": op})
	}
	return nil
}

// ttlHint returns the provider TTL for rec written at now; 0 means no expiry.
func (c *cache) ttlHint(rec wire.Record, now time.Time) time.Duration {
	if !c.backendTTL {
		return 0
	}
	var ttl time.Duration
	if !rec.Expires.IsZero() {
		ttl = max(rec.Expires.Sub(now), time.Millisecond)
	}
	if rec.Sliding > 0 && (ttl == 0 || rec.Sliding < ttl) {
		ttl = rec.Sliding
	}
	if ttl == 0 {
		return 0
	}
	return ttl + backendTTLGrace
}

// now is the cache clock in UTC, truncated to tick precision so that
// in-memory records compare equal to their stored form.
func (c *cache) now() time.Time {
	return c.clock().UTC().Truncate(100 * time.Nanosecond)
}

func (c *cache) storageKey(userKey string) string {
	// isolate by namespace
	return "session:" + c.ns + ":" + userKey
}

// record resolves o into a fresh record written at now.
func (o *EntryOptions) record(now time.Time) (wire.Record, error) {
	if o.AbsoluteExpirationRelativeToNow < 0 {
		return wire.Record{}, argError("options.AbsoluteExpirationRelativeToNow", "must not be negative")
	}
	if o.SlidingExpiration < 0 {
		return wire.Record{}, argError("options.SlidingExpiration", "must not be negative")
	}
	if o.SlidingExpiration > 0 && o.SlidingExpiration < 100*time.Nanosecond {
		return wire.Record{}, argError("options.SlidingExpiration", "must be at least 100ns")
	}

	rec := wire.Record{LastAccess: now, Sliding: o.SlidingExpiration.Truncate(100 * time.Nanosecond)}
	switch {
	case o.AbsoluteExpirationRelativeToNow > 0:
		rec.Expires = now.Add(o.AbsoluteExpirationRelativeToNow)
	case !o.AbsoluteExpiration.IsZero():
		rec.Expires = o.AbsoluteExpiration.UTC()
	}
	if !rec.Expires.IsZero() && wire.Ticks(rec.Expires) <= 0 {
		return wire.Record{}, argError("options.AbsoluteExpiration", "out of range")
	}
	return rec, nil
}
