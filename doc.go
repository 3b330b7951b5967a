// Package sessioncache implements an expiration-aware session-state cache on top
// of a provider-agnostic byte store. Each session value is stored as a fixed
// 24-byte header followed by the opaque payload:
//
//	lastAccess ticks | expires ticks | sliding ticks | payload
//
// Ticks are 100ns units (timestamps counted from 0001-01-01 UTC), which keeps
// stored values bit-compatible with clients that use the same layout.
//
// Components:
//   - Provider: byte store (e.g. Redis, BigCache, Ristretto), reached through
//     an explicitly owned Connection that dials lazily on first use.
//   - Cache: Get/Set/Refresh/Remove plus async variants. Absolute expiration is
//     checked first, then sliding expiration. A valid read of a record with a
//     sliding window rewrites it with a fresh access time.
//   - Typed[V]: wraps a Cache with a codec.Codec[V] for structured session state.
//
// Expiration is lazy: expired or stale records are reported as misses but never
// deleted by this package. Use Remove or backend TTLs (Options.BackendTTL) to
// reclaim space.
//
// Keys:
//
//	session:<ns>:<key>
//
// Usage:
//
//	conn := sessioncache.NewConnection(redisprov.Dial(redisprov.Config{Host: "localhost", Port: 6379}), nil)
//	defer conn.Close(ctx)
//	cache, _ := sessioncache.New(sessioncache.Options{Namespace: "web", Conn: conn})
//	_ = cache.Set(ctx, id, blob, &sessioncache.EntryOptions{SlidingExpiration: 20 * time.Minute})
package sessioncache
