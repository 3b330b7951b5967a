package sessioncache

import "time"

const (
	defaultAsyncLimit = 64
	// added to backend TTL hints so the backend never drops a record that is
	// still valid at its exact deadline
	backendTTLGrace = time.Second
)

// coalesce returns def when v is the zero value of T - otherwise v.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}
