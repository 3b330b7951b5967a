package sessioncache

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The cache calls them on hot paths.
type Hooks interface {
	// A record was found past its absolute expiration.
	Expired(storageKey string)

	// A record was found past its sliding window.
	Stale(storageKey string)

	// A valid record with a sliding window was rewritten with a new access time.
	SlidingExtended(storageKey string)

	// Stored bytes could not be decoded. size is the raw length.
	MalformedRecord(storageKey string, size int)

	// The provider returned an error. op ∈ {"get", "set", "refresh", "remove"}
	BackendError(op, storageKey string, err error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) Expired(string)                     {}
func (NopHooks) Stale(string)                       {}
func (NopHooks) SlidingExtended(string)             {}
func (NopHooks) MalformedRecord(string, int)        {}
func (NopHooks) BackendError(string, string, error) {}
