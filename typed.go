package sessioncache

import (
	"context"
	"fmt"

	c "github.com/unkn0wn-root/sessioncache/codec"
)

// Typed stores values of type V in a Cache through a codec.
type Typed[V any] struct {
	cache Cache
	codec c.Codec[V]
}

func NewTyped[V any](cache Cache, codec c.Codec[V]) *Typed[V] {
	return &Typed[V]{cache: cache, codec: codec}
}

// Get returns the decoded value; ok=false on a miss. A payload the codec
// rejects is reported as an error.
func (t *Typed[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var zero V
	b, ok, err := t.cache.Get(ctx, key)
	if err != nil || !ok {
		return zero, false, err
	}
	v, err := t.codec.Decode(b)
	if err != nil {
		return zero, false, fmt.Errorf("sessioncache: decode %q: %w", key, err)
	}
	return v, true, nil
}

func (t *Typed[V]) Set(ctx context.Context, key string, value V, opts *EntryOptions) error {
	b, err := t.codec.Encode(value)
	if err != nil {
		return fmt.Errorf("sessioncache: encode %q: %w", key, err)
	}
	if b == nil {
		b = []byte{}
	}
	return t.cache.Set(ctx, key, b, opts)
}

func (t *Typed[V]) Refresh(ctx context.Context, key string) error {
	return t.cache.Refresh(ctx, key)
}

func (t *Typed[V]) Remove(ctx context.Context, key string) error {
	return t.cache.Remove(ctx, key)
}
