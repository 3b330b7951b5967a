package codec

import "fmt"

// Limit wraps another codec to cap the size of session payloads in both
// directions: Encode refuses to produce, and Decode refuses to parse, more than
// Max bytes. If Max <= 0, size limiting is disabled.
//
// Typical use: keep oversized session state out of a shared backend and protect
// against bloated values written by another client.
type Limit[V any] struct {
	// Inner is the underlying codec being wrapped. It must be set.
	Inner Codec[V]
	Max   int
}

func (c Limit[V]) Encode(v V) ([]byte, error) {
	b, err := c.Inner.Encode(v)
	if err != nil {
		return nil, err
	}
	if c.Max > 0 && len(b) > c.Max {
		return nil, fmt.Errorf("session payload too large: %d > %d", len(b), c.Max)
	}
	return b, nil
}

func (c Limit[V]) Decode(b []byte) (V, error) {
	if c.Max > 0 && len(b) > c.Max {
		var zero V
		return zero, fmt.Errorf("session payload too large: %d > %d", len(b), c.Max)
	}
	return c.Inner.Decode(b)
}
