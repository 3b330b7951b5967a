// Package codec converts typed session state to and from the opaque payload
// bytes stored by sessioncache.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
