package codec

import (
	"errors"
	"fmt"
)

// ErrTooLarge reports a value over a LimitCodec's size limit.
var ErrTooLarge = errors.New("codec: value too large")

// LimitCodec bounds the encoded size of values on the way in and the payload size
// on the way out. Max <= 0 disables the limit.
//
// Memcached rejects items over its slab size (1MiB by default), so a matching Max
// fails oversized writes before they reach the network and refuses to decode
// anything bigger that another writer left in a shared cache.
type LimitCodec[V any] struct {
	Inner Codec[V]
	Max   int
}

func (c LimitCodec[V]) Encode(v V) ([]byte, error) {
	b, err := c.Inner.Encode(v)
	if err != nil {
		return nil, err
	}
	if c.Max > 0 && len(b) > c.Max {
		return nil, fmt.Errorf("%w: encoded %d > %d bytes", ErrTooLarge, len(b), c.Max)
	}
	return b, nil
}

func (c LimitCodec[V]) Decode(b []byte) (V, error) {
	if c.Max > 0 && len(b) > c.Max {
		var zero V
		return zero, fmt.Errorf("%w: payload %d > %d bytes", ErrTooLarge, len(b), c.Max)
	}
	return c.Inner.Decode(b)
}
