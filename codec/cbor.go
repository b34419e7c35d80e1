package codec

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// CBOROptions tunes NewCBOR.
type CBOROptions struct {
	// Deterministic selects RFC 8949 core deterministic encoding, for callers that
	// compare or hash cached bytes. Otherwise map keys keep insertion order.
	Deterministic bool
	// MaxNestedLevels bounds decode recursion; 0 keeps the library default (32).
	MaxNestedLevels int
}

// CBOR serializes values with fxamacker/cbor. Build it with NewCBOR.
//
// Decoding into an interface matches Msgpack: maps come back as map[string]any,
// integers as int64. Times are written as RFC3339Nano strings.
type CBOR[V any] struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

var _ Codec[any] = CBOR[any]{}

func NewCBOR[V any](o CBOROptions) (CBOR[V], error) {
	eo := cbor.PreferredUnsortedEncOptions()
	if o.Deterministic {
		eo = cbor.CoreDetEncOptions()
	}
	eo.Time = cbor.TimeRFC3339Nano
	em, err := eo.EncMode()
	if err != nil {
		return CBOR[V]{}, err
	}

	dm, err := cbor.DecOptions{
		DefaultMapType:  reflect.TypeOf(map[string]any(nil)),
		IntDec:          cbor.IntDecConvertSigned,
		MaxNestedLevels: o.MaxNestedLevels,
	}.DecMode()
	if err != nil {
		return CBOR[V]{}, err
	}
	return CBOR[V]{enc: em, dec: dm}, nil
}

func (c CBOR[V]) Encode(v V) ([]byte, error) { return c.enc.Marshal(v) }

func (c CBOR[V]) Decode(b []byte) (V, error) {
	var v V
	err := c.dec.Unmarshal(b, &v)
	return v, err
}
