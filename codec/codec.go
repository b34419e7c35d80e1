package codec

import (
	"errors"
	"fmt"
	"strings"
)

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}

var ErrUnknownCodec = errors.New("codec: unknown codec")

// ByName resolves a codec for dynamically typed values by its option name.
// An empty name selects msgpack. maxSize > 0 wraps the result in a LimitCodec.
func ByName(name string, maxSize int) (Codec[any], error) {
	var c Codec[any]
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "msgpack":
		c = Msgpack[any]{}
	case "json":
		c = JSON[any]{}
	case "cbor":
		cb, err := NewCBOR[any](CBOROptions{})
		if err != nil {
			return nil, err
		}
		c = cb
	case "protobuf", "structpb":
		c = StructPB{}
	case "raw":
		c = Raw{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
	if maxSize > 0 {
		c = LimitCodec[any]{Inner: c, Max: maxSize}
	}
	return c, nil
}
