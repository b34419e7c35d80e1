package codec

import (
	"fmt"

	"github.com/spf13/cast"
)

// Raw is the identity codec for dynamically typed values: []byte passes through,
// strings are converted, and scalars are stringified the way spf13/cast does it
// (42 -> "42", true -> "true"). Decode always yields []byte.
type Raw struct{}

var _ Codec[any] = Raw{}

func (Raw) Encode(v any) ([]byte, error) {
	switch vv := v.(type) {
	case []byte:
		return vv, nil
	case string:
		return []byte(vv), nil
	case nil:
		return []byte{}, nil
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return nil, fmt.Errorf("raw codec: %w", err)
	}
	return []byte(s), nil
}

func (Raw) Decode(b []byte) (any, error) { return b, nil }
