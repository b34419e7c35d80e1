package codec

import (
	"bytes"
	"math"

	"github.com/vmihailenco/msgpack/v5"
)

// Msgpack is the default codec. The zero value is ready to use.
//
// Structs are keyed by their `json` tags so values cached from API types keep
// the field names callers already use. Decoding into an interface is loose:
// integers come back as int64 (uint64 only above math.MaxInt64) and floats as
// float64 regardless of the width they were written with, and maps as map[string]any.
type Msgpack[V any] struct{}

func (Msgpack[V]) Encode(v V) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	enc.UseCompactInts(true)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (Msgpack[V]) Decode(b []byte) (V, error) {
	var v V
	dec := msgpack.NewDecoder(bytes.NewReader(b))
	dec.SetCustomStructTag("json")
	dec.UseLooseInterfaceDecoding(true)
	if err := dec.Decode(&v); err != nil {
		return v, err
	}
	if nv, ok := signedInts(any(v)).(V); ok {
		v = nv
	}
	return v, nil
}

// signedInts rewrites the uint64s loose decoding yields for positive integers
// written in unsigned form, so every integer that fits reads back as int64.
func signedInts(v any) any {
	switch x := v.(type) {
	case uint64:
		if x <= math.MaxInt64 {
			return int64(x)
		}
	case map[string]any:
		for k, e := range x {
			x[k] = signedInts(e)
		}
	case map[any]any:
		for k, e := range x {
			x[k] = signedInts(e)
		}
	case []any:
		for i, e := range x {
			x[i] = signedInts(e)
		}
	}
	return v
}
